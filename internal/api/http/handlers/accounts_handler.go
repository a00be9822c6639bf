package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/api/dto"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/auth"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/service"
	apperrors "github.com/dagim-hg/Astu-Steam-dev-project-sub000/pkg/util/errorutil"
)

// AccountsHandler exposes auth and account management endpoints.
type AccountsHandler struct {
	accounts *service.AccountService
	recovery *service.RecoveryService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accounts *service.AccountService, recovery *service.RecoveryService) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, recovery: recovery}
}

// Register handles POST /auth/register.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.StudentRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	account, token, exp, err := h.accounts.RegisterStudent(c.Context(), service.StudentRegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Department:   req.Department,
		StudentIDNum: req.StudentIDNum,
		DormBlock:    req.DormBlock,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"account": dto.NewAccountResponse(account),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/login.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	account, token, exp, err := h.accounts.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": dto.NewAccountResponse(account),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Me handles GET /auth/me.
func (h *AccountsHandler) Me(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}

// RequestPasswordReset handles POST /auth/password/reset/request.
// The response is identical whether or not the email is registered.
func (h *AccountsHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.ResetRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.recovery.RequestReset(c.Context(), req.Email)
	if err != nil {
		return err
	}

	data := fiber.Map{"status": "reset_requested"}
	if result.DevCode != "" {
		data["dev_code"] = result.DevCode
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": data})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AccountsHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.ResetConfirmPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Code == "" {
		return apperrors.NewValidationError("email and code required", nil)
	}

	if err := h.recovery.Redeem(c.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_reset"}})
}

// CreateAccount handles POST /admin/accounts.
func (h *AccountsHandler) CreateAccount(c *fiber.Ctx) error {
	actor, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.AccountCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	account, err := h.accounts.CreateAccount(c.Context(), actor, service.StaffCreateInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}

// ListAccounts handles GET /admin/accounts.
func (h *AccountsHandler) ListAccounts(c *fiber.Ctx) error {
	actor, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var role *domain.Role
	if val := c.Query("role"); val != "" {
		r := domain.Role(val)
		role = &r
	}

	accounts, err := h.accounts.ListAccounts(c.Context(), actor, role)
	if err != nil {
		return err
	}

	resp := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, dto.NewAccountResponse(&accounts[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// DeleteAccount handles DELETE /admin/accounts/:id.
func (h *AccountsHandler) DeleteAccount(c *fiber.Ctx) error {
	actor, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	if err := h.accounts.DeleteAccount(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "deleted"}})
}
