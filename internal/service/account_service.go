package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/auth"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/authz"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/config"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/idgen"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/repository"
	apperrors "github.com/dagim-hg/Astu-Steam-dev-project-sub000/pkg/util/errorutil"
)

// minPasswordLength applies to registration, admin-created accounts, and
// credential recovery alike.
const minPasswordLength = 6

// AccountService coordinates registration, login, and administrative
// account management.
type AccountService struct {
	accounts         repository.AccountRepository
	ids              *idgen.Generator
	tokens           *auth.TokenManager
	bcryptCost       int
	masterAdminEmail string
	masterAdminName  string
	masterAdminPass  string
	logger           *zap.Logger
}

// AccountDependencies bundles collaborators for the account service.
type AccountDependencies struct {
	AccountRepo repository.AccountRepository
	IDGenerator *idgen.Generator
	Logger      *zap.Logger
}

// NewAccountService builds the service.
func NewAccountService(cfg config.AuthConfig, deps AccountDependencies) *AccountService {
	return &AccountService{
		accounts:         deps.AccountRepo,
		ids:              deps.IDGenerator,
		tokens:           auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost:       cfg.BcryptCost,
		masterAdminEmail: cfg.MasterAdminEmail,
		masterAdminName:  cfg.MasterAdminName,
		masterAdminPass:  cfg.MasterAdminPassword,
		logger:           deps.Logger,
	}
}

// StudentRegisterInput describes student self-registration payload.
type StudentRegisterInput struct {
	Name         string
	Email        string
	Password     string
	Department   string
	StudentIDNum string
	DormBlock    string
}

// StaffCreateInput describes an administrator creating a staff or admin
// account.
type StaffCreateInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department string
}

// RegisterStudent creates a student account and returns a session token.
// The systemId is minted before the insert; an allocation failure aborts
// registration entirely.
func (s *AccountService) RegisterStudent(ctx context.Context, input StudentRegisterInput) (*domain.Account, string, time.Time, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" || input.Email == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("name and email required", nil)
	}
	if len(input.Password) < minPasswordLength {
		return nil, "", time.Time{}, apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	if err := s.ensureEmailFree(ctx, input.Email); err != nil {
		return nil, "", time.Time{}, err
	}

	systemID, err := s.ids.NextAccountID(ctx, domain.RoleStudent)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	account := &domain.Account{
		SystemID:     systemID,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleStudent,
		Department:   strings.TrimSpace(input.Department),
		StudentIDNum: strings.TrimSpace(input.StudentIDNum),
		DormBlock:    strings.TrimSpace(input.DormBlock),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokens.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return account, token, exp, nil
}

// Login authenticates by email (case-insensitive) and password.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.Account, string, time.Time, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
	}

	token, exp, err := s.tokens.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return account, token, exp, nil
}

// CreateAccount lets an administrator create a staff or admin account.
// Staff accounts require a department.
func (s *AccountService) CreateAccount(ctx context.Context, actor *domain.Account, input StaffCreateInput) (*domain.Account, error) {
	actorView := actor.Actor()
	if err := authz.CanManageAccounts(&actorView); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Department = strings.TrimSpace(input.Department)
	if input.Name == "" || input.Email == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password must be at least 6 characters", nil)
	}
	if input.Role != domain.RoleStaff && input.Role != domain.RoleAdmin {
		return nil, apperrors.NewValidationError("role must be STAFF or ADMIN", map[string]any{"role": input.Role})
	}
	if input.Role == domain.RoleStaff && input.Department == "" {
		return nil, apperrors.NewValidationError("department required for staff accounts", nil)
	}

	if err := s.ensureEmailFree(ctx, input.Email); err != nil {
		return nil, err
	}

	systemID, err := s.ids.NextAccountID(ctx, input.Role)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		SystemID:     systemID,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Department:   input.Department,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns accounts visible to an administrator, optionally
// filtered by role.
func (s *AccountService) ListAccounts(ctx context.Context, actor *domain.Account, role *domain.Role) ([]domain.Account, error) {
	actorView := actor.Actor()
	if err := authz.CanManageAccounts(&actorView); err != nil {
		return nil, err
	}
	if role != nil {
		if !role.Valid() {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": *role})
		}
		return s.accounts.ListByRole(ctx, *role)
	}
	return s.accounts.List(ctx)
}

// DeleteAccount removes an account, except the acting administrator's own
// and the reserved master-admin account.
func (s *AccountService) DeleteAccount(ctx context.Context, actor *domain.Account, targetID string) error {
	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("account", map[string]any{"id": targetID})
		}
		return err
	}

	actorView := actor.Actor()
	if err := authz.CanDeleteAccount(&actorView, target, s.masterAdminEmail); err != nil {
		return err
	}
	return s.accounts.Delete(ctx, targetID)
}

// EnsureBootstrapAdmin guarantees exactly one bootstrap administrator
// exists. Idempotent: an existing account with the reserved email is left
// untouched; the unique email constraint guards against concurrent starts.
func (s *AccountService) EnsureBootstrapAdmin(ctx context.Context) error {
	_, err := s.accounts.GetByEmail(ctx, s.masterAdminEmail)
	if err == nil {
		return nil
	}
	if err != pgx.ErrNoRows {
		return err
	}

	systemID, err := s.ids.NextAccountID(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(s.masterAdminPass, s.bcryptCost)
	if err != nil {
		return err
	}

	account := &domain.Account{
		SystemID:     systemID,
		Name:         s.masterAdminName,
		Email:        s.masterAdminEmail,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		// A concurrent start may have won the insert; the constraint did
		// its job either way.
		if _, lookupErr := s.accounts.GetByEmail(ctx, s.masterAdminEmail); lookupErr == nil {
			return nil
		}
		return err
	}
	s.logger.Info("bootstrap administrator created",
		zap.String("system_id", account.SystemID),
		zap.String("email", account.Email))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokens
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string) error {
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != pgx.ErrNoRows {
		return err
	}
	return nil
}
