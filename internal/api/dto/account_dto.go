package dto

import (
	"time"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
)

// StudentRegisterRequest payload.
type StudentRegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Department   string `json:"department"`
	StudentIDNum string `json:"student_id_num"`
	DormBlock    string `json:"dorm_block"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountCreateRequest is the admin payload for staff/admin accounts.
type AccountCreateRequest struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	Role       domain.Role `json:"role"`
	Department string      `json:"department"`
}

// ResetRequestPayload asks for a one-time reset code.
type ResetRequestPayload struct {
	Email string `json:"email"`
}

// ResetConfirmPayload redeems a one-time reset code.
type ResetConfirmPayload struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// AuthResponse carries the issued session token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountResponse is the externally visible account shape.
type AccountResponse struct {
	ID           string      `json:"id"`
	SystemID     string      `json:"system_id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
	Department   string      `json:"department,omitempty"`
	StudentIDNum string      `json:"student_id_num,omitempty"`
	DormBlock    string      `json:"dorm_block,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewAccountResponse maps a domain account.
func NewAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:           account.ID,
		SystemID:     account.SystemID,
		Name:         account.Name,
		Email:        account.Email,
		Role:         account.Role,
		Department:   account.Department,
		StudentIDNum: account.StudentIDNum,
		DormBlock:    account.DormBlock,
		CreatedAt:    account.CreatedAt,
	}
}
