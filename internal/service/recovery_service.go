package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/auth"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/config"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/ratelimit"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/repository"
	apperrors "github.com/dagim-hg/Astu-Steam-dev-project-sub000/pkg/util/errorutil"
)

// RecoveryService runs the one-time-code credential recovery flow. At most
// one reset window is open per account; issuing a new code closes any
// prior one. Expiry is logical, checked at redemption time.
type RecoveryService struct {
	accounts   repository.AccountRepository
	limiter    *ratelimit.Limiter
	mailer     Mailer
	bcryptCost int
	codeTTL    time.Duration
	devSurface bool
	logger     *zap.Logger
	now        func() time.Time
}

// RecoveryDependencies bundles collaborators for the recovery service.
type RecoveryDependencies struct {
	AccountRepo repository.AccountRepository
	Limiter     *ratelimit.Limiter
	Mailer      Mailer
	Logger      *zap.Logger
}

// NewRecoveryService builds the service.
func NewRecoveryService(cfg *config.Config, deps RecoveryDependencies) *RecoveryService {
	return &RecoveryService{
		accounts:   deps.AccountRepo,
		limiter:    deps.Limiter,
		mailer:     deps.Mailer,
		bcryptCost: cfg.Auth.BcryptCost,
		codeTTL:    cfg.Auth.ResetCodeTTL(),
		devSurface: cfg.Notification.OTPDevFallback(),
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// ResetRequestResult is what the caller may show the user. DevCode is
// populated only when no real delivery channel is configured.
type ResetRequestResult struct {
	DevCode string
}

// RequestReset opens a reset window for the account holding the email.
// The response shape is identical whether or not the account exists, so
// registered addresses cannot be probed.
func (s *RecoveryService) RequestReset(ctx context.Context, email string) (*ResetRequestResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}

	if !s.limiter.Allow(ctx, strings.ToLower(email)) {
		s.logger.Warn("reset request throttled", zap.String("email", email))
		return &ResetRequestResult{}, nil
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Same generic success as the registered case.
			return &ResetRequestResult{}, nil
		}
		return nil, err
	}

	code, err := generateCode()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	expiry := s.now().Add(s.codeTTL)
	account.ResetCode = code
	account.ResetCodeExpiry = &expiry
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}

	if err := s.mailer.SendResetCode(ctx, account.Email, code); err != nil {
		s.logger.Error("reset code delivery failed", zap.String("email", account.Email), zap.Error(err))
	}

	result := &ResetRequestResult{}
	if s.devSurface {
		result.DevCode = code
	}
	return result, nil
}

// Redeem exchanges a valid, unexpired code for a new credential. An
// expired code closes the window; a wrong code leaves it open for retry.
func (s *RecoveryService) Redeem(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewInvalidCode()
		}
		return err
	}
	if account.ResetCode == "" || account.ResetCodeExpiry == nil {
		return apperrors.NewInvalidCode()
	}

	if s.now().After(*account.ResetCodeExpiry) {
		s.closeWindow(ctx, account)
		return apperrors.NewExpiredCode()
	}
	if code != account.ResetCode {
		return apperrors.NewInvalidCode()
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	account.PasswordHash = hash
	account.ResetCode = ""
	account.ResetCodeExpiry = nil
	return s.accounts.Update(ctx, account)
}

// closeWindow clears the pending reset so the expired code stays dead
// even if redemption is retried.
func (s *RecoveryService) closeWindow(ctx context.Context, account *domain.Account) {
	account.ResetCode = ""
	account.ResetCodeExpiry = nil
	if err := s.accounts.Update(ctx, account); err != nil {
		s.logger.Warn("failed to clear expired reset window",
			zap.String("email", account.Email), zap.Error(err))
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
