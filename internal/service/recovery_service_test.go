package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/auth"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/config"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/pkg/util/errorutil"
)

type recoveryFixture struct {
	svc      *RecoveryService
	accounts *fakeAccountRepo
	mailer   *captureMailer
	clock    time.Time
}

func newRecoveryFixture() *recoveryFixture {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			BcryptCost:          4,
			ResetCodeTTLMinutes: 15,
		},
	}
	accounts := newFakeAccountRepo()
	mailer := &captureMailer{}
	svc := NewRecoveryService(cfg, RecoveryDependencies{
		AccountRepo: accounts,
		Mailer:      mailer,
		Logger:      zap.NewNop(),
	})

	fx := &recoveryFixture{
		svc:      svc,
		accounts: accounts,
		mailer:   mailer,
		clock:    time.Date(2026, time.February, 1, 10, 0, 0, 0, time.UTC),
	}
	svc.now = func() time.Time { return fx.clock }
	return fx
}

func (fx *recoveryFixture) advance(d time.Duration) {
	fx.clock = fx.clock.Add(d)
}

func (fx *recoveryFixture) seedAccount(email string) *domain.Account {
	hash, _ := auth.HashPassword("original-pass", 4)
	return fx.accounts.add(&domain.Account{
		Email:        email,
		Name:         "Test Person",
		Role:         domain.RoleStudent,
		PasswordHash: hash,
	})
}

func TestRequestResetUnknownEmailLooksIdentical(t *testing.T) {
	fx := newRecoveryFixture()

	result, err := fx.svc.RequestReset(context.Background(), "nobody@example.edu")
	if err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	// Generic success: no error, no code, nothing to distinguish from the
	// registered case.
	if result.DevCode != "" {
		t.Error("unknown email must never yield a code")
	}
	if len(fx.mailer.sends) != 0 {
		t.Error("no mail may be sent for unknown addresses")
	}
}

func TestRequestResetOpensWindow(t *testing.T) {
	fx := newRecoveryFixture()
	account := fx.seedAccount("student@example.edu")

	result, err := fx.svc.RequestReset(context.Background(), account.Email)
	if err != nil {
		t.Fatalf("RequestReset: %v", err)
	}

	if len(result.DevCode) != 6 {
		t.Fatalf("dev code = %q, want six digits", result.DevCode)
	}
	stored, _ := fx.accounts.GetByID(context.Background(), account.ID)
	if stored.ResetCode != result.DevCode {
		t.Error("stored code must match the issued one")
	}
	wantExpiry := fx.clock.Add(15 * time.Minute)
	if stored.ResetCodeExpiry == nil || !stored.ResetCodeExpiry.Equal(wantExpiry) {
		t.Errorf("expiry = %v, want %v", stored.ResetCodeExpiry, wantExpiry)
	}
	if len(fx.mailer.codes) != 1 || fx.mailer.codes[0] != result.DevCode {
		t.Error("mailer must receive the issued code")
	}
}

func TestRequestResetOverwritesPriorWindow(t *testing.T) {
	fx := newRecoveryFixture()
	account := fx.seedAccount("student@example.edu")
	ctx := context.Background()

	first, _ := fx.svc.RequestReset(ctx, account.Email)
	second, _ := fx.svc.RequestReset(ctx, account.Email)

	if first.DevCode == second.DevCode {
		t.Skip("codes collided, cannot distinguish windows")
	}
	if err := fx.svc.Redeem(ctx, account.Email, first.DevCode, "new-password"); !errorutil.IsCode(err, "INVALID_CODE") {
		t.Fatalf("stale code redeem: got %v, want INVALID_CODE", err)
	}
	if err := fx.svc.Redeem(ctx, account.Email, second.DevCode, "new-password"); err != nil {
		t.Fatalf("fresh code redeem: %v", err)
	}
}

func TestRedeemSetsNewPasswordAndClosesWindow(t *testing.T) {
	fx := newRecoveryFixture()
	account := fx.seedAccount("student@example.edu")
	ctx := context.Background()

	result, _ := fx.svc.RequestReset(ctx, account.Email)
	if err := fx.svc.Redeem(ctx, account.Email, result.DevCode, "brand-new-pass"); err != nil {
		t.Fatalf("Redeem: %v", err)
	}

	stored, _ := fx.accounts.GetByID(ctx, account.ID)
	if err := auth.ComparePassword(stored.PasswordHash, "brand-new-pass"); err != nil {
		t.Error("new password must verify")
	}
	if stored.ResetCode != "" || stored.ResetCodeExpiry != nil {
		t.Error("window must be closed after redemption")
	}

	// The code is single-use.
	if err := fx.svc.Redeem(ctx, account.Email, result.DevCode, "another-pass"); !errorutil.IsCode(err, "INVALID_CODE") {
		t.Fatalf("reused code: got %v, want INVALID_CODE", err)
	}
}

func TestRedeemExpiredCodeClosesWindowPermanently(t *testing.T) {
	fx := newRecoveryFixture()
	account := fx.seedAccount("student@example.edu")
	ctx := context.Background()

	result, _ := fx.svc.RequestReset(ctx, account.Email)
	fx.advance(16 * time.Minute)

	if err := fx.svc.Redeem(ctx, account.Email, result.DevCode, "new-password"); !errorutil.IsCode(err, "EXPIRED_CODE") {
		t.Fatalf("expired redeem: got %v, want EXPIRED_CODE", err)
	}

	// The expiry cleared the window: the same code now reads as invalid,
	// not expired, even if the clock were rolled back.
	fx.advance(-10 * time.Minute)
	if err := fx.svc.Redeem(ctx, account.Email, result.DevCode, "new-password"); !errorutil.IsCode(err, "INVALID_CODE") {
		t.Fatalf("post-expiry redeem: got %v, want INVALID_CODE", err)
	}
}

func TestRedeemWrongCodeKeepsWindowOpen(t *testing.T) {
	fx := newRecoveryFixture()
	account := fx.seedAccount("student@example.edu")
	ctx := context.Background()

	result, _ := fx.svc.RequestReset(ctx, account.Email)

	wrong := "000000"
	if wrong == result.DevCode {
		wrong = "000001"
	}
	if err := fx.svc.Redeem(ctx, account.Email, wrong, "new-password"); !errorutil.IsCode(err, "INVALID_CODE") {
		t.Fatalf("wrong code: got %v, want INVALID_CODE", err)
	}

	// A retry with the right code still succeeds.
	if err := fx.svc.Redeem(ctx, account.Email, result.DevCode, "new-password"); err != nil {
		t.Fatalf("retry with correct code: %v", err)
	}
}

func TestRedeemRejectsWeakPassword(t *testing.T) {
	fx := newRecoveryFixture()
	account := fx.seedAccount("student@example.edu")
	ctx := context.Background()

	result, _ := fx.svc.RequestReset(ctx, account.Email)
	if err := fx.svc.Redeem(ctx, account.Email, result.DevCode, "abc"); !errorutil.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("weak password: got %v, want VALIDATION_FAILED", err)
	}
}

func TestRedeemUnknownEmail(t *testing.T) {
	fx := newRecoveryFixture()
	if err := fx.svc.Redeem(context.Background(), "nobody@example.edu", "123456", "new-password"); !errorutil.IsCode(err, "INVALID_CODE") {
		t.Fatalf("unknown email redeem: got %v, want INVALID_CODE", err)
	}
}
