package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/repository"
	apperrors "github.com/dagim-hg/Astu-Steam-dev-project-sub000/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and loads the calling account.
type AuthMiddleware struct {
	tokens   *TokenManager
	accounts repository.AccountRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, accounts repository.AccountRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, accounts: accounts}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token")
	}

	account, err := m.accounts.GetByID(c.Context(), claims.AccountID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthenticated("account not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, account)
	return c.Next()
}

// AccountFromContext retrieves the authenticated account.
func AccountFromContext(c *fiber.Ctx) (*domain.Account, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	account, ok := val.(*domain.Account)
	return account, ok
}

// RequireRole ensures the caller holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		account, ok := AccountFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[account.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
