package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketapp/internal/domain"
	apperrors "github.com/spec-kit/ticketapp/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// SessionLoader yields the current session of the origin, or nil.
type SessionLoader interface {
	LoadSession(ctx context.Context) (*domain.Session, error)
}

// Principal represents the authenticated caller.
type Principal struct {
	Session domain.Session
	Claims  *Claims
}

// AuthMiddleware validates bearer tokens against the current session.
type AuthMiddleware struct {
	tokens   *TokenManager
	sessions SessionLoader
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions SessionLoader) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions}
}

// Handle enforces authentication for protected routes. A token only grants
// access while the session it was issued for is still the current one.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	session, err := m.sessions.LoadSession(c.UserContext())
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if session == nil || session.Email != claims.Email() {
		return apperrors.NewUnauthorized("token does not match the current session")
	}

	c.Locals(principalKey, &Principal{Session: *session, Claims: claims})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
