package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/safety-suggestions/internal/domain"
	apperrors "github.com/spec-kit/safety-suggestions/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and attaches the decoded identity.
type AuthMiddleware struct {
	tokens *TokenManager
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, logger: logger}
}

// Protect enforces authentication for protected routes.
func (m *AuthMiddleware) Protect(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("not authorized, no token")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("not authorized, malformed authorization header")
	}
	tokenStr := strings.TrimSpace(parts[1])
	if tokenStr == "" {
		return apperrors.NewUnauthorized("not authorized, no token provided")
	}

	claims, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			m.logger.Info("token expired", zap.String("path", c.Path()))
			return apperrors.NewUnauthorized("not authorized, token expired")
		}
		m.logger.Warn("token invalid", zap.String("path", c.Path()), zap.Error(err))
		return apperrors.NewUnauthorized("not authorized, token invalid")
	}

	c.Locals(principalKey, claims.Principal())
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}
