package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/safety-suggestions/pkg/util/errorutil"
)

// RequireAdmin ensures the authenticated caller has the admin role. Mount after Protect.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("not authorized")
		}
		if !principal.IsAdmin() {
			return apperrors.NewForbidden("not authorized, admin role required")
		}
		return c.Next()
	}
}
