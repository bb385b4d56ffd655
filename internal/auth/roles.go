package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/domain"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// RequireAuthenticated ensures a principal is attached to the request.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := CurrentPrincipal(c)
		if err := Enforce(DecideAuthenticated(principal)); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireRole ensures the principal holds role.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := CurrentPrincipal(c)
		if err := Enforce(DecideRole(principal, role)); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireSelfOrAdmin ensures the principal is an administrator or owns the
// customer id named by the route parameter param.
func RequireSelfOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := CurrentPrincipal(c)
		if principal == nil {
			return apperrors.NewUnauthenticated()
		}
		targetID, err := c.ParamsInt(param)
		if err != nil {
			return apperrors.NewValidationError([]apperrors.FieldError{{Field: param, Message: "must be an integer"}})
		}
		if err := Enforce(DecideOwnResource(principal, targetID)); err != nil {
			return err
		}
		return c.Next()
	}
}

// AuthorizeOwner is used by handlers that learn the owning customer id only
// after loading a resource or parsing a body.
func AuthorizeOwner(c *fiber.Ctx, ownerID int) error {
	principal, _ := CurrentPrincipal(c)
	return Enforce(DecideOwnResource(principal, ownerID))
}
