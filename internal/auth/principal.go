package auth

import (
	"context"
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

const principalKey = "auth_principal"

type principalCtxKey struct{}

// Principal represents the authenticated caller for a single request.
type Principal struct {
	ID    int
	Email string
	Roles []domain.Role
}

// HasRole reports whether the principal holds role.
func (p *Principal) HasRole(role domain.Role) bool {
	return p != nil && slices.Contains(p.Roles, role)
}

// NewPrincipal builds the request principal from a freshly loaded identity.
// It returns nil when the identity may not act: inactive, or holding no role.
func NewPrincipal(identity *domain.Customer) *Principal {
	if identity == nil || !identity.IsActive() {
		return nil
	}
	roles := make([]domain.Role, 0, len(identity.Roles))
	for _, role := range identity.Roles {
		if role.Valid() {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		return nil
	}
	return &Principal{ID: identity.ID, Email: identity.Email, Roles: roles}
}

// CurrentPrincipal returns the principal attached to the request, if any.
func CurrentPrincipal(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil
}

// WithPrincipal returns a copy of ctx carrying principal.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, principal)
}

// PrincipalFromContext retrieves the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalCtxKey{}).(*Principal)
	return principal, ok && principal != nil
}
