package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-service/internal/observability"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

const stageAuthorization = "authorization"

// AuthMiddleware runs before every request except login. It resolves a bearer
// token into a Principal when it can and otherwise lets the request continue
// anonymously; route guards decide whether anonymous callers are allowed.
type AuthMiddleware struct {
	tokens     *TokenCodec
	identities IdentityStore
	loginPath  string
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenCodec, identities IdentityStore, loginPath string, logger *zap.Logger, metrics *observability.Metrics) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:     tokens,
		identities: identities,
		loginPath:  loginPath,
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle attaches the principal for the lifetime of the request.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if c.Path() == m.loginPath {
		return c.Next()
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		m.metrics.RecordAuthOutcome(stageAuthorization, "anonymous")
		return c.Next()
	}

	principal, err := m.resolve(c.UserContext(), strings.TrimPrefix(authHeader, BearerPrefix))
	if err != nil {
		m.metrics.RecordAuthOutcome(stageAuthorization, "store_error")
		m.logger.Error("principal lookup failed", zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	if principal == nil {
		return c.Next()
	}

	m.metrics.RecordAuthOutcome(stageAuthorization, "authenticated")
	c.Locals(principalKey, principal)
	defer c.Locals(principalKey, nil)

	parent := c.UserContext()
	c.SetUserContext(WithPrincipal(parent, principal))
	defer c.SetUserContext(parent)

	return c.Next()
}

// resolve returns nil without error for every token problem; only identity
// store failures are reported.
func (m *AuthMiddleware) resolve(ctx context.Context, raw string) (*Principal, error) {
	subject, err := m.tokens.Validate(raw)
	if err != nil {
		m.anonymous(tokenFailureReason(err))
		return nil, nil
	}

	identity, err := m.identities.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			m.anonymous("subject_not_found")
			return nil, nil
		}
		return nil, err
	}

	principal := NewPrincipal(identity)
	if principal == nil {
		m.anonymous("subject_inactive")
	}
	return principal, nil
}

func (m *AuthMiddleware) anonymous(reason string) {
	m.metrics.RecordAuthOutcome(stageAuthorization, reason)
	m.logger.Debug("bearer token ignored", zap.String("reason", reason))
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTokenBadSignature):
		return "token_bad_signature"
	default:
		return "token_malformed"
	}
}
