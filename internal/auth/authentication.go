package auth

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-service/internal/observability"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// BearerPrefix is the scheme token expected on the Authorization header.
const BearerPrefix = "Bearer "

const stageAuthentication = "authentication"

// Credential is the login request body.
type Credential struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthenticationStage handles the login route: it verifies a credential and
// answers with a fresh bearer token in the Authorization response header.
type AuthenticationStage struct {
	verifier *CredentialVerifier
	tokens   *TokenCodec
	validate *validator.Validate
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewAuthenticationStage constructs the login stage.
func NewAuthenticationStage(verifier *CredentialVerifier, tokens *TokenCodec, validate *validator.Validate, logger *zap.Logger, metrics *observability.Metrics) *AuthenticationStage {
	return &AuthenticationStage{
		verifier: verifier,
		tokens:   tokens,
		validate: validate,
		logger:   logger,
		metrics:  metrics,
	}
}

// Handle processes POST on the login route. On success it writes no body.
func (s *AuthenticationStage) Handle(c *fiber.Ctx) error {
	var cred Credential
	if err := c.App().Config().JSONDecoder(c.Body(), &cred); err != nil {
		return s.reject(ErrInvalidCredentialPayload)
	}
	if err := s.validate.Struct(cred); err != nil {
		return s.reject(ErrInvalidCredentialPayload)
	}

	identity, err := s.verifier.Verify(c.UserContext(), cred.Email, cred.Password)
	if err != nil {
		if errors.Is(err, ErrIdentityStore) {
			s.metrics.RecordAuthOutcome(stageAuthentication, "store_error")
			s.logger.Error("login identity lookup failed", zap.Error(err))
			return apperrors.NewInternalError(err)
		}
		return s.reject(err)
	}

	token, err := s.tokens.IssueNow(identity.Email)
	if err != nil {
		s.logger.Error("token issuance failed", zap.Error(err))
		return apperrors.NewInternalError(err)
	}

	s.metrics.RecordAuthOutcome(stageAuthentication, "success")
	s.logger.Debug("login succeeded", zap.Int("customer_id", identity.ID))
	c.Set(fiber.HeaderAuthorization, BearerPrefix+token.Raw)
	c.Status(fiber.StatusOK)
	return nil
}

func (s *AuthenticationStage) reject(cause error) error {
	reason := credentialFailureReason(cause)
	s.metrics.RecordAuthOutcome(stageAuthentication, reason)
	s.logger.Debug("login rejected", zap.String("reason", reason))
	return apperrors.NewUnauthenticated()
}

func credentialFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentialPayload):
		return "invalid_credential_payload"
	case errors.Is(err, ErrUnknownIdentity):
		return "unknown_identity"
	case errors.Is(err, ErrBadSecret):
		return "bad_secret"
	case errors.Is(err, ErrInactiveIdentity):
		return "inactive_identity"
	default:
		return "unknown"
	}
}
