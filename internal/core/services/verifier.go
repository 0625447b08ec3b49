package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
	"github.com/tanushree1025/DESIGN-THEETA/internal/platform/metrics"
)

var verifierTracer = otel.Tracer("credential-verifier")

// CredentialVerifier resolves a bearer credential to a stored user identity.
// It runs once per connection attempt and has no side effects; a connection is
// never admitted to the registry without passing through it.
type CredentialVerifier struct {
	tokens  *TokenService
	users   domain.UserDirectory
	timeout time.Duration
	log     *slog.Logger
}

func NewCredentialVerifier(log *slog.Logger, tokens *TokenService, users domain.UserDirectory, timeout time.Duration) *CredentialVerifier {
	return &CredentialVerifier{
		log:     log,
		tokens:  tokens,
		users:   users,
		timeout: timeout,
	}
}

// Verify decodes the credential and resolves it against the user directory.
// Failure kinds: domain.ErrTokenMissing, domain.ErrTokenInvalid,
// domain.ErrUnknownUser. A directory timeout surfaces as ErrUnknownUser since
// the identity could not be confirmed.
func (v *CredentialVerifier) Verify(ctx context.Context, credential string) (*domain.User, error) {
	ctx, span := verifierTracer.Start(ctx, "CredentialVerifier.Verify")
	defer span.End()
	if credential == "" {
		metrics.AuthFailuresTotal.WithLabelValues("missing").Inc()
		return nil, domain.ErrTokenMissing
	}
	claims, err := v.tokens.VerifyToken(credential)
	if err != nil {
		span.RecordError(err)
		metrics.AuthFailuresTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrTokenInvalid
	}
	span.SetAttributes(attribute.String("user.id", claims.UserID.String()))

	lookupCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	user, err := v.users.GetByID(lookupCtx, claims.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "directory lookup failed")
		metrics.AuthFailuresTotal.WithLabelValues("unknown_user").Inc()
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnknownUser
		}
		v.log.ErrorContext(ctx, "verifier - directory lookup failed", "user_id", claims.UserID, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUnknownUser, err)
	}
	return user, nil
}
