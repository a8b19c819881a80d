package jwtverify

import (
	"context"
	"net/http"
	"strings"

	commonerrors "github.com/AlibekovAA/membership/internal/common/errors"
	commonhttp "github.com/AlibekovAA/membership/internal/common/http"
	"github.com/AlibekovAA/membership/internal/common/logger"
	"github.com/AlibekovAA/membership/internal/observability/metrics"
)

// Identity is what a validated bearer token proves about the caller.
type Identity struct {
	Subject string
	Email   string
	Groups  []string
}

type Validator interface {
	Validate(raw string) (Identity, error)
}

type ValidatorFunc func(raw string) (Identity, error)

func (f ValidatorFunc) Validate(raw string) (Identity, error) {
	return f(raw)
}

type contextKey string

const identityKey contextKey = "jwt_identity"

const bearerPrefix = "Bearer "

// Middleware rejects any request without a valid bearer token with 401
// "Invalid token" and otherwise stores the caller identity in the context.
func Middleware(validator Validator, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				reject(w, r, log, "missing or malformed authorization header")
				return
			}

			identity, err := validator.Validate(raw)
			if err != nil {
				reject(w, r, log, err.Error())
				return
			}
			if identity.Email == "" {
				reject(w, r, log, "token carries no email")
				return
			}

			metrics.MembershipTokenValidationsTotal.WithLabelValues("accepted").Inc()
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, log *logger.Logger, reason string) {
	metrics.MembershipTokenValidationsTotal.WithLabelValues("rejected").Inc()
	log.WithFields(r.Context(), logger.Fields{
		"action": "jwt_rejected",
		"path":   r.URL.Path,
		"reason": reason,
	}).Warn("jwt auth failed")
	commonhttp.WriteError(w, commonerrors.ErrInvalidToken.HTTPStatus(), commonerrors.ErrInvalidToken.Message())
}

func bearerToken(r *http.Request) (string, bool) {
	raw := r.Header.Get("Authorization")
	if len(raw) < len(bearerPrefix) || !strings.EqualFold(raw[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(raw[len(bearerPrefix):])
	return token, token != ""
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// SubjectFromContext returns the authenticated email.
func SubjectFromContext(ctx context.Context) (string, bool) {
	identity, ok := FromContext(ctx)
	if !ok || identity.Email == "" {
		return "", false
	}
	return identity.Email, true
}
