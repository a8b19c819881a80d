package http

import (
	"context"
	"net/http"

	"github.com/AlibekovAA/membership/internal/common/constants"
	commonerrors "github.com/AlibekovAA/membership/internal/common/errors"
	"github.com/AlibekovAA/membership/internal/common/logger"
)

func HealthHandler(log *logger.Logger) http.HandlerFunc {
	errorHandler := NewErrorHandler(log)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			errorHandler.HandleError(w, r, commonerrors.ErrMethodNotAllowed)
			return
		}
		log.Debug("health check request")
		WriteSuccess(w, http.StatusOK, "ok", nil)
	}
}

// ReadinessHandler reports 503 until ping succeeds within the readiness timeout.
func ReadinessHandler(ping func(ctx context.Context) error, log *logger.Logger) http.HandlerFunc {
	errorHandler := NewErrorHandler(log)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			errorHandler.HandleError(w, r, commonerrors.ErrMethodNotAllowed)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), constants.ReadinessTimeout)
		defer cancel()

		if err := ping(ctx); err != nil {
			errorHandler.HandleError(w, r, commonerrors.ErrServiceUnavailable.WithCause(err))
			return
		}

		WriteSuccess(w, http.StatusOK, "ready", nil)
	}
}
