package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/AlibekovAA/membership/internal/common/constants"
)

const traceIDHeader = "X-Trace-ID"

const maxTraceIDLength = 64

func TraceIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := strings.TrimSpace(r.Header.Get(traceIDHeader))
		if traceID == "" || len(traceID) > maxTraceIDLength {
			traceID = generateTraceID()
		}

		w.Header().Set(traceIDHeader, traceID)

		ctx := context.WithValue(r.Context(), constants.TraceIDKey, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TraceIDFromContext(ctx context.Context) string {
	return getTraceIDFromContext(ctx)
}

func generateTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
