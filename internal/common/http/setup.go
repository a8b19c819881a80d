package http

import (
	"net/http"

	"github.com/AlibekovAA/membership/internal/common/constants"
	"github.com/AlibekovAA/membership/internal/common/httpmetrics"
	"github.com/AlibekovAA/membership/internal/common/logger"
)

// BuildBaseHandler wraps handler with the middleware every service shares.
// Outermost first: security headers, CSP, recovery, trace id, body limit, metrics.
func BuildBaseHandler(appName string, log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.New(appName)
	recovery := RecoveryMiddleware(log)
	traceID := TraceIDMiddleware
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware
	csp := ContentSecurityPolicyMiddleware("")

	return securityHeaders(csp(recovery(traceID(maxRequestSize(metrics.Wrap(handler))))))
}
