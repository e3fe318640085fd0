// Package middleware provides HTTP middleware for the management service mock: request
// logging with request IDs, handler timeouts and panic recovery. Logging goes through
// zerolog.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fortishield/fortishield-qa-framework/internal/common/httpx"
	"github.com/fortishield/fortishield-qa-framework/internal/common/logtrace"
	"github.com/fortishield/fortishield-qa-framework/internal/common/uuid"
)

const RequestIDHeader = "X-Fortishield-Request-ID"

// RequestLogger assigns a request ID to every request, exposes it in the response headers
// and the request context, and logs the request and its outcome. An ID supplied by the
// caller in RequestIDHeader is reused.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewRequestId()
		}
		ctx = logtrace.WithRequestId(ctx, requestID)
		ctx = log.With().Str("request_id", requestID).Logger().WithContext(ctx)

		rw := httpx.NewResponseWriter(w)
		rw.Header().Set(RequestIDHeader, requestID)

		log.Ctx(ctx).Debug().
			Str("requestMethod", r.Method).
			Str("requestPath", r.URL.Path).
			Str("remoteIP", r.RemoteAddr).
			Msg("incoming request")

		defer func() {
			log.Ctx(ctx).Debug().
				Int("status", rw.Status()).
				Str("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds())).
				Msg("request completed")
		}()

		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}
