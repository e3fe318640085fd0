package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fortishield/fortishield-qa-framework/internal/common/httpx"
)

// SetTimeout bounds the time a handler may take. When the deadline passes before the
// handler wrote anything, a 503 problem body is sent. A non-positive timeout disables it.
func SetTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			rw := &lockedWriter{ResponseWriter: httpx.NewResponseWriter(w)}
			r = r.WithContext(ctx)

			done := make(chan struct{})
			go func() {
				defer func() {
					if p := recover(); p != nil {
						log.Ctx(ctx).Error().Msgf("panic in handler: %v", p)
					}
					close(done)
				}()
				next.ServeHTTP(rw, r)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if rw.claim() {
					httpx.ErrRequestTimeout().Send(rw.ResponseWriter)
				}
				log.Ctx(ctx).Error().Msg("request timed out")
			}
		})
	}
}
