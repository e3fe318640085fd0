package middleware

import (
	"net/http"
	"sync"

	"github.com/fortishield/fortishield-qa-framework/internal/common/httpx"
)

// lockedWriter lets exactly one of the handler goroutine and the timeout path write the
// response.
type lockedWriter struct {
	*httpx.ResponseWriter
	mu       sync.Mutex
	timedOut bool
}

func (w *lockedWriter) claim() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ResponseWriter.Written() {
		return false
	}
	w.timedOut = true
	return true
}

func (w *lockedWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *lockedWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	return w.ResponseWriter.Write(b)
}

func (w *lockedWriter) Header() http.Header {
	return w.ResponseWriter.Header()
}
