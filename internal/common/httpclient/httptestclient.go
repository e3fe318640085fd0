package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
)

// HandlerTransport serves requests in-process through an http.Handler, capturing the
// response with httptest.NewRecorder instead of going through the network. A nil handler
// behaves like a host with nothing listening.
type HandlerTransport struct {
	handler http.Handler
}

// NewHandlerTransport creates a transport bound to h.
func NewHandlerTransport(h http.Handler) *HandlerTransport {
	return &HandlerTransport{handler: h}
}

// Do serves the request through the handler.
func (t *HandlerTransport) Do(ctx context.Context, r *Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.handler == nil {
		return nil, ErrUnreachable.Msg("no handler bound to " + r.URL)
	}
	req, err := newHTTPRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	rr := httptest.NewRecorder()
	t.handler.ServeHTTP(rr, req)

	return &Result{
		StatusCode: rr.Code,
		Header:     rr.Header(),
		Body:       rr.Body.Bytes(),
	}, nil
}
