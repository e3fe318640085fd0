package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ClientOptions contains options for configuring the HTTP transport.
type ClientOptions struct {
	// HTTPClient replaces the built-in clients. The per-request Verify flag is then left to
	// the client's own TLS configuration.
	HTTPClient *http.Client
	// Timeout bounds each round trip of the built-in clients. Zero means no timeout.
	Timeout time.Duration
}

// HTTPTransport sends requests over the network with net/http.
type HTTPTransport struct {
	secure   *http.Client
	insecure *http.Client
	custom   *http.Client
}

// NewTransport creates a network transport. Unless a custom client is supplied, it keeps
// one client that verifies certificates and one that skips verification, picked per
// request.
func NewTransport(opts ...ClientOptions) *HTTPTransport {
	clientOpts := ClientOptions{}
	if len(opts) > 0 {
		clientOpts = opts[0]
	}
	if clientOpts.HTTPClient != nil {
		return &HTTPTransport{custom: clientOpts.HTTPClient}
	}

	insecure := http.DefaultTransport.(*http.Transport).Clone()
	insecure.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	return &HTTPTransport{
		secure:   &http.Client{Timeout: clientOpts.Timeout},
		insecure: &http.Client{Timeout: clientOpts.Timeout, Transport: insecure},
	}
}

func (t *HTTPTransport) client(verify bool) *http.Client {
	switch {
	case t.custom != nil:
		return t.custom
	case verify:
		return t.secure
	default:
		return t.insecure
	}
}

// Do performs the request and reads the whole response body.
func (t *HTTPTransport) Do(ctx context.Context, r *Request) (*Result, error) {
	req, err := newHTTPRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	resp, err := t.client(r.Verify).Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("failed to read response body: %w", err))
	}

	log.Ctx(ctx).Trace().
		Str("method", r.Method).
		Str("url", r.URL).
		Int("status", resp.StatusCode).
		Msg("round trip completed")

	return &Result{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func newHTTPRequest(ctx context.Context, r *Request) (*http.Request, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range r.Header {
		req.Header[k] = append([]string(nil), v...)
	}
	return req, nil
}

// classify returns the caller's context error when ctx is done and marks everything else
// unreachable, including a client timeout that expired while ctx was still live.
func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return ErrUnreachable.Err(err)
}
