// Package httpclient performs single HTTP round trips for the Fortishield API client.
// A Transport takes a fully built Request and returns the raw status, headers and body,
// or ErrUnreachable when the target could not be reached at all. HTTP error statuses are
// results, never errors.
package httpclient

import (
	"context"
	"net/http"

	"github.com/fortishield/fortishield-qa-framework/internal/common/apperrors"
)

// ErrUnreachable reports that no HTTP exchange took place: DNS failure, refused
// connection, unreachable network, or a connection dropped before the body was read.
var ErrUnreachable = apperrors.New("host unreachable")

// Request is one fully specified HTTP request.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte // nil for no body
	Verify bool   // verify the server TLS certificate
}

// Result is the raw outcome of a completed HTTP exchange.
type Result struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs a single HTTP request. Implementations must return ErrUnreachable
// (possibly wrapped) for connection-level failures and pass context cancellation through
// unchanged.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Result, error)
}

var _ Transport = &HTTPTransport{}
var _ Transport = &HandlerTransport{}
