package api

import (
	"context"
	"strings"
)

// Operation is a call bound to a fixed method and endpoint. Every invocation dispatches a
// fresh request on the given Session.
type Operation[T any] func(ctx context.Context, s *Session) (T, error)

// Bind associates method and endpoint with handler. The returned Operation sends the
// request and passes the Response to handler, whose only job is to shape it. Results are
// never cached.
//
// endpoint must not contain path parameters; calls such as restarting one agent build
// their Request directly. Bind panics on a templated endpoint or an unsupported method,
// since both are programming errors detected at package initialization.
func Bind[T any](method, endpoint string, handler func(*Response) (T, error), opts ...RequestOption) Operation[T] {
	if strings.ContainsAny(endpoint, "{}") {
		panic("api: bound endpoint " + endpoint + " has path parameters")
	}
	req := NewRequest(endpoint, method, opts...)
	if !validMethod(req.Method()) {
		panic("api: unsupported method " + method)
	}

	return func(ctx context.Context, s *Session) (T, error) {
		var zero T
		res, err := req.Send(ctx, s)
		if err != nil {
			return zero, err
		}
		return handler(res)
	}
}

// DataHandler returns the "data" member of the body.
func DataHandler(res *Response) (map[string]any, error) {
	return res.Data()
}

// ResponseHandler returns the Response unchanged.
func ResponseHandler(res *Response) (*Response, error) {
	return res, nil
}

// DecodeDataHandler decodes the "data" member of a 2xx body into a T. Other statuses
// are reported as errors carrying the status code.
func DecodeDataHandler[T any](res *Response) (T, error) {
	var v T
	if !res.OK() {
		return v, statusError(res)
	}
	if err := res.DecodeData(&v); err != nil {
		return v, err
	}
	return v, nil
}

func statusError(res *Response) error {
	detail := res.Get("detail").String()
	if detail == "" {
		detail = res.Text()
	}
	return ErrClient.New("service answered with an error: " + detail).SetStatusCode(res.StatusCode())
}
