package api

import (
	"context"
	"maps"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/fortishield/fortishield-qa-framework/internal/common/httpclient"
	"github.com/fortishield/fortishield-qa-framework/internal/common/logtrace"
	"github.com/fortishield/fortishield-qa-framework/internal/common/middleware"
	"github.com/fortishield/fortishield-qa-framework/internal/common/uuid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const ContentTypeJSON = "application/json"

// Request is one authenticated call, fully specified before it is sent. It is immutable
// once built and may be sent any number of times, each send being an independent round
// trip.
type Request struct {
	endpoint string
	method   string
	payload  map[string]any
	query    url.Values
	header   http.Header
	verify   *bool
}

// RequestOption configures a Request.
type RequestOption func(*Request)

// WithPayload sets the JSON body of the request.
func WithPayload(payload map[string]any) RequestOption {
	return func(r *Request) {
		r.payload = maps.Clone(payload)
	}
}

// WithHeaders adds headers to the request. Content-Type and Authorization are always
// replaced when the request is sent.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *Request) {
		if r.header == nil {
			r.header = http.Header{}
		}
		for k, v := range headers {
			r.header.Set(k, v)
		}
	}
}

// WithQuery adds query parameters to the request URL.
func WithQuery(query map[string]string) RequestOption {
	return func(r *Request) {
		if r.query == nil {
			r.query = url.Values{}
		}
		for k, v := range query {
			r.query.Set(k, v)
		}
	}
}

// WithVerify overrides the Session's TLS verification for this request.
func WithVerify(verify bool) RequestOption {
	return func(r *Request) {
		r.verify = &verify
	}
}

// NewRequest builds a request for endpoint, a path relative to the Session base URL.
func NewRequest(endpoint, method string, opts ...RequestOption) *Request {
	r := &Request{
		endpoint: endpoint,
		method:   strings.ToUpper(method),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Request) Endpoint() string {
	return r.endpoint
}

func (r *Request) Method() string {
	return r.method
}

func validMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// Send dispatches the request on s, minting a token first if s holds none. Any HTTP status
// is returned as a Response. Only failures to reach the service, to build the request or
// to authenticate are errors.
func (r *Request) Send(ctx context.Context, s *Session) (*Response, error) {
	if !validMethod(r.method) {
		return nil, ErrInvalidRequest.Msg("unsupported method " + r.method)
	}

	var body []byte
	if r.payload != nil {
		b, err := json.Marshal(r.payload)
		if err != nil {
			return nil, ErrInvalidRequest.MsgErr("unable to encode payload", err)
		}
		body = b
	}

	token, err := s.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	requestID := logtrace.RequestIdFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewRequestId()
	}

	header := r.header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if header.Get(middleware.RequestIDHeader) == "" {
		header.Set(middleware.RequestIDHeader, requestID)
	}
	header.Set("Content-Type", ContentTypeJSON)
	header.Set("Authorization", "Bearer "+token)

	verify := s.verify
	if r.verify != nil {
		verify = *r.verify
	}

	target := s.baseURL + r.endpoint
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(r.endpoint, "?") {
			sep = "&"
		}
		target += sep + r.query.Encode()
	}

	res, err := s.transport.Do(ctx, &httpclient.Request{
		Method: r.method,
		URL:    target,
		Header: header,
		Body:   body,
		Verify: verify,
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("request_id", requestID).Str("method", r.method).Str("url", target).Msg("dispatch failed")
		return nil, translate(s.baseURL, err)
	}

	s.logger.Debug().
		Str("request_id", requestID).
		Str("method", r.method).
		Str("url", target).
		Int("status", res.StatusCode).
		Msg("request completed")

	return newResponse(res.StatusCode, res.Header, res.Body), nil
}
