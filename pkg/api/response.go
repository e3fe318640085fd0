package api

import (
	"net/http"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/gjson"
)

// Response is the outcome of a dispatched request. The status code is not interpreted:
// error statuses reported by the service are Responses like any other.
type Response struct {
	statusCode int
	header     http.Header
	body       []byte

	parsed   any
	parseErr error
}

func newResponse(statusCode int, header http.Header, body []byte) *Response {
	r := &Response{
		statusCode: statusCode,
		header:     header,
		body:       body,
	}
	if header == nil {
		r.header = http.Header{}
	}
	if err := json.Unmarshal(body, &r.parsed); err != nil {
		r.parsed = nil
		r.parseErr = err
	}
	return r
}

func (r *Response) StatusCode() int {
	return r.statusCode
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

func (r *Response) Header() http.Header {
	return r.header
}

// Text returns the raw body.
func (r *Response) Text() string {
	return string(r.body)
}

func (r *Response) Bytes() []byte {
	return r.body
}

// JSON returns the body parsed as a JSON object.
func (r *Response) JSON() (map[string]any, error) {
	if r.parseErr != nil {
		return nil, ErrMalformedResponse.MsgErr("response body is not valid JSON", r.parseErr)
	}
	obj, ok := r.parsed.(map[string]any)
	if !ok {
		return nil, ErrMalformedResponse.Msg("response body is not a JSON object")
	}
	return obj, nil
}

// Data returns the "data" member of the body, or nil when the body has none.
func (r *Response) Data() (map[string]any, error) {
	obj, err := r.JSON()
	if err != nil {
		return nil, err
	}
	data, ok := obj["data"]
	if !ok || data == nil {
		return nil, nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return nil, ErrMalformedResponse.Msg("data member is not a JSON object")
	}
	return m, nil
}

// Get returns the value at a gjson path, for example "data.affected_items.#.id". The
// result does not exist when the body is not JSON.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.body, path)
}

// Decode decodes the body object into v, matching fields by their json tags.
func (r *Response) Decode(v any) error {
	obj, err := r.JSON()
	if err != nil {
		return err
	}
	return decode(obj, v)
}

// DecodeData decodes the "data" member of the body into v.
func (r *Response) DecodeData(v any) error {
	data, err := r.Data()
	if err != nil {
		return err
	}
	if data == nil {
		return ErrMalformedResponse.Msg("response has no data member")
	}
	return decode(data, v)
}

func decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return ErrInvalidRequest.MsgErr("unable to decode response", err)
	}
	if err := dec.Decode(in); err != nil {
		return ErrMalformedResponse.MsgErr("unable to decode response: "+err.Error(), err)
	}
	return nil
}
