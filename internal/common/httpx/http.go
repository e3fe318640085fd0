// Package httpx provides the response writers and error bodies used by the in-process
// management service mock. Error bodies follow the service's problem format:
// {"title": ..., "detail": ..., "error": <status>}.
package httpx

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/fortishield/fortishield-qa-framework/internal/common/apperrors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
)

// GetRequestData parses the JSON request body into data.
// Only POST and PUT requests carry a body.
func GetRequestData(r *http.Request, data any) error {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return ErrReqMethodNotSupported()
	}
	if r.Body == nil || r.Body == http.NoBody {
		log.Ctx(r.Context()).Error().Msg("empty request body")
		return ErrUnableToParseReqData()
	}
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		return ErrUnableToParseReqData()
	}
	return nil
}

// Response represents a handler result with status code, content type and payload.
// Text responses must carry a string payload.
type Response struct {
	StatusCode  int
	Response    any
	ContentType string
}

// RequestHandler defines a function type for handling HTTP requests.
type RequestHandler func(r *http.Request) (*Response, error)

// WrapHttpRsp adapts a RequestHandler to http.HandlerFunc, rendering errors as problem
// bodies and responses according to their content type.
func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			if httperror, ok := err.(*Error); ok {
				httperror.Send(w)
			} else if appErr, ok := err.(apperrors.Error); ok {
				SendError(w, appErr)
			} else {
				ErrApplicationError(err.Error()).Send(w)
			}
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}
		if rsp.StatusCode == 0 {
			rsp.StatusCode = http.StatusOK
		}
		switch rsp.ContentType {
		case "", ContentTypeJSON:
			SendJsonRsp(r.Context(), w, rsp.StatusCode, rsp.Response)
		case ContentTypeText:
			s, ok := rsp.Response.(string)
			if !ok {
				ErrApplicationError("text response must be a string").Send(w)
				return
			}
			SendTextRsp(w, rsp.StatusCode, s)
		default:
			ErrApplicationError("unsupported response type").Send(w)
		}
	})
}
