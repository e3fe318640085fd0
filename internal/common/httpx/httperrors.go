package httpx

import (
	"net/http"

	"github.com/fortishield/fortishield-qa-framework/internal/common/apperrors"
)

// Error represents an HTTP problem response.
type Error struct {
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	StatusCode int    `json:"error"`
}

// Send writes the problem body to w. A nil writer is ignored.
func (e *Error) Send(w http.ResponseWriter) {
	if w == nil {
		return
	}
	rspJson, err := json.Marshal(e)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Unable to parse error"))
		return
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(e.StatusCode)
	w.Write(rspJson)
}

// Error returns the error detail.
func (e *Error) Error() string {
	return e.Detail
}

// SendError sends an application error as a problem response, defaulting to 500 when
// the error carries no status code.
func SendError(w http.ResponseWriter, err apperrors.Error) {
	if err == nil {
		return
	}
	statusCode := err.StatusCode()
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	newError(statusCode, err.ErrorAll()).Send(w)
}

func newError(statusCode int, detail string) *Error {
	return &Error{
		Title:      http.StatusText(statusCode),
		Detail:     detail,
		StatusCode: statusCode,
	}
}

func firstOr(s []string, def string) string {
	if len(s) > 0 {
		return s[0]
	}
	return def
}

// ErrReqMethodNotSupported returns an error for unsupported HTTP methods.
func ErrReqMethodNotSupported() *Error {
	return newError(http.StatusMethodNotAllowed, "request method not supported")
}

// ErrUnableToParseReqData returns an error when request data cannot be parsed.
func ErrUnableToParseReqData() *Error {
	return newError(http.StatusBadRequest, "unable to parse request data")
}

// ErrApplicationError returns an error for application-level failures.
func ErrApplicationError(detail ...string) *Error {
	return newError(http.StatusInternalServerError, firstOr(detail, "unable to process request"))
}

// ErrUnAuthorized returns an error for unauthorized requests.
func ErrUnAuthorized(detail ...string) *Error {
	return newError(http.StatusUnauthorized, firstOr(detail, "unable to authenticate request"))
}

// ErrInvalidRequest returns an error for invalid request data.
func ErrInvalidRequest(detail ...string) *Error {
	return newError(http.StatusBadRequest, firstOr(detail, "invalid request data or empty request values"))
}

// ErrNotFound returns an error for unknown resources.
func ErrNotFound(detail ...string) *Error {
	return newError(http.StatusNotFound, firstOr(detail, "resource not found"))
}

// ErrRequestTimeout returns an error for requests exceeding the handler deadline.
func ErrRequestTimeout() *Error {
	return newError(http.StatusServiceUnavailable, "request timed out")
}

// ErrStatus returns a problem for an arbitrary status code.
func ErrStatus(statusCode int, detail ...string) *Error {
	return newError(statusCode, firstOr(detail, http.StatusText(statusCode)))
}
