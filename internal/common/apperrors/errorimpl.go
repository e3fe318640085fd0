package apperrors

import (
	"errors"
	"strings"
)

// appError implements the apperrors.Error interface.
type appError struct {
	msg        string
	base       error   // parent in the derivation chain
	causes     []error // attached errors, parent first
	statuscode int
}

func (e *appError) Error() string {
	return e.msg
}

// ErrorAll returns the message followed by the messages of attached causes that are not
// part of the derivation chain.
func (e *appError) ErrorAll() string {
	var b strings.Builder
	b.WriteString(e.msg)
	for _, err := range e.causes {
		if _, ok := err.(*appError); ok {
			continue
		}
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) UnwrapAll() []error {
	return e.causes
}

func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statuscode: e.statuscode,
	}
}

func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		causes:     append([]error{e}, e.causes...),
		statuscode: e.statuscode,
	}
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{
		msg:        msg,
		base:       e,
		causes:     append([]error{e}, nonNil(errs)...),
		statuscode: e.statuscode,
	}
}

func (e *appError) Err(errs ...error) Error {
	return &appError{
		msg:        e.msg,
		base:       e,
		causes:     append([]error{e}, nonNil(errs)...),
		statuscode: e.statuscode,
	}
}

// SetStatusCode returns a shallow copy with an updated status code.
func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statuscode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

// Is reports whether target is the receiver's parent chain or one of its causes.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.causes {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// New creates a root-level error with the given message.
func New(msg string) Error {
	return &appError{
		msg: msg,
	}
}

func nonNil(errs []error) []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
