// Package apperrors provides chained error values for the Fortishield API client. An Error
// carries a message, an optional HTTP status code reported by the remote service, and the
// chain of sentinel and cause errors it was derived from so that errors.Is keeps working
// across every derivation.
package apperrors

// Error defines the interface for client errors. All derivation methods return a new
// Error and leave the receiver untouched, so package-level sentinels stay immutable.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // fresh error deriving from the receiver
	Msg(msg string) Error                  // new message, wraps the receiver and its causes
	MsgErr(msg string, err ...error) Error // new message, wraps the receiver and extra causes
	Err(err ...error) Error                // same message, attaches extra causes
	SetStatusCode(int) Error               // records the HTTP status observed remotely
	StatusCode() int                       // HTTP status, zero when none was observed
	ErrorAll() string                      // message followed by every attached cause
	UnwrapAll() []error                    // all wrapped errors in attach order
}
