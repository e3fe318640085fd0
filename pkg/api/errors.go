package api

import (
	"context"
	"errors"

	"github.com/fortishield/fortishield-qa-framework/internal/common/apperrors"
	"github.com/fortishield/fortishield-qa-framework/internal/common/httpclient"
)

// Errors returned by this package. Match them with errors.Is; the values returned by
// operations are derived from these and carry more specific messages.
var (
	ErrClient = apperrors.New("fortishield api client error")

	// ErrConnection reports that the service could not be reached at all. HTTP error
	// statuses are never reported this way.
	ErrConnection = ErrClient.New("cannot establish connection")

	// ErrAuthentication reports a rejected login exchange. StatusCode() carries the
	// status the service answered with.
	ErrAuthentication = ErrClient.New("error obtaining login token")

	// ErrMalformedResponse reports structured data access on a body that is not JSON.
	ErrMalformedResponse = ErrClient.New("malformed response")

	ErrInvalidRequest = ErrClient.New("invalid request")
	ErrInvalidConfig  = ErrClient.New("invalid configuration")
	ErrNoToken        = ErrClient.New("session holds no token")

	// ErrTokenExpiration reports that the service refused a token expiration update
	// requested at construction.
	ErrTokenExpiration = ErrClient.New("unable to set token expiration")

	// ErrPartialReconfiguration reports that the service accepted a new token expiration
	// but the fresh token governed by it could not be obtained. The remote policy has
	// changed and the Session holds no token. The underlying authentication or
	// connection error is wrapped as well.
	ErrPartialReconfiguration = ErrClient.New("token expiration changed but no fresh token was obtained")
)

// translate maps transport failures onto the package's error kinds. Unreachable is tested
// first because a client timeout wraps an error that also matches context.DeadlineExceeded.
func translate(baseURL string, err error) error {
	switch {
	case errors.Is(err, httpclient.ErrUnreachable):
		return ErrConnection.MsgErr("cannot establish connection with "+baseURL, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return ErrInvalidRequest.MsgErr(err.Error(), err)
	}
}
