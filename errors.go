package sessionkit

import "errors"

var (
	// ErrSessionClosed is returned by every operation after [Session.Close].
	ErrSessionClosed = errors.New("session disposed")
	// ErrNotAuthenticated is returned by operations that require a signed-in
	// user, such as profile update and password change.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrMissingUser is returned when a success envelope carried no usable
	// user payload.
	ErrMissingUser = errors.New("response carried no user")
	// ErrMissingToken is returned when a login or register success envelope
	// carried no access token.
	ErrMissingToken = errors.New("response carried no access token")
)
