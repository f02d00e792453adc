package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown username and wrong
	// password; callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrInvalidToken is internal to the codec. It is never surfaced
	// directly; the resolver maps it to ErrUnauthorized.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnauthorized is the uniform identity-resolution failure: bad
	// signature, expired token, missing subject and unknown subject
	// all collapse to it.
	ErrUnauthorized = errors.New("could not validate credentials")

	// ErrInactiveAccount means the identity resolved fine but the
	// account is disabled.
	ErrInactiveAccount = errors.New("inactive user")

	ErrUserNotFound = errors.New("user not found")
)
