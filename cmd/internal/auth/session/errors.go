package session

import "errors"

var (
	// ErrInvalidSession is returned when a token does not resolve to a
	// live session. Expired, revoked, and never-issued tokens are not
	// distinguishable to the caller.
	ErrInvalidSession = errors.New("invalid session")

	// ErrStoreUnavailable is returned when the session cache cannot be
	// reached or an operation fails for infrastructure reasons.
	ErrStoreUnavailable = errors.New("session store unavailable")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
