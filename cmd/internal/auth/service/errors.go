package authsvc

import "errors"

// ErrInvalidCredentials is returned when an identity exists but the
// presented secret does not match. Lookup failures surface as the
// store's not-found error instead; the two are distinct on the wire.
var ErrInvalidCredentials = errors.New("invalid credentials")
