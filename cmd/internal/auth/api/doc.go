// Package authapi exposes the authentication flows over HTTP and owns
// the session-verification middleware used by the rest of the portal.
package authapi
