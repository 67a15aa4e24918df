// Package authsvc implements the registration and login flows for both
// portal roles.
//
// It sits between the credential store and the session manager: it is
// the only writer of credential records and, together with the session
// manager it drives, the only writer of session-cache state. Students
// authenticate with their date of birth (a shared secret stored as-is)
// and proctors with a password run through the password verifier.
package authsvc
