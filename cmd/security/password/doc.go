// Package password provides credential hashing and verification for the portal.
//
// Stored credentials carry an implicit tag: values with a bcrypt prefix are
// verified with bcrypt; anything else is treated as a legacy plaintext
// credential and compared in constant time. The legacy path exists only to
// read pre-migration rows — nothing in this codebase writes plaintext
// credentials.
package password
