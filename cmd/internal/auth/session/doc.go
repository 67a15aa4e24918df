// Package session maintains the bidirectional token map that backs
// portal logins.
//
// Each active login is a pair of cache entries with symmetric TTLs:
// a forward key "session:{token}" holding the identity, and a reverse
// key "{role}:{naturalKey}" holding the token. The pair is a bijection
// and each identity holds at most one live session at a time.
package session
