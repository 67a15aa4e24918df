// Package token generates opaque bearer tokens for the session layer.
//
// Tokens carry no embedded claims. All meaning lives in the session
// cache, so a token is nothing but unguessable random material encoded
// for safe transport in HTTP headers.
package token
