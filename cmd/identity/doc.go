// Package identity implements the portal's identity foundation.
//
// It defines the two principal kinds (student, proctor), natural-key
// normalization, the credential-store boundary, and the typed error
// contract shared by the HTTP and session layers.
package identity
