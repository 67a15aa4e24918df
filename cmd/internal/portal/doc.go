// Package portal serves the authenticated proctor/student surface:
// roster ("proctee") listings, per-student detail, and report
// generation proxied to the external report service.
//
// Every handler assumes the session middleware already resolved the
// caller's identity into the request context; access control here is
// ownership, not authentication.
package portal
