// Package mother implements the HTTP client for the remote catalog. The
// daughter store mirrors what this client fetches; the download worker is the
// only production caller. Authentication is a JWT bearer token plus a role
// claim, both replaceable at runtime.
package mother
