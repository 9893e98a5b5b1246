// Package store defines the persistence contracts of the booking backend:
// users and roles (the credential store), catalog services, outstanding
// refresh tokens, and the access-token revocation ledger. Implementations
// live under internal/platform.
package store
