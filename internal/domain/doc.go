// Package domain contains the core entities of the booking backend: users,
// roles and their permission sets, catalog services, and the credential
// records used by the authentication subsystem. It has no dependencies on
// storage or transport.
package domain
