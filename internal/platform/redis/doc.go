// Package redis provides Redis-backed implementations of the refresh token
// store and revocation ledger defined in internal/store. Records expire
// through Redis key TTLs, so pruning is a no-op.
package redis
