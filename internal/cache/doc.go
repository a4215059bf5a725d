// Package cache persists encoded penalty models in a SQLite store keyed
// by constraint identity.
//
// Opening a store ensures the schema idempotently, so any number of
// processes may race on first open without corrupting it. Writes are
// first-write-wins: a key that is already present is left untouched.
// Merge consolidates another store's entries into this one in a single
// transaction, so a failed merge leaves the target exactly as it was.
package cache
