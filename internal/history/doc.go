// Package history persists a record of every analysis run in SQLite.
//
// Each run stores what was read, how many rows survived each stage, and the
// resulting mean squared error, so repeated runs over the same dataset can be
// compared from the CLI. Writes take an advisory file lock next to the
// database and retry transient SQLITE_BUSY errors with a short backoff.
package history
