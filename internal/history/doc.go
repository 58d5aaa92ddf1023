// Package history persists finished diagnoses to a local SQLite database.
// It is an append-only audit trail; request processing itself is stateless.
package history
