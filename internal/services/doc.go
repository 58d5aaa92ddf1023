// Package services provides shared error classification markers and
// context helpers used across diagnosis components.
package services
