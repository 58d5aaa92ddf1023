// Package taxonomy holds the immutable table of canonical fault and
// component phrases the analyzer scans evidence text against.
package taxonomy
