// Package evidence models externally supplied reference items and flattens
// their text fields into bounded snippets for keyword analysis and the
// reasoning context.
package evidence
