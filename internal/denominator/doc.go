// Package denominator finds the cross-source common denominator: the
// taxonomy keywords with the broadest and most frequent support across
// collected evidence snippets.
package denominator
