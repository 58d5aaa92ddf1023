// Package diagnose sequences acoustic extraction, corpus matching, keyword
// aggregation, confidence scoring, and external reasoning into one
// best-effort diagnosis per request.
//
// The pipeline degrades rather than fails: per-item corpus problems become
// absent fields, reasoning outages trigger the deterministic keyword
// fallback, and only unusable query audio with zero text evidence surfaces
// as an error.
package diagnose
