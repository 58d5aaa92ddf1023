// Package acoustic extracts fixed-shape fingerprints from decoded audio
// signals and ranks a reference corpus against a query fingerprint.
//
// A fingerprint combines scalar spectral descriptors (dominant frequency,
// RMS energy, zero-crossing rate, bandwidth, rolloff) with a cepstral matrix
// computed over overlapping windows. Matching reduces each fingerprint to a
// fixed-length comparison vector so differing frame counts stay comparable.
package acoustic
