package acoustic_test

import (
	"math"
	"testing"

	"autodiag/internal/acoustic"
)

func mustExtract(t *testing.T, samples []float64, sampleRate int) *acoustic.Fingerprint {
	t.Helper()
	fp, err := acoustic.Extract(samples, sampleRate)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	return fp
}

func TestRankMatchesSelfMatchRanksFirst(t *testing.T) {
	const sampleRate = 8000
	query := mustExtract(t, sineWave(850, 0.5, sampleRate, 4096), sampleRate)
	same := mustExtract(t, sineWave(850, 0.5, sampleRate, 4096), sampleRate)
	other := mustExtract(t, sineWave(120, 0.2, sampleRate, 4096), sampleRate)

	matches := acoustic.RankMatches(query, []acoustic.CorpusEntry{
		{ItemID: "other", Fingerprint: other},
		{ItemID: "same", Fingerprint: same},
	})

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ItemID != "same" {
		t.Fatalf("expected identical signal to rank first, got %q", matches[0].ItemID)
	}
	if math.Abs(matches[0].Similarity-1.0) > 1e-9 {
		t.Fatalf("self similarity: got %.6f want 1.0", matches[0].Similarity)
	}
	if matches[1].Similarity > matches[0].Similarity {
		t.Fatal("matches not sorted by similarity descending")
	}
}

func TestRankMatchesSkipsMissingFingerprints(t *testing.T) {
	const sampleRate = 8000
	query := mustExtract(t, sineWave(440, 0.5, sampleRate, 4096), sampleRate)

	matches := acoustic.RankMatches(query, []acoustic.CorpusEntry{
		{ItemID: "no-audio"},
		{ItemID: "with-audio", Fingerprint: query},
	})
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].ItemID != "with-audio" {
		t.Fatalf("unexpected match: %q", matches[0].ItemID)
	}
}

func TestRankMatchesEmptyCorpus(t *testing.T) {
	const sampleRate = 8000
	query := mustExtract(t, sineWave(440, 0.5, sampleRate, 4096), sampleRate)

	if matches := acoustic.RankMatches(query, nil); len(matches) != 0 {
		t.Fatalf("expected no matches for empty corpus, got %d", len(matches))
	}
	if matches := acoustic.RankMatches(nil, []acoustic.CorpusEntry{{ItemID: "a", Fingerprint: query}}); matches != nil {
		t.Fatalf("expected nil for nil query, got %v", matches)
	}
}

func TestRankMatchesTiesKeepCorpusOrder(t *testing.T) {
	const sampleRate = 8000
	query := mustExtract(t, sineWave(440, 0.5, sampleRate, 4096), sampleRate)
	twin := mustExtract(t, sineWave(440, 0.5, sampleRate, 4096), sampleRate)

	matches := acoustic.RankMatches(query, []acoustic.CorpusEntry{
		{ItemID: "first", Fingerprint: twin},
		{ItemID: "second", Fingerprint: twin},
	})
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ItemID != "first" || matches[1].ItemID != "second" {
		t.Fatalf("tie did not keep corpus order: %q, %q", matches[0].ItemID, matches[1].ItemID)
	}
}
