package history_test

import (
	"context"
	"path/filepath"
	"testing"

	"autodiag/internal/acoustic"
	"autodiag/internal/config"
	"autodiag/internal/diagnose"
	"autodiag/internal/history"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.DataDir = dir
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	return &cfg
}

func TestRecordAndRecentRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()

	result := &diagnose.Result{
		PredictedIssue: "timing chain",
		Confidence:     0.88,
		AIPowered:      true,
		DataSources:    []string{"Audio analysis", "12 reference videos"},
		Keywords:       []string{"timing chain", "timing chain tensioner"},
		BestAudioMatch: &acoustic.Match{ItemID: "item-3", Similarity: 0.91},
	}
	vehicle := diagnose.Vehicle{Year: 2015, Manufacturer: "Honda", Model: "Accord"}

	if err := store.RecordDiagnosis(context.Background(), vehicle, "engine bay", result); err != nil {
		t.Fatalf("RecordDiagnosis returned error: %v", err)
	}

	records, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Vehicle != "2015 Honda Accord" {
		t.Fatalf("vehicle label: got %q", rec.Vehicle)
	}
	if rec.SoundLocation != "engine bay" {
		t.Fatalf("sound location: got %q", rec.SoundLocation)
	}
	if rec.PredictedIssue != "timing chain" {
		t.Fatalf("predicted issue: got %q", rec.PredictedIssue)
	}
	if rec.Confidence != 0.88 {
		t.Fatalf("confidence: got %.4f", rec.Confidence)
	}
	if !rec.AIPowered {
		t.Fatal("expected ai_powered true")
	}
	if len(rec.DataSources) != 2 || rec.DataSources[0] != "Audio analysis" {
		t.Fatalf("data sources: got %v", rec.DataSources)
	}
	if len(rec.Keywords) != 2 {
		t.Fatalf("keywords: got %v", rec.Keywords)
	}
	if rec.BestAudioMatch == nil || rec.BestAudioMatch.ItemID != "item-3" {
		t.Fatalf("best match: got %+v", rec.BestAudioMatch)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("expected non-zero created_at")
	}
}

func TestRecentOrdersNewestFirstAndHonorsLimit(t *testing.T) {
	cfg := testConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()

	vehicle := diagnose.Vehicle{Year: 2012, Manufacturer: "Mazda", Model: "3"}
	for _, issue := range []string{"first", "second", "third"} {
		result := &diagnose.Result{PredictedIssue: issue, Confidence: 0.70}
		if err := store.RecordDiagnosis(context.Background(), vehicle, "", result); err != nil {
			t.Fatalf("RecordDiagnosis(%q) returned error: %v", issue, err)
		}
	}

	records, err := store.Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].PredictedIssue != "third" || records[1].PredictedIssue != "second" {
		t.Fatalf("unexpected order: %q, %q", records[0].PredictedIssue, records[1].PredictedIssue)
	}
}

func TestRecordWithoutMatchStoresNull(t *testing.T) {
	cfg := testConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()

	result := &diagnose.Result{
		PredictedIssue: "Undetermined mechanical fault - professional inspection recommended",
		Confidence:     0.73,
		DataSources:    []string{"User description"},
	}
	if err := store.RecordDiagnosis(context.Background(), diagnose.Vehicle{Year: 2010, Manufacturer: "Ford", Model: "Focus"}, "", result); err != nil {
		t.Fatalf("RecordDiagnosis returned error: %v", err)
	}

	records, err := store.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if records[0].BestAudioMatch != nil {
		t.Fatalf("expected nil best match, got %+v", records[0].BestAudioMatch)
	}
	if len(records[0].Keywords) != 0 {
		t.Fatalf("expected no keywords, got %v", records[0].Keywords)
	}
}

func TestOpenIsIdempotentAcrossRestarts(t *testing.T) {
	cfg := testConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("first Open returned error: %v", err)
	}
	result := &diagnose.Result{PredictedIssue: "water pump", Confidence: 0.75}
	if err := store.RecordDiagnosis(context.Background(), diagnose.Vehicle{Year: 2018, Manufacturer: "Kia", Model: "Soul"}, "", result); err != nil {
		t.Fatalf("RecordDiagnosis returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("second Open returned error: %v", err)
	}
	defer reopened.Close()

	records, err := reopened.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(records) != 1 || records[0].PredictedIssue != "water pump" {
		t.Fatalf("records did not survive restart: %+v", records)
	}
}
