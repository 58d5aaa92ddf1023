package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"autodiag/internal/acoustic"
	"autodiag/internal/diagnose"
	"autodiag/internal/history"
)

func TestRenderResult(t *testing.T) {
	result := &diagnose.Result{
		PredictedIssue: "timing chain",
		Confidence:     0.88,
		AIPowered:      false,
		DataSources:    []string{"Audio analysis", "12 reference videos"},
		Keywords:       []string{"timing chain", "timing chain tensioner"},
		BestAudioMatch: &acoustic.Match{ItemID: "item-3", Similarity: 0.914},
	}

	out := renderResult(result)
	for _, want := range []string{
		"Predicted issue",
		"timing chain",
		"88%",
		"Audio analysis, 12 reference videos",
		"timing chain, timing chain tensioner",
		"item-3 (91.4% similarity)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("result table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderResultOmitsEmptyOptionalRows(t *testing.T) {
	result := &diagnose.Result{
		PredictedIssue: "Undetermined mechanical fault - professional inspection recommended",
		Confidence:     0.73,
		DataSources:    []string{"User description"},
	}

	out := renderResult(result)
	if strings.Contains(out, "Keywords") {
		t.Fatalf("unexpected keywords row:\n%s", out)
	}
	if strings.Contains(out, "Best audio match") {
		t.Fatalf("unexpected best match row:\n%s", out)
	}
}

func TestRenderHistory(t *testing.T) {
	records := []history.Record{
		{
			ID:             2,
			CreatedAt:      time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			Vehicle:        "2015 Honda Accord",
			PredictedIssue: "timing chain",
			Confidence:     0.95,
			AIPowered:      true,
			Keywords:       []string{"timing chain"},
			BestAudioMatch: &acoustic.Match{ItemID: "item-1", Similarity: 1.0},
		},
		{
			ID:             1,
			CreatedAt:      time.Date(2026, 3, 13, 17, 5, 0, 0, time.UTC),
			Vehicle:        "2010 Ford Focus",
			PredictedIssue: "wheel bearing",
			Confidence:     0.77,
		},
	}

	out := renderHistory(records)
	for _, want := range []string{
		"2015 Honda Accord",
		"timing chain",
		"95%",
		"item-1 (100%)",
		"2010 Ford Focus",
		"wheel bearing",
		"77%",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("history table missing %q:\n%s", want, out)
		}
	}
}

func TestWriteJSONIndents(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, map[string]string{"predicted_issue": "timing chain"}); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "  \"predicted_issue\": \"timing chain\"") {
		t.Fatalf("expected indented JSON, got %q", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Fatalf("expected trailing newline, got %q", got)
	}
}
