package diagnose

import (
	"autodiag/internal/acoustic"
	"autodiag/internal/evidence"
)

// Vehicle identifies the machine under diagnosis.
type Vehicle struct {
	Year         int    `json:"year"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
}

// CorpusItem pairs a reference item with its decoded audio, when the
// boundary managed to decode any. Samples may be nil; the item then
// contributes text evidence only.
type CorpusItem struct {
	Item       evidence.ReferenceItem
	Samples    []float64
	SampleRate int
}

// Request is everything one diagnosis run consumes. Requests are independent;
// nothing here is shared across runs.
type Request struct {
	Vehicle       Vehicle
	SoundLocation string

	// Samples is the decoded query recording.
	Samples    []float64
	SampleRate int

	Corpus []CorpusItem
	User   evidence.UserContext
}

// Result is the terminal diagnosis artifact. Immutable once constructed.
type Result struct {
	PredictedIssue string          `json:"predicted_issue"`
	Confidence     float64         `json:"confidence"`
	AIPowered      bool            `json:"ai_powered"`
	DataSources    []string        `json:"data_sources"`
	Keywords       []string        `json:"keywords"`
	BestAudioMatch *acoustic.Match `json:"best_audio_match,omitempty"`
}
