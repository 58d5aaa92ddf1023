package diagnose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"autodiag/internal/acoustic"
	"autodiag/internal/confidence"
	"autodiag/internal/denominator"
	"autodiag/internal/evidence"
	"autodiag/internal/logging"
	"autodiag/internal/services"
	"autodiag/internal/taxonomy"
)

// State names the orchestrator's phases, mostly for logging context.
type State string

const (
	StateCollecting State = "collecting"
	StateAnalyzing  State = "analyzing"
	StateReasoning  State = "reasoning"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

const maxResultKeywords = 5

// Reasoner is the external reasoning collaborator boundary. It accepts the
// structured context and returns free-text diagnosis; any error means
// "unavailable" and triggers the deterministic fallback.
type Reasoner interface {
	Configured() bool
	Diagnose(ctx context.Context, systemPrompt, diagnosticContext string) (string, error)
}

// Recorder persists finished diagnoses. Recording is best-effort; failures
// never affect the returned result.
type Recorder interface {
	RecordDiagnosis(ctx context.Context, vehicle Vehicle, soundLocation string, result *Result) error
}

// Options configures an Orchestrator.
type Options struct {
	Table               *taxonomy.Table
	Caps                evidence.Caps
	Workers             int
	SimilarityThreshold float64
	ReasoningTimeout    time.Duration
	SystemPrompt        string
	Reasoner            Reasoner
	Recorder            Recorder
	Logger              *slog.Logger
}

// Orchestrator sequences collection, analysis, and reasoning for one
// diagnosis request at a time. It holds no per-request state; concurrent
// Run calls are independent.
type Orchestrator struct {
	table               *taxonomy.Table
	collector           *evidence.Collector
	workers             int
	similarityThreshold float64
	reasoningTimeout    time.Duration
	systemPrompt        string
	reasoner            Reasoner
	recorder            Recorder
	logger              *slog.Logger
}

// NewOrchestrator builds an orchestrator. A nil table falls back to the
// built-in taxonomy; a nil reasoner disables external reasoning entirely.
func NewOrchestrator(opts Options) *Orchestrator {
	table := opts.Table
	if table == nil {
		table = taxonomy.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 3
	}
	timeout := opts.ReasoningTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	prompt := opts.SystemPrompt
	if strings.TrimSpace(prompt) == "" {
		prompt = defaultSystemPrompt
	}
	return &Orchestrator{
		table:               table,
		collector:           evidence.NewCollector(opts.Caps),
		workers:             workers,
		similarityThreshold: opts.SimilarityThreshold,
		reasoningTimeout:    timeout,
		systemPrompt:        prompt,
		reasoner:            opts.Reasoner,
		recorder:            opts.Recorder,
		logger:              logging.NewComponentLogger(opts.Logger, "diagnose"),
	}
}

// defaultSystemPrompt is overridden via Options by callers wiring the
// openrouter prompt; keeping a copy here avoids an import cycle for tests.
const defaultSystemPrompt = "You are an expert automotive diagnostic technician. " +
	"Find the common denominator across all supplied sources and provide one specific, actionable diagnosis."

// Run executes the full pipeline. The only terminal failure is unusable query
// audio combined with zero text evidence; every other partial failure
// degrades into a best-effort result.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	start := time.Now()

	// COLLECTING: query fingerprint plus corpus fingerprints and text.
	logger := o.stateLogger(ctx, StateCollecting)
	queryFP, queryErr := acoustic.Extract(req.Samples, req.SampleRate)
	if queryErr != nil {
		logger.Debug("query audio unusable", logging.Error(queryErr))
	}

	items := fingerprintCorpus(ctx, req.Corpus, o.workers, logger)
	snippets := o.collector.Collect(items)

	if queryErr != nil && len(snippets) == 0 && strings.TrimSpace(req.User.Description) == "" {
		o.stateLogger(ctx, StateFailed).Error("no salvageable evidence",
			logging.Error(queryErr),
			logging.Int("corpus_items", len(req.Corpus)),
		)
		return nil, fmt.Errorf("diagnose: %w and no text evidence", queryErr)
	}

	// ANALYZING: similarity ranking and keyword aggregation.
	logger = o.stateLogger(ctx, StateAnalyzing)
	var matches []acoustic.Match
	if queryFP != nil {
		matches = acoustic.RankMatches(queryFP, corpusEntries(items))
	}
	candidates := denominator.Analyze(snippets, o.table)
	if filtered := plausibleCandidates(candidates, req.Vehicle); len(filtered) != len(candidates) {
		logger.Debug("implausible candidates dropped",
			logging.Int("dropped", len(candidates)-len(filtered)),
			logging.String("vehicle", fmt.Sprintf("%d %s %s", req.Vehicle.Year, req.Vehicle.Manufacturer, req.Vehicle.Model)),
		)
		candidates = filtered
	}
	logger.Debug("analysis complete",
		logging.Int("matches", len(matches)),
		logging.Int("candidates", len(candidates)),
	)

	var best *acoustic.Match
	if len(matches) > 0 {
		top := matches[0]
		best = &top
	}

	score := confidence.Score(o.signals(queryFP, items, snippets, best, req.User))

	// REASONING: external collaborator with deterministic fallback.
	logger = o.stateLogger(ctx, StateReasoning)
	diagnosticContext := buildContext(req, queryFP, snippets, best, items)
	predicted, aiPowered := o.reason(ctx, logger, diagnosticContext, candidates)

	result := &Result{
		PredictedIssue: predicted,
		Confidence:     score,
		AIPowered:      aiPowered,
		DataSources:    dataSources(queryFP, items, snippets, req.User),
		Keywords:       topKeywords(candidates),
		BestAudioMatch: best,
	}

	if o.recorder != nil {
		if err := o.recorder.RecordDiagnosis(ctx, req.Vehicle, req.SoundLocation, result); err != nil {
			logging.WarnWithContext(o.stateLogger(ctx, StateDone), "failed to record diagnosis", "history_record_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check history database permissions"),
				logging.String(logging.FieldImpact, "diagnosis returned but not stored in history"),
			)
		}
	}

	o.stateLogger(ctx, StateDone).Info("diagnosis complete",
		logging.Float64("confidence", result.Confidence),
		logging.Bool("ai_powered", result.AIPowered),
		logging.Int("data_sources", len(result.DataSources)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// reason invokes the external collaborator when configured, falling back to
// the top keyword candidate on any failure. The fallback never alters the
// confidence score.
func (o *Orchestrator) reason(ctx context.Context, logger *slog.Logger, diagnosticContext string, candidates []denominator.Candidate) (string, bool) {
	if o.reasoner != nil && o.reasoner.Configured() {
		reasonCtx, cancel := context.WithTimeout(ctx, o.reasoningTimeout)
		defer cancel()
		text, err := o.reasoner.Diagnose(reasonCtx, o.systemPrompt, diagnosticContext)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), true
		}
		marker := services.ErrReasoningUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		wrapped := services.Wrap(marker, "diagnose", "reasoning", "external reasoning failed", err)
		logging.WarnWithContext(logger, "falling back to keyword diagnosis", "reasoning_unavailable",
			logging.Error(wrapped),
			logging.String(logging.FieldErrorHint, "check reasoning api key and connectivity"),
			logging.String(logging.FieldImpact, "diagnosis uses the deterministic keyword fallback"),
		)
	}
	if len(candidates) > 0 {
		return candidates[0].Keyword, false
	}
	return "Undetermined mechanical fault - professional inspection recommended", false
}

func (o *Orchestrator) signals(fp *acoustic.Fingerprint, items []evidence.ReferenceItem, snippets []evidence.Snippet, best *acoustic.Match, user evidence.UserContext) confidence.Signals {
	counts := evidence.CountByKind(snippets)
	sig := confidence.Signals{
		UsableTextItems:     usableTextItems(items),
		CommentsPresent:     counts[evidence.SourceComment] > 0,
		TranscriptsPresent:  counts[evidence.SourceTranscript] > 0,
		SimilarityThreshold: o.similarityThreshold,
		UserDescription:     strings.TrimSpace(user.Description) != "",
		OccurrenceContext:   len(user.Occurrence) > 0,
	}
	if fp != nil {
		sig.AudioUsable = true
		sig.RMSEnergy = fp.RMSEnergy
		sig.ZeroCrossingRate = fp.ZeroCrossingRate
	}
	if best != nil {
		sig.HasAudioMatch = true
		sig.BestSimilarity = best.Similarity
	}
	return sig
}

func (o *Orchestrator) stateLogger(ctx context.Context, state State) *slog.Logger {
	return logging.WithContext(services.WithState(ctx, string(state)), o.logger)
}

func corpusEntries(items []evidence.ReferenceItem) []acoustic.CorpusEntry {
	entries := make([]acoustic.CorpusEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, acoustic.CorpusEntry{ItemID: item.ID, Fingerprint: item.Fingerprint})
	}
	return entries
}

// usableTextItems counts reference items that yielded a usable title or
// description; this drives both the corpus-size confidence tier and the
// reference-videos source label.
func usableTextItems(items []evidence.ReferenceItem) int {
	count := 0
	for _, item := range items {
		if strings.TrimSpace(item.Title) != "" || strings.TrimSpace(item.Description) != "" {
			count++
		}
	}
	return count
}

// dataSources lists only sources that actually yielded evidence, in a fixed
// order. Nothing here is ever hard-coded into results.
func dataSources(fp *acoustic.Fingerprint, items []evidence.ReferenceItem, snippets []evidence.Snippet, user evidence.UserContext) []string {
	counts := evidence.CountByKind(snippets)
	var sources []string
	if fp != nil {
		sources = append(sources, "Audio analysis")
	}
	if n := usableTextItems(items); n > 0 {
		sources = append(sources, fmt.Sprintf("%d reference videos", n))
	}
	if n := counts[evidence.SourceComment]; n > 0 {
		sources = append(sources, fmt.Sprintf("%d comments", n))
	}
	if n := counts[evidence.SourceTranscript]; n > 0 {
		sources = append(sources, fmt.Sprintf("%d transcripts", n))
	}
	if strings.TrimSpace(user.Description) != "" {
		sources = append(sources, "User description")
	}
	return sources
}

func topKeywords(candidates []denominator.Candidate) []string {
	limit := len(candidates)
	if limit > maxResultKeywords {
		limit = maxResultKeywords
	}
	keywords := make([]string, 0, limit)
	for _, candidate := range candidates[:limit] {
		keywords = append(keywords, candidate.Keyword)
	}
	return keywords
}
