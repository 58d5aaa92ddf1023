package denominator

import (
	"sort"
	"strings"

	"autodiag/internal/evidence"
	"autodiag/internal/taxonomy"
)

// Candidate is one taxonomy keyword with its cross-source support. Recomputed
// per request, never cached.
type Candidate struct {
	Keyword         string
	OccurrenceCount int
	DistinctSources int
	SourceBreakdown map[evidence.SourceKind]int
}

// Analyze scans every snippet against the taxonomy and returns candidates
// ranked by (distinct sources desc, occurrences desc, declaration order asc).
// An empty result means no keyword evidence at all and is valid.
func Analyze(snippets []evidence.Snippet, table *taxonomy.Table) []Candidate {
	if table == nil || len(snippets) == 0 {
		return nil
	}

	byKeyword := make(map[string]*Candidate)
	scanOrder := table.ScanOrder()

	for _, snippet := range snippets {
		text := taxonomy.Normalize(snippet.Text)
		if text == "" {
			continue
		}
		for keyword, count := range scanUnit(text, scanOrder) {
			candidate := byKeyword[keyword]
			if candidate == nil {
				candidate = &Candidate{
					Keyword:         keyword,
					SourceBreakdown: make(map[evidence.SourceKind]int, 4),
				}
				byKeyword[keyword] = candidate
			}
			candidate.OccurrenceCount += count
			candidate.SourceBreakdown[snippet.Kind] += count
		}
	}

	candidates := make([]Candidate, 0, len(byKeyword))
	for _, candidate := range byKeyword {
		candidate.DistinctSources = len(candidate.SourceBreakdown)
		candidates = append(candidates, *candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.DistinctSources != b.DistinctSources {
			return a.DistinctSources > b.DistinctSources
		}
		if a.OccurrenceCount != b.OccurrenceCount {
			return a.OccurrenceCount > b.OccurrenceCount
		}
		return table.DeclarationIndex(a.Keyword) < table.DeclarationIndex(b.Keyword)
	})
	return candidates
}

// scanUnit counts keyword mentions in one normalized text unit. Phrases are
// tried longest-first and each matched span is consumed, so a single mention
// is attributed to exactly the most specific taxonomy entry it satisfies.
func scanUnit(text string, scanOrder []string) map[string]int {
	var counts map[string]int
	consumed := make([]bool, len(text))

	for _, phrase := range scanOrder {
		from := 0
		for {
			offset := strings.Index(text[from:], phrase)
			if offset < 0 {
				break
			}
			start := from + offset
			end := start + len(phrase)
			if spanFree(consumed, start, end) {
				markSpan(consumed, start, end)
				if counts == nil {
					counts = make(map[string]int)
				}
				counts[phrase]++
			}
			from = start + 1
		}
	}
	return counts
}

func spanFree(consumed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if consumed[i] {
			return false
		}
	}
	return true
}

func markSpan(consumed []bool, start, end int) {
	for i := start; i < end; i++ {
		consumed[i] = true
	}
}
