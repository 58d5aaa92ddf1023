package acoustic

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// CorpusEntry pairs a reference item with its fingerprint. Entries without a
// fingerprint are skipped during ranking.
type CorpusEntry struct {
	ItemID      string
	Fingerprint *Fingerprint
}

// Match is a ranked similarity result against one corpus entry.
type Match struct {
	ItemID     string  `json:"item_id"`
	Similarity float64 `json:"similarity"`
}

// RankMatches ranks the corpus against the query fingerprint by cosine
// similarity over comparison vectors, highest first. Ties keep corpus order.
// An empty corpus, or one with no fingerprints, yields an empty slice; that is
// the "no acoustic corroboration" case, not an error.
func RankMatches(query *Fingerprint, corpus []CorpusEntry) []Match {
	if query == nil {
		return nil
	}
	queryVec := query.comparisonVector()

	matches := make([]Match, 0, len(corpus))
	for _, entry := range corpus {
		if entry.Fingerprint == nil {
			continue
		}
		matches = append(matches, Match{
			ItemID:     entry.ItemID,
			Similarity: cosineSimilarity(queryVec, entry.Fingerprint.comparisonVector()),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// cosineSimilarity returns the cosine of the angle between two equal-length
// vectors, or 0 when either has zero norm.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	normA := math.Sqrt(floats.Dot(a, a))
	normB := math.Sqrt(floats.Dot(b, b))
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}
