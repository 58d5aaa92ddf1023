// Package confidence fuses signal quality and source richness into a single
// bounded score. The floor and ceiling are load-bearing: the engine never
// reports near-certainty and never refuses to offer a diagnosis.
package confidence

const (
	// Base is the confidence floor; a diagnosis is always offered at least here.
	Base = 0.70
	// Cap is the ceiling; no evidence combination is ever that conclusive.
	Cap = 0.95

	noiseFloorRMS = 0.05
	zcrBandLow    = 0.05
	zcrBandHigh   = 0.40

	// matchBonusTop is the similarity at which the best-match bonus reaches
	// its maximum.
	matchBonusTop = 0.80
)

// Signals carries every evidence indicator the scorer consumes. All fields
// are optional; the zero value scores exactly Base.
type Signals struct {
	// AudioUsable reports whether query fingerprinting succeeded.
	AudioUsable      bool
	RMSEnergy        float64
	ZeroCrossingRate float64

	// UsableTextItems counts reference items that yielded a usable title or
	// description.
	UsableTextItems    int
	CommentsPresent    bool
	TranscriptsPresent bool

	// BestSimilarity is the top corpus match score; HasAudioMatch gates it.
	HasAudioMatch       bool
	BestSimilarity      float64
	SimilarityThreshold float64

	UserDescription   bool
	OccurrenceContext bool
}

// Score combines the signals into a confidence in [Base, Cap]. It is pure,
// has no failure mode, and adding evidence never lowers the result.
func Score(sig Signals) float64 {
	score := Base

	switch {
	case sig.UsableTextItems >= 11:
		score += 0.10
	case sig.UsableTextItems >= 6:
		score += 0.07
	case sig.UsableTextItems >= 1:
		score += 0.03
	}

	if sig.AudioUsable && sig.RMSEnergy > noiseFloorRMS &&
		sig.ZeroCrossingRate > zcrBandLow && sig.ZeroCrossingRate < zcrBandHigh {
		score += 0.05
	}

	if sig.CommentsPresent {
		score += 0.03
	}
	if sig.TranscriptsPresent {
		score += 0.03
	}

	if sig.HasAudioMatch && sig.BestSimilarity >= sig.SimilarityThreshold {
		score += matchBonus(sig.BestSimilarity, sig.SimilarityThreshold)
	}

	if sig.UserDescription {
		score += 0.03
	}
	if sig.OccurrenceContext {
		score += 0.02
	}

	if score > Cap {
		return Cap
	}
	if score < Base {
		return Base
	}
	return score
}

// matchBonus scales linearly from 0.03 at the threshold to 0.05 at
// matchBonusTop and above.
func matchBonus(similarity, threshold float64) float64 {
	if threshold >= matchBonusTop {
		return 0.05
	}
	if similarity >= matchBonusTop {
		return 0.05
	}
	frac := (similarity - threshold) / (matchBonusTop - threshold)
	return 0.03 + 0.02*frac
}
