package diagnose

import (
	"fmt"
	"strings"

	"autodiag/internal/acoustic"
	"autodiag/internal/evidence"
)

// buildContext assembles the structured context handed to the reasoning
// service. Section ordering is significant and mirrors what the prompt was
// tuned against: vehicle header, audio metrics, user context, evidence in
// priority order, best match, closing instruction.
func buildContext(req Request, fp *acoustic.Fingerprint, snippets []evidence.Snippet, best *acoustic.Match, items []evidence.ReferenceItem) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("VEHICLE: %d %s %s", req.Vehicle.Year, req.Vehicle.Manufacturer, req.Vehicle.Model))
	parts = append(parts, fmt.Sprintf("SOUND LOCATION: %s", req.SoundLocation))

	if fp != nil {
		parts = append(parts, "\nAUDIO ANALYSIS:")
		parts = append(parts, fmt.Sprintf("- Dominant Frequency: %.0f Hz", fp.DominantFrequency))
		parts = append(parts, fmt.Sprintf("- Vibration Level (RMS): %.3f", fp.RMSEnergy))
		parts = append(parts, fmt.Sprintf("- Zero Crossing Rate: %.3f", fp.ZeroCrossingRate))
		parts = append(parts, fmt.Sprintf("- Spectral Bandwidth: %.0f Hz", fp.SpectralBandwidth))
		parts = append(parts, fmt.Sprintf("- Spectral Rolloff: %.0f Hz", fp.SpectralRolloff))
	}

	if desc := strings.TrimSpace(req.User.Description); desc != "" {
		parts = append(parts, fmt.Sprintf("\nUSER DESCRIPTION: %s", desc))
	}
	if len(req.User.Occurrence) > 0 {
		parts = append(parts, fmt.Sprintf("OCCURS WHEN: %s", strings.Join(req.User.Occurrence, ", ")))
	}
	if d := strings.TrimSpace(req.User.IssueDuration); d != "" {
		parts = append(parts, fmt.Sprintf("ISSUE DURATION: %s", d))
	}
	if p := strings.TrimSpace(req.User.Progression); p != "" {
		parts = append(parts, fmt.Sprintf("PROGRESSION: %s", p))
	}
	if w := strings.TrimSpace(req.User.RecentWork); w != "" {
		parts = append(parts, fmt.Sprintf("RECENT WORK: %s", w))
	}

	titles := filterKind(snippets, evidence.SourceTitle)
	if len(titles) > 0 {
		parts = append(parts, fmt.Sprintf("\nREFERENCE VIDEO TITLES (%d videos):", len(titles)))
		for i, s := range titles {
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, s.Text))
		}
	}

	descriptions := filterKind(snippets, evidence.SourceDescription)
	if len(descriptions) > 0 {
		parts = append(parts, "\nREFERENCE VIDEO DESCRIPTIONS:")
		for i, s := range descriptions {
			parts = append(parts, fmt.Sprintf("%d. %s...", i+1, s.Text))
		}
	}

	comments := filterKind(snippets, evidence.SourceComment)
	if len(comments) > 0 {
		parts = append(parts, fmt.Sprintf("\nREFERENCE COMMENTS (%d comments):", len(comments)))
		for _, s := range comments {
			parts = append(parts, fmt.Sprintf("- %s", s.Text))
		}
	}

	transcripts := filterKind(snippets, evidence.SourceTranscript)
	if len(transcripts) > 0 {
		parts = append(parts, fmt.Sprintf("\nREFERENCE VIDEO TRANSCRIPTS (%d transcripts):", len(transcripts)))
		for i, s := range transcripts {
			parts = append(parts, fmt.Sprintf("%d. %s...", i+1, s.Text))
		}
	}

	if best != nil {
		parts = append(parts, fmt.Sprintf("\nBEST AUDIO MATCH: %s (%.1f%% similarity)", matchLabel(best.ItemID, items), best.Similarity*100))
	}

	parts = append(parts, "\n\nBased on ALL the data above (especially the reference titles, descriptions, comments, and transcripts), what is the MOST COMMON diagnosis mentioned? Provide a specific, actionable diagnosis:")

	return strings.Join(parts, "\n")
}

func filterKind(snippets []evidence.Snippet, kind evidence.SourceKind) []evidence.Snippet {
	var out []evidence.Snippet
	for _, s := range snippets {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// matchLabel prefers the matched item's title over its opaque ID.
func matchLabel(itemID string, items []evidence.ReferenceItem) string {
	for _, item := range items {
		if item.ID == itemID && strings.TrimSpace(item.Title) != "" {
			return item.Title
		}
	}
	return itemID
}
