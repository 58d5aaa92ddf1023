package evidence

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Caps bounds how much text each source kind contributes. Character caps are
// hard cuts, not word-boundary aware; downstream prompt sizing depends on the
// exact cut points.
type Caps struct {
	TitleItems       int
	DescriptionItems int
	DescriptionChars int
	CommentsPerItem  int
	CommentChars     int
	TranscriptItems  int
	TranscriptChars  int
}

// DefaultCaps mirrors the caps the reasoning context was tuned for.
func DefaultCaps() Caps {
	return Caps{
		TitleItems:       15,
		DescriptionItems: 10,
		DescriptionChars: 200,
		CommentsPerItem:  15,
		CommentChars:     150,
		TranscriptItems:  5,
		TranscriptChars:  300,
	}
}

// Collector flattens reference items into bounded snippets. It performs no
// network access or decoding; it is a pure transformation over fetched data.
type Collector struct {
	caps Caps
}

// NewCollector builds a collector with the supplied caps. Non-positive item
// caps fall back to defaults.
func NewCollector(caps Caps) *Collector {
	def := DefaultCaps()
	if caps.TitleItems <= 0 {
		caps.TitleItems = def.TitleItems
	}
	if caps.DescriptionItems <= 0 {
		caps.DescriptionItems = def.DescriptionItems
	}
	if caps.DescriptionChars <= 0 {
		caps.DescriptionChars = def.DescriptionChars
	}
	if caps.CommentsPerItem <= 0 {
		caps.CommentsPerItem = def.CommentsPerItem
	}
	if caps.CommentChars <= 0 {
		caps.CommentChars = def.CommentChars
	}
	if caps.TranscriptItems <= 0 {
		caps.TranscriptItems = def.TranscriptItems
	}
	if caps.TranscriptChars <= 0 {
		caps.TranscriptChars = def.TranscriptChars
	}
	return &Collector{caps: caps}
}

// Collect flattens items into snippets in priority order: titles, then
// descriptions, then comments, then transcripts. Whitespace-only fields are
// skipped entirely and contribute nothing.
func (c *Collector) Collect(items []ReferenceItem) []Snippet {
	var snippets []Snippet

	titles := 0
	for _, item := range items {
		if titles >= c.caps.TitleItems {
			break
		}
		text := cleanText(item.Title)
		if text == "" {
			continue
		}
		snippets = append(snippets, Snippet{Kind: SourceTitle, ItemID: item.ID, Text: text})
		titles++
	}

	descriptions := 0
	for _, item := range items {
		if descriptions >= c.caps.DescriptionItems {
			break
		}
		text := cleanText(item.Description)
		if text == "" {
			continue
		}
		snippets = append(snippets, Snippet{
			Kind:   SourceDescription,
			ItemID: item.ID,
			Text:   truncate(text, c.caps.DescriptionChars),
		})
		descriptions++
	}

	for _, item := range items {
		taken := 0
		for _, comment := range item.Comments {
			if taken >= c.caps.CommentsPerItem {
				break
			}
			text := cleanText(comment.Text)
			if text == "" {
				continue
			}
			snippets = append(snippets, Snippet{
				Kind:   SourceComment,
				ItemID: item.ID,
				Text:   truncate(text, c.caps.CommentChars),
			})
			taken++
		}
	}

	transcripts := 0
	for _, item := range items {
		if transcripts >= c.caps.TranscriptItems {
			break
		}
		text := cleanText(strings.Join(item.TranscriptSegments, " "))
		if text == "" {
			continue
		}
		snippets = append(snippets, Snippet{
			Kind:   SourceTranscript,
			ItemID: item.ID,
			Text:   truncate(text, c.caps.TranscriptChars),
		})
		transcripts++
	}

	return snippets
}

// CountByKind tallies snippets per source kind.
func CountByKind(snippets []Snippet) map[SourceKind]int {
	counts := make(map[SourceKind]int, 4)
	for _, s := range snippets {
		counts[s.Kind]++
	}
	return counts
}

// cleanText trims whitespace and applies Unicode NFC normalization so scraped
// text with combining marks compares and truncates consistently.
func cleanText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// truncate applies a hard character cut at limit runes.
func truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
