package evidence

import "autodiag/internal/acoustic"

// SourceKind identifies which field of a reference item a snippet came from.
type SourceKind string

const (
	SourceTitle       SourceKind = "title"
	SourceDescription SourceKind = "description"
	SourceComment     SourceKind = "comment"
	SourceTranscript  SourceKind = "transcript"
)

// Comment is a single viewer comment attached to a reference item.
type Comment struct {
	Author    string `json:"author"`
	Text      string `json:"text"`
	LikeCount int    `json:"like_count"`
}

// ReferenceItem is one externally supplied reference recording with its
// surrounding text. Comments, transcript segments, and the fingerprint are
// all optional: nil means extraction never happened or failed for that field,
// which is distinct from an extracted-but-empty collection.
type ReferenceItem struct {
	ID                 string               `json:"id"`
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	Comments           []Comment            `json:"comments,omitempty"`
	TranscriptSegments []string             `json:"transcript_segments,omitempty"`
	Fingerprint        *acoustic.Fingerprint `json:"-"`
}

// UserContext carries the requester's own description of the problem.
type UserContext struct {
	Description   string   `json:"description,omitempty"`
	Occurrence    []string `json:"occurrence,omitempty"`
	IssueDuration string   `json:"issue_duration,omitempty"`
	Progression   string   `json:"progression,omitempty"`
	RecentWork    string   `json:"recent_work,omitempty"`
}

// Snippet is one bounded unit of evidence text with its source identity.
type Snippet struct {
	Kind   SourceKind
	ItemID string
	Text   string
}
