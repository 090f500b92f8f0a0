package memory

import (
	"time"
	"unicode/utf8"
)

// Metadata is the copy of a memory kept alongside its vector. Content may be
// truncated; the relational row holds the full text.
type Metadata struct {
	UserID       string       `json:"user_id"`
	ChatID       string       `json:"chat_id,omitempty"`
	Content      string       `json:"content"`
	ContentHash  string       `json:"content_hash"`
	MemoryType   MemoryType   `json:"memory_type"`
	PrivacyLevel PrivacyLevel `json:"privacy_level"`
	Category     string       `json:"category,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Importance   int          `json:"importance"`
	Strength     int          `json:"strength"`
	DecayRate    int          `json:"decay_rate"`
	IsPermanent  bool         `json:"is_permanent"`
	RequiresAuth bool         `json:"requires_auth"`
	CreatedAt    time.Time    `json:"created_at"`
}

// StrengthState extracts the decay inputs.
func (m Metadata) StrengthState() StrengthState {
	return StrengthState{
		Strength:    m.Strength,
		DecayRate:   m.DecayRate,
		IsPermanent: m.IsPermanent,
		CreatedAt:   m.CreatedAt,
	}
}

// Match is a raw nearest-neighbor hit.
type Match struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// RankedResult is a search hit after decay and focus rescoring.
type RankedResult struct {
	VectorID        string   `json:"vector_id"`
	Score           float64  `json:"score"`
	RawScore        float64  `json:"raw_score"`
	CurrentStrength float64  `json:"current_strength"`
	Boosted         bool     `json:"boosted"`
	Metadata        Metadata `json:"metadata"`
}

// truncateRunes cuts s to at most limit runes.
func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
