package memory

import (
	"fmt"
	"strings"
	"time"
)

// Mode governs how new memories decay.
type Mode string

const (
	ModePersistent Mode = "persistent"
	ModeHumanized  Mode = "humanized"
)

// DefaultMode applies to users who never chose one.
const DefaultMode = ModePersistent

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModePersistent, ModeHumanized:
		return true
	}
	return false
}

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// PrivacyLevel is a visibility tier, ordered from most to least visible.
type PrivacyLevel string

const (
	PrivacyPublic     PrivacyLevel = "public"
	PrivacyContextual PrivacyLevel = "contextual"
	PrivacyPrivate    PrivacyLevel = "private"
	PrivacyVault      PrivacyLevel = "vault"
)

// AllPrivacyLevels lists every tier in visibility order.
var AllPrivacyLevels = []PrivacyLevel{PrivacyPublic, PrivacyContextual, PrivacyPrivate, PrivacyVault}

// Valid reports whether p is a known privacy level.
func (p PrivacyLevel) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyContextual, PrivacyPrivate, PrivacyVault:
		return true
	}
	return false
}

// RequiresAuth is true only for vault memories.
func (p PrivacyLevel) RequiresAuth() bool {
	return p == PrivacyVault
}

// ParsePrivacyLevel converts user input into a PrivacyLevel.
func ParsePrivacyLevel(s string) (PrivacyLevel, error) {
	p := PrivacyLevel(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrivacy, s)
	}
	return p, nil
}

// MemoryType is the maturity tier of a memory.
type MemoryType string

const (
	TypeWorking      MemoryType = "working"
	TypeConsolidated MemoryType = "consolidated"
	TypeWisdom       MemoryType = "wisdom"
)

// AllMemoryTypes lists every tier from least to most mature.
var AllMemoryTypes = []MemoryType{TypeWorking, TypeConsolidated, TypeWisdom}

// Valid reports whether t is a known memory type.
func (t MemoryType) Valid() bool {
	switch t {
	case TypeWorking, TypeConsolidated, TypeWisdom:
		return true
	}
	return false
}

// ParseMemoryType converts user input into a MemoryType.
func ParseMemoryType(s string) (MemoryType, error) {
	t := MemoryType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMemoryType, s)
	}
	return t, nil
}

const (
	MinImportance     = 0
	MaxImportance     = 10
	DefaultImportance = 5

	// InitialStrength is the strength every memory is created with.
	InitialStrength = 10
)

// Memory is one stored snippet. The relational copy is authoritative.
type Memory struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	ChatID         string       `json:"chat_id,omitempty"`
	Content        string       `json:"content"`
	ContentHash    string       `json:"content_hash"`
	VectorID       string       `json:"vector_id"`
	MemoryType     MemoryType   `json:"memory_type"`
	PrivacyLevel   PrivacyLevel `json:"privacy_level"`
	Category       string       `json:"category,omitempty"`
	Tags           []string     `json:"tags"`
	Importance     int          `json:"importance"`
	Strength       int          `json:"strength"`
	DecayRate      int          `json:"decay_rate"`
	IsPermanent    bool         `json:"is_permanent"`
	RequiresAuth   bool         `json:"requires_auth"`
	AccessCount    int          `json:"access_count"`
	LastAccessedAt *time.Time   `json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// FocusSession is a time-boxed score boost for a set of categories.
// BoostFactor is stored multiplied by 100 (200 = 2.0x).
type FocusSession struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Categories    []string  `json:"categories"`
	BoostFactor   int       `json:"boost_factor"`
	DurationHours int       `json:"duration_hours"`
	StartedAt     time.Time `json:"started_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	IsActive      bool      `json:"is_active"`
}

// Stats aggregates a user's memories.
type Stats struct {
	Total         int                  `json:"total"`
	ByType        map[MemoryType]int   `json:"by_type"`
	ByPrivacy     map[PrivacyLevel]int `json:"by_privacy"`
	AvgImportance float64              `json:"avg_importance"`
	AvgStrength   float64              `json:"avg_strength"`
	Permanent     int                  `json:"permanent"`
}

// NewStats returns zeroed aggregates with non-nil maps.
func NewStats() *Stats {
	return &Stats{
		ByType:    make(map[MemoryType]int),
		ByPrivacy: make(map[PrivacyLevel]int),
	}
}
