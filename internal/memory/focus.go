package memory

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DefaultBoostFactor   = 2.0
	DefaultFocusDuration = 24 // hours
)

// FocusOptions configures a new focus session.
type FocusOptions struct {
	Categories    []string `json:"categories"`
	BoostFactor   float64  `json:"boost_factor,omitempty"`
	DurationHours int      `json:"duration_hours,omitempty"`
}

// normalize applies defaults and rejects unusable configurations.
func (o FocusOptions) normalize() (FocusOptions, error) {
	var cats []string
	for _, c := range o.Categories {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, c)
		}
	}
	if len(cats) == 0 {
		return o, fmt.Errorf("%w: at least one category is required", ErrInvalidFocus)
	}
	o.Categories = cats
	if o.BoostFactor == 0 {
		o.BoostFactor = DefaultBoostFactor
	}
	if o.BoostFactor < 0 || math.IsNaN(o.BoostFactor) || math.IsInf(o.BoostFactor, 0) {
		return o, fmt.Errorf("%w: boost factor %v", ErrInvalidFocus, o.BoostFactor)
	}
	if o.DurationHours == 0 {
		o.DurationHours = DefaultFocusDuration
	}
	if o.DurationHours < 0 {
		return o, fmt.Errorf("%w: duration %dh", ErrInvalidFocus, o.DurationHours)
	}
	return o, nil
}

// FocusBoost is the scoring view of an active focus session.
type FocusBoost struct {
	SessionID  string    `json:"session_id"`
	Categories []string  `json:"categories"`
	Factor     float64   `json:"factor"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// BoostFromSession returns the boost for s if it is active at now, else nil.
// Expiry is evaluated lazily here; nothing sweeps expired sessions.
func BoostFromSession(s *FocusSession, now time.Time) *FocusBoost {
	if s == nil || !s.IsActive || !now.Before(s.ExpiresAt) {
		return nil
	}
	return &FocusBoost{
		SessionID:  s.ID,
		Categories: s.Categories,
		Factor:     float64(s.BoostFactor) / 100,
		ExpiresAt:  s.ExpiresAt,
	}
}

// Matches reports whether category case-insensitively contains, or is
// contained by, any focus category. An empty category never matches.
func (b *FocusBoost) Matches(category string) bool {
	if b == nil {
		return false
	}
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return false
	}
	for _, c := range b.Categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if strings.Contains(category, c) || strings.Contains(c, category) {
			return true
		}
	}
	return false
}

// ApplyBoost multiplies the score of every matching result and returns
// how many were boosted. Call after decay and before sorting.
func ApplyBoost(results []RankedResult, boost *FocusBoost) int {
	if boost == nil {
		return 0
	}
	boosted := 0
	for i := range results {
		if boost.Matches(results[i].Metadata.Category) {
			results[i].Score *= boost.Factor
			results[i].Boosted = true
			boosted++
		}
	}
	return boosted
}
