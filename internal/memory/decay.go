package memory

import (
	"fmt"
	"math"
	"time"
)

const (
	// BaseDecayRate is the monthly decay percent of an importance-0 memory
	// in humanized mode.
	BaseDecayRate = 50

	// Month is the fixed month length used for decay.
	Month = 30 * 24 * time.Hour

	// ForgettingThreshold is the strength below which a memory is dropped
	// from search results.
	ForgettingThreshold = 1.0
)

// StrengthState is the subset of a memory that decay reads.
type StrengthState struct {
	Strength    int
	DecayRate   int
	IsPermanent bool
	CreatedAt   time.Time
}

// ValidateImportance rejects values outside [0, 10].
func ValidateImportance(importance int) error {
	if importance < MinImportance || importance > MaxImportance {
		return fmt.Errorf("%w: got %d", ErrInvalidImportance, importance)
	}
	return nil
}

// DecayRateFor returns the percent-per-month decay for a new memory.
// Evaluated once at write time; the result is stored on the memory.
func DecayRateFor(importance int, mode Mode) (int, error) {
	if err := ValidateImportance(importance); err != nil {
		return 0, err
	}
	switch mode {
	case ModePersistent:
		return 0, nil
	case ModeHumanized:
		importanceFactor := float64(MaxImportance-importance) / float64(MaxImportance)
		return int(math.Round(BaseDecayRate * importanceFactor)), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

// MonthsElapsed is the fractional number of 30-day months between
// createdAt and now. Clock skew never yields a negative age.
func MonthsElapsed(createdAt, now time.Time) float64 {
	d := now.Sub(createdAt)
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(Month)
}

// CurrentStrength recomputes effective strength at now. It must be
// evaluated on every read; the result is never persisted.
func CurrentStrength(s StrengthState, now time.Time) float64 {
	if s.IsPermanent {
		return float64(s.Strength)
	}
	months := MonthsElapsed(s.CreatedAt, now)
	decayFactor := math.Pow(1-float64(s.DecayRate)/100, months)
	return float64(s.Strength) * decayFactor
}

// DegradedScore scales a similarity score by current strength.
func DegradedScore(rawScore, currentStrength float64) float64 {
	return rawScore * (currentStrength / InitialStrength)
}

// Forgotten reports whether a strength falls below the forgetting threshold.
func Forgotten(currentStrength float64) bool {
	return currentStrength < ForgettingThreshold
}
