package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// SearchMemories returns the user's memories most relevant to query.
//
// The pipeline runs in a fixed order: pre-filter in the index, decay (for
// humanized users), forgetting threshold, focus boost, sort, access update.
// Reading never changes stored strength or decay rate. With no index
// configured the result is empty rather than an error.
func (s *Service) SearchMemories(ctx context.Context, userID, query string, opts SearchOptions) ([]RankedResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateSearch(opts); err != nil {
		return nil, err
	}
	if s.index == nil {
		s.logger.Warn("vector index not configured, returning no memories", zap.String("user", userID))
		s.emit(ctx, Event{Kind: EventIndexUnavailable, UserID: userID, Detail: "search"})
		return []RankedResult{}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}

	vector, err := s.embedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query for %s: %w", userID, err)
	}

	filter := BuildFilter(userID, opts)
	matches, err := s.index.Query(ctx, vector, filter, topK)
	if err != nil {
		return nil, fmt.Errorf("query vector index for %s: %w", userID, err)
	}

	mode, err := s.GetMemoryMode(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	results := make([]RankedResult, 0, len(matches))
	forgotten := 0
	for _, m := range matches {
		if m.Metadata.PrivacyLevel == PrivacyVault || !Allows(filter, m.Metadata) {
			s.logger.Warn("dropping match outside search filter",
				zap.String("user", userID),
				zap.String("vector", m.ID))
			continue
		}
		r := RankedResult{
			VectorID:        m.ID,
			Score:           m.Score,
			RawScore:        m.Score,
			CurrentStrength: float64(m.Metadata.Strength),
			Metadata:        m.Metadata,
		}
		if mode == ModeHumanized {
			strength := CurrentStrength(m.Metadata.StrengthState(), now)
			r.CurrentStrength = strength
			if Forgotten(strength) {
				forgotten++
				continue
			}
			r.Score = DegradedScore(m.Score, strength)
		}
		results = append(results, r)
	}
	if mode == ModeHumanized {
		s.emit(ctx, Event{Kind: EventDecayApplied, UserID: userID, Count: len(results) + forgotten})
		if forgotten > 0 {
			s.emit(ctx, Event{Kind: EventMemoryForgotten, UserID: userID, Count: forgotten})
		}
	}

	boost, err := s.activeBoostAt(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if n := ApplyBoost(results, boost); n > 0 {
		s.emit(ctx, Event{Kind: EventBoostApplied, UserID: userID, Count: n, Value: boost.Factor})
	}

	// Stable sort keeps index order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	s.touch(ctx, userID, results, now)

	s.logger.Debug("memory search complete",
		zap.String("user", userID),
		zap.Int("matches", len(matches)),
		zap.Int("forgotten", forgotten),
		zap.Int("results", len(results)))
	s.emit(ctx, Event{Kind: EventSearchCompleted, UserID: userID, Count: len(results)})
	return results, nil
}

func validateSearch(opts SearchOptions) error {
	if opts.MinImportance != nil {
		if err := ValidateImportance(*opts.MinImportance); err != nil {
			return err
		}
	}
	for _, t := range opts.MemoryTypes {
		if !t.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidMemoryType, t)
		}
	}
	return nil
}

// touch records access on the returned memories. Failures are logged; the
// search result stands.
func (s *Service) touch(ctx context.Context, userID string, results []RankedResult, at time.Time) {
	if len(results) == 0 {
		return
	}
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.VectorID
	}
	if err := s.memories.TouchMemories(ctx, userID, ids, at); err != nil {
		s.logger.Warn("failed to update memory access",
			zap.String("user", userID),
			zap.Int("count", len(ids)),
			zap.Error(err))
	}
}
