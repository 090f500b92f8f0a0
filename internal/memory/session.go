package memory

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// ToggleMemoryMode sets the mode used for the user's future memories.
// Existing memories keep their decay rate and permanence.
func (s *Service) ToggleMemoryMode(ctx context.Context, userID string, mode Mode) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if err := s.modes.SetMemoryMode(ctx, userID, mode); err != nil {
		return fmt.Errorf("set memory mode %s: %w", userID, err)
	}
	s.logger.Info("memory mode changed", zap.String("user", userID), zap.String("mode", string(mode)))
	s.emit(ctx, Event{Kind: EventModeChanged, UserID: userID, Detail: string(mode)})
	return nil
}

// ActivateFocusMode starts a focus session, replacing any active one.
func (s *Service) ActivateFocusMode(ctx context.Context, userID string, opts FocusOptions) (string, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	opts, err := opts.normalize()
	if err != nil {
		return "", err
	}
	factor := int(math.Round(opts.BoostFactor * 100))
	if factor < 1 {
		return "", fmt.Errorf("%w: boost factor %v", ErrInvalidFocus, opts.BoostFactor)
	}

	now := s.now()
	session := &FocusSession{
		UserID:        userID,
		Categories:    opts.Categories,
		BoostFactor:   factor,
		DurationHours: opts.DurationHours,
		StartedAt:     now,
		ExpiresAt:     now.Add(time.Duration(opts.DurationHours) * time.Hour),
		IsActive:      true,
	}
	id, err := s.focus.ReplaceFocusSession(ctx, session)
	if err != nil {
		return "", fmt.Errorf("activate focus for %s: %w", userID, err)
	}

	s.logger.Info("focus mode activated",
		zap.String("user", userID),
		zap.String("session", id),
		zap.Strings("categories", opts.Categories),
		zap.Float64("boost", opts.BoostFactor),
		zap.Time("expires_at", session.ExpiresAt))
	s.emit(ctx, Event{Kind: EventFocusActivated, UserID: userID, Detail: id, Value: opts.BoostFactor})
	return id, nil
}

// DeactivateFocusMode ends the active focus session. It is a no-op when
// none is active.
func (s *Service) DeactivateFocusMode(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.focus.DeactivateFocusSession(ctx, userID); err != nil {
		return fmt.Errorf("deactivate focus for %s: %w", userID, err)
	}
	s.emit(ctx, Event{Kind: EventFocusDeactivated, UserID: userID})
	return nil
}

// ActiveBoost returns the user's unexpired focus boost, or nil.
func (s *Service) ActiveBoost(ctx context.Context, userID string) (*FocusBoost, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.activeBoostAt(ctx, userID, s.now())
}

func (s *Service) activeBoostAt(ctx context.Context, userID string, now time.Time) (*FocusBoost, error) {
	session, err := s.focus.ActiveFocusSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("active focus for %s: %w", userID, err)
	}
	return BoostFromSession(session, now), nil
}
