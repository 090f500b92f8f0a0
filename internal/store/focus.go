package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

// ActiveFocusSession returns the user's session flagged active, or nil.
// Expiry is not checked here.
func (s *Store) ActiveFocusSession(ctx context.Context, userID string) (*memory.FocusSession, error) {
	var fs memory.FocusSession
	err := s.db.QueryRow(ctx, `
		SELECT id::text, user_id, focus_categories, boost_factor, duration_hours,
			started_at, expires_at, is_active
		FROM focus_sessions
		WHERE user_id=$1 AND is_active
		ORDER BY started_at DESC
		LIMIT 1`, userID,
	).Scan(&fs.ID, &fs.UserID, &fs.Categories, &fs.BoostFactor, &fs.DurationHours,
		&fs.StartedAt, &fs.ExpiresAt, &fs.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active focus session: %w", err)
	}
	return &fs, nil
}

// ReplaceFocusSession deactivates the user's active sessions and inserts fs
// as the active one, atomically.
func (s *Store) ReplaceFocusSession(ctx context.Context, fs *memory.FocusSession) (string, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE focus_sessions SET is_active=false WHERE user_id=$1 AND is_active`,
		fs.UserID,
	); err != nil {
		return "", fmt.Errorf("clear focus sessions: %w", err)
	}

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO focus_sessions (user_id, focus_categories, boost_factor, duration_hours,
			started_at, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING id::text`,
		fs.UserID, fs.Categories, fs.BoostFactor, fs.DurationHours, fs.StartedAt, fs.ExpiresAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert focus session: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit focus session: %w", err)
	}
	return id, nil
}

// DeactivateFocusSession clears the user's active flag. No rows is fine.
func (s *Store) DeactivateFocusSession(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE focus_sessions SET is_active=false WHERE user_id=$1 AND is_active`, userID)
	if err != nil {
		return fmt.Errorf("deactivate focus session: %w", err)
	}
	return nil
}
