package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

// GetMemoryMode returns the stored mode, or memory.DefaultMode.
func (s *Store) GetMemoryMode(ctx context.Context, userID string) (memory.Mode, error) {
	var raw string
	err := s.db.QueryRow(ctx,
		`SELECT memory_mode FROM user_memory_settings WHERE user_id=$1`, userID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return memory.DefaultMode, nil
	}
	if err != nil {
		return "", fmt.Errorf("get memory mode: %w", err)
	}
	return memory.ParseMode(raw)
}

// SetMemoryMode upserts the user's mode.
func (s *Store) SetMemoryMode(ctx context.Context, userID string, mode memory.Mode) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_memory_settings (user_id, memory_mode, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET memory_mode = EXCLUDED.memory_mode, updated_at = NOW()`,
		userID, string(mode),
	)
	if err != nil {
		return fmt.Errorf("set memory mode: %w", err)
	}
	return nil
}
