package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

var (
	_ memory.MemoryRepository = (*Store)(nil)
	_ memory.FocusRepository  = (*Store)(nil)
	_ memory.ModeRepository   = (*Store)(nil)
)

// FindMemoryByHash returns the id of the user's memory with the given
// content hash, or "" when there is none.
func (s *Store) FindMemoryByHash(ctx context.Context, userID, contentHash string) (string, error) {
	var id string
	err := s.db.QueryRow(ctx,
		`SELECT id::text FROM memories WHERE user_id=$1 AND content_hash=$2`,
		userID, contentHash,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find memory by hash: %w", err)
	}
	return id, nil
}

// InsertMemory stores m and returns the generated id.
func (s *Store) InsertMemory(ctx context.Context, m *memory.Memory) (string, error) {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	var id string
	err := s.db.QueryRow(ctx, `
		INSERT INTO memories (user_id, chat_id, content, content_hash, vector_id,
			memory_type, privacy_level, category, tags, importance, strength,
			decay_rate, is_permanent, requires_auth, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11,
			$12, $13, $14, $15)
		RETURNING id::text`,
		m.UserID, m.ChatID, m.Content, m.ContentHash, m.VectorID,
		string(m.MemoryType), string(m.PrivacyLevel), m.Category, tags, m.Importance, m.Strength,
		m.DecayRate, m.IsPermanent, m.RequiresAuth, m.CreatedAt,
	).Scan(&id)
	if isUniqueViolation(err) {
		return "", fmt.Errorf("insert memory: %w", memory.ErrDuplicateContent)
	}
	if err != nil {
		return "", fmt.Errorf("insert memory: %w", err)
	}
	return id, nil
}

// TouchMemories bumps the access count of the user's memories behind the
// given vector ids. Strength is left alone.
func (s *Store) TouchMemories(ctx context.Context, userID string, vectorIDs []string, at time.Time) error {
	if len(vectorIDs) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `
		UPDATE memories
		SET access_count = access_count + 1, last_accessed_at = $3
		WHERE user_id = $1 AND vector_id = ANY($2)`,
		userID, vectorIDs, at,
	)
	if err != nil {
		return fmt.Errorf("touch memories: %w", err)
	}
	return nil
}

// MemoryStats aggregates the user's stored memories.
func (s *Store) MemoryStats(ctx context.Context, userID string) (*memory.Stats, error) {
	stats := memory.NewStats()
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(AVG(importance), 0)::float8,
			COALESCE(AVG(strength), 0)::float8,
			COUNT(*) FILTER (WHERE is_permanent)
		FROM memories WHERE user_id=$1`, userID,
	).Scan(&stats.Total, &stats.AvgImportance, &stats.AvgStrength, &stats.Permanent)
	if err != nil {
		return nil, fmt.Errorf("memory stats: %w", err)
	}
	if stats.Total == 0 {
		return stats, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT memory_type, privacy_level, COUNT(*)
		FROM memories WHERE user_id=$1
		GROUP BY memory_type, privacy_level`, userID)
	if err != nil {
		return nil, fmt.Errorf("memory stats breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memType, privacy string
		var n int
		if err := rows.Scan(&memType, &privacy, &n); err != nil {
			return nil, fmt.Errorf("scan memory stats: %w", err)
		}
		stats.ByType[memory.MemoryType(memType)] += n
		stats.ByPrivacy[memory.PrivacyLevel(privacy)] += n
	}
	return stats, rows.Err()
}
