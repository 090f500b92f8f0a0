package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Embedder turns text into fixed-length vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex is an approximate nearest-neighbor store with metadata filters.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float32, meta Metadata) error
	Query(ctx context.Context, vector []float32, filter Predicate, topK int) ([]Match, error)
	Delete(ctx context.Context, id string) error
}

// MemoryRepository holds the authoritative memory rows.
type MemoryRepository interface {
	// FindMemoryByHash returns the id of the user's memory with this hash,
	// or "" when none exists.
	FindMemoryByHash(ctx context.Context, userID, contentHash string) (string, error)
	// InsertMemory stores m and returns its id. It returns an error wrapping
	// ErrDuplicateContent when (user, hash) already exists.
	InsertMemory(ctx context.Context, m *Memory) (string, error)
	// TouchMemories increments access counts for the given vector ids.
	TouchMemories(ctx context.Context, userID string, vectorIDs []string, at time.Time) error
	MemoryStats(ctx context.Context, userID string) (*Stats, error)
}

// FocusRepository persists focus sessions.
type FocusRepository interface {
	// ActiveFocusSession returns the session flagged active, expired or not,
	// or nil when none is flagged.
	ActiveFocusSession(ctx context.Context, userID string) (*FocusSession, error)
	// ReplaceFocusSession deactivates every active session of the user and
	// inserts s as the only active one, returning its id.
	ReplaceFocusSession(ctx context.Context, s *FocusSession) (string, error)
	DeactivateFocusSession(ctx context.Context, userID string) error
}

// ModeRepository reads and writes the per-user memory mode.
type ModeRepository interface {
	// GetMemoryMode returns DefaultMode for users with no stored mode.
	GetMemoryMode(ctx context.Context, userID string) (Mode, error)
	SetMemoryMode(ctx context.Context, userID string, mode Mode) error
}

// Deps wires a Service. Index may be nil, meaning no vector index is
// configured.
type Deps struct {
	Embedder Embedder
	Index    VectorIndex
	Memories MemoryRepository
	Focus    FocusRepository
	Modes    ModeRepository
	Observer Observer
	Logger   *zap.Logger
	Now      func() time.Time

	// DefaultTopK applies when a search does not set TopK.
	DefaultTopK int
	// MetadataContentLimit caps content copied into vector metadata, in runes.
	MetadataContentLimit int
}

const (
	DefaultTopK                 = 10
	DefaultMetadataContentLimit = 1000
)

// Service is the memory retrieval engine. It holds no per-user state and is
// safe for concurrent use when its collaborators are.
type Service struct {
	embedder Embedder
	index    VectorIndex
	memories MemoryRepository
	focus    FocusRepository
	modes    ModeRepository
	observer Observer
	logger   *zap.Logger
	now      func() time.Time

	defaultTopK  int
	contentLimit int
}

// NewService validates deps and applies defaults.
func NewService(deps Deps) (*Service, error) {
	if deps.Embedder == nil {
		return nil, errors.New("memory service: embedder is required")
	}
	if deps.Memories == nil || deps.Focus == nil || deps.Modes == nil {
		return nil, errors.New("memory service: repositories are required")
	}
	s := &Service{
		embedder:     deps.Embedder,
		index:        deps.Index,
		memories:     deps.Memories,
		focus:        deps.Focus,
		modes:        deps.Modes,
		observer:     deps.Observer,
		logger:       deps.Logger,
		now:          deps.Now,
		defaultTopK:  deps.DefaultTopK,
		contentLimit: deps.MetadataContentLimit,
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.defaultTopK <= 0 {
		s.defaultTopK = DefaultTopK
	}
	if s.contentLimit <= 0 {
		s.contentLimit = DefaultMetadataContentLimit
	}
	return s, nil
}

// IndexConfigured reports whether a vector index is wired in.
func (s *Service) IndexConfigured() bool {
	return s.index != nil
}

func (s *Service) emit(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = s.now()
	}
	s.observer.Observe(ctx, ev)
}

// embedOne embeds a single text.
func (s *Service) embedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, errors.New("empty embedding result")
	}
	return vectors[0], nil
}

func requireUser(userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	return nil
}

// GetMemoryMode returns the user's current mode.
func (s *Service) GetMemoryMode(ctx context.Context, userID string) (Mode, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	mode, err := s.modes.GetMemoryMode(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get memory mode %s: %w", userID, err)
	}
	return mode, nil
}

// GetMemoryStats aggregates the user's memories. Users with no memories get
// zeroed stats, not an error.
func (s *Service) GetMemoryStats(ctx context.Context, userID string) (*Stats, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	stats, err := s.memories.MemoryStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("memory stats %s: %w", userID, err)
	}
	if stats == nil {
		stats = NewStats()
	}
	return stats, nil
}
