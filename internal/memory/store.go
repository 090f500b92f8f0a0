package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPrivacyLevel = PrivacyContextual
	DefaultMemoryType   = TypeWorking
)

// StoreOptions describes how a new memory is classified.
type StoreOptions struct {
	ChatID       string       `json:"chat_id,omitempty"`
	PrivacyLevel PrivacyLevel `json:"privacy_level,omitempty"`
	Category     string       `json:"category,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Importance   *int         `json:"importance,omitempty"`
	MemoryType   MemoryType   `json:"memory_type,omitempty"`
}

// Importance returns a pointer for StoreOptions.Importance and
// SearchOptions.MinImportance.
func Importance(v int) *int { return &v }

func (o StoreOptions) resolve() (StoreOptions, int, error) {
	importance := DefaultImportance
	if o.Importance != nil {
		importance = *o.Importance
	}
	if err := ValidateImportance(importance); err != nil {
		return o, 0, err
	}
	if o.PrivacyLevel == "" {
		o.PrivacyLevel = DefaultPrivacyLevel
	}
	if !o.PrivacyLevel.Valid() {
		return o, 0, fmt.Errorf("%w: %q", ErrInvalidPrivacy, o.PrivacyLevel)
	}
	if o.MemoryType == "" {
		o.MemoryType = DefaultMemoryType
	}
	if !o.MemoryType.Valid() {
		return o, 0, fmt.Errorf("%w: %q", ErrInvalidMemoryType, o.MemoryType)
	}
	tags := make([]string, 0, len(o.Tags))
	for _, t := range o.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	o.Tags = tags
	o.Category = strings.TrimSpace(o.Category)
	return o, importance, nil
}

// StoreMemory saves content for userID and returns the memory id. Storing
// text the user already has returns the existing id without changes.
// Unlike search, a missing vector index is an error here.
func (s *Service) StoreMemory(ctx context.Context, userID, content string, opts StoreOptions) (string, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	opts, importance, err := opts.resolve()
	if err != nil {
		return "", err
	}
	if s.index == nil {
		s.emit(ctx, Event{Kind: EventIndexUnavailable, UserID: userID, Detail: "store"})
		return "", fmt.Errorf("store memory for %s: %w", userID, ErrIndexUnavailable)
	}

	hash := ContentHash(content)
	existing, err := s.memories.FindMemoryByHash(ctx, userID, hash)
	if err != nil {
		return "", fmt.Errorf("find memory by hash for %s: %w", userID, err)
	}
	if existing != "" {
		s.emit(ctx, Event{Kind: EventDuplicateSkipped, UserID: userID, MemoryID: existing})
		return existing, nil
	}

	mode, err := s.GetMemoryMode(ctx, userID)
	if err != nil {
		return "", err
	}
	decayRate, err := DecayRateFor(importance, mode)
	if err != nil {
		return "", err
	}

	vector, err := s.embedOne(ctx, content)
	if err != nil {
		return "", fmt.Errorf("embed memory for %s: %w", userID, err)
	}

	mem := &Memory{
		UserID:       userID,
		ChatID:       opts.ChatID,
		Content:      content,
		ContentHash:  hash,
		VectorID:     uuid.New().String(),
		MemoryType:   opts.MemoryType,
		PrivacyLevel: opts.PrivacyLevel,
		Category:     opts.Category,
		Tags:         opts.Tags,
		Importance:   importance,
		Strength:     InitialStrength,
		DecayRate:    decayRate,
		IsPermanent:  mode == ModePersistent,
		RequiresAuth: opts.PrivacyLevel.RequiresAuth(),
		CreatedAt:    s.now(),
	}

	if err := s.index.Upsert(ctx, mem.VectorID, vector, s.metadataFor(mem)); err != nil {
		return "", fmt.Errorf("upsert vector %s for %s: %w", mem.VectorID, userID, err)
	}

	id, err := s.memories.InsertMemory(ctx, mem)
	if errors.Is(err, ErrDuplicateContent) {
		return s.resolveDuplicate(ctx, mem)
	}
	if err != nil {
		return "", fmt.Errorf("insert memory for %s: %w", userID, err)
	}
	mem.ID = id

	s.logger.Debug("memory stored",
		zap.String("user", userID),
		zap.String("memory", id),
		zap.String("mode", string(mode)),
		zap.Int("decay_rate", decayRate))
	s.emit(ctx, Event{Kind: EventMemoryStored, UserID: userID, MemoryID: id, Value: float64(decayRate)})
	return id, nil
}

// resolveDuplicate handles a concurrent writer that inserted the same text
// between the hash lookup and our insert. The winner's id is returned and
// our vector is removed.
func (s *Service) resolveDuplicate(ctx context.Context, mem *Memory) (string, error) {
	existing, err := s.memories.FindMemoryByHash(ctx, mem.UserID, mem.ContentHash)
	if err != nil {
		return "", fmt.Errorf("find memory by hash for %s: %w", mem.UserID, err)
	}
	if existing == "" {
		return "", fmt.Errorf("insert memory for %s: %w", mem.UserID, ErrDuplicateContent)
	}
	if err := s.index.Delete(ctx, mem.VectorID); err != nil {
		s.logger.Warn("failed to remove orphaned vector",
			zap.String("user", mem.UserID),
			zap.String("vector", mem.VectorID),
			zap.Error(err))
	}
	s.emit(ctx, Event{Kind: EventDuplicateSkipped, UserID: mem.UserID, MemoryID: existing, Detail: "race"})
	return existing, nil
}

func (s *Service) metadataFor(m *Memory) Metadata {
	return Metadata{
		UserID:       m.UserID,
		ChatID:       m.ChatID,
		Content:      truncateRunes(m.Content, s.contentLimit),
		ContentHash:  m.ContentHash,
		MemoryType:   m.MemoryType,
		PrivacyLevel: m.PrivacyLevel,
		Category:     m.Category,
		Tags:         m.Tags,
		Importance:   m.Importance,
		Strength:     m.Strength,
		DecayRate:    m.DecayRate,
		IsPermanent:  m.IsPermanent,
		RequiresAuth: m.RequiresAuth,
		CreatedAt:    m.CreatedAt,
	}
}
