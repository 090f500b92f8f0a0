package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeEmbedder returns a tiny deterministic vector per text.
type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

type fakePoint struct {
	vector []float32
	meta   Metadata
}

// fakeIndex stores points in insertion order and scores them by content.
type fakeIndex struct {
	mu           sync.Mutex
	order        []string
	points       map[string]fakePoint
	scores       map[string]float64 // by content, default 0.5
	ignoreFilter bool
	queryErr     error
	deleted      []string
	lastFilter   Predicate
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{points: make(map[string]fakePoint), scores: make(map[string]float64)}
}

func (f *fakeIndex) Upsert(ctx context.Context, id string, vector []float32, meta Metadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.points[id]; !ok {
		f.order = append(f.order, id)
	}
	f.points[id] = fakePoint{vector: vector, meta: meta}
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, filter Predicate, topK int) ([]Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []Match
	for _, id := range f.order {
		p, ok := f.points[id]
		if !ok {
			continue
		}
		if !f.ignoreFilter && !Allows(filter, p.meta) {
			continue
		}
		score, ok := f.scores[p.meta.Content]
		if !ok {
			score = 0.5
		}
		out = append(out, Match{ID: id, Score: score, Metadata: p.meta})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (f *fakeIndex) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.points, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.points)
}

// fakeRepo implements every repository in memory.
type fakeRepo struct {
	mu       sync.Mutex
	seq      int
	memories map[string]*Memory
	modes    map[string]Mode
	sessions []*FocusSession

	// raceOnInsert simulates a concurrent writer winning the insert.
	raceOnInsert bool
	touchErr     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{memories: make(map[string]*Memory), modes: make(map[string]Mode)}
}

func (r *fakeRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *fakeRepo) FindMemoryByHash(ctx context.Context, userID, hash string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.memories {
		if m.UserID == userID && m.ContentHash == hash {
			return id, nil
		}
	}
	return "", nil
}

func (r *fakeRepo) InsertMemory(ctx context.Context, m *Memory) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.raceOnInsert {
		r.raceOnInsert = false
		winner := *m
		winner.VectorID = "winner-vector"
		id := r.nextID("mem")
		winner.ID = id
		r.memories[id] = &winner
		return "", fmt.Errorf("insert: %w", ErrDuplicateContent)
	}
	for _, existing := range r.memories {
		if existing.UserID == m.UserID && existing.ContentHash == m.ContentHash {
			return "", fmt.Errorf("insert: %w", ErrDuplicateContent)
		}
	}
	id := r.nextID("mem")
	cp := *m
	cp.ID = id
	r.memories[id] = &cp
	return id, nil
}

func (r *fakeRepo) TouchMemories(ctx context.Context, userID string, vectorIDs []string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.touchErr != nil {
		return r.touchErr
	}
	for _, m := range r.memories {
		if m.UserID != userID {
			continue
		}
		for _, vid := range vectorIDs {
			if m.VectorID == vid {
				m.AccessCount++
				t := at
				m.LastAccessedAt = &t
			}
		}
	}
	return nil
}

func (r *fakeRepo) MemoryStats(ctx context.Context, userID string) (*Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := NewStats()
	var importance, strength int
	for _, m := range r.memories {
		if m.UserID != userID {
			continue
		}
		stats.Total++
		stats.ByType[m.MemoryType]++
		stats.ByPrivacy[m.PrivacyLevel]++
		importance += m.Importance
		strength += m.Strength
		if m.IsPermanent {
			stats.Permanent++
		}
	}
	if stats.Total > 0 {
		stats.AvgImportance = float64(importance) / float64(stats.Total)
		stats.AvgStrength = float64(strength) / float64(stats.Total)
	}
	return stats, nil
}

func (r *fakeRepo) GetMemoryMode(ctx context.Context, userID string) (Mode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.modes[userID]; ok {
		return m, nil
	}
	return DefaultMode, nil
}

func (r *fakeRepo) SetMemoryMode(ctx context.Context, userID string, mode Mode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modes[userID] = mode
	return nil
}

func (r *fakeRepo) ActiveFocusSession(ctx context.Context, userID string) (*FocusSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID && s.IsActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) ReplaceFocusSession(ctx context.Context, s *FocusSession) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.UserID == s.UserID {
			existing.IsActive = false
		}
	}
	cp := *s
	cp.ID = r.nextID("focus")
	r.sessions = append(r.sessions, &cp)
	return cp.ID, nil
}

func (r *fakeRepo) DeactivateFocusSession(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID {
			s.IsActive = false
		}
	}
	return nil
}

func (r *fakeRepo) activeCount(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sessions {
		if s.UserID == userID && s.IsActive {
			n++
		}
	}
	return n
}

func (r *fakeRepo) memory(id string) *Memory {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memories[id]
	if !ok {
		return nil
	}
	cp := *m
	return &cp
}

// recorder collects emitted events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Observe(ctx context.Context, ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) find(kind EventKind) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.Kind == kind {
			return ev, true
		}
	}
	return Event{}, false
}

type harness struct {
	svc      *Service
	clock    *fakeClock
	embedder *fakeEmbedder
	index    *fakeIndex
	repo     *fakeRepo
	events   *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:    newFakeClock(),
		embedder: &fakeEmbedder{},
		index:    newFakeIndex(),
		repo:     newFakeRepo(),
		events:   &recorder{},
	}
	svc, err := NewService(Deps{
		Embedder: h.embedder,
		Index:    h.index,
		Memories: h.repo,
		Focus:    h.repo,
		Modes:    h.repo,
		Observer: h.events,
		Now:      h.clock.Now,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	h.svc = svc
	return h
}

func (h *harness) store(t *testing.T, userID, content string, opts StoreOptions) string {
	t.Helper()
	id, err := h.svc.StoreMemory(context.Background(), userID, content, opts)
	if err != nil {
		t.Fatalf("StoreMemory(%q): %v", content, err)
	}
	return id
}

func (h *harness) search(t *testing.T, userID, query string, opts SearchOptions) []RankedResult {
	t.Helper()
	results, err := h.svc.SearchMemories(context.Background(), userID, query, opts)
	if err != nil {
		t.Fatalf("SearchMemories(%q): %v", query, err)
	}
	return results
}

func contents(results []RankedResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Metadata.Content
	}
	return out
}

var errBackend = errors.New("backend down")
