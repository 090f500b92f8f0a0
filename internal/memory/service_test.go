package memory

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestNewServiceRequiresCollaborators(t *testing.T) {
	if _, err := NewService(Deps{}); err == nil {
		t.Error("expected error without embedder")
	}
	if _, err := NewService(Deps{Embedder: &fakeEmbedder{}}); err == nil {
		t.Error("expected error without repositories")
	}
}

func TestStoreMemoryDedup(t *testing.T) {
	h := newHarness(t)
	first := h.store(t, "u1", "same text", StoreOptions{})
	second := h.store(t, "u1", "same text", StoreOptions{Importance: Importance(9), Category: "other"})

	if first != second {
		t.Fatalf("second store returned %q, want %q", second, first)
	}
	if n := h.index.count(); n != 1 {
		t.Errorf("index holds %d vectors, want 1", n)
	}
	if n, _ := h.repo.MemoryStats(context.Background(), "u1"); n.Total != 1 {
		t.Errorf("repo holds %d rows, want 1", n.Total)
	}
	if m := h.repo.memory(first); m.Importance != DefaultImportance || m.Category != "" {
		t.Errorf("existing memory was modified: %+v", m)
	}
	if h.embedder.calls != 1 {
		t.Errorf("embedder called %d times, want 1", h.embedder.calls)
	}
	if _, ok := h.events.find(EventDuplicateSkipped); !ok {
		t.Error("expected duplicate_skipped event")
	}

	// Dedup is per user.
	other := h.store(t, "u2", "same text", StoreOptions{})
	if other == first {
		t.Error("different users must not share a memory")
	}
}

func TestStoreMemoryDuplicateRace(t *testing.T) {
	h := newHarness(t)
	h.repo.raceOnInsert = true

	id, err := h.svc.StoreMemory(context.Background(), "u1", "raced text", StoreOptions{})
	if err != nil {
		t.Fatalf("StoreMemory: %v", err)
	}
	winner := h.repo.memory(id)
	if winner == nil || winner.VectorID != "winner-vector" {
		t.Fatalf("expected the concurrent writer's memory, got %+v", winner)
	}
	if len(h.index.deleted) != 1 {
		t.Errorf("expected orphaned vector to be deleted, deleted=%v", h.index.deleted)
	}
	if h.index.count() != 0 {
		t.Errorf("index still holds %d vectors", h.index.count())
	}
}

func TestStoreMemoryFailsWithoutIndex(t *testing.T) {
	h := newHarness(t)
	svc, _ := NewService(Deps{Embedder: h.embedder, Memories: h.repo, Focus: h.repo, Modes: h.repo})

	_, err := svc.StoreMemory(context.Background(), "u1", "hello", StoreOptions{})
	if !errors.Is(err, ErrIndexUnavailable) {
		t.Fatalf("got %v, want ErrIndexUnavailable", err)
	}
	if st, _ := h.repo.MemoryStats(context.Background(), "u1"); st.Total != 0 {
		t.Error("no row should be written when the index is unavailable")
	}
}

func TestStoreMemoryValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tests := []struct {
		name    string
		userID  string
		content string
		opts    StoreOptions
		want    error
	}{
		{"no user", "", "x", StoreOptions{}, ErrEmptyUserID},
		{"blank content", "u1", "   ", StoreOptions{}, ErrEmptyContent},
		{"importance high", "u1", "x", StoreOptions{Importance: Importance(11)}, ErrInvalidImportance},
		{"importance low", "u1", "x", StoreOptions{Importance: Importance(-1)}, ErrInvalidImportance},
		{"privacy", "u1", "x", StoreOptions{PrivacyLevel: "secret"}, ErrInvalidPrivacy},
		{"type", "u1", "x", StoreOptions{MemoryType: "episodic"}, ErrInvalidMemoryType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.StoreMemory(ctx, tt.userID, tt.content, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if !IsValidation(err) {
				t.Errorf("IsValidation(%v) = false", err)
			}
		})
	}
	if h.embedder.calls != 0 {
		t.Errorf("embedder called %d times on invalid input", h.embedder.calls)
	}
}

func TestStoreMemoryEmbeddingFailure(t *testing.T) {
	h := newHarness(t)
	h.embedder.err = errBackend
	_, err := h.svc.StoreMemory(context.Background(), "u1", "hello", StoreOptions{})
	if !errors.Is(err, errBackend) {
		t.Fatalf("got %v, want wrapped backend error", err)
	}
	if !strings.Contains(err.Error(), "u1") {
		t.Errorf("error %q should name the user", err)
	}
}

func TestStoreMemoryFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.svc.ToggleMemoryMode(ctx, "u1", ModeHumanized); err != nil {
		t.Fatal(err)
	}
	id := h.store(t, "u1", "the vault code is 1234", StoreOptions{
		ChatID:       "chat-9",
		PrivacyLevel: PrivacyVault,
		Category:     " secrets ",
		Tags:         []string{"home", " ", "codes"},
		Importance:   Importance(4),
		MemoryType:   TypeConsolidated,
	})
	m := h.repo.memory(id)
	if m.DecayRate != 30 || m.IsPermanent {
		t.Errorf("decay rate %d permanent %v, want 30 false", m.DecayRate, m.IsPermanent)
	}
	if !m.RequiresAuth {
		t.Error("vault memory should require auth")
	}
	if m.Strength != InitialStrength {
		t.Errorf("strength = %d, want %d", m.Strength, InitialStrength)
	}
	if m.Category != "secrets" || !reflect.DeepEqual(m.Tags, []string{"home", "codes"}) {
		t.Errorf("category %q tags %v", m.Category, m.Tags)
	}
	if m.ContentHash != ContentHash("the vault code is 1234") {
		t.Error("content hash mismatch")
	}
	if !m.CreatedAt.Equal(h.clock.Now()) {
		t.Errorf("created at %v, want %v", m.CreatedAt, h.clock.Now())
	}

	meta := h.index.points[m.VectorID].meta
	if meta.UserID != "u1" || meta.ChatID != "chat-9" || meta.DecayRate != 30 || meta.PrivacyLevel != PrivacyVault {
		t.Errorf("vector metadata mismatch: %+v", meta)
	}
}

func TestStoreMemoryTruncatesMetadataContent(t *testing.T) {
	h := newHarness(t)
	svc, _ := NewService(Deps{
		Embedder: h.embedder, Index: h.index,
		Memories: h.repo, Focus: h.repo, Modes: h.repo,
		MetadataContentLimit: 5,
	})
	id, err := svc.StoreMemory(context.Background(), "u1", "héllo wörld", StoreOptions{})
	if err != nil {
		t.Fatal(err)
	}
	m := h.repo.memory(id)
	if m.Content != "héllo wörld" {
		t.Errorf("relational content truncated: %q", m.Content)
	}
	if got := h.index.points[m.VectorID].meta.Content; got != "héllo" {
		t.Errorf("metadata content = %q, want %q", got, "héllo")
	}
}

func TestModeSnapshot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.svc.ToggleMemoryMode(ctx, "u1", ModeHumanized); err != nil {
		t.Fatal(err)
	}
	before := h.store(t, "u1", "before switch", StoreOptions{Importance: Importance(2)})

	if err := h.svc.ToggleMemoryMode(ctx, "u1", ModePersistent); err != nil {
		t.Fatal(err)
	}
	after := h.store(t, "u1", "after switch", StoreOptions{Importance: Importance(2)})

	if m := h.repo.memory(before); m.DecayRate != 40 || m.IsPermanent {
		t.Errorf("pre-switch memory changed: decay %d permanent %v", m.DecayRate, m.IsPermanent)
	}
	if m := h.repo.memory(after); m.DecayRate != 0 || !m.IsPermanent {
		t.Errorf("post-switch memory: decay %d permanent %v, want 0 true", m.DecayRate, m.IsPermanent)
	}
}

func TestToggleMemoryModeRejectsUnknown(t *testing.T) {
	h := newHarness(t)
	if err := h.svc.ToggleMemoryMode(context.Background(), "u1", Mode("sometimes")); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("got %v, want ErrInvalidMode", err)
	}
	mode, _ := h.svc.GetMemoryMode(context.Background(), "u1")
	if mode != DefaultMode {
		t.Errorf("mode = %s, want %s", mode, DefaultMode)
	}
}

func TestSearchMemoriesWithoutIndexReturnsEmpty(t *testing.T) {
	h := newHarness(t)
	svc, _ := NewService(Deps{Embedder: h.embedder, Memories: h.repo, Focus: h.repo, Modes: h.repo, Observer: h.events})

	results, err := svc.SearchMemories(context.Background(), "u1", "anything", SearchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("got %v, want empty non-nil slice", results)
	}
	if h.embedder.calls != 0 {
		t.Error("query should not be embedded without an index")
	}
	if _, ok := h.events.find(EventIndexUnavailable); !ok {
		t.Error("expected index_unavailable event")
	}
}

func TestSearchMemoriesPropagatesBackendErrors(t *testing.T) {
	h := newHarness(t)
	h.store(t, "u1", "hello", StoreOptions{})

	h.embedder.err = errBackend
	if _, err := h.svc.SearchMemories(context.Background(), "u1", "hi", SearchOptions{}); !errors.Is(err, errBackend) {
		t.Errorf("embedding failure: got %v", err)
	}

	h.embedder.err = nil
	h.index.queryErr = errBackend
	if _, err := h.svc.SearchMemories(context.Background(), "u1", "hi", SearchOptions{}); !errors.Is(err, errBackend) {
		t.Errorf("index failure: got %v", err)
	}
}

func TestSearchMemoriesTopK(t *testing.T) {
	h := newHarness(t)
	for _, c := range []string{"a", "b", "c", "d"} {
		h.store(t, "u1", c, StoreOptions{})
	}
	if got := h.search(t, "u1", "q", SearchOptions{TopK: 2}); len(got) != 2 {
		t.Errorf("got %d results, want 2", len(got))
	}
	if got := h.search(t, "u1", "q", SearchOptions{}); len(got) != 4 {
		t.Errorf("got %d results, want 4", len(got))
	}
}

func TestSearchMemoriesForgettingThreshold(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.svc.ToggleMemoryMode(ctx, "u1", ModeHumanized)
	h.store(t, "u1", "fleeting", StoreOptions{Importance: Importance(0)})

	h.clock.Advance(3 * Month)
	got := h.search(t, "u1", "q", SearchOptions{})
	if len(got) != 1 {
		t.Fatalf("at 3 months got %d results, want 1", len(got))
	}
	if math.Abs(got[0].CurrentStrength-1.25) > 1e-9 {
		t.Errorf("strength at 3 months = %v, want 1.25", got[0].CurrentStrength)
	}
	if math.Abs(got[0].Score-0.5*0.125) > 1e-9 {
		t.Errorf("score = %v, want %v", got[0].Score, 0.5*0.125)
	}

	h.clock.Advance(Month / 2)
	if got := h.search(t, "u1", "q", SearchOptions{}); len(got) != 0 {
		t.Fatalf("at 3.5 months got %v, want none", contents(got))
	}
	ev, ok := h.events.find(EventMemoryForgotten)
	if !ok || ev.Count != 1 {
		t.Errorf("forgotten event = %+v, %v", ev, ok)
	}

	// Forgetting hides; it never deletes.
	if st, _ := h.svc.GetMemoryStats(ctx, "u1"); st.Total != 1 {
		t.Errorf("stats total = %d, want 1", st.Total)
	}
}

func TestSearchMemoriesPersistentUserSeesNoDecay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.svc.ToggleMemoryMode(ctx, "u1", ModeHumanized)
	h.store(t, "u1", "old humanized memory", StoreOptions{Importance: Importance(0)})
	h.svc.ToggleMemoryMode(ctx, "u1", ModePersistent)

	h.clock.Advance(12 * Month)
	got := h.search(t, "u1", "q", SearchOptions{})
	if len(got) != 1 || got[0].Score != 0.5 {
		t.Fatalf("got %+v, want one undecayed result", got)
	}
	if _, ok := h.events.find(EventDecayApplied); ok {
		t.Error("decay should not run for persistent users")
	}
}

func TestSearchMemoriesDoesNotMutateStrength(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.svc.ToggleMemoryMode(ctx, "u1", ModeHumanized)
	id := h.store(t, "u1", "note", StoreOptions{Importance: Importance(5)})

	h.clock.Advance(2 * Month)
	h.search(t, "u1", "q", SearchOptions{})
	h.search(t, "u1", "q", SearchOptions{})

	m := h.repo.memory(id)
	if m.Strength != InitialStrength || m.DecayRate != 25 {
		t.Errorf("strength %d decay %d changed by reads", m.Strength, m.DecayRate)
	}
	meta := h.index.points[m.VectorID].meta
	if meta.Strength != InitialStrength {
		t.Errorf("vector strength changed to %d", meta.Strength)
	}
	if m.AccessCount != 2 {
		t.Errorf("access count = %d, want 2", m.AccessCount)
	}
	if m.LastAccessedAt == nil || !m.LastAccessedAt.Equal(h.clock.Now()) {
		t.Errorf("last accessed = %v, want %v", m.LastAccessedAt, h.clock.Now())
	}
}

func TestSearchMemoriesAccessUpdateFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.store(t, "u1", "note", StoreOptions{})
	h.repo.touchErr = errBackend
	if got := h.search(t, "u1", "q", SearchOptions{}); len(got) != 1 {
		t.Errorf("got %d results, want 1", len(got))
	}
}

func TestSearchMemoriesPrivacyDefaultExclusion(t *testing.T) {
	h := newHarness(t)
	h.store(t, "u1", "public note", StoreOptions{PrivacyLevel: PrivacyPublic})
	h.store(t, "u1", "contextual note", StoreOptions{PrivacyLevel: PrivacyContextual})
	h.store(t, "u1", "private note", StoreOptions{PrivacyLevel: PrivacyPrivate})
	h.store(t, "u1", "vault note", StoreOptions{PrivacyLevel: PrivacyVault})
	h.index.scores["private note"] = 0.99
	h.index.scores["vault note"] = 0.99

	got := contents(h.search(t, "u1", "q", SearchOptions{}))
	want := []string{"public note", "contextual note"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSearchMemoriesVaultExclusionIsAbsolute(t *testing.T) {
	h := newHarness(t)
	h.store(t, "u1", "vault note", StoreOptions{PrivacyLevel: PrivacyVault, Tags: []string{"family"}})
	h.store(t, "u1", "private family", StoreOptions{PrivacyLevel: PrivacyPrivate, Tags: []string{"family"}})
	h.store(t, "u2", "someone else", StoreOptions{PrivacyLevel: PrivacyPublic})
	// Even an index that ignores the filter must not leak.
	h.index.ignoreFilter = true

	for _, opts := range []SearchOptions{
		{},
		{IncludePrivate: true},
		{IncludePrivate: true, PrivateTags: []string{"family"}},
	} {
		for _, r := range h.search(t, "u1", "q", opts) {
			if r.Metadata.PrivacyLevel == PrivacyVault {
				t.Errorf("options %+v returned a vault memory", opts)
			}
			if r.Metadata.UserID != "u1" {
				t.Errorf("options %+v returned memory of %s", opts, r.Metadata.UserID)
			}
		}
	}
}

func TestSearchMemoriesPrivateTagException(t *testing.T) {
	h := newHarness(t)
	h.store(t, "u1", "private family", StoreOptions{PrivacyLevel: PrivacyPrivate, Tags: []string{"family"}})
	h.store(t, "u1", "private work", StoreOptions{PrivacyLevel: PrivacyPrivate, Tags: []string{"work"}})
	h.store(t, "u1", "public note", StoreOptions{PrivacyLevel: PrivacyPublic})

	got := contents(h.search(t, "u1", "q", SearchOptions{IncludePrivate: true, PrivateTags: []string{"family"}}))
	want := []string{"private family", "public note"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSearchMemoriesCategoryTypeImportanceFilters(t *testing.T) {
	h := newHarness(t)
	h.store(t, "u1", "golf wisdom", StoreOptions{Category: "golf", MemoryType: TypeWisdom, Importance: Importance(9)})
	h.store(t, "u1", "golf working", StoreOptions{Category: "golf", Importance: Importance(9)})
	h.store(t, "u1", "golf minor", StoreOptions{Category: "golf", MemoryType: TypeWisdom, Importance: Importance(3)})
	h.store(t, "u1", "tennis wisdom", StoreOptions{Category: "tennis", MemoryType: TypeWisdom, Importance: Importance(9)})

	got := contents(h.search(t, "u1", "q", SearchOptions{
		Categories:    []string{"golf"},
		MemoryTypes:   []MemoryType{TypeWisdom},
		MinImportance: Importance(5),
	}))
	if !reflect.DeepEqual(got, []string{"golf wisdom"}) {
		t.Errorf("got %v", got)
	}

	if _, err := h.svc.SearchMemories(context.Background(), "u1", "q", SearchOptions{MinImportance: Importance(12)}); !errors.Is(err, ErrInvalidImportance) {
		t.Errorf("got %v, want ErrInvalidImportance", err)
	}
}

func TestSearchMemoriesFocusBoost(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.store(t, "u1", "health note", StoreOptions{Category: "health"})
	h.store(t, "u1", "misc note", StoreOptions{Category: "misc"})
	h.index.scores["health note"] = 0.4
	h.index.scores["misc note"] = 0.6

	if _, err := h.svc.ActivateFocusMode(ctx, "u1", FocusOptions{Categories: []string{"health"}, BoostFactor: 2.0, DurationHours: 1}); err != nil {
		t.Fatal(err)
	}
	got := h.search(t, "u1", "q", SearchOptions{})
	if len(got) != 2 {
		t.Fatalf("got %d results", len(got))
	}
	if got[0].Metadata.Content != "health note" || got[0].Score != 0.8 || !got[0].Boosted {
		t.Errorf("first result = %+v, want boosted health note at 0.8", got[0])
	}
	if got[1].Score != 0.6 || got[1].Boosted {
		t.Errorf("non-matching result changed: %+v", got[1])
	}

	// The session lapses without any sweep.
	h.clock.Advance(time.Hour)
	got = h.search(t, "u1", "q", SearchOptions{})
	if got[0].Metadata.Content != "misc note" {
		t.Errorf("boost still applied after expiry: %v", contents(got))
	}
}

func TestSearchMemoriesTiesKeepIndexOrder(t *testing.T) {
	h := newHarness(t)
	for _, c := range []string{"first", "second", "third"} {
		h.store(t, "u1", c, StoreOptions{})
	}
	got := contents(h.search(t, "u1", "q", SearchOptions{}))
	if !reflect.DeepEqual(got, []string{"first", "second", "third"}) {
		t.Errorf("got %v", got)
	}
}

func TestActivateFocusReplacesPrevious(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first, err := h.svc.ActivateFocusMode(ctx, "u1", FocusOptions{Categories: []string{"golf"}})
	if err != nil {
		t.Fatal(err)
	}
	second, err := h.svc.ActivateFocusMode(ctx, "u1", FocusOptions{Categories: []string{"health"}, BoostFactor: 1.25, DurationHours: 3})
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("expected a new session id")
	}
	if n := h.repo.activeCount("u1"); n != 1 {
		t.Fatalf("%d active sessions, want 1", n)
	}
	b, err := h.svc.ActiveBoost(ctx, "u1")
	if err != nil || b == nil {
		t.Fatalf("ActiveBoost: %v %v", b, err)
	}
	if b.SessionID != second || b.Factor != 1.25 || !reflect.DeepEqual(b.Categories, []string{"health"}) {
		t.Errorf("boost = %+v", b)
	}
	if want := h.clock.Now().Add(3 * time.Hour); !b.ExpiresAt.Equal(want) {
		t.Errorf("expires at %v, want %v", b.ExpiresAt, want)
	}
}

func TestActivateFocusDefaultsAndValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.svc.ActivateFocusMode(ctx, "u1", FocusOptions{Categories: []string{"work"}}); err != nil {
		t.Fatal(err)
	}
	b, _ := h.svc.ActiveBoost(ctx, "u1")
	if b.Factor != DefaultBoostFactor {
		t.Errorf("factor = %v, want %v", b.Factor, DefaultBoostFactor)
	}
	if want := h.clock.Now().Add(DefaultFocusDuration * time.Hour); !b.ExpiresAt.Equal(want) {
		t.Errorf("expires at %v, want %v", b.ExpiresAt, want)
	}

	for _, opts := range []FocusOptions{
		{},
		{Categories: []string{" "}},
		{Categories: []string{"x"}, BoostFactor: -1},
		{Categories: []string{"x"}, BoostFactor: 0.001},
		{Categories: []string{"x"}, DurationHours: -2},
	} {
		if _, err := h.svc.ActivateFocusMode(ctx, "u1", opts); !errors.Is(err, ErrInvalidFocus) {
			t.Errorf("options %+v: got %v, want ErrInvalidFocus", opts, err)
		}
	}
}

func TestDeactivateFocusMode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.svc.DeactivateFocusMode(ctx, "u1"); err != nil {
		t.Fatalf("deactivate with no session: %v", err)
	}
	h.svc.ActivateFocusMode(ctx, "u1", FocusOptions{Categories: []string{"golf"}})
	if err := h.svc.DeactivateFocusMode(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if err := h.svc.DeactivateFocusMode(ctx, "u1"); err != nil {
		t.Fatalf("second deactivate: %v", err)
	}
	if b, _ := h.svc.ActiveBoost(ctx, "u1"); b != nil {
		t.Errorf("boost still active: %+v", b)
	}
}

func TestGetMemoryStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	empty, err := h.svc.GetMemoryStats(ctx, "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if empty.Total != 0 || empty.AvgImportance != 0 || empty.ByType == nil || empty.ByPrivacy == nil {
		t.Errorf("empty stats = %+v", empty)
	}

	h.store(t, "u1", "a", StoreOptions{Importance: Importance(2), PrivacyLevel: PrivacyPublic})
	h.svc.ToggleMemoryMode(ctx, "u1", ModeHumanized)
	h.store(t, "u1", "b", StoreOptions{Importance: Importance(8), MemoryType: TypeWisdom})

	st, err := h.svc.GetMemoryStats(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 2 || st.Permanent != 1 || st.AvgImportance != 5 || st.AvgStrength != 10 {
		t.Errorf("stats = %+v", st)
	}
	if st.ByType[TypeWorking] != 1 || st.ByType[TypeWisdom] != 1 {
		t.Errorf("by type = %v", st.ByType)
	}
	if st.ByPrivacy[PrivacyPublic] != 1 || st.ByPrivacy[PrivacyContextual] != 1 {
		t.Errorf("by privacy = %v", st.ByPrivacy)
	}
}

// Memory A is important and on-topic, B is minor. After five months of
// humanized decay only A survives, and focusing on A's category lifts it
// above a stronger unrelated match.
func TestEndToEndDecayAndFocus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.svc.ToggleMemoryMode(ctx, "U", ModeHumanized); err != nil {
		t.Fatal(err)
	}
	h.store(t, "U", "stewart golf course redesign", StoreOptions{Importance: Importance(8), Category: "stewart-golf"})
	h.store(t, "U", "bought new socks", StoreOptions{Importance: Importance(2), Category: "misc"})
	h.store(t, "U", "general notes", StoreOptions{Importance: Importance(8), Category: "notes"})
	h.index.scores["stewart golf course redesign"] = 0.6
	h.index.scores["bought new socks"] = 0.9
	h.index.scores["general notes"] = 0.7

	h.clock.Advance(5 * Month)
	got := h.search(t, "U", "golf project update", SearchOptions{})
	if !reflect.DeepEqual(contents(got), []string{"general notes", "stewart golf course redesign"}) {
		t.Fatalf("without focus got %v", contents(got))
	}
	a := got[1]
	if want := 10 * math.Pow(0.9, 5); math.Abs(a.CurrentStrength-want) > 1e-9 {
		t.Errorf("A strength = %v, want %v", a.CurrentStrength, want)
	}
	unboosted := a.Score

	if _, err := h.svc.ActivateFocusMode(ctx, "U", FocusOptions{Categories: []string{"stewart-golf"}, BoostFactor: 1.5, DurationHours: 2}); err != nil {
		t.Fatal(err)
	}
	got = h.search(t, "U", "golf project update", SearchOptions{})
	if got[0].Metadata.Content != "stewart golf course redesign" {
		t.Fatalf("with focus got %v", contents(got))
	}
	if math.Abs(got[0].Score-unboosted*1.5) > 1e-9 {
		t.Errorf("boosted score = %v, want %v", got[0].Score, unboosted*1.5)
	}
}
