package memory

import (
	"context"
	"time"
)

// EventKind names an observable step of the memory pipeline.
type EventKind string

const (
	EventMemoryStored     EventKind = "memory_stored"
	EventDuplicateSkipped EventKind = "duplicate_skipped"
	EventDecayApplied     EventKind = "decay_applied"
	EventMemoryForgotten  EventKind = "memory_forgotten"
	EventBoostApplied     EventKind = "boost_applied"
	EventSearchCompleted  EventKind = "search_completed"
	EventIndexUnavailable EventKind = "index_unavailable"
	EventModeChanged      EventKind = "mode_changed"
	EventFocusActivated   EventKind = "focus_activated"
	EventFocusDeactivated EventKind = "focus_deactivated"
)

// Event is emitted by Service. Count and Value carry kind-specific numbers:
// result counts for search events, the boost factor for boost events.
type Event struct {
	Kind     EventKind `json:"kind"`
	UserID   string    `json:"user_id"`
	MemoryID string    `json:"memory_id,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	Count    int       `json:"count,omitempty"`
	Value    float64   `json:"value,omitempty"`
	At       time.Time `json:"at"`
}

// Observer receives pipeline events. Implementations must not block for long.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, ev Event) { f(ctx, ev) }

// Observers fans an event out to each member in order.
type Observers []Observer

// Observe delivers ev to every non-nil observer.
func (os Observers) Observe(ctx context.Context, ev Event) {
	for _, o := range os {
		if o != nil {
			o.Observe(ctx, ev)
		}
	}
}

type nopObserver struct{}

func (nopObserver) Observe(context.Context, Event) {}
