// Package notify delivers application store change events to subscribers.
package notify

import (
	"context"
	"time"
)

// Event describes a single change of the application store.
type Event struct {
	// Type is the event type (load:succeeded, favorite:added, ...)
	Type string `json:"type"`

	// Revision is the store revision produced by the change
	Revision uint64 `json:"revision"`

	// Timestamp is when the change was applied
	Timestamp time.Time `json:"timestamp"`

	// Index is the entity index for entity events, -1 otherwise
	Index int `json:"index"`

	// Name is the entity or favorite name (if applicable)
	Name string `json:"name,omitempty"`

	// Value carries the event specific value (color, favorite id, category)
	Value string `json:"value,omitempty"`

	// Error contains error details if a load failed
	Error string `json:"error,omitempty"`
}

// Subscriber receives store events.
type Subscriber interface {
	// Notify handles the event. It must not block and must not call
	// mutating store actions synchronously.
	Notify(ctx context.Context, event *Event)

	// Name returns the subscriber's name for logging and unregistering.
	Name() string
}

// SubscriberFunc adapts a function into a Subscriber.
type SubscriberFunc struct {
	ID string
	Fn func(ctx context.Context, event *Event)
}

// Notify calls the wrapped function.
func (s SubscriberFunc) Notify(ctx context.Context, event *Event) {
	s.Fn(ctx, event)
}

// Name returns the subscriber ID.
func (s SubscriberFunc) Name() string {
	return s.ID
}

// Event types emitted by the application store.
const (
	EventLoadStarted     = "load:started"
	EventLoadSucceeded   = "load:succeeded"
	EventLoadFailed      = "load:failed"
	EventFavoriteAdded   = "favorite:added"
	EventFavoriteRemoved = "favorite:removed"
	EventEntityColor     = "entity:color"
)
