package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher routes events to registered subscribers.
type Dispatcher struct {
	subscribers []Subscriber
	mu          sync.RWMutex
	async       bool
	logger      *slog.Logger
}

// NewDispatcher creates a new dispatcher.
// If async is true, events are delivered in goroutines.
func NewDispatcher(async bool, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		subscribers: make([]Subscriber, 0),
		async:       async,
		logger:      logger,
	}
}

// Register adds a subscriber to the dispatcher.
func (d *Dispatcher) Register(sub Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, sub)
}

// Unregister removes subscribers by name.
func (d *Dispatcher) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	filtered := make([]Subscriber, 0, len(d.subscribers))
	for _, s := range d.subscribers {
		if s.Name() != name {
			filtered = append(filtered, s)
		}
	}
	d.subscribers = filtered
}

// Dispatch delivers an event to all registered subscribers.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) {
	d.mu.RLock()
	subscribers := make([]Subscriber, len(d.subscribers))
	copy(subscribers, d.subscribers)
	d.mu.RUnlock()

	if len(subscribers) == 0 {
		return
	}

	if d.async {
		for _, sub := range subscribers {
			go d.notifyWithRecover(ctx, sub, event)
		}
	} else {
		for _, sub := range subscribers {
			d.notifyWithRecover(ctx, sub, event)
		}
	}
}

// notifyWithRecover delivers an event and recovers from subscriber panics.
func (d *Dispatcher) notifyWithRecover(ctx context.Context, sub Subscriber, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notify: panic in subscriber",
				slog.String("subscriber", sub.Name()),
				slog.Any("panic", r),
			)
		}
	}()

	sub.Notify(ctx, event)
}

// HasSubscribers returns true if any subscribers are registered.
func (d *Dispatcher) HasSubscribers() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers) > 0
}

// Subscribers returns a copy of the registered subscribers.
func (d *Dispatcher) Subscribers() []Subscriber {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]Subscriber, len(d.subscribers))
	copy(result, d.subscribers)
	return result
}
