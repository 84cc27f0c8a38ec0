package suggest

import (
	"context"
	"sync"
	"time"
)

// Event name constants.
const (
	EventCacheHit           = "cache_hit"
	EventCacheMiss          = "cache_miss"
	EventSuggestionComplete = "suggestion_complete"
	EventError              = "error"
)

// Event is a fire-and-forget pipeline notification.
type Event struct {
	Name        string        `json:"name"`
	RequestID   string        `json:"requestId"`
	CacheKey    string        `json:"cacheKey,omitempty"`
	Suggestions int           `json:"suggestions,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Error       string        `json:"error,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}

// Emitter broadcasts pipeline events to subscribers. Delivery is
// best-effort: a subscriber with a full buffer misses the event rather than
// blocking the pipeline.
type Emitter struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewEmitter creates an emitter with no subscribers.
func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[chan Event]struct{})}
}

// Subscribe returns a channel of events that closes when ctx is done.
func (e *Emitter) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)
	e.mu.Lock()
	e.subs[ch] = struct{}{}
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.mu.Lock()
		delete(e.subs, ch)
		close(ch)
		e.mu.Unlock()
	}()

	return ch
}

// Emit publishes an event to all subscribers without blocking.
func (e *Emitter) Emit(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for ch := range e.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
