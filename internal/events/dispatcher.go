package events

import (
	"sync"

	"go.uber.org/zap"
)

// Handler applies one push event to local state.
type Handler func(PushEvent)

// Dispatcher routes push events to exactly one handler per kind.
// Registration is idempotent: binding a kind that already has a handler is
// a no-op, never a second subscription — duplicate handlers would
// double-apply every event. Bindings live for one authenticated session
// and are dropped wholesale by Reset at teardown.
type Dispatcher struct {
	mu       sync.Mutex
	handlers map[Kind]Handler
	logger   *zap.Logger
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[Kind]Handler),
		logger:   logger,
	}
}

// Register binds a handler to a kind. Reports whether the binding was
// installed (false means the kind was already bound).
func (d *Dispatcher) Register(kind Kind, h Handler) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, bound := d.handlers[kind]; bound {
		return false
	}
	d.handlers[kind] = h
	return true
}

// Dispatch runs the handler bound to the event's kind. Unknown kinds are
// logged and dropped: the tagged union is versioned by the server and a
// newer sender must not crash an older client.
func (d *Dispatcher) Dispatch(ev PushEvent) {
	d.mu.Lock()
	h, ok := d.handlers[ev.Kind]
	d.mu.Unlock()
	if !ok {
		d.logger.Warn("unhandled push event", zap.String("kind", string(ev.Kind)))
		return
	}
	h(ev)
}

// Reset drops every binding. Called during session teardown so the next
// session starts from a clean registry.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = make(map[Kind]Handler)
}
