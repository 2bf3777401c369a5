// Package dispatch maps named lifecycle and action events onto charm
// operations. Delivery is serialized: the hosting runtime processes
// exactly one event at a time, which is the concurrency model the
// charm core assumes.
package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/charmctl/internal/charm"
	"github.com/danmuck/charmctl/internal/ident"
)

var (
	ErrUnknownEvent   = errors.New("dispatch: unknown event")
	ErrDuplicateEvent = errors.New("dispatch: event already registered")
)

// Handler processes one delivered event and reports the outcome.
type Handler func(ev Event) charm.Outcome

// Interceptor wraps handler registration. The dispatcher threads every
// registered handler through it, giving diagnostics layers one
// explicit seam instead of patched globals.
type Interceptor func(name string, next Handler) Handler

// Dispatcher routes events to registered handlers, one at a time.
type Dispatcher struct {
	mu        sync.Mutex
	handlers  map[string]Handler
	intercept Interceptor
	log       zerolog.Logger
}

// New builds a dispatcher. intercept may be nil.
func New(intercept Interceptor) *Dispatcher {
	return &Dispatcher{
		handlers:  make(map[string]Handler),
		intercept: intercept,
		log:       log.With().Str("component", "dispatch").Logger(),
	}
}

// Register binds a handler to an event name. One handler per name.
func (d *Dispatcher) Register(name string, h Handler) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidEvent)
	}
	if h == nil {
		return fmt.Errorf("%w: nil handler for %q", ErrInvalidEvent, name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.handlers[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEvent, name)
	}
	if d.intercept != nil {
		h = d.intercept(name, h)
	}
	d.handlers[name] = h
	return nil
}

// Events returns the registered event names.
func (d *Dispatcher) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		out = append(out, name)
	}
	return out
}

// Dispatch delivers one event. The dispatcher mutex serializes
// deliveries so charm operations never run concurrently.
func (d *Dispatcher) Dispatch(ev Event) (charm.Outcome, error) {
	if err := ev.Validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(ev.ID) == "" {
		ev.ID = ident.Nonce()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	handler, ok := d.handlers[ev.Name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEvent, ev.Name)
	}

	start := time.Now()
	outcome := handler(ev)
	d.log.Debug().
		Str("event", ev.Name).
		Str("event_id", ev.ID).
		Str("outcome", string(outcome)).
		Dur("elapsed", time.Since(start)).
		Msg("dispatched")
	return outcome, nil
}
