package dispatch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidEvent = errors.New("dispatch: invalid event")

// Lifecycle events delivered by the hosting platform.
const (
	EventInstall       = "install"
	EventStart         = "start"
	EventStop          = "stop"
	EventConfigChanged = "config-changed"
	EventUpdateStatus  = "update-status"
)

// Action events invoked by an operator.
const (
	ActionRestart          = "service-restart"
	ActionStart            = "service-start"
	ActionStop             = "service-stop"
	ActionSync             = "service-sync"
	ActionSetSync          = "service-set-sync"
	ActionSetRequiredSyncs = "service-set-required-syncs"
)

// Event is one delivered lifecycle/action notification. The dispatcher
// fills ID with a correlation token when the sender left it empty.
type Event struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
}

// Validate enforces required event fields.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidEvent)
	}
	return nil
}

// Param returns a named parameter or "".
func (e Event) Param(key string) string {
	if e.Params == nil {
		return ""
	}
	return e.Params[key]
}

// BoolParam parses a boolean parameter, defaulting to false on absent
// or malformed values (event parameters are operator input, not a
// typed schema).
func (e Event) BoolParam(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(e.Param(key)))
	if err != nil {
		return false
	}
	return v
}

// ListParam splits a comma-separated parameter into trimmed items.
func (e Event) ListParam(key string) []string {
	raw := strings.TrimSpace(e.Param(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if item := strings.TrimSpace(p); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Delivery records one completed dispatch for diagnostics.
type Delivery struct {
	EventID   string    `json:"event_id"`
	Event     string    `json:"event"`
	Outcome   string    `json:"outcome"`
	Elapsed   string    `json:"elapsed"`
	Delivered time.Time `json:"delivered"`
}
