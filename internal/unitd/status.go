package unitd

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/charmctl/internal/charm"
	"github.com/danmuck/charmctl/internal/observability"
)

// StatusRecorder is the daemon's status sink: it keeps the latest
// projected status for the HTTP/admin surfaces, logs category
// transitions, and mirrors the category into the status gauge.
type StatusRecorder struct {
	mu      sync.RWMutex
	unit    string
	current charm.Status
	log     zerolog.Logger
}

func NewStatusRecorder(unit string) *StatusRecorder {
	return &StatusRecorder{
		unit: unit,
		log:  log.With().Str("unit", unit).Logger(),
	}
}

func (r *StatusRecorder) SetStatus(status charm.Status) {
	r.mu.Lock()
	previous := r.current
	r.current = status
	r.mu.Unlock()

	if previous.Kind != status.Kind {
		r.log.Info().
			Str("from", string(previous.Kind)).
			Str("to", string(status.Kind)).
			Msg("unit status changed")
	}
	observability.RecordStatusKind(r.unit, string(status.Kind))
}

// Current returns the latest projected status.
func (r *StatusRecorder) Current() charm.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

var _ charm.StatusSink = (*StatusRecorder)(nil)
