package charm

import (
	"maps"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/charmctl/internal/statestore"
)

// Storage schema owned by the record. Field names are stable across
// restarts; the storage mechanism behind the Store is not ours.
const (
	keyState         = "state"
	keyStale         = "stale"
	keyStatusMessage = "status_message"
	keyUpdatedAt     = "updated_at"
	keyUpdatedReason = "updated_reason"
	keySyncs         = "syncs"
)

// Provenance records the last mutation of the service record: when it
// happened and which operation stamped it.
type Provenance struct {
	At     string `json:"at"`
	Reason string `json:"reason"`
}

// Record is the durable per-service state. All reads and writes go
// through the backing Store so mutations survive process restarts.
// Store write failures are logged and the in-flight mutation proceeds
// against the store's in-memory view; the single-threaded event model
// retries naturally on the next delivery.
type Record struct {
	store statestore.Store
}

// NewRecord binds a record to its store and installs defaults for any
// unset field: state=idle, stale=true, empty sync map.
func NewRecord(store statestore.Store) *Record {
	r := &Record{store: store}
	r.setDefault(keyState, string(StateIdle))
	r.setDefault(keyStale, true)
	r.setDefault(keySyncs, map[string]bool{})
	return r
}

func (r *Record) State() State {
	if v, ok := r.store.Get(keyState); ok {
		if s, ok := asString(v); ok && State(s).Valid() {
			return State(s)
		}
	}
	return StateIdle
}

func (r *Record) SetState(s State) {
	r.set(keyState, string(s))
}

func (r *Record) Stale() bool {
	if v, ok := r.store.Get(keyStale); ok {
		if b, ok := asBool(v); ok {
			return b
		}
	}
	return true
}

func (r *Record) SetStale(stale bool) {
	r.set(keyStale, stale)
}

func (r *Record) StatusMessage() (string, bool) {
	v, ok := r.store.Get(keyStatusMessage)
	if !ok {
		return "", false
	}
	s, ok := asString(v)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func (r *Record) SetStatusMessage(msg string) {
	r.set(keyStatusMessage, msg)
}

func (r *Record) ClearStatusMessage() {
	r.set(keyStatusMessage, "")
}

func (r *Record) Updated() (Provenance, bool) {
	at, okAt := r.store.Get(keyUpdatedAt)
	reason, okReason := r.store.Get(keyUpdatedReason)
	if !okAt || !okReason {
		return Provenance{}, false
	}
	atStr, ok1 := asString(at)
	reasonStr, ok2 := asString(reason)
	if !ok1 || !ok2 {
		return Provenance{}, false
	}
	return Provenance{At: atStr, Reason: reasonStr}, true
}

func (r *Record) SetUpdated(p Provenance) {
	r.set(keyUpdatedAt, p.At)
	r.set(keyUpdatedReason, p.Reason)
}

// Syncs returns a snapshot copy of the sync map.
func (r *Record) Syncs() map[string]bool {
	if v, ok := r.store.Get(keySyncs); ok {
		if m, ok := asBoolMap(v); ok {
			return m
		}
	}
	return map[string]bool{}
}

// SyncValue returns the stored value for key and whether it exists.
func (r *Record) SyncValue(key string) (bool, bool) {
	syncs := r.Syncs()
	v, ok := syncs[key]
	return v, ok
}

func (r *Record) SetSyncValue(key string, status bool) {
	syncs := r.Syncs()
	syncs[key] = status
	r.set(keySyncs, syncs)
}

func (r *Record) set(key string, value any) {
	if err := r.store.Set(key, value); err != nil {
		log.Error().Str("key", key).Err(err).Msg("charm record write failed")
	}
}

func (r *Record) setDefault(key string, value any) {
	if err := r.store.SetDefault(key, value); err != nil {
		log.Error().Str("key", key).Err(err).Msg("charm record default failed")
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// asBoolMap accepts both the native map and the map[string]any form a
// file store produces after a reload.
func asBoolMap(v any) (map[string]bool, bool) {
	switch m := v.(type) {
	case map[string]bool:
		return maps.Clone(m), true
	case map[string]any:
		out := make(map[string]bool, len(m))
		for k, item := range m {
			b, ok := item.(bool)
			if !ok {
				return nil, false
			}
			out[k] = b
		}
		return out, true
	default:
		return nil, false
	}
}
