package charm

// State is the lifecycle phase of a managed service.
type State string

const (
	StateIdle    State = "idle"
	StateEnabled State = "enabled"
	StateStarted State = "started"
	StateWaiting State = "waiting"
	StateBroken  State = "broken"
)

// Valid reports whether s is a known lifecycle state.
func (s State) Valid() bool {
	switch s {
	case StateIdle, StateEnabled, StateStarted, StateWaiting, StateBroken:
		return true
	default:
		return false
	}
}

// Startable reports whether a start operation may fire from s.
func (s State) Startable() bool {
	switch s {
	case StateIdle, StateEnabled, StateWaiting, StateBroken:
		return true
	default:
		return false
	}
}

// Running reports whether the service counts as started; waiting and
// broken are degraded sub-states of started and remain stoppable.
func (s State) Running() bool {
	switch s {
	case StateStarted, StateWaiting, StateBroken:
		return true
	default:
		return false
	}
}

// Syncable reports whether the sync hook may run from s without the
// force flag. Syncing before enable has nothing to apply to, so idle
// is excluded and a sync request from there only marks config stale.
func (s State) Syncable() bool {
	switch s {
	case StateEnabled, StateWaiting, StateBroken:
		return true
	default:
		return false
	}
}

// StatusKind is the externally visible status category.
type StatusKind string

const (
	StatusBlocked     StatusKind = "blocked"
	StatusMaintenance StatusKind = "maintenance"
	StatusWaiting     StatusKind = "waiting"
	StatusActive      StatusKind = "active"
)

// Status is the (category, message) pair emitted to the status sink.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
}

// StatusSink receives the projected status after every mutation.
type StatusSink interface {
	SetStatus(status Status)
}
