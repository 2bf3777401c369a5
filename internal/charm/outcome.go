package charm

// Outcome reports how a public lifecycle operation resolved. Hook
// failures surface as OutcomeFailed rather than as returned errors so
// that event processing keeps running; the failure detail goes to the
// log and the projected status.
type Outcome string

const (
	// OutcomeApplied means the operation ran and committed its effect.
	OutcomeApplied Outcome = "applied"
	// OutcomeRefused means preconditions (state gating, unchanged
	// value) made the operation a no-op.
	OutcomeRefused Outcome = "refused"
	// OutcomeFailed means a hook or handler failed; state keeps its
	// pre-operation value except for sub-steps that already committed.
	OutcomeFailed Outcome = "failed"
)
