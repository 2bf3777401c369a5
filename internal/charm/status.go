package charm

import (
	"fmt"
	"sort"
	"strings"
)

// statusKindFor maps lifecycle state to the visible status category.
// Unknown states fall back to maintenance.
func statusKindFor(s State) StatusKind {
	switch s {
	case StateBroken:
		return StatusBlocked
	case StateIdle, StateEnabled:
		return StatusMaintenance
	case StateWaiting:
		return StatusWaiting
	case StateStarted:
		return StatusActive
	default:
		return StatusMaintenance
	}
}

// ProjectStatus computes the status for a charm snapshot. It is pure
// and recomputes from current data on every call; nothing is cached.
func ProjectStatus(updated Provenance, annotation string, stale bool, state State, syncs map[string]bool) Status {
	satisfied := 0
	for _, v := range syncs {
		if v {
			satisfied++
		}
	}

	note := ""
	if annotation != "" {
		note = fmt.Sprintf(" (%s)", annotation)
	}

	msg := fmt.Sprintf(
		"updated (%s, %s)%s stale (%v) state (%s) synced (%d/%d) syncs (%s)",
		updated.At,
		updated.Reason,
		note,
		stale,
		state,
		satisfied,
		len(syncs),
		renderSyncs(syncs),
	)

	return Status{Kind: statusKindFor(state), Message: msg}
}

// UpdateStatus projects the current record into the status sink. It
// must never fail: a panicking sink is trapped and logged so status
// rendering cannot block event processing.
func (c *ServiceCharm) UpdateStatus() {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("status sink panic")
		}
	}()

	updated, _ := c.record.Updated()
	annotation, _ := c.record.StatusMessage()
	status := ProjectStatus(updated, annotation, c.record.Stale(), c.record.State(), c.record.Syncs())
	c.sink.SetStatus(status)
}

// Status returns the current projection without emitting it.
func (c *ServiceCharm) Status() Status {
	updated, _ := c.record.Updated()
	annotation, _ := c.record.StatusMessage()
	return ProjectStatus(updated, annotation, c.record.Stale(), c.record.State(), c.record.Syncs())
}

// renderSyncs formats the sync map deterministically, sorted by key.
func renderSyncs(syncs map[string]bool) string {
	keys := make([]string, 0, len(syncs))
	for k := range syncs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, syncs[k]))
	}
	return strings.Join(parts, " ")
}
