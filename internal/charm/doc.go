// Package charm implements the service lifecycle core for operator
// charms: a five-state service state machine, a dependency sync
// tracker that gates readiness, and a status projector that derives
// the externally visible unit status after every mutation.
//
// A charm owns one durable Record (state, stale flag, sync map,
// provenance stamp) persisted through a statestore.Store, and drives
// an implementation of Hooks supplied by the concrete service. Hook
// and sync-handler failures are trapped and logged; they never escape
// a public lifecycle operation, so a misbehaving service cannot stall
// event processing for subsequent events.
package charm
