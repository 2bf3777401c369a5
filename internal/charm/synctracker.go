package charm

import (
	"fmt"
)

// SyncHandler is invoked synchronously when a sync key changes value
// (or is retriggered). A returned error or panic is logged and
// swallowed; it never blocks the mutation that fired it.
type SyncHandler func(key string, status bool) error

// InitSync registers key with an initial status, only writing the
// value when the key does not exist yet. The handler binding is always
// replaced, so reconstruction after restart rebinds callbacks without
// clobbering persisted satisfaction.
func (c *ServiceCharm) InitSync(key string, status bool, handler SyncHandler) {
	defer c.scope("service_init_sync")()

	if _, known := c.record.SyncValue(key); !known {
		c.applySync(key, status, false)
	}
	c.syncHandlers[key] = handler
}

// SetSync sets the satisfaction value for key. Unchanged values are a
// no-op; a change invokes the key's handler, re-derives service state,
// stamps provenance, and reprojects status.
func (c *ServiceCharm) SetSync(key string, status bool) Outcome {
	defer c.scope("service_set_sync")()
	return c.applySync(key, status, false)
}

// RetriggerSync re-fires the handler and downstream recompute for key
// using its current stored value. Used to re-run dependent logic
// without changing satisfaction.
func (c *ServiceCharm) RetriggerSync(key string) Outcome {
	defer c.scope("service_retrigger_sync")()
	current, _ := c.record.SyncValue(key)
	return c.applySync(key, current, true)
}

// Sync returns the stored satisfaction for key; unknown keys read
// false.
func (c *ServiceCharm) Sync(key string) bool {
	v, _ := c.record.SyncValue(key)
	return v
}

// Syncs returns a snapshot copy of the full sync map.
func (c *ServiceCharm) Syncs() map[string]bool {
	return c.record.Syncs()
}

// IsSynced reports whether every required sync key is satisfied. An
// empty required list is vacuously synced.
func (c *ServiceCharm) IsSynced() bool {
	for _, key := range c.requiredSyncs {
		if !c.Sync(key) {
			return false
		}
	}
	return true
}

// SetRequiredSyncs replaces the required-key list with a defensive
// copy.
func (c *ServiceCharm) SetRequiredSyncs(keys []string) {
	c.requiredSyncs = make([]string, len(keys))
	copy(c.requiredSyncs, keys)
}

// RequiredSyncs returns a copy of the required-key list.
func (c *ServiceCharm) RequiredSyncs() []string {
	out := make([]string, len(c.requiredSyncs))
	copy(out, c.requiredSyncs)
	return out
}

func (c *ServiceCharm) applySync(key string, status, force bool) Outcome {
	current, known := c.record.SyncValue(key)
	if known && current == status && !force {
		return OutcomeRefused
	}

	c.record.SetSyncValue(key, status)
	if handler := c.syncHandlers[key]; handler != nil {
		if err := c.runSyncHandler(key, status, handler); err != nil {
			c.log.Warn().Str("sync", key).Err(err).Msg("sync handler failed")
		}
	}

	// re-derive waiting/broken/started from the new satisfaction
	c.SetState(c.record.State())

	c.SetUpdated("sync")
	c.UpdateStatus()
	return OutcomeApplied
}

func (c *ServiceCharm) runSyncHandler(key string, status bool, handler SyncHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("charm: sync handler panic for %q: %v", key, r)
		}
	}()
	return handler(key, status)
}
