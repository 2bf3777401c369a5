package charm

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/charmctl/internal/ident"
	"github.com/danmuck/charmctl/internal/statestore"
)

// ServiceCharm drives the lifecycle of one managed service. All state
// transitions flow through SetState; every mutation stamps the updated
// marker and reprojects status. Operations assume the hosting runtime
// delivers one event at a time and take no locks of their own.
type ServiceCharm struct {
	unit   string
	hooks  Hooks
	record *Record
	sink   StatusSink
	log    zerolog.Logger

	requiredSyncs []string
	syncHandlers  map[string]SyncHandler
}

// New builds a charm over its durable store and status sink, applying
// record defaults and stamping "init" provenance. hooks may be nil for
// a pure state-machine charm (NopHooks is substituted).
func New(unit string, hooks Hooks, store statestore.Store, sink StatusSink) *ServiceCharm {
	if hooks == nil {
		hooks = NopHooks{}
	}
	if sink == nil {
		sink = nopSink{}
	}
	c := &ServiceCharm{
		unit:         unit,
		hooks:        hooks,
		record:       NewRecord(store),
		sink:         sink,
		log:          log.With().Str("unit", unit).Logger(),
		syncHandlers: make(map[string]SyncHandler),
	}
	c.SetUpdated("init")
	return c
}

// Unit returns the unit name this charm manages.
func (c *ServiceCharm) Unit() string { return c.unit }

// State returns the current lifecycle state.
func (c *ServiceCharm) State() State { return c.record.State() }

// Stale reports whether configuration changed since the last
// successful sync.
func (c *ServiceCharm) Stale() bool { return c.record.Stale() }

// Updated returns the last mutation provenance.
func (c *ServiceCharm) Updated() (Provenance, bool) { return c.record.Updated() }

// IsRunning reports whether the service counts as started.
func (c *ServiceCharm) IsRunning() bool { return c.record.State().Running() }

// Install runs the install hook. The updated marker and projected
// status are refreshed even when the hook fails.
func (c *ServiceCharm) Install(ctx *Context) Outcome {
	defer c.scope("service_install")()
	defer c.forcedUpdate("install")()

	if err := c.runHook("install", func() error { return c.hooks.Install(ctx) }); err != nil {
		c.log.Warn().Err(err).Msg("install hook failed")
		return OutcomeFailed
	}
	return OutcomeApplied
}

// Enable moves idle to enabled through the enable hook.
func (c *ServiceCharm) Enable(ctx *Context, force bool) Outcome {
	defer c.scope("service_enable")()
	defer c.forcedUpdate("enable")()

	if c.record.State() != StateIdle {
		return OutcomeRefused
	}
	if err := c.runHook("enable", func() error { return c.hooks.Enable(ctx, force) }); err != nil {
		c.log.Warn().Err(err).Msg("enable hook failed")
		return OutcomeFailed
	}
	c.SetState(StateEnabled)
	c.SetUpdated("enable")
	return OutcomeApplied
}

// Disable moves enabled back to idle through the disable hook.
func (c *ServiceCharm) Disable(ctx *Context, force bool) Outcome {
	defer c.scope("service_disable")()
	defer c.forcedUpdate("disable")()

	if c.record.State() != StateEnabled {
		return OutcomeRefused
	}
	if err := c.runHook("disable", func() error { return c.hooks.Disable(ctx, force) }); err != nil {
		c.log.Warn().Err(err).Msg("disable hook failed")
		return OutcomeFailed
	}
	c.SetState(StateIdle)
	c.SetUpdated("disable")
	return OutcomeApplied
}

// Start synchronizes dependencies, runs the start hook, and commits
// the started state (possibly derived down to waiting/broken when
// required syncs are unsatisfied). Sync hook failures are absorbed by
// SyncNow and do not abort the start.
func (c *ServiceCharm) Start(ctx *Context) Outcome {
	defer c.scope("service_start")()

	if !c.record.State().Startable() {
		return OutcomeRefused
	}

	out := OutcomeApplied
	c.SyncNow(ctx, false)
	if err := c.runHook("start", func() error { return c.hooks.Start(ctx) }); err != nil {
		c.log.Warn().Err(err).Msg("start hook failed")
		out = OutcomeFailed
	} else {
		c.SetState(StateStarted)
		c.SetUpdated("start")
	}
	c.UpdateStatus()
	return out
}

// Stop runs the stop hook and drops a running service back to enabled.
func (c *ServiceCharm) Stop(ctx *Context, force bool) Outcome {
	defer c.scope("service_stop")()

	if !c.record.State().Running() {
		return OutcomeRefused
	}

	out := OutcomeApplied
	if err := c.runHook("stop", func() error { return c.hooks.Stop(ctx, force) }); err != nil {
		c.log.Warn().Err(err).Msg("stop hook failed")
		out = OutcomeFailed
	} else {
		c.SetState(StateEnabled)
		c.SetUpdated("stop")
	}
	c.UpdateStatus()
	return out
}

// Restart composes Stop then Start; it has no hook of its own. When
// sync is set, a forced sync runs between the two so a restart can
// reapply configuration even from a state the plain sync gate refuses.
func (c *ServiceCharm) Restart(ctx *Context, force, sync bool) Outcome {
	defer c.scope("service_restart")()

	c.Stop(ctx, force)
	if sync {
		c.SyncNow(ctx, true)
	}
	return c.Start(ctx)
}

// SyncNow runs the sync hook when the current state allows it (or
// force is set). A refused sync marks configuration stale instead; a
// failed sync hook leaves the stale flag untouched, since staleness
// tracks pending config changes, not sync success.
func (c *ServiceCharm) SyncNow(ctx *Context, force bool) Outcome {
	defer c.scope("service_sync")()

	out := OutcomeApplied
	if !c.record.State().Syncable() && !force {
		c.SetStale(true)
		c.SetUpdated("sync")
		out = OutcomeRefused
	} else if err := c.runHook("sync", func() error { return c.hooks.Sync(ctx, force) }); err != nil {
		c.log.Warn().Err(err).Msg("sync hook failed")
		out = OutcomeFailed
	} else {
		c.SetStale(false)
		c.SetUpdated("sync")
	}
	c.UpdateStatus()
	return out
}

// ConfigChanged runs the config hook under a forced update.
func (c *ServiceCharm) ConfigChanged(ctx *Context) Outcome {
	defer c.scope("service_config_changed")()
	defer c.forcedUpdate("config-changed")()

	if err := c.runHook("config-changed", func() error { return c.hooks.ConfigChanged(ctx) }); err != nil {
		c.log.Warn().Err(err).Msg("config-changed hook failed")
		return OutcomeFailed
	}
	return OutcomeApplied
}

// SetState is the single transition gate. Requests for waiting or
// broken normalize to started, then an unsynced started derives down:
// broken when the current state is already started/broken (persistent
// failure), waiting on a first pending dependency. The resolved state
// is returned; a no-op leaves the record untouched.
func (c *ServiceCharm) SetState(target State) State {
	current := c.record.State()
	synced := c.IsSynced()

	if target == StateBroken || target == StateWaiting {
		target = StateStarted
	}
	if target == StateStarted && !synced {
		if current == StateBroken || current == StateStarted {
			target = StateBroken
		} else {
			target = StateWaiting
		}
	}

	if current != target {
		c.record.SetState(target)
		c.SetUpdated("state")
		c.UpdateStatus()
	}
	return target
}

// SetStale commits a changed stale flag with provenance and reprojects.
func (c *ServiceCharm) SetStale(stale bool) {
	if c.record.Stale() == stale {
		return
	}
	c.record.SetStale(stale)
	c.SetUpdated("stale")
	c.UpdateStatus()
}

// SetStatusMessage sets the operator annotation shown in the projected
// status message.
func (c *ServiceCharm) SetStatusMessage(msg string) {
	c.record.SetStatusMessage(msg)
}

// ClearStatusMessage removes the annotation.
func (c *ServiceCharm) ClearStatusMessage() {
	c.record.ClearStatusMessage()
}

// SetUpdated stamps the updated marker with a fresh timestamp and the
// given reason tag.
func (c *ServiceCharm) SetUpdated(reason string) {
	c.record.SetUpdated(Provenance{At: ident.Timestamp(), Reason: reason})
}

// runHook invokes fn, converting a panic into an error so a
// misbehaving hook cannot crash event processing.
func (c *ServiceCharm) runHook(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("charm: %s hook panic: %v", name, r)
		}
	}()
	return fn()
}

type nopSink struct{}

func (nopSink) SetStatus(Status) {}
