package dispatch

import (
	"fmt"

	"github.com/danmuck/charmctl/internal/charm"
)

// contextFor builds the hook context for one delivery.
func contextFor(ev Event) *charm.Context {
	return &charm.Context{Event: ev.Name, Params: ev.Params, Token: ev.ID}
}

// BindServiceEvents registers the standard lifecycle and action events
// for a service charm. The platform start/stop events are composites:
// start enables then starts, stop stops then disables and refreshes
// status, matching the unit lifecycle contract.
func BindServiceEvents(d *Dispatcher, c *charm.ServiceCharm) error {
	bindings := map[string]Handler{
		EventInstall: func(ev Event) charm.Outcome {
			return c.Install(contextFor(ev))
		},
		EventStart: func(ev Event) charm.Outcome {
			c.Enable(contextFor(ev), false)
			return c.Start(contextFor(ev))
		},
		EventStop: func(ev Event) charm.Outcome {
			out := c.Stop(contextFor(ev), false)
			c.Disable(contextFor(ev), false)
			c.UpdateStatus()
			return out
		},
		EventConfigChanged: func(ev Event) charm.Outcome {
			return c.ConfigChanged(contextFor(ev))
		},
		EventUpdateStatus: func(ev Event) charm.Outcome {
			c.UpdateStatus()
			return charm.OutcomeApplied
		},
		ActionRestart: func(ev Event) charm.Outcome {
			defer func() {
				c.SetUpdated("restart-action")
				c.UpdateStatus()
			}()
			return c.Restart(contextFor(ev), ev.BoolParam("force"), ev.BoolParam("sync"))
		},
		ActionStart: func(ev Event) charm.Outcome {
			return c.Start(contextFor(ev))
		},
		ActionStop: func(ev Event) charm.Outcome {
			return c.Stop(contextFor(ev), ev.BoolParam("force"))
		},
		ActionSync: func(ev Event) charm.Outcome {
			defer func() {
				c.SetUpdated("sync-action")
				c.UpdateStatus()
			}()
			return c.SyncNow(contextFor(ev), ev.BoolParam("force"))
		},
		ActionSetSync: func(ev Event) charm.Outcome {
			key := ev.Param("key")
			if key == "" {
				return charm.OutcomeRefused
			}
			out := c.SetSync(key, ev.BoolParam("status"))
			c.UpdateStatus()
			return out
		},
		ActionSetRequiredSyncs: func(ev Event) charm.Outcome {
			c.SetRequiredSyncs(ev.ListParam("keys"))
			c.UpdateStatus()
			return charm.OutcomeApplied
		},
	}

	for name, h := range bindings {
		if err := d.Register(name, h); err != nil {
			return err
		}
	}
	return nil
}

// BindNodeEvents registers relation joined/changed/departed events for
// each of the node's relations on top of the service bindings.
func BindNodeEvents(d *Dispatcher, n *charm.NodeCharm) error {
	if err := BindServiceEvents(d, n.ServiceCharm); err != nil {
		return err
	}
	for _, rel := range n.Relations() {
		joined := func(ev Event) charm.Outcome { return n.RelationJoined(rel) }
		changed := func(ev Event) charm.Outcome { return n.RelationChanged(rel) }
		departed := func(ev Event) charm.Outcome { return n.RelationDeparted(rel) }

		if err := d.Register(fmt.Sprintf("%s-relation-joined", rel), joined); err != nil {
			return err
		}
		if err := d.Register(fmt.Sprintf("%s-relation-changed", rel), changed); err != nil {
			return err
		}
		if err := d.Register(fmt.Sprintf("%s-relation-departed", rel), departed); err != nil {
			return err
		}
	}
	return nil
}
