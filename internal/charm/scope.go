package charm

import (
	"time"
)

// scope logs entry of an operation and returns a closure that logs
// exit with elapsed time. Use as: defer c.scope("service_start")().
func (c *ServiceCharm) scope(op string) func() {
	start := time.Now()
	c.log.Trace().Str("op", op).Msg("enter")
	return func() {
		c.log.Trace().Str("op", op).Dur("elapsed", time.Since(start)).Msg("exit")
	}
}

// forcedUpdate returns a closure that stamps the updated marker with
// reason and recomputes the projected status. Deferred by operations
// that must refresh status unconditionally, even when their hook
// fails: defer c.forcedUpdate("install")().
func (c *ServiceCharm) forcedUpdate(reason string) func() {
	return func() {
		c.SetUpdated(reason)
		c.UpdateStatus()
	}
}
