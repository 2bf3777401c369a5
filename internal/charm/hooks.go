package charm

// Context carries the identity of the delivering event into hook code.
type Context struct {
	// Event is the lifecycle or action event name that triggered the
	// running operation, e.g. "install" or "service-restart".
	Event string
	// Params holds event parameters as delivered by the dispatcher.
	Params map[string]string
	// Token is the opaque correlation token minted for this delivery.
	Token string
}

// Param returns a parameter value, or "" when absent.
func (c *Context) Param(key string) string {
	if c == nil || c.Params == nil {
		return ""
	}
	return c.Params[key]
}

// Hooks is the overridable work surface a concrete service supplies.
// The state machine treats each hook as an opaque synchronous call: a
// returned error (or panic) marks the operation failed, is logged, and
// never propagates past the public operation.
type Hooks interface {
	Install(ctx *Context) error
	Enable(ctx *Context, force bool) error
	Disable(ctx *Context, force bool) error
	Start(ctx *Context) error
	Stop(ctx *Context, force bool) error
	Sync(ctx *Context, force bool) error
	ConfigChanged(ctx *Context) error
}

// NopHooks implements Hooks with no-ops. Concrete services embed it
// and override only the operations they care about.
type NopHooks struct{}

func (NopHooks) Install(*Context) error       { return nil }
func (NopHooks) Enable(*Context, bool) error  { return nil }
func (NopHooks) Disable(*Context, bool) error { return nil }
func (NopHooks) Start(*Context) error         { return nil }
func (NopHooks) Stop(*Context, bool) error    { return nil }
func (NopHooks) Sync(*Context, bool) error    { return nil }
func (NopHooks) ConfigChanged(*Context) error { return nil }

var _ Hooks = NopHooks{}
