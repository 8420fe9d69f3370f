package sim

// A HookPos names a site where hooks are invoked.
type HookPos struct {
	Name string
}

// String returns the name of the position.
func (p *HookPos) String() string {
	return p.Name
}

// HookPosBeforeEvent is invoked by the engine before it handles an event.
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is invoked by the engine after it handles an event.
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

// HookCtx describes the site that invokes a hook. Item is the object the
// position is about, such as the event or the task.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// A Hook observes a Hookable.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc turns a function into a Hook.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// Hookable is anything that hooks can be attached to.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
}

// HookableBase keeps a list of hooks and invokes them in the order they are
// attached.
type HookableBase struct {
	hooks []Hook
}

// NewHookableBase creates a HookableBase without hooks.
func NewHookableBase() *HookableBase {
	return &HookableBase{}
}

// AcceptHook attaches a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// NumHooks returns the number of attached hooks. Sites that build expensive
// contexts check it first.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// InvokeHook calls every attached hook with ctx.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}

// HookList returns the attached hooks.
func (h *HookableBase) HookList() []Hook {
	return h.hooks
}
