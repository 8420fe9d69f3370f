package sim

import "sync"

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A NamedHookable is an object that has a name and accepts hooks.
type NamedHookable interface {
	Named
	Hookable
}

// A Component is a simulated element, either a network interface or a
// router. Components are woken up by the links connected to them rather than
// by messages arriving at ports.
type Component interface {
	Named
	Handler
	Hookable
}

// ComponentBase holds what every component shares: a validated name, the
// hooks and a lock that monitors take before reading the component state.
type ComponentBase struct {
	HookableBase
	sync.Mutex

	name string
}

// NewComponentBase creates a ComponentBase. It panics if the name does not
// follow the naming rules.
func NewComponentBase(name string) *ComponentBase {
	NameMustBeValid(name)

	return &ComponentBase{name: name}
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}
