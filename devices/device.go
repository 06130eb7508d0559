// Package devices defines the Device interface implemented by every
// motherboard component and slot card, plus the soft-switch devices that
// ship with the core: Language Card, Auxiliary Memory Controller, Character
// Device, Slot Manager, Keyboard, Speaker, and Game I/O.
package devices

import (
	"github.com/bad-mango-solutions/pocket2e/iopage"
	"github.com/bad-mango-solutions/pocket2e/membus"
)

// Kind classifies where a device lives in the machine.
type Kind int

const (
	Motherboard Kind = iota
	Card
)

func (k Kind) String() string {
	if k == Card {
		return "SlotCard"
	}
	return "Motherboard"
}

// BuildContext is passed to ConfigureMemory during the machine builder's
// memory-configuration step. A device installs its own layers, swap groups,
// and soft-switch handlers through it; it must not retain the context past
// ConfigureMemory returning.
type BuildContext struct {
	Bus        *membus.Bus
	Layers     *membus.LayerManager
	Groups     *membus.SwapGroupManager
	Dispatcher *iopage.Dispatcher
	Slot       int // valid only for SlotCard devices; 0 for motherboard
}

// InitContext is passed to Initialize, which runs only after every device
// has had a chance to configure memory (build order step 9 onward).
type InitContext struct {
	Bus *membus.Bus
}

// SoftSwitchSnapshot is one row of a device's soft-switch introspection
// view: a named, addressed control bit and its current state.
type SoftSwitchSnapshot struct {
	Name        string
	Address     membus.Address
	Active      bool
	Description string
}

// Device is the interface every motherboard component and slot card
// implements.
type Device interface {
	ID() int
	TypeID() string
	DisplayName() string
	Kind() Kind
	// ConfigureMemory installs the device's layers, swap groups, and
	// soft-switch handlers. Called once, during build order step 5
	// (motherboard) or step 7 (slot cards).
	ConfigureMemory(ctx *BuildContext) error
	// Initialize runs after every device has configured memory and the
	// base mapping has been saved (build order step 9 onward).
	Initialize(ctx *InitContext) error
	// Reset restores the device's power-on state, including its
	// soft-switch configuration.
	Reset()
}

// Ticker is implemented by devices that need to observe every CPU cycle
// rather than (or in addition to) scheduled events.
type Ticker interface {
	Tick(cycles uint64)
}

// SoftSwitchInspector is implemented by devices that expose an
// introspection view of their soft switches for the debug console.
type SoftSwitchInspector interface {
	SoftSwitchState() []SoftSwitchSnapshot
}
