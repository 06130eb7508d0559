package machine

import (
	"errors"

	"github.com/bad-mango-solutions/pocket2e/devices"
	"github.com/bad-mango-solutions/pocket2e/hardware/cpu"
	"github.com/bad-mango-solutions/pocket2e/iopage"
	"github.com/bad-mango-solutions/pocket2e/membus"
	"github.com/bad-mango-solutions/pocket2e/scheduler"
)

// State is the machine's run state, driven by the debug control surface
// (spec.md §6.3/§5).
type State int

const (
	// Stopped is the state immediately after Build or Reset: the CPU holds
	// its post-reset register values but has not executed anything yet.
	Stopped State = iota
	// Running means Run is actively stepping the CPU.
	Running
	// Paused means execution stopped between instructions without a fault;
	// Step and Run may resume it.
	Paused
	// Halted means a fault (or an explicit halt request) stopped the
	// machine; only Reset clears it.
	Halted
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	case Halted:
		return "Halted"
	default:
		return "Stopped"
	}
}

// ErrHalted is returned by Step/Run when the machine is in the Halted
// state; only Reset clears it.
var ErrHalted = errors.New("machine: halted, reset required")

// RegisterSnapshot is an immutable value copy of the CPU's register file,
// safe to hand to a debug console or UI thread (spec.md §5, "shared
// resources").
type RegisterSnapshot struct {
	PC     uint16
	A, X, Y, SP uint8
	Status string
	Cycles uint64
}

// Machine is a fully built, runnable Apple IIe-class core: the bus, CPU,
// scheduler, I/O dispatcher, and every configured device. Construct one via
// Builder.Build; the zero value is not usable.
type Machine struct {
	Bus        *membus.Bus
	CPU        *cpu.CPU
	Scheduler  *scheduler.Scheduler
	Dispatcher *iopage.Dispatcher
	Registry   *devices.Registry

	devices  []devices.Device
	profile  *Profile
	warnings []string

	state  State
	cycles uint64
}

// State returns the machine's current run state.
func (m *Machine) State() State { return m.state }

// Warnings returns non-fatal build-time warnings (e.g. a ROM that fell back
// to a zero-filled buffer after a hash mismatch).
func (m *Machine) Warnings() []string { return m.warnings }

// Cycles returns the total CPU cycles executed since the last Reset.
func (m *Machine) Cycles() uint64 { return m.cycles }

// Step executes exactly one instruction, drains the scheduler up to the
// resulting cycle count, and ticks every Ticker device. Returns ErrHalted
// without doing anything if the machine is already Halted.
func (m *Machine) Step() error {
	if m.state == Halted {
		return ErrHalted
	}
	if err := m.CPU.Step(); err != nil {
		return err
	}
	m.cycles += uint64(m.CPU.LastResult.Cycles)
	m.Scheduler.AdvanceTo(m.cycles)
	for _, d := range m.devices {
		if t, ok := d.(devices.Ticker); ok {
			t.Tick(m.cycles)
		}
	}
	if m.Bus.Halted() {
		m.state = Halted
	}
	return nil
}

// Run steps the machine up to maxInstructions times, stopping early if the
// machine halts, an instruction errors, or Pause is called (from the same
// goroutine, between Step calls — the core has no internal concurrency, so
// Pause only takes effect at the next Step boundary). Returns the number of
// instructions actually executed.
func (m *Machine) Run(maxInstructions int) (int, error) {
	if m.state == Halted {
		return 0, ErrHalted
	}
	m.state = Running
	n := 0
	for n < maxInstructions && m.state == Running {
		if err := m.Step(); err != nil {
			return n, err
		}
		n++
	}
	if m.state == Running {
		m.state = Paused
	}
	return n, nil
}

// Pause requests that a Run loop stop at its next instruction boundary.
func (m *Machine) Pause() {
	if m.state == Running {
		m.state = Paused
	}
}

// Resume clears a Paused state so a later Run call proceeds. A no-op when
// Halted; Reset is required to leave that state.
func (m *Machine) Resume() {
	if m.state == Paused || m.state == Stopped {
		m.state = Running
	}
}

// Reset forces cpu.Reset() and Reset() on every device, restoring the
// initial soft-switch configuration, then returns the machine to Stopped —
// including from Halted (spec.md §8 scenario 6).
func (m *Machine) Reset() error {
	m.Bus.ClearHalted()
	for _, d := range m.devices {
		d.Reset()
	}
	if err := m.CPU.Reset(); err != nil {
		return err
	}
	m.cycles = 0
	m.state = Stopped
	return nil
}

// Registers returns a value-copy snapshot of the CPU's register file.
func (m *Machine) Registers() RegisterSnapshot {
	return RegisterSnapshot{
		PC:     m.CPU.PC.Value(),
		A:      m.CPU.A.Value(),
		X:      m.CPU.X.Value(),
		Y:      m.CPU.Y.Value(),
		SP:     m.CPU.SP.Value(),
		Status: m.CPU.Status.String(),
		Cycles: m.cycles,
	}
}

// Pages returns a side-effect-free snapshot of the entire page table.
func (m *Machine) Pages() []membus.PageSnapshot { return m.Bus.Pages() }

// Faults returns a copy of the bus's fault ring, most recent last.
func (m *Machine) Faults() []membus.FaultRecord { return m.Bus.Faults() }

// SoftSwitches aggregates the soft-switch introspection view of every
// device that implements SoftSwitchInspector, read with the side-effect-free
// flag (spec.md §8's "soft switch snapshot under debug read" property).
func (m *Machine) SoftSwitches() []devices.SoftSwitchSnapshot {
	var out []devices.SoftSwitchSnapshot
	for _, d := range m.devices {
		if insp, ok := d.(devices.SoftSwitchInspector); ok {
			out = append(out, insp.SoftSwitchState()...)
		}
	}
	return out
}

// Peek reads one byte without side effects, for the debug console's `peek`
// and register/memory inspection views.
func (m *Machine) Peek(addr uint16) (byte, error) {
	v, err := m.Bus.Read(membus.Address(addr), membus.Width8, membus.Debug(membus.Width8))
	return byte(v), err
}

// PeekRange reads n bytes starting at addr without side effects.
func (m *Machine) PeekRange(addr uint16, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := m.Peek(addr + uint16(i))
		if err != nil {
			return out, err
		}
		out[i] = b
	}
	return out, nil
}

// Poke writes one byte through the ordinary (side-effecting) write path,
// for the debug console's `poke` command. Unlike Peek this can trigger a
// soft switch or other device state change, matching real hardware: a
// debugger poke to an I/O address still toggles the switch.
func (m *Machine) Poke(addr uint16, value byte) error {
	return m.Bus.Write(membus.Address(addr), membus.Width8, uint32(value), membus.AccessContext{})
}

// Devices returns every configured device in build order (motherboard
// devices first, then installed slot cards).
func (m *Machine) Devices() []devices.Device { return m.devices }

// Profile returns the parsed profile the machine was built from.
func (m *Machine) Profile() *Profile { return m.profile }
