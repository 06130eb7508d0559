// Package iopage implements the $C000-$C0FF soft-switch dispatcher: a
// motherboard handler block plus sixteen slot handler blocks, decoded from
// the low byte of the I/O page address.
package iopage

import "github.com/bad-mango-solutions/pocket2e/membus"

// ReadFunc services a soft-switch read at the given slot-relative offset
// (0x00-0x0F). sideEffectFree must be honoured: when true the handler must
// not mutate device state.
type ReadFunc func(offset uint8, sideEffectFree bool) byte

// WriteFunc services a soft-switch write at the given slot-relative offset.
type WriteFunc func(offset uint8, value byte)

// Handlers is a 16-entry table of (read, write) pairs for one block (the
// motherboard, or one expansion slot).
type Handlers struct {
	Read  [16]ReadFunc
	Write [16]WriteFunc
}

// Bind installs a handler pair at a single offset (0x00-0x0F).
func (h *Handlers) Bind(offset uint8, read ReadFunc, write WriteFunc) {
	offset &= 0x0F
	h.Read[offset] = read
	h.Write[offset] = write
}

// Dispatcher decodes $C000-$C0FF into the motherboard block ($C000-$C00F)
// and sixteen slot blocks ($C0n0-$C0nF for slot n = 1..15).
type Dispatcher struct {
	Motherboard Handlers
	Slots       [16]Handlers
}

// NewDispatcher constructs an empty dispatcher.
func NewDispatcher() *Dispatcher { return &Dispatcher{} }

func (d *Dispatcher) decode(lowByte uint8) (*Handlers, uint8) {
	if lowByte>>4 == 0 {
		return &d.Motherboard, lowByte & 0x0F
	}
	slot := lowByte >> 4
	return &d.Slots[slot], lowByte & 0x0F
}

// Read dispatches a read of I/O page offset addr (0x000-0x0FF, i.e. addr -
// 0xC000) to the appropriate handler. An unbound handler returns the bus
// default.
func (d *Dispatcher) Read(addr uint32, sideEffectFree bool) byte {
	low := uint8(addr & 0xFF)
	h, off := d.decode(low)
	if h.Read[off] == nil {
		return membus.BusDefault
	}
	return h.Read[off](off, sideEffectFree)
}

// Write dispatches a write of I/O page offset addr to the appropriate
// handler. An unbound handler discards the write.
func (d *Dispatcher) Write(addr uint32, value byte) {
	low := uint8(addr & 0xFF)
	h, off := d.decode(low)
	if h.Write[off] == nil {
		return
	}
	h.Write[off](off, value)
}

// AsTarget adapts the dispatcher to a membus.IOTarget covering the full
// $C000-$C0FF page at offset 0.
func (d *Dispatcher) AsTarget() *membus.IOTarget {
	return membus.NewIOTarget(
		func(offset uint32, sideEffectFree bool) byte { return d.Read(offset, sideEffectFree) },
		func(offset uint32, value byte) { d.Write(offset, value) },
	)
}
