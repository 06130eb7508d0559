package membus

import "github.com/bad-mango-solutions/pocket2e/emuerr"

// Target is the uniform access surface every bus target implements. All
// targets must support faithful 8-bit access; wide (16/32-bit) accesses are
// synthesized by the bus from repeated 8-bit accesses unless the target
// also implements WideTarget and declares the matching capability.
type Target interface {
	Caps() Caps
	Read8(offset uint32, ctx AccessContext) (byte, error)
	Write8(offset uint32, value byte, ctx AccessContext) error
}

// WideTarget is implemented by targets capable of atomic wide access.
// Callers must check Caps() for CapWide16/CapWide32 before using these.
type WideTarget interface {
	Read16(offset uint32, ctx AccessContext) (uint16, error)
	Write16(offset uint32, value uint16, ctx AccessContext) error
	Read32(offset uint32, ctx AccessContext) (uint32, error)
	Write32(offset uint32, value uint32, ctx AccessContext) error
}

// RAMTarget wraps a memory slice with pure, always side-effect-free stores.
type RAMTarget struct {
	slice Slice
}

// NewRAMTarget constructs a RAM target over the given slice.
func NewRAMTarget(s Slice) *RAMTarget { return &RAMTarget{slice: s} }

func (t *RAMTarget) Caps() Caps { return CapSideEffectFree }

func (t *RAMTarget) Read8(offset uint32, _ AccessContext) (byte, error) {
	b, ok := t.slice.byteAt(int(offset))
	if !ok {
		return 0, emuerr.Busf(emuerr.Unmapped, "RAM offset %#x out of range", offset)
	}
	return b, nil
}

func (t *RAMTarget) Write8(offset uint32, value byte, _ AccessContext) error {
	if !t.slice.setByteAt(int(offset), value) {
		return emuerr.Busf(emuerr.Unmapped, "RAM offset %#x out of range", offset)
	}
	return nil
}

// ROMTarget wraps a memory slice; ordinary writes are ignored, while writes
// made through WriteDebug mutate the backing slice.
type ROMTarget struct {
	slice Slice
}

// NewROMTarget constructs a ROM target over the given slice.
func NewROMTarget(s Slice) *ROMTarget { return &ROMTarget{slice: s} }

func (t *ROMTarget) Caps() Caps { return CapSideEffectFree }

func (t *ROMTarget) Read8(offset uint32, _ AccessContext) (byte, error) {
	b, ok := t.slice.byteAt(int(offset))
	if !ok {
		return 0, emuerr.Busf(emuerr.Unmapped, "ROM offset %#x out of range", offset)
	}
	return b, nil
}

// Write8 on a ROM target is a no-op for ordinary writes; it never returns an
// error since a store to read-only memory is not itself a bus fault (the
// page's permission bits are what reject the write before it reaches here).
func (t *ROMTarget) Write8(offset uint32, value byte, _ AccessContext) error {
	return nil
}

// WriteDebug forces a write through to the backing slice, bypassing the
// ordinary ROM write-ignore rule. Used by debug pokes that explicitly want
// to patch ROM contents.
func (t *ROMTarget) WriteDebug(offset uint32, value byte) error {
	if !t.slice.setByteAt(int(offset), value) {
		return emuerr.Busf(emuerr.Unmapped, "ROM offset %#x out of range", offset)
	}
	return nil
}

// IOReadFunc services a read of an I/O target. sideEffectFree is true for
// debug reads; a well-behaved handler must not mutate state when true.
type IOReadFunc func(offset uint32, sideEffectFree bool) byte

// IOWriteFunc services a write of an I/O target.
type IOWriteFunc func(offset uint32, value byte)

// IOTarget wraps a pair of callbacks implementing a soft-switch or other
// memory-mapped device register block.
type IOTarget struct {
	read  IOReadFunc
	write IOWriteFunc
}

// NewIOTarget constructs an I/O target from read/write callbacks. Either may
// be nil, in which case reads return 0xFF and writes are discarded.
func NewIOTarget(read IOReadFunc, write IOWriteFunc) *IOTarget {
	return &IOTarget{read: read, write: write}
}

func (t *IOTarget) Caps() Caps { return CapWriteSideEffects | CapMayFault }

func (t *IOTarget) Read8(offset uint32, ctx AccessContext) (byte, error) {
	if t.read == nil {
		return 0xFF, nil
	}
	return t.read(offset, ctx.SideEffectFree), nil
}

func (t *IOTarget) Write8(offset uint32, value byte, ctx AccessContext) error {
	if t.write == nil {
		return nil
	}
	t.write(offset, value)
	return nil
}

// CompositeTarget fans out accesses to sub-targets by offset range. Used by
// the slot manager to present the per-slot ROM windows as one target.
type CompositeTarget struct {
	entries []compositeEntry
}

type compositeEntry struct {
	base, size uint32
	target     Target
}

// NewCompositeTarget builds an empty composite target.
func NewCompositeTarget() *CompositeTarget { return &CompositeTarget{} }

// Mount installs a sub-target covering [base, base+size) of the composite's
// own offset space.
func (t *CompositeTarget) Mount(base, size uint32, target Target) {
	t.entries = append(t.entries, compositeEntry{base: base, size: size, target: target})
}

func (t *CompositeTarget) find(offset uint32) (compositeEntry, bool) {
	for _, e := range t.entries {
		if offset >= e.base && offset < e.base+e.size {
			return e, true
		}
	}
	return compositeEntry{}, false
}

func (t *CompositeTarget) Caps() Caps { return CapMayFault }

func (t *CompositeTarget) Read8(offset uint32, ctx AccessContext) (byte, error) {
	e, ok := t.find(offset)
	if !ok {
		return 0xFF, emuerr.Busf(emuerr.Unmapped, "composite offset %#x unmounted", offset)
	}
	return e.target.Read8(offset-e.base, ctx)
}

func (t *CompositeTarget) Write8(offset uint32, value byte, ctx AccessContext) error {
	e, ok := t.find(offset)
	if !ok {
		return emuerr.Busf(emuerr.Unmapped, "composite offset %#x unmounted", offset)
	}
	return e.target.Write8(offset-e.base, value, ctx)
}
