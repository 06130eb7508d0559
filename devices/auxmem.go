package devices

import "github.com/bad-mango-solutions/pocket2e/membus"

// auxZone identifies which bank-selection rule governs a range of the
// $0000-$BFFF space the Auxiliary Memory Controller steers.
type auxZone int

const (
	zoneZeroPage auxZone = iota // $0000-$01FF: governed by ALTZP alone
	zoneText                    // $0400-$07FF: 80STORE+PAGE2 overrides RAMRD/RAMWRT
	zoneHires                   // $2000-$3FFF: 80STORE+HIRES+PAGE2 overrides RAMRD/RAMWRT
	zoneGeneral                 // everything else in $0200-$BFFF: plain RAMRD/RAMWRT
)

// AuxMemController manages the 80STORE/RAMRD/RAMWRT/ALTZP/PAGE2/HIRES soft
// switches that steer $0000-$BFFF between main and auxiliary 64KB memory.
// Read and write bank selection can differ (RAMRD vs RAMWRT), so each
// steered page's target is a small adapter that picks main or aux per
// access rather than a swapped layer.
type AuxMemController struct {
	id   int
	name string

	main, aux *membus.PhysicalMemory

	store80     bool
	ramRD       bool
	ramWR       bool
	altZP       bool
	page2       bool
	hires       bool
}

// NewAuxMemController constructs the controller. Its memory is allocated in
// ConfigureMemory.
func NewAuxMemController(id int, name string) *AuxMemController {
	return &AuxMemController{id: id, name: name}
}

func (d *AuxMemController) ID() int            { return d.id }
func (d *AuxMemController) TypeID() string     { return "auxmem" }
func (d *AuxMemController) DisplayName() string { return d.name }
func (d *AuxMemController) Kind() Kind         { return Motherboard }

// bankForZone reports whether the auxiliary bank should serve the access.
func (d *AuxMemController) bankForZone(zone auxZone, write bool) bool {
	switch zone {
	case zoneZeroPage:
		return d.altZP
	case zoneText:
		if d.store80 {
			return d.page2
		}
	case zoneHires:
		if d.store80 && d.hires {
			return d.page2
		}
	}
	if write {
		return d.ramWR
	}
	return d.ramRD
}

// ConfigureMemory allocates a full 64KB auxiliary bank and maps bank-steered
// targets over $0000-$BFFF, replacing whatever base RAM mapping was already
// installed there (the machine builder maps main RAM first; this overlays
// it at layer 0 priority via a dedicated set of targets, not a Layer, since
// main/aux selection happens per access rather than per activation).
func (d *AuxMemController) ConfigureMemory(ctx *BuildContext) error {
	d.aux = membus.NewPhysicalMemory(d.name+"-aux", 0x10000)

	mainSlice, err := d.main.Slice(0, 0xC000)
	if err != nil {
		return err
	}
	auxSlice, err := d.aux.Slice(0, 0xC000)
	if err != nil {
		return err
	}

	// One target spans the whole $0000-$BFFF range, whatever the bus's page
	// size; the target itself resolves the finer-grained zone (zero page,
	// text page 1, hires page 1) from the absolute offset on every access,
	// so zone boundaries need not line up with page boundaries.
	target := newAuxBankedRAM(mainSlice, auxSlice, d)
	if err := ctx.Bus.MapPageRange(0, 0xC000/ctx.Bus.PageSize(), d.id, membus.TagRAM, membus.PermRead|membus.PermWrite, target, 0); err != nil {
		return err
	}

	for _, sw := range []struct {
		lo, hi uint8
		set    func(bool)
	}{
		{0x00, 0x01, func(v bool) { d.store80 = v }},
		{0x02, 0x03, func(v bool) { d.ramRD = v }},
		{0x04, 0x05, func(v bool) { d.ramWR = v }},
		{0x08, 0x09, func(v bool) { d.altZP = v }},
	} {
		sw := sw
		ctx.Dispatcher.Motherboard.Bind(sw.lo, d.probe(false), d.write(sw.set, false))
		ctx.Dispatcher.Motherboard.Bind(sw.hi, d.probe(true), d.write(sw.set, true))
	}
	// $C054-$C057 share high nibble 5 with the dispatcher's nibble-decoded
	// blocks (see iopage.Dispatcher.decode), so these bind into Slots[5]
	// rather than Motherboard, which only ever sees $C000-$C00F.
	ctx.Dispatcher.Slots[5].Bind(0x54, d.probe(false), d.write(func(v bool) { d.page2 = v }, false))
	ctx.Dispatcher.Slots[5].Bind(0x55, d.probe(true), d.write(func(v bool) { d.page2 = v }, true))
	ctx.Dispatcher.Slots[5].Bind(0x56, d.probe(false), d.write(func(v bool) { d.hires = v }, false))
	ctx.Dispatcher.Slots[5].Bind(0x57, d.probe(true), d.write(func(v bool) { d.hires = v }, true))
	return nil
}

// SetMainMemory is called by the machine builder with the physical RAM
// block mapped as the base $0000-$BFFF region, before ConfigureMemory runs.
func (d *AuxMemController) SetMainMemory(main *membus.PhysicalMemory) {
	d.main = main
}

func (d *AuxMemController) probe(value bool) iopageReadFunc {
	return func(offset uint8, sideEffectFree bool) byte {
		if value {
			return 0x80
		}
		return 0x00
	}
}

// write binds a switch's write-triggered semantics (§4.5: display-mode-like
// switches are write-triggered, unlike the Language Card's read-triggered
// protocol): writing to either address of the pair sets the switch to v.
func (d *AuxMemController) write(set func(bool), v bool) iopageWriteFunc {
	return func(offset uint8, value byte) { set(v) }
}

func (d *AuxMemController) Initialize(ctx *InitContext) error { return nil }

// Reset restores the power-on soft-switch configuration: everything off,
// main memory visible throughout.
func (d *AuxMemController) Reset() {
	d.store80 = false
	d.ramRD = false
	d.ramWR = false
	d.altZP = false
	d.page2 = false
	d.hires = false
}

func (d *AuxMemController) SoftSwitchState() []SoftSwitchSnapshot {
	return []SoftSwitchSnapshot{
		{Name: "80STORE", Address: 0xC000, Active: d.store80, Description: "80-column store mode"},
		{Name: "RAMRD", Address: 0xC002, Active: d.ramRD, Description: "read from auxiliary RAM"},
		{Name: "RAMWRT", Address: 0xC004, Active: d.ramWR, Description: "write to auxiliary RAM"},
		{Name: "ALTZP", Address: 0xC008, Active: d.altZP, Description: "auxiliary zero page/stack"},
		{Name: "PAGE2", Address: 0xC054, Active: d.page2, Description: "display page 2"},
		{Name: "HIRES", Address: 0xC056, Active: d.hires, Description: "hi-res graphics mode"},
	}
}

// iopageReadFunc/iopageWriteFunc alias the iopage package's handler types so
// this file does not need to import iopage for its own internal closures.
type iopageReadFunc = func(offset uint8, sideEffectFree bool) byte
type iopageWriteFunc = func(offset uint8, value byte)

// auxBankedRAM is a membus.Target that picks between a main and auxiliary
// slice per access. It spans all of $0000-$BFFF as one target and resolves
// the finer-grained zone — zero page, text page 1, hires page 1, or
// general — from the absolute offset on every access, so it does not
// depend on the bus's page size.
type auxBankedRAM struct {
	main, aux membus.Slice
	ctrl      *AuxMemController
}

func newAuxBankedRAM(main, aux membus.Slice, ctrl *AuxMemController) *auxBankedRAM {
	return &auxBankedRAM{main: main, aux: aux, ctrl: ctrl}
}

func zoneFor(offset uint32) auxZone {
	switch {
	case offset < 0x0200:
		return zoneZeroPage
	case offset >= 0x0400 && offset < 0x0800:
		return zoneText
	case offset >= 0x2000 && offset < 0x4000:
		return zoneHires
	default:
		return zoneGeneral
	}
}

func (t *auxBankedRAM) Caps() membus.Caps { return membus.CapSideEffectFree }

func (t *auxBankedRAM) Read8(offset uint32, ctx membus.AccessContext) (byte, error) {
	s := t.main
	if t.ctrl.bankForZone(zoneFor(offset), false) {
		s = t.aux
	}
	return membus.NewRAMTarget(s).Read8(offset, ctx)
}

func (t *auxBankedRAM) Write8(offset uint32, value byte, ctx membus.AccessContext) error {
	s := t.main
	if t.ctrl.bankForZone(zoneFor(offset), true) {
		s = t.aux
	}
	return membus.NewRAMTarget(s).Write8(offset, value, ctx)
}
