package devices

import (
	"github.com/bad-mango-solutions/pocket2e/membus"
)

const (
	lcDPageBase = 0xD000
	lcDPageSize = 0x1000
	lcEPageBase = 0xE000
	lcEPageSize = 0x2000
	lcSlotIndex = 8 // $C080-$C08F decodes to slot 8 under the I/O page's nibble scheme
)

// LanguageCard implements the Apple IIe 16KB Language Card: two 4KB banks
// for $D000-$DFFF and one shared 8KB bank for $E000-$FFFF, controlled by
// the R×2 write-enable soft-switch protocol at $C080-$C08F.
//
// Known limitation: split mode ($C081/$C089, documented on real hardware as
// ROM reads with RAM writes at $D000-$DFFF) decodes writeEnabled true but
// readRAM false, same as any other odd R×2 offset where bit0 != bit1. apply
// then activates the layer with write-only permissions, so a read while
// split mode is active faults (non-readable page) instead of falling
// through to the base ROM mapping below; ROM-while-writable is not
// implemented.
type LanguageCard struct {
	id   int
	name string

	bank1, bank2 *membus.PhysicalMemory
	shared       *membus.PhysicalMemory

	layers *membus.LayerManager
	groups *membus.SwapGroupManager
	layer  *membus.Layer
	group  *membus.SwapGroup

	readRAM        bool
	writeEnabled   bool
	bank2Selected  bool
	preWrite       bool
	lastReadOffset uint8
}

// NewLanguageCard constructs a Language Card with the given device id and
// display name. Its memory is allocated in ConfigureMemory.
func NewLanguageCard(id int, name string) *LanguageCard {
	return &LanguageCard{id: id, name: name}
}

func (d *LanguageCard) ID() int            { return d.id }
func (d *LanguageCard) TypeID() string     { return "languagecard" }
func (d *LanguageCard) DisplayName() string { return d.name }
func (d *LanguageCard) Kind() Kind         { return Motherboard }

// ConfigureMemory allocates the card's RAM, registers a layer spanning
// $D000-$FFFF, a swap group over $D000-$DFFF scoped to that layer for the
// two 4KB banks, and the R×2 read handler at $C080-$C08F.
func (d *LanguageCard) ConfigureMemory(ctx *BuildContext) error {
	d.bank1 = membus.NewPhysicalMemory(d.name+"-bank1", lcDPageSize)
	d.bank2 = membus.NewPhysicalMemory(d.name+"-bank2", lcDPageSize)
	d.shared = membus.NewPhysicalMemory(d.name+"-shared", lcEPageSize)

	d.layers = ctx.Layers
	d.groups = ctx.Groups
	d.layer = ctx.Layers.CreateLayer(d.name, 10)

	sharedSlice, err := d.shared.Slice(0, lcEPageSize)
	if err != nil {
		return err
	}
	sharedTarget := membus.NewRAMTarget(sharedSlice)
	ctx.Layers.AddMapping(d.layer, lcEPageBase, lcEPageSize, d.id, membus.TagRAM, 0, sharedTarget, 0)

	d.group = ctx.Groups.CreateSwapGroup(d.name+"-bank", d.id, lcDPageBase, lcDPageSize)
	ctx.Groups.ScopeToLayer(d.group, d.layer)

	bank1Slice, err := d.bank1.Slice(0, lcDPageSize)
	if err != nil {
		return err
	}
	bank2Slice, err := d.bank2.Slice(0, lcDPageSize)
	if err != nil {
		return err
	}
	ctx.Groups.AddVariant(d.group, "bank1", d.id, membus.TagRAM, membus.NewRAMTarget(bank1Slice), 0, 0, 0)
	ctx.Groups.AddVariant(d.group, "bank2", d.id, membus.TagRAM, membus.NewRAMTarget(bank2Slice), 0, 0, 0)

	for s := uint8(0); s <= 0x0F; s++ {
		ctx.Dispatcher.Slots[lcSlotIndex].Bind(s, d.readSwitch, nil)
	}
	return nil
}

func (d *LanguageCard) Initialize(ctx *InitContext) error { return nil }

// Reset restores power-on state: RAM disabled for reads and writes, bank 2
// selected, LC layer deactivated (ROM shows through $D000-$FFFF).
func (d *LanguageCard) Reset() {
	d.readRAM = false
	d.writeEnabled = false
	d.bank2Selected = true
	d.preWrite = false
	d.lastReadOffset = 0
	d.layers.Deactivate(d.layer)
}

func (d *LanguageCard) readSwitch(offset uint8, sideEffectFree bool) byte {
	if !sideEffectFree {
		d.decode(offset)
		d.apply()
	}
	return 0
}

// decode runs the R×2 write-enable protocol for soft-switch offset s and
// updates read_ram/bank2_selected from its bit pattern.
func (d *LanguageCard) decode(s uint8) {
	s &= 0x0F
	if s&1 == 1 {
		switch {
		case d.preWrite && s == d.lastReadOffset:
			d.writeEnabled = true
			d.preWrite = false
		case !d.writeEnabled:
			d.preWrite = true
			d.lastReadOffset = s
		default:
			d.preWrite = false
		}
	} else {
		d.preWrite = false
		d.writeEnabled = false
	}

	bit0 := s & 1
	bit1 := (s >> 1) & 1
	bit3 := (s >> 3) & 1
	d.readRAM = bit0 == bit1
	d.bank2Selected = bit3 == 0
}

// apply activates or deactivates the LC layer and selects the active bank
// variant to match the current decoded state.
func (d *LanguageCard) apply() {
	if !d.readRAM && !d.writeEnabled {
		d.layers.Deactivate(d.layer)
		return
	}
	d.layers.Activate(d.layer)
	bank := "bank1"
	if d.bank2Selected {
		bank = "bank2"
	}
	_ = d.groups.SelectVariant(d.group, bank)
	// The bank group is scoped to the layer; write its selection into the
	// page table now that the layer is active, including after a
	// deactivation that left the selection unchanged.
	d.groups.Materialize(d.group)
	var perms membus.Perms
	if d.readRAM {
		perms |= membus.PermRead
	}
	if d.writeEnabled {
		perms |= membus.PermWrite
	}
	d.layers.SetPermissions(d.layer, perms)
}

// SoftSwitchState reports the card's current control bits for the debug
// console's `switches` command.
func (d *LanguageCard) SoftSwitchState() []SoftSwitchSnapshot {
	return []SoftSwitchSnapshot{
		{Name: "LC_READ_RAM", Address: 0xC080, Active: d.readRAM, Description: "Language Card RAM readable"},
		{Name: "LC_WRITE_ENABLED", Address: 0xC080, Active: d.writeEnabled, Description: "Language Card RAM writable"},
		{Name: "LC_BANK2", Address: 0xC080, Active: d.bank2Selected, Description: "Language Card bank 2 selected"},
	}
}
