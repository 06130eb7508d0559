package devices

import "github.com/bad-mango-solutions/pocket2e/membus"

// SlotCard is the interface a card installed by the Slot Manager
// implements in addition to Device, so the manager can wire its ROM and I/O
// windows into the right slot.
type SlotCard interface {
	Device
	// SlotROM returns the card's 256-byte firmware ROM content for
	// $Cn00-$CnFF, or nil if the card has none.
	SlotROM() []byte
	// ExpansionROM returns the card's 2KB shared expansion ROM content for
	// $C800-$CFFF when this card's bank is selected, or nil if it has none.
	ExpansionROM() []byte
}

// SlotManager exposes, for each populated slot 1-7: slot ROM at
// $Cn00-$CnFF, I/O handlers at $C0n0-$C0nF (via the dispatcher directly,
// not through this device), and the shared $C800-$CFFF expansion window
// banked to whichever slot last accessed its own $Cn00-$CnFF ROM.
type SlotManager struct {
	id   int
	name string

	bus    *membus.Bus
	cards  [8]SlotCard // index 1-7; 0 unused
	romMem [8]*membus.PhysicalMemory

	expansionMem    *membus.PhysicalMemory
	selectedSlot    int
}

// NewSlotManager constructs an empty slot manager. Cards are attached with
// Install before ConfigureMemory runs.
func NewSlotManager(id int, name string) *SlotManager {
	return &SlotManager{id: id, name: name}
}

func (d *SlotManager) ID() int            { return d.id }
func (d *SlotManager) TypeID() string     { return "slotmanager" }
func (d *SlotManager) DisplayName() string { return d.name }
func (d *SlotManager) Kind() Kind         { return Motherboard }

// Install attaches a card to the given slot (1-7). Must be called before
// ConfigureMemory.
func (d *SlotManager) Install(slot int, card SlotCard) {
	if slot >= 1 && slot <= 7 {
		d.cards[slot] = card
	}
}

func (d *SlotManager) ConfigureMemory(ctx *BuildContext) error {
	d.bus = ctx.Bus
	d.expansionMem = membus.NewPhysicalMemory(d.name+"-expansion", 0x0800)

	// Slot ROM windows are 256 bytes each, so $C100-$C7FF is mapped as a
	// single region backed by one composite target that fans out by slot;
	// it is page-aligned for any page size up to 256 bytes.
	for slot := 1; slot <= 7; slot++ {
		card := d.cards[slot]
		if card == nil {
			continue
		}
		rom := card.SlotROM()
		if rom == nil {
			continue
		}
		mem := membus.NewPhysicalMemory(d.name+"-slotrom", 0x0100)
		if err := mem.LoadAt(0, rom); err != nil {
			return err
		}
		d.romMem[slot] = mem
	}

	composite := membus.NewCompositeTarget()
	for slot := 1; slot <= 7; slot++ {
		if d.romMem[slot] == nil {
			continue
		}
		slice, err := d.romMem[slot].Slice(0, 0x0100)
		if err != nil {
			return err
		}
		rom := membus.NewROMTarget(slice)
		s := slot
		slotTarget := membus.NewIOTarget(
			func(offset uint32, sideEffectFree bool) byte {
				if !sideEffectFree {
					d.NoteSlotAccess(s)
				}
				b, _ := rom.Read8(offset, membus.AccessContext{SideEffectFree: sideEffectFree})
				return b
			},
			nil,
		)
		composite.Mount(uint32((slot-1)*0x0100), 0x0100, slotTarget)
	}
	if err := ctx.Bus.MapRegion(0xC100, 0x0700, d.id, membus.TagROM, membus.PermRead|membus.PermExec, composite, 0); err != nil {
		return err
	}

	expSlice, err := d.expansionMem.Slice(0, 0x0800)
	if err != nil {
		return err
	}
	expTarget := membus.NewIOTarget(
		func(offset uint32, sideEffectFree bool) byte {
			d.refreshExpansionBank()
			b, _ := membus.NewROMTarget(expSlice).Read8(offset, membus.AccessContext{SideEffectFree: sideEffectFree})
			return b
		},
		nil,
	)
	return ctx.Bus.MapRegion(0xC800, 0x0800, d.id, membus.TagROM, membus.PermRead|membus.PermExec, expTarget, 0)
}

// refreshExpansionBank loads the currently selected slot's expansion ROM
// content into the shared $C800-$CFFF buffer. Selection happens whenever a
// card's own $Cn00-$CnFF ROM is accessed (NoteSlotAccess).
func (d *SlotManager) refreshExpansionBank() {
	if d.selectedSlot == 0 {
		return
	}
	card := d.cards[d.selectedSlot]
	if card == nil {
		return
	}
	rom := card.ExpansionROM()
	if rom == nil {
		return
	}
	_ = d.expansionMem.LoadAt(0, rom)
}

// NoteSlotAccess records that slot was just accessed, selecting its
// expansion ROM bank for subsequent $C800-$CFFF reads.
func (d *SlotManager) NoteSlotAccess(slot int) { d.selectedSlot = slot }

func (d *SlotManager) Initialize(ctx *InitContext) error { return nil }

func (d *SlotManager) Reset() { d.selectedSlot = 0 }
