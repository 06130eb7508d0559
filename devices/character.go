package devices

import "github.com/bad-mango-solutions/pocket2e/membus"

const (
	charROMSize      = 0x1000 // two 2KB character sets
	charSetSize      = 0x0800
	charGlyphRAMSize = 0x1000
)

// CharacterDevice owns the 4KB character ROM (two 2KB sets) and two 4KB
// glyph RAM banks used for custom characters. None of this is mapped onto
// the CPU bus; the video rasterizer reads it exclusively through
// GetScanline.
type CharacterDevice struct {
	id   int
	name string

	rom        *membus.PhysicalMemory
	glyphBank0 *membus.PhysicalMemory
	glyphBank1 *membus.PhysicalMemory

	altCharset      bool
	glyphOverlay    bool // GetScanline sources from a glyph bank instead of ROM
	glyphWritable   bool
	glyphBank1Sel   bool
	flashState      bool
	flashSuppressed bool // suppresses the inverse/flash transform for every row, ROM or glyph bank; one flag shared by both banks
	glyphAddr       uint16
}

// NewCharacterDevice constructs the device. Its ROM/RAM are allocated in
// ConfigureMemory; the ROM image itself is loaded by the machine builder
// via LoadROM once the profile's rom-image bytes are available.
func NewCharacterDevice(id int, name string) *CharacterDevice {
	return &CharacterDevice{id: id, name: name}
}

func (d *CharacterDevice) ID() int            { return d.id }
func (d *CharacterDevice) TypeID() string     { return "character" }
func (d *CharacterDevice) DisplayName() string { return d.name }
func (d *CharacterDevice) Kind() Kind         { return Motherboard }

func (d *CharacterDevice) ConfigureMemory(ctx *BuildContext) error {
	d.rom = membus.NewPhysicalMemory(d.name+"-rom", charROMSize)
	d.glyphBank0 = membus.NewPhysicalMemory(d.name+"-glyph0", charGlyphRAMSize)
	d.glyphBank1 = membus.NewPhysicalMemory(d.name+"-glyph1", charGlyphRAMSize)

	ctx.Dispatcher.Motherboard.Bind(0x0E, d.probe(false), d.writeAltChar(false))
	ctx.Dispatcher.Motherboard.Bind(0x0F, d.probe(true), d.writeAltChar(true))

	// Glyph-bank overlay and write-enable switches: project extensions in
	// the $C024-$C029 range (spec §4.6/§6.2), write-triggered like the
	// display-mode switches above. $C024-$C029 share high nibble 2 with the
	// dispatcher's nibble-decoded blocks (see iopage.Dispatcher.decode), so
	// these bind into Slots[2] rather than Motherboard, which only ever
	// sees $C000-$C00F.
	ctx.Dispatcher.Slots[2].Bind(0x24, d.probe(false), d.writeBool(&d.glyphOverlay, false))
	ctx.Dispatcher.Slots[2].Bind(0x25, d.probe(true), d.writeBool(&d.glyphOverlay, true))
	ctx.Dispatcher.Slots[2].Bind(0x26, d.probe(false), d.writeBool(&d.glyphBank1Sel, false))
	ctx.Dispatcher.Slots[2].Bind(0x27, d.probe(true), d.writeBool(&d.glyphBank1Sel, true))
	ctx.Dispatcher.Slots[2].Bind(0x28, d.probe(false), d.writeBool(&d.glyphWritable, false))
	ctx.Dispatcher.Slots[2].Bind(0x29, d.probe(true), d.writeBool(&d.glyphWritable, true))

	// Flash suppression (one flag for both banks) and the glyph RAM
	// address/data port: the
	// remaining offsets gameio's $C061-$C067/$C070 leave unbound in
	// $C060-$C06B, all sharing high nibble 6 with gameio's own bindings in
	// Slots[6].
	ctx.Dispatcher.Slots[6].Bind(0x60, d.probe(false), d.writeBool(&d.flashSuppressed, false))
	ctx.Dispatcher.Slots[6].Bind(0x68, d.probe(true), d.writeBool(&d.flashSuppressed, true))
	ctx.Dispatcher.Slots[6].Bind(0x69, d.readAddrLo, d.writeAddrLo)
	ctx.Dispatcher.Slots[6].Bind(0x6A, d.readAddrHi, d.writeAddrHi)
	ctx.Dispatcher.Slots[6].Bind(0x6B, d.readGlyphData, d.writeGlyphData)
	return nil
}

func (d *CharacterDevice) selectedBank() *membus.PhysicalMemory {
	if d.glyphBank1Sel {
		return d.glyphBank1
	}
	return d.glyphBank0
}

func (d *CharacterDevice) readAddrLo(uint8, bool) byte { return byte(d.glyphAddr) }
func (d *CharacterDevice) writeAddrLo(_ uint8, v byte) {
	d.glyphAddr = (d.glyphAddr & 0xFF00) | uint16(v)
}

func (d *CharacterDevice) readAddrHi(uint8, bool) byte { return byte(d.glyphAddr >> 8) }
func (d *CharacterDevice) writeAddrHi(_ uint8, v byte) {
	d.glyphAddr = (d.glyphAddr & 0x00FF) | uint16(v)<<8
	d.glyphAddr %= charGlyphRAMSize
}

// readGlyphData returns the byte at the current address pointer in the
// selected glyph bank, regardless of write-enable state, and advances the
// pointer. writeGlyphData stores there only while glyphWritable is set.
func (d *CharacterDevice) readGlyphData(_ uint8, sideEffectFree bool) byte {
	bank := d.selectedBank()
	v := bank.Bytes()[d.glyphAddr]
	if !sideEffectFree {
		d.glyphAddr = (d.glyphAddr + 1) % charGlyphRAMSize
	}
	return v
}

func (d *CharacterDevice) writeGlyphData(_ uint8, v byte) {
	if d.glyphWritable {
		d.selectedBank().Bytes()[d.glyphAddr] = v
	}
	d.glyphAddr = (d.glyphAddr + 1) % charGlyphRAMSize
}

// LoadROM installs the character ROM image bytes (4KB: two 2KB sets).
func (d *CharacterDevice) LoadROM(data []byte) error {
	return d.rom.LoadAt(0, data)
}

func (d *CharacterDevice) probe(v bool) func(uint8, bool) byte {
	return func(uint8, bool) byte {
		if v {
			return 0x80
		}
		return 0x00
	}
}

func (d *CharacterDevice) writeAltChar(v bool) func(uint8, byte) {
	return func(uint8, byte) { d.altCharset = v }
}

// writeBool returns a write-triggered handler that sets *field to v,
// matching writeAltChar's pattern for the glyph-RAM switches.
func (d *CharacterDevice) writeBool(field *bool, v bool) func(uint8, byte) {
	return func(uint8, byte) { *field = v }
}

func (d *CharacterDevice) Initialize(ctx *InitContext) error { return nil }

func (d *CharacterDevice) Reset() {
	d.altCharset = false
	d.glyphOverlay = false
	d.glyphWritable = false
	d.glyphBank1Sel = false
	d.flashState = false
	d.flashSuppressed = false
	d.glyphAddr = 0
}

// SetFlashState records the current blink phase. GetScanline inverts a row
// only while this phase and its own flashState argument are both set and
// flash suppression is off; nothing inside the core calls SetFlashState, so
// the caller controls the actual blink cadence.
func (d *CharacterDevice) SetFlashState(on bool) { d.flashState = on }

// GetScanline returns the 7-pixel row (bit 6 = leftmost) for the given
// character code and scanline (0-7), honouring alternate-charset selection
// and the caller-supplied flash state for inverse/flashing characters. When
// glyph-bank overlay is active, the selected glyph bank supplies the row
// instead of ROM.
func (d *CharacterDevice) GetScanline(charCode byte, scanline int, useAlt bool, flashState bool) byte {
	if scanline < 0 || scanline > 7 {
		return 0
	}
	set := 0
	if useAlt || d.altCharset {
		set = 1
	}
	offset := set*charSetSize + int(charCode)*8 + scanline

	var row byte
	if d.glyphOverlay {
		bank := d.selectedBank()
		if offset < 0 || offset >= bank.Len() {
			return 0
		}
		row = bank.Bytes()[offset]
	} else {
		if offset < 0 || offset >= d.rom.Len() {
			return 0
		}
		row = d.rom.Bytes()[offset]
	}
	if flashState && d.flashState && !d.flashSuppressed {
		row = ^row & 0x7F
	}
	return row & 0x7F
}
