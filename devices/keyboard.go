package devices

// Keyboard exposes $C000 (last-key data, bit 7 = key-pending strobe) and
// $C010 (any access clears the strobe). Key injection comes from an
// external input collector via PressKey; the core only models the
// soft-switch surface.
type Keyboard struct {
	id   int
	name string

	lastKey byte
	pending bool
}

// NewKeyboard constructs the device.
func NewKeyboard(id int, name string) *Keyboard {
	return &Keyboard{id: id, name: name}
}

func (d *Keyboard) ID() int            { return d.id }
func (d *Keyboard) TypeID() string     { return "keyboard" }
func (d *Keyboard) DisplayName() string { return d.name }
func (d *Keyboard) Kind() Kind         { return Motherboard }

func (d *Keyboard) ConfigureMemory(ctx *BuildContext) error {
	ctx.Dispatcher.Motherboard.Bind(0x00, func(uint8, bool) byte {
		b := d.lastKey & 0x7F
		if d.pending {
			b |= 0x80
		}
		return b
	}, nil)
	// $C010 has high nibble 1, so the dispatcher decodes it into Slots[1]
	// (see iopage.Dispatcher.decode), not Motherboard.
	ctx.Dispatcher.Slots[1].Bind(0x10, func(_ uint8, sideEffectFree bool) byte {
		b := d.lastKey & 0x7F
		if d.pending {
			b |= 0x80
		}
		if !sideEffectFree {
			d.pending = false
		}
		return b
	}, func(uint8, byte) { d.pending = false })
	return nil
}

// PressKey records a key press, setting the pending strobe. ASCII code per
// Apple II convention (bit 7 unused on input, set internally on read).
func (d *Keyboard) PressKey(code byte) {
	d.lastKey = code & 0x7F
	d.pending = true
}

func (d *Keyboard) Initialize(ctx *InitContext) error { return nil }

func (d *Keyboard) Reset() {
	d.lastKey = 0
	d.pending = false
}
