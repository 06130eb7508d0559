package devices

// GameIO exposes the paddle ($C064-$C067, analog timers decayed externally)
// and pushbutton ($C061-$C063) state of the game I/O connector.
type GameIO struct {
	id   int
	name string

	paddle  [4]byte // 0-255, caller-supplied analog position
	buttons [3]bool
}

// NewGameIO constructs the device.
func NewGameIO(id int, name string) *GameIO {
	return &GameIO{id: id, name: name}
}

func (d *GameIO) ID() int            { return d.id }
func (d *GameIO) TypeID() string     { return "gameio" }
func (d *GameIO) DisplayName() string { return d.name }
func (d *GameIO) Kind() Kind         { return Motherboard }

func (d *GameIO) ConfigureMemory(ctx *BuildContext) error {
	// $C061-$C067 share high nibble 6 with the dispatcher's nibble-decoded
	// blocks (see iopage.Dispatcher.decode), so these bind into Slots[6]
	// rather than Motherboard, which only ever sees $C000-$C00F.
	for i := 0; i < 3; i++ {
		i := i
		ctx.Dispatcher.Slots[6].Bind(uint8(0x61+i), func(uint8, bool) byte {
			if d.buttons[i] {
				return 0x80
			}
			return 0x00
		}, nil)
	}
	for i := 0; i < 4; i++ {
		i := i
		ctx.Dispatcher.Slots[6].Bind(uint8(0x64+i), func(uint8, bool) byte {
			return d.paddle[i]
		}, nil)
	}
	// $C070 triggers the paddle RC timer reset on real hardware; here the
	// analog values are supplied directly by SetPaddle, so the trigger is a
	// no-op kept only so software polling it does not fault. High nibble 7
	// so it binds into Slots[7].
	ctx.Dispatcher.Slots[7].Bind(0x70, func(uint8, bool) byte { return 0 }, func(uint8, byte) {})
	return nil
}

// SetPaddle records an external analog reading for paddle n (0-3).
func (d *GameIO) SetPaddle(n int, value byte) {
	if n >= 0 && n < len(d.paddle) {
		d.paddle[n] = value
	}
}

// SetButton records an external digital reading for button n (0-2).
func (d *GameIO) SetButton(n int, pressed bool) {
	if n >= 0 && n < len(d.buttons) {
		d.buttons[n] = pressed
	}
}

func (d *GameIO) Initialize(ctx *InitContext) error { return nil }

func (d *GameIO) Reset() {
	d.paddle = [4]byte{}
	d.buttons = [3]bool{}
}
