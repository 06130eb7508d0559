package devices

// ClickSink receives a speaker click event. The audio back-end lives
// outside the core (§1); this is its only contact point with emulation.
type ClickSink func(cycle uint64)

// Speaker exposes $C030: any access toggles the speaker coil and emits a
// click event to an external sink. The core does not synthesize audio.
type Speaker struct {
	id   int
	name string

	sink     ClickSink
	cycle    func() uint64
	toggled  bool
}

// NewSpeaker constructs the device. Clicks are discarded until SetClickSink
// is called (the machine builder does this); until SetCycleSource is also
// called, clicks are stamped with cycle 0.
func NewSpeaker(id int, name string) *Speaker {
	return &Speaker{id: id, name: name}
}

func (d *Speaker) ID() int            { return d.id }
func (d *Speaker) TypeID() string     { return "speaker" }
func (d *Speaker) DisplayName() string { return d.name }
func (d *Speaker) Kind() Kind         { return Motherboard }

// SetClickSink installs the external click consumer.
func (d *Speaker) SetClickSink(sink ClickSink) { d.sink = sink }

// SetCycleSource installs a callback returning the current CPU cycle count,
// used to timestamp click events.
func (d *Speaker) SetCycleSource(f func() uint64) { d.cycle = f }

func (d *Speaker) ConfigureMemory(ctx *BuildContext) error {
	// $C030 has high nibble 3, so the dispatcher decodes it into Slots[3]
	// (see iopage.Dispatcher.decode), not Motherboard.
	ctx.Dispatcher.Slots[3].Bind(0x30, func(_ uint8, sideEffectFree bool) byte {
		if !sideEffectFree {
			d.click()
		}
		return 0
	}, func(uint8, byte) { d.click() })
	return nil
}

func (d *Speaker) click() {
	d.toggled = !d.toggled
	if d.sink == nil {
		return
	}
	var cycle uint64
	if d.cycle != nil {
		cycle = d.cycle()
	}
	d.sink(cycle)
}

func (d *Speaker) Initialize(ctx *InitContext) error { return nil }

func (d *Speaker) Reset() { d.toggled = false }
