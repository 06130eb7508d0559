package devices_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bad-mango-solutions/pocket2e/devices"
	"github.com/bad-mango-solutions/pocket2e/iopage"
	"github.com/bad-mango-solutions/pocket2e/membus"
)

type stubCard struct {
	id           int
	slotROM      []byte
	expansionROM []byte
}

func (c *stubCard) ID() int                                    { return c.id }
func (c *stubCard) TypeID() string                             { return "stubcard" }
func (c *stubCard) DisplayName() string                        { return "stub" }
func (c *stubCard) Kind() devices.Kind                         { return devices.Card }
func (c *stubCard) ConfigureMemory(ctx *devices.BuildContext) error { return nil }
func (c *stubCard) Initialize(ctx *devices.InitContext) error  { return nil }
func (c *stubCard) Reset()                                     {}
func (c *stubCard) SlotROM() []byte                             { return c.slotROM }
func (c *stubCard) ExpansionROM() []byte                        { return c.expansionROM }

func newTestBus(t *testing.T) (*membus.Bus, *membus.LayerManager, *membus.SwapGroupManager, *iopage.Dispatcher) {
	t.Helper()
	bus := membus.NewBus(16, 256)
	layers := membus.NewLayerManager(bus)
	groups := membus.NewSwapGroupManager(bus, layers)
	dispatcher := iopage.NewDispatcher()
	return bus, layers, groups, dispatcher
}

func TestSlotManagerMapsSlotROMWindows(t *testing.T) {
	bus, layers, groups, dispatcher := newTestBus(t)

	sm := devices.NewSlotManager(1, "slots")
	slotROM := make([]byte, 0x100)
	slotROM[0] = 0xEA
	card := &stubCard{id: 2, slotROM: slotROM}
	sm.Install(3, card)

	ctx := &devices.BuildContext{Bus: bus, Layers: layers, Groups: groups, Dispatcher: dispatcher}
	require.NoError(t, sm.ConfigureMemory(ctx))

	v, err := bus.Read(0xC300, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.Equal(t, uint32(0xEA), v)

	// An unpopulated slot's sub-range is never mounted in the composite
	// target, so a read there faults rather than returning a default byte.
	_, err = bus.Read(0xC400, membus.Width8, membus.AccessContext{})
	require.Error(t, err)
}

func TestSlotManagerExpansionWindowFollowsSelectedSlot(t *testing.T) {
	bus, layers, groups, dispatcher := newTestBus(t)

	sm := devices.NewSlotManager(1, "slots")
	expROM := make([]byte, 0x0800)
	expROM[0] = 0x42
	card := &stubCard{id: 2, slotROM: make([]byte, 0x100), expansionROM: expROM}
	sm.Install(5, card)

	ctx := &devices.BuildContext{Bus: bus, Layers: layers, Groups: groups, Dispatcher: dispatcher}
	require.NoError(t, sm.ConfigureMemory(ctx))

	sm.NoteSlotAccess(5)
	v, err := bus.Read(0xC800, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.Equal(t, uint32(0x42), v)
}

func TestSlotManagerResetClearsSelectedSlot(t *testing.T) {
	bus, layers, groups, dispatcher := newTestBus(t)
	sm := devices.NewSlotManager(1, "slots")
	card := &stubCard{id: 2, slotROM: make([]byte, 0x100), expansionROM: make([]byte, 0x0800)}
	sm.Install(4, card)
	ctx := &devices.BuildContext{Bus: bus, Layers: layers, Groups: groups, Dispatcher: dispatcher}
	require.NoError(t, sm.ConfigureMemory(ctx))

	sm.NoteSlotAccess(4)
	sm.Reset()
	v, err := bus.Read(0xC800, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.Equal(t, uint32(0x00), v, "no slot selected after reset, expansion buffer was never refreshed from a card")
}
