package membus_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bad-mango-solutions/pocket2e/membus"
)

func newTestBus(t *testing.T) (*membus.Bus, *membus.PhysicalMemory) {
	t.Helper()
	bus := membus.NewBus(16, 4096)
	mem := membus.NewPhysicalMemory("ram", 0x10000)
	return bus, mem
}

func TestMapRegionReadsThroughTarget(t *testing.T) {
	bus, mem := newTestBus(t)
	sl, err := mem.Slice(0, 0x1000)
	require.NoError(t, err)
	target := membus.NewRAMTarget(sl)
	require.NoError(t, bus.MapRegion(0x2000, 0x1000, 0, membus.TagRAM, membus.PermRead|membus.PermWrite, target, 0))

	require.NoError(t, bus.Write(0x2010, membus.Width8, 0x42, membus.AccessContext{}))
	v, err := bus.Read(0x2010, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.EqualValues(t, 0x42, v)
}

func TestUnmappedReadFaults(t *testing.T) {
	bus, _ := newTestBus(t)
	v, err := bus.Read(0x5000, membus.Width8, membus.AccessContext{})
	require.Error(t, err)
	require.EqualValues(t, membus.BusDefault, v)
	require.EqualValues(t, 1, bus.PageFaultCount(0x5000))
}

func TestWriteToReadOnlyPageFaults(t *testing.T) {
	bus, mem := newTestBus(t)
	sl, _ := mem.Slice(0, 0x1000)
	rom := membus.NewROMTarget(sl)
	require.NoError(t, bus.MapRegion(0x3000, 0x1000, 0, membus.TagROM, membus.PermRead, rom, 0))
	err := bus.Write(0x3000, membus.Width8, 0xAA, membus.AccessContext{})
	require.Error(t, err)
}

func TestLayerActivateDeactivateRestoresBase(t *testing.T) {
	bus, mem := newTestBus(t)
	romSlice, _ := mem.Slice(0, 0x1000)
	ram2Slice, _ := mem.Slice(0x1000, 0x1000)
	rom := membus.NewROMTarget(romSlice)
	ram := membus.NewRAMTarget(ram2Slice)
	require.NoError(t, rom.WriteDebug(0, 0xEE))
	require.NoError(t, bus.MapRegion(0x4000, 0x1000, 0, membus.TagROM, membus.PermRead, rom, 0))
	bus.SaveBaseMappingRange(0x4000>>12, 1)

	layers := membus.NewLayerManager(bus)
	lcLayer := layers.CreateLayer("lc-read", 10)
	layers.AddMapping(lcLayer, 0x4000, 0x1000, 0, membus.TagRAM, membus.PermRead|membus.PermWrite, ram, 0)

	v, err := bus.Read(0x4000, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.EqualValues(t, 0xEE, v)

	layers.Activate(lcLayer)
	v, err = bus.Read(0x4000, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.EqualValues(t, 0, v)

	layers.Deactivate(lcLayer)
	v, err = bus.Read(0x4000, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.EqualValues(t, 0xEE, v)
}

func TestEqualPriorityLaterLayerWins(t *testing.T) {
	bus, mem := newTestBus(t)
	aSlice, _ := mem.Slice(0, 0x1000)
	bSlice, _ := mem.Slice(0x1000, 0x1000)
	aTarget := membus.NewRAMTarget(aSlice)
	bTarget := membus.NewRAMTarget(bSlice)
	require.NoError(t, aTarget.Write8(0, 0xA1, membus.AccessContext{}))
	require.NoError(t, bTarget.Write8(0, 0xB2, membus.AccessContext{}))

	layers := membus.NewLayerManager(bus)
	la := layers.CreateLayer("a", 5)
	lb := layers.CreateLayer("b", 5)
	layers.AddMapping(la, 0x6000, 0x1000, 0, membus.TagRAM, membus.PermRead|membus.PermWrite, aTarget, 0)
	layers.AddMapping(lb, 0x6000, 0x1000, 0, membus.TagRAM, membus.PermRead|membus.PermWrite, bTarget, 0)

	layers.Activate(la)
	layers.Activate(lb)

	v, err := bus.Read(0x6000, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.EqualValues(t, 0xB2, v, "later-registered equal-priority layer must win")
}

func TestSwapGroupSelectVariant(t *testing.T) {
	bus, mem := newTestBus(t)
	v1Slice, _ := mem.Slice(0, 0x1000)
	v2Slice, _ := mem.Slice(0x1000, 0x1000)
	v1 := membus.NewRAMTarget(v1Slice)
	v2 := membus.NewRAMTarget(v2Slice)
	require.NoError(t, v1.Write8(0, 0x11, membus.AccessContext{}))
	require.NoError(t, v2.Write8(0, 0x22, membus.AccessContext{}))

	require.NoError(t, bus.MapRegion(0x7000, 0x1000, 0, membus.TagRAM, membus.PermRead|membus.PermWrite, v1, 0))

	groups := membus.NewSwapGroupManager(bus, nil)
	g := groups.CreateSwapGroup("bank", 0, 0x7000, 0x1000)
	groups.AddVariant(g, "bank1", 0, membus.TagRAM, v1, 0, membus.PermRead|membus.PermWrite, 0)
	groups.AddVariant(g, "bank2", 0, membus.TagRAM, v2, 0, membus.PermRead|membus.PermWrite, 0)

	require.NoError(t, groups.SelectVariant(g, "bank1"))
	val, err := bus.Read(0x7000, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.EqualValues(t, 0x11, val)

	require.NoError(t, groups.SelectVariant(g, "bank2"))
	val, err = bus.Read(0x7000, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.EqualValues(t, 0x22, val)
}

func TestSideEffectFreeReadDoesNotMutate(t *testing.T) {
	bus, _ := newTestBus(t)
	toggled := false
	target := membus.NewIOTarget(func(offset uint32, sideEffectFree bool) byte {
		if !sideEffectFree {
			toggled = true
		}
		return 0
	}, nil)
	require.NoError(t, bus.MapRegion(0xC000, 0x1000, 0, membus.TagIO, membus.PermRead, target, 0))

	_, err := bus.Read(0xC000, membus.Width8, membus.Debug(membus.Width8))
	require.NoError(t, err)
	require.False(t, toggled)

	_, err = bus.Read(0xC000, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.True(t, toggled)
}
