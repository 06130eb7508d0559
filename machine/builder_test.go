package machine_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bad-mango-solutions/pocket2e/devices"
	"github.com/bad-mango-solutions/pocket2e/machine"
	"github.com/bad-mango-solutions/pocket2e/membus"
)

const romSize = 0xFFFF - 0xC100 + 1 // $C100-$FFFF

// buildTestROM returns a 16KB-minus-$100 ROM image whose reset vector
// ($FFFC/$FFFD, relative offset 0x3EFC/0x3EFD within this slice) points at
// $C134, a value distinguishable from the Language Card's zero-initialized
// RAM at the same bus address.
func buildTestROM() []byte {
	rom := make([]byte, romSize)
	rom[0x3EFC] = 0x34
	rom[0x3EFD] = 0xC1
	return rom
}

func baseProfileJSON() string {
	return `{
		"name": "pocket2e-test",
		"addressSpace": 16,
		"cpu": { "type": "65C02" },
		"memory": {
			"rom-images": [
				{ "name": "monitor", "source": "embedded://roms/iie.rom", "size": "0x3F00", "required": true }
			],
			"regions": [
				{ "name": "main-ram", "type": "ram", "start": "0x0000", "size": "0xC000", "permissions": "rwx", "fill": "0x00" },
				{ "name": "monitor-rom", "type": "rom", "start": "0xC100", "size": "0x3F00", "permissions": "rx", "source": "monitor" }
			]
		},
		"devices": { "motherboard": [ { "type": "languagecard" } ] },
		"boot": { "autoStart": false }
	}`
}

func buildTestMachine(t *testing.T, romOverride []byte) *machine.Machine {
	t.Helper()
	p, err := machine.ParseProfile([]byte(baseProfileJSON()))
	require.NoError(t, err)

	rom := romOverride
	if rom == nil {
		rom = buildTestROM()
	}

	b := machine.NewBuilder(machine.Options{
		Embedded: func(bundle, resource string) ([]byte, error) {
			return rom, nil
		},
	})
	m, err := b.Build(p)
	require.NoError(t, err)
	return m
}

func TestBuildResetVectorReadsBaseROM(t *testing.T) {
	m := buildTestMachine(t, nil)
	require.Equal(t, uint16(0xC134), m.Registers().PC)
}

// Scenario: reading $FFFC while the Language Card's read layer is
// deactivated returns the ROM reset vector; activating the layer (via a
// genuine, side-effecting read of $C080) then reading $FFFC returns the
// Language Card's zero-initialized RAM instead.
func TestLanguageCardLayerDeactivationRestoresROM(t *testing.T) {
	m := buildTestMachine(t, nil)

	lo, err := m.Peek(0xFFFC)
	require.NoError(t, err)
	require.Equal(t, byte(0x34), lo)

	_, err = m.Bus.Read(0xC080, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)

	lo, err = m.Peek(0xFFFC)
	require.NoError(t, err)
	require.Equal(t, byte(0x00), lo)
}

// Scenario 1 (spec.md §8): R×2 protocol enables writes only after two
// consecutive reads of the same odd soft-switch offset.
func TestLanguageCardRx2EnablesWrites(t *testing.T) {
	m := buildTestMachine(t, nil)

	_, err := m.Bus.Read(0xC083, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.Error(t, m.Poke(0xD000, 0xAA), "write must still be disabled after a single read")

	_, err = m.Bus.Read(0xC083, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.NoError(t, m.Poke(0xD000, 0xAA))
	b, err := m.Peek(0xD000)
	require.NoError(t, err)
	require.Equal(t, byte(0xAA), b)
}

// Scenario 2 (spec.md §8): bank switching via $C08B preserves each bank's
// own contents independently.
func TestLanguageCardBankSwitchPreservesEachBank(t *testing.T) {
	m := buildTestMachine(t, nil)

	enableWrites := func() {
		_, err := m.Bus.Read(0xC083, membus.Width8, membus.AccessContext{})
		require.NoError(t, err)
		_, err = m.Bus.Read(0xC083, membus.Width8, membus.AccessContext{})
		require.NoError(t, err)
	}

	enableWrites()
	require.NoError(t, m.Poke(0xD000, 0x11))

	// Switch to bank 1 ($C08B, two reads — it's also an odd offset so the
	// R×2 edge detector sees it, but write_enabled is already true and
	// stays true since the protocol only ever sets/holds it).
	_, err := m.Bus.Read(0xC08B, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	_, err = m.Bus.Read(0xC08B, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	require.NoError(t, m.Poke(0xD000, 0x22))

	_, err = m.Bus.Read(0xC083, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	b, err := m.Peek(0xD000)
	require.NoError(t, err)
	require.Equal(t, byte(0x11), b)

	_, err = m.Bus.Read(0xC08B, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	b, err = m.Peek(0xD000)
	require.NoError(t, err)
	require.Equal(t, byte(0x22), b)
}

// Scenario 4 (spec.md §8): a side-effect-free snapshot read must not
// mutate device state, even though it touches the same handler offset a
// real access would.
func TestSoftSwitchSnapshotUnderDebugReadIsSideEffectFree(t *testing.T) {
	m := buildTestMachine(t, nil)

	_, err := m.Bus.Read(0xC083, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	_, err = m.Bus.Read(0xC083, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)

	before := m.SoftSwitches()
	_, err = m.Peek(0xC083)
	require.NoError(t, err)
	after := m.SoftSwitches()
	require.Equal(t, before, after)
}

// Scenario 5 (spec.md §8): a ROM hash mismatch with on_verification_fail =
// fallback substitutes a zero-filled buffer and the build still succeeds;
// with on_verification_fail = stop the build fails with a ResourceError.
func TestROMHashMismatchFallbackVsStop(t *testing.T) {
	wrongROM := buildTestROM()
	wrongROM[0] ^= 0xFF
	sum := sha256.Sum256(buildTestROM())
	declaredHash := hex.EncodeToString(sum[:])

	fallbackDoc := `{
		"addressSpace": 16,
		"memory": {
			"rom-images": [
				{ "name": "monitor", "source": "embedded://roms/iie.rom", "size": "0x3F00",
				  "required": true, "on_verification_fail": "fallback",
				  "hash": { "sha256": "` + declaredHash + `" } }
			],
			"regions": [
				{ "name": "monitor-rom", "type": "rom", "start": "0xC100", "size": "0x3F00", "permissions": "rx", "source": "monitor" }
			]
		}
	}`
	p, err := machine.ParseProfile([]byte(fallbackDoc))
	require.NoError(t, err)
	b := machine.NewBuilder(machine.Options{
		Embedded: func(string, string) ([]byte, error) { return wrongROM, nil },
	})
	m, err := b.Build(p)
	require.NoError(t, err)
	require.NotEmpty(t, m.Warnings())
	v, err := m.Peek(0xC100)
	require.NoError(t, err)
	require.Equal(t, byte(0x00), v)

	stopDoc := `{
		"addressSpace": 16,
		"memory": {
			"rom-images": [
				{ "name": "monitor", "source": "embedded://roms/iie.rom", "size": "0x3F00",
				  "required": true, "on_verification_fail": "stop",
				  "hash": { "sha256": "` + declaredHash + `" } }
			],
			"regions": [
				{ "name": "monitor-rom", "type": "rom", "start": "0xC100", "size": "0x3F00", "permissions": "rx", "source": "monitor" }
			]
		}
	}`
	p2, err := machine.ParseProfile([]byte(stopDoc))
	require.NoError(t, err)
	b2 := machine.NewBuilder(machine.Options{
		Embedded: func(string, string) ([]byte, error) { return wrongROM, nil },
	})
	_, err = b2.Build(p2)
	require.Error(t, err)
}

// Scenario 6 (spec.md §8): reset from Halted returns the machine to
// Stopped, restores the power-on soft-switch state, and re-derives PC from
// the reset vector.
func TestResetFromHaltedReturnsToStopped(t *testing.T) {
	m := buildTestMachine(t, nil)

	_, err := m.Bus.Read(0xC083, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	m.Bus.SetFaultPolicy(membus.FaultHalt)
	_, _ = m.Bus.Read(0xFFFFF, membus.Width8, membus.AccessContext{}) // out of range, forces a fault/halt
	err = m.Step()
	_ = err

	require.NoError(t, m.Reset())
	require.Equal(t, machine.Stopped, m.State())
	require.Equal(t, uint16(0xC134), m.Registers().PC)
}

// Known limitation (see devices/languagecard.go): split mode ($C081/$C089)
// decodes write-enabled but not read-from-RAM, so the layer activates with
// write-only permissions. A read through $D000 in this state faults instead
// of falling through to the base ROM; only the write side behaves as
// documented for real hardware.
func TestLanguageCardSplitModeWritesSucceedButReadsFault(t *testing.T) {
	m := buildTestMachine(t, nil)

	_, err := m.Bus.Read(0xC081, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	_, err = m.Bus.Read(0xC081, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)

	_, err = m.Peek(0xD000)
	require.Error(t, err, "split mode's documented limitation: readRAM decodes false, so the page has no read permission")

	require.NoError(t, m.Poke(0xD000, 0x55), "writeEnabled decodes true, same as full-RAM mode")
}

func auxmemProfileJSON() string {
	return `{
		"name": "pocket2e-aux-test",
		"addressSpace": 16,
		"cpu": { "type": "65C02" },
		"memory": {
			"rom-images": [
				{ "name": "monitor", "source": "embedded://roms/iie.rom", "size": "0x3F00", "required": true }
			],
			"regions": [
				{ "name": "main-ram", "type": "ram", "start": "0x0000", "size": "0xC000", "permissions": "rwx", "fill": "0x00" },
				{ "name": "monitor-rom", "type": "rom", "start": "0xC100", "size": "0x3F00", "permissions": "rx", "source": "monitor" }
			]
		},
		"devices": { "motherboard": [ { "type": "auxmem" } ] },
		"boot": { "autoStart": false }
	}`
}

// Builder must hand the Auxiliary Memory Controller the already-mapped
// main-bank RAM before its ConfigureMemory runs; otherwise any access
// through its RAMRD/RAMWRT-steered target nil-derefs.
func TestAuxMemControllerRAMRDSteersToAuxBank(t *testing.T) {
	p, err := machine.ParseProfile([]byte(auxmemProfileJSON()))
	require.NoError(t, err)
	b := machine.NewBuilder(machine.Options{
		Embedded: func(string, string) ([]byte, error) { return buildTestROM(), nil },
	})
	m, err := b.Build(p)
	require.NoError(t, err)

	require.NoError(t, m.Poke(0x5000, 0x11)) // main bank, RAMWRT off by default

	err = m.Bus.Write(0xC005, membus.Width8, 0, membus.AccessContext{Write: true}) // RAMWRT on
	require.NoError(t, err)
	require.NoError(t, m.Poke(0x5000, 0x22)) // now lands in aux bank

	err = m.Bus.Write(0xC004, membus.Width8, 0, membus.AccessContext{Write: true}) // RAMWRT off
	require.NoError(t, err)
	v, err := m.Peek(0x5000)
	require.NoError(t, err)
	require.Equal(t, byte(0x11), v, "main bank's byte must be untouched by the aux-bank write")

	err = m.Bus.Write(0xC003, membus.Width8, 0, membus.AccessContext{Write: true}) // RAMRD on
	require.NoError(t, err)
	v, err = m.Peek(0x5000)
	require.NoError(t, err)
	require.Equal(t, byte(0x22), v, "RAMRD steers the read to the aux bank's byte")
}

// testSlotCard is a minimal devices.SlotCard used only to exercise the slot
// manager's ROM window and bank-selection wiring end to end through a real
// Builder.Build, since no shipped card type implements SlotCard yet.
type testSlotCard struct {
	id           int
	slotROM      []byte
	expansionROM []byte
}

func (c *testSlotCard) ID() int                                        { return c.id }
func (c *testSlotCard) TypeID() string                                 { return "testcard" }
func (c *testSlotCard) DisplayName() string                            { return "testcard" }
func (c *testSlotCard) Kind() devices.Kind                              { return devices.Card }
func (c *testSlotCard) ConfigureMemory(ctx *devices.BuildContext) error { return nil }
func (c *testSlotCard) Initialize(ctx *devices.InitContext) error       { return nil }
func (c *testSlotCard) Reset()                                          {}
func (c *testSlotCard) SlotROM() []byte                                 { return c.slotROM }
func (c *testSlotCard) ExpansionROM() []byte                            { return c.expansionROM }

func slotManagerProfileJSON() string {
	return `{
		"name": "pocket2e-slot-test",
		"addressSpace": 16,
		"cpu": { "type": "65C02" },
		"memory": {
			"rom-images": [
				{ "name": "monitor", "source": "embedded://roms/iie.rom", "size": "0x3F00", "required": true }
			],
			"regions": [
				{ "name": "main-ram", "type": "ram", "start": "0x0000", "size": "0xC000", "permissions": "rwx", "fill": "0x00" },
				{ "name": "monitor-rom", "type": "rom", "start": "0xD000", "size": "0x3000", "permissions": "rx", "source": "monitor", "sourceOffset": "0x0F00" }
			]
		},
		"devices": {
			"motherboard": [ { "type": "slotmanager" } ],
			"slots": {
				"3": { "type": "testcard", "enabled": true, "config": { "marker": "33" } },
				"5": { "type": "testcard", "enabled": true, "config": { "marker": "55" } }
			}
		},
		"boot": { "autoStart": false }
	}`
}

// Accessing a card's own $Cn00-$CnFF ROM window must select its expansion
// bank for the shared $C800-$CFFF window as a side effect, the way real
// hardware's slot-ROM decoder does.
func TestSlotROMAccessSelectsExpansionBank(t *testing.T) {
	p, err := machine.ParseProfile([]byte(slotManagerProfileJSON()))
	require.NoError(t, err)

	slot3ROM := make([]byte, 0x100)
	slot3Exp := make([]byte, 0x0800)
	slot3Exp[0] = 0x33
	slot5ROM := make([]byte, 0x100)
	slot5Exp := make([]byte, 0x0800)
	slot5Exp[0] = 0x55

	reg := devices.NewFactoryRegistry()
	devices.RegisterDefaultDevices(reg)
	romByMarker := map[string][]byte{"33": slot3ROM, "55": slot5ROM}
	expByMarker := map[string][]byte{"33": slot3Exp, "55": slot5Exp}
	reg.Register("testcard", func(id int, name string, config map[string]any) (devices.Device, error) {
		marker, _ := config["marker"].(string)
		return &testSlotCard{id: id, slotROM: romByMarker[marker], expansionROM: expByMarker[marker]}, nil
	})

	b := machine.NewBuilder(machine.Options{
		Factories: reg,
		Embedded: func(string, string) ([]byte, error) { return buildTestROM(), nil },
	})
	m, err := b.Build(p)
	require.NoError(t, err)

	_, err = m.Bus.Read(0xC300, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	v, err := m.Peek(0xC800)
	require.NoError(t, err)
	require.Equal(t, byte(0x33), v, "$C800 must follow slot 3's own ROM access")

	_, err = m.Bus.Read(0xC500, membus.Width8, membus.AccessContext{})
	require.NoError(t, err)
	v, err = m.Peek(0xC800)
	require.NoError(t, err)
	require.Equal(t, byte(0x55), v, "$C800 must switch to slot 5 after its own ROM is accessed")
}
