package devices_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bad-mango-solutions/pocket2e/devices"
)

// Scenario (spec.md §4.6): the glyph-RAM soft switches toggle write-enable
// and bank-overlay state, the address/data port writes into the selected
// bank, and GetScanline routes through the glyph bank instead of ROM once
// overlay is active.
func TestCharacterDeviceGlyphRAMOverlayAndWriteEnable(t *testing.T) {
	bus, layers, groups, dispatcher := newTestBus(t)

	d := devices.NewCharacterDevice(1, "character")
	ctx := &devices.BuildContext{Bus: bus, Layers: layers, Groups: groups, Dispatcher: dispatcher}
	require.NoError(t, d.ConfigureMemory(ctx))
	require.NoError(t, d.LoadROM(make([]byte, 0x1000)))

	require.Equal(t, byte(0), d.GetScanline(0x00, 0, false, false), "overlay off: ROM is zero-filled")

	dispatcher.Write(0x28, 0) // glyph RAM write-enable on ($C028/$C029)
	dispatcher.Write(0x29, 0)
	dispatcher.Write(0x69, 0x00) // address pointer low byte: char 0, scanline 0 offset
	dispatcher.Write(0x6A, 0x00) // address pointer high byte
	dispatcher.Write(0x6B, 0x7F) // write glyph data at the pointer

	dispatcher.Write(0x24, 0) // overlay off
	require.Equal(t, byte(0), d.GetScanline(0x00, 0, false, false), "overlay still off after the write")

	dispatcher.Write(0x25, 0) // overlay on ($C025)
	require.Equal(t, byte(0x7F), d.GetScanline(0x00, 0, false, false), "overlay on: reads the glyph bank just written")

	dispatcher.Write(0x28, 0) // write-enable off again ($C028)
	dispatcher.Write(0x69, 0x00)
	dispatcher.Write(0x6A, 0x00)
	dispatcher.Write(0x6B, 0x00) // write attempt is discarded
	require.Equal(t, byte(0x7F), d.GetScanline(0x00, 0, false, false), "write-enable off: glyph bank is unchanged")
}

// Bank selection ($C026/$C027) must route the data port and GetScanline to
// bank 1 independently of bank 0's contents.
func TestCharacterDeviceGlyphBankSelectionIsIndependent(t *testing.T) {
	bus, layers, groups, dispatcher := newTestBus(t)

	d := devices.NewCharacterDevice(1, "character")
	ctx := &devices.BuildContext{Bus: bus, Layers: layers, Groups: groups, Dispatcher: dispatcher}
	require.NoError(t, d.ConfigureMemory(ctx))
	require.NoError(t, d.LoadROM(make([]byte, 0x1000)))

	dispatcher.Write(0x29, 0) // write-enable on ($C029)
	dispatcher.Write(0x69, 0)
	dispatcher.Write(0x6A, 0)
	dispatcher.Write(0x6B, 0x11) // bank 0's byte at offset 0

	dispatcher.Write(0x26, 0) // bank select -> bank 1 ($C027)
	dispatcher.Write(0x27, 0)
	dispatcher.Write(0x69, 0)
	dispatcher.Write(0x6A, 0)
	dispatcher.Write(0x6B, 0x22) // bank 1's byte at offset 0

	dispatcher.Write(0x25, 0) // overlay on, still bank 1 selected
	require.Equal(t, byte(0x22), d.GetScanline(0x00, 0, false, false))

	dispatcher.Write(0x26, 0) // back to bank 0
	require.Equal(t, byte(0x11), d.GetScanline(0x00, 0, false, false), "bank 0's byte must be untouched by bank 1's write")
}

// Flash suppression is one device-wide switch pair: it applies to every row
// GetScanline returns, ROM rows included, and is not tracked per glyph bank.
func TestCharacterDeviceFlashSuppression(t *testing.T) {
	bus, layers, groups, dispatcher := newTestBus(t)

	d := devices.NewCharacterDevice(1, "character")
	ctx := &devices.BuildContext{Bus: bus, Layers: layers, Groups: groups, Dispatcher: dispatcher}
	require.NoError(t, d.ConfigureMemory(ctx))
	require.NoError(t, d.LoadROM(make([]byte, 0x1000)))

	d.SetFlashState(true)
	require.Equal(t, byte(0x7F), d.GetScanline(0x00, 0, false, true), "no suppression: ROM's zero row inverts to all-set")

	dispatcher.Write(0x60, 0) // flash suppression off ($C060)
	require.Equal(t, byte(0x7F), d.GetScanline(0x00, 0, false, true))

	dispatcher.Write(0x68, 0) // flash suppression on ($C068)
	require.Equal(t, byte(0x00), d.GetScanline(0x00, 0, false, true), "suppression on: no inversion even though flashing")
}
