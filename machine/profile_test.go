package machine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bad-mango-solutions/pocket2e/machine"
)

func TestHexValueParsesPrefixedAndBarePlainHex(t *testing.T) {
	var h machine.HexValue
	require.NoError(t, h.UnmarshalJSON([]byte(`"0x4000"`)))
	require.EqualValues(t, 0x4000, h)

	require.NoError(t, h.UnmarshalJSON([]byte(`"4000"`)))
	require.EqualValues(t, 0x4000, h)

	require.NoError(t, h.UnmarshalJSON([]byte(`16384`)))
	require.EqualValues(t, 16384, h)
}

func TestParseProfileAbbreviatedSchema(t *testing.T) {
	doc := `{
		"name": "pocket2e",
		"addressSpace": 16,
		"cpu": { "type": "65C02", "clockHz": 1022727 },
		"memory": {
			"rom-images": [
				{ "name": "monitor", "source": "app://roms/iie.rom", "size": "0x4000", "required": true, "on_verification_fail": "stop" }
			],
			"regions": [
				{ "name": "main-ram", "type": "ram", "start": "0x0000", "size": "0xC000", "permissions": "rwx", "fill": "0x00" },
				{ "name": "monitor-rom", "type": "rom", "start": "0xC000", "size": "0x4000", "permissions": "rx", "source": "monitor" }
			]
		},
		"devices": {
			"motherboard": [
				{ "type": "languagecard" }
			],
			"slots": {}
		},
		"boot": { "autoStart": true, "startupSlot": 6 }
	}`

	p, err := machine.ParseProfile([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, "pocket2e", p.Name)
	require.EqualValues(t, 16, p.AddressSpace)
	require.Equal(t, "65C02", p.CPU.Type)
	require.Len(t, p.Memory.Regions, 2)
	require.EqualValues(t, 0xC000, p.Memory.Regions[1].Start)
	require.True(t, p.Devices.Motherboard[0].Enabled)
	require.True(t, p.Boot.AutoStart)
	require.Equal(t, 6, p.Boot.StartupSlot)
}

func TestParseProfileRejectsDuplicateRegionNames(t *testing.T) {
	doc := `{
		"addressSpace": 16,
		"memory": { "regions": [
			{ "name": "a", "type": "ram", "start": "0x0000", "size": "0x1000" },
			{ "name": "a", "type": "ram", "start": "0x1000", "size": "0x1000" }
		]}
	}`
	_, err := machine.ParseProfile([]byte(doc))
	require.Error(t, err)
}

func TestParseProfileRejectsUnknownRegionType(t *testing.T) {
	doc := `{
		"addressSpace": 16,
		"memory": { "regions": [
			{ "name": "a", "type": "nvram", "start": "0x0000", "size": "0x1000" }
		]}
	}`
	_, err := machine.ParseProfile([]byte(doc))
	require.Error(t, err)
}

func TestParseProfileRejectsDanglingROMReference(t *testing.T) {
	doc := `{
		"addressSpace": 16,
		"memory": { "regions": [
			{ "name": "a", "type": "rom", "start": "0xC000", "size": "0x1000", "source": "nope" }
		]}
	}`
	_, err := machine.ParseProfile([]byte(doc))
	require.Error(t, err)
}
