package debugctl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bad-mango-solutions/pocket2e/debugctl"
	"github.com/bad-mango-solutions/pocket2e/machine"
)

func buildTestMachine(t *testing.T) *machine.Machine {
	t.Helper()
	doc := `{
		"addressSpace": 16,
		"memory": {
			"rom-images": [
				{ "name": "monitor", "source": "embedded://roms/iie.rom", "size": "0x3F00", "required": true }
			],
			"regions": [
				{ "name": "main-ram", "type": "ram", "start": "0x0000", "size": "0xC000", "permissions": "rwx" },
				{ "name": "monitor-rom", "type": "rom", "start": "0xC100", "size": "0x3F00", "permissions": "rx", "source": "monitor" }
			]
		},
		"devices": { "motherboard": [ { "type": "languagecard" } ] }
	}`
	p, err := machine.ParseProfile([]byte(doc))
	require.NoError(t, err)

	rom := make([]byte, 0x3F00)
	rom[0x3EFC] = 0x00
	rom[0x3EFD] = 0xC1 // reset vector -> $C100
	b := machine.NewBuilder(machine.Options{
		Embedded: func(string, string) ([]byte, error) { return rom, nil },
	})
	m, err := b.Build(p)
	require.NoError(t, err)
	return m
}

func TestConsoleRegsReportsPCFromResetVector(t *testing.T) {
	c := debugctl.NewConsole(buildTestMachine(t))
	out, err := c.Execute("regs")
	require.NoError(t, err)
	require.Contains(t, out, "PC=C100")
}

func TestConsolePeekPoke(t *testing.T) {
	c := debugctl.NewConsole(buildTestMachine(t))
	_, err := c.Execute("poke 0x0200 0xAB")
	require.NoError(t, err)
	out, err := c.Execute("peek 0x0200")
	require.NoError(t, err)
	require.Equal(t, "$0200: AB", out)
}

func TestConsoleReadWrite(t *testing.T) {
	c := debugctl.NewConsole(buildTestMachine(t))
	_, err := c.Execute("write 0x0300 11 22 33")
	require.NoError(t, err)
	out, err := c.Execute("read 0x0300 3")
	require.NoError(t, err)
	require.Equal(t, "$0300: 11 22 33", out)
}

func TestConsoleStepAdvancesPC(t *testing.T) {
	c := debugctl.NewConsole(buildTestMachine(t))
	before, err := c.Execute("regs")
	require.NoError(t, err)
	_, err = c.Execute("step")
	require.NoError(t, err)
	after, err := c.Execute("regs")
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestConsoleUnknownCommandErrors(t *testing.T) {
	c := debugctl.NewConsole(buildTestMachine(t))
	_, err := c.Execute("frobnicate")
	require.Error(t, err)
}

func TestConsolePagesAndRegionsReportSomething(t *testing.T) {
	c := debugctl.NewConsole(buildTestMachine(t))
	pages, err := c.Execute("pages")
	require.NoError(t, err)
	require.NotEmpty(t, pages)

	regions, err := c.Execute("regions")
	require.NoError(t, err)
	require.NotEmpty(t, regions)
	require.Less(t, strings.Count(regions, "\n"), strings.Count(pages, "\n"))
}

func TestConsoleSwitchesReportsLanguageCardState(t *testing.T) {
	c := debugctl.NewConsole(buildTestMachine(t))
	out, err := c.Execute("switches")
	require.NoError(t, err)
	require.Contains(t, out, "LC_READ_RAM")
}

func TestConsoleDasmDecodesFromPC(t *testing.T) {
	c := debugctl.NewConsole(buildTestMachine(t))
	out, err := c.Execute("dasm 0xC100 1")
	require.NoError(t, err)
	require.Contains(t, out, "$C100")
}

func TestConsoleFaultReportsNoFaultsAfterMappedPeek(t *testing.T) {
	c := debugctl.NewConsole(buildTestMachine(t))
	_, err := c.Execute("peek 0xC100")
	require.NoError(t, err)
	out, err := c.Execute("fault")
	require.NoError(t, err)
	require.Equal(t, "no faults recorded", out)
}

func TestConsoleResetReturnsToStopped(t *testing.T) {
	c := debugctl.NewConsole(buildTestMachine(t))
	out, err := c.Execute("reset")
	require.NoError(t, err)
	require.Equal(t, "reset", out)
	regs, err := c.Execute("regs")
	require.NoError(t, err)
	require.Contains(t, regs, "state=Stopped")
}
