// Package debugctl implements the minimum debug control surface spec.md
// §6.3 names: a small line-oriented command dispatcher over a running
// machine.Machine. None of its commands block the CPU on I/O — every
// command either runs synchronously against already-materialized state
// (registers, page table, fault ring) or drives the machine a bounded
// number of steps and returns.
package debugctl

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bad-mango-solutions/pocket2e/disasm"
	"github.com/bad-mango-solutions/pocket2e/machine"
)

// Console dispatches debug commands against a single machine.Machine.
type Console struct {
	Machine *machine.Machine
}

// NewConsole constructs a Console bound to m.
func NewConsole(m *machine.Machine) *Console {
	return &Console{Machine: m}
}

// Execute parses and runs one command line, returning its textual result.
// Unrecognised commands and malformed arguments return an error rather than
// panicking; the caller (a REPL, a test, a scripted session) decides how to
// surface it.
func (c *Console) Execute(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "regs":
		return c.regs()
	case "step":
		return c.step()
	case "run":
		return c.run(args)
	case "pause":
		c.Machine.Pause()
		return "paused", nil
	case "reset":
		if err := c.Machine.Reset(); err != nil {
			return "", err
		}
		return "reset", nil
	case "peek":
		return c.peek(args)
	case "poke":
		return c.poke(args)
	case "read":
		return c.read(args)
	case "write":
		return c.write(args)
	case "pages":
		return c.pages()
	case "regions":
		return c.regions()
	case "switches":
		return c.switches()
	case "load":
		return c.load(args)
	case "dasm":
		return c.dasm(args)
	case "fault":
		return c.fault()
	default:
		return "", fmt.Errorf("debugctl: unknown command %q", cmd)
	}
}

func (c *Console) regs() (string, error) {
	r := c.Machine.Registers()
	return fmt.Sprintf("PC=%04X A=%02X X=%02X Y=%02X SP=%02X P=%s cycles=%d state=%s",
		r.PC, r.A, r.X, r.Y, r.SP, r.Status, r.Cycles, c.Machine.State()), nil
}

func (c *Console) step() (string, error) {
	if err := c.Machine.Step(); err != nil {
		return "", err
	}
	return c.regs()
}

func (c *Console) run(args []string) (string, error) {
	n := 1 << 30 // effectively unbounded until Pause/Halted stops it
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("debugctl: run: invalid instruction count %q", args[0])
		}
		n = v
	}
	executed, err := c.Machine.Run(n)
	if err != nil {
		return fmt.Sprintf("ran %d instructions, stopped on error", executed), err
	}
	return fmt.Sprintf("ran %d instructions, state=%s", executed, c.Machine.State()), nil
}

func (c *Console) peek(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("debugctl: peek: usage: peek <addr>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return "", err
	}
	v, err := c.Machine.Peek(addr)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("$%04X: %02X", addr, v), nil
}

func (c *Console) poke(args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("debugctl: poke: usage: poke <addr> <value>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return "", err
	}
	value, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(args[1], "0x"), "$"), 16, 8)
	if err != nil {
		return "", fmt.Errorf("debugctl: poke: invalid value %q", args[1])
	}
	if err := c.Machine.Poke(addr, byte(value)); err != nil {
		return "", err
	}
	return fmt.Sprintf("$%04X <- %02X", addr, value), nil
}

func (c *Console) read(args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("debugctl: read: usage: read <addr> [n]")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return "", err
	}
	n := 16
	if len(args) > 1 {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("debugctl: read: invalid length %q", args[1])
		}
		n = v
	}
	bytes, err := c.Machine.PeekRange(addr, n)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "$%04X:", addr)
	for _, v := range bytes {
		fmt.Fprintf(&b, " %02X", v)
	}
	return b.String(), nil
}

func (c *Console) write(args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("debugctl: write: usage: write <addr> <bytes...>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return "", err
	}
	for i, a := range args[1:] {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(a, "0x"), "$"), 16, 8)
		if err != nil {
			return "", fmt.Errorf("debugctl: write: invalid byte %q", a)
		}
		if err := c.Machine.Poke(addr+uint16(i), byte(v)); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("wrote %d bytes at $%04X", len(args)-1, addr), nil
}

func (c *Console) pages() (string, error) {
	var b strings.Builder
	for _, p := range c.Machine.Pages() {
		fmt.Fprintf(&b, "page %5d  tag=%-8s perms=%s device=%d layer=%d\n",
			p.Page, p.Tag, p.Perms, p.DeviceID, p.LayerID)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// regions is pages() filtered to the page boundaries where tag, perms,
// device, or layer changes — the debug console's higher-level view of the same page
// table, collapsed to contiguous runs instead of one line per page.
func (c *Console) regions() (string, error) {
	pages := c.Machine.Pages()
	if len(pages) == 0 {
		return "", nil
	}
	var b strings.Builder
	start := pages[0]
	runStart := uint32(0)
	for i := 1; i <= len(pages); i++ {
		if i < len(pages) && pages[i].Tag == start.Tag && pages[i].Perms == start.Perms &&
			pages[i].DeviceID == start.DeviceID && pages[i].LayerID == start.LayerID {
			continue
		}
		fmt.Fprintf(&b, "pages %d-%d  tag=%-8s perms=%s device=%d layer=%d\n",
			runStart, uint32(i)-1, start.Tag, start.Perms, start.DeviceID, start.LayerID)
		if i < len(pages) {
			start = pages[i]
			runStart = uint32(i)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Console) switches() (string, error) {
	var b strings.Builder
	for _, s := range c.Machine.SoftSwitches() {
		fmt.Fprintf(&b, "%-20s $%04X %-5t %s\n", s.Name, s.Address, s.Active, s.Description)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Console) load(args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("debugctl: load: usage: load <path> <addr>")
	}
	addr, err := parseAddr(args[1])
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("debugctl: load: %w", err)
	}
	for i, v := range data {
		if err := c.Machine.Poke(addr+uint16(i), v); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("loaded %d bytes at $%04X", len(data), addr), nil
}

func (c *Console) dasm(args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("debugctl: dasm: usage: dasm <addr> [n]")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return "", err
	}
	n := 10
	if len(args) > 1 {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("debugctl: dasm: invalid count %q", args[1])
		}
		n = v
	}
	entries, err := disasm.DecodeN(c.Machine.Peek, addr, n)
	if err != nil && len(entries) == 0 {
		return "", err
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// fault reports the bus's fault ring; an addition beyond spec.md's literal
// command list, since the fault ring (spec.md §7) otherwise has no debug
// console surface at all.
func (c *Console) fault() (string, error) {
	faults := c.Machine.Faults()
	if len(faults) == 0 {
		return "no faults recorded", nil
	}
	var b strings.Builder
	for _, f := range faults {
		fmt.Fprintf(&b, "$%04X %s write=%t\n", f.Address, f.Kind, f.Write)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("debugctl: invalid address %q", s)
	}
	return uint16(v), nil
}
