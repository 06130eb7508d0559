// Package membus implements the page-mapped address bus at the heart of the
// emulation core: physical memory buffers, typed bus targets, a page table
// with layered priority overlays, and swap groups for bank switching.
package membus

// Address is a bus address. 32 bits wide so the type can outlive a strict
// 16-bit 65C02 profile; concrete profiles constrain addressSpaceBits to 16.
type Address uint32

// Cycle is a monotonic CPU cycle count.
type Cycle uint64

// Caps is a bitset of capabilities a bus target declares.
type Caps uint8

const (
	// CapSideEffectFree means ordinary reads never mutate device state (set
	// on RAM/ROM targets; I/O targets must additionally honour the
	// per-access SideEffectFree context flag).
	CapSideEffectFree Caps = 1 << iota
	// CapWriteSideEffects means writes may mutate device state beyond the
	// written bytes.
	CapWriteSideEffects
	// CapWide16 means the target supports atomic 16-bit access.
	CapWide16
	// CapWide32 means the target supports atomic 32-bit access.
	CapWide32
	// CapMayFault means accesses to this target may raise a fault (used by
	// composite/I-O targets whose sub-ranges can be unmapped).
	CapMayFault
)

func (c Caps) has(f Caps) bool { return c&f != 0 }

// Perms is a permission bitset: readable, writable, executable.
type Perms uint8

const (
	PermRead Perms = 1 << iota
	PermWrite
	PermExec
)

// ParsePerms parses a profile permission string such as "rwx" or "rx".
func ParsePerms(s string) Perms {
	var p Perms
	for _, c := range s {
		switch c {
		case 'r', 'R':
			p |= PermRead
		case 'w', 'W':
			p |= PermWrite
		case 'x', 'X':
			p |= PermExec
		}
	}
	return p
}

func (p Perms) String() string {
	out := [3]byte{'-', '-', '-'}
	if p&PermRead != 0 {
		out[0] = 'r'
	}
	if p&PermWrite != 0 {
		out[1] = 'w'
	}
	if p&PermExec != 0 {
		out[2] = 'x'
	}
	return string(out[:])
}

// RegionTag classifies what kind of target a page's entry serves.
type RegionTag int

const (
	TagUnmapped RegionTag = iota
	TagRAM
	TagROM
	TagIO
)

func (t RegionTag) String() string {
	switch t {
	case TagRAM:
		return "RAM"
	case TagROM:
		return "ROM"
	case TagIO:
		return "I/O"
	default:
		return "Unmapped"
	}
}

// Width identifies an access width in bytes.
type Width int

const (
	Width8  Width = 1
	Width16 Width = 2
	Width32 Width = 4
)

// AccessContext conveys the side-effect flag, originating device, and
// direction/width of a single bus access.
type AccessContext struct {
	SideEffectFree bool
	DeviceID       int
	Width          Width
	Write          bool
}

// Debug builds a side-effect-free read context, the one debug readers
// (register dumps, disassembler lookahead, pages snapshot) must use.
func Debug(width Width) AccessContext {
	return AccessContext{SideEffectFree: true, Width: width}
}
