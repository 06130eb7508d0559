package execution

// Bug notes an unusual but correct CPU condition worth surfacing to a
// debugger. The 65C02 fixes the NMOS 6502's indexed-indirect and JMP
// indirect page-wrap bugs, so this isn't a list of hardware bugs - it's a
// list of states a disassembler or debugger needs to know about explicitly.
type Bug string

const (
	NoBug Bug = ""

	// WAIResumedByIRQ notes that a WAI instruction has put the CPU to sleep
	// until an IRQ or NMI becomes pending; it is recorded when WAI executes.
	WAIResumedByIRQ Bug = "wai resumed by irq/nmi"

	// STPHalted notes that a STP instruction has halted the CPU; only a
	// Reset() will resume it.
	STPHalted Bug = "stp halted cpu"
)
