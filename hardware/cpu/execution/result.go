package execution

import (
	"github.com/bad-mango-solutions/pocket2e/hardware/cpu/instructions"
)

// Result records the outcome of a single instruction executed on the CPU,
// including the address it was read from, a reference to the instruction
// definition, and other execution details useful to a disassembler or
// debugger.
type Result struct {
	// a reference to the instruction definition
	Defn *instructions.Definition

	// the address at which the instruction began
	Address uint16

	// instruction data is the operand data decoded for the instruction. for
	// a branch instruction this is the resolved branch target address; for
	// absolute/zero-page modes it's the resolved effective address.
	InstructionData uint16

	// the actual number of cycles taken by the instruction - usually the
	// same as Defn.Cycles but in the case of page-crossing reads and taken
	// branches, this value may be one or two more
	Cycles int

	// whether an extra cycle was required because of a page cross during
	// indexed addressing
	PageFault bool

	// whether a known CPU condition (not a bug on the 65C02, but a state
	// worth surfacing to a debugger - e.g. WAI or STP) was triggered
	CPUBug string

	// error string, set when memory access during execution failed
	Error string

	// whether a branch instruction's test passed (branched) or not. only
	// meaningful in conjunction with Defn.IsBranch()
	BranchSuccess bool

	// whether this Result is complete
	Final bool
}

// Reset nullifies all members of the Result instance.
func (r *Result) Reset() {
	r.Defn = nil
	r.Address = 0
	r.InstructionData = 0
	r.Cycles = 0
	r.PageFault = false
	r.CPUBug = ""
	r.Error = ""
	r.BranchSuccess = false
	r.Final = false
}
