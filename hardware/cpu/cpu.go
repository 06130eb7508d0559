// Package cpu implements the 65C02 CPU: registers, the documented
// instruction set, interrupt handling (IRQ/NMI/reset), and the WAI/STP
// power-saving instructions. Register storage and arithmetic are delegated
// to the registers sub-package; the instruction table lives in instructions.
package cpu

import (
	"errors"
	"fmt"

	"github.com/bad-mango-solutions/pocket2e/hardware/cpu/execution"
	"github.com/bad-mango-solutions/pocket2e/hardware/cpu/instructions"
	. "github.com/bad-mango-solutions/pocket2e/hardware/cpu/instructions"
	"github.com/bad-mango-solutions/pocket2e/hardware/cpu/registers"
	"github.com/bad-mango-solutions/pocket2e/membus"
)

// Fixed vector addresses.
const (
	NMIVector   uint16 = 0xFFFA
	ResetVector uint16 = 0xFFFC
	IRQVector   uint16 = 0xFFFE
)

// Bus is the subset of membus.Bus the CPU needs to fetch and access memory.
type Bus interface {
	Read(addr membus.Address, width membus.Width, ctx membus.AccessContext) (uint32, error)
	Write(addr membus.Address, width membus.Width, value uint32, ctx membus.AccessContext) error
}

// CPU is a 65C02 core. Register logic is implemented by the registers
// sub-package; this type owns fetch/decode/execute and interrupt sequencing.
type CPU struct {
	bus Bus

	PC     registers.ProgramCounter
	A      registers.Register
	X      registers.Register
	Y      registers.Register
	SP     registers.StackPointer
	Status registers.Status

	defs []*instructions.Definition

	// waiting is true after WAI, until an IRQ or NMI becomes pending.
	waiting bool
	// stopped is true after STP; only Reset() clears it.
	stopped bool

	irqPending bool
	nmiPending bool

	// LastResult describes the most recently completed instruction.
	LastResult execution.Result

	// RandomSource seeds power-on register contents when non-nil. Left nil,
	// registers power on to zero.
	RandomSource func() uint8
}

// New constructs a CPU wired to bus. Call Reset to bring it out of its
// power-on state via the reset vector.
func New(bus Bus) *CPU {
	return &CPU{
		bus:    bus,
		PC:     registers.NewProgramCounter(0),
		A:      registers.NewRegister(0, "A"),
		X:      registers.NewRegister(0, "X"),
		Y:      registers.NewRegister(0, "Y"),
		SP:     registers.NewStackPointer(0xFD),
		Status: registers.NewStatus(),
		defs:   instructions.GetDefinitions(),
	}
}

// Plumb re-targets the CPU at a different bus, used after a snapshot/restore
// of the memory subsystem.
func (mc *CPU) Plumb(bus Bus) {
	mc.bus = bus
}

func (mc *CPU) String() string {
	return fmt.Sprintf("PC=%s A=%s X=%s Y=%s SP=%s P=%s",
		mc.PC.String(), mc.A.String(), mc.X.String(), mc.Y.String(), mc.SP.String(), mc.Status.String())
}

// Waiting reports whether the CPU is sleeping on a WAI instruction.
func (mc *CPU) Waiting() bool { return mc.waiting }

// Stopped reports whether the CPU has executed STP and is halted until
// Reset.
func (mc *CPU) Stopped() bool { return mc.stopped }

// SetIRQ raises or clears the level-sensitive IRQ line. The CPU samples this
// at instruction boundaries; it has no effect if the interrupt-disable flag
// is set, except to wake a WAI-sleeping CPU.
func (mc *CPU) SetIRQ(asserted bool) { mc.irqPending = asserted }

// SetNMI requests a non-maskable interrupt. NMI is edge-triggered: the
// request is consumed on the next instruction boundary regardless of the
// interrupt-disable flag.
func (mc *CPU) SetNMI() { mc.nmiPending = true }

// Reset brings the CPU out of STP/WAI, sets the interrupt-disable flag,
// clears the decimal flag, and loads PC from the reset vector. Register contents
// that survive a reset on real hardware (A, X, Y) are either left as-is or,
// if RandomSource is set, reseeded - emulating the floating state of
// unpowered silicon at cold start is a machine-level, not CPU-level,
// concern.
func (mc *CPU) Reset() error {
	mc.stopped = false
	mc.waiting = false
	mc.irqPending = false
	mc.nmiPending = false

	if mc.RandomSource != nil {
		mc.A.Load(mc.RandomSource())
		mc.X.Load(mc.RandomSource())
		mc.Y.Load(mc.RandomSource())
	}

	mc.SP.Load(0xFD)
	mc.Status.Load(0x00)
	mc.Status.InterruptDisable = true

	addr, err := mc.read16(ResetVector)
	if err != nil {
		return err
	}
	mc.PC.Load(addr)
	mc.LastResult.Reset()
	return nil
}

// ErrStopped is returned by Step when the CPU is halted on a STP
// instruction.
var ErrStopped = errors.New("cpu: stopped (STP); requires Reset")

func (mc *CPU) read8(addr uint16) (uint8, error) {
	v, err := mc.bus.Read(membus.Address(addr), membus.Width8, membus.AccessContext{})
	return uint8(v), err
}

func (mc *CPU) write8(addr uint16, value uint8) error {
	return mc.bus.Write(membus.Address(addr), membus.Width8, uint32(value), membus.AccessContext{Write: true})
}

func (mc *CPU) read16(addr uint16) (uint16, error) {
	lo, err := mc.read8(addr)
	if err != nil {
		return 0, err
	}
	hi, err := mc.read8(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// read16ZeroPage reads a little-endian word from a zero-page pointer,
// wrapping the high byte fetch within page zero (as all zero-page indirect
// addressing modes do).
func (mc *CPU) read16ZeroPage(zp uint8) (uint16, error) {
	lo, err := mc.read8(uint16(zp))
	if err != nil {
		return 0, err
	}
	hi, err := mc.read8(uint16(zp + 1))
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (mc *CPU) fetchByte() (uint8, error) {
	v, err := mc.read8(mc.PC.Value())
	if err != nil {
		return 0, err
	}
	mc.PC.Add(1)
	return v, nil
}

func (mc *CPU) fetchWord() (uint16, error) {
	lo, err := mc.fetchByte()
	if err != nil {
		return 0, err
	}
	hi, err := mc.fetchByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (mc *CPU) push(v uint8) error {
	if err := mc.write8(mc.SP.Address(), v); err != nil {
		return err
	}
	mc.SP.Load(mc.SP.Value() - 1)
	return nil
}

func (mc *CPU) pop() (uint8, error) {
	mc.SP.Load(mc.SP.Value() + 1)
	return mc.read8(mc.SP.Address())
}

func (mc *CPU) pushWord(v uint16) error {
	if err := mc.push(uint8(v >> 8)); err != nil {
		return err
	}
	return mc.push(uint8(v))
}

func (mc *CPU) popWord() (uint16, error) {
	lo, err := mc.pop()
	if err != nil {
		return 0, err
	}
	hi, err := mc.pop()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (mc *CPU) setNZ(v uint8) {
	mc.Status.Zero = v == 0
	mc.Status.Sign = v&0x80 == 0x80
}

// Step decodes and executes one instruction, or services a pending
// interrupt, or advances one idle cycle if the CPU is sleeping in WAI.
// Returns ErrStopped if the CPU is halted on STP.
func (mc *CPU) Step() error {
	if mc.stopped {
		return ErrStopped
	}

	if mc.nmiPending {
		mc.nmiPending = false
		mc.waiting = false
		return mc.serviceInterrupt(NMIVector, false)
	}
	if mc.waiting {
		if mc.irqPending && !mc.Status.InterruptDisable {
			mc.waiting = false
			return mc.serviceInterrupt(IRQVector, false)
		}
		if mc.irqPending {
			mc.waiting = false
		}
		// Idling in WAI consumes no instruction; report nothing so the
		// caller doesn't re-add the last real instruction's cycle count.
		mc.LastResult.Reset()
		return nil
	}
	if mc.irqPending && !mc.Status.InterruptDisable {
		return mc.serviceInterrupt(IRQVector, false)
	}

	return mc.execute()
}

// serviceInterrupt pushes PC and status and jumps through vector. brk
// indicates a software BRK (sets the B flag in the pushed status; hardware
// IRQ/NMI push it clear). Populates LastResult itself since it is called
// directly from Step, bypassing execute().
func (mc *CPU) serviceInterrupt(vector uint16, brk bool) error {
	result := &mc.LastResult
	result.Reset()

	if err := mc.pushWord(mc.PC.Value()); err != nil {
		result.Error = err.Error()
		return err
	}
	saved := mc.Status
	saved.Break = brk
	if err := mc.push(saved.Value()); err != nil {
		result.Error = err.Error()
		return err
	}
	mc.Status.InterruptDisable = true
	// the 65C02 clears the decimal flag on any interrupt entry (reset, NMI,
	// IRQ and BRK); the NMOS 6502 leaves it as-is.
	mc.Status.DecimalMode = false
	addr, err := mc.read16(vector)
	if err != nil {
		result.Error = err.Error()
		return err
	}
	mc.PC.Load(addr)

	result.Cycles = 7
	result.Final = true
	return nil
}

// RunUntil steps the CPU until at least minCycles have elapsed (as reported
// by LastResult.Cycles) or an error occurs. Returns the number of cycles
// actually consumed.
func (mc *CPU) RunUntil(minCycles int) (int, error) {
	spent := 0
	for spent < minCycles {
		if err := mc.Step(); err != nil {
			return spent, err
		}
		if mc.LastResult.Final {
			spent += mc.LastResult.Cycles
		} else {
			spent++
		}
	}
	return spent, nil
}

func (mc *CPU) execute() error {
	result := &mc.LastResult
	result.Reset()

	startPC := mc.PC.Value()
	opcode, err := mc.fetchByte()
	if err != nil {
		result.Error = err.Error()
		return err
	}
	defn := mc.defs[opcode]
	result.Defn = defn
	result.Address = startPC

	addr, addrValid, operand, pageCrossed, err := mc.decodeOperand(defn)
	if err != nil {
		result.Error = err.Error()
		return err
	}
	result.InstructionData = addr
	result.PageFault = pageCrossed && defn.PageSensitive

	cycles := defn.Cycles
	if result.PageFault {
		cycles++
	}

	branchTaken, extraBranchCycles, err := mc.dispatch(defn, addr, addrValid, operand)
	if err != nil {
		result.Error = err.Error()
		return err
	}
	if defn.IsBranch() {
		result.BranchSuccess = branchTaken
		if branchTaken {
			cycles += 1 + extraBranchCycles
		}
	}

	result.Cycles = cycles
	result.Final = true
	return nil
}

// decodeOperand fetches whatever operand bytes defn.AddressingMode requires
// and resolves them to an effective address (addrValid true) or an
// immediate/accumulator operand value. pageCrossed reports whether indexed
// or indirect-indexed addressing crossed a page boundary (for
// PageSensitive instructions this costs an extra cycle); for Relative mode
// it reports whether the branch target is on a different page than the
// following instruction (a taken far branch costs a further cycle).
func (mc *CPU) decodeOperand(defn *instructions.Definition) (addr uint16, addrValid bool, operand uint8, pageCrossed bool, err error) {
	switch defn.AddressingMode {
	case instructions.Implied:
		for i := 1; i < defn.Bytes; i++ {
			if _, err = mc.fetchByte(); err != nil {
				return
			}
		}
		return 0, false, 0, false, nil

	case instructions.Accumulator:
		return 0, false, mc.A.Value(), false, nil

	case instructions.Immediate:
		operand, err = mc.fetchByte()
		return 0, false, operand, false, err

	case instructions.Relative:
		var off uint8
		if off, err = mc.fetchByte(); err != nil {
			return
		}
		base := mc.PC.Value()
		target := base + uint16(int8(off))
		pageCrossed = (base & 0xFF00) != (target & 0xFF00)
		return target, true, 0, pageCrossed, nil

	case instructions.ZeroPage:
		var b uint8
		b, err = mc.fetchByte()
		return uint16(b), true, 0, false, err

	case instructions.ZeroPageIndexedX:
		var b uint8
		b, err = mc.fetchByte()
		return uint16(b + mc.X.Value()), true, 0, false, err

	case instructions.ZeroPageIndexedY:
		var b uint8
		b, err = mc.fetchByte()
		return uint16(b + mc.Y.Value()), true, 0, false, err

	case instructions.Absolute:
		addr, err = mc.fetchWord()
		return addr, true, 0, false, err

	case instructions.AbsoluteIndexedX:
		var base uint16
		if base, err = mc.fetchWord(); err != nil {
			return
		}
		target := base + uint16(mc.X.Value())
		pageCrossed = (base & 0xFF00) != (target & 0xFF00)
		return target, true, 0, pageCrossed, nil

	case instructions.AbsoluteIndexedY:
		var base uint16
		if base, err = mc.fetchWord(); err != nil {
			return
		}
		target := base + uint16(mc.Y.Value())
		pageCrossed = (base & 0xFF00) != (target & 0xFF00)
		return target, true, 0, pageCrossed, nil

	case instructions.Indirect:
		var ptr uint16
		if ptr, err = mc.fetchWord(); err != nil {
			return
		}
		addr, err = mc.read16(ptr)
		return addr, true, 0, false, err

	case instructions.AbsoluteIndexedIndirect:
		var base uint16
		if base, err = mc.fetchWord(); err != nil {
			return
		}
		addr, err = mc.read16(base + uint16(mc.X.Value()))
		return addr, true, 0, false, err

	case instructions.ZeroPageIndirect:
		var zp uint8
		if zp, err = mc.fetchByte(); err != nil {
			return
		}
		addr, err = mc.read16ZeroPage(zp)
		return addr, true, 0, false, err

	case instructions.IndexedIndirect:
		var zp uint8
		if zp, err = mc.fetchByte(); err != nil {
			return
		}
		addr, err = mc.read16ZeroPage(zp + mc.X.Value())
		return addr, true, 0, false, err

	case instructions.IndirectIndexed:
		var zp uint8
		if zp, err = mc.fetchByte(); err != nil {
			return
		}
		var base uint16
		if base, err = mc.read16ZeroPage(zp); err != nil {
			return
		}
		target := base + uint16(mc.Y.Value())
		pageCrossed = (base & 0xFF00) != (target & 0xFF00)
		return target, true, 0, pageCrossed, nil
	}

	return 0, false, 0, false, fmt.Errorf("cpu: unhandled addressing mode %d", defn.AddressingMode)
}

// loadValue resolves the byte an instruction with Effect Read or RMW
// operates on.
func (mc *CPU) loadValue(defn *instructions.Definition, addr uint16, addrValid bool, operand uint8) (uint8, error) {
	switch defn.AddressingMode {
	case instructions.Accumulator:
		return mc.A.Value(), nil
	case instructions.Immediate:
		return operand, nil
	}
	if addrValid {
		return mc.read8(addr)
	}
	return 0, nil
}

func (mc *CPU) branchCondition(op instructions.Operator) bool {
	switch op {
	case instructions.BPL:
		return !mc.Status.Sign
	case instructions.BMI:
		return mc.Status.Sign
	case instructions.BVC:
		return !mc.Status.Overflow
	case instructions.BVS:
		return mc.Status.Overflow
	case instructions.BCC:
		return !mc.Status.Carry
	case instructions.BCS:
		return mc.Status.Carry
	case instructions.BNE:
		return !mc.Status.Zero
	case instructions.BEQ:
		return mc.Status.Zero
	case instructions.BRA:
		return true
	}
	return false
}

// dispatch executes the decoded instruction. It returns whether a branch
// was taken, and one extra cycle if a taken branch crossed a page (the
// second of the two possible branch penalty cycles; the first is charged
// unconditionally by the caller for any taken branch).
func (mc *CPU) dispatch(defn *instructions.Definition, addr uint16, addrValid bool, operand uint8) (branchTaken bool, extraCycle int, err error) {
	op := defn.Operator

	if defn.IsBranch() {
		if mc.branchCondition(op) {
			base := mc.PC.Value()
			mc.PC.Load(addr)
			if (base & 0xFF00) != (addr & 0xFF00) {
				extraCycle = 1
			}
			return true, extraCycle, nil
		}
		return false, 0, nil
	}

	switch op {
	case NOP:
		return false, 0, nil

	case ADC:
		var v uint8
		if v, err = mc.loadValue(defn, addr, addrValid, operand); err != nil {
			return
		}
		mc.adc(v)
		return false, 0, nil

	case SBC:
		var v uint8
		if v, err = mc.loadValue(defn, addr, addrValid, operand); err != nil {
			return
		}
		mc.sbc(v)
		return false, 0, nil

	case AND:
		var v uint8
		if v, err = mc.loadValue(defn, addr, addrValid, operand); err != nil {
			return
		}
		mc.A.AND(v)
		mc.setNZ(mc.A.Value())
		return false, 0, nil

	case EOR:
		var v uint8
		if v, err = mc.loadValue(defn, addr, addrValid, operand); err != nil {
			return
		}
		mc.A.EOR(v)
		mc.setNZ(mc.A.Value())
		return false, 0, nil

	case ORA:
		var v uint8
		if v, err = mc.loadValue(defn, addr, addrValid, operand); err != nil {
			return
		}
		mc.A.ORA(v)
		mc.setNZ(mc.A.Value())
		return false, 0, nil

	case CMP:
		var v uint8
		if v, err = mc.loadValue(defn, addr, addrValid, operand); err != nil {
			return
		}
		mc.compare(mc.A.Value(), v)
		return false, 0, nil

	case CPX:
		var v uint8
		if v, err = mc.loadValue(defn, addr, addrValid, operand); err != nil {
			return
		}
		mc.compare(mc.X.Value(), v)
		return false, 0, nil

	case CPY:
		var v uint8
		if v, err = mc.loadValue(defn, addr, addrValid, operand); err != nil {
			return
		}
		mc.compare(mc.Y.Value(), v)
		return false, 0, nil

	case BIT:
		var v uint8
		if v, err = mc.loadValue(defn, addr, addrValid, operand); err != nil {
			return
		}
		mc.Status.Zero = (mc.A.Value() & v) == 0
		// the immediate form only ever affects the zero flag
		if defn.AddressingMode != instructions.Immediate {
			mc.Status.Sign = v&0x80 == 0x80
			mc.Status.Overflow = v&0x40 == 0x40
		}
		return false, 0, nil

	case LDA:
		var v uint8
		if v, err = mc.loadValue(defn, addr, addrValid, operand); err != nil {
			return
		}
		mc.A.Load(v)
		mc.setNZ(v)
		return false, 0, nil

	case LDX:
		var v uint8
		if v, err = mc.loadValue(defn, addr, addrValid, operand); err != nil {
			return
		}
		mc.X.Load(v)
		mc.setNZ(v)
		return false, 0, nil

	case LDY:
		var v uint8
		if v, err = mc.loadValue(defn, addr, addrValid, operand); err != nil {
			return
		}
		mc.Y.Load(v)
		mc.setNZ(v)
		return false, 0, nil

	case STA:
		err = mc.write8(addr, mc.A.Value())
		return false, 0, err

	case STX:
		err = mc.write8(addr, mc.X.Value())
		return false, 0, err

	case STY:
		err = mc.write8(addr, mc.Y.Value())
		return false, 0, err

	case STZ:
		err = mc.write8(addr, 0)
		return false, 0, err

	case ASL, LSR, ROL, ROR:
		err = mc.shiftRotate(op, defn, addr, addrValid)
		return false, 0, err

	case INC:
		err = mc.incDec(defn, addr, addrValid, 1)
		return false, 0, err

	case DEC:
		err = mc.incDec(defn, addr, addrValid, ^uint8(0))
		return false, 0, err

	case TRB:
		var v uint8
		if v, err = mc.read8(addr); err != nil {
			return
		}
		mc.Status.Zero = (v & mc.A.Value()) == 0
		err = mc.write8(addr, v&^mc.A.Value())
		return false, 0, err

	case TSB:
		var v uint8
		if v, err = mc.read8(addr); err != nil {
			return
		}
		mc.Status.Zero = (v & mc.A.Value()) == 0
		err = mc.write8(addr, v|mc.A.Value())
		return false, 0, err

	case INX:
		mc.X.Load(mc.X.Value() + 1)
		mc.setNZ(mc.X.Value())
		return false, 0, nil
	case INY:
		mc.Y.Load(mc.Y.Value() + 1)
		mc.setNZ(mc.Y.Value())
		return false, 0, nil
	case DEX:
		mc.X.Load(mc.X.Value() - 1)
		mc.setNZ(mc.X.Value())
		return false, 0, nil
	case DEY:
		mc.Y.Load(mc.Y.Value() - 1)
		mc.setNZ(mc.Y.Value())
		return false, 0, nil

	case TAX:
		mc.X.Load(mc.A.Value())
		mc.setNZ(mc.X.Value())
		return false, 0, nil
	case TAY:
		mc.Y.Load(mc.A.Value())
		mc.setNZ(mc.Y.Value())
		return false, 0, nil
	case TXA:
		mc.A.Load(mc.X.Value())
		mc.setNZ(mc.A.Value())
		return false, 0, nil
	case TYA:
		mc.A.Load(mc.Y.Value())
		mc.setNZ(mc.A.Value())
		return false, 0, nil
	case TSX:
		mc.X.Load(mc.SP.Value())
		mc.setNZ(mc.X.Value())
		return false, 0, nil
	case TXS:
		mc.SP.Load(mc.X.Value())
		return false, 0, nil

	case CLC:
		mc.Status.Carry = false
		return false, 0, nil
	case SEC:
		mc.Status.Carry = true
		return false, 0, nil
	case CLI:
		mc.Status.InterruptDisable = false
		return false, 0, nil
	case SEI:
		mc.Status.InterruptDisable = true
		return false, 0, nil
	case CLD:
		mc.Status.DecimalMode = false
		return false, 0, nil
	case SED:
		mc.Status.DecimalMode = true
		return false, 0, nil
	case CLV:
		mc.Status.Overflow = false
		return false, 0, nil

	case PHA:
		err = mc.push(mc.A.Value())
		return false, 0, err
	case PHX:
		err = mc.push(mc.X.Value())
		return false, 0, err
	case PHY:
		err = mc.push(mc.Y.Value())
		return false, 0, err
	case PHP:
		s := mc.Status
		s.Break = true
		err = mc.push(s.Value())
		return false, 0, err
	case PLA:
		var v uint8
		if v, err = mc.pop(); err != nil {
			return
		}
		mc.A.Load(v)
		mc.setNZ(v)
		return false, 0, nil
	case PLX:
		var v uint8
		if v, err = mc.pop(); err != nil {
			return
		}
		mc.X.Load(v)
		mc.setNZ(v)
		return false, 0, nil
	case PLY:
		var v uint8
		if v, err = mc.pop(); err != nil {
			return
		}
		mc.Y.Load(v)
		mc.setNZ(v)
		return false, 0, nil
	case PLP:
		var v uint8
		if v, err = mc.pop(); err != nil {
			return
		}
		mc.Status.Load(v)
		return false, 0, nil

	case JMP:
		mc.PC.Load(addr)
		return false, 0, nil

	case JSR:
		if err = mc.pushWord(mc.PC.Value() - 1); err != nil {
			return
		}
		mc.PC.Load(addr)
		return false, 0, nil

	case RTS:
		var ret uint16
		if ret, err = mc.popWord(); err != nil {
			return
		}
		mc.PC.Load(ret + 1)
		return false, 0, nil

	case RTI:
		var s uint8
		if s, err = mc.pop(); err != nil {
			return
		}
		mc.Status.Load(s)
		var ret uint16
		if ret, err = mc.popWord(); err != nil {
			return
		}
		mc.PC.Load(ret)
		return false, 0, nil

	case BRK:
		err = mc.serviceInterrupt(IRQVector, true)
		return false, 0, err

	case WAI:
		mc.waiting = true
		mc.LastResult.CPUBug = string(cpuBugWAI())
		return false, 0, nil

	case STP:
		mc.stopped = true
		mc.LastResult.CPUBug = string(cpuBugSTP())
		return false, 0, nil
	}

	return false, 0, fmt.Errorf("cpu: unimplemented operator %s", op)
}

func (mc *CPU) adc(v uint8) {
	if mc.Status.DecimalMode {
		carry, zero, overflow, sign := mc.A.AddDecimal(v, mc.Status.Carry)
		mc.Status.Carry = carry
		mc.Status.Zero = zero
		mc.Status.Overflow = overflow
		mc.Status.Sign = sign
		return
	}
	carry, overflow := mc.A.Add(v, mc.Status.Carry)
	mc.Status.Carry = carry
	mc.Status.Overflow = overflow
	mc.setNZ(mc.A.Value())
}

func (mc *CPU) sbc(v uint8) {
	if mc.Status.DecimalMode {
		carry, zero, overflow, sign := mc.A.SubtractDecimal(v, mc.Status.Carry)
		mc.Status.Carry = carry
		mc.Status.Zero = zero
		mc.Status.Overflow = overflow
		mc.Status.Sign = sign
		return
	}
	carry, overflow := mc.A.Subtract(v, mc.Status.Carry)
	mc.Status.Carry = carry
	mc.Status.Overflow = overflow
	mc.setNZ(mc.A.Value())
}

func (mc *CPU) compare(reg, v uint8) {
	result := reg - v
	mc.Status.Carry = reg >= v
	mc.setNZ(result)
}

func (mc *CPU) shiftRotate(op instructions.Operator, defn *instructions.Definition, addr uint16, addrValid bool) error {
	if defn.AddressingMode == instructions.Accumulator {
		var carry bool
		switch op {
		case ASL:
			carry = mc.A.ASL()
		case LSR:
			carry = mc.A.LSR()
		case ROL:
			carry = mc.A.ROL(mc.Status.Carry)
		case ROR:
			carry = mc.A.ROR(mc.Status.Carry)
		}
		mc.Status.Carry = carry
		mc.setNZ(mc.A.Value())
		return nil
	}

	v, err := mc.read8(addr)
	if err != nil {
		return err
	}

	var carry bool
	var result uint8
	switch op {
	case ASL:
		carry = v&0x80 == 0x80
		result = v << 1
	case LSR:
		carry = v&0x01 == 0x01
		result = v >> 1
	case ROL:
		carry = v&0x80 == 0x80
		result = v << 1
		if mc.Status.Carry {
			result |= 0x01
		}
	case ROR:
		carry = v&0x01 == 0x01
		result = v >> 1
		if mc.Status.Carry {
			result |= 0x80
		}
	}

	if err := mc.write8(addr, result); err != nil {
		return err
	}
	mc.Status.Carry = carry
	mc.setNZ(result)
	return nil
}

func (mc *CPU) incDec(defn *instructions.Definition, addr uint16, addrValid bool, delta uint8) error {
	if defn.AddressingMode == instructions.Accumulator {
		mc.A.Load(mc.A.Value() + delta)
		mc.setNZ(mc.A.Value())
		return nil
	}
	v, err := mc.read8(addr)
	if err != nil {
		return err
	}
	v += delta
	if err := mc.write8(addr, v); err != nil {
		return err
	}
	mc.setNZ(v)
	return nil
}

func cpuBugWAI() execution.Bug { return execution.WAIResumedByIRQ }
func cpuBugSTP() execution.Bug { return execution.STPHalted }
