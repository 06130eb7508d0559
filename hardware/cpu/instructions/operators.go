package instructions

import "fmt"

// Operator defines which operation is performed by the opcode. Many opcodes
// can perform the same operation under different addressing modes.
type Operator int

// List of valid Operator values. This is the documented 65C02 instruction
// set: the NMOS 6502's illegal/undocumented opcodes (ANC, ARR, ASR, AXS,
// DCP, ISC, SLO, RLA, SRE, RRA, LAX, SAX, AHX, SHX, SHY, TAS, LAS, KIL) have
// no equivalent here, and the opcode space they occupied is filled with NOP
// on real 65C02 hardware.
const (
	NOP Operator = iota
	ADC
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRA
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	ORA
	PHA
	PHP
	PHX
	PHY
	PLA
	PLP
	PLX
	PLY
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STP
	STX
	STY
	STZ
	TAX
	TAY
	TRB
	TSB
	TSX
	TXA
	TXS
	TYA
	WAI
)

func (operator Operator) String() string {
	switch operator {
	case NOP:
		return "nop"
	case ADC:
		return "adc"
	case AND:
		return "and"
	case ASL:
		return "asl"
	case BCC:
		return "bcc"
	case BCS:
		return "bcs"
	case BEQ:
		return "beq"
	case BIT:
		return "bit"
	case BMI:
		return "bmi"
	case BNE:
		return "bne"
	case BPL:
		return "bpl"
	case BRA:
		return "bra"
	case BRK:
		return "brk"
	case BVC:
		return "bvc"
	case BVS:
		return "bvs"
	case CLC:
		return "clc"
	case CLD:
		return "cld"
	case CLI:
		return "cli"
	case CLV:
		return "clv"
	case CMP:
		return "cmp"
	case CPX:
		return "cpx"
	case CPY:
		return "cpy"
	case DEC:
		return "dec"
	case DEX:
		return "dex"
	case DEY:
		return "dey"
	case EOR:
		return "eor"
	case INC:
		return "inc"
	case INX:
		return "inx"
	case INY:
		return "iny"
	case JMP:
		return "jmp"
	case JSR:
		return "jsr"
	case LDA:
		return "lda"
	case LDX:
		return "ldx"
	case LDY:
		return "ldy"
	case LSR:
		return "lsr"
	case ORA:
		return "ora"
	case PHA:
		return "pha"
	case PHP:
		return "php"
	case PHX:
		return "phx"
	case PHY:
		return "phy"
	case PLA:
		return "pla"
	case PLP:
		return "plp"
	case PLX:
		return "plx"
	case PLY:
		return "ply"
	case ROL:
		return "rol"
	case ROR:
		return "ror"
	case RTI:
		return "rti"
	case RTS:
		return "rts"
	case SBC:
		return "sbc"
	case SEC:
		return "sec"
	case SED:
		return "sed"
	case SEI:
		return "sei"
	case STA:
		return "sta"
	case STP:
		return "stp"
	case STX:
		return "stx"
	case STY:
		return "sty"
	case STZ:
		return "stz"
	case TAX:
		return "tax"
	case TAY:
		return "tay"
	case TRB:
		return "trb"
	case TSB:
		return "tsb"
	case TSX:
		return "tsx"
	case TXA:
		return "txa"
	case TXS:
		return "txs"
	case TYA:
		return "tya"
	case WAI:
		return "wai"
	default:
		panic(fmt.Sprintf("unrecognised operator %d", operator))
	}
}
