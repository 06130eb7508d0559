package instructions

// GetDefinitions returns the full 65C02 instruction set, indexed by opcode.
// Opcodes with no entry here behave as a single-byte, two-cycle NOP, which
// is how the 65C02 fills unused opcode slots in practice (a few Rockwell/WDC
// variants use wider NOPs for a handful of slots; this emulation does not
// distinguish them since no documented program relies on their exact byte
// length).
func GetDefinitions() []*Definition {
	defs := make([]*Definition, 256)
	for i := range defs {
		defs[i] = &Definition{
			OpCode:         uint8(i),
			Operator:       NOP,
			Mnemonic:       "NOP",
			Bytes:          1,
			Cycles:         2,
			AddressingMode: Implied,
			Effect:         Read,
		}
	}

	set := func(op uint8, operator Operator, mnemonic string, bytes, cycles int, mode AddressingMode, pageSensitive bool, effect EffectCategory) {
		defs[op] = &Definition{
			OpCode:         op,
			Operator:       operator,
			Mnemonic:       mnemonic,
			Bytes:          bytes,
			Cycles:         cycles,
			AddressingMode: mode,
			PageSensitive:  pageSensitive,
			Effect:         effect,
		}
	}

	// ADC
	set(0x69, ADC, "ADC", 2, 2, Immediate, false, Read)
	set(0x65, ADC, "ADC", 2, 3, ZeroPage, false, Read)
	set(0x75, ADC, "ADC", 2, 4, ZeroPageIndexedX, false, Read)
	set(0x6D, ADC, "ADC", 3, 4, Absolute, false, Read)
	set(0x7D, ADC, "ADC", 3, 4, AbsoluteIndexedX, true, Read)
	set(0x79, ADC, "ADC", 3, 4, AbsoluteIndexedY, true, Read)
	set(0x61, ADC, "ADC", 2, 6, IndexedIndirect, false, Read)
	set(0x71, ADC, "ADC", 2, 5, IndirectIndexed, true, Read)
	set(0x72, ADC, "ADC", 2, 5, ZeroPageIndirect, false, Read)

	// AND
	set(0x29, AND, "AND", 2, 2, Immediate, false, Read)
	set(0x25, AND, "AND", 2, 3, ZeroPage, false, Read)
	set(0x35, AND, "AND", 2, 4, ZeroPageIndexedX, false, Read)
	set(0x2D, AND, "AND", 3, 4, Absolute, false, Read)
	set(0x3D, AND, "AND", 3, 4, AbsoluteIndexedX, true, Read)
	set(0x39, AND, "AND", 3, 4, AbsoluteIndexedY, true, Read)
	set(0x21, AND, "AND", 2, 6, IndexedIndirect, false, Read)
	set(0x31, AND, "AND", 2, 5, IndirectIndexed, true, Read)
	set(0x32, AND, "AND", 2, 5, ZeroPageIndirect, false, Read)

	// ASL
	set(0x0A, ASL, "ASL", 1, 2, Accumulator, false, RMW)
	set(0x06, ASL, "ASL", 2, 5, ZeroPage, false, RMW)
	set(0x16, ASL, "ASL", 2, 6, ZeroPageIndexedX, false, RMW)
	set(0x0E, ASL, "ASL", 3, 6, Absolute, false, RMW)
	set(0x1E, ASL, "ASL", 3, 6, AbsoluteIndexedX, false, RMW)

	// branches
	set(0x10, BPL, "BPL", 2, 2, Relative, false, Flow)
	set(0x30, BMI, "BMI", 2, 2, Relative, false, Flow)
	set(0x50, BVC, "BVC", 2, 2, Relative, false, Flow)
	set(0x70, BVS, "BVS", 2, 2, Relative, false, Flow)
	set(0x90, BCC, "BCC", 2, 2, Relative, false, Flow)
	set(0xB0, BCS, "BCS", 2, 2, Relative, false, Flow)
	set(0xD0, BNE, "BNE", 2, 2, Relative, false, Flow)
	set(0xF0, BEQ, "BEQ", 2, 2, Relative, false, Flow)
	set(0x80, BRA, "BRA", 2, 3, Relative, false, Flow)

	// BIT
	set(0x89, BIT, "BIT", 2, 2, Immediate, false, Read)
	set(0x24, BIT, "BIT", 2, 3, ZeroPage, false, Read)
	set(0x34, BIT, "BIT", 2, 4, ZeroPageIndexedX, false, Read)
	set(0x2C, BIT, "BIT", 3, 4, Absolute, false, Read)
	set(0x3C, BIT, "BIT", 3, 4, AbsoluteIndexedX, true, Read)

	set(0x00, BRK, "BRK", 2, 7, Implied, false, Interrupt)

	set(0x18, CLC, "CLC", 1, 2, Implied, false, Read)
	set(0xD8, CLD, "CLD", 1, 2, Implied, false, Read)
	set(0x58, CLI, "CLI", 1, 2, Implied, false, Read)
	set(0xB8, CLV, "CLV", 1, 2, Implied, false, Read)

	// CMP
	set(0xC9, CMP, "CMP", 2, 2, Immediate, false, Read)
	set(0xC5, CMP, "CMP", 2, 3, ZeroPage, false, Read)
	set(0xD5, CMP, "CMP", 2, 4, ZeroPageIndexedX, false, Read)
	set(0xCD, CMP, "CMP", 3, 4, Absolute, false, Read)
	set(0xDD, CMP, "CMP", 3, 4, AbsoluteIndexedX, true, Read)
	set(0xD9, CMP, "CMP", 3, 4, AbsoluteIndexedY, true, Read)
	set(0xC1, CMP, "CMP", 2, 6, IndexedIndirect, false, Read)
	set(0xD1, CMP, "CMP", 2, 5, IndirectIndexed, true, Read)
	set(0xD2, CMP, "CMP", 2, 5, ZeroPageIndirect, false, Read)

	set(0xE0, CPX, "CPX", 2, 2, Immediate, false, Read)
	set(0xE4, CPX, "CPX", 2, 3, ZeroPage, false, Read)
	set(0xEC, CPX, "CPX", 3, 4, Absolute, false, Read)

	set(0xC0, CPY, "CPY", 2, 2, Immediate, false, Read)
	set(0xC4, CPY, "CPY", 2, 3, ZeroPage, false, Read)
	set(0xCC, CPY, "CPY", 3, 4, Absolute, false, Read)

	// DEC
	set(0x3A, DEC, "DEC", 1, 2, Accumulator, false, RMW)
	set(0xC6, DEC, "DEC", 2, 5, ZeroPage, false, RMW)
	set(0xD6, DEC, "DEC", 2, 6, ZeroPageIndexedX, false, RMW)
	set(0xCE, DEC, "DEC", 3, 6, Absolute, false, RMW)
	set(0xDE, DEC, "DEC", 3, 7, AbsoluteIndexedX, false, RMW)

	set(0xCA, DEX, "DEX", 1, 2, Implied, false, Read)
	set(0x88, DEY, "DEY", 1, 2, Implied, false, Read)

	// EOR
	set(0x49, EOR, "EOR", 2, 2, Immediate, false, Read)
	set(0x45, EOR, "EOR", 2, 3, ZeroPage, false, Read)
	set(0x55, EOR, "EOR", 2, 4, ZeroPageIndexedX, false, Read)
	set(0x4D, EOR, "EOR", 3, 4, Absolute, false, Read)
	set(0x5D, EOR, "EOR", 3, 4, AbsoluteIndexedX, true, Read)
	set(0x59, EOR, "EOR", 3, 4, AbsoluteIndexedY, true, Read)
	set(0x41, EOR, "EOR", 2, 6, IndexedIndirect, false, Read)
	set(0x51, EOR, "EOR", 2, 5, IndirectIndexed, true, Read)
	set(0x52, EOR, "EOR", 2, 5, ZeroPageIndirect, false, Read)

	// INC
	set(0x1A, INC, "INC", 1, 2, Accumulator, false, RMW)
	set(0xE6, INC, "INC", 2, 5, ZeroPage, false, RMW)
	set(0xF6, INC, "INC", 2, 6, ZeroPageIndexedX, false, RMW)
	set(0xEE, INC, "INC", 3, 6, Absolute, false, RMW)
	set(0xFE, INC, "INC", 3, 7, AbsoluteIndexedX, false, RMW)

	set(0xE8, INX, "INX", 1, 2, Implied, false, Read)
	set(0xC8, INY, "INY", 1, 2, Implied, false, Read)

	// JMP / JSR
	set(0x4C, JMP, "JMP", 3, 3, Absolute, false, Flow)
	set(0x6C, JMP, "JMP", 3, 6, Indirect, false, Flow)
	set(0x7C, JMP, "JMP", 3, 6, AbsoluteIndexedIndirect, false, Flow)
	set(0x20, JSR, "JSR", 3, 6, Absolute, false, Subroutine)

	// LDA
	set(0xA9, LDA, "LDA", 2, 2, Immediate, false, Read)
	set(0xA5, LDA, "LDA", 2, 3, ZeroPage, false, Read)
	set(0xB5, LDA, "LDA", 2, 4, ZeroPageIndexedX, false, Read)
	set(0xAD, LDA, "LDA", 3, 4, Absolute, false, Read)
	set(0xBD, LDA, "LDA", 3, 4, AbsoluteIndexedX, true, Read)
	set(0xB9, LDA, "LDA", 3, 4, AbsoluteIndexedY, true, Read)
	set(0xA1, LDA, "LDA", 2, 6, IndexedIndirect, false, Read)
	set(0xB1, LDA, "LDA", 2, 5, IndirectIndexed, true, Read)
	set(0xB2, LDA, "LDA", 2, 5, ZeroPageIndirect, false, Read)

	// LDX
	set(0xA2, LDX, "LDX", 2, 2, Immediate, false, Read)
	set(0xA6, LDX, "LDX", 2, 3, ZeroPage, false, Read)
	set(0xB6, LDX, "LDX", 2, 4, ZeroPageIndexedY, false, Read)
	set(0xAE, LDX, "LDX", 3, 4, Absolute, false, Read)
	set(0xBE, LDX, "LDX", 3, 4, AbsoluteIndexedY, true, Read)

	// LDY
	set(0xA0, LDY, "LDY", 2, 2, Immediate, false, Read)
	set(0xA4, LDY, "LDY", 2, 3, ZeroPage, false, Read)
	set(0xB4, LDY, "LDY", 2, 4, ZeroPageIndexedX, false, Read)
	set(0xAC, LDY, "LDY", 3, 4, Absolute, false, Read)
	set(0xBC, LDY, "LDY", 3, 4, AbsoluteIndexedX, true, Read)

	// LSR
	set(0x4A, LSR, "LSR", 1, 2, Accumulator, false, RMW)
	set(0x46, LSR, "LSR", 2, 5, ZeroPage, false, RMW)
	set(0x56, LSR, "LSR", 2, 6, ZeroPageIndexedX, false, RMW)
	set(0x4E, LSR, "LSR", 3, 6, Absolute, false, RMW)
	set(0x5E, LSR, "LSR", 3, 6, AbsoluteIndexedX, false, RMW)

	set(0xEA, NOP, "NOP", 1, 2, Implied, false, Read)

	// ORA
	set(0x09, ORA, "ORA", 2, 2, Immediate, false, Read)
	set(0x05, ORA, "ORA", 2, 3, ZeroPage, false, Read)
	set(0x15, ORA, "ORA", 2, 4, ZeroPageIndexedX, false, Read)
	set(0x0D, ORA, "ORA", 3, 4, Absolute, false, Read)
	set(0x1D, ORA, "ORA", 3, 4, AbsoluteIndexedX, true, Read)
	set(0x19, ORA, "ORA", 3, 4, AbsoluteIndexedY, true, Read)
	set(0x01, ORA, "ORA", 2, 6, IndexedIndirect, false, Read)
	set(0x11, ORA, "ORA", 2, 5, IndirectIndexed, true, Read)
	set(0x12, ORA, "ORA", 2, 5, ZeroPageIndirect, false, Read)

	// stack
	set(0x48, PHA, "PHA", 1, 3, Implied, false, Write)
	set(0x08, PHP, "PHP", 1, 3, Implied, false, Write)
	set(0xDA, PHX, "PHX", 1, 3, Implied, false, Write)
	set(0x5A, PHY, "PHY", 1, 3, Implied, false, Write)
	set(0x68, PLA, "PLA", 1, 4, Implied, false, Read)
	set(0x28, PLP, "PLP", 1, 4, Implied, false, Read)
	set(0xFA, PLX, "PLX", 1, 4, Implied, false, Read)
	set(0x7A, PLY, "PLY", 1, 4, Implied, false, Read)

	// ROL
	set(0x2A, ROL, "ROL", 1, 2, Accumulator, false, RMW)
	set(0x26, ROL, "ROL", 2, 5, ZeroPage, false, RMW)
	set(0x36, ROL, "ROL", 2, 6, ZeroPageIndexedX, false, RMW)
	set(0x2E, ROL, "ROL", 3, 6, Absolute, false, RMW)
	set(0x3E, ROL, "ROL", 3, 6, AbsoluteIndexedX, false, RMW)

	// ROR
	set(0x6A, ROR, "ROR", 1, 2, Accumulator, false, RMW)
	set(0x66, ROR, "ROR", 2, 5, ZeroPage, false, RMW)
	set(0x76, ROR, "ROR", 2, 6, ZeroPageIndexedX, false, RMW)
	set(0x6E, ROR, "ROR", 3, 6, Absolute, false, RMW)
	set(0x7E, ROR, "ROR", 3, 6, AbsoluteIndexedX, false, RMW)

	set(0x40, RTI, "RTI", 1, 6, Implied, false, Interrupt)
	set(0x60, RTS, "RTS", 1, 6, Implied, false, Subroutine)

	// SBC
	set(0xE9, SBC, "SBC", 2, 2, Immediate, false, Read)
	set(0xE5, SBC, "SBC", 2, 3, ZeroPage, false, Read)
	set(0xF5, SBC, "SBC", 2, 4, ZeroPageIndexedX, false, Read)
	set(0xED, SBC, "SBC", 3, 4, Absolute, false, Read)
	set(0xFD, SBC, "SBC", 3, 4, AbsoluteIndexedX, true, Read)
	set(0xF9, SBC, "SBC", 3, 4, AbsoluteIndexedY, true, Read)
	set(0xE1, SBC, "SBC", 2, 6, IndexedIndirect, false, Read)
	set(0xF1, SBC, "SBC", 2, 5, IndirectIndexed, true, Read)
	set(0xF2, SBC, "SBC", 2, 5, ZeroPageIndirect, false, Read)

	set(0x38, SEC, "SEC", 1, 2, Implied, false, Read)
	set(0xF8, SED, "SED", 1, 2, Implied, false, Read)
	set(0x78, SEI, "SEI", 1, 2, Implied, false, Read)

	// STA
	set(0x85, STA, "STA", 2, 3, ZeroPage, false, Write)
	set(0x95, STA, "STA", 2, 4, ZeroPageIndexedX, false, Write)
	set(0x8D, STA, "STA", 3, 4, Absolute, false, Write)
	set(0x9D, STA, "STA", 3, 5, AbsoluteIndexedX, false, Write)
	set(0x99, STA, "STA", 3, 5, AbsoluteIndexedY, false, Write)
	set(0x81, STA, "STA", 2, 6, IndexedIndirect, false, Write)
	set(0x91, STA, "STA", 2, 6, IndirectIndexed, false, Write)
	set(0x92, STA, "STA", 2, 5, ZeroPageIndirect, false, Write)

	set(0xDB, STP, "STP", 1, 3, Implied, false, Interrupt)

	set(0x86, STX, "STX", 2, 3, ZeroPage, false, Write)
	set(0x96, STX, "STX", 2, 4, ZeroPageIndexedY, false, Write)
	set(0x8E, STX, "STX", 3, 4, Absolute, false, Write)

	set(0x84, STY, "STY", 2, 3, ZeroPage, false, Write)
	set(0x94, STY, "STY", 2, 4, ZeroPageIndexedX, false, Write)
	set(0x8C, STY, "STY", 3, 4, Absolute, false, Write)

	// STZ (65C02 new)
	set(0x64, STZ, "STZ", 2, 3, ZeroPage, false, Write)
	set(0x74, STZ, "STZ", 2, 4, ZeroPageIndexedX, false, Write)
	set(0x9C, STZ, "STZ", 3, 4, Absolute, false, Write)
	set(0x9E, STZ, "STZ", 3, 5, AbsoluteIndexedX, false, Write)

	set(0xAA, TAX, "TAX", 1, 2, Implied, false, Read)
	set(0xA8, TAY, "TAY", 1, 2, Implied, false, Read)

	// TRB / TSB (65C02 new)
	set(0x14, TRB, "TRB", 2, 5, ZeroPage, false, RMW)
	set(0x1C, TRB, "TRB", 3, 6, Absolute, false, RMW)
	set(0x04, TSB, "TSB", 2, 5, ZeroPage, false, RMW)
	set(0x0C, TSB, "TSB", 3, 6, Absolute, false, RMW)

	set(0xBA, TSX, "TSX", 1, 2, Implied, false, Read)
	set(0x8A, TXA, "TXA", 1, 2, Implied, false, Read)
	set(0x9A, TXS, "TXS", 1, 2, Implied, false, Read)
	set(0x98, TYA, "TYA", 1, 2, Implied, false, Read)

	set(0xCB, WAI, "WAI", 1, 3, Implied, false, Interrupt)

	return defs
}
