// Package disasm turns raw bus bytes into a textual 65C02 disassembly,
// keyed directly to the hardware/cpu/instructions definition table so the
// two never drift apart.
package disasm

import (
	"fmt"

	"github.com/bad-mango-solutions/pocket2e/hardware/cpu/instructions"
)

// ByteReader reads one byte at addr without side effects — machine.Machine's
// Peek satisfies this directly.
type ByteReader func(addr uint16) (byte, error)

// Entry is one decoded instruction: its address, raw encoding, and a
// formatted operand string ready for display.
type Entry struct {
	Address  uint16
	Bytes    []byte
	Mnemonic string
	Operand  string
	Def      *instructions.Definition
}

// String renders an Entry the way the debug console's `dasm` command does:
// "$addr  XX XX XX  MNEMONIC operand".
func (e Entry) String() string {
	hex := ""
	for _, b := range e.Bytes {
		hex += fmt.Sprintf("%02X ", b)
	}
	for len(hex) < 9 {
		hex += " "
	}
	if e.Operand == "" {
		return fmt.Sprintf("$%04X  %s%s", e.Address, hex, e.Mnemonic)
	}
	return fmt.Sprintf("$%04X  %s%s %s", e.Address, hex, e.Mnemonic, e.Operand)
}

var defs = instructions.GetDefinitions()

// Decode reads one instruction at addr and formats its operand.
func Decode(read ByteReader, addr uint16) (Entry, error) {
	op, err := read(addr)
	if err != nil {
		return Entry{}, err
	}
	def := defs[op]

	raw := make([]byte, def.Bytes)
	raw[0] = op
	for i := 1; i < def.Bytes; i++ {
		b, err := read(addr + uint16(i))
		if err != nil {
			return Entry{}, err
		}
		raw[i] = b
	}

	operand, err := formatOperand(def, raw, addr)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Address:  addr,
		Bytes:    raw,
		Mnemonic: def.Mnemonic,
		Operand:  operand,
		Def:      def,
	}, nil
}

// DecodeN decodes up to n instructions starting at addr, advancing by each
// decoded instruction's own byte length (not n fixed-width steps), stopping
// early if a read fails.
func DecodeN(read ByteReader, addr uint16, n int) ([]Entry, error) {
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		e, err := Decode(read, addr)
		if err != nil {
			return entries, err
		}
		entries = append(entries, e)
		addr += uint16(len(e.Bytes))
	}
	return entries, nil
}

func formatOperand(def *instructions.Definition, raw []byte, addr uint16) (string, error) {
	switch def.AddressingMode {
	case instructions.Implied, instructions.Accumulator:
		return "", nil
	case instructions.Immediate:
		return fmt.Sprintf("#$%02X", raw[1]), nil
	case instructions.ZeroPage:
		return fmt.Sprintf("$%02X", raw[1]), nil
	case instructions.ZeroPageIndexedX:
		return fmt.Sprintf("$%02X,X", raw[1]), nil
	case instructions.ZeroPageIndexedY:
		return fmt.Sprintf("$%02X,Y", raw[1]), nil
	case instructions.ZeroPageIndirect:
		return fmt.Sprintf("($%02X)", raw[1]), nil
	case instructions.IndexedIndirect:
		return fmt.Sprintf("($%02X,X)", raw[1]), nil
	case instructions.IndirectIndexed:
		return fmt.Sprintf("($%02X),Y", raw[1]), nil
	case instructions.Absolute:
		return fmt.Sprintf("$%04X", word(raw)), nil
	case instructions.AbsoluteIndexedX:
		return fmt.Sprintf("$%04X,X", word(raw)), nil
	case instructions.AbsoluteIndexedY:
		return fmt.Sprintf("$%04X,Y", word(raw)), nil
	case instructions.Indirect:
		return fmt.Sprintf("($%04X)", word(raw)), nil
	case instructions.AbsoluteIndexedIndirect:
		return fmt.Sprintf("($%04X,X)", word(raw)), nil
	case instructions.Relative:
		offset := int8(raw[1])
		target := uint16(int32(addr) + int32(def.Bytes) + int32(offset))
		return fmt.Sprintf("$%04X", target), nil
	default:
		return "", fmt.Errorf("disasm: unhandled addressing mode %d", def.AddressingMode)
	}
}

func word(raw []byte) uint16 {
	return uint16(raw[1]) | uint16(raw[2])<<8
}
