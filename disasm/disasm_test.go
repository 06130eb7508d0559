package disasm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bad-mango-solutions/pocket2e/disasm"
)

func readerFor(mem map[uint16]byte) disasm.ByteReader {
	return func(addr uint16) (byte, error) {
		return mem[addr], nil
	}
}

func TestDecodeImmediate(t *testing.T) {
	read := readerFor(map[uint16]byte{0x1000: 0xA9, 0x1001: 0x42})
	e, err := disasm.Decode(read, 0x1000)
	require.NoError(t, err)
	require.Equal(t, "LDA", e.Mnemonic)
	require.Equal(t, "#$42", e.Operand)
	require.Equal(t, []byte{0xA9, 0x42}, e.Bytes)
}

func TestDecodeAbsolute(t *testing.T) {
	read := readerFor(map[uint16]byte{0x1000: 0xAD, 0x1001: 0x00, 0x1002: 0xC0})
	e, err := disasm.Decode(read, 0x1000)
	require.NoError(t, err)
	require.Equal(t, "LDA", e.Mnemonic)
	require.Equal(t, "$C000", e.Operand)
}

func TestDecodeRelativeComputesBranchTarget(t *testing.T) {
	// BEQ +4 at $1000: target = $1000 + 2 (instruction length) + 4 = $1006.
	read := readerFor(map[uint16]byte{0x1000: 0xF0, 0x1001: 0x04})
	e, err := disasm.Decode(read, 0x1000)
	require.NoError(t, err)
	require.Equal(t, "BEQ", e.Mnemonic)
	require.Equal(t, "$1006", e.Operand)
}

func TestDecodeImplied(t *testing.T) {
	read := readerFor(map[uint16]byte{0x1000: 0x00, 0x1001: 0x00})
	e, err := disasm.Decode(read, 0x1000)
	require.NoError(t, err)
	require.Equal(t, "BRK", e.Mnemonic)
	require.Empty(t, e.Operand)
}

func TestDecodeNAdvancesByInstructionLength(t *testing.T) {
	mem := map[uint16]byte{
		0x1000: 0xA9, 0x1001: 0x01, // LDA #$01 (2 bytes)
		0x1002: 0x4C, 0x1003: 0x00, 0x1004: 0x10, // JMP $1000 (3 bytes)
	}
	entries, err := disasm.DecodeN(readerFor(mem), 0x1000, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, uint16(0x1000), entries[0].Address)
	require.Equal(t, uint16(0x1002), entries[1].Address)
	require.Equal(t, "JMP", entries[1].Mnemonic)
	require.Equal(t, "$1000", entries[1].Operand)
}

func TestEntryStringIncludesAddressAndBytes(t *testing.T) {
	read := readerFor(map[uint16]byte{0x1000: 0xA9, 0x1001: 0x42})
	e, err := disasm.Decode(read, 0x1000)
	require.NoError(t, err)
	s := e.String()
	require.Contains(t, s, "$1000")
	require.Contains(t, s, "A9 42")
	require.Contains(t, s, "LDA #$42")
}
