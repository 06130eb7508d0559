package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bad-mango-solutions/pocket2e/hardware/cpu"
	"github.com/bad-mango-solutions/pocket2e/membus"
)

type ramTarget struct {
	buf [0x10000]byte
}

func (r *ramTarget) Caps() membus.Caps { return membus.CapWriteSideEffects }
func (r *ramTarget) Read8(offset uint32, ctx membus.AccessContext) (byte, error) {
	return r.buf[offset], nil
}
func (r *ramTarget) Write8(offset uint32, value byte, ctx membus.AccessContext) error {
	r.buf[offset] = value
	return nil
}

func newTestCPU(t *testing.T) (*cpu.CPU, *ramTarget, *membus.Bus) {
	t.Helper()
	bus := membus.NewBus(16, 0x100)
	ram := &ramTarget{}
	require.NoError(t, bus.MapRegion(0, 0x10000, 1, membus.TagRAM, membus.PermRead|membus.PermWrite, ram, 0))
	mc := cpu.New(bus)
	return mc, ram, bus
}

func setResetVector(ram *ramTarget, addr uint16) {
	ram.buf[cpu.ResetVector] = byte(addr)
	ram.buf[cpu.ResetVector+1] = byte(addr >> 8)
}

func load(ram *ramTarget, addr uint16, bytes ...byte) {
	for i, b := range bytes {
		ram.buf[int(addr)+i] = b
	}
}

func TestResetLoadsPCFromVector(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x1234)
	require.NoError(t, mc.Reset())
	require.Equal(t, uint16(0x1234), mc.PC.Value())
	require.True(t, mc.Status.InterruptDisable)
}

func TestLDAImmediateSetsFlags(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x0200)
	load(ram, 0x0200, 0xA9, 0x00) // LDA #$00
	require.NoError(t, mc.Reset())
	require.NoError(t, mc.Step())
	require.Equal(t, uint8(0), mc.A.Value())
	require.True(t, mc.Status.Zero)
	require.False(t, mc.Status.Sign)
	require.Equal(t, 2, mc.LastResult.Cycles)
}

func TestADCCarryAndOverflow(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x0200)
	load(ram, 0x0200,
		0xA9, 0x7F, // LDA #$7F
		0x69, 0x01, // ADC #$01 -> overflow (positive+positive=negative)
	)
	require.NoError(t, mc.Reset())
	require.NoError(t, mc.Step())
	require.NoError(t, mc.Step())
	require.Equal(t, uint8(0x80), mc.A.Value())
	require.True(t, mc.Status.Overflow)
	require.True(t, mc.Status.Sign)
	require.False(t, mc.Status.Carry)
}

func TestADCDecimalMode(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x0200)
	load(ram, 0x0200,
		0xF8,       // SED
		0xA9, 0x09, // LDA #$09
		0x69, 0x01, // ADC #$01 -> decimal 10 = $10
	)
	require.NoError(t, mc.Reset())
	require.NoError(t, mc.Step())
	require.NoError(t, mc.Step())
	require.NoError(t, mc.Step())
	require.Equal(t, uint8(0x10), mc.A.Value())
	require.False(t, mc.Status.Carry)
}

func TestBranchNotTakenCostsBaseCycles(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x0200)
	load(ram, 0x0200, 0xA9, 0x00, 0xD0, 0x10) // LDA #$00 (sets Z) ; BNE +16
	require.NoError(t, mc.Reset())
	require.NoError(t, mc.Step()) // LDA #$00 sets Z
	require.NoError(t, mc.Step()) // BNE, not taken because Z is set
	require.False(t, mc.LastResult.BranchSuccess)
	require.Equal(t, 2, mc.LastResult.Cycles)
}

func TestBranchTakenAddsCycle(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x0200)
	load(ram, 0x0200, 0xA9, 0x01, 0xD0, 0x10) // LDA #$01 ; BNE +16
	require.NoError(t, mc.Reset())
	require.NoError(t, mc.Step())
	require.NoError(t, mc.Step())
	require.True(t, mc.LastResult.BranchSuccess)
	require.Equal(t, 3, mc.LastResult.Cycles)
	require.Equal(t, uint16(0x0204+0x10), mc.PC.Value())
}

func TestJSRThenRTSRoundTrips(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x0200)
	load(ram, 0x0200, 0x20, 0x00, 0x03) // JSR $0300
	load(ram, 0x0300, 0x60)            // RTS
	require.NoError(t, mc.Reset())
	require.NoError(t, mc.Step())
	require.Equal(t, uint16(0x0300), mc.PC.Value())
	require.NoError(t, mc.Step())
	require.Equal(t, uint16(0x0203), mc.PC.Value())
}

func TestStackPushPull(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x0200)
	load(ram, 0x0200,
		0xA9, 0x42, // LDA #$42
		0x48, // PHA
		0xA9, 0x00, // LDA #$00
		0x68, // PLA
	)
	require.NoError(t, mc.Reset())
	for i := 0; i < 4; i++ {
		require.NoError(t, mc.Step())
	}
	require.Equal(t, uint8(0x42), mc.A.Value())
}

func TestWAISleepsUntilIRQ(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x0200)
	load(ram, 0x0200, 0xCB) // WAI
	load(ram, cpu.IRQVector, 0x00, 0x04)
	require.NoError(t, mc.Reset())
	mc.Status.InterruptDisable = false
	require.NoError(t, mc.Step())
	require.True(t, mc.Waiting())

	require.NoError(t, mc.Step())
	require.True(t, mc.Waiting()) // no IRQ asserted yet, still sleeping

	mc.SetIRQ(true)
	require.NoError(t, mc.Step())
	require.False(t, mc.Waiting())
	require.Equal(t, uint16(0x0400), mc.PC.Value())
}

func TestSTPHaltsUntilReset(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x0200)
	load(ram, 0x0200, 0xDB) // STP
	require.NoError(t, mc.Reset())
	require.NoError(t, mc.Step())
	require.True(t, mc.Stopped())
	require.ErrorIs(t, mc.Step(), cpu.ErrStopped)
	require.NoError(t, mc.Reset())
	require.False(t, mc.Stopped())
}

// A caller (machine.Machine.Step) adds LastResult.Cycles to its running
// cycle count after every Step call, regardless of which internal path ran.
// Idling in WAI must report nothing so it doesn't re-add the cycle cost of
// the WAI instruction itself on every subsequent idle Step.
func TestWAIReportsNoCyclesWhileIdle(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x0200)
	load(ram, 0x0200, 0xCB) // WAI
	require.NoError(t, mc.Reset())

	require.NoError(t, mc.Step())
	require.True(t, mc.Waiting())
	require.True(t, mc.LastResult.Final, "the WAI instruction itself must still report its own cycles")
	require.Greater(t, mc.LastResult.Cycles, 0)

	require.NoError(t, mc.Step())
	require.True(t, mc.Waiting())
	require.False(t, mc.LastResult.Final, "idling must not re-report WAI's cycle cost")
	require.Equal(t, 0, mc.LastResult.Cycles)
}

// serviceInterrupt is called directly from Step, bypassing execute()'s own
// LastResult bookkeeping, so it must populate LastResult itself: 7 cycles,
// Final true.
func TestInterruptServiceReportsSevenCycles(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x0200)
	load(ram, 0x0200, 0xCB) // WAI
	load(ram, cpu.IRQVector, 0x00, 0x04)
	require.NoError(t, mc.Reset())
	mc.Status.InterruptDisable = false

	require.NoError(t, mc.Step())
	require.True(t, mc.Waiting())

	mc.SetIRQ(true)
	require.NoError(t, mc.Step())
	require.False(t, mc.Waiting())
	require.Equal(t, uint16(0x0400), mc.PC.Value())
	require.True(t, mc.LastResult.Final)
	require.Equal(t, 7, mc.LastResult.Cycles)
}

func TestBITImmediateOnlyAffectsZero(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x0200)
	load(ram, 0x0200,
		0xA9, 0xFF, // LDA #$FF (sets N)
		0x89, 0x00, // BIT #$00 -> Z set, N/V untouched by immediate form
	)
	require.NoError(t, mc.Reset())
	require.NoError(t, mc.Step())
	require.NoError(t, mc.Step())
	require.True(t, mc.Status.Zero)
	require.True(t, mc.Status.Sign) // still set from LDA, immediate BIT doesn't touch it
}

func TestSTZClearsMemory(t *testing.T) {
	mc, ram, _ := newTestCPU(t)
	setResetVector(ram, 0x0200)
	ram.buf[0x50] = 0xFF
	load(ram, 0x0200, 0x64, 0x50) // STZ $50
	require.NoError(t, mc.Reset())
	require.NoError(t, mc.Step())
	require.Equal(t, byte(0), ram.buf[0x50])
}
