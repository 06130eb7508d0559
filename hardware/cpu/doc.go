package cpu

// Typical usage: construct a CPU against a membus.Bus, bring it out of
// reset, then step it forward one instruction at a time, counting the
// cycles each Step reports against a budget.
//
//	mc := cpu.New(bus)
//	mc.Reset()
//	for budget > 0 {
//		if err := mc.Step(); err != nil {
//			return err
//		}
//		budget -= mc.LastResult.Cycles
//	}
//
// LastResult describes the instruction Step() just completed (or is
// completing, for a debugger probing mid-interrupt); see the execution
// package. SetIRQ/SetNMI raise interrupt lines that Step samples at
// instruction boundaries.
