// Package execution tracks the result of instruction execution on the CPU.
// The Result type stores detailed information about each instruction
// executed, and can be used to produce output for disassemblers and
// debuggers.
//
// Result.IsValid() checks whether a Result is consistent with its
// instruction definition. The CPU package doesn't call this itself, to
// avoid the performance cost, but it's useful in tests and debugging.
package execution
