// Package registers implements the register set of the 65C02: program
// counter, status register, stack pointer, and the 8 bit accumulator type
// used for A, X and Y.
//
// The 8 bit registers are implemented as the Register type, which defines
// all the basic operations available to the 65C02: load, add, subtract,
// logical operations and shifts/rotates. It also implements the tests
// required for status updates: is the value zero, is the number negative,
// is the overflow bit set.
//
// The program counter by comparison is 16 bits wide and defines only the
// load and add operations.
//
// The status register is implemented as a series of flags. Setting of flags
// is done directly. For instance, in the CPU, we might have this sequence of
// function calls:
//
//	a.Load(10)
//	a.Subtract(11, false)
//	sr.Zero = a.IsZero()
//
// In this case, the zero flag in the status register will be false.
package registers
