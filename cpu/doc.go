// Package cpu implements the processor core and assembler for an RV32I
// instruction subset.
//
// The CPU consists of a program counter (PC), thirty-two 32-bit general
// purpose registers (x0-x31, with x0 hardwired to zero), an ALU, and
// separate bounded instruction and data memories. Each Step fetches,
// decodes and executes a single instruction, and reports whether execution
// continues, halted on the 'jal x0, 0' self jump, or stopped on an illegal
// instruction.
//
// The assembler provides the standard mnemonics for the subset, a few
// pseudo-instructions, labels, equates, and compile-time expression
// evaluation.
package cpu
