// Package cpu implements the virtual processor and assembler for the ukernel system.
//
// Each Process owns six 32-bit registers (r0-r5), a zero/carry/sign flag set,
// a fixed-size heap of 32-bit words, and an immutable instruction stream
// addressed by word index. Step decodes and executes a single instruction,
// handing the syscall opcode to a Syscaller.
//
// The assembler translates the mnemonic source language into the flat word
// stream, resolving labels to absolute word indexes and evaluating
// compile-time expressions.
package cpu
