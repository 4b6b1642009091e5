// Package cpu implements the CHIP-8 virtual processor.
//
// The machine consists of 4KiB of byte addressable memory with the hex digit
// font at 0x000 and programs loaded at 0x200, sixteen 8-bit registers (v0-vf,
// vf doubling as the carry/borrow/collision flag), a 16-bit index register, a
// sixteen entry call stack, delay and sound timers, and a 64x32 monochrome
// framebuffer.
//
// Opcodes are 16-bit big-endian words. The mask/value table in opcode.go is
// the single contract used both to encode (MakeCode*) and to decode (Decode)
// instructions.
package cpu
