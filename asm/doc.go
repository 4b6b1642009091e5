// Package asm is the assembler for the CHIP-8 instruction set.
//
// Source text is lexed into a stream of tokens, parsed into abstract
// instructions, and encoded into 16-bit opcodes. The Assembler adds a
// line-oriented preprocessor with .equ constants and $(...) compile-time
// expressions, and produces a Program listing that maps each opcode back to
// its source line.
package asm
