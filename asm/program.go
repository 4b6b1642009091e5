package asm

import (
	"iter"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/rom"
)

// Opcode is a single assembled instruction and its source.
type Opcode struct {
	LineNo      int         // Source line number.
	Addr        uint16      // Load address.
	Text        string      // Source line, without comment.
	Instruction Instruction // Parsed instruction.
	Code        cpu.Code    // Encoded instruction.
}

// Program is an assembled program listing.
type Program struct {
	Opcodes []Opcode
}

// Debug locates an address in the listing.
type Debug struct {
	*Opcode
	Offset int // Byte offset of the address within the opcode.
}

// Debug returns the opcode that covers addr. Opcode is nil if no opcode
// covers it.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if addr >= op.Addr && addr < op.Addr+2 {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Offset: int(addr - op.Addr),
			}
			break
		}
	}

	return
}

// Codes iterates over the load address and code of each opcode.
func (prog *Program) Codes() iter.Seq2[uint16, cpu.Code] {
	return func(yield func(addr uint16, code cpu.Code) bool) {
		for _, op := range prog.Opcodes {
			if !yield(op.Addr, op.Code) {
				return
			}
		}
	}
}

// code iterates over the codes alone.
func (prog *Program) code() iter.Seq[cpu.Code] {
	return func(yield func(code cpu.Code) bool) {
		for _, code := range prog.Codes() {
			if !yield(code) {
				return
			}
		}
	}
}

// Chunks returns the big-endian byte pairs of the program.
func (prog *Program) Chunks() iter.Seq[[2]byte] {
	return Chunks(prog.code())
}

// Image returns the program image.
func (prog *Program) Image() *rom.Image {
	return rom.FromCodes(prog.code())
}

// Binary returns the program image as bytes ready to load.
func (prog *Program) Binary() (data []byte, err error) {
	return prog.Image().MarshalBinary()
}
