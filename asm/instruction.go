package asm

import (
	"iter"

	"github.com/ezrec/chip8/cpu"
)

// Instruction is a parsed instruction with its operands.
type Instruction struct {
	Op  cpu.CodeOp // Operation.
	X   uint8      // First register operand.
	Y   uint8      // Second register operand.
	Imm uint16     // Address, byte or nibble operand.
	Pos Position   // Location of the mnemonic.
}

// Code encodes the instruction. Immediates wider than their field are
// truncated.
func (inst Instruction) Code() cpu.Code {
	return cpu.MakeCodeOp(inst.Op, inst.X, inst.Y, inst.Imm)
}

func (inst Instruction) String() string {
	return inst.Code().String()
}

// Encode encodes instructions in order, stopping at the first error.
func Encode(instructions iter.Seq2[Instruction, error]) (codes []cpu.Code, err error) {
	for inst, ierr := range instructions {
		if ierr != nil {
			err = ierr
			return
		}
		codes = append(codes, inst.Code())
	}

	return
}

// Chunks returns the big-endian byte pairs of each code.
func Chunks(codes iter.Seq[cpu.Code]) iter.Seq[[2]byte] {
	return func(yield func([2]byte) bool) {
		for code := range codes {
			if !yield(code.Bytes()) {
				return
			}
		}
	}
}
