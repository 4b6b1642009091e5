package cpu

import (
	"cmp"
	"fmt"
	"math/bits"
	"slices"
)

// CodeOp is a decoded operation.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_SYS       = CodeOp(0)  // sys
	OP_CLS       = CodeOp(1)  // cls
	OP_RET       = CodeOp(2)  // ret
	OP_JP        = CodeOp(3)  // jmp
	OP_CALL      = CodeOp(4)  // call
	OP_SE_IMM    = CodeOp(5)  // se
	OP_SNE_IMM   = CodeOp(6)  // sne
	OP_SE_REG    = CodeOp(7)  // se
	OP_LD_IMM    = CodeOp(8)  // ld
	OP_ADD_IMM   = CodeOp(9)  // add
	OP_LD_REG    = CodeOp(10) // ld
	OP_OR        = CodeOp(11) // or
	OP_AND       = CodeOp(12) // and
	OP_XOR       = CodeOp(13) // xor
	OP_ADD_REG   = CodeOp(14) // add
	OP_SUB       = CodeOp(15) // sub
	OP_SHR       = CodeOp(16) // shr
	OP_SUBN      = CodeOp(17) // subn
	OP_SHL       = CodeOp(18) // shl
	OP_SNE_REG   = CodeOp(19) // sne
	OP_LD_I      = CodeOp(20) // ld
	OP_JP_V0     = CodeOp(21) // jmp
	OP_RND       = CodeOp(22) // rnd
	OP_DRW       = CodeOp(23) // drw
	OP_SKP       = CodeOp(24) // skp
	OP_SKNP      = CodeOp(25) // sknp
	OP_LD_VX_DT  = CodeOp(26) // ld
	OP_LD_VX_K   = CodeOp(27) // ld
	OP_LD_DT_VX  = CodeOp(28) // ld
	OP_LD_ST_VX  = CodeOp(29) // ld
	OP_ADD_I     = CodeOp(30) // add
	OP_LD_F      = CodeOp(31) // ld
	OP_LD_B      = CodeOp(32) // ld
	OP_LD_MEM_VX = CodeOp(33) // ld
	OP_LD_VX_MEM = CodeOp(34) // ld
)

// OP_COUNT is the number of operations in the instruction set.
const OP_COUNT = int(OP_LD_VX_MEM) + 1

// CodeShape is the operand layout of an opcode.
type CodeShape int

const (
	SHAPE_NONE = CodeShape(0) // ....
	SHAPE_NNN  = CodeShape(1) // .nnn
	SHAPE_XNN  = CodeShape(2) // .xnn
	SHAPE_XY   = CodeShape(3) // .xy.
	SHAPE_XYN  = CodeShape(4) // .xyn
	SHAPE_X    = CodeShape(5) // .x..
)

// CodeInfo describes how an operation is laid out in a 16-bit opcode.
type CodeInfo struct {
	Mask   uint16    // Bits that identify the operation.
	Value  uint16    // Identifying bits under Mask.
	Shape  CodeShape // Operand fields.
	Syntax string    // Assembly text, with fmt verbs for the operands.
}

// codeTable is indexed by CodeOp.
var codeTable = [OP_COUNT]CodeInfo{
	OP_SYS:       {0xF000, 0x0000, SHAPE_NNN, "sys 0x%03x"},
	OP_CLS:       {0xFFFF, 0x00E0, SHAPE_NONE, "cls"},
	OP_RET:       {0xFFFF, 0x00EE, SHAPE_NONE, "ret"},
	OP_JP:        {0xF000, 0x1000, SHAPE_NNN, "jmp 0x%03x"},
	OP_CALL:      {0xF000, 0x2000, SHAPE_NNN, "call 0x%03x"},
	OP_SE_IMM:    {0xF000, 0x3000, SHAPE_XNN, "se v%x, 0x%02x"},
	OP_SNE_IMM:   {0xF000, 0x4000, SHAPE_XNN, "sne v%x, 0x%02x"},
	OP_SE_REG:    {0xF00F, 0x5000, SHAPE_XY, "se v%x, v%x"},
	OP_LD_IMM:    {0xF000, 0x6000, SHAPE_XNN, "ld v%x, 0x%02x"},
	OP_ADD_IMM:   {0xF000, 0x7000, SHAPE_XNN, "add v%x, 0x%02x"},
	OP_LD_REG:    {0xF00F, 0x8000, SHAPE_XY, "ld v%x, v%x"},
	OP_OR:        {0xF00F, 0x8001, SHAPE_XY, "or v%x, v%x"},
	OP_AND:       {0xF00F, 0x8002, SHAPE_XY, "and v%x, v%x"},
	OP_XOR:       {0xF00F, 0x8003, SHAPE_XY, "xor v%x, v%x"},
	OP_ADD_REG:   {0xF00F, 0x8004, SHAPE_XY, "add v%x, v%x"},
	OP_SUB:       {0xF00F, 0x8005, SHAPE_XY, "sub v%x, v%x"},
	OP_SHR:       {0xF00F, 0x8006, SHAPE_XY, "shr v%x, v%x"},
	OP_SUBN:      {0xF00F, 0x8007, SHAPE_XY, "subn v%x, v%x"},
	OP_SHL:       {0xF00F, 0x800E, SHAPE_XY, "shl v%x, v%x"},
	OP_SNE_REG:   {0xF00F, 0x9000, SHAPE_XY, "sne v%x, v%x"},
	OP_LD_I:      {0xF000, 0xA000, SHAPE_NNN, "ld i, 0x%03x"},
	OP_JP_V0:     {0xF000, 0xB000, SHAPE_NNN, "jmp v0, 0x%03x"},
	OP_RND:       {0xF000, 0xC000, SHAPE_XNN, "rnd v%x, 0x%02x"},
	OP_DRW:       {0xF000, 0xD000, SHAPE_XYN, "drw v%x, v%x, %d"},
	OP_SKP:       {0xF0FF, 0xE09E, SHAPE_X, "skp v%x"},
	OP_SKNP:      {0xF0FF, 0xE0A1, SHAPE_X, "sknp v%x"},
	OP_LD_VX_DT:  {0xF0FF, 0xF007, SHAPE_X, "ld v%x, dt"},
	OP_LD_VX_K:   {0xF0FF, 0xF00A, SHAPE_X, "ld v%x, k"},
	OP_LD_DT_VX:  {0xF0FF, 0xF015, SHAPE_X, "ld dt, v%x"},
	OP_LD_ST_VX:  {0xF0FF, 0xF018, SHAPE_X, "ld st, v%x"},
	OP_ADD_I:     {0xF0FF, 0xF01E, SHAPE_X, "add i, v%x"},
	OP_LD_F:      {0xF0FF, 0xF029, SHAPE_X, "ld f, v%x"},
	OP_LD_B:      {0xF0FF, 0xF033, SHAPE_X, "ld b, v%x"},
	OP_LD_MEM_VX: {0xF0FF, 0xF055, SHAPE_X, "ld [i], v%x"},
	OP_LD_VX_MEM: {0xF0FF, 0xF065, SHAPE_X, "ld v%x, [i]"},
}

// decodeClass lists the candidate operations for each high nibble, most
// specific mask first.
var decodeClass [16][]CodeOp

func init() {
	for n, info := range codeTable {
		class := info.Value >> 12
		decodeClass[class] = append(decodeClass[class], CodeOp(n))
	}
	for class := range decodeClass {
		slices.SortStableFunc(decodeClass[class], func(a, b CodeOp) int {
			return cmp.Compare(bits.OnesCount16(codeTable[b].Mask), bits.OnesCount16(codeTable[a].Mask))
		})
	}
}

// Info returns the layout of the operation.
func (op CodeOp) Info() CodeInfo {
	return codeTable[op]
}

// Valid returns true if op names an operation of the instruction set.
func (op CodeOp) Valid() bool {
	return op >= 0 && int(op) < OP_COUNT
}

// Code is a single 16-bit instruction word.
type Code uint16

// MakeCodeOp encodes an operation with its operands. Fields the operation does
// not use are ignored, and immediates are masked to their field width.
func MakeCodeOp(op CodeOp, x, y uint8, imm uint16) Code {
	info := codeTable[op]
	word := info.Value

	switch info.Shape {
	case SHAPE_NNN:
		word |= imm & 0x0FFF
	case SHAPE_XNN:
		word |= (uint16(x)&0xF)<<8 | (imm & 0x00FF)
	case SHAPE_XY:
		word |= (uint16(x)&0xF)<<8 | (uint16(y)&0xF)<<4
	case SHAPE_XYN:
		word |= (uint16(x)&0xF)<<8 | (uint16(y)&0xF)<<4 | (imm & 0x000F)
	case SHAPE_X:
		word |= (uint16(x) & 0xF) << 8
	}

	return Code(word)
}

// MakeCode encodes an operation without operands.
func MakeCode(op CodeOp) Code {
	return MakeCodeOp(op, 0, 0, 0)
}

// MakeCodeAddr encodes an operation taking a 12-bit address.
func MakeCodeAddr(op CodeOp, nnn uint16) Code {
	return MakeCodeOp(op, 0, 0, nnn)
}

// MakeCodeByte encodes an operation taking a register and an 8-bit immediate.
func MakeCodeByte(op CodeOp, x uint8, nn uint8) Code {
	return MakeCodeOp(op, x, 0, uint16(nn))
}

// MakeCodeReg encodes an operation taking one or two registers.
func MakeCodeReg(op CodeOp, x, y uint8) Code {
	return MakeCodeOp(op, x, y, 0)
}

// MakeCodeDraw encodes a sprite draw of height n at (vx, vy).
func MakeCodeDraw(x, y, n uint8) Code {
	return MakeCodeOp(OP_DRW, x, y, uint16(n))
}

// Class returns the operation class from the high nibble.
func (code Code) Class() uint8 {
	return uint8(code >> 12)
}

// X returns the first register index.
func (code Code) X() uint8 {
	return uint8((code >> 8) & 0xF)
}

// Y returns the second register index.
func (code Code) Y() uint8 {
	return uint8((code >> 4) & 0xF)
}

// N returns the low nibble.
func (code Code) N() uint8 {
	return uint8(code & 0xF)
}

// NN returns the low byte.
func (code Code) NN() uint8 {
	return uint8(code & 0xFF)
}

// NNN returns the 12-bit address.
func (code Code) NNN() uint16 {
	return uint16(code & 0x0FFF)
}

// Decode returns the operation encoded by the word.
func (code Code) Decode() (op CodeOp, err error) {
	word := uint16(code)
	for _, op = range decodeClass[code.Class()] {
		info := codeTable[op]
		if word&info.Mask == info.Value {
			return
		}
	}

	op = OP_SYS
	err = ErrOpcodeDecode
	return
}

// Bytes returns the big-endian encoding of the word.
func (code Code) Bytes() [2]byte {
	return [2]byte{byte(code >> 8), byte(code)}
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	op, err := code.Decode()
	if err != nil {
		return fmt.Sprintf("0x%04x", uint16(code))
	}

	info := codeTable[op]
	switch info.Shape {
	case SHAPE_NNN:
		return fmt.Sprintf(info.Syntax, code.NNN())
	case SHAPE_XNN:
		return fmt.Sprintf(info.Syntax, code.X(), code.NN())
	case SHAPE_XY:
		return fmt.Sprintf(info.Syntax, code.X(), code.Y())
	case SHAPE_XYN:
		return fmt.Sprintf(info.Syntax, code.X(), code.Y(), code.N())
	case SHAPE_X:
		return fmt.Sprintf(info.Syntax, code.X())
	}

	return info.Syntax
}
