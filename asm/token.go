package asm

import (
	"fmt"
)

// TokenKind is the lexical class of a token.
type TokenKind int

//go:generate go tool stringer -linecomment -type=TokenKind
const (
	TOKEN_MNEMONIC  = TokenKind(0) // mnemonic
	TOKEN_REGISTER  = TokenKind(1) // register
	TOKEN_SPECIAL   = TokenKind(2) // special
	TOKEN_NUMBER    = TokenKind(3) // number
	TOKEN_DELIMITER = TokenKind(4) // delimiter
	TOKEN_UNKNOWN   = TokenKind(5) // unknown
)

// Mnemonic is an instruction name.
type Mnemonic int

//go:generate go tool stringer -linecomment -type=Mnemonic
const (
	MNEMONIC_CLS  = Mnemonic(0)  // cls
	MNEMONIC_RET  = Mnemonic(1)  // ret
	MNEMONIC_SYS  = Mnemonic(2)  // sys
	MNEMONIC_JMP  = Mnemonic(3)  // jmp
	MNEMONIC_CALL = Mnemonic(4)  // call
	MNEMONIC_SE   = Mnemonic(5)  // se
	MNEMONIC_SNE  = Mnemonic(6)  // sne
	MNEMONIC_LD   = Mnemonic(7)  // ld
	MNEMONIC_ADD  = Mnemonic(8)  // add
	MNEMONIC_OR   = Mnemonic(9)  // or
	MNEMONIC_AND  = Mnemonic(10) // and
	MNEMONIC_XOR  = Mnemonic(11) // xor
	MNEMONIC_SUB  = Mnemonic(12) // sub
	MNEMONIC_SHR  = Mnemonic(13) // shr
	MNEMONIC_SUBN = Mnemonic(14) // subn
	MNEMONIC_SHL  = Mnemonic(15) // shl
	MNEMONIC_RND  = Mnemonic(16) // rnd
	MNEMONIC_DRW  = Mnemonic(17) // drw
	MNEMONIC_SKP  = Mnemonic(18) // skp
	MNEMONIC_SKNP = Mnemonic(19) // sknp
)

// Special is a named operand that is not a general purpose register.
type Special int

//go:generate go tool stringer -linecomment -type=Special
const (
	SPECIAL_I  = Special(0) // i
	SPECIAL_DT = Special(1) // dt
	SPECIAL_ST = Special(2) // st
	SPECIAL_K  = Special(3) // k
	SPECIAL_F  = Special(4) // f
	SPECIAL_B  = Special(5) // b
)

// mnemonicMap maps instruction names to mnemonics.
var mnemonicMap = map[string]Mnemonic{
	"cls":  MNEMONIC_CLS,
	"ret":  MNEMONIC_RET,
	"sys":  MNEMONIC_SYS,
	"jmp":  MNEMONIC_JMP,
	"call": MNEMONIC_CALL,
	"se":   MNEMONIC_SE,
	"sne":  MNEMONIC_SNE,
	"ld":   MNEMONIC_LD,
	"add":  MNEMONIC_ADD,
	"or":   MNEMONIC_OR,
	"and":  MNEMONIC_AND,
	"xor":  MNEMONIC_XOR,
	"sub":  MNEMONIC_SUB,
	"shr":  MNEMONIC_SHR,
	"subn": MNEMONIC_SUBN,
	"shl":  MNEMONIC_SHL,
	"rnd":  MNEMONIC_RND,
	"drw":  MNEMONIC_DRW,
	"skp":  MNEMONIC_SKP,
	"sknp": MNEMONIC_SKNP,
}

// registerMap maps register names to register indexes.
var registerMap = map[string]uint8{
	"v0": 0x0, "v1": 0x1, "v2": 0x2, "v3": 0x3,
	"v4": 0x4, "v5": 0x5, "v6": 0x6, "v7": 0x7,
	"v8": 0x8, "v9": 0x9, "va": 0xa, "vb": 0xb,
	"vc": 0xc, "vd": 0xd, "ve": 0xe, "vf": 0xf,
}

// specialMap maps special operand names.
var specialMap = map[string]Special{
	"i":  SPECIAL_I,
	"dt": SPECIAL_DT,
	"st": SPECIAL_ST,
	"k":  SPECIAL_K,
	"f":  SPECIAL_F,
	"b":  SPECIAL_B,
}

// Position is a location in the source text. Lines and columns count from 1.
type Position struct {
	Line   int
	Column int
}

func (pos Position) String() string {
	return fmt.Sprintf("%d:%d", pos.Line, pos.Column)
}

// Token is a single lexical element.
type Token struct {
	Kind TokenKind
	Pos  Position
	Text string // Raw lexeme.

	Mnemonic Mnemonic // TOKEN_MNEMONIC
	Register uint8    // TOKEN_REGISTER
	Special  Special  // TOKEN_SPECIAL
	Number   uint16   // TOKEN_NUMBER
}

// IsDelimiter returns true if the token is the delimiter ch.
func (tok Token) IsDelimiter(ch byte) bool {
	return tok.Kind == TOKEN_DELIMITER && tok.Text == string(ch)
}

func (tok Token) String() string {
	return fmt.Sprintf("%v %q", tok.Kind, tok.Text)
}
