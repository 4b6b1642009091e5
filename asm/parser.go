package asm

import (
	"errors"
	"iter"
	"log"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
)

// Parser converts tokens into instructions.
//
// Each statement occupies a single source line. By default the instruction
// sequence ends at the first malformed statement. If Tolerant is set, each
// malformed statement is reported and skipped, and parsing resumes at the
// next mnemonic on a following line.
type Parser struct {
	Verbose  bool // If set, logs each parsed instruction.
	Tolerant bool // If set, resynchronizes after a malformed statement.
}

// aluMap maps the register-register only mnemonics.
var aluMap = map[Mnemonic]cpu.CodeOp{
	MNEMONIC_OR:   cpu.OP_OR,
	MNEMONIC_AND:  cpu.OP_AND,
	MNEMONIC_XOR:  cpu.OP_XOR,
	MNEMONIC_SUB:  cpu.OP_SUB,
	MNEMONIC_SUBN: cpu.OP_SUBN,
}

// Instructions returns the instructions parsed from tokens. Errors are
// *ErrSyntax values locating the malformed statement.
func (p *Parser) Instructions(tokens iter.Seq[Token]) iter.Seq2[Instruction, error] {
	return func(yield func(Instruction, error) bool) {
		ps := &parseState{tokens: internal.NewPeekable(tokens)}
		defer ps.tokens.Stop()

		for {
			if _, ok := ps.tokens.Peek(); !ok {
				return
			}

			inst, err := ps.instruction()
			if err != nil {
				pos := ps.last
				var expected *ErrExpected
				if errors.As(err, &expected) {
					pos = expected.Got.Pos
				}
				err = &ErrSyntax{LineNo: pos.Line, Column: pos.Column, Err: err}
				if p.Verbose {
					log.Printf("parse: %v", err)
				}
				if !yield(Instruction{}, err) || !p.Tolerant {
					return
				}
				ps.resync()
				continue
			}

			if p.Verbose {
				log.Printf("%v: %v", inst.Pos, inst)
			}
			if !yield(inst, nil) {
				return
			}
		}
	}
}

// parseState is the state of a single pass over a token sequence.
type parseState struct {
	tokens *internal.Peekable[Token]
	last   Position // Position of the last consumed token.
	line   int      // Source line of the current statement.
}

// operand is a parsed operand of an instruction.
type operand struct {
	Token
	indirect bool // [i]
}

func (op operand) isSpecial(special Special) bool {
	return op.Kind == TOKEN_SPECIAL && op.Special == special && !op.indirect
}

// resync discards the rest of the current line, then tokens up to the next
// mnemonic.
func (ps *parseState) resync() {
	for {
		tok, ok := ps.tokens.Peek()
		if !ok || (tok.Kind == TOKEN_MNEMONIC && tok.Pos.Line != ps.line) {
			return
		}
		ps.tokens.Next()
	}
}

// expect consumes the next token if it matches, else leaves it in place.
func (ps *parseState) expect(want string, match func(tok Token) bool) (tok Token, err error) {
	tok, ok := ps.tokens.Peek()
	if !ok {
		err = &ErrInputEnded{Want: want}
		return
	}
	if tok.Pos.Line != ps.line {
		err = &ErrLineEnded{Want: want}
		return
	}
	if !match(tok) {
		err = &ErrExpected{Want: want, Got: tok}
		return
	}

	ps.tokens.Next()
	ps.last = tok.Pos
	return
}

func (ps *parseState) kind(want string, kind TokenKind) (tok Token, err error) {
	return ps.expect(want, func(tok Token) bool { return tok.Kind == kind })
}

func (ps *parseState) register() (x uint8, err error) {
	tok, err := ps.kind("register", TOKEN_REGISTER)
	x = tok.Register
	return
}

func (ps *parseState) number() (value uint16, err error) {
	tok, err := ps.kind("number", TOKEN_NUMBER)
	value = tok.Number
	return
}

func (ps *parseState) delimiter(ch byte) (err error) {
	_, err = ps.expect("'"+string(ch)+"'", func(tok Token) bool { return tok.IsDelimiter(ch) })
	return
}

// registerPair parses "vx, vy".
func (ps *parseState) registerPair() (x, y uint8, err error) {
	x, err = ps.register()
	if err != nil {
		return
	}
	err = ps.delimiter(',')
	if err != nil {
		return
	}
	y, err = ps.register()
	return
}

// operand parses a register, number, special name or [i].
func (ps *parseState) operand(want string) (op operand, err error) {
	tok, err := ps.expect(want, func(tok Token) bool {
		switch tok.Kind {
		case TOKEN_REGISTER, TOKEN_NUMBER, TOKEN_SPECIAL:
			return true
		}
		return tok.IsDelimiter('[')
	})
	if err != nil {
		return
	}

	op.Token = tok
	if tok.Kind != TOKEN_DELIMITER {
		return
	}

	_, err = ps.expect("i", func(tok Token) bool {
		return tok.Kind == TOKEN_SPECIAL && tok.Special == SPECIAL_I
	})
	if err != nil {
		return
	}
	err = ps.delimiter(']')
	if err != nil {
		return
	}

	op.Kind = TOKEN_SPECIAL
	op.Special = SPECIAL_I
	op.indirect = true
	return
}

// instruction parses a single statement, which must end its line.
func (ps *parseState) instruction() (inst Instruction, err error) {
	if tok, ok := ps.tokens.Peek(); ok {
		ps.line = tok.Pos.Line
	}

	inst, err = ps.statement()
	if err != nil {
		return
	}

	if tok, ok := ps.tokens.Peek(); ok && tok.Pos.Line == ps.line {
		err = &ErrExpected{Want: "end of line", Got: tok}
	}

	return
}

// statement parses a mnemonic and its operands.
func (ps *parseState) statement() (inst Instruction, err error) {
	tok, err := ps.kind("mnemonic", TOKEN_MNEMONIC)
	if err != nil {
		return
	}
	inst.Pos = tok.Pos

	switch tok.Mnemonic {
	case MNEMONIC_CLS:
		inst.Op = cpu.OP_CLS
	case MNEMONIC_RET:
		inst.Op = cpu.OP_RET
	case MNEMONIC_SYS:
		err = &ErrUnsupported{Mnemonic: tok.Mnemonic}
	case MNEMONIC_JMP:
		err = ps.jump(&inst)
	case MNEMONIC_CALL:
		inst.Op = cpu.OP_CALL
		inst.Imm, err = ps.number()
	case MNEMONIC_SE:
		err = ps.compare(&inst, cpu.OP_SE_REG, cpu.OP_SE_IMM)
	case MNEMONIC_SNE:
		err = ps.compare(&inst, cpu.OP_SNE_REG, cpu.OP_SNE_IMM)
	case MNEMONIC_LD:
		err = ps.load(&inst)
	case MNEMONIC_ADD:
		err = ps.add(&inst)
	case MNEMONIC_OR, MNEMONIC_AND, MNEMONIC_XOR, MNEMONIC_SUB, MNEMONIC_SUBN:
		inst.Op = aluMap[tok.Mnemonic]
		inst.X, inst.Y, err = ps.registerPair()
	case MNEMONIC_SHR, MNEMONIC_SHL:
		err = ps.shift(&inst, tok.Mnemonic)
	case MNEMONIC_RND:
		inst.Op = cpu.OP_RND
		inst.X, err = ps.register()
		if err == nil {
			err = ps.delimiter(',')
		}
		if err == nil {
			inst.Imm, err = ps.number()
		}
	case MNEMONIC_DRW:
		inst.Op = cpu.OP_DRW
		inst.X, inst.Y, err = ps.registerPair()
		if err == nil {
			err = ps.delimiter(',')
		}
		if err == nil {
			inst.Imm, err = ps.number()
		}
	case MNEMONIC_SKP:
		inst.Op = cpu.OP_SKP
		inst.X, err = ps.register()
	case MNEMONIC_SKNP:
		inst.Op = cpu.OP_SKNP
		inst.X, err = ps.register()
	default:
		err = &ErrUnsupported{Mnemonic: tok.Mnemonic}
	}

	return
}

// jump parses "jmp nnn" or "jmp v0, nnn".
func (ps *parseState) jump(inst *Instruction) (err error) {
	target, err := ps.operand("address or v0")
	if err != nil {
		return
	}

	switch {
	case target.Kind == TOKEN_NUMBER:
		inst.Op = cpu.OP_JP
		inst.Imm = target.Number
	case target.Kind == TOKEN_REGISTER && target.Register == 0:
		inst.Op = cpu.OP_JP_V0
		err = ps.delimiter(',')
		if err != nil {
			return
		}
		inst.Imm, err = ps.number()
	default:
		err = &ErrExpected{Want: "address or v0", Got: target.Token}
	}

	return
}

// compare parses "vx, vy" or "vx, nn" for the skip instructions.
func (ps *parseState) compare(inst *Instruction, reg cpu.CodeOp, imm cpu.CodeOp) (err error) {
	inst.X, err = ps.register()
	if err != nil {
		return
	}
	err = ps.delimiter(',')
	if err != nil {
		return
	}

	source, err := ps.operand("register or number")
	if err != nil {
		return
	}

	switch source.Kind {
	case TOKEN_REGISTER:
		inst.Op = reg
		inst.Y = source.Register
	case TOKEN_NUMBER:
		inst.Op = imm
		inst.Imm = source.Number
	default:
		err = &ErrExpected{Want: "register or number", Got: source.Token}
	}

	return
}

// load parses the forms of ld.
func (ps *parseState) load(inst *Instruction) (err error) {
	target, err := ps.operand("ld target")
	if err != nil {
		return
	}
	err = ps.delimiter(',')
	if err != nil {
		return
	}

	if target.Kind == TOKEN_REGISTER {
		inst.X = target.Register

		var source operand
		source, err = ps.operand("ld source")
		if err != nil {
			return
		}

		switch {
		case source.Kind == TOKEN_NUMBER:
			inst.Op = cpu.OP_LD_IMM
			inst.Imm = source.Number
		case source.Kind == TOKEN_REGISTER:
			inst.Op = cpu.OP_LD_REG
			inst.Y = source.Register
		case source.isSpecial(SPECIAL_DT):
			inst.Op = cpu.OP_LD_VX_DT
		case source.isSpecial(SPECIAL_K):
			inst.Op = cpu.OP_LD_VX_K
		case source.indirect:
			inst.Op = cpu.OP_LD_VX_MEM
		default:
			err = &ErrExpected{Want: "ld source", Got: source.Token}
		}
		return
	}

	switch {
	case target.isSpecial(SPECIAL_I):
		inst.Op = cpu.OP_LD_I
		inst.Imm, err = ps.number()
		return
	case target.indirect:
		inst.Op = cpu.OP_LD_MEM_VX
	case target.isSpecial(SPECIAL_DT):
		inst.Op = cpu.OP_LD_DT_VX
	case target.isSpecial(SPECIAL_ST):
		inst.Op = cpu.OP_LD_ST_VX
	case target.isSpecial(SPECIAL_F):
		inst.Op = cpu.OP_LD_F
	case target.isSpecial(SPECIAL_B):
		inst.Op = cpu.OP_LD_B
	default:
		err = &ErrExpected{Want: "ld target", Got: target.Token}
		return
	}

	inst.X, err = ps.register()
	return
}

// add parses "vx, nn", "vx, vy" or "i, vx".
func (ps *parseState) add(inst *Instruction) (err error) {
	target, err := ps.operand("register or i")
	if err != nil {
		return
	}

	switch {
	case target.Kind == TOKEN_REGISTER:
		err = ps.delimiter(',')
		if err != nil {
			return
		}
		inst.X = target.Register

		var source operand
		source, err = ps.operand("register or number")
		if err != nil {
			return
		}
		switch source.Kind {
		case TOKEN_REGISTER:
			inst.Op = cpu.OP_ADD_REG
			inst.Y = source.Register
		case TOKEN_NUMBER:
			inst.Op = cpu.OP_ADD_IMM
			inst.Imm = source.Number
		default:
			err = &ErrExpected{Want: "register or number", Got: source.Token}
		}
	case target.isSpecial(SPECIAL_I):
		inst.Op = cpu.OP_ADD_I
		err = ps.delimiter(',')
		if err != nil {
			return
		}
		inst.X, err = ps.register()
	default:
		err = &ErrExpected{Want: "register or i", Got: target.Token}
	}

	return
}

// shift parses "vx" or "vx, vy". The single operand form shifts vx into
// itself.
func (ps *parseState) shift(inst *Instruction, mnemonic Mnemonic) (err error) {
	inst.Op = cpu.OP_SHR
	if mnemonic == MNEMONIC_SHL {
		inst.Op = cpu.OP_SHL
	}

	inst.X, err = ps.register()
	if err != nil {
		return
	}
	inst.Y = inst.X

	tok, ok := ps.tokens.Peek()
	if !ok || !tok.IsDelimiter(',') {
		return
	}

	err = ps.delimiter(',')
	if err != nil {
		return
	}
	inst.Y, err = ps.register()
	return
}
