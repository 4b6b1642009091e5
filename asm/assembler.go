// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":        "0",
	"PROGRAM_START": fmt.Sprintf("%#x", cpu.PROGRAM_START),
	"FONT_START":    fmt.Sprintf("%#x", cpu.FONT_START),
	"FONT_HEIGHT":   fmt.Sprintf("%d", cpu.FONT_HEIGHT),
	"SCREEN_WIDTH":  fmt.Sprintf("%d", cpu.SCREEN_WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%d", cpu.SCREEN_HEIGHT),
}

var (
	reParen = regexp.MustCompile(`\$\([^\$]*\)`)
	reWord  = regexp.MustCompile(`[A-Za-z0-9_]+`)
	reIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Assembler is a single pass assembler for the CHIP-8.
type Assembler struct {
	Verbose  bool              // If set, verbosely logs the assembler actions.
	Tolerant bool              // If set, reports every malformed statement instead of stopping at the first.
	Equate   map[string]string // Map of equates.

	predefine map[string]string // Predefines
}

// Predefine defines an equate for every subsequent Parse. The value is
// substituted into a single source line, so it may not span lines.
func (asm *Assembler) Predefine(equ string, value string) (err error) {
	if !reIdent.MatchString(equ) || strings.ContainsAny(value, "\r\n") {
		err = ErrEquateSyntax
		return
	}
	if reserved(equ) {
		err = ErrEquateReserved
		return
	}

	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}

	return
}

// reserved returns true if name is a mnemonic, register or special name.
func reserved(name string) bool {
	names := internal.IterSeqConcat(maps.Keys(mnemonicMap), maps.Keys(registerMap), maps.Keys(specialMap))
	for word := range names {
		if word == name {
			return true
		}
	}

	return false
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		number, ok := parseNumber(str)
		if !ok {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(number))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < 0 || st_int64 > 0xffff {
		err = ErrParseExpression(expr)
		return
	}
	value = uint16(st_int64)
	return
}

// parseLine preprocesses a single line of source.
func (asm *Assembler) parseLine(line string, lineno int) (text string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	line, _, _ = strings.Cut(line, ";")

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 || !reIdent.MatchString(words[1]) {
			err = ErrEquateSyntax
			return
		}
		if reserved(words[1]) {
			err = ErrEquateReserved
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		return
	}

	text = reWord.ReplaceAllStringFunc(line, func(word string) string {
		equate, ok := asm.Equate[word]
		if ok {
			return equate
		}
		return word
	})

	return
}

// Parse parses an input stream into a Program.
//
// Errors are *ErrSyntax values. Unless Tolerant is set, parsing stops at the
// first error and no Program is returned. If Tolerant is set, the Program
// holds every well formed statement and the error joins all failures.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, asm.predefine)

	var errs []error
	var source []string
	var lines []string
	var lineno int

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line, lerr := asm.parseLine(text, lineno)
		if lerr != nil {
			lerr = &ErrSyntax{LineNo: lineno, Err: lerr}
			if !asm.Tolerant {
				err = lerr
				return
			}
			errs = append(errs, lerr)
		}

		code, _, _ := strings.Cut(text, ";")
		source = append(source, strings.TrimSpace(code))
		lines = append(lines, line)
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	parser := &Parser{Verbose: asm.Verbose, Tolerant: asm.Tolerant}
	tokens := Tokens(strings.Join(lines, "\n"))

	prog = &Program{}
	addr := uint16(cpu.PROGRAM_START)
	for inst, perr := range parser.Instructions(tokens) {
		if perr != nil {
			if !asm.Tolerant {
				prog = nil
				err = perr
				return
			}
			errs = append(errs, perr)
			continue
		}

		prog.Opcodes = append(prog.Opcodes, Opcode{
			LineNo:      inst.Pos.Line,
			Addr:        addr,
			Text:        source[inst.Pos.Line-1],
			Instruction: inst,
			Code:        inst.Code(),
		})
		addr += 2
	}

	err = errors.Join(errs...)
	return
}

// Assemble assembles source text into opcodes.
func Assemble(src string) (codes []cpu.Code, err error) {
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(src))
	if err != nil {
		return
	}

	for _, code := range prog.Codes() {
		codes = append(codes, code)
	}

	return
}
