package asm

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Preprocessor errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrEquateReserved  = errors.New(f(".equ name reserved"))
)

// ErrSyntax indicates the source location of an assembly error.
type ErrSyntax struct {
	LineNo int
	Column int // Zero if the column is unknown.
	Err    error
}

func (err ErrSyntax) Error() string {
	if err.Column == 0 {
		return f("line %d: %v", err.LineNo, err.Err)
	}
	return f("line %d:%d: %v", err.LineNo, err.Column, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrExpected is returned when a token of the wrong kind is found.
type ErrExpected struct {
	Want string
	Got  Token
}

func (err ErrExpected) Error() string {
	return f("expected %v, got %v", err.Want, err.Got)
}

// ErrInputEnded is returned when the input ends inside a statement.
type ErrInputEnded struct {
	Want string
}

func (err ErrInputEnded) Error() string {
	return f("input ended, expected %v", err.Want)
}

// ErrLineEnded is returned when the line ends inside a statement.
type ErrLineEnded struct {
	Want string
}

func (err ErrLineEnded) Error() string {
	return f("line ended, expected %v", err.Want)
}

// ErrUnsupported is returned for mnemonics that are recognized but not
// assembled.
type ErrUnsupported struct {
	Mnemonic Mnemonic
}

func (err ErrUnsupported) Error() string {
	return f("%v is not supported", err.Mnemonic)
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
