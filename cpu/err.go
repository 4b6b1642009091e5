package cpu

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrPcRange     = errors.New(f("program counter out of range"))
	ErrMemoryRange = errors.New(f("memory access out of range"))
	ErrStackEmpty  = errors.New(f("stack empty"))
	ErrStackFull   = errors.New(f("stack full"))
	ErrProgramSize = errors.New(f("program too large"))
	ErrState       = errors.New(f("state image invalid"))

	// Instruction decode errors
	ErrOpcodeDecode = errors.New(f("decode"))
	ErrOpcodeSys    = errors.New(f("sys unsupported"))
)

// ErrOpcode identifies the instruction word involved in a failure.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode %#04x %v", uint16(eo), Code(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrAddress records the address of a failed memory or fetch access.
type ErrAddress struct {
	Addr int
	Err  error
}

func (err *ErrAddress) Error() string {
	return f("address %#03x %v", err.Addr, err.Err)
}

func (err *ErrAddress) Unwrap() error {
	return err.Err
}
