package emulator

import (
	"github.com/ezrec/chip8/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int    // Source line, or zero if unknown.
	Addr   uint16 // Program counter of the failed cycle.
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d (%#03x) %v", err.LineNo, err.Addr, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
