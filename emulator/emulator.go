// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"log"
	"slices"

	"github.com/ezrec/chip8/asm"
	"github.com/ezrec/chip8/cpu"
)

// Handler receives the event of each cycle executed by Run. A non-nil
// error stops the run and is returned by Run.
type Handler func(event cpu.Event) error

// Emulator state. CPU + program listing.
type Emulator struct {
	Verbose      bool         // If set, enables verbose logging.
	TimerDivider int          // Cycles per delay timer tick; zero never ticks the delay timer.
	*cpu.Cpu                  // Reference to the CPU simulation.
	Program      *asm.Program // Reference to the currently running program listing.

	cycles int    // Cycles since the last delay timer tick.
	image  []byte // Raw image from Load, reloaded by Reset.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &asm.Program{},
	}

	return
}

// Load resets the CPU and loads a raw program image, which has no listing.
func (emu *Emulator) Load(image []byte) (err error) {
	emu.Cpu.Verbose = emu.Verbose

	err = emu.Cpu.Load(image)
	if err != nil {
		return
	}

	emu.Program = &asm.Program{}
	emu.image = slices.Clone(image)
	emu.cycles = 0

	return
}

// LoadProgram sets the program listing and resets to it.
func (emu *Emulator) LoadProgram(prog *asm.Program) (err error) {
	emu.Program = prog
	emu.image = nil

	return emu.Reset()
}

// Reset the CPU and reload the raw image or program listing last loaded.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	data := emu.image
	if data == nil {
		data, err = emu.Program.Binary()
		if err != nil {
			return
		}
	}

	err = emu.Cpu.Load(data)
	if err != nil {
		return
	}

	emu.cycles = 0

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Code returns the current instruction code.
func (emu *Emulator) Code() cpu.Code {
	code, _ := emu.Cpu.Fetch()
	return code
}

// LineNo returns the current line number for the executing opcode, or zero
// if the program counter is outside of the listing.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (event cpu.Event, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	addr := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Addr: addr, Err: err}
		}
	}()

	event, err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	if emu.TimerDivider > 0 {
		emu.cycles++
		if emu.cycles >= emu.TimerDivider {
			emu.cycles = 0
			emu.Cpu.TimerTick()
		}
	}

	return
}

// Run ticks the emulator until limit cycles have run, a cycle fails, the
// handler returns an error, or ctx is done. A limit of zero runs without
// bound. Run returns the number of cycles executed.
func (emu *Emulator) Run(ctx context.Context, limit int, handler Handler) (cycles int, err error) {
	for limit == 0 || cycles < limit {
		err = ctx.Err()
		if err != nil {
			return
		}

		var event cpu.Event
		event, err = emu.Tick()
		if err != nil {
			return
		}
		cycles++

		if handler != nil {
			err = handler(event)
			if err != nil {
				return
			}
		}
	}

	if emu.Verbose {
		log.Printf("emulator: ran %d cycles", cycles)
	}

	return
}
