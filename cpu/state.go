package cpu

import (
	"bytes"
	"encoding/binary"

	"github.com/lunixbochs/struc"
)

// cpuState is the packed layout of a machine state image.
type cpuState struct {
	Pc       uint16
	Index    uint16
	Pointer  uint8
	Delay    uint8
	Sound    uint8
	Register [REGISTER_COUNT]uint8
	Stack    [STACK_LIMIT]uint16
	Memory   [MEMORY_SIZE]uint8
	Screen   [SCREEN_WIDTH * SCREEN_HEIGHT]uint8
}

// StateSize returns the length of a machine state image.
func StateSize() (size int, err error) {
	return struc.Sizeof(&cpuState{})
}

// MarshalBinary packs the machine state into a big-endian image.
func (cpu *Cpu) MarshalBinary() (data []byte, err error) {
	state := &cpuState{
		Pc:       cpu.Pc,
		Index:    cpu.Index,
		Pointer:  cpu.Stack.Pointer,
		Delay:    cpu.Delay,
		Sound:    cpu.Sound,
		Register: cpu.Register,
		Stack:    cpu.Stack.Data,
		Memory:   cpu.Memory,
		Screen:   cpu.Screen,
	}

	var buf bytes.Buffer
	err = struc.PackWithOrder(&buf, state, binary.BigEndian)
	if err != nil {
		return
	}

	data = buf.Bytes()
	return
}

// UnmarshalBinary restores the machine state from an image made by
// MarshalBinary. The state is unchanged if the image is invalid.
func (cpu *Cpu) UnmarshalBinary(data []byte) (err error) {
	size, err := StateSize()
	if err != nil {
		return
	}
	if len(data) != size {
		err = ErrState
		return
	}

	state := &cpuState{}
	err = struc.UnpackWithOrder(bytes.NewReader(data), state, binary.BigEndian)
	if err != nil {
		return
	}

	if int(state.Pc) >= MEMORY_SIZE || int(state.Pointer) > STACK_LIMIT {
		err = ErrState
		return
	}
	for _, px := range state.Screen {
		if px > 1 {
			err = ErrState
			return
		}
	}

	cpu.Pc = state.Pc
	cpu.Index = state.Index
	cpu.Stack.Pointer = state.Pointer
	cpu.Stack.Data = state.Stack
	cpu.Delay = state.Delay
	cpu.Sound = state.Sound
	cpu.Register = state.Register
	cpu.Memory = state.Memory
	cpu.Screen = state.Screen

	return
}
