// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
)

const (
	MEMORY_SIZE    = 4096  // Addressable bytes.
	PROGRAM_START  = 0x200 // Load address of programs.
	REGISTER_COUNT = 16    // General purpose registers v0-vf.
	REG_FLAG       = 0xF   // vf, the carry/borrow/collision flag.
)

// EventKind is the kind of event reported by a cycle.
type EventKind int

//go:generate go tool stringer -linecomment -type=EventKind
const (
	EVENT_OPCODE = EventKind(0) // opcode
	EVENT_AUDIO  = EventKind(1) // audio
)

// Event reports the outcome of one cycle.
type Event struct {
	Kind EventKind
	Code Code // Instruction executed during the cycle.
}

func (ev Event) String() string {
	return fmt.Sprintf("%v: %v", ev.Kind, ev.Code)
}

// Cpu is the machine state and execution engine of the CHIP-8.
type Cpu struct {
	Verbose bool       // Set to enable verbose logging.
	Rand    *rand.Rand // Random source for rnd; nil uses the global source.

	Memory   [MEMORY_SIZE]byte     // Main memory.
	Register [REGISTER_COUNT]uint8 // Register bank.
	Index    uint16                // Index register.
	Pc       uint16                // Program counter.
	Stack    Stack                 // Return address stack.
	Delay    uint8                 // Delay timer.
	Sound    uint8                 // Sound timer.
	Screen   Screen                // Framebuffer.

	Ticks int // Instructions executed since the last reset.
}

// NewCpu creates a CPU in the reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "   pc: %03X\n", cpu.Pc)
	fmt.Fprintf(&sb, "    i: %03X\n", cpu.Index)
	sp, ok := cpu.Stack.Peek()
	if ok {
		fmt.Fprintf(&sb, "stack: %03X (%d)\n", sp, cpu.Stack.Pointer)
	} else {
		fmt.Fprintf(&sb, "stack: --- (0)\n")
	}
	fmt.Fprintf(&sb, "   dt: %02X\n", cpu.Delay)
	fmt.Fprintf(&sb, "   st: %02X\n", cpu.Sound)
	for n, val := range cpu.Register {
		fmt.Fprintf(&sb, "   v%x: %02X\n", n, val)
	}

	return sb.String()
}

// Reset the CPU state.
// - Clears memory, then installs the font at FONT_START.
// - Clears the registers, stack, timers and screen.
// - Sets the program counter and index register to PROGRAM_START.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Memory[:])
	copy(cpu.Memory[FONT_START:], font[:])
	clear(cpu.Register[:])
	cpu.Stack.Reset()
	cpu.Screen.Clear()
	cpu.Delay = 0
	cpu.Sound = 0
	cpu.Pc = PROGRAM_START
	cpu.Index = PROGRAM_START
	cpu.Ticks = 0
}

// Load resets the CPU and copies the program to PROGRAM_START.
func (cpu *Cpu) Load(program []byte) (err error) {
	if len(program) > MEMORY_SIZE-PROGRAM_START {
		err = ErrProgramSize
		return
	}

	cpu.Reset()
	copy(cpu.Memory[PROGRAM_START:], program)

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes at %03x", len(program), PROGRAM_START)
	}

	return
}

// V returns the value of register vx.
func (cpu *Cpu) V(x uint8) uint8 {
	return cpu.Register[x&0xF]
}

// SetV sets register vx.
func (cpu *Cpu) SetV(x uint8, value uint8) {
	cpu.Register[x&0xF] = value
}

// Pixel returns the framebuffer cell at (x, y).
func (cpu *Cpu) Pixel(x, y int) uint8 {
	return cpu.Screen.Pixel(x, y)
}

// Snapshot returns a copy of the framebuffer.
func (cpu *Cpu) Snapshot() Screen {
	return cpu.Screen
}

// Framebuffer returns a copy of the framebuffer as a row-major byte slice.
func (cpu *Cpu) Framebuffer() []byte {
	return append([]byte(nil), cpu.Screen[:]...)
}

// checkRange verifies that [addr, addr+n) lies within memory.
func checkRange(addr int, n int) (err error) {
	if addr < 0 || n < 0 || addr+n > MEMORY_SIZE {
		err = &ErrAddress{Addr: addr, Err: ErrMemoryRange}
	}
	return
}

// ReadMemory returns a copy of n bytes starting at addr.
func (cpu *Cpu) ReadMemory(addr uint16, n int) (data []byte, err error) {
	err = checkRange(int(addr), n)
	if err != nil {
		return
	}

	data = append([]byte(nil), cpu.Memory[int(addr):int(addr)+n]...)
	return
}

// WriteMemory copies data to memory starting at addr. Nothing is written if
// any byte would fall outside of memory.
func (cpu *Cpu) WriteMemory(addr uint16, data []byte) (err error) {
	err = checkRange(int(addr), len(data))
	if err != nil {
		return
	}

	copy(cpu.Memory[addr:], data)
	return
}

// Fetch reads the big-endian instruction word at the program counter.
func (cpu *Cpu) Fetch() (code Code, err error) {
	pc := int(cpu.Pc)
	if pc+1 >= MEMORY_SIZE {
		err = &ErrAddress{Addr: pc, Err: ErrPcRange}
		return
	}

	code = Code(uint16(cpu.Memory[pc])<<8 | uint16(cpu.Memory[pc+1]))
	return
}

// Tick executes a single CPU instruction cycle.
//
// A cycle that fails leaves the machine state unchanged. Otherwise, if the
// sound timer is running it is decremented and the cycle reports an audio
// event, else it reports the executed opcode.
func (cpu *Cpu) Tick() (event Event, err error) {
	code, err := cpu.Fetch()
	if err != nil {
		return
	}

	err = cpu.Execute(code)
	if err != nil {
		return
	}

	cpu.Ticks++

	event = Event{Kind: EVENT_OPCODE, Code: code}
	if cpu.Sound > 0 {
		cpu.Sound--
		event.Kind = EVENT_AUDIO
	}

	return
}

// TimerTick decrements the delay timer, if running.
func (cpu *Cpu) TimerTick() {
	if cpu.Delay > 0 {
		cpu.Delay--
	}
}

// Execute executes a single instruction, including its update of the
// program counter.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	op, err := code.Decode()
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%03x: %v", cpu.Pc, code)
	}

	x := code.X()
	vx := cpu.Register[x]
	vy := cpu.Register[code.Y()]

	next_pc, err := cpu.nextPc(op, code)
	if err != nil {
		return
	}

	switch op {
	case OP_CLS:
		cpu.Screen.Clear()
	case OP_RET:
		cpu.Stack.Pop()
	case OP_CALL:
		cpu.Stack.Push(cpu.Pc)
	case OP_JP, OP_JP_V0, OP_SE_IMM, OP_SNE_IMM, OP_SE_REG, OP_SNE_REG:
		// Program counter only.
	case OP_LD_IMM:
		cpu.Register[x] = code.NN()
	case OP_ADD_IMM:
		cpu.Register[x] = vx + code.NN()
	case OP_LD_REG:
		cpu.Register[x] = vy
	case OP_OR:
		cpu.Register[x] = vx | vy
	case OP_AND:
		cpu.Register[x] = vx & vy
	case OP_XOR:
		cpu.Register[x] = vx ^ vy
	case OP_ADD_REG:
		sum := uint16(vx) + uint16(vy)
		cpu.setFlag(x, uint8(sum), sum > 0xFF)
	case OP_SUB:
		cpu.setFlag(x, vx-vy, vy > vx)
	case OP_SUBN:
		cpu.setFlag(x, vy-vx, vx > vy)
	case OP_SHR:
		cpu.setFlag(x, vx>>1, vx&0x01 != 0)
	case OP_SHL:
		cpu.setFlag(x, vx<<1, vx&0x80 != 0)
	case OP_LD_I:
		cpu.Index = code.NNN()
	case OP_RND:
		cpu.Register[x] = cpu.random() & code.NN()
	case OP_DRW:
		err = cpu.draw(vx, vy, code.N())
	case OP_SKP, OP_SKNP:
		// No keypad is attached; never skip.
	case OP_LD_VX_DT:
		cpu.Register[x] = cpu.Delay
	case OP_LD_VX_K:
		// No keypad is attached; never wait.
	case OP_LD_DT_VX:
		cpu.Delay = vx
	case OP_LD_ST_VX:
		cpu.Sound = vx
	case OP_ADD_I:
		cpu.Index += uint16(vx)
	case OP_LD_F:
		cpu.Index = FONT_START + uint16(vx)*FONT_HEIGHT
	case OP_LD_B:
		err = cpu.WriteMemory(cpu.Index, []byte{vx / 100, (vx / 10) % 10, vx % 10})
	case OP_LD_MEM_VX:
		err = cpu.WriteMemory(cpu.Index, cpu.Register[:x+1])
	case OP_LD_VX_MEM:
		var data []byte
		data, err = cpu.ReadMemory(cpu.Index, int(x)+1)
		if err == nil {
			copy(cpu.Register[:], data)
		}
	default:
		err = ErrOpcodeDecode
	}

	if err != nil {
		return
	}

	cpu.Pc = next_pc

	return
}

// nextPc returns the program counter following op, without changing any
// machine state. The result always lies inside memory.
func (cpu *Cpu) nextPc(op CodeOp, code Code) (next_pc uint16, err error) {
	vx := cpu.Register[code.X()]
	vy := cpu.Register[code.Y()]

	next_pc = cpu.Pc + 2

	switch op {
	case OP_SYS:
		err = ErrOpcodeSys
		return
	case OP_RET:
		ret, ok := cpu.Stack.Peek()
		if !ok {
			err = ErrStackEmpty
			return
		}
		next_pc = ret + 2
	case OP_JP:
		next_pc = code.NNN()
	case OP_CALL:
		if cpu.Stack.Full() {
			err = ErrStackFull
			return
		}
		next_pc = code.NNN()
	case OP_JP_V0:
		next_pc = code.NNN() + uint16(cpu.Register[0])
	case OP_SE_IMM:
		if vx == code.NN() {
			next_pc += 2
		}
	case OP_SNE_IMM:
		if vx != code.NN() {
			next_pc += 2
		}
	case OP_SE_REG:
		if vx == vy {
			next_pc += 2
		}
	case OP_SNE_REG:
		if vx != vy {
			next_pc += 2
		}
	}

	if int(next_pc) >= MEMORY_SIZE {
		err = &ErrAddress{Addr: int(next_pc), Err: ErrPcRange}
	}

	return
}

// setFlag stores an ALU result in vx, then the flag in vf.
func (cpu *Cpu) setFlag(x uint8, result uint8, flag bool) {
	cpu.Register[x] = result
	if flag {
		cpu.Register[REG_FLAG] = 1
	} else {
		cpu.Register[REG_FLAG] = 0
	}
}

// random returns the next random byte.
func (cpu *Cpu) random() uint8 {
	if cpu.Rand != nil {
		return uint8(cpu.Rand.Uint32())
	}
	return uint8(rand.Uint32())
}

// draw XORs a sprite of the given height from the index register onto the
// screen at (vx, vy), wrapping at the edges. vf is set if any lit pixel was
// turned off.
func (cpu *Cpu) draw(vx, vy, height uint8) (err error) {
	sprite, err := cpu.ReadMemory(cpu.Index, int(height))
	if err != nil {
		return
	}

	var collision uint8
	for row, bits := range sprite {
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			if cpu.Screen.Toggle(int(vx)+col, int(vy)+row) {
				collision = 1
			}
		}
	}
	cpu.Register[REG_FLAG] = collision

	return
}
