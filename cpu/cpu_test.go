package cpu

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// loadCodes creates a CPU with the codes loaded at PROGRAM_START.
func loadCodes(t *testing.T, codes ...Code) (cpu *Cpu) {
	var program []byte
	for _, code := range codes {
		bytes := code.Bytes()
		program = append(program, bytes[:]...)
	}

	cpu = NewCpu()
	err := cpu.Load(program)
	assert.NoError(t, err)

	return
}

func TestCpu_Reset(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[3] = 9
	cpu.Delay = 4
	cpu.Sound = 5
	cpu.Stack.Push(0x300)
	cpu.Screen.Toggle(1, 1)
	cpu.Memory[0x300] = 0xaa
	cpu.Pc = 0x400

	cpu.Reset()
	assert.Equal(uint16(PROGRAM_START), cpu.Pc)
	assert.Equal(uint16(PROGRAM_START), cpu.Index)
	assert.Equal(uint8(0), cpu.V(3))
	assert.Equal(uint8(0), cpu.Delay)
	assert.Equal(uint8(0), cpu.Sound)
	assert.True(cpu.Stack.Empty())
	assert.Equal(0, cpu.Screen.Lit())
	assert.Equal(byte(0), cpu.Memory[0x300])
	assert.Equal(Font(), cpu.Memory[FONT_START:FONT_START+FONT_HEIGHT*16])
}

func TestCpu_Load(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	err := cpu.Load([]byte{0x12, 0x34, 0x56})
	assert.NoError(err)
	assert.Equal([]byte{0x12, 0x34, 0x56, 0x00}, cpu.Memory[PROGRAM_START:PROGRAM_START+4])

	cpu.Register[1] = 7
	err = cpu.Load(make([]byte, MEMORY_SIZE-PROGRAM_START+1))
	assert.ErrorIs(err, ErrProgramSize)
	assert.Equal(uint8(7), cpu.V(1))
	assert.Equal(byte(0x12), cpu.Memory[PROGRAM_START])

	err = cpu.Load(make([]byte, MEMORY_SIZE-PROGRAM_START))
	assert.NoError(err)
}

func TestCpu_Memory(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	err := cpu.WriteMemory(0x300, []byte{1, 2, 3})
	assert.NoError(err)

	data, err := cpu.ReadMemory(0x300, 3)
	assert.NoError(err)
	assert.Equal([]byte{1, 2, 3}, data)

	err = cpu.WriteMemory(MEMORY_SIZE-1, []byte{1, 2})
	assert.ErrorIs(err, ErrMemoryRange)
	assert.Equal(byte(0), cpu.Memory[MEMORY_SIZE-1])

	_, err = cpu.ReadMemory(MEMORY_SIZE-2, 3)
	assert.ErrorIs(err, ErrMemoryRange)

	var ea *ErrAddress
	assert.True(errors.As(err, &ea))
	assert.Equal(MEMORY_SIZE-2, ea.Addr)
}

func TestCpu_Skip(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		v0   uint8
		v1   uint8
		code Code
		pc   uint16
	}){
		{"se_imm_eq", 5, 0, MakeCodeByte(OP_SE_IMM, 0, 5), 0x204},
		{"se_imm_ne", 5, 0, MakeCodeByte(OP_SE_IMM, 0, 6), 0x202},
		{"sne_imm_eq", 5, 0, MakeCodeByte(OP_SNE_IMM, 0, 5), 0x202},
		{"sne_imm_ne", 5, 0, MakeCodeByte(OP_SNE_IMM, 0, 6), 0x204},
		{"se_reg_eq", 5, 5, MakeCodeReg(OP_SE_REG, 0, 1), 0x204},
		{"se_reg_ne", 5, 6, MakeCodeReg(OP_SE_REG, 0, 1), 0x202},
		{"sne_reg_eq", 5, 5, MakeCodeReg(OP_SNE_REG, 0, 1), 0x202},
		{"sne_reg_ne", 5, 6, MakeCodeReg(OP_SNE_REG, 0, 1), 0x204},
		{"skp", 5, 6, MakeCodeReg(OP_SKP, 0, 0), 0x202},
		{"sknp", 5, 6, MakeCodeReg(OP_SKNP, 0, 0), 0x202},
	}

	for _, entry := range table {
		cpu := loadCodes(t, entry.code)
		cpu.SetV(0, entry.v0)
		cpu.SetV(1, entry.v1)

		event, err := cpu.Tick()
		assert.NoError(err, entry.name)
		assert.Equal(Event{Kind: EVENT_OPCODE, Code: entry.code}, event, entry.name)
		assert.Equal(entry.pc, cpu.Pc, entry.name)
	}
}

func TestCpu_Alu(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		vx   uint8
		vy   uint8
		op   CodeOp
		out  uint8
		flag uint8
	}){
		{"ld", 1, 2, OP_LD_REG, 2, 0xee},
		{"or", 0x0c, 0x03, OP_OR, 0x0f, 0xee},
		{"and", 0x0c, 0x06, OP_AND, 0x04, 0xee},
		{"xor", 0x0c, 0x06, OP_XOR, 0x0a, 0xee},
		{"add", 0x10, 0x20, OP_ADD_REG, 0x30, 0},
		{"add_carry", 0xff, 0x01, OP_ADD_REG, 0x00, 1},
		{"sub", 0x20, 0x10, OP_SUB, 0x10, 0},
		{"sub_equal", 0x20, 0x20, OP_SUB, 0x00, 0},
		{"sub_borrow", 0x10, 0x20, OP_SUB, 0xf0, 1},
		{"subn", 0x10, 0x20, OP_SUBN, 0x10, 0},
		{"subn_borrow", 0x20, 0x10, OP_SUBN, 0xf0, 1},
		{"shr", 0x04, 0, OP_SHR, 0x02, 0},
		{"shr_out", 0x05, 0, OP_SHR, 0x02, 1},
		{"shl", 0x40, 0, OP_SHL, 0x80, 0},
		{"shl_out", 0x81, 0, OP_SHL, 0x02, 1},
	}

	for _, entry := range table {
		code := MakeCodeReg(entry.op, 2, 3)
		cpu := loadCodes(t, code)
		cpu.SetV(2, entry.vx)
		cpu.SetV(3, entry.vy)
		cpu.SetV(REG_FLAG, 0xee)

		_, err := cpu.Tick()
		assert.NoError(err, entry.name)
		assert.Equal(entry.out, cpu.V(2), entry.name)
		assert.Equal(entry.flag, cpu.V(REG_FLAG), entry.name)
		assert.Equal(uint16(0x202), cpu.Pc, entry.name)
	}
}

func TestCpu_AluFlagRegister(t *testing.T) {
	assert := assert.New(t)

	// The flag is written after the result.
	cpu := loadCodes(t, MakeCodeReg(OP_ADD_REG, REG_FLAG, 1))
	cpu.SetV(REG_FLAG, 0xff)
	cpu.SetV(1, 0x02)

	_, err := cpu.Tick()
	assert.NoError(err)
	assert.Equal(uint8(1), cpu.V(REG_FLAG))
}

func TestCpu_Immediate(t *testing.T) {
	assert := assert.New(t)

	cpu := loadCodes(t,
		MakeCodeByte(OP_LD_IMM, 4, 0xf0),
		MakeCodeByte(OP_ADD_IMM, 4, 0x20),
		MakeCodeAddr(OP_LD_I, 0x345),
		MakeCodeReg(OP_ADD_I, 4, 0),
	)
	cpu.SetV(REG_FLAG, 0x77)

	for range 4 {
		_, err := cpu.Tick()
		assert.NoError(err)
	}

	assert.Equal(uint8(0x10), cpu.V(4))
	assert.Equal(uint8(0x77), cpu.V(REG_FLAG))
	assert.Equal(uint16(0x355), cpu.Index)
	assert.Equal(4, cpu.Ticks)
}

func TestCpu_Flow(t *testing.T) {
	assert := assert.New(t)

	cpu := loadCodes(t,
		MakeCodeAddr(OP_CALL, 0x206),  // 200
		MakeCodeAddr(OP_JP, 0x20a),    // 202
		MakeCode(OP_CLS),              // 204
		MakeCode(OP_RET),              // 206
		MakeCode(OP_CLS),              // 208
		MakeCodeAddr(OP_JP_V0, 0x200), // 20a
	)
	cpu.SetV(0, 0x0c)

	_, err := cpu.Tick()
	assert.NoError(err)
	assert.Equal(uint16(0x206), cpu.Pc)
	assert.Equal(uint8(1), cpu.Stack.Pointer)
	assert.Equal(uint16(0x200), cpu.Stack.Data[0])

	_, err = cpu.Tick()
	assert.NoError(err)
	assert.Equal(uint16(0x202), cpu.Pc)
	assert.True(cpu.Stack.Empty())

	_, err = cpu.Tick()
	assert.NoError(err)
	assert.Equal(uint16(0x20a), cpu.Pc)

	_, err = cpu.Tick()
	assert.NoError(err)
	assert.Equal(uint16(0x20c), cpu.Pc)
}

func TestCpu_StackErrors(t *testing.T) {
	assert := assert.New(t)

	cpu := loadCodes(t, MakeCode(OP_RET))
	_, err := cpu.Tick()
	assert.ErrorIs(err, ErrStackEmpty)
	assert.ErrorIs(err, ErrOpcode(0))
	assert.Equal(uint16(PROGRAM_START), cpu.Pc)

	cpu = loadCodes(t, MakeCodeAddr(OP_CALL, PROGRAM_START))
	for range STACK_LIMIT {
		_, err = cpu.Tick()
		assert.NoError(err)
	}
	assert.True(cpu.Stack.Full())

	_, err = cpu.Tick()
	assert.ErrorIs(err, ErrStackFull)
	assert.Equal(uint8(STACK_LIMIT), cpu.Stack.Pointer)
	assert.Equal(STACK_LIMIT, cpu.Ticks)
}

func TestCpu_DecodeError(t *testing.T) {
	assert := assert.New(t)

	cpu := loadCodes(t, Code(0x5011))
	before := *cpu

	event, err := cpu.Tick()
	assert.ErrorIs(err, ErrOpcodeDecode)

	var eo ErrOpcode
	assert.True(errors.As(err, &eo))
	assert.Equal(ErrOpcode(0x5011), eo)
	assert.Equal(Event{}, event)
	assert.Equal(before, *cpu)

	cpu = loadCodes(t, MakeCodeAddr(OP_SYS, 0x123))
	_, err = cpu.Tick()
	assert.ErrorIs(err, ErrOpcodeSys)
	assert.Equal(uint16(PROGRAM_START), cpu.Pc)
}

func TestCpu_PcRange(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Pc = MEMORY_SIZE - 1
	_, err := cpu.Tick()
	assert.ErrorIs(err, ErrPcRange)

	cpu = loadCodes(t, MakeCodeAddr(OP_JP_V0, 0xfff))
	cpu.SetV(0, 1)
	_, err = cpu.Tick()
	assert.ErrorIs(err, ErrPcRange)
	assert.Equal(uint16(PROGRAM_START), cpu.Pc)

	// Advancing past the last word of memory.
	table := [...]struct {
		pc    uint16
		codes []Code
	}{
		{pc: MEMORY_SIZE - 2, codes: []Code{MakeCode(OP_CLS)}},
		{pc: MEMORY_SIZE - 2, codes: []Code{MakeCodeByte(OP_LD_IMM, 3, 0x42)}},
		{pc: MEMORY_SIZE - 4, codes: []Code{MakeCodeByte(OP_SE_IMM, 0, 0)}},
		{pc: MEMORY_SIZE - 4, codes: []Code{MakeCodeReg(OP_SNE_REG, 0, 1), MakeCode(OP_CLS)}},
	}

	for n, entry := range table {
		cpu := NewCpu()
		cpu.SetV(1, 1)
		cpu.Screen.Toggle(0, 0)
		cpu.Pc = entry.pc
		for i, code := range entry.codes {
			bytes := code.Bytes()
			assert.NoError(cpu.WriteMemory(entry.pc+uint16(i*2), bytes[:]))
		}
		before := *cpu
		_, err := cpu.Tick()
		assert.ErrorIs(err, ErrPcRange, "%d", n)
		assert.Equal(before, *cpu, "%d", n)

		var other Cpu
		data, err := cpu.MarshalBinary()
		assert.NoError(err)
		assert.NoError(other.UnmarshalBinary(data), "%d", n)
	}

	// Returning to a call site in the last word of memory.
	cpu = NewCpu()
	cpu.Stack.Push(MEMORY_SIZE - 2)
	bytes := MakeCode(OP_RET).Bytes()
	assert.NoError(cpu.WriteMemory(PROGRAM_START, bytes[:]))
	_, err = cpu.Tick()
	assert.ErrorIs(err, ErrPcRange)
	assert.Equal(uint16(PROGRAM_START), cpu.Pc)
	assert.Equal(uint8(1), cpu.Stack.Pointer)
}

func TestCpu_Draw(t *testing.T) {
	assert := assert.New(t)

	cpu := loadCodes(t,
		MakeCodeReg(OP_LD_F, 0, 0),
		MakeCodeDraw(1, 2, FONT_HEIGHT),
		MakeCodeDraw(1, 2, FONT_HEIGHT),
	)

	_, err := cpu.Tick()
	assert.NoError(err)
	assert.Equal(uint16(FONT_START), cpu.Index)

	_, err = cpu.Tick()
	assert.NoError(err)
	assert.Equal(uint8(0), cpu.V(REG_FLAG))
	// The '0' glyph has 14 lit pixels.
	assert.Equal(14, cpu.Screen.Lit())
	assert.Equal(uint8(1), cpu.Pixel(0, 0))
	assert.Equal(uint8(1), cpu.Pixel(3, 0))
	assert.Equal(uint8(0), cpu.Pixel(1, 1))

	_, err = cpu.Tick()
	assert.NoError(err)
	assert.Equal(uint8(1), cpu.V(REG_FLAG))
	assert.Equal(0, cpu.Screen.Lit())
}

func TestCpu_DrawWrap(t *testing.T) {
	assert := assert.New(t)

	cpu := loadCodes(t,
		MakeCodeAddr(OP_LD_I, 0x300),
		MakeCodeDraw(0, 1, 1),
	)
	cpu.Memory[0x300] = 0xff
	cpu.SetV(0, 60)
	cpu.SetV(1, 0)

	for range 2 {
		_, err := cpu.Tick()
		assert.NoError(err)
	}

	for x := range 4 {
		assert.Equal(uint8(1), cpu.Pixel(60+x, 0), "x=%d", 60+x)
		assert.Equal(uint8(1), cpu.Pixel(x, 0), "x=%d", x)
	}
	assert.Equal(8, cpu.Screen.Lit())
	assert.Equal(uint8(0), cpu.V(REG_FLAG))

	fb := cpu.Framebuffer()
	assert.Len(fb, SCREEN_WIDTH*SCREEN_HEIGHT)
	assert.Equal(byte(1), fb[63])
	fb[63] = 0
	assert.Equal(uint8(1), cpu.Pixel(63, 0))
}

func TestCpu_Bcd(t *testing.T) {
	assert := assert.New(t)

	cpu := loadCodes(t,
		MakeCodeAddr(OP_LD_I, 0x300),
		MakeCodeReg(OP_LD_B, 5, 0),
	)
	cpu.SetV(5, 254)

	for range 2 {
		_, err := cpu.Tick()
		assert.NoError(err)
	}
	assert.Equal([]byte{2, 5, 4}, cpu.Memory[0x300:0x303])
	assert.Equal(uint16(0x300), cpu.Index)

	cpu = loadCodes(t,
		MakeCodeAddr(OP_LD_I, 0xffe),
		MakeCodeReg(OP_LD_B, 5, 0),
	)
	_, err := cpu.Tick()
	assert.NoError(err)
	_, err = cpu.Tick()
	assert.ErrorIs(err, ErrMemoryRange)
	assert.Equal(uint16(0x202), cpu.Pc)
}

func TestCpu_DumpLoad(t *testing.T) {
	assert := assert.New(t)

	cpu := loadCodes(t,
		MakeCodeAddr(OP_LD_I, 0x300),
		MakeCodeReg(OP_LD_MEM_VX, 3, 0),
		MakeCodeAddr(OP_LD_I, 0x301),
		MakeCodeReg(OP_LD_VX_MEM, 2, 0),
	)
	for n := range 4 {
		cpu.SetV(uint8(n), uint8(0x10+n))
	}
	cpu.SetV(4, 0x99)

	for range 2 {
		_, err := cpu.Tick()
		assert.NoError(err)
	}
	assert.Equal([]byte{0x10, 0x11, 0x12, 0x13, 0x00}, cpu.Memory[0x300:0x305])
	assert.Equal(uint16(0x300), cpu.Index)

	for range 2 {
		_, err := cpu.Tick()
		assert.NoError(err)
	}
	assert.Equal(uint8(0x11), cpu.V(0))
	assert.Equal(uint8(0x12), cpu.V(1))
	assert.Equal(uint8(0x13), cpu.V(2))
	assert.Equal(uint8(0x13), cpu.V(3))
	assert.Equal(uint8(0x99), cpu.V(4))
}

func TestCpu_Random(t *testing.T) {
	assert := assert.New(t)

	cpu := loadCodes(t, MakeCodeByte(OP_RND, 1, 0x0f))
	cpu.Rand = rand.New(rand.NewPCG(1, 2))
	expect := uint8(rand.New(rand.NewPCG(1, 2)).Uint32()) & 0x0f

	_, err := cpu.Tick()
	assert.NoError(err)
	assert.Equal(expect, cpu.V(1))
}

func TestCpu_Timers(t *testing.T) {
	assert := assert.New(t)

	program := []byte{0x60, 0x04, 0xF0, 0x18, 0x00, 0xE0, 0x12, 0x04}
	cpu := NewCpu()
	err := cpu.Load(program)
	assert.NoError(err)

	expect := []Event{
		{EVENT_OPCODE, 0x6004},
		{EVENT_AUDIO, 0xF018},
		{EVENT_AUDIO, 0x00E0},
		{EVENT_AUDIO, 0x1204},
		{EVENT_AUDIO, 0x00E0},
		{EVENT_OPCODE, 0x1204},
		{EVENT_OPCODE, 0x00E0},
	}
	for n, want := range expect {
		event, err := cpu.Tick()
		assert.NoError(err, "cycle %d", n+1)
		assert.Equal(want, event, "cycle %d", n+1)
	}
	assert.Equal(uint8(0), cpu.Sound)
	assert.Equal(uint16(0x206), cpu.Pc)

	cpu = loadCodes(t,
		MakeCodeByte(OP_LD_IMM, 0, 2),
		MakeCodeReg(OP_LD_DT_VX, 0, 0),
		MakeCodeReg(OP_LD_VX_DT, 1, 0),
	)
	for range 3 {
		_, err = cpu.Tick()
		assert.NoError(err)
	}
	assert.Equal(uint8(2), cpu.Delay)
	assert.Equal(uint8(2), cpu.V(1))

	cpu.TimerTick()
	assert.Equal(uint8(1), cpu.Delay)
	cpu.TimerTick()
	cpu.TimerTick()
	assert.Equal(uint8(0), cpu.Delay)
}

func TestCpu_String(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.SetV(0xa, 0x5c)
	text := cpu.String()
	assert.Contains(text, "   pc: 200\n")
	assert.Contains(text, "stack: --- (0)\n")
	assert.Contains(text, "   va: 5C\n")

	event := Event{Kind: EVENT_AUDIO, Code: 0x00E0}
	assert.Equal("audio: cls", event.String())
}
