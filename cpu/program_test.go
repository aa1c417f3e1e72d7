package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Pc: 0, Words: []string{"li", "a0", "5"},
				Codes: []Code{0x00500513}},
			{LineNo: 2, Pc: 4, Words: []string{"li", "a1", "0x12345678"},
				Codes: []Code{0x123455b7, 0x67858593}},
			{LineNo: 4, Pc: 12, Words: []string{"halt"},
				Codes: []Code{MakeCodeHalt()}},
		},
	}

	dbg := prog.Debug(0)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(4)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(8)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.Opcode.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(14)
	assert.NotNil(dbg.Opcode)
	assert.Equal(4, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Pc: 0, Words: []string{"nop"}, Codes: []Code{0x00000013}},
		},
	}

	dbg := prog.Debug(4)
	assert.Nil(dbg.Opcode)
	assert.Equal(0, dbg.Index)

	dbg = (&Program{}).Debug(0)
	assert.Nil(dbg.Opcode)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Pc: 0, Codes: []Code{0x00500513}},
			{LineNo: 2, Pc: 4, Codes: []Code{0x123455b7, 0x67858593}},
			{LineNo: 3, Pc: 16, Codes: []Code{MakeCodeHalt()}},
		},
	}

	assert.Equal([]uint32{0x00500513, 0x123455b7, 0x67858593, 0, 0x0000006f}, prog.Binary())
	assert.Empty((&Program{}).Binary())
}

func TestProgram_Codes(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader("li a1, 0x12345678\nhalt\n"))
	assert.NoError(err)

	var pcs []uint32
	var codes []Code
	for pc, code := range prog.Codes() {
		pcs = append(pcs, pc)
		codes = append(codes, code)
	}
	assert.Equal([]uint32{0, 4, 8}, pcs)
	assert.Equal([]Code{0x123455b7, 0x67858593, 0x0000006f}, codes)

	// Early stop
	count := 0
	for range prog.Codes() {
		count++
		break
	}
	assert.Equal(1, count)
}
