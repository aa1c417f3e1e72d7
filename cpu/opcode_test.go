package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeDecode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code   Code
		insn   CodeInsn
		fields Fields
	}){
		{0x00500293, INSN_ADDI, Fields{Opcode: OP_IMM, Rd: 5, Rs2: 5, Format: FORMAT_I, Imm: 5}},
		{0x002081b3, INSN_ADD, Fields{Opcode: OP_REG, Rd: 3, Rs1: 1, Rs2: 2, Format: FORMAT_R}},
		{0x402081b3, INSN_SUB, Fields{Opcode: OP_REG, Funct7: 0x20, Rd: 3, Rs1: 1, Rs2: 2, Format: FORMAT_R}},
		{0x00812283, INSN_LW, Fields{Opcode: OP_LOAD, Funct3: 2, Rd: 5, Rs1: 2, Rs2: 8, Format: FORMAT_I, Imm: 8}},
		{0xfe512e23, INSN_SW, Fields{Opcode: OP_STORE, Funct3: 2, Funct7: 0x7f, Rd: 0x1c, Rs1: 2, Rs2: 5, Format: FORMAT_S, Imm: -4}},
		{0x00000463, INSN_BEQ, Fields{Opcode: OP_BRANCH, Rd: 8, Format: FORMAT_B, Imm: 8}},
		{0x001000ef, INSN_JAL, Fields{Opcode: OP_JAL, Rd: 1, Rs2: 1, Format: FORMAT_J, Imm: 2048}},
		{0x0000006f, INSN_JAL, Fields{Opcode: OP_JAL, Format: FORMAT_J}},
		{0x123452b7, INSN_LUI, Fields{Opcode: OP_LUI, Funct3: 5, Funct7: 0x09, Rd: 5, Rs1: 8, Rs2: 3, Format: FORMAT_U, Imm: 0x12345000}},
		{0xfffff297, INSN_AUIPC, Fields{Opcode: OP_AUIPC, Funct3: 7, Funct7: 0x7f, Rd: 5, Rs1: 31, Rs2: 31, Format: FORMAT_U, Imm: -4096}},
		{0x000080e7, INSN_JALR, Fields{Opcode: OP_JALR, Rd: 1, Rs1: 1, Format: FORMAT_I}},
		{0xffffffff, INSN_ILLEGAL, Fields{Opcode: 0x7f, Funct3: 7, Funct7: 0x7f, Rd: 31, Rs1: 31, Rs2: 31, Format: FORMAT_UNKNOWN}},
	}

	for _, entry := range table {
		assert.Equal(entry.fields, entry.code.Decode(), "0x%08x", uint32(entry.code))
		assert.Equal(entry.insn, entry.code.Insn(), "0x%08x", uint32(entry.code))
	}
}

func TestCodeImmediateBounds(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		insn CodeInsn
		imm  int32
	}){
		{INSN_ADDI, -2048},
		{INSN_ADDI, 2047},
		{INSN_ADDI, -1},
		{INSN_SW, -2048},
		{INSN_SW, 2047},
		{INSN_SW, -1},
		{INSN_BEQ, -4096},
		{INSN_BEQ, 4094},
		{INSN_BEQ, -2},
		{INSN_BNE, 2048},
		{INSN_JAL, -(1 << 20)},
		{INSN_JAL, (1 << 20) - 2},
		{INSN_JAL, -2},
		{INSN_JAL, 2048},
		{INSN_LUI, -(1 << 31)},
		{INSN_LUI, 0x7ffff000},
		{INSN_AUIPC, -4096},
	}

	for _, entry := range table {
		code, ok := MakeCode(entry.insn, 7, 9, 11, entry.imm)
		assert.True(ok)
		assert.Equal(entry.insn, code.Insn(), "%v %d", entry.insn, entry.imm)
		assert.Equal(entry.imm, code.Imm(), "%v %d", entry.insn, entry.imm)
		assert.True(ImmFits(code.Format(), int64(entry.imm)), "%v %d", entry.insn, entry.imm)

		// Replacing the immediate leaves everything else alone.
		other := code.WithImm(0)
		assert.Equal(int32(0), other.Imm())
		assert.Equal(code.Insn(), other.Insn())
		assert.Equal(uint32(code)&^immMask[code.Format()], uint32(other)&^immMask[other.Format()],
			"%v %d", entry.insn, entry.imm)
		if code.Format() != FORMAT_S && code.Format() != FORMAT_B {
			assert.Equal(code.Rd(), other.Rd())
		}
		assert.Equal(code.Rs1(), other.Rs1())
		assert.Equal(code, other.WithImm(entry.imm))
	}
}

func TestImmFits(t *testing.T) {
	assert := assert.New(t)

	assert.False(ImmFits(FORMAT_I, 2048))
	assert.False(ImmFits(FORMAT_I, -2049))
	assert.False(ImmFits(FORMAT_S, 4095))
	assert.False(ImmFits(FORMAT_B, 3))
	assert.False(ImmFits(FORMAT_B, 4096))
	assert.False(ImmFits(FORMAT_J, 1<<20))
	assert.False(ImmFits(FORMAT_J, 7))
	assert.False(ImmFits(FORMAT_U, 0x800))
	assert.False(ImmFits(FORMAT_R, 0))
	assert.True(ImmFits(FORMAT_U, 0xfffff000))
}

func TestCodeHalt(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Code(0x0000006f), MakeCodeHalt())
	assert.True(Code(0x0000006f).IsHalt())
	assert.False(Code(0x000000ef).IsHalt()) // jal x1, 0
	assert.False(Code(0x0080006f).IsHalt()) // jal x0, 8
	assert.Equal("halt", MakeCodeHalt().String())
}

func TestCodeString(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		text string
	}){
		{0x00500293, "addi x5, x0, 5"},
		{0x402081b3, "sub x3, x1, x2"},
		{0x00812283, "lw x5, 8(x2)"},
		{0xfe512e23, "sw x5, -4(x2)"},
		{0x00000463, "beq x0, x0, 8"},
		{0x001000ef, "jal x1, 2048"},
		{0x000080e7, "jalr x1, 0(x1)"},
		{0x123452b7, "lui x5, 0x12345"},
		{0x00001297, "auipc x5, 0x1"},
		{0xffffffff, ".word 0xffffffff"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, entry.code.String())
	}
}

func TestInsnString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("illegal", INSN_ILLEGAL.String())
	assert.Equal("auipc", INSN_AUIPC.String())
	assert.Equal("CodeInsn(99)", CodeInsn(99).String())
	assert.Equal("B", FORMAT_B.String())

	_, ok := INSN_ILLEGAL.Encoding()
	assert.False(ok)
	_, ok = MakeCode(INSN_ILLEGAL, 0, 0, 0, 0)
	assert.False(ok)
}

func TestAlu(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op     AluOp
		a      uint32
		b      uint32
		result uint32
	}){
		{ALU_OP_ADD, 0x7fffffff, 1, 0x80000000},
		{ALU_OP_SUB, 0, 1, 0xffffffff},
		{ALU_OP_AND, 0x0ff0, 0x00ff, 0x00f0},
		{ALU_OP_OR, 0x0ff0, 0x00ff, 0x0fff},
		{ALU_OP_XOR, 0x0ff0, 0x00ff, 0x0f0f},
		{ALU_OP_SLL, 0x1, 31, 0x80000000},
		{ALU_OP_SLL, 0x1, 32, 0x1},
		{ALU_OP_SRL, 0xffffffff, 31, 0x1},
		{ALU_OP_SRL, 0xffffffff, 64, 0xffffffff},
		{ALU_OP_SRA, 0xffffff00, 4, 0xfffffff0},
		{ALU_OP_SRA, 0x7fffff00, 4, 0x07fffff0},
		{ALU_OP_SRA, 0x80000000, 31, 0xffffffff},
	}

	for _, entry := range table {
		assert.Equal(entry.result, Alu(entry.op, entry.a, entry.b), "%v 0x%x 0x%x", entry.op, entry.a, entry.b)
	}

	assert.Panics(func() { Alu(AluOp(99), 0, 0) })
}

func TestRegisterFile(t *testing.T) {
	assert := assert.New(t)

	var rf RegisterFile

	for _, value := range []uint32{0, 1, 0xffffffff, 0xdeadbeef} {
		assert.NoError(rf.Write(0, value))
		x0, err := rf.Read(0)
		assert.NoError(err)
		assert.Equal(uint32(0), x0)
	}

	assert.NoError(rf.Write(31, 0x1234))
	x31, err := rf.Read(31)
	assert.NoError(err)
	assert.Equal(uint32(0x1234), x31)

	for _, index := range []int{-1, 32, 1000} {
		_, err = rf.Read(index)
		assert.ErrorIs(err, ErrRegister(0))
		assert.Equal(ErrRegister(index), err)
		err = rf.Write(index, 1)
		assert.ErrorIs(err, ErrRegister(0))
	}

	rf.Reset()
	assert.Equal([REGISTER_COUNT]uint32{}, rf.Values())
}

func TestRegisterNames(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		index int
		ok    bool
	}){
		{"x0", 0, true},
		{"zero", 0, true},
		{"X31", 31, true},
		{"ra", 1, true},
		{"sp", 2, true},
		{"fp", 8, true},
		{"s0", 8, true},
		{"a0", 10, true},
		{"t6", 31, true},
		{"s11", 27, true},
		{"x32", 0, false},
		{"x", 0, false},
		{"x-1", 0, false},
		{"r1", 0, false},
		{"", 0, false},
	}

	for _, entry := range table {
		index, ok := ParseRegister(entry.name)
		assert.Equal(entry.ok, ok, entry.name)
		if entry.ok {
			assert.Equal(entry.index, index, entry.name)
		}
	}

	assert.Equal("x7", RegisterName(7))
	assert.Equal("t2", RegisterAbiName(7))
	assert.Equal("x40", RegisterAbiName(40))
}
