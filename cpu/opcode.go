package cpu

import (
	"fmt"

	"github.com/ezrec/rvcore/bitfield"
)

// CodeOpcode is the major opcode, bits [6:0] of an instruction word.
type CodeOpcode uint32

const (
	OP_LOAD   = CodeOpcode(0x03) // lw
	OP_IMM    = CodeOpcode(0x13) // addi
	OP_AUIPC  = CodeOpcode(0x17) // auipc
	OP_STORE  = CodeOpcode(0x23) // sw
	OP_REG    = CodeOpcode(0x33) // add, sub, and, or, xor, sll, srl, sra
	OP_LUI    = CodeOpcode(0x37) // lui
	OP_BRANCH = CodeOpcode(0x63) // beq, bne
	OP_JALR   = CodeOpcode(0x67) // jalr
	OP_JAL    = CodeOpcode(0x6f) // jal
)

// Secondary selectors.
const (
	F3_ADD_SUB = uint32(0x0)
	F3_SLL     = uint32(0x1)
	F3_XOR     = uint32(0x4)
	F3_SRL_SRA = uint32(0x5)
	F3_OR      = uint32(0x6)
	F3_AND     = uint32(0x7)
	F3_ADDI    = uint32(0x0)
	F3_WORD    = uint32(0x2) // lw, sw
	F3_BEQ     = uint32(0x0)
	F3_BNE     = uint32(0x1)

	F7_BASE = uint32(0x00)
	F7_ALT  = uint32(0x20) // sub, sra
)

// CodeFormat is the field layout of an instruction word.
type CodeFormat int

//go:generate go tool stringer -linecomment -type=CodeFormat
const (
	FORMAT_UNKNOWN = CodeFormat(0) // ?
	FORMAT_R       = CodeFormat(1) // R
	FORMAT_I       = CodeFormat(2) // I
	FORMAT_S       = CodeFormat(3) // S
	FORMAT_B       = CodeFormat(4) // B
	FORMAT_U       = CodeFormat(5) // U
	FORMAT_J       = CodeFormat(6) // J
)

// CodeInsn identifies a single instruction of the supported subset.
type CodeInsn int

//go:generate go tool stringer -linecomment -type=CodeInsn
const (
	INSN_ILLEGAL = CodeInsn(0)  // illegal
	INSN_ADD     = CodeInsn(1)  // add
	INSN_SUB     = CodeInsn(2)  // sub
	INSN_AND     = CodeInsn(3)  // and
	INSN_OR      = CodeInsn(4)  // or
	INSN_XOR     = CodeInsn(5)  // xor
	INSN_SLL     = CodeInsn(6)  // sll
	INSN_SRL     = CodeInsn(7)  // srl
	INSN_SRA     = CodeInsn(8)  // sra
	INSN_ADDI    = CodeInsn(9)  // addi
	INSN_LW      = CodeInsn(10) // lw
	INSN_SW      = CodeInsn(11) // sw
	INSN_BEQ     = CodeInsn(12) // beq
	INSN_BNE     = CodeInsn(13) // bne
	INSN_JAL     = CodeInsn(14) // jal
	INSN_JALR    = CodeInsn(15) // jalr
	INSN_LUI     = CodeInsn(16) // lui
	INSN_AUIPC   = CodeInsn(17) // auipc
)

// Encoding of an instruction.
type Encoding struct {
	Format CodeFormat
	Opcode CodeOpcode
	Funct3 uint32
	Funct7 uint32
	Alu    AluOp // ALU operation of the R-type and I-type arithmetic.
}

// insnEncoding is the encoding table of the supported instructions.
var insnEncoding = map[CodeInsn]Encoding{
	INSN_ADD:   {FORMAT_R, OP_REG, F3_ADD_SUB, F7_BASE, ALU_OP_ADD},
	INSN_SUB:   {FORMAT_R, OP_REG, F3_ADD_SUB, F7_ALT, ALU_OP_SUB},
	INSN_AND:   {FORMAT_R, OP_REG, F3_AND, F7_BASE, ALU_OP_AND},
	INSN_OR:    {FORMAT_R, OP_REG, F3_OR, F7_BASE, ALU_OP_OR},
	INSN_XOR:   {FORMAT_R, OP_REG, F3_XOR, F7_BASE, ALU_OP_XOR},
	INSN_SLL:   {FORMAT_R, OP_REG, F3_SLL, F7_BASE, ALU_OP_SLL},
	INSN_SRL:   {FORMAT_R, OP_REG, F3_SRL_SRA, F7_BASE, ALU_OP_SRL},
	INSN_SRA:   {FORMAT_R, OP_REG, F3_SRL_SRA, F7_ALT, ALU_OP_SRA},
	INSN_ADDI:  {FORMAT_I, OP_IMM, F3_ADDI, 0, ALU_OP_ADD},
	INSN_LW:    {FORMAT_I, OP_LOAD, F3_WORD, 0, ALU_OP_ADD},
	INSN_SW:    {FORMAT_S, OP_STORE, F3_WORD, 0, ALU_OP_ADD},
	INSN_BEQ:   {FORMAT_B, OP_BRANCH, F3_BEQ, 0, ALU_OP_ADD},
	INSN_BNE:   {FORMAT_B, OP_BRANCH, F3_BNE, 0, ALU_OP_ADD},
	INSN_JAL:   {FORMAT_J, OP_JAL, 0, 0, ALU_OP_ADD},
	INSN_JALR:  {FORMAT_I, OP_JALR, 0, 0, ALU_OP_ADD},
	INSN_LUI:   {FORMAT_U, OP_LUI, 0, 0, ALU_OP_ADD},
	INSN_AUIPC: {FORMAT_U, OP_AUIPC, 0, 0, ALU_OP_ADD},
}

// Encoding returns the encoding of the instruction.
func (insn CodeInsn) Encoding() (enc Encoding, ok bool) {
	enc, ok = insnEncoding[insn]
	return
}

// Fields of a decoded instruction.
type Fields struct {
	Opcode CodeOpcode
	Funct3 uint32
	Funct7 uint32
	Rd     int
	Rs1    int
	Rs2    int
	Format CodeFormat
	Imm    int32 // Sign extended immediate of Format, 0 for R-type.
}

// Code is a single 32-bit instruction word.
type Code uint32

// Opcode returns bits [6:0].
func (code Code) Opcode() CodeOpcode {
	return CodeOpcode(bitfield.Extract(uint32(code), 6, 0))
}

// Funct3 returns bits [14:12].
func (code Code) Funct3() uint32 {
	return bitfield.Extract(uint32(code), 14, 12)
}

// Funct7 returns bits [31:25].
func (code Code) Funct7() uint32 {
	return bitfield.Extract(uint32(code), 31, 25)
}

// Rd returns the destination register index, bits [11:7].
func (code Code) Rd() int {
	return int(bitfield.Extract(uint32(code), 11, 7))
}

// Rs1 returns the first source register index, bits [19:15].
func (code Code) Rs1() int {
	return int(bitfield.Extract(uint32(code), 19, 15))
}

// Rs2 returns the second source register index, bits [24:20].
func (code Code) Rs2() int {
	return int(bitfield.Extract(uint32(code), 24, 20))
}

// ImmI returns the I-type immediate.
func (code Code) ImmI() int32 {
	return int32(bitfield.SignExtend(bitfield.Extract(uint32(code), 31, 20), 12))
}

// ImmS returns the S-type immediate.
func (code Code) ImmS() int32 {
	word := uint32(code)
	value := bitfield.Extract(word, 31, 25)<<5 |
		bitfield.Extract(word, 11, 7)
	return int32(bitfield.SignExtend(value, 12))
}

// ImmB returns the B-type immediate. Bit 0 is always clear.
func (code Code) ImmB() int32 {
	word := uint32(code)
	value := bitfield.Extract(word, 31, 31)<<12 |
		bitfield.Extract(word, 7, 7)<<11 |
		bitfield.Extract(word, 30, 25)<<5 |
		bitfield.Extract(word, 11, 8)<<1
	return int32(bitfield.SignExtend(value, 13))
}

// ImmU returns the U-type immediate. Bits 11..0 are always clear.
func (code Code) ImmU() int32 {
	return int32(bitfield.Extract(uint32(code), 31, 12) << 12)
}

// ImmJ returns the J-type immediate. Bit 0 is always clear.
func (code Code) ImmJ() int32 {
	word := uint32(code)
	value := bitfield.Extract(word, 31, 31)<<20 |
		bitfield.Extract(word, 19, 12)<<12 |
		bitfield.Extract(word, 20, 20)<<11 |
		bitfield.Extract(word, 30, 21)<<1
	return int32(bitfield.SignExtend(value, 21))
}

// Format returns the field layout selected by the opcode.
func (code Code) Format() CodeFormat {
	switch code.Opcode() {
	case OP_REG:
		return FORMAT_R
	case OP_IMM, OP_LOAD, OP_JALR:
		return FORMAT_I
	case OP_STORE:
		return FORMAT_S
	case OP_BRANCH:
		return FORMAT_B
	case OP_LUI, OP_AUIPC:
		return FORMAT_U
	case OP_JAL:
		return FORMAT_J
	}

	return FORMAT_UNKNOWN
}

// Imm returns the immediate for the code's format.
func (code Code) Imm() (imm int32) {
	switch code.Format() {
	case FORMAT_I:
		imm = code.ImmI()
	case FORMAT_S:
		imm = code.ImmS()
	case FORMAT_B:
		imm = code.ImmB()
	case FORMAT_U:
		imm = code.ImmU()
	case FORMAT_J:
		imm = code.ImmJ()
	}

	return
}

// Decode extracts all of the fields of the code.
func (code Code) Decode() Fields {
	return Fields{
		Opcode: code.Opcode(),
		Funct3: code.Funct3(),
		Funct7: code.Funct7(),
		Rd:     code.Rd(),
		Rs1:    code.Rs1(),
		Rs2:    code.Rs2(),
		Format: code.Format(),
		Imm:    code.Imm(),
	}
}

// Insn matches the (opcode, funct3, funct7) tuple against the supported
// subset. Anything unmatched is INSN_ILLEGAL.
func (code Code) Insn() CodeInsn {
	op := code.Opcode()
	f3 := code.Funct3()
	f7 := code.Funct7()

	type key struct {
		f3 uint32
		f7 uint32
	}

	switch op {
	case OP_REG:
		switch (key{f3, f7}) {
		case key{F3_ADD_SUB, F7_BASE}:
			return INSN_ADD
		case key{F3_ADD_SUB, F7_ALT}:
			return INSN_SUB
		case key{F3_AND, F7_BASE}:
			return INSN_AND
		case key{F3_OR, F7_BASE}:
			return INSN_OR
		case key{F3_XOR, F7_BASE}:
			return INSN_XOR
		case key{F3_SLL, F7_BASE}:
			return INSN_SLL
		case key{F3_SRL_SRA, F7_BASE}:
			return INSN_SRL
		case key{F3_SRL_SRA, F7_ALT}:
			return INSN_SRA
		default:
			return INSN_ILLEGAL
		}
	case OP_IMM:
		if f3 == F3_ADDI {
			return INSN_ADDI
		}
	case OP_LOAD:
		if f3 == F3_WORD {
			return INSN_LW
		}
	case OP_STORE:
		if f3 == F3_WORD {
			return INSN_SW
		}
	case OP_BRANCH:
		switch f3 {
		case F3_BEQ:
			return INSN_BEQ
		case F3_BNE:
			return INSN_BNE
		}
	case OP_JAL:
		return INSN_JAL
	case OP_JALR:
		return INSN_JALR
	case OP_LUI:
		return INSN_LUI
	case OP_AUIPC:
		return INSN_AUIPC
	}

	return INSN_ILLEGAL
}

// IsHalt returns true for the halt convention, 'jal x0, 0'.
func (code Code) IsHalt() bool {
	return code.Opcode() == OP_JAL && code.Rd() == 0 && code.ImmJ() == 0
}

// immMask is the set of bits holding the immediate, per format.
var immMask = map[CodeFormat]uint32{
	FORMAT_I: 0xfff0_0000,
	FORMAT_S: 0xfe00_0f80,
	FORMAT_B: 0xfe00_0f80,
	FORMAT_U: 0xffff_f000,
	FORMAT_J: 0xffff_f000,
}

// encodeImm scatters an immediate into the bit positions of a format.
func encodeImm(format CodeFormat, imm int32) (bits uint32) {
	value := uint32(imm)
	switch format {
	case FORMAT_I:
		bits = bitfield.Extract(value, 11, 0) << 20
	case FORMAT_S:
		bits = bitfield.Extract(value, 11, 5)<<25 |
			bitfield.Extract(value, 4, 0)<<7
	case FORMAT_B:
		bits = bitfield.Extract(value, 12, 12)<<31 |
			bitfield.Extract(value, 10, 5)<<25 |
			bitfield.Extract(value, 4, 1)<<8 |
			bitfield.Extract(value, 11, 11)<<7
	case FORMAT_U:
		bits = value & 0xffff_f000
	case FORMAT_J:
		bits = bitfield.Extract(value, 20, 20)<<31 |
			bitfield.Extract(value, 10, 1)<<21 |
			bitfield.Extract(value, 11, 11)<<20 |
			bitfield.Extract(value, 19, 12)<<12
	}

	return
}

// ImmFits returns true if imm is exactly representable by the format.
func ImmFits(format CodeFormat, imm int64) bool {
	switch format {
	case FORMAT_I, FORMAT_S:
		return imm >= -(1<<11) && imm < (1<<11)
	case FORMAT_B:
		return imm&1 == 0 && imm >= -(1<<12) && imm < (1<<12)
	case FORMAT_J:
		return imm&1 == 0 && imm >= -(1<<20) && imm < (1<<20)
	case FORMAT_U:
		return imm&0xfff == 0 && imm >= -(1<<31) && imm < (1<<32)
	}

	return false
}

// WithImm returns the code with its immediate replaced by imm.
func (code Code) WithImm(imm int32) Code {
	format := code.Format()
	mask, ok := immMask[format]
	if !ok {
		return code
	}
	return Code((uint32(code) & ^mask) | encodeImm(format, imm))
}

func reg5(index int) uint32 {
	return uint32(index) & 0x1f
}

// MakeCodeR creates a register-register instruction.
func MakeCodeR(op CodeOpcode, f3, f7 uint32, rd, rs1, rs2 int) Code {
	return Code((f7&0x7f)<<25 | reg5(rs2)<<20 | reg5(rs1)<<15 | (f3&7)<<12 | reg5(rd)<<7 | uint32(op&0x7f))
}

// MakeCodeI creates a register-immediate instruction.
func MakeCodeI(op CodeOpcode, f3 uint32, rd, rs1 int, imm int32) Code {
	return Code(encodeImm(FORMAT_I, imm) | reg5(rs1)<<15 | (f3&7)<<12 | reg5(rd)<<7 | uint32(op&0x7f))
}

// MakeCodeS creates a store instruction.
func MakeCodeS(op CodeOpcode, f3 uint32, rs1, rs2 int, imm int32) Code {
	return Code(encodeImm(FORMAT_S, imm) | reg5(rs2)<<20 | reg5(rs1)<<15 | (f3&7)<<12 | uint32(op&0x7f))
}

// MakeCodeB creates a conditional branch instruction.
func MakeCodeB(op CodeOpcode, f3 uint32, rs1, rs2 int, imm int32) Code {
	return Code(encodeImm(FORMAT_B, imm) | reg5(rs2)<<20 | reg5(rs1)<<15 | (f3&7)<<12 | uint32(op&0x7f))
}

// MakeCodeU creates an upper-immediate instruction. imm is the final value,
// the low 12 bits are discarded.
func MakeCodeU(op CodeOpcode, rd int, imm int32) Code {
	return Code(encodeImm(FORMAT_U, imm) | reg5(rd)<<7 | uint32(op&0x7f))
}

// MakeCodeJ creates a jump instruction.
func MakeCodeJ(op CodeOpcode, rd int, imm int32) Code {
	return Code(encodeImm(FORMAT_J, imm) | reg5(rd)<<7 | uint32(op&0x7f))
}

// MakeCodeHalt creates the halt instruction, 'jal x0, 0'.
func MakeCodeHalt() Code {
	return MakeCodeJ(OP_JAL, 0, 0)
}

// MakeCode creates an instruction of the supported subset. Operands that
// the instruction format does not use are ignored.
func MakeCode(insn CodeInsn, rd, rs1, rs2 int, imm int32) (code Code, ok bool) {
	enc, ok := insn.Encoding()
	if !ok {
		return
	}

	switch enc.Format {
	case FORMAT_R:
		code = MakeCodeR(enc.Opcode, enc.Funct3, enc.Funct7, rd, rs1, rs2)
	case FORMAT_I:
		code = MakeCodeI(enc.Opcode, enc.Funct3, rd, rs1, imm)
	case FORMAT_S:
		code = MakeCodeS(enc.Opcode, enc.Funct3, rs1, rs2, imm)
	case FORMAT_B:
		code = MakeCodeB(enc.Opcode, enc.Funct3, rs1, rs2, imm)
	case FORMAT_U:
		code = MakeCodeU(enc.Opcode, rd, imm)
	case FORMAT_J:
		code = MakeCodeJ(enc.Opcode, rd, imm)
	}

	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	insn := code.Insn()

	rd := RegisterName(code.Rd())
	rs1 := RegisterName(code.Rs1())
	rs2 := RegisterName(code.Rs2())

	switch insn {
	case INSN_ADD, INSN_SUB, INSN_AND, INSN_OR, INSN_XOR, INSN_SLL, INSN_SRL, INSN_SRA:
		out = fmt.Sprintf("%v %v, %v, %v", insn, rd, rs1, rs2)
	case INSN_ADDI:
		out = fmt.Sprintf("%v %v, %v, %d", insn, rd, rs1, code.ImmI())
	case INSN_LW:
		out = fmt.Sprintf("%v %v, %d(%v)", insn, rd, code.ImmI(), rs1)
	case INSN_JALR:
		out = fmt.Sprintf("%v %v, %d(%v)", insn, rd, code.ImmI(), rs1)
	case INSN_SW:
		out = fmt.Sprintf("%v %v, %d(%v)", insn, rs2, code.ImmS(), rs1)
	case INSN_BEQ, INSN_BNE:
		out = fmt.Sprintf("%v %v, %v, %d", insn, rs1, rs2, code.ImmB())
	case INSN_JAL:
		if code.IsHalt() {
			out = "halt"
		} else {
			out = fmt.Sprintf("%v %v, %d", insn, rd, code.ImmJ())
		}
	case INSN_LUI, INSN_AUIPC:
		out = fmt.Sprintf("%v %v, 0x%x", insn, rd, uint32(code.ImmU())>>12)
	default:
		out = fmt.Sprintf(".word 0x%08x", uint32(code))
	}

	return
}
