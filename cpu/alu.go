package cpu

// AluOp is an arithmetic or logical operation.
type AluOp int

//go:generate go tool stringer -linecomment -type=AluOp
const (
	ALU_OP_ADD = AluOp(iota) // add
	ALU_OP_SUB               // sub
	ALU_OP_AND               // and
	ALU_OP_OR                // or
	ALU_OP_XOR               // xor
	ALU_OP_SLL               // sll
	ALU_OP_SRL               // srl
	ALU_OP_SRA               // sra
)

// Alu computes a op b. All arithmetic wraps modulo 2^32, and shift amounts
// use only the low 5 bits of b.
func Alu(op AluOp, a, b uint32) (result uint32) {
	shamt := b & 0x1f

	switch op {
	case ALU_OP_ADD:
		result = a + b
	case ALU_OP_SUB:
		result = a - b
	case ALU_OP_AND:
		result = a & b
	case ALU_OP_OR:
		result = a | b
	case ALU_OP_XOR:
		result = a ^ b
	case ALU_OP_SLL:
		result = a << shamt
	case ALU_OP_SRL:
		result = a >> shamt
	case ALU_OP_SRA:
		result = uint32(int32(a) >> shamt)
	default:
		panic(f("unknown ALU operation %d", int(op)))
	}

	return
}
