package cpu

import (
	"iter"
)

// Opcode is a single assembled source line.
type Opcode struct {
	LineNo    int      // Source line number.
	Pc        uint32   // Byte address of the first code.
	Words     []string // Source words, after equate expansion.
	Codes     []Code   // Generated instruction words.
	LinkLabel string   // Label whose PC relative offset patches the last code.
}

// Program is an assembled instruction listing.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the source of an instruction address.
type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode that generated the code at pc.
func (prog *Program) Debug(pc uint32) (dbg Debug) {
	for n, op := range prog.Opcodes {
		size := uint32(len(op.Codes)) * 4
		if pc >= op.Pc && pc < op.Pc+size {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(pc-op.Pc) / 4,
			}
			break
		}
	}

	return
}

// Binary returns the instruction memory image of the program, one word per
// 4 bytes starting at address 0. Gaps are filled with zero words.
func (prog *Program) Binary() (bins []uint32) {
	for pc, code := range prog.Codes() {
		index := int(pc / 4)
		for len(bins) < index {
			bins = append(bins, 0)
		}
		if index < len(bins) {
			bins[index] = uint32(code)
		} else {
			bins = append(bins, uint32(code))
		}
	}

	return
}

// Codes iterates over the (pc, code) pairs of the program.
func (prog *Program) Codes() iter.Seq2[uint32, Code] {
	return func(yield func(pc uint32, code Code) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Pc+uint32(n)*4, code) {
					return
				}
			}
		}
	}
}
