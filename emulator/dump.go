package emulator

import (
	"fmt"
	"io"

	"github.com/ezrec/rvcore/cpu"
	"github.com/ezrec/rvcore/memory"
)

// DUMP_COLUMNS is the default number of registers per dump row.
const DUMP_COLUMNS = 4

// DumpRegisters writes the register file, columns registers per row.
func DumpRegisters(w io.Writer, regs [cpu.REGISTER_COUNT]uint32, columns int) (err error) {
	if columns <= 0 {
		columns = DUMP_COLUMNS
	}

	for n, value := range regs {
		sep := "\t"
		if (n+1)%columns == 0 || n == len(regs)-1 {
			sep = "\n"
		}
		_, err = fmt.Fprintf(w, "x%02d: 0x%08x%v", n, value, sep)
		if err != nil {
			return
		}
	}

	return
}

// DumpMemory writes words memory words starting at addr, one per line.
// The dump ends early at the first word out of range.
func DumpMemory(w io.Writer, mem *memory.Memory, addr uint32, words int) (err error) {
	for here, value := range mem.Words(addr, words) {
		_, err = fmt.Fprintf(w, "[0x%08x] = 0x%08x\n", here, value)
		if err != nil {
			return
		}
	}

	return
}
