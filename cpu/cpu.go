package cpu

import (
	"errors"
	"fmt"
	"iter"
	"maps"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/rvcore/memory"
)

// Status is the control result of a single step.
type Status int

//go:generate go tool stringer -linecomment -type=Status
const (
	STATUS_CONTINUE = Status(iota) // continue
	STATUS_HALT                    // halt
	STATUS_ILLEGAL                 // illegal
)

// State is the execution state of the CPU.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_RUNNING = State(iota) // running
	STATE_HALTED                // halted
	STATE_ILLEGAL               // illegal
)

// Outcome of a single step.
type Outcome struct {
	Status Status
	Pc     uint32 // Address of the executed instruction.
	Code   Code   // Raw instruction word.
	NextPc uint32 // Committed PC after the step.
}

var _cpu_defines = map[string]string{
	"IMEM_SIZE": fmt.Sprintf("0x%x", IMEM_SIZE),
	"DMEM_SIZE": fmt.Sprintf("0x%x", DMEM_SIZE),
	"DATA_BASE": fmt.Sprintf("0x%x", DATA_BASE),
}

// Cpu is the simulation context of the RV32I subset core.
type Cpu struct {
	Imem     *memory.Memory // Instruction memory.
	Dmem     *memory.Memory // Data memory.
	Register RegisterFile   // Register bank.
	Pc       uint32         // Program counter.
	State    State          // Execution state.

	Steps     uint64 // Completed steps counter.
	Unaligned int    // Unaligned access counter.

	Last Outcome // Outcome of the most recent step.

	config Config
}

// NewCpu creates a new CPU with the memory sizes of the configuration.
func NewCpu(config Config) (cpu *Cpu) {
	config = config.normalize()

	cpu = &Cpu{
		Imem:   memory.NewMemory(config.ImemSize),
		Dmem:   memory.NewMemory(config.DmemSize),
		config: config,
	}

	return
}

// Config returns the construction time configuration.
func (cpu *Cpu) Config() Config {
	return cpu.config
}

// Defines for the cpu, with the configured memory sizes.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	defines := maps.Clone(_cpu_defines)
	defines["IMEM_SIZE"] = fmt.Sprintf("0x%x", cpu.Imem.Size())
	defines["DMEM_SIZE"] = fmt.Sprintf("0x%x", cpu.Dmem.Size())
	return maps.All(defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("% 5s: 0x%08x\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 5s: %v\n", "state", cpu.State)
	for n, value := range cpu.Register.Values() {
		text += fmt.Sprintf("% 5s: %04X_%04X\n", RegisterAbiName(n), value>>16, value&0xffff)
	}

	return
}

// Reset the CPU state.
// - Clears the registers, PC and data memory.
// - Zeros statistics counters.
// - Returns to the running state.
// Instruction memory is left untouched.
func (cpu *Cpu) Reset() {
	cpu.config.Logger.Debug(f("cpu: reset"))

	cpu.Register.Reset()
	cpu.Dmem.Clear()
	cpu.Pc = 0
	cpu.State = STATE_RUNNING
	cpu.Steps = 0
	cpu.Unaligned = 0
	cpu.Last = Outcome{}
}

// Fetch reads the instruction word at the PC.
func (cpu *Cpu) Fetch() (code Code, err error) {
	word, err := cpu.Imem.LoadU32(cpu.Pc)
	if err != nil {
		err = errors.Join(ErrFetch, err)
		return
	}

	code = Code(word)
	return
}

// Step executes a single fetch, decode and execute cycle.
// A terminal CPU returns its terminal outcome again.
func (cpu *Cpu) Step() (outcome Outcome, err error) {
	if cpu.State != STATE_RUNNING {
		outcome = cpu.Last
		return
	}

	code, err := cpu.Fetch()
	if err != nil {
		err = errors.Join(ErrPc(cpu.Pc), err)
		return
	}

	return cpu.Execute(code)
}

// checkAlign reports an unaligned data access.
func (cpu *Cpu) checkAlign(pc uint32, addr uint32, access string) {
	if addr%memory.WORD_SIZE == 0 {
		return
	}

	cpu.Unaligned++
	if cpu.config.WarnUnaligned {
		cpu.config.Logger.WithFields(logrus.Fields{
			"pc":   fmt.Sprintf("0x%08x", pc),
			"addr": fmt.Sprintf("0x%08x", addr),
		}).Warn(f("unaligned %v", access))
	}
}

// Execute executes a single instruction at the current PC.
func (cpu *Cpu) Execute(code Code) (outcome Outcome, err error) {
	if cpu.State != STATE_RUNNING {
		outcome = cpu.Last
		return
	}

	pc := cpu.Pc
	log := cpu.config.Logger

	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode{Pc: pc, Code: code}, err)
		}
	}()

	fields := code.Decode()

	rs1, err := cpu.Register.Read(fields.Rs1)
	if err != nil {
		return
	}
	rs2, err := cpu.Register.Read(fields.Rs2)
	if err != nil {
		return
	}

	imm := uint32(fields.Imm)

	outcome = Outcome{
		Status: STATUS_CONTINUE,
		Pc:     pc,
		Code:   code,
		NextPc: pc + 4,
	}

	var result uint32
	var effect string
	write_rd := true

	insn := code.Insn()
	switch insn {
	case INSN_ADD, INSN_SUB, INSN_AND, INSN_OR, INSN_XOR, INSN_SLL, INSN_SRL, INSN_SRA:
		enc, _ := insn.Encoding()
		result = Alu(enc.Alu, rs1, rs2)
	case INSN_ADDI:
		result = Alu(ALU_OP_ADD, rs1, imm)
	case INSN_LW:
		addr := rs1 + imm
		cpu.checkAlign(pc, addr, "load")
		result, err = cpu.Dmem.LoadU32(addr)
		if err != nil {
			err = errors.Join(ErrLoad, err)
			return
		}
	case INSN_SW:
		addr := rs1 + imm
		cpu.checkAlign(pc, addr, "store")
		err = cpu.Dmem.StoreU32(addr, rs2)
		if err != nil {
			err = errors.Join(ErrStore, err)
			return
		}
		effect = fmt.Sprintf("mem[0x%08x] = 0x%08x", addr, rs2)
		write_rd = false
	case INSN_BEQ, INSN_BNE:
		effect = "not taken"
		if (rs1 == rs2) == (insn == INSN_BEQ) {
			outcome.NextPc = pc + imm
			effect = "taken"
		}
		write_rd = false
	case INSN_JAL:
		if code.IsHalt() {
			outcome.Status = STATUS_HALT
			outcome.NextPc = pc
			effect = "halt"
			write_rd = false
			break
		}
		result = pc + 4
		outcome.NextPc = pc + imm
	case INSN_JALR:
		result = pc + 4
		outcome.NextPc = (rs1 + imm) &^ 1
	case INSN_LUI:
		result = imm
	case INSN_AUIPC:
		result = pc + imm
	default:
		outcome.Status = STATUS_ILLEGAL
		outcome.NextPc = pc
		write_rd = false
		log.WithFields(logrus.Fields{
			"pc":   fmt.Sprintf("0x%08x", pc),
			"code": fmt.Sprintf("0x%08x", uint32(code)),
		}).Error(f("illegal instruction"))
	}

	if write_rd {
		err = cpu.Register.Write(fields.Rd, result)
		if err != nil {
			return
		}
		effect = fmt.Sprintf("%v = 0x%08x", RegisterName(fields.Rd), result)
	}

	if cpu.config.Trace && outcome.Status != STATUS_ILLEGAL {
		log.WithFields(logrus.Fields{
			"pc":     fmt.Sprintf("0x%08x", pc),
			"code":   fmt.Sprintf("0x%08x", uint32(code)),
			"effect": effect,
			"next":   fmt.Sprintf("0x%08x", outcome.NextPc),
		}).Debug(code.String())
	}

	switch outcome.Status {
	case STATUS_HALT:
		cpu.State = STATE_HALTED
	case STATUS_ILLEGAL:
		cpu.State = STATE_ILLEGAL
	}

	cpu.Pc = outcome.NextPc
	cpu.Steps++
	cpu.Last = outcome

	return
}
