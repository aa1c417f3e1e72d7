// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"maps"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/rvcore/cpu"
	"github.com/ezrec/rvcore/internal"
	"github.com/ezrec/rvcore/io"
)

// DEFAULT_MAX_STEPS bounds a Run when no limit is given.
const DEFAULT_MAX_STEPS = 5_000_000

// Stop is the reason a Run ended.
type Stop int

//go:generate go tool stringer -linecomment -type=Stop
const (
	STOP_HALT    = Stop(iota) // halt
	STOP_ILLEGAL              // illegal
	STOP_LIMIT                // step limit
)

var _emulator_defines = map[string]string{
	"MAX_STEPS": fmt.Sprintf("%v", DEFAULT_MAX_STEPS),
}

// Emulator state. CPU + program image + listing.
type Emulator struct {
	Verbose  bool         // If set, logs each executed source line.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
	Rom      io.Rom       // Program image, loaded into instruction memory on Reset.

	log logrus.FieldLogger
}

// NewEmulator creates a new emulator.
func NewEmulator(config cpu.Config) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(config),
		Program: &cpu.Program{},
	}

	emu.log = emu.Cpu.Config().Logger

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Assembler returns an assembler with the emulator defines predefined.
func (emu *Emulator) Assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{
		Logger: emu.log,
	}
	for equ, value := range emu.Defines() {
		asm.Predefine(equ, value)
	}

	return
}

// SetProgram installs an assembled program and its image.
func (emu *Emulator) SetProgram(prog *cpu.Program) {
	emu.Program = prog
	emu.Rom.Data = prog.Binary()
}

// SetRom installs a raw program image. There is no listing for it.
func (emu *Emulator) SetRom(rom *io.Rom) {
	emu.Program = &cpu.Program{}
	emu.Rom.Data = rom.Data
}

// Reset the emulator state, and load the program image.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Imem.Clear()
	emu.Cpu.Reset()

	err = emu.Rom.Load(emu.Cpu.Imem)
	if err != nil {
		return
	}

	emu.log.WithField("words", len(emu.Rom.Data)).Debug(f("emulator: image loaded"))

	return
}

// Steps returns the total steps since a reset.
func (emu *Emulator) Steps() uint64 {
	return emu.Cpu.Steps
}

// Code returns the instruction code at the current PC.
func (emu *Emulator) Code() cpu.Code {
	code, err := emu.Cpu.Fetch()
	if err != nil {
		return 0
	}

	return code
}

// LineNo returns the current line number for the executing opcode,
// or 0 if the PC is not in the listing.
func (emu *Emulator) LineNo() int {
	debug := emu.Program.Debug(emu.Cpu.Pc)
	if debug.Opcode == nil {
		return 0
	}

	return debug.LineNo
}

// Tick performs a single step of the emulator.
// done is set once the CPU has halted or hit an illegal instruction.
func (emu *Emulator) Tick() (done bool, err error) {
	lineno := emu.LineNo()
	pc := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Pc: pc, Err: err}
		}
	}()

	if emu.Verbose && emu.Cpu.State == cpu.STATE_RUNNING {
		emu.log.WithFields(logrus.Fields{
			"line": lineno,
			"pc":   fmt.Sprintf("0x%08x", pc),
		}).Info(emu.Code().String())
	}

	outcome, err := emu.Cpu.Step()
	if err != nil {
		return
	}

	done = outcome.Status != cpu.STATUS_CONTINUE
	return
}

// Run ticks the emulator until the program stops, or maxSteps ticks have
// passed. A maxSteps of 0 selects DEFAULT_MAX_STEPS. Running out of steps
// returns STOP_LIMIT together with ErrStepLimit.
func (emu *Emulator) Run(maxSteps uint64) (stop Stop, err error) {
	if maxSteps == 0 {
		maxSteps = DEFAULT_MAX_STEPS
	}

	for range maxSteps {
		var done bool
		done, err = emu.Tick()
		if err != nil {
			return
		}
		if done {
			stop = STOP_HALT
			if emu.Cpu.State == cpu.STATE_ILLEGAL {
				stop = STOP_ILLEGAL
			}
			return
		}
	}

	emu.log.WithField("steps", maxSteps).Warn(f("max steps reached"))

	stop = STOP_LIMIT
	err = ErrStepLimit
	return
}
