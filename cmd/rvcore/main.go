// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/ezrec/rvcore/cpu"
	"github.com/ezrec/rvcore/emulator"
	"github.com/ezrec/rvcore/io"
	"github.com/ezrec/rvcore/translate"
)

// dumpColumns picks the register dump width from the terminal size.
func dumpColumns() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return emulator.DUMP_COLUMNS
	}

	width, _, err := term.GetSize(fd)
	if err != nil {
		return emulator.DUMP_COLUMNS
	}

	// Each register takes one 16 column tab stop.
	columns := width / 16
	switch {
	case columns >= 8:
		columns = 8
	case columns < 1:
		columns = 1
	}

	return columns
}

func main() {
	var compile string
	var hex string
	var save bool
	var output string
	var verbose bool
	var trace bool
	var warn bool
	var maxSteps uint64
	var imemSize uint
	var dmemSize uint
	var dumpAddr uint
	var dumpWords int

	flag.StringVar(&compile, "c", "", ".s file to assemble")
	flag.StringVar(&hex, "x", "", ".hex listing to load")
	flag.BoolVar(&save, "s", false, "Save image as a hex listing, do not execute")
	flag.StringVar(&output, "o", "-", "Hex listing output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&trace, "t", false, "Trace every instruction")
	flag.BoolVar(&warn, "w", true, "Warn on unaligned memory access")
	flag.Uint64Var(&maxSteps, "n", emulator.DEFAULT_MAX_STEPS, "Maximum steps to run")
	flag.UintVar(&imemSize, "imem", cpu.IMEM_SIZE, "Instruction memory size in bytes")
	flag.UintVar(&dmemSize, "dmem", cpu.DMEM_SIZE, "Data memory size in bytes")
	flag.UintVar(&dumpAddr, "dump", cpu.DATA_BASE, "Data memory dump address")
	flag.IntVar(&dumpWords, "words", 16, "Data memory dump length in words")

	flag.Parse()

	if flag.NArg() != 0 {
		logrus.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) == 0 && len(hex) == 0 {
		logrus.Fatalf("%v: one of -c or -x is required", os.Args[0])
	}

	if trace {
		logrus.SetLevel(logrus.DebugLevel)
	}

	config := cpu.DefaultConfig()
	config.ImemSize = imemSize
	config.DmemSize = dmemSize
	config.WarnUnaligned = warn
	config.Trace = trace
	config.Logger = logrus.StandardLogger()

	emu := emulator.NewEmulator(config)
	emu.Verbose = verbose

	// Compile a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			logrus.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := emu.Assembler()
		asm.Verbose = verbose
		prog, err := asm.Parse(inf)
		if err != nil {
			logrus.Fatalf("%v: %v", compile, err)
		}
		emu.SetProgram(prog)
	} else {
		inf, err := os.Open(hex)
		if err != nil {
			logrus.Fatalf("%v: %v", hex, err)
		}
		defer inf.Close()

		rom, err := io.ReadHex(inf)
		if err != nil {
			logrus.Fatalf("%v: %v", hex, err)
		}
		emu.SetRom(rom)
	}

	if save {
		ouf := os.Stdout
		if output != "-" {
			var err error
			ouf, err = os.Create(output)
			if err != nil {
				logrus.Fatalf("%v: %v", output, err)
			}
			defer ouf.Close()
		}

		err := emu.Rom.WriteHex(ouf)
		if err != nil {
			logrus.Fatalf("%v: %v", output, err)
		}
		return
	}

	err := emu.Reset()
	if err != nil {
		logrus.Fatal(err)
	}

	stop, err := emu.Run(maxSteps)
	if err != nil && !errors.Is(err, emulator.ErrStepLimit) {
		logrus.Fatal(err)
	}

	logrus.WithFields(logrus.Fields{
		"steps":     emu.Steps(),
		"unaligned": emu.Cpu.Unaligned,
		"pc":        fmt.Sprintf("0x%08x", emu.Cpu.Pc),
	}).Infof("stop: %v", stop)

	translate.Fprintf(os.Stdout, "\n==== FINAL REGISTER DUMP ====\n")
	emulator.DumpRegisters(os.Stdout, emu.Cpu.Register.Values(), dumpColumns())

	end := uint64(dumpAddr) + uint64(dumpWords)*4
	translate.Fprintf(os.Stdout, "\n==== DATA MEM [0x%08x .. 0x%08x) ====\n", dumpAddr, end)
	emulator.DumpMemory(os.Stdout, emu.Cpu.Dmem, uint32(dumpAddr), dumpWords)

	switch stop {
	case emulator.STOP_ILLEGAL:
		os.Exit(1)
	case emulator.STOP_LIMIT:
		os.Exit(2)
	}
}
