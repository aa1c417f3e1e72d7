// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/rvcore/bitfield"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":    "0",
	"PC":        "0",
	"IMEM_SIZE": fmt.Sprintf("%#x", IMEM_SIZE),
	"DMEM_SIZE": fmt.Sprintf("%#x", DMEM_SIZE),
	"DATA_BASE": fmt.Sprintf("%#x", DATA_BASE),
}

// Assembler is a single pass assembler for the RV32I subset.
type Assembler struct {
	Verbose bool               // If set, verbosely logs the assembler actions.
	Logger  logrus.FieldLogger // Destination of the verbose log, nil for the standard logger.
	Opcode  []Opcode           // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]uint32 // Map of jump labels to instruction addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// insnMap maps mnemonics to instructions.
var insnMap = func() map[string]CodeInsn {
	insns := map[string]CodeInsn{}
	for insn := INSN_ADD; insn <= INSN_AUIPC; insn++ {
		insns[insn.String()] = insn
	}
	return insns
}()

var (
	reCharacter = regexp.MustCompile(`'\\?[^']'`)
	reLabel     = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
	reMemory    = regexp.MustCompile(`^([^()]*)\(([^()]+)\)$`)
)

// valueOf returns the value of a simple word.
// Values must fit in 32 bits, either signed or unsigned.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	if equate, ok := asm.Equate[word]; ok {
		word = equate
	}
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}

	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil || value < -(1<<31) || value >= (1<<32) {
		value = 0
		err = ErrParseNumber(word)
		return
	}

	return
}

// register parses a register operand.
func (asm *Assembler) register(word string) (index int, err error) {
	if equate, ok := asm.Equate[word]; ok {
		word = equate
	}
	index, ok := ParseRegister(word)
	if !ok {
		err = ErrRegisterInvalid
		return
	}
	return
}

// immediate parses an immediate operand, and checks that it is
// representable by the format.
func (asm *Assembler) immediate(format CodeFormat, word string) (imm int32, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if !ImmFits(format, value) {
		err = ErrOpcodeImm
		return
	}

	imm = int32(value)
	return
}

// address parses an 'imm(rs1)' memory operand.
func (asm *Assembler) address(word string) (imm int32, rs1 int, err error) {
	match := reMemory.FindStringSubmatch(word)
	if match == nil {
		err = ErrAddressInvalid
		return
	}

	rs1, err = asm.register(match[2])
	if err != nil {
		return
	}

	if len(match[1]) != 0 {
		imm, err = asm.immediate(FORMAT_I, match[1])
	}

	return
}

// target parses a branch or jump target, either a label to be linked
// or a numeric PC relative offset.
func (asm *Assembler) target(format CodeFormat, word string) (offset int32, label string, err error) {
	value, err := asm.valueOf(word)
	if err == nil {
		if !ImmFits(format, value) {
			err = ErrOpcodeImm
			return
		}
		offset = int32(value)
		return
	}

	if !reLabel.MatchString(word) {
		err = ErrTargetInvalid
		return
	}

	err = nil
	label = word
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key := range asm.Equate {
		var value64 int64
		value64, err = asm.valueOf(key)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	for key, pc := range asm.Label {
		pred[key] = starlark.MakeUint64(uint64(pc))
	}
	err = nil

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok || value < -(1<<31) || value >= (1<<32) {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// expandExpressions replaces every $(...) in the line with its value.
func (asm *Assembler) expandExpressions(line string) (out string, err error) {
	for {
		start := strings.Index(line, "$(")
		if start < 0 {
			out += line
			return
		}

		depth := 0
		end := -1
		for n := start + 1; n < len(line); n++ {
			switch line[n] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 {
				end = n
				break
			}
		}
		if end < 0 {
			err = ErrParseExpression(line[start+2:])
			return
		}

		var value int64
		value, err = asm.parenEval(line[start+2 : end])
		if err != nil {
			return
		}

		out += line[:start] + strconv.FormatInt(value, 10)
		line = line[end+1:]
	}
}

// parseLine parses a single line into words, handling equates and labels.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number and location.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)
	asm.Equate["PC"] = fmt.Sprintf("%#x", asm.currentPc())

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Strip comments
	if n := strings.IndexAny(line, ";#"); n >= 0 {
		line = line[:n]
	}

	// Do $() evaluations
	line, err = asm.expandExpressions(line)
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(words) == 0 {
		return
	}

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !reLabel.MatchString(label) {
			err = ErrTargetInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint32, 16)
		}
		asm.Label[label] = asm.currentPc()
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	return
}

// currentPc gets the address of the next code.
func (asm *Assembler) currentPc() uint32 {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Pc + uint32(len(last.Codes))*4
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	log := asm.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.WithField("line", lineno).Info(line)
		}

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}

		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		label := op.LinkLabel
		target, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}

		index := len(op.Codes) - 1
		linked := op.Codes[index]
		offset := int64(int32(target - (op.Pc + uint32(index)*4)))
		if !ImmFits(linked.Format(), offset) {
			err = ErrOpcodeImm
			return
		}
		op.Codes[index] = linked.WithImm(int32(offset))
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// args checks the operand count of an instruction.
func args(words []string, count int) (err error) {
	switch {
	case len(words) < count:
		err = ErrOpcodeValueMissing
	case len(words) > count:
		err = ErrOpcodeExtraArgs
	}
	return
}

// loadImmediate generates the shortest sequence that sets rd to value.
func loadImmediate(rd int, value int64) (codes []Code) {
	word := int32(uint32(value))
	if ImmFits(FORMAT_I, int64(word)) {
		return []Code{MakeCodeI(OP_IMM, F3_ADDI, rd, 0, word)}
	}

	lower := int32(bitfield.SignExtend(uint32(word)&0xfff, 12))
	upper := word - lower
	codes = append(codes, MakeCodeU(OP_LUI, rd, upper))
	if lower != 0 {
		codes = append(codes, MakeCodeI(OP_IMM, F3_ADDI, rd, rd, lower))
	}
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Pc: asm.currentPc(), Words: initial_words, Codes: codes, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToLower(words[0])
	words = words[1:]

	// Pseudo instruction substitutions
	switch mnemonic {
	case "nop":
		if err = args(words, 0); err != nil {
			return
		}
		mnemonic, words = "addi", []string{"x0", "x0", "0"}
	case "mv":
		if err = args(words, 2); err != nil {
			return
		}
		mnemonic, words = "addi", []string{words[0], words[1], "0"}
	case "j":
		if err = args(words, 1); err != nil {
			return
		}
		mnemonic, words = "jal", []string{"x0", words[0]}
	case "ret":
		if err = args(words, 0); err != nil {
			return
		}
		mnemonic, words = "jalr", []string{"x0", "0(ra)"}
	case "halt":
		if err = args(words, 0); err != nil {
			return
		}
		codes = append(codes, MakeCodeHalt())
		return
	case "li":
		if err = args(words, 2); err != nil {
			return
		}
		var rd int
		rd, err = asm.register(words[0])
		if err != nil {
			return
		}
		var value int64
		value, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		codes = append(codes, loadImmediate(rd, value)...)
		return
	case ".word":
		if len(words) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words {
			var value int64
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			codes = append(codes, Code(uint32(value)))
		}
		return
	}

	insn, ok := insnMap[mnemonic]
	if !ok {
		err = ErrInstructionInvalid
		return
	}
	enc, _ := insn.Encoding()

	var rd, rs1, rs2 int
	var imm int32

	switch insn {
	case INSN_ADD, INSN_SUB, INSN_AND, INSN_OR, INSN_XOR, INSN_SLL, INSN_SRL, INSN_SRA:
		if err = args(words, 3); err != nil {
			return
		}
		if rd, err = asm.register(words[0]); err != nil {
			return
		}
		if rs1, err = asm.register(words[1]); err != nil {
			return
		}
		if rs2, err = asm.register(words[2]); err != nil {
			return
		}
	case INSN_ADDI:
		if err = args(words, 3); err != nil {
			return
		}
		if rd, err = asm.register(words[0]); err != nil {
			return
		}
		if rs1, err = asm.register(words[1]); err != nil {
			return
		}
		if imm, err = asm.immediate(FORMAT_I, words[2]); err != nil {
			return
		}
	case INSN_LW:
		if err = args(words, 2); err != nil {
			return
		}
		if rd, err = asm.register(words[0]); err != nil {
			return
		}
		if imm, rs1, err = asm.address(words[1]); err != nil {
			return
		}
	case INSN_SW:
		if err = args(words, 2); err != nil {
			return
		}
		if rs2, err = asm.register(words[0]); err != nil {
			return
		}
		if imm, rs1, err = asm.address(words[1]); err != nil {
			return
		}
	case INSN_BEQ, INSN_BNE:
		if err = args(words, 3); err != nil {
			return
		}
		if rs1, err = asm.register(words[0]); err != nil {
			return
		}
		if rs2, err = asm.register(words[1]); err != nil {
			return
		}
		if imm, label, err = asm.target(FORMAT_B, words[2]); err != nil {
			return
		}
	case INSN_JAL:
		// jal target => jal ra, target
		if len(words) == 1 {
			words = []string{"ra", words[0]}
		}
		if err = args(words, 2); err != nil {
			return
		}
		if rd, err = asm.register(words[0]); err != nil {
			return
		}
		if imm, label, err = asm.target(FORMAT_J, words[1]); err != nil {
			return
		}
	case INSN_JALR:
		switch len(words) {
		case 1:
			// jalr rs1 => jalr ra, 0(rs1)
			rd = 1
			rs1, err = asm.register(words[0])
		case 2:
			// jalr rd, imm(rs1) or jalr rd, rs1
			if rd, err = asm.register(words[0]); err != nil {
				return
			}
			if strings.Contains(words[1], "(") {
				imm, rs1, err = asm.address(words[1])
			} else {
				rs1, err = asm.register(words[1])
			}
		case 3:
			// jalr rd, rs1, imm
			if rd, err = asm.register(words[0]); err != nil {
				return
			}
			if rs1, err = asm.register(words[1]); err != nil {
				return
			}
			imm, err = asm.immediate(FORMAT_I, words[2])
		default:
			err = args(words, 2)
		}
		if err != nil {
			return
		}
	case INSN_LUI, INSN_AUIPC:
		if err = args(words, 2); err != nil {
			return
		}
		if rd, err = asm.register(words[0]); err != nil {
			return
		}
		var value int64
		if value, err = asm.valueOf(words[1]); err != nil {
			return
		}
		if value < -(1<<19) || value >= (1<<20) {
			err = ErrOpcodeImm
			return
		}
		imm = int32(uint32(value) << 12)
	}

	code, ok := MakeCode(insn, rd, rs1, rs2, imm)
	if !ok || code.Insn() != insn || code.Format() != enc.Format {
		err = ErrInstructionInvalid
		return
	}

	codes = append(codes, code)

	return
}
