package cpu

import (
	"errors"

	"github.com/ezrec/rvcore/translate"
)

var f = translate.From

var (
	// Engine errors
	ErrFetch = errors.New(f("fetch"))
	ErrLoad  = errors.New(f("load"))
	ErrStore = errors.New(f("store"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeImm          = errors.New(f("immediate out of range"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrTargetInvalid      = errors.New(f("target invalid"))
	ErrAddressInvalid     = errors.New(f("address invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrRegister is returned when a register index outside of x0..x31 is used.
type ErrRegister int

func (er ErrRegister) Error() string {
	return f("invalid register index %v", int(er))
}

func (er ErrRegister) Is(err error) (ok bool) {
	_, ok = err.(ErrRegister)
	return
}

// ErrPc locates a fatal error before an instruction word was fetched.
type ErrPc uint32

func (ep ErrPc) Error() string {
	return f("pc 0x%08x", uint32(ep))
}

func (ep ErrPc) Is(err error) (ok bool) {
	_, ok = err.(ErrPc)
	return
}

// ErrOpcode locates a fatal execution error.
type ErrOpcode struct {
	Pc   uint32
	Code Code
}

func (eo ErrOpcode) Error() string {
	return f("pc 0x%08x code 0x%08x %v", eo.Pc, uint32(eo.Code), eo.Code.String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
