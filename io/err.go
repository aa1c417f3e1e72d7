package io

import (
	"errors"

	"github.com/ezrec/rvcore/translate"
)

var f = translate.From

var (
	// Hex listing errors
	ErrHexLength = errors.New(f("invalid hex word length"))
	ErrHexDigit  = errors.New(f("invalid hex number"))
)

// ErrHexSyntax locates an error in a hex listing.
type ErrHexSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrHexSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrHexSyntax) Unwrap() error {
	return err.Err
}

// ErrLoad indicates which word of a Rom could not be stored.
type ErrLoad struct {
	Index int
	Err   error
}

func (err *ErrLoad) Error() string {
	return f("word %d: %v", err.Index, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}
