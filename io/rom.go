package io

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// HEX_DIGITS is the maximum number of hex digits in a listing line.
const HEX_DIGITS = 8

// Rom is a program image, one 32-bit word per instruction slot.
type Rom struct {
	Data []uint32
}

// Words iterates over the (index, word) pairs of the image.
func (rc *Rom) Words() iter.Seq2[uint32, uint32] {
	return func(yield func(index uint32, word uint32) bool) {
		for n, data := range rc.Data {
			if !yield(uint32(n), data) {
				return
			}
		}
	}
}

// Load stores the image into dst, starting at word index 0.
func (rc *Rom) Load(dst WordStore) (err error) {
	for index, word := range rc.Words() {
		err = dst.WriteWordAt(index, word)
		if err != nil {
			err = &ErrLoad{Index: int(index), Err: err}
			return
		}
	}

	return
}

// ReadHex parses a hex listing. Each non-blank line holds a single word of
// up to 8 hex digits, without a '0x' prefix. Surrounding white space is
// ignored.
func ReadHex(r io.Reader) (rom *Rom, err error) {
	scanner := bufio.NewScanner(r)

	rom = &Rom{}

	var lineno int
	for scanner.Scan() {
		lineno++

		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}

		if len(line) > HEX_DIGITS {
			err = &ErrHexSyntax{LineNo: lineno, Line: line, Err: ErrHexLength}
			rom = nil
			return
		}

		var value uint64
		value, err = strconv.ParseUint(line, 16, 32)
		if err != nil {
			err = &ErrHexSyntax{LineNo: lineno, Line: line, Err: ErrHexDigit}
			rom = nil
			return
		}

		rom.Data = append(rom.Data, uint32(value))
	}

	err = scanner.Err()
	if err != nil {
		rom = nil
	}

	return
}

// WriteHex writes the image as a hex listing, 8 lowercase digits per line.
func (rc *Rom) WriteHex(w io.Writer) (err error) {
	out := bufio.NewWriter(w)
	for _, word := range rc.Words() {
		_, err = fmt.Fprintf(out, "%08x\n", word)
		if err != nil {
			return
		}
	}

	return out.Flush()
}
