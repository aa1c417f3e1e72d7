package io

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/rvcore/memory"
)

func TestReadHex(t *testing.T) {
	assert := assert.New(t)

	listing := strings.Join([]string{
		"00500293",
		"",
		"  0000006F  ",
		"\t13\r",
		"",
		"deadBEEF",
	}, "\n")

	rom, err := ReadHex(strings.NewReader(listing))
	require.NoError(t, err)
	assert.Equal([]uint32{0x00500293, 0x0000006f, 0x00000013, 0xdeadbeef}, rom.Data)
}

func TestReadHex_Empty(t *testing.T) {
	assert := assert.New(t)

	rom, err := ReadHex(strings.NewReader("\n\n   \n"))
	assert.NoError(err)
	assert.Empty(rom.Data)
}

func TestReadHex_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		listing string
		line    int
		err     error
	}){
		{"123456789", 1, ErrHexLength},
		{"00000013\n0000000000000013", 2, ErrHexLength},
		{"0000001g", 1, ErrHexDigit},
		{"0x13", 1, ErrHexDigit},
		{"\n\n-1", 3, ErrHexDigit},
		{"12 34", 1, ErrHexDigit},
	}

	for _, entry := range table {
		rom, err := ReadHex(strings.NewReader(entry.listing))
		assert.Nil(rom, entry.listing)
		assert.ErrorIs(err, entry.err, entry.listing)

		var hs *ErrHexSyntax
		if assert.True(errors.As(err, &hs), entry.listing) {
			assert.Equal(entry.line, hs.LineNo, entry.listing)
		}
	}
}

func TestRom_WriteHex(t *testing.T) {
	assert := assert.New(t)

	rom := &Rom{Data: []uint32{0x00500293, 0x6f, 0xDEADBEEF}}

	buf := &bytes.Buffer{}
	assert.NoError(rom.WriteHex(buf))
	assert.Equal("00500293\n0000006f\ndeadbeef\n", buf.String())

	again, err := ReadHex(buf)
	assert.NoError(err)
	assert.Equal(rom.Data, again.Data)
}

func TestRom_Load(t *testing.T) {
	assert := assert.New(t)

	rom := &Rom{Data: []uint32{0x00500293, 0x0000006f}}

	mem := memory.NewMemory(16)
	assert.NoError(rom.Load(mem))

	word, _ := mem.LoadU32(0)
	assert.Equal(uint32(0x00500293), word)
	word, _ = mem.LoadU32(4)
	assert.Equal(uint32(0x0000006f), word)
	word, _ = mem.LoadU32(8)
	assert.Equal(uint32(0), word)
}

func TestRom_Load_TooLarge(t *testing.T) {
	assert := assert.New(t)

	rom := &Rom{Data: []uint32{1, 2, 3}}

	mem := memory.NewMemory(8)
	err := rom.Load(mem)
	assert.ErrorIs(err, memory.ErrOutOfRange{})

	var le *ErrLoad
	if assert.True(errors.As(err, &le)) {
		assert.Equal(2, le.Index)
	}

	// The words that fit were stored.
	word, _ := mem.LoadU32(4)
	assert.Equal(uint32(2), word)
}

func TestRom_Words_EarlyStop(t *testing.T) {
	assert := assert.New(t)

	rom := &Rom{Data: []uint32{0xffffffff, 0xaaaaaaaa, 0x55555555}}

	count := 0
	for index := range rom.Words() {
		assert.Equal(uint32(count), index)
		count++
		if count == 2 {
			break
		}
	}

	assert.Equal(2, count)
}
