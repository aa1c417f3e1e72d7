package emulator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rvcore/cpu"
	"github.com/ezrec/rvcore/memory"
)

func TestDumpRegisters(t *testing.T) {
	assert := assert.New(t)

	var regs [cpu.REGISTER_COUNT]uint32
	regs[1] = 1
	regs[31] = 0xdeadbeef

	table := [](struct {
		columns int
		rows    int
	}){
		{0, 8},
		{4, 8},
		{5, 7},
		{32, 1},
		{64, 1},
	}

	for _, entry := range table {
		buf := &bytes.Buffer{}
		assert.NoError(DumpRegisters(buf, regs, entry.columns))
		assert.Equal(entry.rows, strings.Count(buf.String(), "\n"), entry.columns)
		assert.True(strings.HasSuffix(buf.String(), "x31: 0xdeadbeef\n"), entry.columns)
	}

	buf := &bytes.Buffer{}
	assert.NoError(DumpRegisters(buf, regs, 4))
	first, _, _ := strings.Cut(buf.String(), "\n")
	assert.Equal("x00: 0x00000000\tx01: 0x00000001\tx02: 0x00000000\tx03: 0x00000000", first)
}

func TestDumpMemory(t *testing.T) {
	assert := assert.New(t)

	mem := memory.NewMemory(16)
	assert.NoError(mem.StoreU32(0, 0xdeadbeef))
	assert.NoError(mem.StoreU32(4, 1))

	table := [](struct {
		addr  uint32
		words int
		text  string
	}){
		{0, 2, "[0x00000000] = 0xdeadbeef\n[0x00000004] = 0x00000001\n"},
		{8, 8, "[0x00000008] = 0x00000000\n[0x0000000c] = 0x00000000\n"},
		{2, 1, "[0x00000002] = 0x0001dead\n"},
		{14, 4, ""},
		{0xfffffffc, 2, ""},
		{0, 0, ""},
	}

	for _, entry := range table {
		buf := &bytes.Buffer{}
		assert.NoError(DumpMemory(buf, mem, entry.addr, entry.words))
		assert.Equal(entry.text, buf.String(), "0x%x", entry.addr)
	}
}
