package cpu

import (
	"fmt"
	"strconv"
	"strings"
)

// REGISTER_COUNT is the number of general purpose registers.
const REGISTER_COUNT = 32

// RegisterFile is the general purpose register bank.
// Register x0 always reads as zero.
type RegisterFile struct {
	value [REGISTER_COUNT]uint32
}

// Read a register.
func (rf *RegisterFile) Read(index int) (value uint32, err error) {
	if index < 0 || index >= REGISTER_COUNT {
		err = ErrRegister(index)
		return
	}

	value = rf.value[index]
	return
}

// Write a register. Writes to x0 are discarded.
func (rf *RegisterFile) Write(index int, value uint32) (err error) {
	if index < 0 || index >= REGISTER_COUNT {
		err = ErrRegister(index)
		return
	}

	if index != 0 {
		rf.value[index] = value
	}

	return
}

// Values returns a snapshot of all registers.
func (rf *RegisterFile) Values() [REGISTER_COUNT]uint32 {
	return rf.value
}

// Reset all registers to zero.
func (rf *RegisterFile) Reset() {
	clear(rf.value[:])
}

var _register_abi = [REGISTER_COUNT]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

var _register_alias = map[string]int{
	"fp": 8,
}

func init() {
	for n, name := range _register_abi {
		_register_alias[name] = n
	}
}

// RegisterName returns the architectural name of a register, 'x<n>'.
func RegisterName(index int) string {
	return fmt.Sprintf("x%d", index)
}

// RegisterAbiName returns the calling convention name of a register.
func RegisterAbiName(index int) string {
	if index < 0 || index >= REGISTER_COUNT {
		return RegisterName(index)
	}
	return _register_abi[index]
}

// ParseRegister parses 'x0' .. 'x31' and the ABI register names.
func ParseRegister(name string) (index int, ok bool) {
	name = strings.ToLower(name)

	index, ok = _register_alias[name]
	if ok {
		return
	}

	digits, found := strings.CutPrefix(name, "x")
	if !found || len(digits) == 0 || len(digits) > 2 {
		return
	}

	value, err := strconv.Atoi(digits)
	if err != nil || value < 0 || value >= REGISTER_COUNT {
		return
	}

	index = value
	ok = true
	return
}
