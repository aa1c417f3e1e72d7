// Package memory implements a fixed capacity, byte addressable store with
// little-endian word access.
package memory

import (
	"encoding/binary"
	"iter"
)

// WORD_SIZE is the size in bytes of a word access.
const WORD_SIZE = 4

// Memory is a bounded byte array. Every access must lie within [0, Size()).
type Memory struct {
	data []byte
}

// NewMemory creates a zeroed memory of size bytes.
func NewMemory(size uint) (mem *Memory) {
	mem = &Memory{
		data: make([]byte, size),
	}

	return
}

// Size returns the capacity in bytes.
func (mem *Memory) Size() int {
	return len(mem.data)
}

// InRange returns true if the span addr..addr+length-1 is within the memory.
// A negative length is never in range.
func (mem *Memory) InRange(addr uint32, length int) bool {
	if length < 0 {
		return false
	}
	return uint64(addr)+uint64(length) <= uint64(len(mem.data))
}

// check returns an ErrOutOfRange if the span is not within the memory.
func (mem *Memory) check(addr uint32, length int) (err error) {
	if !mem.InRange(addr, length) {
		err = ErrOutOfRange{Addr: addr, Len: length, Size: len(mem.data)}
	}
	return
}

// LoadU32 reads the little-endian word at addr.
func (mem *Memory) LoadU32(addr uint32) (value uint32, err error) {
	err = mem.check(addr, WORD_SIZE)
	if err != nil {
		return
	}

	value = binary.LittleEndian.Uint32(mem.data[addr:])
	return
}

// StoreU32 writes value as a little-endian word at addr.
// Nothing is written if the word does not fit.
func (mem *Memory) StoreU32(addr uint32, value uint32) (err error) {
	err = mem.check(addr, WORD_SIZE)
	if err != nil {
		return
	}

	binary.LittleEndian.PutUint32(mem.data[addr:], value)
	return
}

// WriteWordAt stores value at the byte address index*4.
// Program loaders use it to fill instruction memory.
func (mem *Memory) WriteWordAt(index uint32, value uint32) (err error) {
	if uint64(index)*WORD_SIZE > 0xffffffff {
		err = ErrOutOfRange{Addr: 0xffffffff, Len: WORD_SIZE, Size: len(mem.data)}
		return
	}
	return mem.StoreU32(index*WORD_SIZE, value)
}

// Bytes returns a copy of the length bytes at addr.
func (mem *Memory) Bytes(addr uint32, length int) (data []byte, err error) {
	err = mem.check(addr, length)
	if err != nil {
		return
	}

	data = make([]byte, length)
	copy(data, mem.data[addr:])
	return
}

// Words iterates over (address, word) pairs for count words starting at
// addr. Iteration stops at the first word that is not fully in range.
func (mem *Memory) Words(addr uint32, count int) iter.Seq2[uint32, uint32] {
	return func(yield func(addr uint32, value uint32) bool) {
		for n := range count {
			here := uint64(addr) + uint64(n*WORD_SIZE)
			if here > 0xffffffff || !mem.InRange(uint32(here), WORD_SIZE) {
				return
			}
			value, _ := mem.LoadU32(uint32(here))
			if !yield(uint32(here), value) {
				return
			}
		}
	}
}

// Clear zeroes the memory contents.
func (mem *Memory) Clear() {
	clear(mem.data)
}
