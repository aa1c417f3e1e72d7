// Package io provides the program image formats of the rvcore emulator.
// A Rom holds the instruction words of a program, read from or written to
// a line oriented hex listing, and is loaded into any WordStore.
package io

// WordStore is the loader side of an instruction memory.
type WordStore interface {
	// WriteWordAt stores a 32-bit word at byte address index*4.
	WriteWordAt(index uint32, value uint32) error
}
