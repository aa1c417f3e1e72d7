// Package bitfield extracts and sign-extends bit ranges of 32-bit words.
package bitfield

import (
	"fmt"
)

// Mask returns a value with the low width bits set.
func Mask(width uint) uint32 {
	if width >= 32 {
		return 0xffffffff
	}
	return (uint32(1) << width) - 1
}

// Extract returns the unsigned value of bits hi..lo (inclusive) of word.
// Bit 0 is the least significant bit. Panics unless 0 <= lo <= hi <= 31.
func Extract(word uint32, hi, lo uint) uint32 {
	if lo > hi || hi > 31 {
		panic(fmt.Sprintf("bitfield: invalid range [%d:%d]", hi, lo))
	}
	return (word >> lo) & Mask(hi-lo+1)
}

// SignExtend treats the low width bits of value as a two's complement
// quantity, and widens it to 32 bits by replicating bit width-1.
// Panics unless 1 <= width <= 32.
func SignExtend(value uint32, width uint) uint32 {
	if width < 1 || width > 32 {
		panic(fmt.Sprintf("bitfield: invalid width %d", width))
	}
	mask := Mask(width)
	value &= mask
	if value&(1<<(width-1)) != 0 {
		value |= ^mask
	}
	return value
}
