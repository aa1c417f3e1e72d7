package cpu

const (
	IMEM_SIZE = 1 << 20  // Default instruction memory size, in bytes.
	DMEM_SIZE = 1 << 20  // Default data memory size, in bytes.
	DATA_BASE = 0x1_0000 // Conventional start of program data in data memory.
)
