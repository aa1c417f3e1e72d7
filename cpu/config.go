package cpu

import (
	"github.com/sirupsen/logrus"
)

// Config is the construction time configuration of a Cpu.
type Config struct {
	ImemSize      uint               // Instruction memory size in bytes, 0 for IMEM_SIZE.
	DmemSize      uint               // Data memory size in bytes, 0 for DMEM_SIZE.
	WarnUnaligned bool               // Log a warning on unaligned loads and stores.
	Trace         bool               // Log every executed instruction at debug level.
	Logger        logrus.FieldLogger // Diagnostics destination, nil for the standard logger.
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ImemSize:      IMEM_SIZE,
		DmemSize:      DMEM_SIZE,
		WarnUnaligned: true,
	}
}

// normalize fills in the zero values.
func (config Config) normalize() Config {
	if config.ImemSize == 0 {
		config.ImemSize = IMEM_SIZE
	}
	if config.DmemSize == 0 {
		config.DmemSize = DMEM_SIZE
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	return config
}
