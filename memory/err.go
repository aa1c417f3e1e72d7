package memory

import (
	"github.com/ezrec/rvcore/translate"
)

var f = translate.From

// ErrOutOfRange is returned when an access of Len bytes at Addr does not fit
// inside a memory of Size bytes.
type ErrOutOfRange struct {
	Addr uint32
	Len  int
	Size int
}

func (err ErrOutOfRange) Error() string {
	return f("access of %v bytes at 0x%08x outside memory of 0x%x bytes", err.Len, err.Addr, err.Size)
}

// Is matches any ErrOutOfRange, so errors.Is(err, ErrOutOfRange{}) works.
func (err ErrOutOfRange) Is(target error) (ok bool) {
	_, ok = target.(ErrOutOfRange)
	return
}
