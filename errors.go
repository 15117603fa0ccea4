package ringbuffer

import "github.com/pkg/errors"

// Contract violations panic with an error wrapping one of these.
var (
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrEmpty            = errors.New("buffer is empty")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrInvalidCapacity  = errors.New("invalid capacity")
	ErrUninitialized    = errors.New("buffer not created with New, From or Repeat")
)

func violation(err error, format string, args ...any) {
	panic(errors.Wrapf(err, format, args...))
}

func checkIndex(i, n int) {
	if i < 0 || i >= n {
		violation(ErrIndexOutOfRange, "index %d, count %d", i, n)
	}
}

func checkRange(lo, hi, n int) {
	if lo < 0 || hi < lo || hi > n {
		violation(ErrIndexOutOfRange, "range [%d, %d), count %d", lo, hi, n)
	}
}
