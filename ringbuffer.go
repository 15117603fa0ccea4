// Package ringbuffer implements a growable circular buffer with
// copy-on-write value semantics.
//
// A Buffer is a double-ended, randomly indexable sequence stored in a
// power-of-two block that wraps around instead of shifting elements on
// removal from the front. Buffers obtained through Clone share one block
// until either side mutates; the mutating side then copies.
//
// Buffers are not safe for concurrent mutation. Clones may be handed to
// other goroutines since ownership counting is atomic.
package ringbuffer

import (
	"math/bits"
	"sync/atomic"
)

// MaxCapacity is the largest capacity a block may have.
const MaxCapacity = 1 << (bits.UintSize - 2)

// slot is one cell of a freeList.
type slot[T any] struct {
	seq atomic.Uint64 // sequence number (controls visibility and slot ownership)
	val T             // actual value stored in this slot
}

// roundCapacity returns the smallest power of two >= max(n, 1).
func roundCapacity(n int) int {
	if n < 0 || n > MaxCapacity {
		violation(ErrInvalidCapacity, "requested capacity %d", n)
	}
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
