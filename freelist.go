package ringbuffer

import (
	"runtime"
	"sync/atomic"
)

// Bounded lock-free queue after Dmitry Vyukov's MPMC design
// https://www.1024cores.net/home/lock-free-algorithms/queues/bounded-mpmc-queue
//
// PoolAllocator keeps one per size class. Blocks come back from whichever
// goroutine last released a storage, so both ends may be contended.
type freeList[T any] struct {
	_     [64]byte
	mask  uint64
	slots []slot[T]
	_     [64]byte
	tail  atomic.Uint64 // next push position
	_     [64]byte
	head  atomic.Uint64 // next pop position
	_     [64]byte
}

const goschedEvery = 64 // reduce runtime.Gosched() frequency in hot loops

// newFreeList creates a list holding up to depth values.
// depth must be a power of two of at least 2: with a single slot a
// published value and a free slot carry the same sequence number.
func newFreeList[T any](depth uint64) *freeList[T] {
	if depth < 2 || depth&(depth-1) != 0 {
		violation(ErrInvalidCapacity, "free list depth %d is not a power of two >= 2", depth)
	}

	slots := make([]slot[T], depth)
	for i := range slots {
		slots[i].seq.Store(uint64(i))
	}

	return &freeList[T]{
		mask:  depth - 1,
		slots: slots,
	}
}

// push stores v. It returns false if the list is full.
func (q *freeList[T]) push(v T) bool {
	var spins uint32
	for {
		pos := q.tail.Load()
		s := &q.slots[pos&q.mask]

		diff := int64(s.seq.Load()) - int64(pos)
		switch {
		case diff == 0:
			if q.tail.CompareAndSwap(pos, pos+1) {
				s.val = v
				s.seq.Store(pos + 1)
				return true
			}
		case diff < 0:
			// slot not yet consumed from the previous lap
			return false
		}

		spins++
		if spins%goschedEvery == 0 {
			runtime.Gosched()
		}
	}
}

// pop removes the oldest value. It returns false if the list is empty.
func (q *freeList[T]) pop() (T, bool) {
	var zero T
	var spins uint32
	for {
		pos := q.head.Load()
		s := &q.slots[pos&q.mask]

		diff := int64(s.seq.Load()) - int64(pos+1)
		switch {
		case diff == 0:
			if q.head.CompareAndSwap(pos, pos+1) {
				v := s.val
				s.val = zero
				// hand the slot to the producer of the next lap
				s.seq.Store(pos + q.mask + 1)
				return v, true
			}
		case diff < 0:
			return zero, false
		}

		spins++
		if spins%goschedEvery == 0 {
			runtime.Gosched()
		}
	}
}

func (q *freeList[T]) depth() uint64 {
	return q.mask + 1
}
