package ringbuffer

import "sync/atomic"

// storage is one power-of-two block holding a wrapped run of live elements.
//
// Logical index i lives in slots[(head+i)&mask] for 0 <= i < count. Every
// other slot holds the zero value so the block never pins dead elements.
// A storage never grows; callers pick a large enough one up front and every
// raw operation panics with ErrCapacityExceeded rather than reallocate.
type storage[T any] struct {
	slots []T
	mask  int
	head  int
	count int

	// owners counts the handles and running iterators that reference the block.
	owners atomic.Int32
	alloc  Allocator[T]
}

func newStorage[T any](alloc Allocator[T], capacity int) *storage[T] {
	capacity = roundCapacity(capacity)
	slots := alloc.Allocate(capacity)
	if len(slots) != capacity {
		violation(ErrInvalidCapacity, "allocator returned %d slots, want %d", len(slots), capacity)
	}
	s := &storage[T]{
		slots: slots,
		mask:  capacity - 1,
		alloc: alloc,
	}
	s.owners.Store(1)
	return s
}

func (s *storage[T]) capacity() int { return len(s.slots) }
func (s *storage[T]) free() int     { return len(s.slots) - s.count }
func (s *storage[T]) full() bool    { return s.count == len(s.slots) }

func (s *storage[T]) unique() bool { return s.owners.Load() == 1 }
func (s *storage[T]) retain()      { s.owners.Add(1) }

// release gives up one ownership. The last owner returns the block to
// the allocator, after which s must not be touched.
func (s *storage[T]) release() {
	if s.owners.Add(-1) == 0 {
		s.alloc.Free(s.slots)
		s.slots = nil
		s.count = 0
	}
}

// drop gives up one ownership without reclaiming the block. It runs from
// handle cleanups, which may fire while a method of that handle is still
// writing to the block.
func (s *storage[T]) drop() {
	s.owners.Add(-1)
}

func (s *storage[T]) phys(i int) int {
	return (s.head + i) & s.mask
}

func (s *storage[T]) at(i int) T {
	return s.slots[s.phys(i)]
}

func (s *storage[T]) set(i int, v T) {
	s.slots[s.phys(i)] = v
}

// segments returns the physical runs covering logical [lo, hi).
// The second run is non-empty only when the range wraps.
func (s *storage[T]) segments(lo, hi int) ([]T, []T) {
	n := hi - lo
	if n <= 0 {
		return nil, nil
	}
	start := s.phys(lo)
	if start+n <= len(s.slots) {
		return s.slots[start : start+n], nil
	}
	return s.slots[start:], s.slots[:start+n-len(s.slots)]
}

func (s *storage[T]) requireRoom(n int) {
	if s.count+n > len(s.slots) {
		violation(ErrCapacityExceeded, "count %d + %d, capacity %d", s.count, n, len(s.slots))
	}
}

func (s *storage[T]) requireNonEmpty() {
	if s.count == 0 {
		violation(ErrEmpty, "capacity %d", len(s.slots))
	}
}

// rawAppend copies vs after the live run without wrapping. It is meant
// for populating a fresh block.
func (s *storage[T]) rawAppend(vs ...T) {
	end := s.head + s.count
	if end+len(vs) > len(s.slots) {
		violation(ErrCapacityExceeded, "raw append of %d at %d, capacity %d", len(vs), end, len(s.slots))
	}
	copy(s.slots[end:], vs)
	s.count += len(vs)
}

// appendFrom raw-appends logical [lo, hi) of src.
func (s *storage[T]) appendFrom(src *storage[T], lo, hi int) {
	a, b := src.segments(lo, hi)
	s.rawAppend(a...)
	s.rawAppend(b...)
}

func (s *storage[T]) copyTo(dst []T) int {
	a, b := s.segments(0, s.count)
	n := copy(dst, a)
	return n + copy(dst[n:], b)
}

func (s *storage[T]) append(v T) {
	s.requireRoom(1)
	s.slots[s.phys(s.count)] = v
	s.count++
}

func (s *storage[T]) prepend(v T) {
	s.requireRoom(1)
	s.head = (s.head - 1) & s.mask
	s.slots[s.head] = v
	s.count++
}

func (s *storage[T]) removeFirst() T {
	s.requireNonEmpty()
	var zero T
	v := s.slots[s.head]
	s.slots[s.head] = zero
	s.head = (s.head + 1) & s.mask
	s.count--
	return v
}

func (s *storage[T]) removeLast() T {
	s.requireNonEmpty()
	var zero T
	p := s.phys(s.count - 1)
	v := s.slots[p]
	s.slots[p] = zero
	s.count--
	return v
}

// removeFront drops the first n elements.
func (s *storage[T]) removeFront(n int) {
	a, b := s.segments(0, n)
	clear(a)
	clear(b)
	s.head = (s.head + n) & s.mask
	s.count -= n
}

// removeBack drops the last n elements.
func (s *storage[T]) removeBack(n int) {
	a, b := s.segments(s.count-n, s.count)
	clear(a)
	clear(b)
	s.count -= n
}

func (s *storage[T]) clear() {
	s.removeBack(s.count)
	s.head = 0
}

// move copies the n elements at logical src onto logical dst. Both ranges
// lie in the same block and may overlap, so the walk runs front to back
// when dst precedes src and back to front otherwise. Each step copies the
// longest stretch that is contiguous on both sides.
func (s *storage[T]) move(dst, src, n int) {
	switch {
	case n <= 0 || dst == src:
		return
	case dst < src:
		for n > 0 {
			ps, pd := s.phys(src), s.phys(dst)
			k := min(n, len(s.slots)-ps, len(s.slots)-pd)
			copy(s.slots[pd:pd+k], s.slots[ps:ps+k])
			src += k
			dst += k
			n -= k
		}
	default:
		for n > 0 {
			ps, pd := s.phys(src+n-1)+1, s.phys(dst+n-1)+1
			k := min(n, ps, pd)
			copy(s.slots[pd-k:pd], s.slots[ps-k:ps])
			n -= k
		}
	}
}

// write overwrites logical [at, at+len(vs)) with vs.
func (s *storage[T]) write(at int, vs []T) {
	a, b := s.segments(at, at+len(vs))
	n := copy(a, vs)
	copy(b, vs[n:])
}

// insert places v at logical i, shifting whichever side of i is shorter.
func (s *storage[T]) insert(i int, v T) {
	checkRange(i, i, s.count)
	s.requireRoom(1)
	var zero T
	if i < s.count-i {
		s.prepend(zero)
		s.move(0, 1, i)
	} else {
		s.append(zero)
		s.move(i+1, i, s.count-1-i)
	}
	s.set(i, v)
}

// remove deletes the element at logical i, closing the gap from the shorter side.
func (s *storage[T]) remove(i int) T {
	checkIndex(i, s.count)
	v := s.at(i)
	if i < s.count-1-i {
		s.move(1, 0, i)
		s.removeFirst()
	} else {
		s.move(i, i+1, s.count-1-i)
		s.removeLast()
	}
	return v
}

// replace swaps logical [lo, hi) for vs. The prefix [0, lo) or the suffix
// [hi, count), whichever is shorter, slides to open or close the gap.
func (s *storage[T]) replace(lo, hi int, vs []T) {
	checkRange(lo, hi, s.count)
	removed, added := hi-lo, len(vs)
	if added > removed {
		s.requireRoom(added - removed)
	}
	prefix, suffix := lo, s.count-hi

	switch {
	case added > removed && prefix < suffix:
		d := added - removed
		s.head = (s.head - d) & s.mask
		s.count += d
		s.move(0, d, prefix)
	case added > removed:
		s.count += added - removed
		s.move(lo+added, hi, suffix)
	case added < removed && prefix < suffix:
		d := removed - added
		s.move(d, 0, prefix)
		s.removeFront(d)
	case added < removed:
		s.move(lo+added, hi, suffix)
		s.removeBack(removed - added)
	}
	s.write(lo, vs)
}

// rotate makes logical k the first element. k must be in [0, count).
func (s *storage[T]) rotate(k int) {
	switch {
	case k == 0:
	case s.full():
		s.head = (s.head + k) & s.mask
	case k <= s.count-k:
		for range k {
			s.append(s.removeFirst())
		}
	default:
		for range s.count - k {
			s.prepend(s.removeLast())
		}
	}
}
