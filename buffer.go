package ringbuffer

import "runtime"

// Buffer is a growable circular buffer with copy-on-write sharing.
//
// Capacity is always a power of two. Appending to a full buffer doubles it,
// so Append and Prepend are amortized O(1); Insert and Remove move the
// shorter side of the index.
//
// Assigning a *Buffer aliases it. Use Clone for an independent value that
// shares storage until one of the two is mutated.
//
// Indexes outside the buffer and removal from an empty buffer panic with
// an error wrapping ErrIndexOutOfRange or ErrEmpty.
//
// Buffers must be built with New, From or Repeat. The zero value is not
// usable; its methods panic with an error wrapping ErrUninitialized.
type Buffer[T any] struct {
	claim *claim[T]
}

// claim is the handle's reference to its storage. It is split from Buffer
// so the handle's cleanup can release whichever storage is current.
type claim[T any] struct {
	s *storage[T]
}

func wrap[T any](s *storage[T]) *Buffer[T] {
	b := &Buffer[T]{claim: &claim[T]{s: s}}
	runtime.AddCleanup(b, func(c *claim[T]) { c.s.drop() }, b.claim)
	return b
}

func (b *Buffer[T]) store() *storage[T] {
	if b.claim == nil {
		violation(ErrUninitialized, "zero Buffer")
	}
	return b.claim.s
}

// New returns an empty buffer able to hold capacity elements before growing.
// The capacity is rounded up to a power of two, and is at least 1.
func New[T any](capacity int, opts ...Option[T]) *Buffer[T] {
	o := applyOptions(opts...)
	return wrap(newStorage(o.alloc, capacity))
}

// From returns a buffer holding a copy of values.
func From[T any](values []T, opts ...Option[T]) *Buffer[T] {
	o := applyOptions(opts...)
	s := newStorage(o.alloc, len(values))
	s.rawAppend(values...)
	return wrap(s)
}

// Repeat returns a buffer holding n copies of v.
func Repeat[T any](v T, n int, opts ...Option[T]) *Buffer[T] {
	if n < 0 {
		violation(ErrInvalidCapacity, "negative count %d", n)
	}
	o := applyOptions(opts...)
	s := newStorage(o.alloc, n)
	for range n {
		s.append(v)
	}
	return wrap(s)
}

// Clone returns a buffer with the same contents. The two share storage
// until either is mutated.
func (b *Buffer[T]) Clone() *Buffer[T] {
	s := b.store()
	s.retain()
	return wrap(s)
}

func (b *Buffer[T]) Len() int      { return b.store().count }
func (b *Buffer[T]) Cap() int      { return b.store().capacity() }
func (b *Buffer[T]) IsEmpty() bool { return b.store().count == 0 }
func (b *Buffer[T]) IsFull() bool  { return b.store().full() }

// At returns the element at logical index i.
func (b *Buffer[T]) At(i int) T {
	s := b.store()
	checkIndex(i, s.count)
	return s.at(i)
}

// First returns the first element, or false if b is empty.
func (b *Buffer[T]) First() (T, bool) {
	s := b.store()
	if s.count == 0 {
		var zero T
		return zero, false
	}
	return s.at(0), true
}

// Last returns the last element, or false if b is empty.
func (b *Buffer[T]) Last() (T, bool) {
	s := b.store()
	if s.count == 0 {
		var zero T
		return zero, false
	}
	return s.at(s.count - 1), true
}

// install makes s the storage of b and releases the previous one.
func (b *Buffer[T]) install(s *storage[T]) {
	old := b.store()
	b.claim.s = s
	old.release()
}

// rebuild moves b onto a fresh storage of at least capacity slots holding
// the current elements with [lo, hi) replaced by values.
func (b *Buffer[T]) rebuild(capacity, lo, hi int, values []T) {
	old := b.store()
	s := newStorage(old.alloc, capacity)
	s.appendFrom(old, 0, lo)
	s.rawAppend(values...)
	s.appendFrom(old, hi, old.count)
	b.install(s)
}

// own makes sure b is the only owner of its storage.
func (b *Buffer[T]) own() *storage[T] {
	if s := b.store(); !s.unique() {
		b.rebuild(s.capacity(), 0, 0, nil)
	}
	return b.store()
}

// Set replaces the element at logical index i.
func (b *Buffer[T]) Set(i int, v T) {
	checkIndex(i, b.store().count)
	b.own().set(i, v)
}

// Swap exchanges the elements at i and j.
func (b *Buffer[T]) Swap(i, j int) {
	n := b.store().count
	checkIndex(i, n)
	checkIndex(j, n)
	s := b.own()
	vi, vj := s.at(i), s.at(j)
	s.set(i, vj)
	s.set(j, vi)
}

func (b *Buffer[T]) Append(v T) {
	s := b.store()
	if s.unique() && !s.full() {
		s.append(v)
		return
	}
	b.rebuild(max(s.count+1, s.capacity()), s.count, s.count, []T{v})
}

func (b *Buffer[T]) Prepend(v T) {
	s := b.store()
	if s.unique() && !s.full() {
		s.prepend(v)
		return
	}
	b.rebuild(max(s.count+1, s.capacity()), 0, 0, []T{v})
}

// Insert places v at logical index i, 0 <= i <= Len().
func (b *Buffer[T]) Insert(i int, v T) {
	s := b.store()
	checkRange(i, i, s.count)
	if s.unique() && !s.full() {
		s.insert(i, v)
		return
	}
	b.rebuild(max(s.count+1, s.capacity()), i, i, []T{v})
}

// InsertSlice places values before logical index i, 0 <= i <= Len().
func (b *Buffer[T]) InsertSlice(i int, values []T) {
	b.Replace(i, i, values)
}

func (b *Buffer[T]) AppendSlice(values []T) {
	b.Replace(b.store().count, b.store().count, values)
}

func (b *Buffer[T]) PrependSlice(values []T) {
	b.Replace(0, 0, values)
}

// Replace substitutes values for the elements in [lo, hi). The buffer
// grows only when the net number of added elements exceeds free capacity.
func (b *Buffer[T]) Replace(lo, hi int, values []T) {
	s := b.store()
	checkRange(lo, hi, s.count)
	if lo == hi && len(values) == 0 {
		return
	}
	delta := len(values) - (hi - lo)
	if s.unique() && delta <= s.free() {
		s.replace(lo, hi, values)
		return
	}
	b.rebuild(max(s.count+delta, s.capacity()), lo, hi, values)
}

// Remove deletes and returns the element at logical index i.
func (b *Buffer[T]) Remove(i int) T {
	s := b.store()
	checkIndex(i, s.count)
	if s.unique() {
		return s.remove(i)
	}
	v := s.at(i)
	b.rebuild(s.capacity()-1, i, i+1, nil)
	return v
}

// RemoveRange deletes the elements in [lo, hi).
func (b *Buffer[T]) RemoveRange(lo, hi int) {
	s := b.store()
	checkRange(lo, hi, s.count)
	if lo == hi {
		return
	}
	if s.unique() {
		s.replace(lo, hi, nil)
		return
	}
	b.rebuild(s.capacity(), lo, hi, nil)
}

// RemoveFirst deletes and returns the first element. It panics if b is empty.
func (b *Buffer[T]) RemoveFirst() T {
	s := b.store()
	s.requireNonEmpty()
	if s.unique() {
		return s.removeFirst()
	}
	v := s.at(0)
	b.rebuild(s.capacity()-1, 0, 1, nil)
	return v
}

// RemoveLast deletes and returns the last element. It panics if b is empty.
func (b *Buffer[T]) RemoveLast() T {
	s := b.store()
	s.requireNonEmpty()
	if s.unique() {
		return s.removeLast()
	}
	v := s.at(s.count - 1)
	b.rebuild(s.capacity()-1, s.count-1, s.count, nil)
	return v
}

// RemoveFirstN deletes the first n elements.
func (b *Buffer[T]) RemoveFirstN(n int) {
	b.RemoveRange(0, n)
}

// RemoveLastN deletes the last n elements.
func (b *Buffer[T]) RemoveLastN(n int) {
	c := b.store().count
	if n < 0 || n > c {
		violation(ErrIndexOutOfRange, "remove last %d, count %d", n, c)
	}
	b.RemoveRange(c-n, c)
}

// PopFirst removes the first element, reporting false if b is empty.
func (b *Buffer[T]) PopFirst() (T, bool) {
	if b.IsEmpty() {
		var zero T
		return zero, false
	}
	return b.RemoveFirst(), true
}

// PopLast removes the last element, reporting false if b is empty.
func (b *Buffer[T]) PopLast() (T, bool) {
	if b.IsEmpty() {
		var zero T
		return zero, false
	}
	return b.RemoveLast(), true
}

// RemoveAll empties b. A uniquely owned buffer is cleared in place; a
// shared one moves to a new block of capacity 1, or of its current
// capacity if keepCapacity is set.
func (b *Buffer[T]) RemoveAll(keepCapacity bool) {
	s := b.store()
	if s.unique() {
		s.clear()
		return
	}
	capacity := 1
	if keepCapacity {
		capacity = s.capacity()
	}
	b.install(newStorage(s.alloc, capacity))
}

// Reserve ensures capacity for at least n elements. Growing always moves
// the elements to a new block sized for n.
func (b *Buffer[T]) Reserve(n int) {
	s := b.store()
	if s.capacity() >= n {
		return
	}
	b.rebuild(n, 0, 0, nil)
}

// Rotate makes the element at logical index k the first one, keeping the
// cyclic order. k is taken modulo Len and may be negative.
func (b *Buffer[T]) Rotate(k int) {
	n := b.store().count
	if n == 0 {
		return
	}
	k %= n
	if k < 0 {
		k += n
	}
	if k == 0 {
		return
	}
	b.own().rotate(k)
}
