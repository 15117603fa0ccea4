package ringbuffer

import "iter"

// Iterators pin the storage they started on. Mutating the buffer inside
// the loop therefore copies, and the loop keeps seeing the elements as
// they were when it began.

// All yields index/element pairs from front to back.
func (b *Buffer[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		s := b.store()
		s.retain()
		defer s.release()
		for i := 0; i < s.count; i++ {
			if !yield(i, s.at(i)) {
				return
			}
		}
	}
}

// Values yields the elements from front to back.
func (b *Buffer[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range b.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Backward yields index/element pairs from back to front.
func (b *Buffer[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		s := b.store()
		s.retain()
		defer s.release()
		for i := s.count - 1; i >= 0; i-- {
			if !yield(i, s.at(i)) {
				return
			}
		}
	}
}

// Slice returns the elements in logical order as a new slice.
func (b *Buffer[T]) Slice() []T {
	s := b.store()
	out := make([]T, s.count)
	s.copyTo(out)
	return out
}
