package ringbuffer

import (
	"fmt"
	"hash/maphash"
	"strings"
)

// String renders the elements in logical order, like a slice.
func (b *Buffer[T]) String() string {
	return fmt.Sprint(b.Slice())
}

// GoString renders the physical layout: the run starting at head and,
// when the contents wrap, the run continuing at slot 0.
func (b *Buffer[T]) GoString() string {
	s := b.store()
	prefix, suffix := s.segments(0, s.count)

	var sb strings.Builder
	fmt.Fprintf(&sb, "ringbuffer.Buffer{capacity: %d, head: %d, count: %d, prefix: %v",
		s.capacity(), s.head, s.count, prefix)
	if len(suffix) > 0 {
		fmt.Fprintf(&sb, ", suffix: %v", suffix)
	}
	if !s.unique() {
		sb.WriteString(", shared")
	}
	sb.WriteByte('}')
	return sb.String()
}

// Equal reports whether a and b hold equal elements in the same order.
// Physical layout and capacity are ignored.
func Equal[T comparable](a, b *Buffer[T]) bool {
	return EqualFunc(a, b, func(x, y T) bool { return x == y })
}

// EqualFunc is like Equal but compares elements with eq.
func EqualFunc[T, U any](a *Buffer[T], b *Buffer[U], eq func(T, U) bool) bool {
	sa, sb := a.store(), b.store()
	if sa.count != sb.count {
		return false
	}
	for i := 0; i < sa.count; i++ {
		if !eq(sa.at(i), sb.at(i)) {
			return false
		}
	}
	return true
}

// Hash hashes the logical contents of b. Buffers that are Equal hash
// equal under the same seed.
func Hash[T comparable](seed maphash.Seed, b *Buffer[T]) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	s := b.store()
	maphash.WriteComparable(&h, s.count)
	for i := 0; i < s.count; i++ {
		maphash.WriteComparable(&h, s.at(i))
	}
	return h.Sum64()
}
