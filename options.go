package ringbuffer

// Option configures a Buffer at construction.
type Option[T any] func(*options[T])

type options[T any] struct {
	alloc Allocator[T]
}

// WithAllocator makes the buffer, and every block it later grows into,
// come from a. A nil allocator is ignored.
func WithAllocator[T any](a Allocator[T]) Option[T] {
	return func(o *options[T]) {
		if a != nil {
			o.alloc = a
		}
	}
}

func applyOptions[T any](opts ...Option[T]) *options[T] {
	o := &options[T]{
		alloc: HeapAllocator[T]{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
