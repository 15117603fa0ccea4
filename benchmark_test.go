package ringbuffer

import (
	"testing"

	"github.com/gammazero/deque"
)

func BenchmarkAppendRemoveFirst(b *testing.B) {
	buf := New[int](1 << 10)
	for i := 0; i < b.N; i++ {
		buf.Append(i)
		if buf.Len() == 1<<10 {
			buf.RemoveFirstN(1 << 9)
		}
	}
}

// Same workload on gammazero/deque for comparison.
func BenchmarkDequeAppendRemoveFirst(b *testing.B) {
	q := deque.New[int](1 << 10)
	for i := 0; i < b.N; i++ {
		q.PushBack(i)
		if q.Len() == 1<<10 {
			for range 1 << 9 {
				q.PopFront()
			}
		}
	}
}

func BenchmarkGrowth(b *testing.B) {
	b.Run("heap", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := New[int](0)
			for j := range 1 << 12 {
				buf.Append(j)
			}
		}
	})
	b.Run("pool", func(b *testing.B) {
		pool := NewPoolAllocator[int](PoolConfig{})
		for i := 0; i < b.N; i++ {
			buf := New(0, WithAllocator[int](pool))
			for j := range 1 << 12 {
				buf.Append(j)
			}
		}
	})
}

func BenchmarkInsertMiddle(b *testing.B) {
	buf := New[int](1 << 12)
	for i := range 1 << 11 {
		buf.Append(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Insert(buf.Len()/2, i)
		buf.Remove(buf.Len() / 2)
	}
}

func BenchmarkCloneMutate(b *testing.B) {
	buf := From(seq(0, 1<<10))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := buf.Clone()
		c.Set(0, i)
	}
}
