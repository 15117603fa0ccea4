package ringbuffer

import (
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var mutations = []struct {
	name string
	fn   func(b *Buffer[int])
}{
	{"Set", func(b *Buffer[int]) { b.Set(1, 100) }},
	{"Swap", func(b *Buffer[int]) { b.Swap(0, b.Len()-1) }},
	{"Append", func(b *Buffer[int]) { b.Append(100) }},
	{"Prepend", func(b *Buffer[int]) { b.Prepend(100) }},
	{"Insert", func(b *Buffer[int]) { b.Insert(2, 100) }},
	{"InsertSlice", func(b *Buffer[int]) { b.InsertSlice(1, []int{100, 101, 102}) }},
	{"AppendSlice", func(b *Buffer[int]) { b.AppendSlice([]int{100, 101}) }},
	{"PrependSlice", func(b *Buffer[int]) { b.PrependSlice([]int{100, 101}) }},
	{"Replace", func(b *Buffer[int]) { b.Replace(1, 3, []int{100}) }},
	{"ReplaceGrow", func(b *Buffer[int]) { b.Replace(1, 2, []int{100, 101, 102, 103, 104}) }},
	{"Remove", func(b *Buffer[int]) { b.Remove(2) }},
	{"RemoveRange", func(b *Buffer[int]) { b.RemoveRange(1, 3) }},
	{"RemoveFirst", func(b *Buffer[int]) { b.RemoveFirst() }},
	{"RemoveLast", func(b *Buffer[int]) { b.RemoveLast() }},
	{"RemoveFirstN", func(b *Buffer[int]) { b.RemoveFirstN(2) }},
	{"RemoveLastN", func(b *Buffer[int]) { b.RemoveLastN(2) }},
	{"PopFirst", func(b *Buffer[int]) { b.PopFirst() }},
	{"PopLast", func(b *Buffer[int]) { b.PopLast() }},
	{"RemoveAll", func(b *Buffer[int]) { b.RemoveAll(false) }},
	{"RemoveAllKeep", func(b *Buffer[int]) { b.RemoveAll(true) }},
	{"Reserve", func(b *Buffer[int]) { b.Reserve(64) }},
	{"Rotate", func(b *Buffer[int]) { b.Rotate(3) }},
}

func TestCloneIsolation(t *testing.T) {
	for _, m := range mutations {
		for _, count := range []int{4, 7, 8} {
			for _, head := range []int{0, 3, 6} {
				t.Run(fmt.Sprintf("%s/head=%d/count=%d", m.name, head, count), func(t *testing.T) {
					vals := seq(1, count)
					a := wrapped(8, head, vals...)
					b := a.Clone()
					require.True(t, Equal(a, b))

					m.fn(b)

					want := From(vals)
					m.fn(want)
					require.Equal(t, want.Slice(), b.Slice(), "clone must see its own mutation")
					require.Equal(t, vals, a.Slice(), "original must not see the clone's mutation")

					// and the other direction
					c := a.Clone()
					m.fn(a)
					require.Equal(t, want.Slice(), a.Slice())
					require.Equal(t, vals, c.Slice())
				})
			}
		}
	}
}

func TestCloneOfClone(t *testing.T) {
	a := From([]int{1, 2, 3})
	b := a.Clone()
	c := b.Clone()

	c.Append(4)
	b.RemoveFirst()

	require.Equal(t, []int{1, 2, 3}, a.Slice())
	require.Equal(t, []int{2, 3}, b.Slice())
	require.Equal(t, []int{1, 2, 3, 4}, c.Slice())
}

func TestSharedGrowthCapacity(t *testing.T) {
	// shared and not full: the copy keeps the capacity
	a := From([]int{1, 2, 3})
	b := a.Clone()
	b.Append(4)
	require.Equal(t, 4, b.Cap())

	// shared and full: the copy doubles
	c := b.Clone()
	c.Prepend(0)
	require.Equal(t, 8, c.Cap())

	// shared single removal asks for capacity-1, which rounds back up
	d := c.Clone()
	d.Remove(0)
	require.Equal(t, 8, d.Cap())

	one := From([]int{1})
	e := one.Clone()
	e.RemoveLast()
	require.Equal(t, 1, e.Cap())

	// shared RemoveAll drops to capacity 1 unless asked to keep it
	f := c.Clone()
	f.RemoveAll(false)
	require.Equal(t, 1, f.Cap())
	g := c.Clone()
	g.RemoveAll(true)
	require.Equal(t, 8, g.Cap())

	// shared in-capacity bulk insert keeps the capacity
	h := c.Clone()
	h.InsertSlice(1, []int{9, 9, 9})
	require.Equal(t, 8, h.Cap())

	runtime.KeepAlive(a)
	runtime.KeepAlive(one)
	runtime.KeepAlive(c)
}

func TestUniqueMutationStaysInPlace(t *testing.T) {
	a := From([]int{1, 2, 3})
	before := a.claim.s

	a.Append(4)
	a.Set(0, 0)
	a.Rotate(1)
	a.Remove(1)
	require.Same(t, before, a.claim.s)

	b := a.Clone()
	require.Same(t, before, b.claim.s)
	b.Set(0, 9)
	require.NotSame(t, before, b.claim.s)
	require.Same(t, before, a.claim.s)
	require.True(t, a.claim.s.unique())
	require.True(t, b.claim.s.unique())
}

func TestCollectedCloneUnshares(t *testing.T) {
	pool := NewPoolAllocator[int](PoolConfig{})
	a := From([]int{1, 2, 3, 4, 5}, WithAllocator[int](pool))
	block := a.store()

	c := a.Clone()
	require.False(t, block.unique())
	runtime.KeepAlive(c)

	require.Eventually(t, func() bool {
		runtime.GC()
		return block.unique()
	}, 5*time.Second, time.Millisecond, "collected clone must give up its share")
	require.Equal(t, PoolStats{Allocs: 1, Misses: 1}, pool.Stats(), "collection must not free the block")

	a.Set(0, 9)
	require.Same(t, block, a.store(), "unique again, so no copy")

	other := New(8, WithAllocator[int](pool))
	require.Equal(t, uint64(0), pool.Stats().Hits, "block still in use by a")

	a.Reserve(16)
	require.NotSame(t, block, a.store())
	require.Equal(t, uint64(1), pool.Stats().Frees)

	reused := New(8, WithAllocator[int](pool))
	require.Equal(t, PoolStats{Allocs: 4, Hits: 1, Misses: 3, Frees: 1}, pool.Stats())
	require.Equal(t, []int{9, 2, 3, 4, 5}, a.Slice())
	require.True(t, reused.IsEmpty())
	runtime.KeepAlive(other)
}
