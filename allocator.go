package ringbuffer

import (
	"math/bits"
	"sync/atomic"
)

// Allocator hands out and takes back element blocks.
//
// Allocate must return a zeroed block of exactly capacity slots. Free is
// called once a block is no longer referenced by any buffer; the block
// may still hold element values.
type Allocator[T any] interface {
	Allocate(capacity int) []T
	Free(block []T)
}

// HeapAllocator allocates with make and leaves reclamation to the GC.
type HeapAllocator[T any] struct{}

// Allocate returns a new zeroed block.
func (HeapAllocator[T]) Allocate(capacity int) []T { return make([]T, capacity) }

// Free does nothing.
func (HeapAllocator[T]) Free([]T) {}

const (
	DefaultPoolMaxClass = 16 // blocks of up to 64Ki slots are pooled
	DefaultPoolDepth    = 64
)

// PoolConfig configures a PoolAllocator. Zero fields take the defaults.
type PoolConfig struct {
	// MaxClass is log2 of the largest pooled capacity.
	MaxClass int
	// Depth is the number of idle blocks kept per size class,
	// rounded up to a power of two of at least 2.
	Depth int
}

// PoolStats is a snapshot of allocator activity.
type PoolStats struct {
	Allocs   uint64 // Allocate calls
	Hits     uint64 // allocations served from an idle block
	Misses   uint64 // allocations that fell through to make
	Frees    uint64 // blocks accepted back into the pool
	Discards uint64 // blocks dropped because the pool was full or the class is not pooled
}

type classCounters struct {
	allocs   atomic.Uint64
	hits     atomic.Uint64
	misses   atomic.Uint64
	frees    atomic.Uint64
	discards atomic.Uint64
}

func (c *classCounters) snapshot() PoolStats {
	return PoolStats{
		Allocs:   c.allocs.Load(),
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Frees:    c.frees.Load(),
		Discards: c.discards.Load(),
	}
}

// PoolAllocator recycles blocks per power-of-two size class. Buffers that
// grow repeatedly hand their old blocks back, so a workload that keeps
// many buffers of similar size stops allocating once warm.
//
// It is safe for concurrent use.
type PoolAllocator[T any] struct {
	lists    []*freeList[[]T]
	counters []classCounters
	// oversize tracks capacities above MaxClass, which bypass the pool.
	oversize classCounters
}

// NewPoolAllocator returns an empty pool configured by cfg.
func NewPoolAllocator[T any](cfg PoolConfig) *PoolAllocator[T] {
	if cfg.MaxClass <= 0 {
		cfg.MaxClass = DefaultPoolMaxClass
	}
	if cfg.MaxClass > bits.UintSize-2 {
		cfg.MaxClass = bits.UintSize - 2
	}
	if cfg.Depth <= 0 {
		cfg.Depth = DefaultPoolDepth
	}
	depth := uint64(roundCapacity(max(cfg.Depth, 2)))

	p := &PoolAllocator[T]{
		lists:    make([]*freeList[[]T], cfg.MaxClass+1),
		counters: make([]classCounters, cfg.MaxClass+1),
	}
	for i := range p.lists {
		p.lists[i] = newFreeList[[]T](depth)
	}
	return p
}

// class returns the size class of capacity, or -1 if it is not pooled.
func (p *PoolAllocator[T]) class(capacity int) int {
	if !isPowerOfTwo(capacity) {
		return -1
	}
	c := bits.TrailingZeros(uint(capacity))
	if c >= len(p.lists) {
		return -1
	}
	return c
}

// Allocate pops an idle block of the capacity's class, or makes one.
func (p *PoolAllocator[T]) Allocate(capacity int) []T {
	c := p.class(capacity)
	if c < 0 {
		p.oversize.allocs.Add(1)
		p.oversize.misses.Add(1)
		return make([]T, capacity)
	}

	cnt := &p.counters[c]
	cnt.allocs.Add(1)
	if block, ok := p.lists[c].pop(); ok {
		cnt.hits.Add(1)
		return block
	}
	cnt.misses.Add(1)
	return make([]T, capacity)
}

// Free clears block and keeps it for reuse unless its class is full
// or not pooled.
func (p *PoolAllocator[T]) Free(block []T) {
	c := p.class(len(block))
	if c < 0 {
		p.oversize.discards.Add(1)
		return
	}

	cnt := &p.counters[c]
	clear(block)
	if p.lists[c].push(block) {
		cnt.frees.Add(1)
		return
	}
	cnt.discards.Add(1)
}

// Stats sums the counters of every size class.
func (p *PoolAllocator[T]) Stats() PoolStats {
	total := p.oversize.snapshot()
	for i := range p.counters {
		s := p.counters[i].snapshot()
		total.Allocs += s.Allocs
		total.Hits += s.Hits
		total.Misses += s.Misses
		total.Frees += s.Frees
		total.Discards += s.Discards
	}
	return total
}

// ClassStats returns the counters of each size class that has seen
// traffic, keyed by capacity. Oversized traffic is keyed by 0.
func (p *PoolAllocator[T]) ClassStats() map[int]PoolStats {
	out := make(map[int]PoolStats)
	for i := range p.counters {
		if s := p.counters[i].snapshot(); s != (PoolStats{}) {
			out[1<<i] = s
		}
	}
	if s := p.oversize.snapshot(); s != (PoolStats{}) {
		out[0] = s
	}
	return out
}
