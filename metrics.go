package ringbuffer

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// poolCollector exports PoolAllocator counters. Values are read from the
// allocator's atomics at scrape time, so nothing is tracked twice.
type poolCollector[T any] struct {
	pool *PoolAllocator[T]

	allocs   *prometheus.Desc
	hits     *prometheus.Desc
	misses   *prometheus.Desc
	frees    *prometheus.Desc
	discards *prometheus.Desc
}

// Collector returns a prometheus.Collector for p's statistics. component
// becomes a constant label so several pools can share one registry.
// Each series carries a size_class label holding the block capacity
// ("oversize" for unpooled capacities).
func (p *PoolAllocator[T]) Collector(namespace, component string) prometheus.Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ringbuffer_pool", name),
			help,
			[]string{"size_class"},
			prometheus.Labels{"component": component},
		)
	}
	return &poolCollector[T]{
		pool:     p,
		allocs:   desc("allocs_total", "Total number of block allocations"),
		hits:     desc("hits_total", "Total number of allocations served from an idle block"),
		misses:   desc("misses_total", "Total number of allocations that required a new block"),
		frees:    desc("frees_total", "Total number of blocks returned to the pool"),
		discards: desc("discards_total", "Total number of blocks dropped instead of pooled"),
	}
}

func (c *poolCollector[T]) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocs
	ch <- c.hits
	ch <- c.misses
	ch <- c.frees
	ch <- c.discards
}

func (c *poolCollector[T]) Collect(ch chan<- prometheus.Metric) {
	for capacity, s := range c.pool.ClassStats() {
		class := "oversize"
		if capacity > 0 {
			class = strconv.Itoa(capacity)
		}
		ch <- prometheus.MustNewConstMetric(c.allocs, prometheus.CounterValue, float64(s.Allocs), class)
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits), class)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses), class)
		ch <- prometheus.MustNewConstMetric(c.frees, prometheus.CounterValue, float64(s.Frees), class)
		ch <- prometheus.MustNewConstMetric(c.discards, prometheus.CounterValue, float64(s.Discards), class)
	}
}
