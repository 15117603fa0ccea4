package ringbuffer

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolCollector(t *testing.T) {
	pool := NewPoolAllocator[int](PoolConfig{MaxClass: 3})
	c := pool.Collector("test", "inbox")

	// nothing allocated yet
	require.Equal(t, 0, testutil.CollectAndCount(c))

	b := New(1, WithAllocator[int](pool))
	for i := range 4 {
		b.Append(i)
	}
	pool.Free(pool.Allocate(16))

	// classes 1, 2, 4 and oversize, five series each
	require.Equal(t, 20, testutil.CollectAndCount(c))
	require.Equal(t, 4, testutil.CollectAndCount(c, "test_ringbuffer_pool_allocs_total"))

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))
	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			assert.Equal(t, "inbox", labels["component"])
			if values[mf.GetName()] == nil {
				values[mf.GetName()] = map[string]float64{}
			}
			values[mf.GetName()][labels["size_class"]] = m.GetCounter().GetValue()
		}
	}

	assert.Equal(t, map[string]float64{"1": 1, "2": 1, "4": 1, "oversize": 1}, values["test_ringbuffer_pool_allocs_total"])
	assert.Equal(t, map[string]float64{"1": 1, "2": 1, "4": 0, "oversize": 0}, values["test_ringbuffer_pool_frees_total"])
	assert.Equal(t, map[string]float64{"1": 0, "2": 0, "4": 0, "oversize": 1}, values["test_ringbuffer_pool_discards_total"])
	require.Equal(t, []int{0, 1, 2, 3}, b.Slice())
}
