package tree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectInt64Sums(t *testing.T, reader sdkmetric.Reader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	res := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				name, _ := dp.Attributes.Value("rbtree.name")
				require.Equal(t, "stats", name.AsString())
				res[m.Name] += dp.Value
			}
		}
	}
	return res
}

func TestRBTreeStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		require.NoError(t, mp.Shutdown(context.Background()))
	}()

	s := NewSet[int](
		WithRBTreeMeter(mp.Meter("github.com/benz9527/trbt/lib/tree"), "stats"),
		WithRBTreeAllocator(NewBoundedAllocator(10)),
	)
	for i := 0; i < 12; i++ {
		_, _, _ = s.Insert(i)
	}
	_, _, _ = s.Insert(3)
	for i := 0; i < 4; i++ {
		s.Erase(i)
	}
	s.Erase(100)

	sums := collectInt64Sums(t, reader)
	require.Equal(t, int64(10), sums["rbtree.inserts"])
	require.Equal(t, int64(4), sums["rbtree.erases"])
	require.Equal(t, int64(2), sums["rbtree.alloc.failures"])
	require.Equal(t, int64(6), sums["rbtree.size"])
	require.Greater(t, sums["rbtree.rotations"], int64(0))

	for i := 4; i < 8; i++ {
		s.Erase(i)
	}
	// A clone is not metered.
	c, err := s.Clone()
	require.NoError(t, err)
	_, _, _ = c.Insert(100)
	sums = collectInt64Sums(t, reader)
	require.Equal(t, int64(10), sums["rbtree.inserts"])
	require.Equal(t, int64(8), sums["rbtree.erases"])
	require.Equal(t, int64(2), sums["rbtree.size"])

	s.Release()
	_, ok := collectInt64Sums(t, reader)["rbtree.size"]
	require.False(t, ok)
}

func TestRBTreeStats_NilSafe(t *testing.T) {
	var stats *rbTreeStats
	stats.inserted()
	stats.erased()
	stats.rotated()
	stats.allocFailed()
	stats.shutdown()
}
