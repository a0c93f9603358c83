package tree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectTreeSums(t *testing.T, reader sdkmetric.Reader, scope string) map[string]int64 {
	t.Helper()
	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64, 8)
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != scope {
			continue
		}
		for _, m := range sm.Metrics {
			data, ok := m.Data.(metricdata.Sum[int64])
			require.Truef(t, ok, "metric %s is not an int64 sum", m.Name)
			for _, dp := range data.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	return sums
}

func TestTreeStats_Disabled(t *testing.T) {
	var stats *treeStats
	stats.recordRotation(Left)
	stats.recordRecolor()
	stats.recordInsert()
	stats.recordDelete()
	stats.recordRelease(10)
	require.Equal(t, RebalanceStats{}, stats.snapshot())

	stats = newTreeStats("avl", nil)
	require.Nil(t, stats.meters)
	stats.recordRotation(Right)
	require.Equal(t, RebalanceStats{Rotations: 1}, stats.snapshot())
}

func TestTreeStats_OtelMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() {
		otel.SetMeterProvider(prev)
		_ = provider.Shutdown(context.Background())
	})

	tree := NewRBTree[int](WithTreeStats("rb-test"))
	for _, key := range []int{10, 20, 30} {
		require.NoError(t, tree.Insert(key))
	}
	require.NoError(t, tree.Insert(20))

	scope := TreeStatsName + "/rb-test"
	sums := collectTreeSums(t, reader, scope)
	require.Equal(t, int64(3), sums["tree.insert.count"])
	require.Equal(t, int64(3), sums["tree.vertex.count"])
	require.Equal(t, int64(1), sums["tree.rotation.count"])
	require.Equal(t, int64(3), sums["tree.recolor.count"])
	require.Equal(t, RebalanceStats{Rotations: 1, Recolors: 3}, tree.Stats())

	require.True(t, tree.Delete(10))
	require.False(t, tree.Delete(10))
	sums = collectTreeSums(t, reader, scope)
	require.Equal(t, int64(1), sums["tree.delete.count"])
	require.Equal(t, int64(2), sums["tree.vertex.count"])

	tree.Release()
	sums = collectTreeSums(t, reader, scope)
	require.Equal(t, int64(0), sums["tree.vertex.count"])

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "tree.rotation.count" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				dir, ok := dp.Attributes.Value(attribute.Key("tree.rotation.direction"))
				require.True(t, ok)
				require.Equal(t, "left", dir.AsString())
				kind, ok := dp.Attributes.Value(attribute.Key("tree.kind"))
				require.True(t, ok)
				require.Equal(t, "rb", kind.AsString())
				found = true
			}
		}
	}
	require.True(t, found)
}

func TestTreeStats_DefaultScope(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() {
		otel.SetMeterProvider(prev)
		_ = provider.Shutdown(context.Background())
	})

	tree := NewAVLTree[int](WithTreeStats("  "))
	for key := 0; key < 7; key++ {
		require.NoError(t, tree.Insert(key))
	}
	sums := collectTreeSums(t, reader, TreeStatsName)
	require.Equal(t, int64(7), sums["tree.vertex.count"])
	require.Equal(t, tree.Stats().Rotations, sums["tree.rotation.count"])
	require.Zero(t, sums["tree.recolor.count"])
}
