package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	TreeStatsName = "xcoll/tree"
)

// RebalanceStats is the snapshot of the structural work done by a tree
// since it has been created.
type RebalanceStats struct {
	Rotations int64
	Recolors  int64
}

type treeMeters struct {
	kind          attribute.KeyValue
	vertexCount   metric.Int64UpDownCounter
	rotationCount metric.Int64Counter
	recolorCount  metric.Int64Counter
	insertCount   metric.Int64Counter
	deleteCount   metric.Int64Counter
}

type treeStats struct {
	rotations int64
	recolors  int64
	meters    *treeMeters
}

func (stats *treeStats) snapshot() RebalanceStats {
	if stats == nil {
		return RebalanceStats{}
	}
	return RebalanceStats{
		Rotations: stats.rotations,
		Recolors:  stats.recolors,
	}
}

func (stats *treeStats) recordRotation(dir Direction) {
	if stats == nil {
		return
	}
	stats.rotations++
	if stats.meters == nil {
		return
	}
	stats.meters.rotationCount.Add(context.Background(), 1, metric.WithAttributes(
		stats.meters.kind,
		attribute.String("tree.rotation.direction", strings.ToLower(dir.String())),
	))
}

func (stats *treeStats) recordRecolor() {
	if stats == nil {
		return
	}
	stats.recolors++
	if stats.meters == nil {
		return
	}
	stats.meters.recolorCount.Add(context.Background(), 1, metric.WithAttributes(stats.meters.kind))
}

func (stats *treeStats) recordInsert() {
	if stats == nil || stats.meters == nil {
		return
	}
	stats.meters.insertCount.Add(context.Background(), 1, metric.WithAttributes(stats.meters.kind))
	stats.meters.vertexCount.Add(context.Background(), 1, metric.WithAttributes(stats.meters.kind))
}

func (stats *treeStats) recordDelete() {
	if stats == nil || stats.meters == nil {
		return
	}
	stats.meters.deleteCount.Add(context.Background(), 1, metric.WithAttributes(stats.meters.kind))
	stats.meters.vertexCount.Add(context.Background(), -1, metric.WithAttributes(stats.meters.kind))
}

func (stats *treeStats) recordRelease(count int64) {
	if stats == nil || stats.meters == nil || count <= 0 {
		return
	}
	stats.meters.vertexCount.Add(context.Background(), -count, metric.WithAttributes(stats.meters.kind))
}

func newTreeStats(kind string, opts *treeOptions) *treeStats {
	stats := &treeStats{}
	if opts == nil || !opts.isStatsEnabled {
		return stats
	}

	meterName := TreeStatsName
	if name := strings.TrimSpace(opts.statsName); len(name) > 0 {
		meterName = fmt.Sprintf("%s/%s", TreeStatsName, name)
	}
	meter := otel.Meter(meterName)
	stats.meters = &treeMeters{
		kind: attribute.String("tree.kind", kind),
		vertexCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"tree.vertex.count",
			metric.WithDescription("The number of vertices in the tree."),
		)),
		rotationCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"tree.rotation.count",
			metric.WithDescription("The number of single rotations done by the rebalancing."),
		)),
		recolorCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"tree.recolor.count",
			metric.WithDescription("The number of vertex color changes done by the red-black fixup."),
		)),
		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"tree.insert.count",
			metric.WithDescription("The number of keys inserted into the tree."),
		)),
		deleteCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"tree.delete.count",
			metric.WithDescription("The number of keys deleted from the tree."),
		)),
	}
	return stats
}
