package tree

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// rbTreeStats records the tree operations. A nil *rbTreeStats records
// nothing, so the tree calls it unconditionally.
type rbTreeStats struct {
	ctx           context.Context
	attrs         metric.MeasurementOption
	inserts       metric.Int64Counter
	erases        metric.Int64Counter
	rotations     metric.Int64Counter
	allocFailures metric.Int64Counter
	size          metric.Int64ObservableUpDownCounter
	reg           metric.Registration
}

func newRBTreeStats(meter metric.Meter, name string, size func() int64) *rbTreeStats {
	if len(strings.TrimSpace(name)) <= 0 {
		name = "default"
	}
	stats := &rbTreeStats{
		ctx:   context.Background(),
		attrs: metric.WithAttributes(attribute.String("rbtree.name", name)),
		inserts: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.inserts",
			metric.WithDescription(`The nodes linked into the tree.`),
		)),
		erases: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.erases",
			metric.WithDescription(`The nodes unlinked from the tree.`),
		)),
		rotations: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rotations",
			metric.WithDescription(`The single rotations done by the rebalancing.`),
		)),
		allocFailures: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.alloc.failures",
			metric.WithDescription(`The node allocations refused by the allocator.`),
		)),
		size: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
			"rbtree.size",
			metric.WithDescription(`The elements in the tree.`),
		)),
	}
	stats.reg = lo.Must[metric.Registration](meter.RegisterCallback(
		func(ctx context.Context, ob metric.Observer) error {
			ob.ObserveInt64(stats.size, size(), stats.attrs)
			return nil
		},
		stats.size,
	))
	return stats
}

func (stats *rbTreeStats) inserted() {
	if stats == nil {
		return
	}
	stats.inserts.Add(stats.ctx, 1, stats.attrs)
}

func (stats *rbTreeStats) erased() {
	if stats == nil {
		return
	}
	stats.erases.Add(stats.ctx, 1, stats.attrs)
}

func (stats *rbTreeStats) rotated() {
	if stats == nil {
		return
	}
	stats.rotations.Add(stats.ctx, 1, stats.attrs)
}

func (stats *rbTreeStats) allocFailed() {
	if stats == nil {
		return
	}
	stats.allocFailures.Add(stats.ctx, 1, stats.attrs)
}

// shutdown stops the size observation.
func (stats *rbTreeStats) shutdown() {
	if stats == nil || stats.reg == nil {
		return
	}
	_ = stats.reg.Unregister()
	stats.reg = nil
}
