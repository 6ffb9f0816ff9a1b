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
	MapStatsName = "xboot/xtree"
)

type mapStats struct {
	policyAttrs   metric.MeasurementOption
	entryCount    metric.Int64UpDownCounter
	insertCount   metric.Int64Counter
	eraseCount    metric.Int64Counter
	rotationCount metric.Int64Counter
}

func (stats *mapStats) RecordEntryCount(delta int64) {
	if stats == nil || delta == 0 {
		return
	}
	stats.entryCount.Add(context.Background(), delta, stats.policyAttrs)
}

func (stats *mapStats) IncreaseInsertCount() {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1, stats.policyAttrs)
	stats.entryCount.Add(context.Background(), 1, stats.policyAttrs)
}

func (stats *mapStats) IncreaseEraseCount() {
	if stats == nil {
		return
	}
	stats.eraseCount.Add(context.Background(), 1, stats.policyAttrs)
	stats.entryCount.Add(context.Background(), -1, stats.policyAttrs)
}

func (stats *mapStats) IncreaseRotationCount() {
	if stats == nil {
		return
	}
	stats.rotationCount.Add(context.Background(), 1, stats.policyAttrs)
}

func newMapStats(name string, policy Policy) *mapStats {
	if len(strings.TrimSpace(name)) <= 0 {
		name = "default"
	}
	meter := otel.Meter(fmt.Sprintf("%s/%s", MapStatsName, name))
	as := attribute.NewSet(
		attribute.String("xtree.policy", policy.String()),
	)
	return &mapStats{
		policyAttrs: metric.WithAttributeSet(as),
		entryCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"xtree.entry.count",
			metric.WithDescription("The number of entries in the ordered map."),
		)),
		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.insert.count",
			metric.WithDescription("The number of new entries inserted into the ordered map."),
		)),
		eraseCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.erase.count",
			metric.WithDescription("The number of entries erased from the ordered map."),
		)),
		rotationCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.rotation.count",
			metric.WithDescription("The number of single rotations done by the rebalancing."),
		)),
	}
}
