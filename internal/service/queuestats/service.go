package queuestats

import (
	"context"
	"fmt"
	"math"

	"github.com/careflowhq/frontdesk/internal/feed"
	"github.com/careflowhq/frontdesk/internal/model"
	"github.com/careflowhq/frontdesk/internal/service/registry"
	apperrors "github.com/careflowhq/frontdesk/pkg/errors"
	"github.com/careflowhq/frontdesk/pkg/metrics"
)

// Occupancy band thresholds are fixed contract values, not per-department
// configuration.
const (
	moderateThreshold = 50
	highThreshold     = 80
)

// ComputeStats derives display-ready statistics from a snapshot. It is
// pure: same snapshot and department always yield the same result, and the
// only failure mode is a snapshot referencing the wrong department.
func ComputeStats(snapshot model.QueueSnapshot, department model.Department) (model.QueueStats, error) {
	if snapshot.DepartmentID != department.ID {
		return model.QueueStats{}, apperrors.UnknownDepartment(snapshot.DepartmentID)
	}

	pct := int(math.Round(float64(snapshot.CurrentOccupancy) * 100 / float64(department.MaxCapacity)))
	over := snapshot.CurrentOccupancy > department.MaxCapacity
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}

	return model.QueueStats{
		DepartmentID:  department.ID,
		Department:    department.Name,
		Occupancy:     snapshot.CurrentOccupancy,
		MaxCapacity:   department.MaxCapacity,
		OccupancyPct:  pct,
		OverCapacity:  over,
		Band:          Band(pct),
		WaitMinutes:   snapshot.AverageWaitMinutes,
		FormattedWait: FormatWait(snapshot.AverageWaitMinutes),
		Trend:         snapshot.Trend,
		TrendGlyph:    TrendGlyph(snapshot.Trend),
	}, nil
}

// Band classifies an occupancy percentage.
func Band(pct int) model.OccupancyBand {
	switch {
	case pct < moderateThreshold:
		return model.BandLow
	case pct < highThreshold:
		return model.BandModerate
	default:
		return model.BandHigh
	}
}

// FormatWait renders minutes as "<m> mins" below an hour and "<h>h <m>m"
// from 60 up, so 60 renders as "1h 0m".
func FormatWait(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d mins", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// TrendGlyph maps a trend direction to its display glyph.
func TrendGlyph(trend model.TrendDirection) string {
	switch trend {
	case model.TrendIncreasing:
		return "↑"
	case model.TrendDecreasing:
		return "↓"
	default:
		return "→"
	}
}

// ConfirmTrend downgrades a reported trend to stable unless the recent
// occupancy samples move in the reported direction.
func ConfirmTrend(history []model.QueueSnapshot, reported model.TrendDirection) model.TrendDirection {
	if reported == model.TrendStable || len(history) < 2 {
		return reported
	}

	last := history[len(history)-1].CurrentOccupancy
	prev := history[len(history)-2].CurrentOccupancy

	switch reported {
	case model.TrendIncreasing:
		if last > prev {
			return reported
		}
	case model.TrendDecreasing:
		if last < prev {
			return reported
		}
	}
	return model.TrendStable
}

// Service glues the pure computations to the registry and the injected
// snapshot feed for the front-desk dashboard.
type Service struct {
	registry *registry.Service
	feed     *feed.CachedFeed
	metrics  *metrics.Metrics
}

func NewService(reg *registry.Service, cachedFeed *feed.CachedFeed, m *metrics.Metrics) *Service {
	return &Service{
		registry: reg,
		feed:     cachedFeed,
		metrics:  m,
	}
}

// DepartmentStats fetches the latest snapshot for a department and derives
// its stats. Unknown departments fail before the feed is consulted.
func (s *Service) DepartmentStats(ctx context.Context, departmentID string) (model.QueueStats, error) {
	department, err := s.registry.Lookup(departmentID)
	if err != nil {
		return model.QueueStats{}, err
	}

	snapshot, err := s.feed.Fetch(ctx, departmentID)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SnapshotFetches.WithLabelValues(departmentID, "error").Inc()
			s.metrics.SnapshotFetchError.Inc()
		}
		return model.QueueStats{}, err
	}
	if s.metrics != nil {
		s.metrics.SnapshotFetches.WithLabelValues(departmentID, "ok").Inc()
	}

	snapshot.Trend = ConfirmTrend(s.feed.History(departmentID), snapshot.Trend)

	stats, err := ComputeStats(snapshot, department)
	if err != nil {
		return model.QueueStats{}, err
	}

	s.export(stats)
	return stats, nil
}

// Overview derives stats for every registered department. A department
// whose feed is unavailable is skipped; the caller still gets the rest.
func (s *Service) Overview(ctx context.Context) ([]model.QueueStats, error) {
	departments := s.registry.List()
	out := make([]model.QueueStats, 0, len(departments))

	for _, department := range departments {
		stats, err := s.DepartmentStats(ctx, department.ID)
		if err != nil {
			continue
		}
		out = append(out, stats)
	}
	return out, nil
}

func (s *Service) export(stats model.QueueStats) {
	if s.metrics == nil {
		return
	}
	s.metrics.QueueOccupancy.WithLabelValues(stats.DepartmentID).Set(float64(stats.Occupancy))
	s.metrics.QueueOccupancyPct.WithLabelValues(stats.DepartmentID).Set(float64(stats.OccupancyPct))
	s.metrics.QueueWaitMinutes.WithLabelValues(stats.DepartmentID).Set(float64(stats.WaitMinutes))
	over := 0.0
	if stats.OverCapacity {
		over = 1.0
	}
	s.metrics.QueueOverCapacity.WithLabelValues(stats.DepartmentID).Set(over)
}
