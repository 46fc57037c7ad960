package queuestats

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careflowhq/frontdesk/internal/feed"
	"github.com/careflowhq/frontdesk/internal/model"
	"github.com/careflowhq/frontdesk/internal/service/registry"
	apperrors "github.com/careflowhq/frontdesk/pkg/errors"
	"github.com/careflowhq/frontdesk/pkg/metrics"
)

func TestComputeStats(t *testing.T) {
	cardiology := model.Department{ID: "cardiology", Name: "Cardiology", MaxCapacity: 8}

	tests := []struct {
		name      string
		occupancy int
		wantPct   int
		wantBand  model.OccupancyBand
		wantOver  bool
	}{
		{"empty", 0, 0, model.BandLow, false},
		{"below moderate", 3, 38, model.BandLow, false},
		{"reference scenario", 5, 63, model.BandModerate, false},
		{"high", 7, 88, model.BandHigh, false},
		{"full", 8, 100, model.BandHigh, false},
		{"over capacity clamps but flags", 11, 100, model.BandHigh, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := model.QueueSnapshot{
				DepartmentID:       "cardiology",
				CurrentOccupancy:   tt.occupancy,
				AverageWaitMinutes: 15,
				Trend:              model.TrendStable,
			}

			stats, err := ComputeStats(snapshot, cardiology)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPct, stats.OccupancyPct)
			assert.Equal(t, tt.wantBand, stats.Band)
			assert.Equal(t, tt.wantOver, stats.OverCapacity)
		})
	}
}

func TestComputeStatsDeterministic(t *testing.T) {
	dept := model.Department{ID: "pediatrics", Name: "Pediatrics", MaxCapacity: 10}
	snapshot := model.QueueSnapshot{
		DepartmentID:       "pediatrics",
		CurrentOccupancy:   4,
		AverageWaitMinutes: 10,
		Trend:              model.TrendDecreasing,
	}

	first, err := ComputeStats(snapshot, dept)
	require.NoError(t, err)
	second, err := ComputeStats(snapshot, dept)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeStatsDepartmentMismatch(t *testing.T) {
	dept := model.Department{ID: "cardiology", Name: "Cardiology", MaxCapacity: 8}
	snapshot := model.QueueSnapshot{DepartmentID: "orthopedics", CurrentOccupancy: 2}

	_, err := ComputeStats(snapshot, dept)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownDepartment))
}

func TestBandThresholds(t *testing.T) {
	assert.Equal(t, model.BandLow, Band(0))
	assert.Equal(t, model.BandLow, Band(49))
	assert.Equal(t, model.BandModerate, Band(50))
	assert.Equal(t, model.BandModerate, Band(79))
	assert.Equal(t, model.BandHigh, Band(80))
	assert.Equal(t, model.BandHigh, Band(100))
}

func TestFormatWait(t *testing.T) {
	assert.Equal(t, "0 mins", FormatWait(0))
	assert.Equal(t, "59 mins", FormatWait(59))
	assert.Equal(t, "1h 0m", FormatWait(60))
	assert.Equal(t, "2h 5m", FormatWait(125))
}

func TestTrendGlyph(t *testing.T) {
	assert.Equal(t, "↑", TrendGlyph(model.TrendIncreasing))
	assert.Equal(t, "↓", TrendGlyph(model.TrendDecreasing))
	assert.Equal(t, "→", TrendGlyph(model.TrendStable))
}

func TestConfirmTrend(t *testing.T) {
	rising := []model.QueueSnapshot{
		{CurrentOccupancy: 3},
		{CurrentOccupancy: 5},
	}
	falling := []model.QueueSnapshot{
		{CurrentOccupancy: 5},
		{CurrentOccupancy: 3},
	}

	assert.Equal(t, model.TrendIncreasing, ConfirmTrend(rising, model.TrendIncreasing))
	assert.Equal(t, model.TrendStable, ConfirmTrend(falling, model.TrendIncreasing))
	assert.Equal(t, model.TrendDecreasing, ConfirmTrend(falling, model.TrendDecreasing))
	assert.Equal(t, model.TrendStable, ConfirmTrend(rising, model.TrendDecreasing))

	// Too little history to confirm anything.
	assert.Equal(t, model.TrendIncreasing, ConfirmTrend(rising[:1], model.TrendIncreasing))
	assert.Equal(t, model.TrendStable, ConfirmTrend(nil, model.TrendStable))
}

type stubFeed struct {
	snapshots map[string]model.QueueSnapshot
	err       error
	calls     int
}

func (f *stubFeed) Fetch(_ context.Context, departmentID string) (model.QueueSnapshot, error) {
	f.calls++
	if f.err != nil {
		return model.QueueSnapshot{}, f.err
	}
	return f.snapshots[departmentID], nil
}

func newTestRegistry(t *testing.T) *registry.Service {
	t.Helper()
	reg, err := registry.NewService([]model.Department{
		{ID: "cardiology", Name: "Cardiology", MaxCapacity: 8},
		{ID: "pediatrics", Name: "Pediatrics", MaxCapacity: 10},
	}, nil)
	require.NoError(t, err)
	return reg
}

func TestDepartmentStats(t *testing.T) {
	reg := newTestRegistry(t)
	upstream := &stubFeed{snapshots: map[string]model.QueueSnapshot{
		"cardiology": {
			DepartmentID:       "cardiology",
			CurrentOccupancy:   5,
			AverageWaitMinutes: 15,
			Trend:              model.TrendStable,
		},
	}}
	svc := NewService(reg, feed.NewCachedFeed(upstream, feed.HistoryConfig{}), nil)

	stats, err := svc.DepartmentStats(context.Background(), "cardiology")
	require.NoError(t, err)
	assert.Equal(t, 63, stats.OccupancyPct)
	assert.Equal(t, model.BandModerate, stats.Band)
	assert.Equal(t, "15 mins", stats.FormattedWait)

	_, err = svc.DepartmentStats(context.Background(), "radiology")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownDepartment))
}

func TestDepartmentStatsCountsFetchErrors(t *testing.T) {
	reg := newTestRegistry(t)
	upstream := &stubFeed{err: errors.New("feed down")}
	m := metrics.NewMetrics("frontdesk", "queuestats_test")
	svc := NewService(reg, feed.NewCachedFeed(upstream, feed.HistoryConfig{}), m)

	_, err := svc.DepartmentStats(context.Background(), "cardiology")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotFetchError))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotFetches.WithLabelValues("cardiology", "error")))
}

func TestOverviewSkipsUnavailableDepartments(t *testing.T) {
	reg := newTestRegistry(t)
	upstream := &stubFeed{snapshots: map[string]model.QueueSnapshot{
		"cardiology": {DepartmentID: "cardiology", CurrentOccupancy: 2, Trend: model.TrendStable},
		// pediatrics snapshot carries the wrong department id, so its
		// stats computation fails and it is skipped.
		"pediatrics": {DepartmentID: "unknown", CurrentOccupancy: 1, Trend: model.TrendStable},
	}}
	svc := NewService(reg, feed.NewCachedFeed(upstream, feed.HistoryConfig{}), nil)

	stats, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "cardiology", stats[0].DepartmentID)
}
