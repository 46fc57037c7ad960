package model

import "time"

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

type OccupancyBand string

const (
	BandLow      OccupancyBand = "low"
	BandModerate OccupancyBand = "moderate"
	BandHigh     OccupancyBand = "high"
)

// QueueSnapshot is a single observation of a department queue produced by
// the external telemetry feed. Occupancy may exceed the department's
// capacity; that is meaningful over-capacity, not an error.
type QueueSnapshot struct {
	DepartmentID       string         `json:"department_id"`
	CurrentOccupancy   int            `json:"current_occupancy"`
	AverageWaitMinutes int            `json:"average_wait_minutes"`
	Trend              TrendDirection `json:"trend"`
	ObservedAt         time.Time      `json:"observed_at"`
}

// QueueStats is the display-ready derivation of a snapshot.
type QueueStats struct {
	DepartmentID  string         `json:"department_id"`
	Department    string         `json:"department"`
	Occupancy     int            `json:"occupancy"`
	MaxCapacity   int            `json:"max_capacity"`
	OccupancyPct  int            `json:"occupancy_percent"`
	OverCapacity  bool           `json:"over_capacity"`
	Band          OccupancyBand  `json:"band"`
	WaitMinutes   int            `json:"wait_minutes"`
	FormattedWait string         `json:"formatted_wait"`
	Trend         TrendDirection `json:"trend"`
	TrendGlyph    string         `json:"trend_glyph"`
}
