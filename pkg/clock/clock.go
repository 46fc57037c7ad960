package clock

import "time"

// Clock supplies the current calendar day. Date eligibility checks go
// through this interface instead of time.Now so they stay testable.
type Clock interface {
	Today() time.Time
	Now() time.Time
}

type systemClock struct{}

// New returns a Clock backed by the system time.
func New() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Today returns the current day truncated to midnight in local time.
func (systemClock) Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
