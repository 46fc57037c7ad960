package model

import "time"

type VisitStatus string

const (
	VisitStatusWaiting    VisitStatus = "waiting"
	VisitStatusInProgress VisitStatus = "in-progress"
	VisitStatusCompleted  VisitStatus = "completed"
	VisitStatusNoShow     VisitStatus = "no-show"
)

// Terminal reports whether the status closes out the visit for wait-time
// accounting. Terminal visits no longer contribute to occupancy.
func (s VisitStatus) Terminal() bool {
	return s == VisitStatusCompleted || s == VisitStatusNoShow
}

// Patient is the queue-visible visit entity, owned by the visit service
// for the duration of the visit.
type Patient struct {
	Base
	Name            string      `db:"name" json:"name"`
	Age             int         `db:"age" json:"age"`
	DepartmentID    string      `db:"department_id" json:"department_id"`
	AppointmentTime string      `db:"appointment_time" json:"appointment_time"`
	Status          VisitStatus `db:"status" json:"status"`
	WaitMinutes     *int        `db:"wait_minutes" json:"wait_minutes,omitempty"`
	ArchivedAt      *time.Time  `db:"archived_at" json:"archived_at,omitempty"`
}

type CheckInRequest struct {
	Name            string `json:"name" binding:"required" validate:"required"`
	Age             int    `json:"age" binding:"required,gt=0" validate:"required,gt=0"`
	DepartmentID    string `json:"department_id" binding:"required" validate:"required"`
	AppointmentTime string `json:"appointment_time" binding:"required" validate:"required"`
}

type PatientFilters struct {
	DepartmentID string
	Status       VisitStatus
}
