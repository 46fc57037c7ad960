package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// TimeSlots is the fixed enumerated set of bookable slots. The front desk
// offers half-hour slots through the morning and afternoon with the noon
// block held for walk-ins.
var TimeSlots = []string{
	"9:00 AM", "9:30 AM", "10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM",
	"1:00 PM", "1:30 PM", "2:00 PM", "2:30 PM", "3:00 PM", "3:30 PM", "4:00 PM",
}

// ValidTimeSlot reports whether slot belongs to the enumerated slot set.
func ValidTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Booking is a committed, conflict-free reservation of a practitioner,
// date and slot. At most one confirmed booking exists per
// (practitioner_id, date, time_slot) tuple. Cancel and reschedule replace
// bookings rather than mutate them, preserving the audit trail.
type Booking struct {
	Base
	PatientID      uuid.UUID     `db:"patient_id" json:"patient_id"`
	PractitionerID uuid.UUID     `db:"practitioner_id" json:"practitioner_id"`
	DepartmentID   string        `db:"department_id" json:"department_id"`
	Date           time.Time     `db:"date" json:"date"`
	TimeSlot       string        `db:"time_slot" json:"time_slot"`
	Reason         string        `db:"reason" json:"reason"`
	Status         BookingStatus `db:"status" json:"status"`
	IdempotencyKey *string       `db:"idempotency_key" json:"-"`
	CancelReason   *string       `db:"cancel_reason" json:"cancel_reason,omitempty"`
	ReplacesID     *uuid.UUID    `db:"replaces_id" json:"replaces_id,omitempty"`
}

// AllocationRequest is transient: constructed by the caller, validated,
// and either committed into a Booking or rejected and discarded.
type AllocationRequest struct {
	PatientID      uuid.UUID  `json:"patient_id" binding:"required"`
	PractitionerID uuid.UUID  `json:"practitioner_id"`
	Date           *time.Time `json:"date"`
	TimeSlot       string     `json:"time_slot"`
	Reason         string     `json:"reason"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
	NotifyEmail    string     `json:"notify_email,omitempty" binding:"omitempty,email"`
}

type RescheduleRequest struct {
	Date     *time.Time `json:"date"`
	TimeSlot string     `json:"time_slot"`
}
