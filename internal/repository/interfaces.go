package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careflowhq/frontdesk/internal/model"
)

// RegistryRepository loads the static department and practitioner tables.
// The registry reads them once at startup and on administrative reloads.
type RegistryRepository interface {
	ListDepartments(ctx context.Context) ([]model.Department, error)
	ListPractitioners(ctx context.Context) ([]model.Practitioner, error)
}

// VisitRepository persists queue-visible patient visits.
type VisitRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.VisitStatus) error
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	Archive(ctx context.Context, id uuid.UUID) error
}

// BookingStore is the allocator's persistence collaborator. Commit must
// enforce the (practitioner_id, date, time_slot) uniqueness invariant and
// surface a violation as pkg/errors.SlotAlreadyBooked.
type BookingStore interface {
	Find(ctx context.Context, practitionerID uuid.UUID, date time.Time, slot string) (*model.Booking, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	Commit(ctx context.Context, booking *model.Booking) error
	Cancel(ctx context.Context, id uuid.UUID, reason string) error
	ListForPractitioner(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]*model.Booking, error)
}
