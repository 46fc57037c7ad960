package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/careflowhq/frontdesk/internal/model"
	"github.com/careflowhq/frontdesk/internal/repository"
	apperrors "github.com/careflowhq/frontdesk/pkg/errors"
)

// uniqueViolation is the postgres error code raised by the partial unique
// index on (practitioner_id, date, time_slot) WHERE status = 'confirmed'.
const uniqueViolation = "23505"

type bookingStore struct {
	db *sqlx.DB
}

func NewBookingStore(db *sqlx.DB) repository.BookingStore {
	return &bookingStore{db: db}
}

func (s *bookingStore) Find(ctx context.Context, practitionerID uuid.UUID, date time.Time, slot string) (*model.Booking, error) {
	query := `
		SELECT id, patient_id, practitioner_id, department_id, date, time_slot,
			   reason, status, idempotency_key, cancel_reason, replaces_id,
			   created_at, updated_at
		FROM bookings
		WHERE practitioner_id = $1
		AND date = $2
		AND time_slot = $3
		AND status = 'confirmed'
	`
	var booking model.Booking
	err := s.db.GetContext(ctx, &booking, query, practitionerID, date, slot)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to find booking: %w", err))
	}
	return &booking, nil
}

func (s *bookingStore) FindByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error) {
	query := `
		SELECT id, patient_id, practitioner_id, department_id, date, time_slot,
			   reason, status, idempotency_key, cancel_reason, replaces_id,
			   created_at, updated_at
		FROM bookings
		WHERE idempotency_key = $1
	`
	var booking model.Booking
	err := s.db.GetContext(ctx, &booking, query, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to find booking by idempotency key: %w", err))
	}
	return &booking, nil
}

func (s *bookingStore) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `
		SELECT id, patient_id, practitioner_id, department_id, date, time_slot,
			   reason, status, idempotency_key, cancel_reason, replaces_id,
			   created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	var booking model.Booking
	err := s.db.GetContext(ctx, &booking, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("booking")
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to get booking: %w", err))
	}
	return &booking, nil
}

func (s *bookingStore) Commit(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, patient_id, practitioner_id, department_id, date, time_slot,
			reason, status, idempotency_key, replaces_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, query,
		booking.ID,
		booking.PatientID,
		booking.PractitionerID,
		booking.DepartmentID,
		booking.Date,
		booking.TimeSlot,
		booking.Reason,
		booking.Status,
		booking.IdempotencyKey,
		booking.ReplacesID,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return apperrors.SlotAlreadyBooked()
		}
		return apperrors.Storage(fmt.Errorf("failed to commit booking: %w", err))
	}
	return nil
}

func (s *bookingStore) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE bookings
		SET status = 'cancelled', cancel_reason = $1, updated_at = $2
		WHERE id = $3 AND status = 'confirmed'
	`
	result, err := s.db.ExecContext(ctx, query, reason, time.Now(), id)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("failed to cancel booking: %w", err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Storage(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperrors.NotFound("booking")
	}
	return nil
}

func (s *bookingStore) ListForPractitioner(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]*model.Booking, error) {
	query := `
		SELECT id, patient_id, practitioner_id, department_id, date, time_slot,
			   reason, status, idempotency_key, cancel_reason, replaces_id,
			   created_at, updated_at
		FROM bookings
		WHERE practitioner_id = $1
		AND date = $2
		AND status = 'confirmed'
		ORDER BY time_slot ASC
	`
	var bookings []*model.Booking
	if err := s.db.SelectContext(ctx, &bookings, query, practitionerID, date); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to list bookings: %w", err))
	}
	return bookings, nil
}
