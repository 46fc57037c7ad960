package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/careflowhq/frontdesk/internal/model"
	"github.com/careflowhq/frontdesk/internal/repository"
	apperrors "github.com/careflowhq/frontdesk/pkg/errors"
)

type visitRepository struct {
	db *sqlx.DB
}

func NewVisitRepository(db *sqlx.DB) repository.VisitRepository {
	return &visitRepository{db: db}
}

func (r *visitRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO visits (
			id, name, age, department_id, appointment_time,
			status, wait_minutes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.Age,
		patient.DepartmentID,
		patient.AppointmentTime,
		patient.Status,
		patient.WaitMinutes,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

func (r *visitRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, name, age, department_id, appointment_time,
			   status, wait_minutes, archived_at, created_at, updated_at
		FROM visits
		WHERE id = $1
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("patient")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return &patient, nil
}

func (r *visitRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.VisitStatus) error {
	query := `
		UPDATE visits
		SET status = $1, updated_at = $2
		WHERE id = $3 AND archived_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update visit status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient")
	}
	return nil
}

func (r *visitRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `
		SELECT id, name, age, department_id, appointment_time,
			   status, wait_minutes, archived_at, created_at, updated_at
		FROM visits
		WHERE archived_at IS NULL
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil && filters.DepartmentID != "" {
		query += fmt.Sprintf(" AND department_id = $%d", argCount)
		args = append(args, filters.DepartmentID)
		argCount++
	}

	if filters != nil && filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	query += " ORDER BY appointment_time ASC"

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return patients, nil
}

func (r *visitRepository) Archive(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE visits
		SET archived_at = $1, updated_at = $1
		WHERE id = $2 AND archived_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to archive visit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient")
	}
	return nil
}
