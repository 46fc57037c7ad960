package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/careflowhq/frontdesk/internal/model"
	"github.com/careflowhq/frontdesk/internal/repository"
)

type registryRepository struct {
	db *sqlx.DB
}

func NewRegistryRepository(db *sqlx.DB) repository.RegistryRepository {
	return &registryRepository{db: db}
}

// ListDepartments returns departments in configuration order. position is
// the insertion order the registry's List contract requires.
func (r *registryRepository) ListDepartments(ctx context.Context) ([]model.Department, error) {
	query := `
		SELECT id, name, max_capacity
		FROM departments
		ORDER BY position ASC
	`
	var departments []model.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

func (r *registryRepository) ListPractitioners(ctx context.Context) ([]model.Practitioner, error) {
	query := `
		SELECT id, name, specialty, department_id
		FROM practitioners
		ORDER BY name ASC
	`
	var practitioners []model.Practitioner
	if err := r.db.SelectContext(ctx, &practitioners, query); err != nil {
		return nil, fmt.Errorf("failed to list practitioners: %w", err)
	}
	return practitioners, nil
}
