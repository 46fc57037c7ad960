package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/careflowhq/frontdesk/internal/model"
	"github.com/careflowhq/frontdesk/internal/repository"
	apperrors "github.com/careflowhq/frontdesk/pkg/errors"
)

// Service is the department and practitioner registry. It is read-only on
// the request path; Reload is an administrative operation that swaps the
// whole table atomically so in-flight readers never see a partial view.
type Service struct {
	mu            sync.RWMutex
	departments   map[string]model.Department
	order         []string
	practitioners map[uuid.UUID]model.Practitioner
}

func NewService(departments []model.Department, practitioners []model.Practitioner) (*Service, error) {
	s := &Service{}
	if err := s.load(departments, practitioners); err != nil {
		return nil, err
	}
	return s, nil
}

// NewServiceFromRepository loads the registry tables from storage.
func NewServiceFromRepository(ctx context.Context, repo repository.RegistryRepository) (*Service, error) {
	departments, err := repo.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}
	practitioners, err := repo.ListPractitioners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load practitioners: %w", err)
	}
	return NewService(departments, practitioners)
}

func (s *Service) load(departments []model.Department, practitioners []model.Practitioner) error {
	byID := make(map[string]model.Department, len(departments))
	order := make([]string, 0, len(departments))
	for _, d := range departments {
		if d.ID == "" {
			return fmt.Errorf("department with empty id")
		}
		if d.MaxCapacity <= 0 {
			return fmt.Errorf("department %s: max capacity must be positive, got %d", d.ID, d.MaxCapacity)
		}
		if _, exists := byID[d.ID]; exists {
			return fmt.Errorf("duplicate department id: %s", d.ID)
		}
		byID[d.ID] = d
		order = append(order, d.ID)
	}

	byPractitioner := make(map[uuid.UUID]model.Practitioner, len(practitioners))
	for _, p := range practitioners {
		if _, ok := byID[p.DepartmentID]; !ok {
			return fmt.Errorf("practitioner %s references unknown department %s", p.ID, p.DepartmentID)
		}
		byPractitioner[p.ID] = p
	}

	s.mu.Lock()
	s.departments = byID
	s.order = order
	s.practitioners = byPractitioner
	s.mu.Unlock()
	return nil
}

// Reload replaces the registry contents. Callers must not hold stats
// computed against the old capacities across a reload.
func (s *Service) Reload(departments []model.Department, practitioners []model.Practitioner) error {
	return s.load(departments, practitioners)
}

func (s *Service) Lookup(id string) (model.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.departments[id]
	if !ok {
		return model.Department{}, apperrors.UnknownDepartment(id)
	}
	return d, nil
}

// List returns departments in insertion order.
func (s *Service) List() []model.Department {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Department, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.departments[id])
	}
	return out
}

func (s *Service) LookupPractitioner(id uuid.UUID) (model.Practitioner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.practitioners[id]
	if !ok {
		return model.Practitioner{}, apperrors.NotFound("practitioner")
	}
	return p, nil
}

// Practitioners returns all registered practitioners, grouped by nothing
// in particular; callers filter by department as needed.
func (s *Service) Practitioners() []model.Practitioner {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Practitioner, 0, len(s.practitioners))
	for _, p := range s.practitioners {
		out = append(out, p)
	}
	return out
}
