package visit

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/careflowhq/frontdesk/internal/model"
	"github.com/careflowhq/frontdesk/internal/repository"
	"github.com/careflowhq/frontdesk/internal/service/registry"
	apperrors "github.com/careflowhq/frontdesk/pkg/errors"
	"github.com/careflowhq/frontdesk/pkg/logger"
	"github.com/careflowhq/frontdesk/pkg/metrics"
	"github.com/careflowhq/frontdesk/pkg/validator"
)

// advanceMap is the single generic operator action: it cycles a visit
// through the normal flow. No-show is deliberately absent; it is an
// exceptional outcome reachable only through the explicit command.
var advanceMap = map[model.VisitStatus]model.VisitStatus{
	model.VisitStatusWaiting:    model.VisitStatusInProgress,
	model.VisitStatusInProgress: model.VisitStatusCompleted,
	model.VisitStatusCompleted:  model.VisitStatusWaiting,
}

// noShowFrom lists the states an explicit no-show action may leave from.
var noShowFrom = map[model.VisitStatus]bool{
	model.VisitStatusWaiting:    true,
	model.VisitStatusInProgress: true,
}

// Service owns the per-patient visit state machine. Transitions on a
// single patient are serialized; a second concurrent transition for the
// same patient fails with Conflict rather than being queued or reordered.
type Service struct {
	repo      repository.VisitRepository
	registry  *registry.Service
	validator validator.Validator
	logger    *logger.Logger
	metrics   *metrics.Metrics
	locks     sync.Map // patient id -> *sync.Mutex
}

func NewService(repo repository.VisitRepository, reg *registry.Service, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:      repo,
		registry:  reg,
		validator: validator.New(),
		logger:    log,
		metrics:   m,
	}
}

// CheckIn creates the queue-visible visit record in the waiting state.
func (s *Service) CheckIn(ctx context.Context, req *model.CheckInRequest) (*model.Patient, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.IncompleteRequest(err.Error())
	}
	if _, err := s.registry.Lookup(req.DepartmentID); err != nil {
		return nil, err
	}

	patient := &model.Patient{
		Name:            req.Name,
		Age:             req.Age,
		DepartmentID:    req.DepartmentID,
		AppointmentTime: req.AppointmentTime,
		Status:          model.VisitStatusWaiting,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to check in patient: %w", err)
	}

	s.logger.Info("patient checked in", "patient_id", patient.ID, "department", patient.DepartmentID)
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// Advance applies the generic operator action: waiting → in-progress →
// completed → waiting. Advancing a no-show visit is an invalid transition.
func (s *Service) Advance(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.transition(ctx, id, func(current model.VisitStatus) (model.VisitStatus, error) {
		next, ok := advanceMap[current]
		if !ok {
			return "", apperrors.InvalidTransition(string(current), "advance")
		}
		return next, nil
	})
}

// MarkNoShow applies the explicit no-show command. It is never triggered
// by Advance and is rejected once the visit has completed or already been
// marked a no-show.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.transition(ctx, id, func(current model.VisitStatus) (model.VisitStatus, error) {
		if !noShowFrom[current] {
			return "", apperrors.InvalidTransition(string(current), string(model.VisitStatusNoShow))
		}
		return model.VisitStatusNoShow, nil
	})
}

// Archive closes out a terminal visit once the persistence collaborator
// has acknowledged it.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !patient.Status.Terminal() {
		return apperrors.InvalidTransition(string(patient.Status), "archived")
	}
	if err := s.repo.Archive(ctx, id); err != nil {
		return err
	}

	// The visit is gone; drop its lock so the table tracks live patients.
	// A straggling transition gets a fresh mutex and fails on the Get.
	s.locks.Delete(id)
	return nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, decide func(model.VisitStatus) (model.VisitStatus, error)) (*model.Patient, error) {
	mu := s.lockFor(id)
	if !mu.TryLock() {
		if s.metrics != nil {
			s.metrics.VisitConflicts.Inc()
		}
		return nil, apperrors.Conflict(fmt.Sprintf("transition already in flight for patient %s", id))
	}
	defer mu.Unlock()

	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := decide(patient.Status)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("failed to apply transition: %w", err)
	}

	if s.metrics != nil {
		s.metrics.VisitTransitions.WithLabelValues(string(patient.Status), string(next)).Inc()
	}
	s.logger.Info("visit transition", "patient_id", id, "from", patient.Status, "to", next)

	patient.Status = next
	return patient, nil
}

func (s *Service) lockFor(id uuid.UUID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
