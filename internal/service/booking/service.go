package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careflowhq/frontdesk/internal/model"
	"github.com/careflowhq/frontdesk/internal/repository"
	"github.com/careflowhq/frontdesk/internal/service/notification"
	"github.com/careflowhq/frontdesk/internal/service/registry"
	"github.com/careflowhq/frontdesk/pkg/clock"
	apperrors "github.com/careflowhq/frontdesk/pkg/errors"
	"github.com/careflowhq/frontdesk/pkg/logger"
	"github.com/careflowhq/frontdesk/pkg/messaging"
	"github.com/careflowhq/frontdesk/pkg/metrics"
)

// Service allocates appointment bookings. Validation is ordered from
// cheapest to most specific so callers get the most actionable rejection
// first and malformed requests never reach the conflict lookup.
type Service struct {
	store    repository.BookingStore
	registry *registry.Service
	clock    clock.Clock
	notifier notification.Notifier
	broker   messaging.Broker
	logger   *logger.Logger
	metrics  *metrics.Metrics

	// slotLocks serializes check-then-commit per (practitioner, date,
	// slot) key. The store's unique index backstops the same invariant.
	slotLocks sync.Map
}

func NewService(
	store repository.BookingStore,
	reg *registry.Service,
	clk clock.Clock,
	notifier notification.Notifier,
	broker messaging.Broker,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		store:    store,
		registry: reg,
		clock:    clk,
		notifier: notifier,
		broker:   broker,
		logger:   log,
		metrics:  m,
	}
}

// Allocate validates and commits a scheduling request. Steps short-circuit
// in order: completeness, date eligibility, slot validity, conflict,
// commit. Once the commit begins it runs to completion.
func (s *Service) Allocate(ctx context.Context, req *model.AllocationRequest) (*model.Booking, error) {
	if err := s.checkComplete(req); err != nil {
		return nil, s.reject(err)
	}

	date := dateOnly(*req.Date)
	if err := s.checkDate(date); err != nil {
		return nil, s.reject(err)
	}

	if !model.ValidTimeSlot(req.TimeSlot) {
		return nil, s.reject(apperrors.InvalidSlot(req.TimeSlot))
	}

	practitioner, err := s.registry.LookupPractitioner(req.PractitionerID)
	if err != nil {
		return nil, s.reject(apperrors.IncompleteRequest("unknown practitioner"))
	}

	booking := &model.Booking{
		Base: model.Base{
			ID: uuid.New(),
		},
		PatientID:      req.PatientID,
		PractitionerID: practitioner.ID,
		DepartmentID:   practitioner.DepartmentID,
		Date:           date,
		TimeSlot:       req.TimeSlot,
		Reason:         strings.TrimSpace(req.Reason),
		Status:         model.BookingStatusConfirmed,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		booking.IdempotencyKey = &key
	}

	committed, err := s.commit(ctx, booking)
	if err != nil {
		return nil, err
	}
	if committed.ID != booking.ID {
		// Idempotent replay: the key was already committed, possibly by a
		// concurrent retry. Metrics and notifications ran the first time.
		return committed, nil
	}

	if s.metrics != nil {
		s.metrics.BookingsAllocated.Inc()
	}
	s.logger.Info("booking allocated",
		"booking_id", booking.ID,
		"practitioner_id", booking.PractitionerID,
		"date", booking.Date.Format("2006-01-02"),
		"slot", booking.TimeSlot,
	)

	s.notify(req.NotifyEmail, booking, messaging.ChannelBookingCreated)
	return booking, nil
}

// commit is the one critical section: the idempotency lookup, the
// conflict check and the store commit execute under the slot key's lock.
// It returns the booking that ended up committed, which for a retried
// idempotency key is the original rather than the argument.
func (s *Service) commit(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	key := slotKey(booking.PractitionerID, booking.Date, booking.TimeSlot)
	mu := s.lockFor(key)
	mu.Lock()
	defer func() {
		// The entry is evicted so the lock table stays bounded by in-flight
		// commits. The store's unique index covers the window where a fresh
		// lock for the same key coexists with this one.
		s.slotLocks.Delete(key)
		mu.Unlock()
	}()

	if booking.IdempotencyKey != nil {
		existing, err := s.store.FindByIdempotencyKey(ctx, *booking.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	existing, err := s.store.Find(ctx, booking.PractitionerID, booking.Date, booking.TimeSlot)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, s.reject(apperrors.SlotAlreadyBooked())
	}

	if err := s.store.Commit(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.store.Get(ctx, id)
}

// Cancel invalidates a booking, freeing its slot. The booking row is kept
// for the audit trail.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Booking, error) {
	booking, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingStatusCancelled {
		return nil, apperrors.Conflict("booking is already cancelled")
	}

	if err := s.store.Cancel(ctx, id, reason); err != nil {
		return nil, err
	}

	booking.Status = model.BookingStatusCancelled
	booking.CancelReason = &reason

	if s.metrics != nil {
		s.metrics.BookingsCancelled.Inc()
	}
	s.logger.Info("booking cancelled", "booking_id", id, "reason", reason)
	s.publish(messaging.ChannelBookingCancelled, booking)
	return booking, nil
}

// Reschedule replaces a booking rather than mutating it: the new booking
// commits first, then the old one is cancelled, so the trail records both.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleRequest) (*model.Booking, error) {
	old, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if old.Status == model.BookingStatusCancelled {
		return nil, apperrors.Conflict("cannot reschedule a cancelled booking")
	}

	if req.Date == nil || req.TimeSlot == "" {
		return nil, s.reject(apperrors.IncompleteRequest("date and time slot are required"))
	}

	date := dateOnly(*req.Date)

	// Rescheduling onto the booking's own slot is a no-op, not a conflict
	// with itself.
	if calendarDay(date) == calendarDay(old.Date) && req.TimeSlot == old.TimeSlot {
		return old, nil
	}

	if err := s.checkDate(date); err != nil {
		return nil, s.reject(err)
	}
	if !model.ValidTimeSlot(req.TimeSlot) {
		return nil, s.reject(apperrors.InvalidSlot(req.TimeSlot))
	}

	replacement := &model.Booking{
		Base: model.Base{
			ID: uuid.New(),
		},
		PatientID:      old.PatientID,
		PractitionerID: old.PractitionerID,
		DepartmentID:   old.DepartmentID,
		Date:           date,
		TimeSlot:       req.TimeSlot,
		Reason:         old.Reason,
		Status:         model.BookingStatusConfirmed,
		ReplacesID:     &old.ID,
	}

	if _, err := s.commit(ctx, replacement); err != nil {
		return nil, err
	}

	if err := s.store.Cancel(ctx, old.ID, "rescheduled"); err != nil {
		s.logger.Error(err, "failed to cancel replaced booking", "booking_id", old.ID)
	}

	if s.metrics != nil {
		s.metrics.BookingsAllocated.Inc()
	}
	s.logger.Info("booking rescheduled", "old_id", old.ID, "new_id", replacement.ID)
	s.publish(messaging.ChannelBookingCreated, replacement)
	return replacement, nil
}

// AvailableSlots returns the enumerated slots still free for a
// practitioner on a date, in slot order.
func (s *Service) AvailableSlots(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]string, error) {
	if _, err := s.registry.LookupPractitioner(practitionerID); err != nil {
		return nil, err
	}

	booked, err := s.store.ListForPractitioner(ctx, practitionerID, dateOnly(date))
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(booked))
	for _, b := range booked {
		taken[b.TimeSlot] = true
	}

	available := make([]string, 0, len(model.TimeSlots))
	for _, slot := range model.TimeSlots {
		if !taken[slot] {
			available = append(available, slot)
		}
	}
	return available, nil
}

func (s *Service) checkComplete(req *model.AllocationRequest) error {
	var missing []string
	if req.Date == nil {
		missing = append(missing, "date")
	}
	if req.TimeSlot == "" {
		missing = append(missing, "time_slot")
	}
	if req.PractitionerID == uuid.Nil {
		missing = append(missing, "practitioner_id")
	}
	if strings.TrimSpace(req.Reason) == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return apperrors.IncompleteRequest(fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// checkDate rejects the two non-operating weekdays and anything before
// the current calendar day. Today is always eligible; time of day is
// ignored. Comparison is by calendar day, not instant: the request date
// and the clock may carry different locations.
func (s *Service) checkDate(date time.Time) error {
	if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
		return apperrors.DateNotAvailable("appointments are not available on weekends")
	}
	if calendarDay(date) < calendarDay(s.clock.Today()) {
		return apperrors.DateNotAvailable("date is in the past")
	}
	return nil
}

// reject records a validation outcome. These are expected user-facing
// results, logged at debug, never as system failures.
func (s *Service) reject(err error) error {
	if appErr, ok := err.(*apperrors.AppError); ok {
		if s.metrics != nil {
			s.metrics.BookingsRejected.WithLabelValues(reasonLabel(appErr.Code)).Inc()
		}
		s.logger.Debug("allocation rejected", "reason", appErr.Message)
	}
	return err
}

func (s *Service) notify(recipient string, booking *model.Booking, channel string) {
	if recipient != "" {
		if err := s.notifier.BookingConfirmed(recipient, booking); err != nil {
			s.logger.Error(err, "failed to send booking confirmation", "booking_id", booking.ID)
		}
	}
	s.publish(channel, booking)
}

func (s *Service) publish(channel string, booking *model.Booking) {
	if s.broker == nil {
		return
	}
	msg := messaging.Message{Type: channel, Payload: booking}
	if err := s.broker.Publish(context.Background(), channel, msg); err != nil {
		s.logger.Error(err, "failed to publish booking event", "channel", channel)
	}
}

func (s *Service) lockFor(key string) *sync.Mutex {
	mu, _ := s.slotLocks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func slotKey(practitionerID uuid.UUID, date time.Time, slot string) string {
	return fmt.Sprintf("%s|%s|%s", practitionerID, date.Format("2006-01-02"), slot)
}

// calendarDay renders the wall-clock date; YYYY-MM-DD strings order the
// same way the days do.
func calendarDay(t time.Time) string {
	return t.Format("2006-01-02")
}

func reasonLabel(code apperrors.ErrorCode) string {
	switch code {
	case apperrors.ErrIncompleteRequest:
		return "incomplete_request"
	case apperrors.ErrDateNotAvailable:
		return "date_not_available"
	case apperrors.ErrInvalidSlot:
		return "invalid_slot"
	case apperrors.ErrSlotAlreadyBooked:
		return "slot_already_booked"
	default:
		return "other"
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
