package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "flightline/internal/bookings/errors"
	"flightline/internal/bookings/repository"
	"flightline/internal/bookings/validator"
	"flightline/pkg/config"
	apperrors "flightline/pkg/errors"
	"flightline/pkg/model"
)

// Requester identifies the caller of a scheduler operation. Admin requesters
// may act on bookings they do not own.
type Requester struct {
	ID    string
	Admin bool
}

// ResourceRegistry resolves aircraft and instructor identifiers.
type ResourceRegistry interface {
	Exists(ctx context.Context, ref model.ResourceRef) (bool, error)
}

// ResourceAvailability is one entry of a CheckAvailability answer.
type ResourceAvailability struct {
	Resource  model.ResourceRef `json:"resource"`
	Available bool              `json:"available"`
}

type SchedulerService interface {
	RequestBooking(ctx context.Context, requester Requester, booking *model.Booking) error
	RescheduleBooking(ctx context.Context, requester Requester, id string, updates *model.BookingUpdate) (*model.Booking, error)
	ConfirmBooking(ctx context.Context, requester Requester, id string) (*model.Booking, error)
	CompleteBooking(ctx context.Context, requester Requester, id string) (*model.Booking, error)
	CancelBooking(ctx context.Context, requester Requester, id string) (*model.Booking, error)
	GetByID(ctx context.Context, requester Requester, id string) (*model.Booking, error)
	ListForUser(ctx context.Context, requester Requester, from *time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	ListUpcoming(ctx context.Context, window model.Interval, limit int, offset int64) ([]*model.Booking, int64, error)
	CheckAvailability(ctx context.Context, refs []model.ResourceRef, interval model.Interval) ([]ResourceAvailability, error)
}

type schedulerService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	registry  ResourceRegistry
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewSchedulerService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	registry ResourceRegistry,
	validator *validator.BookingValidator,
	cfg *config.Config,
) SchedulerService {
	return &schedulerService{
		repo:      repo,
		lockRepo:  lockRepo,
		registry:  registry,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *schedulerService) RequestBooking(ctx context.Context, requester Requester, booking *model.Booking) error {
	if booking.UserID == "" {
		booking.UserID = requester.ID
	}
	if booking.UserID != requester.ID && !requester.Admin {
		return apperrors.Forbidden("cannot create a booking for another user")
	}

	interval, err := s.normalizeInterval(booking)
	if err != nil {
		return err
	}

	booking.Status = model.StatusScheduled
	if s.cfg.AutoConfirm {
		booking.Status = model.StatusConfirmed
	}

	if err := s.validate(booking); err != nil {
		return err
	}

	refs := booking.ResourceRefs()
	if err := s.verifyResources(ctx, refs); err != nil {
		return err
	}

	release, err := s.acquireSlotLocks(ctx, refs)
	if err != nil {
		return err
	}
	defer release()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflicts(sessCtx, refs, interval, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.StoreUnavailable(err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "user_id", booking.UserID, "error", err)
		return err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"user_id", booking.UserID,
		"aircraft_id", booking.AircraftID,
		"instructor_id", booking.InstructorID,
		"start_time", booking.StartTime,
		"status", booking.Status,
	)
	return nil
}

func (s *schedulerService) RescheduleBooking(ctx context.Context, requester Requester, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	existing, err := s.getOwned(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	if existing.IsTerminal() {
		return nil, apperrors.BookingImmutable(existing.Status)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeBookingUpdates(existing, updates)
	interval, err := s.normalizeInterval(merged)
	if err != nil {
		return nil, err
	}
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	refs := merged.ResourceRefs()
	if err := s.verifyResources(ctx, refs); err != nil {
		return nil, err
	}

	release, err := s.acquireSlotLocks(ctx, refs)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflicts(sessCtx, refs, interval, id); err != nil {
			return err
		}
		if _, err := s.repo.Update(sessCtx, id, merged, existing.Status); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return s.resolveStaleWrite(sessCtx, id)
			}
			return apperrors.StoreUnavailable(err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reschedule booking", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking rescheduled successfully", "id", id, "start_time", merged.StartTime)
	return merged, nil
}

func (s *schedulerService) ConfirmBooking(ctx context.Context, requester Requester, id string) (*model.Booking, error) {
	return s.transition(ctx, requester, id, model.StatusConfirmed)
}

func (s *schedulerService) CompleteBooking(ctx context.Context, requester Requester, id string) (*model.Booking, error) {
	return s.transition(ctx, requester, id, model.StatusCompleted)
}

func (s *schedulerService) CancelBooking(ctx context.Context, requester Requester, id string) (*model.Booking, error) {
	return s.transition(ctx, requester, id, model.StatusCancelled)
}

// transition applies the booking state machine. Re-cancelling a cancelled
// booking fails loudly rather than being silently ignored.
func (s *schedulerService) transition(ctx context.Context, requester Requester, id, target string) (*model.Booking, error) {
	booking, err := s.getOwned(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	if !model.CanTransition(booking.Status, target) {
		return nil, apperrors.InvalidState(booking.Status, target)
	}

	previous := booking.Status
	booking.Status = target
	if _, err := s.repo.Update(ctx, id, booking, previous); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			// Status moved between the read and the guarded write; judge the
			// transition against what is actually stored.
			current, findErr := s.repo.FindByID(ctx, id)
			if findErr != nil {
				return nil, apperrors.NotFoundWithID("Booking", id)
			}
			return nil, apperrors.InvalidState(current.Status, target)
		}
		s.cfg.Log.Error("Failed to update booking status", "id", id, "target", target, "error", err)
		return nil, apperrors.StoreUnavailable(err)
	}

	s.cfg.Log.Info("Booking status updated", "id", id, "status", target)
	return booking, nil
}

func (s *schedulerService) GetByID(ctx context.Context, requester Requester, id string) (*model.Booking, error) {
	return s.getOwned(ctx, requester, id)
}

func (s *schedulerService) ListForUser(ctx context.Context, requester Requester, from *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	if requester.ID == "" {
		return nil, 0, apperrors.InvalidInput("Requester ID cannot be empty")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, requester.ID, from)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings for user", "user_id", requester.ID, "error", errCount)
			errCount = apperrors.StoreUnavailable(errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByUser(ctx, requester.ID, from, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings for user", "user_id", requester.ID, "error", errFind)
			errFind = apperrors.StoreUnavailable(errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *schedulerService) ListUpcoming(ctx context.Context, window model.Interval, limit int, offset int64) ([]*model.Booking, int64, error) {
	if window.IsZero() || !window.Start.Before(window.End) {
		return nil, 0, apperrors.InvalidInterval("calendar window start must be before its end")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByWindow(ctx, window)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings by window", "error", errCount)
			errCount = apperrors.StoreUnavailable(errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.ListByWindow(ctx, window, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings by window", "error", errFind)
			errFind = apperrors.StoreUnavailable(errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// CheckAvailability answers against the latest committed snapshot; it takes no
// locks and may be momentarily stale relative to in-flight writes.
func (s *schedulerService) CheckAvailability(ctx context.Context, refs []model.ResourceRef, interval model.Interval) ([]ResourceAvailability, error) {
	if len(refs) == 0 {
		return nil, apperrors.InvalidInput("At least one resource must be specified")
	}
	if interval.IsZero() || !interval.Start.Before(interval.End) {
		return nil, apperrors.InvalidInterval("interval start must be before its end")
	}

	result := make([]ResourceAvailability, 0, len(refs))
	for _, ref := range refs {
		overlapping, err := s.repo.FindOverlapping(ctx, ref, interval, "")
		if err != nil {
			s.cfg.Log.Error("Failed to check availability", "resource", ref.String(), "error", err)
			return nil, apperrors.StoreUnavailable(err)
		}
		result = append(result, ResourceAvailability{
			Resource:  ref,
			Available: len(overlapping) == 0,
		})
	}

	return result, nil
}

// --- Helpers ---

func (s *schedulerService) getOwned(ctx context.Context, requester Requester, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.StoreUnavailable(err)
	}

	if booking.UserID != requester.ID && !requester.Admin {
		return nil, apperrors.Forbidden("booking belongs to another user")
	}

	return booking, nil
}

// normalizeInterval validates the booking's time range, rewrites it in UTC and
// enforces the maximum-duration policy.
func (s *schedulerService) normalizeInterval(b *model.Booking) (model.Interval, error) {
	interval, err := model.NewInterval(b.StartTime, b.EndTime)
	if err != nil {
		return model.Interval{}, apperrors.InvalidInterval(err.Error())
	}

	if interval.Duration() > s.cfg.MaxBookingDuration {
		return model.Interval{}, apperrors.DurationExceeded(
			interval.Duration().String(),
			s.cfg.MaxBookingDuration.String(),
		)
	}

	b.StartTime = interval.Start
	b.EndTime = interval.End
	return interval, nil
}

func (s *schedulerService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *schedulerService) verifyResources(ctx context.Context, refs []model.ResourceRef) error {
	for _, ref := range refs {
		exists, err := s.registry.Exists(ctx, ref)
		if err != nil {
			s.cfg.Log.Error("Resource registry lookup failed", "resource", ref.String(), "error", err)
			return apperrors.Unavailable("resource registry")
		}
		if !exists {
			return apperrors.ResourceNotFound(ref)
		}
	}
	return nil
}

func (s *schedulerService) verifyNoConflicts(ctx context.Context, refs []model.ResourceRef, interval model.Interval, excludeID string) error {
	for _, ref := range refs {
		overlapping, err := s.repo.FindOverlapping(ctx, ref, interval, excludeID)
		if err != nil {
			return apperrors.StoreUnavailable(err)
		}
		if len(overlapping) > 0 {
			return apperrors.SlotUnavailable(ref, overlapping[0].ID)
		}
	}
	return nil
}

func (s *schedulerService) mergeBookingUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.AircraftID != nil {
		merged.AircraftID = *updates.AircraftID
	}
	if updates.InstructorID != nil {
		merged.InstructorID = *updates.InstructorID
	}

	return &merged
}

// resolveStaleWrite maps a guarded update that matched nothing to a caller
// error: the booking is either gone or its status moved underneath us.
func (s *schedulerService) resolveStaleWrite(ctx context.Context, id string) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if current.IsTerminal() {
		return apperrors.BookingImmutable(current.Status)
	}
	return apperrors.Conflict("booking was modified concurrently")
}

// acquireSlotLocks takes one advisory lock per resource ref, in sorted ref
// order so two requests over the same resource set never deadlock. The
// returned release function removes every lock that was acquired.
func (s *schedulerService) acquireSlotLocks(ctx context.Context, refs []model.ResourceRef) (func(), error) {
	sorted := make([]model.ResourceRef, len(refs))
	copy(sorted, refs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	acquired := make([]string, 0, len(sorted))
	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			if err := s.lockRepo.Delete(ctx, acquired[i]); err != nil {
				s.cfg.Log.Warn("Failed to release slot lock", "lock_id", acquired[i], "error", err)
			}
		}
	}

	for _, ref := range sorted {
		lock := &model.SlotLock{
			ID:        fmt.Sprintf("slot_lock_%s", ref.String()),
			ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
		}

		if _, err := s.lockRepo.Create(ctx, lock); err != nil {
			release()
			if mongo.IsDuplicateKeyError(err) {
				return nil, apperrors.SlotContended(ref)
			}
			return nil, apperrors.StoreUnavailable(err)
		}
		acquired = append(acquired, lock.ID)
	}

	return release, nil
}
