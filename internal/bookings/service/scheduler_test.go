package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "flightline/internal/bookings/errors"
	"flightline/internal/bookings/validator"
	"flightline/pkg/config"
	mongotx "flightline/pkg/db/mongo"
	apperrors "flightline/pkg/errors"
	"flightline/pkg/logger"
	"flightline/pkg/model"
)

const (
	aircraftX   = "64a000000000000000000a01"
	aircraftY   = "64a000000000000000000a02"
	instructorI = "64a000000000000000000b01"
	instructorJ = "64a000000000000000000b02"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.FormatJSON,
		Service: "scheduler-test",
	})
	return &config.Config{
		Log:                log,
		MaxBookingDuration: 8 * time.Hour,
		SlotLockTTL:        10 * time.Second,
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
	}
}

// memoryBookingStore is an in-memory BookingRepository used to exercise the
// scheduler's conflict and concurrency behavior without a live database.
type memoryBookingStore struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
}

func newMemoryBookingStore() *memoryBookingStore {
	return &memoryBookingStore{bookings: make(map[string]*model.Booking)}
}

func (s *memoryBookingStore) Create(ctx context.Context, booking *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking.ID = primitive.NewObjectID().Hex()
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	clone := *booking
	s.bookings[booking.ID] = &clone
	return nil
}

func (s *memoryBookingStore) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (s *memoryBookingStore) FindByUser(ctx context.Context, userID string, from *time.Time, limit int, offset int64) ([]*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Booking
	for _, b := range s.bookings {
		if b.UserID != userID {
			continue
		}
		if from != nil && !b.EndTime.After(*from) {
			continue
		}
		clone := *b
		out = append(out, &clone)
	}
	return out, nil
}

func (s *memoryBookingStore) CountByUser(ctx context.Context, userID string, from *time.Time) (int64, error) {
	found, _ := s.FindByUser(ctx, userID, from, 0, 0)
	return int64(len(found)), nil
}

func (s *memoryBookingStore) FindOverlapping(ctx context.Context, ref model.ResourceRef, interval model.Interval, excludeID string) ([]*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Booking
	for _, b := range s.bookings {
		if b.ID == excludeID || b.Status == model.StatusCancelled {
			continue
		}
		occupied := false
		for _, r := range b.ResourceRefs() {
			if r == ref {
				occupied = true
			}
		}
		if !occupied {
			continue
		}
		if b.Interval().Overlaps(interval) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *memoryBookingStore) ListByWindow(ctx context.Context, window model.Interval, limit int, offset int64) ([]*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Booking
	for _, b := range s.bookings {
		if b.Status == model.StatusCancelled {
			continue
		}
		if b.Interval().Overlaps(window) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *memoryBookingStore) CountByWindow(ctx context.Context, window model.Interval) (int64, error) {
	found, _ := s.ListByWindow(ctx, window, 0, 0)
	return int64(len(found)), nil
}

func (s *memoryBookingStore) Update(ctx context.Context, id string, booking *model.Booking, currentStatus string) (*mongo.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.bookings[id]
	if !ok || existing.Status != currentStatus {
		return nil, bookingserrors.ErrNotFound
	}
	existing.AircraftID = booking.AircraftID
	existing.InstructorID = booking.InstructorID
	existing.StartTime = booking.StartTime
	existing.EndTime = booking.EndTime
	existing.Status = booking.Status
	existing.UpdatedAt = time.Now().UTC()
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (s *memoryBookingStore) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

// memorySlotLockStore mimics the unique-index behavior of the lock collection:
// a second Create for a held lock fails with a duplicate key error.
type memorySlotLockStore struct {
	mu    sync.Mutex
	locks map[string]*model.SlotLock
}

func newMemorySlotLockStore() *memorySlotLockStore {
	return &memorySlotLockStore{locks: make(map[string]*model.SlotLock)}
}

func (s *memorySlotLockStore) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.locks[lock.ID]; ok && existing.ExpiresAt.After(time.Now()) {
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	s.locks[lock.ID] = lock
	return lock, nil
}

func (s *memorySlotLockStore) Delete(ctx context.Context, lockID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, lockID)
	return nil
}

type fakeRegistry struct {
	missing map[string]bool
	err     error
}

func (f *fakeRegistry) Exists(ctx context.Context, ref model.ResourceRef) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return !f.missing[ref.String()], nil
}

func newTestScheduler(t *testing.T, cfg *config.Config) (SchedulerService, *memoryBookingStore) {
	t.Helper()
	store := newMemoryBookingStore()
	svc := NewSchedulerService(
		store,
		newMemorySlotLockStore(),
		&fakeRegistry{},
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
	return svc, store
}

func at(hour int) time.Time {
	return time.Date(2026, time.September, 14, hour, 0, 0, 0, time.UTC)
}

func newBooking(userID, aircraftID, instructorID string, start, end time.Time) *model.Booking {
	return &model.Booking{
		UserID:       userID,
		AircraftID:   aircraftID,
		InstructorID: instructorID,
		StartTime:    start,
		EndTime:      end,
	}
}

func TestRequestBooking_Success(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))

	b := newBooking("", aircraftX, "", at(9), at(11))
	err := svc.RequestBooking(context.Background(), Requester{ID: "student-1"}, b)

	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "student-1", b.UserID)
	assert.Equal(t, model.StatusScheduled, b.Status)
	assert.Equal(t, time.UTC, b.StartTime.Location())
}

func TestRequestBooking_AutoConfirm(t *testing.T) {
	cfg := testConfig(t)
	cfg.AutoConfirm = true
	svc, _ := newTestScheduler(t, cfg)

	b := newBooking("student-1", aircraftX, "", at(9), at(11))
	require.NoError(t, svc.RequestBooking(context.Background(), Requester{ID: "student-1"}, b))
	assert.Equal(t, model.StatusConfirmed, b.Status)
}

func TestRequestBooking_TouchingEndpointsDoNotConflict(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))
	ctx := context.Background()

	first := newBooking("student-1", aircraftX, "", at(10), at(11))
	require.NoError(t, svc.RequestBooking(ctx, Requester{ID: "student-1"}, first))

	second := newBooking("student-2", aircraftX, "", at(11), at(12))
	assert.NoError(t, svc.RequestBooking(ctx, Requester{ID: "student-2"}, second))
}

func TestRequestBooking_OverlapRejected(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))
	ctx := context.Background()

	existing := newBooking("student-1", aircraftX, "", at(9), at(11))
	require.NoError(t, svc.RequestBooking(ctx, Requester{ID: "student-1"}, existing))

	conflicting := newBooking("student-2", aircraftX, "", at(10), at(12))
	err := svc.RequestBooking(ctx, Requester{ID: "student-2"}, conflicting)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSlotUnavailable))
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, existing.ID, appErr.Details["conflicting_booking_id"])
	assert.Equal(t, string(model.ResourceAircraft), appErr.Details["resource_kind"])
}

func TestRequestBooking_CrossResourceIndependence(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))
	ctx := context.Background()

	existing := newBooking("student-1", aircraftX, instructorI, at(9), at(11))
	require.NoError(t, svc.RequestBooking(ctx, Requester{ID: "student-1"}, existing))

	sharedInstructor := newBooking("student-2", aircraftY, instructorI, at(10), at(12))
	err := svc.RequestBooking(ctx, Requester{ID: "student-2"}, sharedInstructor)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSlotUnavailable))
	assert.Equal(t, string(model.ResourceInstructor), apperrors.AsAppError(err).Details["resource_kind"])

	independent := newBooking("student-2", aircraftY, instructorJ, at(10), at(12))
	assert.NoError(t, svc.RequestBooking(ctx, Requester{ID: "student-2"}, independent))
}

func TestRequestBooking_CancelledBookingsAreTransparent(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))
	ctx := context.Background()
	owner := Requester{ID: "student-1"}

	existing := newBooking("student-1", aircraftX, "", at(9), at(11))
	require.NoError(t, svc.RequestBooking(ctx, owner, existing))

	_, err := svc.CancelBooking(ctx, owner, existing.ID)
	require.NoError(t, err)

	replacement := newBooking("student-2", aircraftX, "", at(9).Add(30*time.Minute), at(10).Add(30*time.Minute))
	assert.NoError(t, svc.RequestBooking(ctx, Requester{ID: "student-2"}, replacement))
}

func TestRequestBooking_DurationExceeded(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))

	b := newBooking("student-1", aircraftX, "", at(8), at(17))
	err := svc.RequestBooking(context.Background(), Requester{ID: "student-1"}, b)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDurationExceeded))
}

func TestRequestBooking_InvalidInterval(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))

	b := newBooking("student-1", aircraftX, "", at(11), at(11))
	err := svc.RequestBooking(context.Background(), Requester{ID: "student-1"}, b)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInterval))
}

func TestRequestBooking_UnknownResource(t *testing.T) {
	cfg := testConfig(t)
	store := newMemoryBookingStore()
	registry := &fakeRegistry{missing: map[string]bool{
		model.ResourceRef{Kind: model.ResourceAircraft, ID: aircraftX}.String(): true,
	}}
	svc := NewSchedulerService(store, newMemorySlotLockStore(), registry, validator.NewBookingValidator(cfg.Log), cfg)

	b := newBooking("student-1", aircraftX, "", at(9), at(11))
	err := svc.RequestBooking(context.Background(), Requester{ID: "student-1"}, b)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeResourceNotFound))
}

func TestRequestBooking_ForbiddenForOtherUser(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))

	b := newBooking("someone-else", aircraftX, "", at(9), at(11))
	err := svc.RequestBooking(context.Background(), Requester{ID: "student-1"}, b)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestRequestBooking_AdminMayBookForOthers(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))

	b := newBooking("student-9", aircraftX, "", at(9), at(11))
	err := svc.RequestBooking(context.Background(), Requester{ID: "dispatch", Admin: true}, b)

	assert.NoError(t, err)
}

func TestReschedule_SelfExclusion(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))
	ctx := context.Background()
	owner := Requester{ID: "student-1"}

	b := newBooking("student-1", aircraftX, "", at(9), at(11))
	require.NoError(t, svc.RequestBooking(ctx, owner, b))

	sameStart, sameEnd := at(9), at(11)
	updated, err := svc.RescheduleBooking(ctx, owner, b.ID, &model.BookingUpdate{
		StartTime: &sameStart,
		EndTime:   &sameEnd,
	})

	require.NoError(t, err)
	assert.Equal(t, sameStart, updated.StartTime)
}

func TestReschedule_ConflictWithOtherBooking(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))
	ctx := context.Background()

	blocker := newBooking("student-1", aircraftX, "", at(13), at(15))
	require.NoError(t, svc.RequestBooking(ctx, Requester{ID: "student-1"}, blocker))

	b := newBooking("student-2", aircraftX, "", at(9), at(11))
	require.NoError(t, svc.RequestBooking(ctx, Requester{ID: "student-2"}, b))

	newStart, newEnd := at(14), at(16)
	_, err := svc.RescheduleBooking(ctx, Requester{ID: "student-2"}, b.ID, &model.BookingUpdate{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSlotUnavailable))
}

func TestReschedule_TerminalBookingImmutable(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))
	ctx := context.Background()
	owner := Requester{ID: "student-1"}

	b := newBooking("student-1", aircraftX, "", at(9), at(11))
	require.NoError(t, svc.RequestBooking(ctx, owner, b))
	_, err := svc.CompleteBooking(ctx, owner, b.ID)
	require.NoError(t, err)

	newStart := at(12)
	newEnd := at(13)
	_, err = svc.RescheduleBooking(ctx, owner, b.ID, &model.BookingUpdate{StartTime: &newStart, EndTime: &newEnd})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidState))
}

func TestReschedule_ForbiddenForNonOwner(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))
	ctx := context.Background()

	b := newBooking("student-1", aircraftX, "", at(9), at(11))
	require.NoError(t, svc.RequestBooking(ctx, Requester{ID: "student-1"}, b))

	newStart := at(12)
	newEnd := at(13)
	_, err := svc.RescheduleBooking(ctx, Requester{ID: "student-2"}, b.ID, &model.BookingUpdate{StartTime: &newStart, EndTime: &newEnd})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		act      func(svc SchedulerService, ctx context.Context, r Requester, id string) error
		wantCode string
	}{
		{
			name:    "scheduled to confirmed",
			initial: model.StatusScheduled,
			act: func(svc SchedulerService, ctx context.Context, r Requester, id string) error {
				_, err := svc.ConfirmBooking(ctx, r, id)
				return err
			},
		},
		{
			name:    "scheduled straight to completed",
			initial: model.StatusScheduled,
			act: func(svc SchedulerService, ctx context.Context, r Requester, id string) error {
				_, err := svc.CompleteBooking(ctx, r, id)
				return err
			},
		},
		{
			name:    "cancelled cannot be cancelled again",
			initial: model.StatusCancelled,
			act: func(svc SchedulerService, ctx context.Context, r Requester, id string) error {
				_, err := svc.CancelBooking(ctx, r, id)
				return err
			},
			wantCode: apperrors.CodeInvalidState,
		},
		{
			name:    "completed cannot be cancelled",
			initial: model.StatusCompleted,
			act: func(svc SchedulerService, ctx context.Context, r Requester, id string) error {
				_, err := svc.CancelBooking(ctx, r, id)
				return err
			},
			wantCode: apperrors.CodeInvalidState,
		},
		{
			name:    "completed cannot be confirmed",
			initial: model.StatusCompleted,
			act: func(svc SchedulerService, ctx context.Context, r Requester, id string) error {
				_, err := svc.ConfirmBooking(ctx, r, id)
				return err
			},
			wantCode: apperrors.CodeInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestScheduler(t, testConfig(t))
			ctx := context.Background()
			owner := Requester{ID: "student-1"}

			b := newBooking("student-1", aircraftX, "", at(9), at(11))
			require.NoError(t, svc.RequestBooking(ctx, owner, b))
			seeded, err := store.FindByID(ctx, b.ID)
			require.NoError(t, err)
			previous := seeded.Status
			seeded.Status = tt.initial
			_, err = store.Update(ctx, b.ID, seeded, previous)
			require.NoError(t, err)

			err = tt.act(svc, ctx, owner, b.ID)
			if tt.wantCode == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, apperrors.IsCode(err, tt.wantCode))
			}
		})
	}
}

func TestCheckAvailability_Idempotent(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))
	ctx := context.Background()

	b := newBooking("student-1", aircraftX, "", at(9), at(11))
	require.NoError(t, svc.RequestBooking(ctx, Requester{ID: "student-1"}, b))

	refs := []model.ResourceRef{
		{Kind: model.ResourceAircraft, ID: aircraftX},
		{Kind: model.ResourceAircraft, ID: aircraftY},
	}
	interval, err := model.NewInterval(at(10), at(12))
	require.NoError(t, err)

	first, err := svc.CheckAvailability(ctx, refs, interval)
	require.NoError(t, err)
	second, err := svc.CheckAvailability(ctx, refs, interval)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.False(t, first[0].Available)
	assert.True(t, first[1].Available)
}

func TestOverlapSymmetry(t *testing.T) {
	a, err := model.NewInterval(at(9), at(11))
	require.NoError(t, err)
	b, err := model.NewInterval(at(10), at(12))
	require.NoError(t, err)

	assert.Equal(t, a.Overlaps(b), b.Overlaps(a))
	assert.True(t, a.Overlaps(b))
}

func TestListUpcoming_InvalidWindow(t *testing.T) {
	svc, _ := newTestScheduler(t, testConfig(t))

	_, _, err := svc.ListUpcoming(context.Background(), model.Interval{Start: at(12), End: at(9)}, 100, 0)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInterval))
}

// Under concurrent fully-overlapping requests for the same resource, exactly
// one booking must be admitted and every other caller must see a slot
// unavailability failure, in any interleaving.
func TestConcurrentRequests_ExactlyOneSuccess(t *testing.T) {
	svc, store := newTestScheduler(t, testConfig(t))
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := newBooking("student-1", aircraftX, "", at(9), at(11))
			errs[i] = svc.RequestBooking(ctx, Requester{ID: "student-1"}, b)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.True(t, apperrors.IsCode(err, apperrors.CodeSlotUnavailable),
			"expected slot unavailability, got: %v", err)
	}
	assert.Equal(t, 1, successes)

	window, err := model.NewInterval(at(0), at(23))
	require.NoError(t, err)
	stored, err := store.ListByWindow(ctx, window, 100, 0)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

// staleReadStore serves one FindByID result with an outdated status, modeling
// a transition whose read happened before a concurrent write committed.
type staleReadStore struct {
	*memoryBookingStore

	staleMu     sync.Mutex
	staleID     string
	staleStatus string
	served      bool
}

func (s *staleReadStore) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	b, err := s.memoryBookingStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.staleMu.Lock()
	defer s.staleMu.Unlock()
	if id == s.staleID && !s.served {
		s.served = true
		b.Status = s.staleStatus
	}
	return b, nil
}

// A confirm that read the booking before a concurrent cancel committed must
// not move it out of cancelled: the guarded status write matches nothing and
// the transition is re-judged against the stored state.
func TestConfirm_ConcurrentCancelWins(t *testing.T) {
	cfg := testConfig(t)
	store := &staleReadStore{memoryBookingStore: newMemoryBookingStore()}
	svc := NewSchedulerService(
		store,
		newMemorySlotLockStore(),
		&fakeRegistry{},
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
	ctx := context.Background()
	owner := Requester{ID: "student-1"}

	b := newBooking("student-1", aircraftX, "", at(9), at(11))
	require.NoError(t, svc.RequestBooking(ctx, owner, b))

	_, err := svc.CancelBooking(ctx, owner, b.ID)
	require.NoError(t, err)

	store.staleMu.Lock()
	store.staleID = b.ID
	store.staleStatus = model.StatusScheduled
	store.staleMu.Unlock()

	_, err = svc.ConfirmBooking(ctx, owner, b.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidState))

	current, err := store.memoryBookingStore.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, current.Status)
}

// A reschedule re-resolves every resource the booking would occupy, so a
// resource deregistered after creation cannot be carried along unchanged.
func TestReschedule_DeregisteredResourceRejected(t *testing.T) {
	cfg := testConfig(t)
	store := newMemoryBookingStore()
	registry := &fakeRegistry{missing: map[string]bool{}}
	svc := NewSchedulerService(
		store,
		newMemorySlotLockStore(),
		registry,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
	ctx := context.Background()
	owner := Requester{ID: "student-1"}

	b := newBooking("student-1", aircraftX, "", at(9), at(11))
	require.NoError(t, svc.RequestBooking(ctx, owner, b))

	registry.missing[model.ResourceRef{Kind: model.ResourceAircraft, ID: aircraftX}.String()] = true

	newStart := at(13)
	newEnd := at(15)
	_, err := svc.RescheduleBooking(ctx, owner, b.ID, &model.BookingUpdate{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeResourceNotFound))
}
