package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightline/internal/bookings/service"
	"flightline/pkg/config"
	apperrors "flightline/pkg/errors"
	"flightline/pkg/logger"
	"flightline/pkg/model"
)

type mockSchedulerService struct {
	requestFunc      func(ctx context.Context, requester service.Requester, booking *model.Booking) error
	rescheduleFunc   func(ctx context.Context, requester service.Requester, id string, updates *model.BookingUpdate) (*model.Booking, error)
	transitionFunc   func(ctx context.Context, requester service.Requester, id string) (*model.Booking, error)
	getByIDFunc      func(ctx context.Context, requester service.Requester, id string) (*model.Booking, error)
	listForUserFunc  func(ctx context.Context, requester service.Requester, from *time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	listUpcomingFunc func(ctx context.Context, window model.Interval, limit int, offset int64) ([]*model.Booking, int64, error)
	availabilityFunc func(ctx context.Context, refs []model.ResourceRef, interval model.Interval) ([]service.ResourceAvailability, error)
}

func (m *mockSchedulerService) RequestBooking(ctx context.Context, requester service.Requester, booking *model.Booking) error {
	if m.requestFunc != nil {
		return m.requestFunc(ctx, requester, booking)
	}
	booking.ID = "64a000000000000000000c01"
	booking.Status = model.StatusScheduled
	return nil
}

func (m *mockSchedulerService) RescheduleBooking(ctx context.Context, requester service.Requester, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if m.rescheduleFunc != nil {
		return m.rescheduleFunc(ctx, requester, id, updates)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockSchedulerService) ConfirmBooking(ctx context.Context, requester service.Requester, id string) (*model.Booking, error) {
	if m.transitionFunc != nil {
		return m.transitionFunc(ctx, requester, id)
	}
	return &model.Booking{ID: id, Status: model.StatusConfirmed}, nil
}

func (m *mockSchedulerService) CompleteBooking(ctx context.Context, requester service.Requester, id string) (*model.Booking, error) {
	if m.transitionFunc != nil {
		return m.transitionFunc(ctx, requester, id)
	}
	return &model.Booking{ID: id, Status: model.StatusCompleted}, nil
}

func (m *mockSchedulerService) CancelBooking(ctx context.Context, requester service.Requester, id string) (*model.Booking, error) {
	if m.transitionFunc != nil {
		return m.transitionFunc(ctx, requester, id)
	}
	return &model.Booking{ID: id, Status: model.StatusCancelled}, nil
}

func (m *mockSchedulerService) GetByID(ctx context.Context, requester service.Requester, id string) (*model.Booking, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, requester, id)
	}
	return &model.Booking{ID: id, UserID: requester.ID}, nil
}

func (m *mockSchedulerService) ListForUser(ctx context.Context, requester service.Requester, from *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.listForUserFunc != nil {
		return m.listForUserFunc(ctx, requester, from, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockSchedulerService) ListUpcoming(ctx context.Context, window model.Interval, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.listUpcomingFunc != nil {
		return m.listUpcomingFunc(ctx, window, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockSchedulerService) CheckAvailability(ctx context.Context, refs []model.ResourceRef, interval model.Interval) ([]service.ResourceAvailability, error) {
	if m.availabilityFunc != nil {
		return m.availabilityFunc(ctx, refs, interval)
	}
	return []service.ResourceAvailability{}, nil
}

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) {
	p.events = append(p.events, eventType)
}

func newTestHandler(t *testing.T, svc service.SchedulerService) (*httprouter.Router, *recordingPublisher) {
	t.Helper()
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.FormatJSON,
		Service: "handler-test",
	})
	cfg := &config.Config{Log: log, CalendarWindowDays: 30}
	publisher := &recordingPublisher{}

	router := httprouter.New()
	NewBookingHandler(svc, publisher, cfg).RegisterRoutes(router)
	return router, publisher
}

func TestCreate_Success(t *testing.T) {
	router, publisher := newTestHandler(t, &mockSchedulerService{})

	body := `{"aircraft_id":"64a000000000000000000a01","start_time":"2026-09-14T09:00:00Z","end_time":"2026-09-14T11:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("X-User-ID", "student-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"booking.created"}, publisher.events)

	var resp struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.ID)
	assert.Equal(t, model.StatusScheduled, resp.Data.Status)
}

func TestCreate_MissingRequesterHeader(t *testing.T) {
	router, publisher := newTestHandler(t, &mockSchedulerService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, publisher.events)
}

func TestCreate_InvalidBody(t *testing.T) {
	router, publisher := newTestHandler(t, &mockSchedulerService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{not json`))
	req.Header.Set("X-User-ID", "student-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, publisher.events)
}

func TestCreate_Conflict(t *testing.T) {
	svc := &mockSchedulerService{
		requestFunc: func(ctx context.Context, requester service.Requester, booking *model.Booking) error {
			return apperrors.SlotUnavailable(
				model.ResourceRef{Kind: model.ResourceAircraft, ID: "64a000000000000000000a01"},
				"64a000000000000000000c09",
			)
		},
	}
	router, publisher := newTestHandler(t, svc)

	body := `{"aircraft_id":"64a000000000000000000a01","start_time":"2026-09-14T09:00:00Z","end_time":"2026-09-14T11:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("X-User-ID", "student-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, publisher.events, "no event on failed create")

	var resp struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeSlotUnavailable, resp.Code)
	assert.Equal(t, "64a000000000000000000c09", resp.Details["conflicting_booking_id"])
}

func TestCancel_PublishesEvent(t *testing.T) {
	router, publisher := newTestHandler(t, &mockSchedulerService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/64a000000000000000000c01/cancel", nil)
	req.Header.Set("X-User-ID", "student-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"booking.cancelled"}, publisher.events)
}

func TestCancel_InvalidState(t *testing.T) {
	svc := &mockSchedulerService{
		transitionFunc: func(ctx context.Context, requester service.Requester, id string) (*model.Booking, error) {
			return nil, apperrors.InvalidState(model.StatusCancelled, model.StatusCancelled)
		},
	}
	router, publisher := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/64a000000000000000000c01/cancel", nil)
	req.Header.Set("X-User-ID", "student-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, publisher.events)
}

func TestCalendar_DefaultWindow(t *testing.T) {
	var captured model.Interval
	svc := &mockSchedulerService{
		listUpcomingFunc: func(ctx context.Context, window model.Interval, limit int, offset int64) ([]*model.Booking, int64, error) {
			captured = window
			return []*model.Booking{}, 0, nil
		},
	}
	router, _ := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/calendar", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, float64(30*24*time.Hour), float64(captured.End.Sub(captured.Start)), float64(time.Minute))
}

func TestCalendar_ExplicitWindow(t *testing.T) {
	var captured model.Interval
	svc := &mockSchedulerService{
		listUpcomingFunc: func(ctx context.Context, window model.Interval, limit int, offset int64) ([]*model.Booking, int64, error) {
			captured = window
			return []*model.Booking{}, 0, nil
		},
	}
	router, _ := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/calendar?start=2026-09-14T00:00:00Z&end=2026-09-21T00:00:00Z", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), captured.Start)
	assert.Equal(t, time.Date(2026, 9, 21, 0, 0, 0, 0, time.UTC), captured.End)
}

func TestCheckAvailability(t *testing.T) {
	svc := &mockSchedulerService{
		availabilityFunc: func(ctx context.Context, refs []model.ResourceRef, interval model.Interval) ([]service.ResourceAvailability, error) {
			require.Len(t, refs, 2)
			return []service.ResourceAvailability{
				{Resource: refs[0], Available: false},
				{Resource: refs[1], Available: true},
			}, nil
		},
	}
	router, _ := newTestHandler(t, svc)

	payload := map[string]any{
		"start_time":     "2026-09-14T09:00:00Z",
		"end_time":       "2026-09-14T11:00:00Z",
		"aircraft_ids":   []string{"64a000000000000000000a01"},
		"instructor_ids": []string{"64a000000000000000000b01"},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/availability", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []service.ResourceAvailability `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.False(t, resp.Data[0].Available)
	assert.True(t, resp.Data[1].Available)
}

func TestCheckAvailability_InvalidInterval(t *testing.T) {
	router, _ := newTestHandler(t, &mockSchedulerService{})

	body := `{"start_time":"2026-09-14T11:00:00Z","end_time":"2026-09-14T09:00:00Z","aircraft_ids":["64a000000000000000000a01"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/availability", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// A client-supplied id must never survive into the scheduling call; the store
// assigns identifiers at creation.
func TestCreate_ClientSuppliedIDIgnored(t *testing.T) {
	var seenID string
	svc := &mockSchedulerService{
		requestFunc: func(ctx context.Context, requester service.Requester, booking *model.Booking) error {
			seenID = booking.ID
			booking.ID = "64a000000000000000000c01"
			booking.Status = model.StatusScheduled
			return nil
		},
	}
	router, _ := newTestHandler(t, svc)

	body := `{"id":"64a000000000000000000fff","aircraft_id":"64a000000000000000000a01","start_time":"2026-09-14T09:00:00Z","end_time":"2026-09-14T11:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("X-User-ID", "student-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, seenID)

	var resp struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "64a000000000000000000c01", resp.Data.ID)
}
