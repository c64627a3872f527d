package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"flightline/internal/bookings/service"
	"flightline/internal/notifier"
	"flightline/pkg/config"
	apperrors "flightline/pkg/errors"
	httputil "flightline/pkg/http"
	"flightline/pkg/logger"
	"flightline/pkg/model"
)

type BookingHandler struct {
	service   service.SchedulerService
	publisher notifier.Publisher
	cfg       *config.Config
	log       *logger.Logger
}

func NewBookingHandler(svc service.SchedulerService, publisher notifier.Publisher, cfg *config.Config) *BookingHandler {
	return &BookingHandler{
		service:   svc,
		publisher: publisher,
		cfg:       cfg,
		log:       cfg.Log,
	}
}

type availabilityRequest struct {
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	AircraftIDs   []string  `json:"aircraft_ids"`
	InstructorIDs []string  `json:"instructor_ids"`
}

func (h *BookingHandler) requester(w http.ResponseWriter, r *http.Request) (service.Requester, bool) {
	id := httputil.RequesterID(r)
	if id == "" {
		h.writeError(w, "requester", apperrors.InvalidInput("X-User-ID header is required"))
		return service.Requester{}, false
	}
	return service.Requester{ID: id, Admin: httputil.IsAdmin(r)}, true
}

func (h *BookingHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}

	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	// Identifiers are assigned by the store; a client-supplied one would
	// produce a booking unreachable by its own id.
	booking.ID = ""

	if err := h.service.RequestBooking(r.Context(), requester, &booking); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	h.publisher.PublishBookingEvent(r.Context(), notifier.EventBookingCreated, &booking)

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetByID(r.Context(), requester, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// ListMine returns the requester's own bookings, optionally bounded below by a
// "from" query parameter.
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	from, err := httputil.ExtractTimeParam(r, "from")
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	bookings, totalCount, err := h.service.ListForUser(r.Context(), requester, from, limit, offset)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListMine", "operation", "WritePaginated", "error", err)
	}
}

// Calendar lists all non-cancelled bookings intersecting the requested window.
// Absent bounds default to a window starting now, spanning the configured
// number of days.
func (h *BookingHandler) Calendar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}

	start, err := httputil.ExtractTimeParam(r, "start")
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}
	end, err := httputil.ExtractTimeParam(r, "end")
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}

	windowStart := time.Now().UTC()
	if start != nil {
		windowStart = start.UTC()
	}
	windowEnd := windowStart.Add(time.Duration(h.cfg.CalendarWindowDays) * 24 * time.Hour)
	if end != nil {
		windowEnd = end.UTC()
	}

	bookings, totalCount, err := h.service.ListUpcoming(r.Context(), model.Interval{Start: windowStart, End: windowEnd}, limit, offset)
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Calendar", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}

	var updates model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Reschedule", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	booking, err := h.service.RescheduleBooking(r.Context(), requester, ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Reschedule", err)
		return
	}

	h.publisher.PublishBookingEvent(r.Context(), notifier.EventBookingRescheduled, booking)

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Reschedule", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.applyTransition(w, r, ps, "Confirm", notifier.EventBookingConfirmed, h.service.ConfirmBooking)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.applyTransition(w, r, ps, "Complete", notifier.EventBookingCompleted, h.service.CompleteBooking)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.applyTransition(w, r, ps, "Cancel", notifier.EventBookingCancelled, h.service.CancelBooking)
}

func (h *BookingHandler) applyTransition(
	w http.ResponseWriter,
	r *http.Request,
	ps httprouter.Params,
	op string,
	eventType string,
	transition func(ctx context.Context, requester service.Requester, id string) (*model.Booking, error),
) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}

	booking, err := transition(r.Context(), requester, ps.ByName("id"))
	if err != nil {
		h.writeError(w, op, err)
		return
	}

	h.publisher.PublishBookingEvent(r.Context(), eventType, booking)

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", op, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CheckAvailability", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	refs := make([]model.ResourceRef, 0, len(req.AircraftIDs)+len(req.InstructorIDs))
	for _, id := range req.AircraftIDs {
		refs = append(refs, model.ResourceRef{Kind: model.ResourceAircraft, ID: id})
	}
	for _, id := range req.InstructorIDs {
		refs = append(refs, model.ResourceRef{Kind: model.ResourceInstructor, ID: id})
	}

	interval, err := model.NewInterval(req.StartTime, req.EndTime)
	if err != nil {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInterval(err.Error()))
		return
	}

	result, err := h.service.CheckAvailability(r.Context(), refs, interval)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.ListMine)
	router.GET("/api/v1/bookings/calendar", h.Calendar)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id", h.Reschedule)
	router.POST("/api/v1/bookings/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/bookings/id/:id/complete", h.Complete)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/availability", h.CheckAvailability)
}
