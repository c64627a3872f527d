package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"flightline/internal/fleet/service"
	apperrors "flightline/pkg/errors"
	httputil "flightline/pkg/http"
	"flightline/pkg/logger"
	"flightline/pkg/model"
)

type FleetHandler struct {
	service service.FleetService
	log     *logger.Logger
}

func NewFleetHandler(svc service.FleetService, log *logger.Logger) *FleetHandler {
	return &FleetHandler{
		service: svc,
		log:     log,
	}
}

func (h *FleetHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

// requireAdmin gates registry mutations. Reads stay open to any caller.
func (h *FleetHandler) requireAdmin(w http.ResponseWriter, r *http.Request, op string) bool {
	if !httputil.IsAdmin(r) {
		h.writeError(w, op, apperrors.Forbidden("registry changes require an administrator"))
		return false
	}
	return true
}

func (h *FleetHandler) CreateAircraft(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.requireAdmin(w, r, "CreateAircraft") {
		return
	}

	var aircraft model.Aircraft
	if err := json.NewDecoder(r.Body).Decode(&aircraft); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateAircraft", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateAircraft(r.Context(), &aircraft); err != nil {
		h.writeError(w, "CreateAircraft", err)
		return
	}

	if err := httputil.WriteCreated(w, aircraft); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateAircraft", "operation", "WriteCreated", "error", err)
	}
}

func (h *FleetHandler) GetAircraft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	aircraft, err := h.service.GetAircraft(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetAircraft", err)
		return
	}

	if err := httputil.WriteSuccess(w, aircraft); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAircraft", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FleetHandler) ListAircraft(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListAircraft", err)
		return
	}

	fleet, totalCount, err := h.service.ListAircraft(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "ListAircraft", err)
		return
	}

	if err := httputil.WritePaginated(w, fleet, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListAircraft", "operation", "WritePaginated", "error", err)
	}
}

func (h *FleetHandler) UpdateAircraft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r, "UpdateAircraft") {
		return
	}

	var updates model.AircraftUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateAircraft", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	aircraft, err := h.service.UpdateAircraft(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "UpdateAircraft", err)
		return
	}

	if err := httputil.WriteSuccess(w, aircraft); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateAircraft", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FleetHandler) DeleteAircraft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r, "DeleteAircraft") {
		return
	}

	if err := h.service.DeleteAircraft(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteAircraft", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *FleetHandler) CreateInstructor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.requireAdmin(w, r, "CreateInstructor") {
		return
	}

	var instructor model.Instructor
	if err := json.NewDecoder(r.Body).Decode(&instructor); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateInstructor", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateInstructor(r.Context(), &instructor); err != nil {
		h.writeError(w, "CreateInstructor", err)
		return
	}

	if err := httputil.WriteCreated(w, instructor); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateInstructor", "operation", "WriteCreated", "error", err)
	}
}

func (h *FleetHandler) GetInstructor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	instructor, err := h.service.GetInstructor(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetInstructor", err)
		return
	}

	if err := httputil.WriteSuccess(w, instructor); err != nil {
		h.log.Error("failed to write success response", "handler", "GetInstructor", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FleetHandler) ListInstructors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListInstructors", err)
		return
	}

	instructors, totalCount, err := h.service.ListInstructors(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "ListInstructors", err)
		return
	}

	if err := httputil.WritePaginated(w, instructors, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListInstructors", "operation", "WritePaginated", "error", err)
	}
}

func (h *FleetHandler) UpdateInstructor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r, "UpdateInstructor") {
		return
	}

	var updates model.InstructorUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateInstructor", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	instructor, err := h.service.UpdateInstructor(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "UpdateInstructor", err)
		return
	}

	if err := httputil.WriteSuccess(w, instructor); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateInstructor", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FleetHandler) DeleteInstructor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r, "DeleteInstructor") {
		return
	}

	if err := h.service.DeleteInstructor(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteInstructor", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *FleetHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/aircraft", h.CreateAircraft)
	router.GET("/api/v1/aircraft", h.ListAircraft)
	router.GET("/api/v1/aircraft/id/:id", h.GetAircraft)
	router.PATCH("/api/v1/aircraft/id/:id", h.UpdateAircraft)
	router.DELETE("/api/v1/aircraft/id/:id", h.DeleteAircraft)

	router.POST("/api/v1/instructors", h.CreateInstructor)
	router.GET("/api/v1/instructors", h.ListInstructors)
	router.GET("/api/v1/instructors/id/:id", h.GetInstructor)
	router.PATCH("/api/v1/instructors/id/:id", h.UpdateInstructor)
	router.DELETE("/api/v1/instructors/id/:id", h.DeleteInstructor)
}
