package leavehandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrpilot/internal/domain/auth"
	"hrpilot/internal/domain/leave"
	"hrpilot/internal/transport/http/api"
	"hrpilot/internal/transport/http/middleware"
	"hrpilot/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *leave.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/requests", h.handleListRequests)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/requests/{requestID}/decision", h.handleGetDecision)
		r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/requests", h.handleCreateRequest)
		r.With(middleware.RequirePermission(auth.PermLeaveOverride, h.Perms)).Post("/requests/{requestID}/override", h.handleOverride)
	})
}

type createRequestPayload struct {
	EmployeeID string `json:"employeeId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Reason     string `json:"reason"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employeeId is required")
	startDate, _ := v.Date("startDate", payload.StartDate)
	endDate, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", startDate, "endDate", endDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	result, err := h.Service.Create(r.Context(), user, leave.CreateInput{
		EmployeeID: payload.EmployeeID,
		StartDate:  startDate,
		EndDate:    endDate,
		Reason:     payload.Reason,
	})
	if errors.Is(err, leave.ErrValidation) {
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_request_failed", "failed to create leave request", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	requests, total, err := h.Service.List(r.Context(), user, r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"requests": requests, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	result, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "requestID"))
	if errors.Is(err, leave.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_get_failed", "failed to load leave request", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	rec, err := h.Service.Decision(r.Context(), user.TenantID, chi.URLParam(r, "requestID"))
	if errors.Is(err, leave.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "no decision recorded for this request", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "decision_get_failed", "failed to load decision", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

type overridePayload struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *Handler) handleOverride(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload overridePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	record, err := h.Service.Override(r.Context(), user, chi.URLParam(r, "requestID"), leave.OverrideInput{
		Status: payload.Status,
		Reason: payload.Reason,
		IP:     shared.ClientIP(r),
	})
	switch {
	case errors.Is(err, leave.ErrClearance):
		api.Fail(w, http.StatusForbidden, "clearance_required", "override requires elevated clearance", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, leave.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "override_failed", "failed to override decision", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, record, middleware.GetRequestID(r.Context()))
}
