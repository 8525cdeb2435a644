package employeeshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrpilot/internal/domain/auth"
	"hrpilot/internal/domain/hr"
	"hrpilot/internal/transport/http/api"
	"hrpilot/internal/transport/http/middleware"
	"hrpilot/internal/transport/http/shared"
)

type Handler struct {
	Store *hr.Store
	Perms middleware.PermissionStore
}

func NewHandler(store *hr.Store, perms middleware.PermissionStore) *Handler {
	return &Handler{Store: store, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/{employeeID}/work-hours", h.handleRecordWorkHours)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	employees, total, err := h.Store.List(r.Context(), user.TenantID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"employees": employees, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	employee, err := h.Store.Get(r.Context(), user.TenantID, chi.URLParam(r, "employeeID"))
	if errors.Is(err, hr.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employee, middleware.GetRequestID(r.Context()))
}

type createPayload struct {
	Name            string  `json:"name"`
	Role            string  `json:"role"`
	Department      string  `json:"department"`
	ExperienceLevel string  `json:"experienceLevel"`
	LeaveBalance    float64 `json:"leaveBalance"`
	UserID          string  `json:"userId"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if payload.LeaveBalance < 0 {
		v.Add("leaveBalance", "must not be negative")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.Create(r.Context(), user.TenantID, hr.Employee{
		Name:            strings.TrimSpace(payload.Name),
		Role:            payload.Role,
		Department:      payload.Department,
		ExperienceLevel: payload.ExperienceLevel,
		LeaveBalance:    payload.LeaveBalance,
		UserID:          payload.UserID,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

type workHoursPayload struct {
	WeekStart string  `json:"weekStart"`
	Hours     float64 `json:"hours"`
}

func (h *Handler) handleRecordWorkHours(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload workHoursPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	weekStart, _ := v.Date("weekStart", payload.WeekStart)
	if payload.Hours < 0 || payload.Hours > 168 {
		v.Add("hours", "must be between 0 and 168")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Store.RecordWorkHours(r.Context(), user.TenantID, chi.URLParam(r, "employeeID"), weekStart, payload.Hours); err != nil {
		api.Fail(w, http.StatusInternalServerError, "work_hours_failed", "failed to record work hours", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"status": "recorded"}, middleware.GetRequestID(r.Context()))
}
