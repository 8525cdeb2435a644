package leave

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"hrpilot/internal/agent"
	"hrpilot/internal/domain/auth"
	"hrpilot/internal/domain/hr"
	"hrpilot/internal/requestctx"
)

var ErrClearance = errors.New("insufficient clearance for override")

type AuditRecorder interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, metadata any) error
	RecordTx(ctx context.Context, tx pgx.Tx, tenantID, actorID, action, entityType, entityID, requestID, ip string, metadata any) error
}

type Service struct {
	Store     *Store
	Employees *hr.Store
	Agent     *agent.Dispatcher
	Audit     AuditRecorder

	DemoMode      bool
	FastTrackDays int
}

func NewService(store *Store, employees *hr.Store, dispatcher *agent.Dispatcher, audit AuditRecorder, demoMode bool, fastTrackDays int) *Service {
	return &Service{
		Store:         store,
		Employees:     employees,
		Agent:         dispatcher,
		Audit:         audit,
		DemoMode:      demoMode,
		FastTrackDays: fastTrackDays,
	}
}

type CreateInput struct {
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

// Create validates, persists and evaluates a leave request. Evaluation
// failures do not fail the call: they are stored as ERROR decisions so the
// request can be retried or decided manually.
func (s *Service) Create(ctx context.Context, actor auth.UserContext, input CreateInput) (RequestWithDecision, error) {
	if err := ValidateRequest(input.StartDate, input.EndDate, input.Reason); err != nil {
		return RequestWithDecision{}, err
	}
	employee, err := s.Employees.Get(ctx, actor.TenantID, input.EmployeeID)
	if err != nil {
		return RequestWithDecision{}, err
	}

	requestID, err := s.Store.CreateRequest(ctx, actor.TenantID, input.EmployeeID, input.StartDate, input.EndDate, input.Reason)
	if err != nil {
		return RequestWithDecision{}, err
	}

	days := RequestDays(input.StartDate, input.EndDate)
	var decision agent.Decision
	if agent.FastTrackEligible(input.StartDate, input.EndDate, s.FastTrackDays, s.DemoMode) {
		decision = agent.FastTrackDecision(time.Now())
	} else {
		decision, err = s.Agent.EvaluateLeave(ctx, agent.LeaveFacts{
			EmployeeID:      employee.ID,
			EmployeeName:    employee.Name,
			Role:            employee.Role,
			Department:      employee.Department,
			ExperienceLevel: employee.ExperienceLevel,
			LeaveBalance:    employee.LeaveBalance,
			StartDate:       input.StartDate,
			EndDate:         input.EndDate,
			Days:            days,
			Reason:          input.Reason,
		})
		if err != nil {
			slog.Warn("leave evaluation failed", "requestId", requestID, "err", err)
			decision = agent.Decision{
				Status:    agent.StatusError,
				Reason:    evaluationFailureReason(err),
				DecidedAt: time.Now().UTC(),
			}
		}
	}

	rec := DecisionRecord{
		LeaveRequestID: requestID,
		Status:         decision.Status,
		Reason:         decision.Reason,
		Confidence:     decision.Confidence,
		ModelName:      decision.ModelName,
		FastTracked:    decision.FastTracked,
		DecidedAt:      decision.DecidedAt,
	}
	rec.ID, err = s.Store.InsertDecision(ctx, actor.TenantID, rec)
	if err != nil {
		return RequestWithDecision{}, err
	}
	if err := s.Store.UpdateRequestStatus(ctx, actor.TenantID, requestID, decision.Status); err != nil {
		return RequestWithDecision{}, err
	}
	if decision.Status == agent.StatusApproved {
		if err := s.Employees.DeductBalance(ctx, actor.TenantID, employee.ID, days); err != nil {
			slog.Warn("balance deduction failed", "requestId", requestID, "employeeId", employee.ID, "err", err)
		}
	}

	if s.Audit != nil {
		auditErr := s.Audit.Record(ctx, actor.TenantID, actor.UserID, "leave.evaluated", "leave_request", requestID,
			requestctx.GetRequestID(ctx), "", map[string]any{
				"status":      decision.Status,
				"fastTracked": decision.FastTracked,
				"days":        days,
			})
		if auditErr != nil {
			slog.Warn("audit record failed", "action", "leave.evaluated", "err", auditErr)
		}
	}

	req, err := s.Store.GetRequest(ctx, actor.TenantID, requestID)
	if err != nil {
		return RequestWithDecision{}, err
	}
	return RequestWithDecision{LeaveRequest: req, Decision: &rec}, nil
}

// evaluationFailureReason keeps provider internals out of stored records
// while preserving the failure class and raw reply diagnostics in logs.
func evaluationFailureReason(err error) string {
	var malformed *agent.MalformedResponseError
	if errors.As(err, &malformed) {
		return "model response could not be parsed"
	}
	var provider *agent.ProviderError
	if errors.As(err, &provider) {
		return "model provider unavailable"
	}
	return "evaluation failed"
}

func (s *Service) Get(ctx context.Context, tenantID, requestID string) (RequestWithDecision, error) {
	req, err := s.Store.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		return RequestWithDecision{}, err
	}
	out := RequestWithDecision{LeaveRequest: req}
	if rec, err := s.Store.LatestDecision(ctx, tenantID, requestID); err == nil {
		out.Decision = &rec
	}
	return out, nil
}

// Decision returns the latest decision record for a request, confirming the
// request exists first so a missing request and a pending one read apart.
func (s *Service) Decision(ctx context.Context, tenantID, requestID string) (DecisionRecord, error) {
	if _, err := s.Store.GetRequest(ctx, tenantID, requestID); err != nil {
		return DecisionRecord{}, err
	}
	return s.Store.LatestDecision(ctx, tenantID, requestID)
}

func (s *Service) List(ctx context.Context, actor auth.UserContext, status string, limit, offset int) ([]LeaveRequest, int, error) {
	employeeFilter := ""
	if actor.RoleName == auth.RoleEmployee {
		id, err := s.Employees.EmployeeIDByUserID(ctx, actor.TenantID, actor.UserID)
		if errors.Is(err, hr.ErrNotFound) {
			// An account without a linked employee row has no requests of
			// its own; it must not fall through to the tenant-wide listing.
			return []LeaveRequest{}, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		employeeFilter = id
	}
	return s.Store.ListRequests(ctx, actor.TenantID, employeeFilter, strings.ToUpper(status), limit, offset)
}

type OverrideInput struct {
	Status string
	Reason string
	IP     string
}

// Override replaces the current decision with a human one. The actor needs
// override clearance and the audit record is mandatory: the decision row,
// status change and audit row commit in one transaction, so an override can
// never stand without its trail.
func (s *Service) Override(ctx context.Context, actor auth.UserContext, requestID string, input OverrideInput) (DecisionRecord, error) {
	if actor.Clearance < auth.ClearanceOverride {
		return DecisionRecord{}, ErrClearance
	}
	if err := ValidateOverrideStatus(input.Status); err != nil {
		return DecisionRecord{}, err
	}
	newStatus := strings.ToUpper(input.Status)

	req, err := s.Store.GetRequest(ctx, actor.TenantID, requestID)
	if err != nil {
		return DecisionRecord{}, err
	}
	previousStatus := req.Status

	tx, err := s.Store.DB.Begin(ctx)
	if err != nil {
		return DecisionRecord{}, err
	}
	defer tx.Rollback(ctx)

	rec := DecisionRecord{
		LeaveRequestID: requestID,
		Status:         newStatus,
		Reason:         input.Reason,
		Overridden:     true,
		DecidedBy:      actor.UserID,
		DecidedAt:      time.Now().UTC(),
	}
	rec.ID, err = insertDecision(ctx, tx, actor.TenantID, rec)
	if err != nil {
		return DecisionRecord{}, err
	}
	if err := updateRequestStatus(ctx, tx, actor.TenantID, requestID, newStatus); err != nil {
		return DecisionRecord{}, err
	}

	// Balance adjustments run in a savepoint: a failed adjustment (for
	// instance the non-negative balance check) is logged without voiding
	// the override itself.
	days := RequestDays(req.StartDate, req.EndDate)
	switch {
	case previousStatus == agent.StatusApproved && newStatus != agent.StatusApproved:
		if err := inSavepoint(ctx, tx, func(sp pgx.Tx) error {
			return s.Employees.RestoreBalanceTx(ctx, sp, actor.TenantID, req.EmployeeID, days)
		}); err != nil {
			slog.Warn("balance restore failed", "requestId", requestID, "err", err)
		}
	case previousStatus != agent.StatusApproved && newStatus == agent.StatusApproved:
		if err := inSavepoint(ctx, tx, func(sp pgx.Tx) error {
			return s.Employees.DeductBalanceTx(ctx, sp, actor.TenantID, req.EmployeeID, days)
		}); err != nil {
			slog.Warn("balance deduction failed", "requestId", requestID, "err", err)
		}
	}

	if err := s.Audit.RecordTx(ctx, tx, actor.TenantID, actor.UserID, "leave.overridden", "leave_request", requestID,
		requestctx.GetRequestID(ctx), input.IP, map[string]any{
			"previousStatus": previousStatus,
			"newStatus":      newStatus,
			"reason":         input.Reason,
		}); err != nil {
		return DecisionRecord{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return DecisionRecord{}, err
	}
	return rec, nil
}

// inSavepoint runs fn in a nested transaction so its failure rolls back only
// its own writes, leaving the outer transaction usable.
func inSavepoint(ctx context.Context, tx pgx.Tx, fn func(pgx.Tx) error) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(sp); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	return sp.Commit(ctx)
}
