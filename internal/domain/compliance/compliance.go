package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrpilot/internal/agent"
	"hrpilot/internal/domain/hr"
	"hrpilot/internal/requestctx"
)

const (
	AlertOpen     = "OPEN"
	AlertResolved = "RESOLVED"
)

var (
	ErrNotFound   = errors.New("alert not found")
	ErrValidation = errors.New("validation failed")
)

type Alert struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Severity    string     `json:"severity"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DetectedAt  time.Time  `json:"detectedAt"`
	ResolvedBy  string     `json:"resolvedBy,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

type Filter struct {
	Status   string
	Severity string
}

type AuditRecorder interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, metadata any) error
}

type Service struct {
	DB        *pgxpool.Pool
	Employees *hr.Store
	Agent     *agent.Dispatcher
	Audit     AuditRecorder
}

func NewService(db *pgxpool.Pool, employees *hr.Store, dispatcher *agent.Dispatcher, audit AuditRecorder) *Service {
	return &Service{DB: db, Employees: employees, Agent: dispatcher, Audit: audit}
}

// Run gathers the tenant's work-hour and contract records, scans them and
// stores every finding as an open alert. Repeated runs over unchanged data
// may store duplicate alerts; findings carry no stable identity.
func (s *Service) Run(ctx context.Context, tenantID, actorID string) ([]Alert, error) {
	workHours, err := s.Employees.WorkHours(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	contracts, err := s.Employees.Contracts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	leaveIDs, err := s.openLeaveRequestIDs(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return s.RunWithFacts(ctx, tenantID, actorID, agent.ComplianceFacts{
		WorkHours:      workHours,
		Contracts:      contracts,
		LeaveRecordIDs: leaveIDs,
	})
}

// RunWithFacts scans caller-supplied facts instead of the stored records.
// Callers that hold fresher data than the database (payroll imports, external
// time-tracking) use this form.
func (s *Service) RunWithFacts(ctx context.Context, tenantID, actorID string, facts agent.ComplianceFacts) ([]Alert, error) {
	findings, err := s.Agent.ScanCompliance(ctx, facts)
	if err != nil {
		return nil, err
	}

	out := make([]Alert, 0, len(findings))
	for _, finding := range findings {
		alert := Alert{
			Type:        finding.Type,
			Severity:    finding.Severity,
			Description: finding.Description,
			Status:      AlertOpen,
			DetectedAt:  finding.DetectedAt,
		}
		if err := s.DB.QueryRow(ctx, `
      INSERT INTO compliance_alerts (tenant_id, alert_type, severity, description, status, detected_at)
      VALUES ($1,$2,$3,$4,$5,$6)
      RETURNING id
    `, tenantID, alert.Type, alert.Severity, alert.Description, alert.Status, alert.DetectedAt).Scan(&alert.ID); err != nil {
			return nil, err
		}
		out = append(out, alert)
	}

	if s.Audit != nil {
		auditErr := s.Audit.Record(ctx, tenantID, actorID, "compliance.scanned", "tenant", tenantID,
			requestctx.GetRequestID(ctx), "", map[string]any{"alerts": len(out)})
		if auditErr != nil {
			slog.Warn("audit record failed", "action", "compliance.scanned", "err", auditErr)
		}
	}
	return out, nil
}

func (s *Service) openLeaveRequestIDs(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id FROM leave_requests
    WHERE tenant_id = $1 AND status IN ('PENDING','FLAGGED')
    ORDER BY created_at
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) List(ctx context.Context, tenantID string, filter Filter, limit, offset int) ([]Alert, int, error) {
	query := `
    SELECT id, alert_type, severity, description, status, detected_at, COALESCE(resolved_by::text, ''), resolved_at
    FROM compliance_alerts
    WHERE tenant_id = $1
  `
	countQuery := "SELECT COUNT(1) FROM compliance_alerts WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.Status != "" {
		args = append(args, strings.ToUpper(filter.Status))
		cond := fmt.Sprintf(" AND status = $%d", len(args))
		query += cond
		countQuery += cond
	}
	if filter.Severity != "" {
		args = append(args, strings.ToUpper(filter.Severity))
		cond := fmt.Sprintf(" AND severity = $%d", len(args))
		query += cond
		countQuery += cond
	}

	var total int
	if err := s.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY detected_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		var alert Alert
		if err := rows.Scan(&alert.ID, &alert.Type, &alert.Severity, &alert.Description, &alert.Status, &alert.DetectedAt, &alert.ResolvedBy, &alert.ResolvedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, alert)
	}
	return out, total, nil
}

func (s *Service) Resolve(ctx context.Context, tenantID, alertID, actorID string) (Alert, error) {
	var alert Alert
	err := s.DB.QueryRow(ctx, `
    UPDATE compliance_alerts
    SET status = $1, resolved_by = $2, resolved_at = now()
    WHERE tenant_id = $3 AND id = $4 AND status = $5
    RETURNING id, alert_type, severity, description, status, detected_at, COALESCE(resolved_by::text, ''), resolved_at
  `, AlertResolved, actorID, tenantID, alertID, AlertOpen).Scan(
		&alert.ID, &alert.Type, &alert.Severity, &alert.Description, &alert.Status, &alert.DetectedAt, &alert.ResolvedBy, &alert.ResolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Alert{}, ErrNotFound
	}
	if err != nil {
		return Alert{}, err
	}

	if s.Audit != nil {
		auditErr := s.Audit.Record(ctx, tenantID, actorID, "compliance.resolved", "compliance_alert", alertID,
			requestctx.GetRequestID(ctx), "", nil)
		if auditErr != nil {
			slog.Warn("audit record failed", "action", "compliance.resolved", "err", auditErr)
		}
	}
	return alert, nil
}
