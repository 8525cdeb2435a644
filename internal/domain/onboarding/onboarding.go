package onboarding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jung-kurt/gofpdf"

	"hrpilot/internal/agent"
	"hrpilot/internal/domain/hr"
	"hrpilot/internal/requestctx"
)

var ErrNotFound = errors.New("onboarding plan not found")

type Plan struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employeeId"`
	DurationDays int             `json:"durationDays"`
	Days         []agent.PlanDay `json:"days"`
	ModelName    string          `json:"modelName,omitempty"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}

type AuditRecorder interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, metadata any) error
}

type Service struct {
	DB        *pgxpool.Pool
	Employees *hr.Store
	Agent     *agent.Dispatcher
	Audit     AuditRecorder

	DefaultDays int
}

func NewService(db *pgxpool.Pool, employees *hr.Store, dispatcher *agent.Dispatcher, audit AuditRecorder, defaultDays int) *Service {
	return &Service{DB: db, Employees: employees, Agent: dispatcher, Audit: audit, DefaultDays: defaultDays}
}

// Generate produces and stores a plan for the employee. A zero duration
// falls back to the configured default.
func (s *Service) Generate(ctx context.Context, tenantID, actorID, employeeID string, durationDays int) (Plan, error) {
	if durationDays <= 0 {
		durationDays = s.DefaultDays
	}
	employee, err := s.Employees.Get(ctx, tenantID, employeeID)
	if err != nil {
		return Plan{}, err
	}

	generated, err := s.Agent.GenerateOnboarding(ctx, agent.OnboardingFacts{
		EmployeeID:      employee.ID,
		EmployeeName:    employee.Name,
		Role:            employee.Role,
		Department:      employee.Department,
		ExperienceLevel: employee.ExperienceLevel,
		DurationDays:    durationDays,
	})
	if err != nil {
		return Plan{}, err
	}

	daysJSON, err := json.Marshal(generated.Days)
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{
		EmployeeID:   employee.ID,
		DurationDays: durationDays,
		Days:         generated.Days,
		ModelName:    generated.ModelName,
		GeneratedAt:  generated.GeneratedAt,
	}
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO onboarding_plans (tenant_id, employee_id, duration_days, days_json, model_name, generated_at)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, tenantID, employee.ID, durationDays, daysJSON, plan.ModelName, plan.GeneratedAt).Scan(&plan.ID); err != nil {
		return Plan{}, err
	}

	if s.Audit != nil {
		auditErr := s.Audit.Record(ctx, tenantID, actorID, "onboarding.generated", "onboarding_plan", plan.ID,
			requestctx.GetRequestID(ctx), "", map[string]any{"employeeId": employee.ID, "durationDays": durationDays})
		if auditErr != nil {
			slog.Warn("audit record failed", "action", "onboarding.generated", "err", auditErr)
		}
	}
	return plan, nil
}

func (s *Service) Get(ctx context.Context, tenantID, planID string) (Plan, error) {
	var plan Plan
	var daysJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, duration_days, days_json, model_name, generated_at
    FROM onboarding_plans
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, planID).Scan(&plan.ID, &plan.EmployeeID, &plan.DurationDays, &daysJSON, &plan.ModelName, &plan.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, ErrNotFound
	}
	if err != nil {
		return Plan{}, err
	}
	if err := json.Unmarshal(daysJSON, &plan.Days); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

func (s *Service) ListByEmployee(ctx context.Context, tenantID, employeeID string) ([]Plan, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, duration_days, days_json, model_name, generated_at
    FROM onboarding_plans
    WHERE tenant_id = $1 AND employee_id = $2
    ORDER BY generated_at DESC
  `, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Plan
	for rows.Next() {
		var plan Plan
		var daysJSON []byte
		if err := rows.Scan(&plan.ID, &plan.EmployeeID, &plan.DurationDays, &daysJSON, &plan.ModelName, &plan.GeneratedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(daysJSON, &plan.Days); err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	return out, nil
}

// ExportPDF renders a plan as a printable schedule.
func (s *Service) ExportPDF(ctx context.Context, tenantID, planID string) ([]byte, error) {
	plan, err := s.Get(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	employee, err := s.Employees.Get(ctx, tenantID, plan.EmployeeID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Onboarding Plan")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", employee.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Role: %s, %s", employee.Role, employee.Department))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Duration: %d days", plan.DurationDays))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", plan.GeneratedAt.Format("2006-01-02")))
	pdf.Ln(10)

	for _, day := range plan.Days {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Day %d", day.Day))
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		for _, activity := range day.Activities {
			pdf.MultiCell(0, 6, "- "+activity, "", "L", false)
		}
		if len(day.Goals) > 0 {
			pdf.SetFont("Helvetica", "I", 11)
			for _, goal := range day.Goals {
				pdf.MultiCell(0, 6, "Goal: "+goal, "", "L", false)
			}
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
