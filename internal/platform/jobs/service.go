package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrpilot/internal/domain/compliance"
)

const JobComplianceScan = "compliance_scan"

type Service struct {
	DB         *pgxpool.Pool
	Compliance *compliance.Service
	queue      chan job
}

type job struct {
	Type     string
	TenantID string
	Run      func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, complianceSvc *compliance.Service) *Service {
	return &Service{
		DB:         db,
		Compliance: complianceSvc,
		queue:      make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context, scanInterval time.Duration) {
	go s.worker(ctx)
	if scanInterval > 0 {
		go s.scheduleScans(ctx, scanInterval)
	}
}

func (s *Service) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, j.TenantID, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleScans(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tenants, err := s.listTenants(ctx)
			if err != nil {
				slog.Warn("scan scheduler tenant lookup failed", "err", err)
				continue
			}
			for _, tenantID := range tenants {
				tenant := tenantID
				s.Enqueue(JobComplianceScan, tenant, func(ctx context.Context) (any, error) {
					alerts, err := s.Compliance.Run(ctx, tenant, "system")
					return map[string]any{"alerts": len(alerts)}, err
				})
			}
		}
	}
}

func (s *Service) listTenants(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT id FROM tenants`)
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
