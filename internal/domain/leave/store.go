package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("leave request not found")

// querier is satisfied by both the pool and a pgx.Tx, so writes can run
// standalone or inside a caller's transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateRequest(ctx context.Context, tenantID, employeeID string, start, end time.Time, reason string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (tenant_id, employee_id, start_date, end_date, reason, status)
    VALUES ($1,$2,$3,$4,$5,'PENDING')
    RETURNING id
  `, tenantID, employeeID, start, end, reason).Scan(&id)
	return id, err
}

func (s *Store) GetRequest(ctx context.Context, tenantID, requestID string) (LeaveRequest, error) {
	var req LeaveRequest
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, start_date, end_date, reason, status, created_at
    FROM leave_requests
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, requestID).Scan(&req.ID, &req.EmployeeID, &req.StartDate, &req.EndDate, &req.Reason, &req.Status, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveRequest{}, ErrNotFound
	}
	return req, err
}

func (s *Store) UpdateRequestStatus(ctx context.Context, tenantID, requestID, status string) error {
	return updateRequestStatus(ctx, s.DB, tenantID, requestID, status)
}

func updateRequestStatus(ctx context.Context, q querier, tenantID, requestID, status string) error {
	tag, err := q.Exec(ctx, `
    UPDATE leave_requests SET status = $1 WHERE tenant_id = $2 AND id = $3
  `, status, tenantID, requestID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) InsertDecision(ctx context.Context, tenantID string, rec DecisionRecord) (string, error) {
	return insertDecision(ctx, s.DB, tenantID, rec)
}

func insertDecision(ctx context.Context, q querier, tenantID string, rec DecisionRecord) (string, error) {
	var decidedBy any
	if rec.DecidedBy != "" {
		decidedBy = rec.DecidedBy
	}
	var id string
	err := q.QueryRow(ctx, `
    INSERT INTO hr_decisions (tenant_id, leave_request_id, status, reason, confidence, model_name, fast_tracked, overridden, decided_by, decided_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, tenantID, rec.LeaveRequestID, rec.Status, rec.Reason, rec.Confidence, rec.ModelName, rec.FastTracked, rec.Overridden, decidedBy, rec.DecidedAt).Scan(&id)
	return id, err
}

func (s *Store) LatestDecision(ctx context.Context, tenantID, requestID string) (DecisionRecord, error) {
	var rec DecisionRecord
	var decidedBy *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, leave_request_id, status, reason, confidence, model_name, fast_tracked, overridden, decided_by, decided_at
    FROM hr_decisions
    WHERE tenant_id = $1 AND leave_request_id = $2
    ORDER BY decided_at DESC
    LIMIT 1
  `, tenantID, requestID).Scan(&rec.ID, &rec.LeaveRequestID, &rec.Status, &rec.Reason, &rec.Confidence, &rec.ModelName, &rec.FastTracked, &rec.Overridden, &decidedBy, &rec.DecidedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return DecisionRecord{}, ErrNotFound
	}
	if err != nil {
		return DecisionRecord{}, err
	}
	if decidedBy != nil {
		rec.DecidedBy = *decidedBy
	}
	return rec, nil
}

func (s *Store) ListRequests(ctx context.Context, tenantID, employeeID, status string, limit, offset int) ([]LeaveRequest, int, error) {
	query := `
    SELECT id, employee_id, start_date, end_date, reason, status, created_at
    FROM leave_requests
    WHERE tenant_id = $1
  `
	countQuery := "SELECT COUNT(1) FROM leave_requests WHERE tenant_id = $1"
	args := []any{tenantID}
	if employeeID != "" {
		args = append(args, employeeID)
		cond := " AND employee_id = $2"
		query += cond
		countQuery += cond
	}
	if status != "" {
		args = append(args, status)
		cond := fmt.Sprintf(" AND status = $%d", len(args))
		query += cond
		countQuery += cond
	}

	var total int
	if err := s.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []LeaveRequest
	for rows.Next() {
		var req LeaveRequest
		if err := rows.Scan(&req.ID, &req.EmployeeID, &req.StartDate, &req.EndDate, &req.Reason, &req.Status, &req.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, req)
	}
	return out, total, nil
}
