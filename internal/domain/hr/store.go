package hr

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("employee not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, tenantID string, payload Employee) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (tenant_id, user_id, name, role, department, experience_level, leave_balance)
    VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7)
    RETURNING id
  `, tenantID, payload.UserID, payload.Name, payload.Role, payload.Department, payload.ExperienceLevel, payload.LeaveBalance).Scan(&id)
	return id, err
}

func (s *Store) Get(ctx context.Context, tenantID, employeeID string) (Employee, error) {
	var emp Employee
	var userID *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_id, name, role, department, experience_level, leave_balance, created_at
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&emp.ID, &userID, &emp.Name, &emp.Role, &emp.Department, &emp.ExperienceLevel, &emp.LeaveBalance, &emp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	if userID != nil {
		emp.UserID = *userID
	}
	return emp, nil
}

func (s *Store) List(ctx context.Context, tenantID string, limit, offset int) ([]Employee, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM employees WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, name, role, department, experience_level, leave_balance, created_at
    FROM employees
    WHERE tenant_id = $1
    ORDER BY name
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var emp Employee
		var userID *string
		if err := rows.Scan(&emp.ID, &userID, &emp.Name, &emp.Role, &emp.Department, &emp.ExperienceLevel, &emp.LeaveBalance, &emp.CreatedAt); err != nil {
			return nil, 0, err
		}
		if userID != nil {
			emp.UserID = *userID
		}
		out = append(out, emp)
	}
	return out, total, nil
}

// EmployeeIDByUserID resolves the employee row linked to a user account.
// Accounts without a linked employee get ErrNotFound so callers scope down
// rather than silently widening to the whole tenant.
func (s *Store) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    SELECT id FROM employees WHERE tenant_id = $1 AND user_id = $2
  `, tenantID, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DeductBalance subtracts approved leave days; the check constraint rejects
// negative balances so races surface as errors rather than overdrafts.
func (s *Store) DeductBalance(ctx context.Context, tenantID, employeeID string, days float64) error {
	return deductBalance(ctx, s.DB, tenantID, employeeID, days)
}

// DeductBalanceTx is DeductBalance inside the caller's transaction.
func (s *Store) DeductBalanceTx(ctx context.Context, tx pgx.Tx, tenantID, employeeID string, days float64) error {
	return deductBalance(ctx, tx, tenantID, employeeID, days)
}

func deductBalance(ctx context.Context, q execer, tenantID, employeeID string, days float64) error {
	tag, err := q.Exec(ctx, `
    UPDATE employees
    SET leave_balance = leave_balance - $1
    WHERE tenant_id = $2 AND id = $3
  `, days, tenantID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RestoreBalance credits days back after a decision is overridden to denied.
func (s *Store) RestoreBalance(ctx context.Context, tenantID, employeeID string, days float64) error {
	return restoreBalance(ctx, s.DB, tenantID, employeeID, days)
}

// RestoreBalanceTx is RestoreBalance inside the caller's transaction.
func (s *Store) RestoreBalanceTx(ctx context.Context, tx pgx.Tx, tenantID, employeeID string, days float64) error {
	return restoreBalance(ctx, tx, tenantID, employeeID, days)
}

func restoreBalance(ctx context.Context, q execer, tenantID, employeeID string, days float64) error {
	_, err := q.Exec(ctx, `
    UPDATE employees
    SET leave_balance = leave_balance + $1
    WHERE tenant_id = $2 AND id = $3
  `, days, tenantID, employeeID)
	return err
}

// WorkHours returns the most recent weekly hours per employee, keyed by
// employee id, for the compliance scan.
func (s *Store) WorkHours(ctx context.Context, tenantID string) (map[string]float64, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT ON (employee_id) employee_id, hours
    FROM work_hour_records
    WHERE tenant_id = $1
    ORDER BY employee_id, week_start DESC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hours := make(map[string]float64)
	for rows.Next() {
		var id string
		var weekly float64
		if err := rows.Scan(&id, &weekly); err != nil {
			return nil, err
		}
		hours[id] = weekly
	}
	return hours, nil
}

func (s *Store) RecordWorkHours(ctx context.Context, tenantID, employeeID string, weekStart time.Time, hours float64) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO work_hour_records (tenant_id, employee_id, week_start, hours)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (employee_id, week_start) DO UPDATE SET hours = EXCLUDED.hours
  `, tenantID, employeeID, weekStart, hours)
	return err
}

// Contracts returns contract text per employee id for the compliance scan.
func (s *Store) Contracts(ctx context.Context, tenantID string) (map[string]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT ON (employee_id) employee_id, body
    FROM contracts
    WHERE tenant_id = $1
    ORDER BY employee_id, created_at DESC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contracts := make(map[string]string)
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		contracts[id] = body
	}
	return contracts, nil
}
