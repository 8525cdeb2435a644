package leave

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrpilot/internal/domain/auth"
	"hrpilot/internal/domain/hr"
	"hrpilot/internal/platform/db"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	migrationsDir, err := db.FindMigrationsDir()
	if err != nil {
		t.Fatalf("locate migrations: %v", err)
	}
	if err := db.Migrate(context.Background(), pool, migrationsDir); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func createTenant(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	var id string
	name := fmt.Sprintf("leave-test-%d", time.Now().UnixNano())
	if err := pool.QueryRow(context.Background(), "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id); err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return id
}

func createUser(t *testing.T, pool *pgxpool.Pool, tenantID, roleName string) string {
	t.Helper()
	ctx := context.Background()
	var roleID string
	if err := pool.QueryRow(ctx, "INSERT INTO roles (tenant_id, name) VALUES ($1,$2) RETURNING id", tenantID, roleName).Scan(&roleID); err != nil {
		t.Fatalf("create role: %v", err)
	}
	var userID string
	if err := pool.QueryRow(ctx, `
    INSERT INTO users (tenant_id, role_id, email, password_hash, clearance_level)
    VALUES ($1,$2,$3,'x',3)
    RETURNING id
  `, tenantID, roleID, roleName+"@example.com").Scan(&userID); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return userID
}

func createEmployee(t *testing.T, pool *pgxpool.Pool, tenantID string, balance float64) string {
	t.Helper()
	store := hr.NewStore(pool)
	id, err := store.Create(context.Background(), tenantID, hr.Employee{
		Name:         fmt.Sprintf("Employee %d", time.Now().UnixNano()),
		Role:         "Engineer",
		Department:   "Platform",
		LeaveBalance: balance,
	})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	return id
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, string, string, string, string, string, string, string, any) error {
	return nil
}

func (noopAudit) RecordTx(context.Context, pgx.Tx, string, string, string, string, string, string, string, any) error {
	return nil
}

type failingAudit struct{}

func (failingAudit) Record(context.Context, string, string, string, string, string, string, string, any) error {
	return errors.New("audit store unavailable")
}

func (failingAudit) RecordTx(context.Context, pgx.Tx, string, string, string, string, string, string, string, any) error {
	return errors.New("audit store unavailable")
}

// A user with the employee role but no linked employee row must see an empty
// page, not the whole tenant's requests.
func TestListUnlinkedEmployeeAccountSeesNothing(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	tenantID := createTenant(t, pool)
	userID := createUser(t, pool, tenantID, auth.RoleEmployee)

	store := NewStore(pool)
	otherEmployee := createEmployee(t, pool, tenantID, 20)
	if _, err := store.CreateRequest(ctx, tenantID, otherEmployee, date("2024-03-04"), date("2024-03-05"), "trip"); err != nil {
		t.Fatalf("create request: %v", err)
	}

	svc := NewService(store, hr.NewStore(pool), nil, noopAudit{}, false, 3)
	actor := auth.UserContext{TenantID: tenantID, UserID: userID, RoleName: auth.RoleEmployee}
	requests, total, err := svc.List(ctx, actor, "", 50, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(requests) != 0 || total != 0 {
		t.Fatalf("unlinked account saw %d requests (total %d), want none", len(requests), total)
	}
}

// An override whose audit row cannot be written must leave no trace: no new
// decision, no status change, no balance movement.
func TestOverrideRollsBackWhenAuditFails(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	tenantID := createTenant(t, pool)
	userID := createUser(t, pool, tenantID, auth.RoleHR)
	employeeID := createEmployee(t, pool, tenantID, 20)

	store := NewStore(pool)
	requestID, err := store.CreateRequest(ctx, tenantID, employeeID, date("2024-01-02"), date("2024-01-03"), "trip")
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	empStore := hr.NewStore(pool)
	svc := NewService(store, empStore, nil, failingAudit{}, false, 3)
	actor := auth.UserContext{TenantID: tenantID, UserID: userID, RoleName: auth.RoleHR, Clearance: 3}

	if _, err := svc.Override(ctx, actor, requestID, OverrideInput{Status: "APPROVED", Reason: "covered"}); err == nil {
		t.Fatal("expected override to fail when audit write fails")
	}

	req, err := store.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if req.Status != "PENDING" {
		t.Fatalf("status = %q after failed override, want PENDING", req.Status)
	}
	if _, err := store.LatestDecision(ctx, tenantID, requestID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no decision row, got err %v", err)
	}
	emp, err := empStore.Get(ctx, tenantID, employeeID)
	if err != nil {
		t.Fatalf("get employee: %v", err)
	}
	if emp.LeaveBalance != 20 {
		t.Fatalf("balance = %v after failed override, want 20", emp.LeaveBalance)
	}
}

func TestOverrideCommitsDecisionStatusAndBalance(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	tenantID := createTenant(t, pool)
	userID := createUser(t, pool, tenantID, auth.RoleHR)
	employeeID := createEmployee(t, pool, tenantID, 20)

	store := NewStore(pool)
	requestID, err := store.CreateRequest(ctx, tenantID, employeeID, date("2024-01-02"), date("2024-01-03"), "trip")
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	empStore := hr.NewStore(pool)
	svc := NewService(store, empStore, nil, noopAudit{}, false, 3)
	actor := auth.UserContext{TenantID: tenantID, UserID: userID, RoleName: auth.RoleHR, Clearance: 3}

	rec, err := svc.Override(ctx, actor, requestID, OverrideInput{Status: "APPROVED", Reason: "covered"})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if !rec.Overridden || rec.Status != "APPROVED" {
		t.Fatalf("unexpected decision record: %+v", rec)
	}

	req, err := store.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if req.Status != "APPROVED" {
		t.Fatalf("status = %q, want APPROVED", req.Status)
	}
	emp, err := empStore.Get(ctx, tenantID, employeeID)
	if err != nil {
		t.Fatalf("get employee: %v", err)
	}
	if emp.LeaveBalance != 18 {
		t.Fatalf("balance = %v after approval of two business days, want 18", emp.LeaveBalance)
	}
}
