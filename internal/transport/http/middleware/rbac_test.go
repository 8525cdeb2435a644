package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"hrpilot/internal/domain/auth"
)

type fakePerms struct {
	allowed map[string]bool
}

func (f *fakePerms) HasPermission(_ context.Context, _, permission string) (bool, error) {
	return f.allowed[permission], nil
}

func TestRequirePermissionAllows(t *testing.T) {
	perms := &fakePerms{allowed: map[string]bool{auth.PermLeaveRead: true}}
	handler := RequirePermission(auth.PermLeaveRead, perms)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	ctx := context.WithValue(context.Background(), ctxKeyUser, auth.UserContext{UserID: "u1", RoleID: "r1"})
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestRequirePermissionDenies(t *testing.T) {
	perms := &fakePerms{allowed: map[string]bool{}}
	handler := RequirePermission(auth.PermLeaveOverride, perms)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler should not run")
	}))

	ctx := context.WithValue(context.Background(), ctxKeyUser, auth.UserContext{UserID: "u1", RoleID: "r1"})
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequirePermissionUnauthenticated(t *testing.T) {
	perms := &fakePerms{allowed: map[string]bool{auth.PermLeaveRead: true}}
	handler := RequirePermission(auth.PermLeaveRead, perms)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
