package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dentora/clinic/internal/platform/auth"
)

func auditRequest(t *testing.T, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	ctx := context.WithValue(req.Context(), auth.UserIDKey, "user-1")
	ctx = context.WithValue(ctx, auth.StaffIDKey, "staff-1")
	ctx = context.WithValue(ctx, auth.UserRolesKey, []string{"DOCTOR"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAudit_RecordsAPIAccess(t *testing.T) {
	var captured *AuditEntry
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		captured = &entry
		return nil
	})

	c, _ := auditRequest(t, "/api/v1/records/abc/approve")
	h := Audit(zerolog.Nop(), recorder)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured == nil {
		t.Fatal("expected an audit entry")
	}
	if captured.Resource != "records" {
		t.Errorf("expected resource records, got %s", captured.Resource)
	}
	if captured.Action != "create" {
		t.Errorf("expected action create, got %s", captured.Action)
	}
	if captured.StaffID != "staff-1" {
		t.Errorf("expected staff-1, got %s", captured.StaffID)
	}
}

func TestAudit_SkipsNonAPIPaths(t *testing.T) {
	called := false
	recorder := AuditRecorderFunc(func(AuditEntry) error {
		called = true
		return nil
	})

	c, _ := auditRequest(t, "/health")
	h := Audit(zerolog.Nop(), recorder)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("health endpoint must not be audited")
	}
}

func TestHTTPMethodToAction(t *testing.T) {
	cases := map[string]string{
		http.MethodGet:    "read",
		http.MethodPost:   "create",
		http.MethodPut:    "update",
		http.MethodDelete: "delete",
	}
	for method, want := range cases {
		if got := httpMethodToAction(method); got != want {
			t.Errorf("%s: expected %s, got %s", method, want, got)
		}
	}
}

func TestExtractResource(t *testing.T) {
	cases := map[string]string{
		"/api/v1/records/1/approve": "records",
		"/api/v1/staff":             "staff",
		"/api/v1/":                  "unknown",
	}
	for path, want := range cases {
		if got := extractResource(path); got != want {
			t.Errorf("%s: expected %s, got %s", path, want, got)
		}
	}
}
