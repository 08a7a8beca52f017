package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRoles(e *echo.Echo, roles []string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRolesKey, roles)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestRequireRole_Allows(t *testing.T) {
	e := echo.New()
	called := false
	h := RequireRole("DOCTOR")(func(c echo.Context) error {
		called = true
		return nil
	})

	c := requestWithRoles(e, []string{"DOCTOR"})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
}

func TestRequireRole_AdminBypasses(t *testing.T) {
	e := echo.New()
	h := RequireRole("DOCTOR")(func(c echo.Context) error { return nil })

	c := requestWithRoles(e, []string{"ADMIN"})
	if err := h(c); err != nil {
		t.Errorf("expected admin to pass doctor gate, got %v", err)
	}
}

func TestRequireRole_Denies(t *testing.T) {
	e := echo.New()
	h := RequireRole("DOCTOR")(func(c echo.Context) error { return nil })

	c := requestWithRoles(e, []string{"RECEPTIONIST"})
	err := h(c)
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestRequireRole_AnyOf(t *testing.T) {
	e := echo.New()
	h := RequireRole("ASSISTANT", "RECEPTIONIST")(func(c echo.Context) error { return nil })

	c := requestWithRoles(e, []string{"RECEPTIONIST"})
	if err := h(c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequireRole_NoRoles(t *testing.T) {
	e := echo.New()
	h := RequireRole("DOCTOR")(func(c echo.Context) error { return nil })

	c := requestWithRoles(e, nil)
	if err := h(c); err == nil {
		t.Error("expected forbidden error for missing roles")
	}
}
