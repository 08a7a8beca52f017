package records

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentora/clinic/internal/platform/auth"
)

func newRequest(t *testing.T, method, target, body string, staffID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	ctx := context.WithValue(req.Context(), auth.StaffIDKey, staffID.String())
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func TestHandlerCreateRecord(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	body := `{"appointment_id":"` + f.appointmentID.String() + `","title":"Filling","diagnosis":"Caries"}`
	c, rec := newRequest(t, http.MethodPost, "/api/v1/records", body, f.assistantID)

	if err := h.CreateRecord(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var created MedicalRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", created.Status)
	}
}

func TestHandlerCreateRecord_ValidationError(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	body := `{"appointment_id":"` + f.appointmentID.String() + `","diagnosis":"Caries"}`
	c, _ := newRequest(t, http.MethodPost, "/api/v1/records", body, f.assistantID)

	if code := httpStatus(t, h.CreateRecord(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandlerCreateRecord_InactiveCreator(t *testing.T) {
	f := newFixture()
	f.staff.activeStaff[f.assistantID] = false
	h := NewHandler(f.svc)

	body := `{"appointment_id":"` + f.appointmentID.String() + `","title":"Filling","diagnosis":"Caries"}`
	c, _ := newRequest(t, http.MethodPost, "/api/v1/records", body, f.assistantID)

	if code := httpStatus(t, h.CreateRecord(c)); code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", code)
	}
}

func TestHandlerCreateRecord_UnknownCreator(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	body := `{"appointment_id":"` + f.appointmentID.String() + `","title":"Filling","diagnosis":"Caries"}`
	c, _ := newRequest(t, http.MethodPost, "/api/v1/records", body, uuid.New())

	if code := httpStatus(t, h.CreateRecord(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestHandlerApprove(t *testing.T) {
	f := newFixture()
	record := f.createRecord(t)
	h := NewHandler(f.svc)

	c, rec := newRequest(t, http.MethodPost, "/api/v1/records/"+record.ID.String()+"/approve", "", f.doctorID)
	c.SetParamNames("id")
	c.SetParamValues(record.ID.String())

	if err := h.Approve(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandlerApprove_WrongDoctor(t *testing.T) {
	f := newFixture()
	record := f.createRecord(t)
	h := NewHandler(f.svc)

	other := uuid.New()
	f.staff.activeStaff[other] = true
	f.staff.activeDoctor[other] = true

	c, _ := newRequest(t, http.MethodPost, "/api/v1/records/"+record.ID.String()+"/approve", "", other)
	c.SetParamNames("id")
	c.SetParamValues(record.ID.String())

	err := h.Approve(c)
	if code := httpStatus(t, err); code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", code)
	}
	if he := err.(*echo.HTTPError); he.Message != reviewDeniedMsg {
		t.Errorf("expected opaque denial message, got %v", he.Message)
	}
}

func TestHandlerApprove_AlreadyReviewed(t *testing.T) {
	f := newFixture()
	record := f.createRecord(t)
	f.svc.Approve(context.Background(), record.ID, f.doctorID)
	h := NewHandler(f.svc)

	c, _ := newRequest(t, http.MethodPost, "/api/v1/records/"+record.ID.String()+"/approve", "", f.doctorID)
	c.SetParamNames("id")
	c.SetParamValues(record.ID.String())

	err := h.Approve(c)
	if code := httpStatus(t, err); code != http.StatusConflict {
		t.Errorf("expected 409, got %d", code)
	}
	if he := err.(*echo.HTTPError); he.Message != reviewDeniedMsg {
		t.Errorf("expected opaque denial message, got %v", he.Message)
	}
}

func TestHandlerApprove_NotFound(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	c, _ := newRequest(t, http.MethodPost, "/api/v1/records/"+uuid.NewString()+"/approve", "", f.doctorID)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	if code := httpStatus(t, h.Approve(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestHandlerReject_BlankReason(t *testing.T) {
	f := newFixture()
	record := f.createRecord(t)
	h := NewHandler(f.svc)

	c, _ := newRequest(t, http.MethodPost, "/api/v1/records/"+record.ID.String()+"/reject", `{"reason":"  "}`, f.doctorID)
	c.SetParamNames("id")
	c.SetParamValues(record.ID.String())

	if code := httpStatus(t, h.Reject(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandlerReject(t *testing.T) {
	f := newFixture()
	record := f.createRecord(t)
	h := NewHandler(f.svc)

	c, rec := newRequest(t, http.MethodPost, "/api/v1/records/"+record.ID.String()+"/reject", `{"reason":"missing x-ray"}`, f.doctorID)
	c.SetParamNames("id")
	c.SetParamValues(record.ID.String())

	if err := h.Reject(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var rejected MedicalRecord
	json.Unmarshal(rec.Body.Bytes(), &rejected)
	if rejected.Status != StatusRejected {
		t.Errorf("expected REJECTED, got %s", rejected.Status)
	}
}

func TestHandlerListForDoctor_FilterMapping(t *testing.T) {
	f := newFixture()
	record := f.createRecord(t)
	f.createRecord(t)
	f.svc.Approve(context.Background(), record.ID, f.doctorID)
	h := NewHandler(f.svc)

	c, rec := newRequest(t, http.MethodGet, "/api/v1/doctors/"+f.doctorID.String()+"/records?filter=pending", "", f.doctorID)
	c.SetParamNames("id")
	c.SetParamValues(f.doctorID.String())

	if err := h.ListForDoctor(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data  []MedicalRecord `json:"data"`
		Total int             `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("expected 1 pending record, got %d", resp.Total)
	}
}

func TestHandlerListForDoctor_BadFilter(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	c, _ := newRequest(t, http.MethodGet, "/api/v1/doctors/"+f.doctorID.String()+"/records?filter=done", "", f.doctorID)
	c.SetParamNames("id")
	c.SetParamValues(f.doctorID.String())

	if code := httpStatus(t, h.ListForDoctor(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandlerSummarize(t *testing.T) {
	f := newFixture()
	record := f.createRecord(t)
	f.createRecord(t)
	f.svc.Approve(context.Background(), record.ID, f.doctorID)
	h := NewHandler(f.svc)

	c, rec := newRequest(t, http.MethodGet, "/api/v1/doctors/"+f.doctorID.String()+"/records/summary", "", f.doctorID)
	c.SetParamNames("id")
	c.SetParamValues(f.doctorID.String())

	if err := h.Summarize(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var s ReviewSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if s.Total != 2 || s.Pending != 1 || s.Approved != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
}

func TestHandlerMissingStaffIdentity(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader("{}"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if code := httpStatus(t, h.CreateRecord(c)); code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", code)
	}
}
