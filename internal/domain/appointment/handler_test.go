package appointment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medbook/medbook/internal/platform/apperr"
	"github.com/medbook/medbook/internal/platform/auth"
	"github.com/medbook/medbook/internal/platform/validation"
)

func newTestHandler() (*Handler, fixture, *echo.Echo) {
	f := newFixture()
	e := echo.New()
	e.Validator = validation.New()
	return NewHandler(f.svc), f, e
}

func newContext(e *echo.Echo, method, target, body string, id *auth.Identity) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if id != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), *id))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
	}
	return he
}

const bookBody = `{"doctor_id":1,"appointment_date":"2025-03-01","appointment_time":"09:30","reason":"checkup"}`

func TestHandler_Book(t *testing.T) {
	h, _, e := newTestHandler()
	c, rec := newContext(e, http.MethodPost, "/", bookBody, &alice)

	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "Appointment created successfully" || body["appointmentId"] != float64(1) {
		t.Errorf("unexpected body %v", body)
	}
}

func TestHandler_Book_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing doctor": `{"appointment_date":"2025-03-01","appointment_time":"09:30"}`,
		"bad date":       `{"doctor_id":1,"appointment_date":"01/03/2025","appointment_time":"09:30"}`,
		"bad time":       `{"doctor_id":1,"appointment_date":"2025-03-01","appointment_time":"9.30am"}`,
		"malformed":      `{"doctor_id":`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			h, _, e := newTestHandler()
			c, _ := newContext(e, http.MethodPost, "/", body, &alice)
			he := httpError(t, h.Book(c))
			if he.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", he.Code)
			}
			if b, ok := he.Message.(apperr.Body); !ok || b.Error != apperr.KindValidation {
				t.Errorf("expected validation body, got %#v", he.Message)
			}
		})
	}
}

func TestHandler_Get(t *testing.T) {
	h, f, e := newTestHandler()
	id := book(t, f, alice, "2025-03-01", "09:00")
	f.repo.appts[id].DoctorName = "Dr. A"

	c, rec := newContext(e, http.MethodGet, "/", "", &alice)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got["status"] != "scheduled" || got["appointment_date"] != "2025-03-01" || got["doctor_name"] != "Dr. A" {
		t.Errorf("unexpected body %v", got)
	}
}

func TestHandler_Get_Errors(t *testing.T) {
	h, f, e := newTestHandler()
	book(t, f, alice, "2025-03-01", "09:00")

	tests := []struct {
		name  string
		param string
		id    auth.Identity
		code  int
	}{
		{"invalid id", "abc", alice, http.StatusBadRequest},
		{"zero id", "0", alice, http.StatusBadRequest},
		{"missing", "99", alice, http.StatusNotFound},
		{"other owner", "1", bob, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(e, http.MethodGet, "/", "", &tt.id)
			c.SetParamNames("id")
			c.SetParamValues(tt.param)
			if he := httpError(t, h.Get(c)); he.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, he.Code)
			}
		})
	}
}

func TestHandler_ListMine(t *testing.T) {
	h, f, e := newTestHandler()
	book(t, f, alice, "2025-03-01", "09:00")
	book(t, f, alice, "2025-03-02", "09:00")
	book(t, f, bob, "2025-03-03", "09:00")

	c, rec := newContext(e, http.MethodGet, "/?limit=1", "", &alice)
	if err := h.ListMine(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var items []Appointment
	json.Unmarshal(rec.Body.Bytes(), &items)
	if len(items) != 1 || items[0].Date != "2025-03-02" {
		t.Errorf("unexpected page %+v", items)
	}
}

func TestHandler_ListEmptyIsArray(t *testing.T) {
	h, _, e := newTestHandler()
	c, rec := newContext(e, http.MethodGet, "/", "", &admin)
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestHandler_ListByDoctor_Forbidden(t *testing.T) {
	h, _, e := newTestHandler()
	c, _ := newContext(e, http.MethodGet, "/", "", &alice)
	c.SetParamNames("doctorId")
	c.SetParamValues("1")
	if he := httpError(t, h.ListByDoctor(c)); he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", he.Code)
	}
}

func TestHandler_UpdateStatus(t *testing.T) {
	h, f, e := newTestHandler()
	book(t, f, alice, "2025-03-01", "09:00")

	c, rec := newContext(e, http.MethodPatch, "/", `{"status":"completed"}`, &alice)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Appointment status updated successfully") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	c, _ = newContext(e, http.MethodPatch, "/", `{"status":"scheduled"}`, &alice)
	c.SetParamNames("id")
	c.SetParamValues("1")
	he := httpError(t, h.UpdateStatus(c))
	if he.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", he.Code)
	}

	c, _ = newContext(e, http.MethodPatch, "/", `{"status":"pending"}`, &alice)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if he := httpError(t, h.UpdateStatus(c)); he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", he.Code)
	}
}

func TestHandler_Update(t *testing.T) {
	h, f, e := newTestHandler()
	book(t, f, alice, "2025-03-01", "09:00")

	c, rec := newContext(e, http.MethodPut, "/", `{"appointment_date":"2025-03-05"}`, &alice)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if a := f.repo.appts[1]; a.Date != "2025-03-05" || a.Time != "09:00" {
		t.Errorf("unexpected stored appointment %+v", a)
	}
}

func TestHandler_Delete(t *testing.T) {
	h, f, e := newTestHandler()
	book(t, f, alice, "2025-03-01", "09:00")

	c, rec := newContext(e, http.MethodDelete, "/", "", &alice)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Appointment deleted successfully") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	c, _ = newContext(e, http.MethodDelete, "/", "", &alice)
	c.SetParamNames("id")
	c.SetParamValues("1")
	he := httpError(t, h.Delete(c))
	if he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", he.Code)
	}
	if b, _ := he.Message.(apperr.Body); b.Message != "Appointment not found" {
		t.Errorf("unexpected message %q", b.Message)
	}
}
