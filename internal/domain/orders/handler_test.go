package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/diagnostic-center/dcms/internal/domain/catalog"
	"github.com/diagnostic-center/dcms/internal/split"
)

func newTestHandler() (*Handler, *mockCatalog, *echo.Echo) {
	svc, _, cat := newTestService()
	return NewHandler(svc), cat, echo.New()
}

func TestHandler_Create(t *testing.T) {
	h, cat, e := newTestHandler()
	docID := cat.addDoctor(&catalog.Doctor{Name: "Dr. Karim", Remuneration: 500})

	body := `{"kind":"appointment","patient_id":"` + uuid.New().String() +
		`","doctor_id":"` + docID.String() + `","total_amount":800}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var got Order
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.DoctorRevenue != 500 || got.HospitalRevenue != 300 {
		t.Errorf("split = %.2f/%.2f, want 300/500", got.HospitalRevenue, got.DoctorRevenue)
	}
}

func TestHandler_Create_SharesExceedTotal(t *testing.T) {
	h, cat, e := newTestHandler()
	docID := cat.addDoctor(&catalog.Doctor{Name: "Dr. Karim", Remuneration: 900})

	body := `{"kind":"appointment","patient_id":"` + uuid.New().String() +
		`","doctor_id":"` + docID.String() + `","total_amount":500}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 HTTPError, got %v", err)
	}
}

func TestHandler_Create_BadKind(t *testing.T) {
	h, _, e := newTestHandler()
	body := `{"kind":"walk-in","patient_id":"` + uuid.New().String() + `","total_amount":500}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404 HTTPError, got %v", err)
	}
}

func TestHandler_Create_UnknownDoctor(t *testing.T) {
	h, _, e := newTestHandler()
	body := `{"kind":"appointment","patient_id":"` + uuid.New().String() +
		`","doctor_id":"` + uuid.New().String() + `","total_amount":500}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_Create_PersistenceFailure(t *testing.T) {
	svc, repo, cat := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	docID := cat.addDoctor(&catalog.Doctor{Name: "Dr. Karim", Remuneration: 500})
	repo.createErr = errors.New("connection reset")

	body := `{"kind":"appointment","patient_id":"` + uuid.New().String() +
		`","doctor_id":"` + docID.String() + `","total_amount":800}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 HTTPError, got %v", err)
	}
}

func TestHandler_UpdateTotal(t *testing.T) {
	h, cat, e := newTestHandler()
	docID := cat.addDoctor(&catalog.Doctor{Name: "Dr. Karim", Remuneration: 500})
	o, err := h.svc.Create(context.Background(), &CreateOrderRequest{
		Kind:        split.KindAppointment,
		PatientID:   uuid.New(),
		DoctorID:    &docID,
		TotalAmount: 800,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	body := `{"total_amount":1200}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(o.ID.String())

	if err := h.UpdateTotal(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Order
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.TotalAmount != 1200 || got.HospitalRevenue != 700 {
		t.Errorf("got total %.2f hospital %.2f, want 1200/700", got.TotalAmount, got.HospitalRevenue)
	}
}

func TestHandler_List_BadFilter(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?patient_id=oops", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.List(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}
