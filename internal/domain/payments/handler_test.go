package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo, *mockPatientRepo, *mockGateway) {
	svc, _, patRepo, gw := newTestService()
	return NewHandler(svc), echo.New(), patRepo, gw
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	principal := auth.Principal{UserID: uuid.New(), Username: "dr-jane", Role: auth.RoleReceptionist}
	req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	return e.NewContext(req, rec)
}

func TestHandler_Initiate(t *testing.T) {
	h, e, patRepo, _ := newTestHandler()
	p := addPatient(t, patRepo)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount": 500}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("patientID")
	c.SetParamValues(p.ID.String())

	if err := h.Initiate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}
}

func TestHandler_Initiate_PatientNotFound(t *testing.T) {
	h, e, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount": 500}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("patientID")
	c.SetParamValues(uuid.New().String())

	err := h.Initiate(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_Initiate_NoPrincipal(t *testing.T) {
	h, e, patRepo, _ := newTestHandler()
	p := addPatient(t, patRepo)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount": 500}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("patientID")
	c.SetParamValues(p.ID.String())

	err := h.Initiate(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestHandler_Initiate_GatewayDown(t *testing.T) {
	h, e, patRepo, gw := newTestHandler()
	p := addPatient(t, patRepo)
	gw.tokenErr = context.DeadlineExceeded

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount": 500}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("patientID")
	c.SetParamValues(p.ID.String())

	err := h.Initiate(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %v", err)
	}
}

func callbackRequest(e *echo.Echo, body string, rec *httptest.ResponseRecorder) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, rec)
}

func TestHandler_Callback_Success(t *testing.T) {
	h, e, patRepo, _ := newTestHandler()
	tx := initiated(t, h.service, patRepo)

	rec := httptest.NewRecorder()
	c := callbackRequest(e, string(successBody(tx.CheckoutRequestID, 500)), rec)

	if err := h.Callback(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Callback_ReplayAcknowledged(t *testing.T) {
	h, e, patRepo, _ := newTestHandler()
	tx := initiated(t, h.service, patRepo)

	rec := httptest.NewRecorder()
	c := callbackRequest(e, string(successBody(tx.CheckoutRequestID, 500)), rec)
	if err := h.Callback(c); err != nil {
		t.Fatalf("first callback: %v", err)
	}

	// The gateway retries until it gets a 200; replays must be acknowledged.
	rec = httptest.NewRecorder()
	c = callbackRequest(e, string(successBody(tx.CheckoutRequestID, 500)), rec)
	if err := h.Callback(c); err != nil {
		t.Fatalf("replayed callback: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for replay, got %d", rec.Code)
	}
}

func TestHandler_Callback_UnmatchedAcknowledged(t *testing.T) {
	h, e, _, _ := newTestHandler()

	rec := httptest.NewRecorder()
	c := callbackRequest(e, string(successBody("ws_CO_unknown", 500)), rec)
	if err := h.Callback(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for unmatched callback, got %d", rec.Code)
	}
}

func TestHandler_Callback_Malformed(t *testing.T) {
	h, e, _, _ := newTestHandler()

	rec := httptest.NewRecorder()
	c := callbackRequest(e, `{"Body":{}}`, rec)

	err := h.Callback(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_TotalPaid(t *testing.T) {
	h, e, patRepo, _ := newTestHandler()
	tx := initiated(t, h.service, patRepo)

	rec := httptest.NewRecorder()
	c := callbackRequest(e, string(successBody(tx.CheckoutRequestID, 500)), rec)
	if err := h.Callback(c); err != nil {
		t.Fatalf("callback: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = authedContext(e, req, rec)
	c.SetParamNames("patientID")
	c.SetParamValues(tx.PatientID.String())

	if err := h.TotalPaid(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "500") {
		t.Errorf("expected total 500 in body, got %s", rec.Body.String())
	}
}

func TestHandler_TotalPaidAll(t *testing.T) {
	h, e, patRepo, _ := newTestHandler()
	tx := initiated(t, h.service, patRepo)

	rec := httptest.NewRecorder()
	c := callbackRequest(e, string(successBody(tx.CheckoutRequestID, 750)), rec)
	if err := h.Callback(c); err != nil {
		t.Fatalf("callback: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = authedContext(e, req, rec)

	if err := h.TotalPaidAll(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "750") {
		t.Errorf("expected total 750 in body, got %s", rec.Body.String())
	}
}

func TestHandler_TotalPaidAllRouted(t *testing.T) {
	h, e, _, _ := newTestHandler()
	h.RegisterRoutes(e.Group("/api/v1"), auth.DefaultPolicy())

	principal := auth.Principal{UserID: uuid.New(), Username: "admin", Role: auth.RoleAdmin}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/total-paid", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from total-paid route, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "total_paid") {
		t.Errorf("expected total_paid in body, got %s", rec.Body.String())
	}
}
