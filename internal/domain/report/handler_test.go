package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *Service, *echo.Echo) {
	svc, _ := newTestService()
	return NewHandler(svc), svc, echo.New()
}

func TestHandler_SubmitRequest(t *testing.T) {
	h, _, e := newTestHandler()

	body := `{"report_definition_uuid":"def-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/report-requests", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SubmitRequest(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var created ReportRequest
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.UUID == "" || created.Status != StatusRequested {
		t.Errorf("expected initialized request, got %+v", created)
	}
}

func TestHandler_SubmitRequest_MissingDefinition(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/report-requests", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.SubmitRequest(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_GetRequest_NotFound(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("uuid")
	c.SetParamValues("missing")

	err := h.GetRequest(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_ListRequests_Paginated(t *testing.T) {
	h, svc, e := newTestHandler()
	submitN(t, svc, "def-1", 5)

	req := httptest.NewRequest(http.MethodGet, "/?definition=def-1&limit=2&offset=0", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListRequests(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data    []ReportRequest `json:"data"`
		Total   int             `json:"total"`
		HasMore bool            `json:"has_more"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Data) != 2 || resp.Total != 5 || !resp.HasMore {
		t.Errorf("expected page 2/5 with more, got %+v", resp)
	}
}

func TestHandler_ListRequests_BadDateFilter(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/?requested_from=not-a-date", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.ListRequests(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_DefinitionRoundTrip(t *testing.T) {
	h, _, e := newTestHandler()

	body := `{"name":"weekly census","description":"admissions by ward"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/report-definitions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SaveDefinition(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var created ReportDefinition
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.UUID == "" {
		t.Fatalf("expected populated identity, got %+v", created)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("uuid")
	c.SetParamValues(created.UUID)

	if err := h.GetDefinition(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var fetched ReportDefinition
	json.Unmarshal(rec.Body.Bytes(), &fetched)
	if fetched.Name != "weekly census" {
		t.Errorf("expected stored definition back, got %+v", fetched)
	}
}

func TestHandler_PurgeDefinition(t *testing.T) {
	h, svc, e := newTestHandler()
	submitN(t, svc, "def-1", 2)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("uuid")
	c.SetParamValues("def-1")

	if err := h.PurgeDefinition(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	remaining, total, err := svc.ListRequests(context.Background(), RequestFilter{DefinitionUUID: "def-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remaining) != 0 || total != 0 {
		t.Errorf("purge left %d/%d requests", len(remaining), total)
	}
}
