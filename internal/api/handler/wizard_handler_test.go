package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/wizard"
)

type stubWizardService struct {
	lastID     string
	lastValues wizard.Values
	lastGroup  string
	lastIndex  int
	lastEntry  json.RawMessage
	err        error
}

func (s *stubWizardService) snap(id string) (wizard.Snapshot, error) {
	s.lastID = id
	if s.err != nil {
		return wizard.Snapshot{}, s.err
	}
	return wizard.Snapshot{ID: id, Status: wizard.StatusEditing}, nil
}

func (s *stubWizardService) Start(context.Context, domain.Session) (wizard.Snapshot, error) {
	return s.snap("new")
}

func (s *stubWizardService) Get(_ domain.Session, id string) (wizard.Snapshot, error) {
	return s.snap(id)
}

func (s *stubWizardService) Edit(_ domain.Session, id string, v wizard.Values) (wizard.Snapshot, error) {
	s.lastValues = v
	return s.snap(id)
}

func (s *stubWizardService) Next(_ domain.Session, id string, v wizard.Values) (wizard.Snapshot, error) {
	s.lastValues = v
	return s.snap(id)
}

func (s *stubWizardService) Previous(_ domain.Session, id string, v wizard.Values) (wizard.Snapshot, error) {
	s.lastValues = v
	return s.snap(id)
}

func (s *stubWizardService) Preview(_ domain.Session, id string, v wizard.Values) (wizard.Preview, error) {
	s.lastID, s.lastValues = id, v
	return wizard.Preview{Kind: domain.WizardSupplyRegistration}, s.err
}

func (s *stubWizardService) Submit(_ context.Context, _ domain.Session, id string, v wizard.Values) (wizard.Snapshot, error) {
	s.lastValues = v
	return s.snap(id)
}

func (s *stubWizardService) AddEntry(_ domain.Session, id, group string, entry json.RawMessage) (wizard.Snapshot, error) {
	s.lastGroup, s.lastEntry = group, entry
	return s.snap(id)
}

func (s *stubWizardService) RemoveEntry(_ domain.Session, id, group string, index int) (wizard.Snapshot, error) {
	s.lastGroup, s.lastIndex = group, index
	return s.snap(id)
}

func (s *stubWizardService) Abandon(_ domain.Session, id string) error {
	s.lastID = id
	return s.err
}

func wizardContext(t *testing.T, method, target, body string, names []string, values []string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := newEcho()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := withSession(e.NewContext(req, rec), domain.Session{ID: "s1", Role: domain.RoleSupply})
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func TestWizardHandler_EditBindsValues(t *testing.T) {
	stub := &stubWizardService{}
	h := NewWizardHandler(stub)
	c, rec := wizardContext(t, http.MethodPatch, "/v1/wizards/w1/values",
		`{"values":{"name":"Acme AI","team_size":12}}`, []string{"id"}, []string{"w1"})

	if err := h.Edit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || stub.lastID != "w1" {
		t.Fatalf("unexpected response %d for %s", rec.Code, stub.lastID)
	}
	if string(stub.lastValues["name"]) != `"Acme AI"` || string(stub.lastValues["team_size"]) != "12" {
		t.Fatalf("values not bound: %v", stub.lastValues)
	}
}

func TestWizardHandler_NextWithoutBody(t *testing.T) {
	stub := &stubWizardService{}
	h := NewWizardHandler(stub)
	c, rec := wizardContext(t, http.MethodPost, "/v1/wizards/w1/next", "", []string{"id"}, []string{"w1"})

	if err := h.Next(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || stub.lastValues != nil {
		t.Fatalf("expected no values, got %v", stub.lastValues)
	}
}

func TestWizardHandler_StartReturnsCreated(t *testing.T) {
	h := NewWizardHandler(&stubWizardService{})
	c, rec := wizardContext(t, http.MethodPost, "/v1/wizards", "", nil, nil)

	if err := h.Start(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestWizardHandler_AddEntry(t *testing.T) {
	stub := &stubWizardService{}
	h := NewWizardHandler(stub)
	c, _ := wizardContext(t, http.MethodPost, "/v1/wizards/w1/groups/success_cases",
		`{"entry":{"title":"Defect detection"}}`, []string{"id", "group"}, []string{"w1", "success_cases"})

	if err := h.AddEntry(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastGroup != "success_cases" || !strings.Contains(string(stub.lastEntry), "Defect detection") {
		t.Fatalf("unexpected entry: %s %s", stub.lastGroup, stub.lastEntry)
	}
}

func TestWizardHandler_RemoveEntry(t *testing.T) {
	stub := &stubWizardService{}
	h := NewWizardHandler(stub)

	c, _ := wizardContext(t, http.MethodDelete, "/v1/wizards/w1/groups/capability_details/2", "",
		[]string{"id", "group", "index"}, []string{"w1", "capability_details", "2"})
	if err := h.RemoveEntry(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastGroup != "capability_details" || stub.lastIndex != 2 {
		t.Fatalf("unexpected removal: %s[%d]", stub.lastGroup, stub.lastIndex)
	}

	c, _ = wizardContext(t, http.MethodDelete, "/v1/wizards/w1/groups/capability_details/x", "",
		[]string{"id", "group", "index"}, []string{"w1", "capability_details", "x"})
	err := h.RemoveEntry(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad index, got %v", err)
	}
}

func TestWizardHandler_PropagatesServiceErrors(t *testing.T) {
	stub := &stubWizardService{err: domain.ErrCompletenessBelowThreshold}
	h := NewWizardHandler(stub)
	c, _ := wizardContext(t, http.MethodPost, "/v1/wizards/w1/submit", "", []string{"id"}, []string{"w1"})

	if err := h.Submit(c); !errors.Is(err, domain.ErrCompletenessBelowThreshold) {
		t.Fatalf("expected ErrCompletenessBelowThreshold, got %v", err)
	}
}

func TestWizardHandler_Abandon(t *testing.T) {
	stub := &stubWizardService{}
	h := NewWizardHandler(stub)
	c, rec := wizardContext(t, http.MethodDelete, "/v1/wizards/w1", "", []string{"id"}, []string{"w1"})

	if err := h.Abandon(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || stub.lastID != "w1" {
		t.Fatalf("unexpected response %d for %s", rec.Code, stub.lastID)
	}
}
