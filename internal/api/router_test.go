package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/aimatch/portal/internal/core/service"
	"github.com/aimatch/portal/internal/core/wizard"
	"github.com/aimatch/portal/internal/infrastructure/db/memory"
	"github.com/aimatch/portal/internal/infrastructure/marketplace"
	"github.com/aimatch/portal/internal/infrastructure/queue"
)

const testSecret = "test-secret"

// fakeMarketplace answers the subset of the marketplace API the portal
// calls. Once revoked, every authenticated call fails with 401.
type fakeMarketplace struct {
	revoked atomic.Bool
}

func (f *fakeMarketplace) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == "/api/v1/auth/login" {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch body["email"] {
		case "chen@example.com":
			_, _ = io.WriteString(w, `{"access_token":"supply-token","user":{"id":1,"email":"chen@example.com","role":"supply"}}`)
		case "root@example.com":
			_, _ = io.WriteString(w, `{"access_token":"admin-token","user":{"id":9,"email":"root@example.com","role":"admin"}}`)
		case "li@example.com":
			_, _ = io.WriteString(w, `{"access_token":"demand-token","user":{"id":2,"email":"li@example.com","role":"demand","enterprise_id":3}}`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Incorrect email or password"}`)
		}
		return
	}
	if f.revoked.Load() {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Could not validate credentials"}`)
		return
	}
	if r.URL.Path == "/api/v1/enterprises/3" {
		_, _ = io.WriteString(w, `{"id":3,"name":"Acme","qualification_status":"unverified","legal_person":"Li Wei"}`)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func newTestServer(t *testing.T) (*echo.Echo, *fakeMarketplace) {
	t.Helper()
	fake := &fakeMarketplace{}
	remote := httptest.NewServer(fake)
	t.Cleanup(remote.Close)

	log := zerolog.Nop()
	client, err := marketplace.NewClient(marketplace.Config{BaseURL: remote.URL + "/api/v1", Timeout: time.Second}, log)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	sessions := service.NewSessionService(memory.NewSessionStore(), client, testSecret, time.Hour, log)
	repo := memory.NewSubmissionRepository()
	auditor := queue.NewDispatcher(1, repo, log)
	ctx, cancel := context.WithCancel(context.Background())
	auditor.Start(ctx)
	t.Cleanup(func() {
		cancel()
		auditor.Wait()
	})
	wizards := service.NewWizardService(client, memory.NewSubmitLock(), auditor,
		wizard.Config{Scoring: wizard.DefaultScoring()}, service.WizardOptions{}, log)
	sessions.Subscribe(wizards.OnSessionEnded)

	reg := prometheus.NewRegistry()
	e := NewRouter(Deps{
		Sessions:    sessions,
		Enterprises: service.NewEnterpriseService(client, log),
		Wizards:     wizards,
		Submissions: service.NewSubmissionService(repo, log),
		JWTSecret:   testSecret,
		Logger:      log,
		Registerer:  reg,
		Gatherer:    reg,
	})
	return e, fake
}

func call(t *testing.T, e *echo.Echo, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: invalid json %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func login(t *testing.T, e *echo.Echo, email string) string {
	t.Helper()
	code, body := call(t, e, http.MethodPost, "/v1/auth/login", "", `{"email":"`+email+`","password":"pw"}`)
	if code != http.StatusOK {
		t.Fatalf("login %s: status %d %v", email, code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token", email)
	}
	return token
}

func TestRouter_Unauthenticated(t *testing.T) {
	e, _ := newTestServer(t)

	code, body := call(t, e, http.MethodGet, "/v1/me", "", "")
	if code != http.StatusUnauthorized || body["redirect"] != "/login" {
		t.Fatalf("expected 401 with redirect, got %d %v", code, body)
	}

	code, body = call(t, e, http.MethodPost, "/v1/auth/login", "", `{"email":"nobody@example.com","password":"pw"}`)
	if code != http.StatusUnauthorized || body["error"] != "invalid credentials" {
		t.Fatalf("expected invalid credentials, got %d %v", code, body)
	}

	if code, _ := call(t, e, http.MethodGet, "/health", "", ""); code != http.StatusOK {
		t.Fatalf("health: %d", code)
	}
}

func TestRouter_SupplyWizardFlow(t *testing.T) {
	e, _ := newTestServer(t)
	token := login(t, e, "chen@example.com")

	code, snap := call(t, e, http.MethodPost, "/v1/wizards", token, "")
	if code != http.StatusCreated {
		t.Fatalf("start: %d %v", code, snap)
	}
	id, _ := snap["id"].(string)
	base := "/v1/wizards/" + id

	code, body := call(t, e, http.MethodPost, base+"/next", token, "")
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("next on empty step: %d %v", code, body)
	}
	fields, _ := body["fields"].(map[string]any)
	if _, ok := fields["name"]; !ok {
		t.Fatalf("expected name error, got %v", body)
	}

	code, body = call(t, e, http.MethodPatch, base+"/values", token, `{"values":{"no_such_field":"x"}}`)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown field: %d %v", code, body)
	}

	code, body = call(t, e, http.MethodPost, base+"/submit", token, "")
	if code != http.StatusConflict {
		t.Fatalf("submit on first step: %d %v", code, body)
	}

	code, body = call(t, e, http.MethodGet, base, token, "")
	if code != http.StatusOK || body["step"] != float64(0) || body["status"] != "editing" {
		t.Fatalf("wizard must stay on step 0: %d %v", code, body)
	}

	if code, _ := call(t, e, http.MethodDelete, base, token, ""); code != http.StatusNoContent {
		t.Fatalf("abandon: %d", code)
	}
	if code, _ := call(t, e, http.MethodGet, base, token, ""); code != http.StatusNotFound {
		t.Fatalf("abandoned wizard: %d", code)
	}
}

func TestRouter_RoleGuards(t *testing.T) {
	e, _ := newTestServer(t)
	token := login(t, e, "chen@example.com")

	if code, body := call(t, e, http.MethodPost, "/v1/enterprises/3/verify?approve=true", token, ""); code != http.StatusForbidden {
		t.Fatalf("verify as supply: %d %v", code, body)
	}
	if code, body := call(t, e, http.MethodGet, "/v1/enterprises/3", token, ""); code != http.StatusForbidden {
		t.Fatalf("foreign enterprise: %d %v", code, body)
	}
}

func TestRouter_RemoteUnauthorizedEndsSession(t *testing.T) {
	e, fake := newTestServer(t)
	token := login(t, e, "li@example.com")

	code, snap := call(t, e, http.MethodPost, "/v1/wizards", token, "")
	if code != http.StatusCreated {
		t.Fatalf("start: %d %v", code, snap)
	}
	draft, _ := snap["draft"].(map[string]any)
	if draft["legal_person"] != "Li Wei" {
		t.Fatalf("draft not seeded from enterprise: %v", draft)
	}

	fake.revoked.Store(true)
	code, body := call(t, e, http.MethodGet, "/v1/enterprises/3", token, "")
	if code != http.StatusUnauthorized || body["redirect"] != "/login" {
		t.Fatalf("expected 401 with redirect, got %d %v", code, body)
	}

	if code, _ := call(t, e, http.MethodGet, "/v1/me", token, ""); code != http.StatusUnauthorized {
		t.Fatalf("session must be gone after remote 401, got %d", code)
	}
}

func TestRouter_SubmissionHistory(t *testing.T) {
	e, _ := newTestServer(t)
	supply := login(t, e, "chen@example.com")
	admin := login(t, e, "root@example.com")

	code, snap := call(t, e, http.MethodPost, "/v1/wizards", supply, "")
	if code != http.StatusCreated {
		t.Fatalf("start: %d %v", code, snap)
	}
	id, _ := snap["id"].(string)
	if code, body := call(t, e, http.MethodPost, "/v1/wizards/"+id+"/submit", supply, ""); code != http.StatusConflict {
		t.Fatalf("submit on first step: %d %v", code, body)
	}

	if code, body := call(t, e, http.MethodGet, "/v1/submissions?wizard_id="+id, supply, ""); code != http.StatusForbidden {
		t.Fatalf("history as supply: %d %v", code, body)
	}
	if code, body := call(t, e, http.MethodPost, "/v1/wizards", admin, ""); code != http.StatusForbidden {
		t.Fatalf("admin has no wizard: %d %v", code, body)
	}

	// Audit records are written asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for {
		code, body := call(t, e, http.MethodGet, "/v1/submissions?wizard_id="+id, admin, "")
		if code != http.StatusOK {
			t.Fatalf("history as admin: %d %v", code, body)
		}
		subs, _ := body["submissions"].([]any)
		if len(subs) == 1 {
			first, _ := subs[0].(map[string]any)
			if first["outcome"] != "blocked" {
				t.Fatalf("unexpected record: %v", first)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("audit record never appeared: %v", body)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
