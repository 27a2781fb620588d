package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Maheen-M02/Event-Management/internal/config"
	"github.com/Maheen-M02/Event-Management/internal/events"
	"github.com/Maheen-M02/Event-Management/internal/models"
	"github.com/Maheen-M02/Event-Management/internal/session"
	"github.com/Maheen-M02/Event-Management/internal/supabase"
)

// backendStub emulates the slices of GoTrue and PostgREST this app consumes.
type backendStub struct {
	mu      sync.Mutex
	events  []models.Event
	nextID  int
	inserts int
	deletes int
}

func (b *backendStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "correct" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error_description":"Invalid login credentials"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"expires_in":    3600,
			"user":          map[string]string{"id": "user-1", "email": creds.Email},
		})
	})
	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "user-1", "email": "alice@example.com"})
	})
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/rest/v1/events", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")
		switch r.Method {
		case "HEAD":
			w.Header().Set("Content-Range", "0-0/"+strconv.Itoa(len(b.events)))
		case "GET":
			out := make([]models.Event, len(b.events))
			copy(out, b.events)
			sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
			json.NewEncoder(w).Encode(out)
		case "POST":
			b.inserts++
			var draft models.EventDraft
			json.NewDecoder(r.Body).Decode(&draft)
			b.nextID++
			ev := models.Event{
				ID: "ev-" + strconv.Itoa(b.nextID), Title: draft.Title, Date: draft.Date,
				Location: draft.Location, Description: draft.Description, UserID: "user-1",
			}
			b.events = append(b.events, ev)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode([]models.Event{ev})
		case "PATCH":
			var draft models.EventDraft
			json.NewDecoder(r.Body).Decode(&draft)
			for i := range b.events {
				if b.events[i].ID == id {
					b.events[i].Title = draft.Title
					b.events[i].Date = draft.Date
					b.events[i].Location = draft.Location
					b.events[i].Description = draft.Description
					json.NewEncoder(w).Encode([]models.Event{b.events[i]})
					return
				}
			}
			w.Write([]byte("[]"))
		case "DELETE":
			b.deletes++
			for i := range b.events {
				if b.events[i].ID == id {
					b.events = append(b.events[:i], b.events[i+1:]...)
					break
				}
			}
			w.WriteHeader(http.StatusNoContent)
		}
	})

	return mux
}

func (b *backendStub) counts() (inserts, deletes int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inserts, b.deletes
}

type fixture struct {
	backend *backendStub
	app     *httptest.Server
	client  *http.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := &backendStub{}
	backendSrv := httptest.NewServer(backend.handler())
	t.Cleanup(backendSrv.Close)

	cfg := &config.Config{
		SupabaseURL:     backendSrv.URL,
		SupabaseAnonKey: "anon",
	}
	cfg.Normalize()

	newClient := func() *supabase.Client {
		return supabase.New(supabase.Config{URL: cfg.SupabaseURL, AnonKey: cfg.SupabaseAnonKey})
	}
	registry := session.NewRegistry(newClient, cfg.SessionTTL(), nil)
	probe := events.NewProbe(newClient(), nil)

	srv := NewServer(cfg, registry, probe, nil)
	app := httptest.NewServer(srv.Handler())
	t.Cleanup(app.Close)

	jar, _ := cookiejar.New(nil)
	return &fixture{
		backend: backend,
		app:     app,
		client:  &http.Client{Jar: jar},
	}
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := f.client.Get(f.app.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, string(body)
}

func (f *fixture) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := f.client.PostForm(f.app.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, string(body)
}

func (f *fixture) signIn(t *testing.T) {
	t.Helper()
	resp, body := f.post(t, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"correct"},
	})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "alice@example.com") {
		t.Fatalf("sign-in did not land on events page: status=%d", resp.StatusCode)
	}
}

func TestUnauthenticatedIsRedirectedToLogin(t *testing.T) {
	f := newFixture(t)
	resp, body := f.get(t, "/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Sign In") {
		t.Fatalf("expected the login page, got status %d", resp.StatusCode)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	resp, body := f.post(t, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrong"},
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid login credentials") {
		t.Fatal("service error message not surfaced")
	}
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	f := newFixture(t)
	resp, body := f.post(t, "/login", url.Values{"email": {"not-an-email"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(body, "required") {
		t.Fatal("validation message missing")
	}
}

func TestEmptyCollectionShowsZeroState(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	_, body := f.get(t, "/")
	if !strings.Contains(body, "No Events Yet") || !strings.Contains(body, "Create Your First Event") {
		t.Fatal("zero state with call-to-action missing")
	}

	// The call-to-action opens the form in creating mode, fields empty.
	_, body = f.get(t, "/events/new")
	if !strings.Contains(body, "New Event</h2>") {
		t.Fatal("create form not open")
	}
}

func TestCreateEditDeleteRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	_, body := f.post(t, "/events", url.Values{
		"title":       {"Launch"},
		"date":        {"2025-03-01T10:00"},
		"location":    {"HQ"},
		"description": {"Kickoff"},
	})
	if !strings.Contains(body, "Launch") || !strings.Contains(body, "HQ") {
		t.Fatal("created event not on the page")
	}

	// Edit pre-fills the form with the stored values.
	_, body = f.get(t, "/events/ev-1/edit")
	for _, want := range []string{`value="Launch"`, `value="2025-03-01T10:00"`, `value="HQ"`, "Kickoff"} {
		if !strings.Contains(body, want) {
			t.Fatalf("edit form not pre-filled, missing %s", want)
		}
	}

	// Change only the location; everything else survives.
	_, body = f.post(t, "/events/ev-1", url.Values{
		"title":       {"Launch"},
		"date":        {"2025-03-01T10:00"},
		"location":    {"Remote"},
		"description": {"Kickoff"},
	})
	if !strings.Contains(body, "Remote") || !strings.Contains(body, "Launch") || !strings.Contains(body, "Kickoff") {
		t.Fatal("update lost fields")
	}

	// Delete without confirmation is a no-op.
	_, body = f.post(t, "/events/ev-1/delete", url.Values{})
	if _, deletes := f.backend.counts(); deletes != 0 {
		t.Fatal("unconfirmed delete reached the backend")
	}
	if !strings.Contains(body, "Launch") {
		t.Fatal("unconfirmed delete changed the list")
	}

	_, body = f.post(t, "/events/ev-1/delete", url.Values{"confirm": {"yes"}})
	if _, deletes := f.backend.counts(); deletes != 1 {
		t.Fatal("confirmed delete did not reach the backend")
	}
	if strings.Contains(body, `value="Launch"`) || strings.Contains(body, "<h3>Launch</h3>") {
		t.Fatal("deleted event still on the page")
	}
}

func TestEmptyTitleIsBlockedLocally(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	f.get(t, "/events/new")

	resp, body := f.post(t, "/events", url.Values{
		"date": {"2025-03-01T10:00"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(body, "Title and date are required") {
		t.Fatal("validation message missing")
	}
	if inserts, _ := f.backend.counts(); inserts != 0 {
		t.Fatal("blocked submission still hit the backend")
	}
}

func TestLogoutEndsTheSession(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	resp, body := f.post(t, "/logout", url.Values{})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Sign In") {
		t.Fatal("logout should land on the login page")
	}

	_, body = f.get(t, "/")
	if !strings.Contains(body, "Sign In") {
		t.Fatal("old cookie still grants access")
	}
}

func TestStatusProbeEndpoint(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/api/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("bad status payload: %v", err)
	}
	if out.Status != "connected" {
		t.Fatalf("probe status = %q, want connected", out.Status)
	}

	resp, _ = f.post(t, "/api/status/retry", url.Values{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("retry status = %d", resp.StatusCode)
	}
}
