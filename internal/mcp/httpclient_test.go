package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/meltforce/pulsefit/internal/catalog"
	"github.com/meltforce/pulsefit/internal/models"
	"github.com/meltforce/pulsefit/internal/storage"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestListWorkouts verifies the category filter is sent as a query param.
func TestListWorkouts(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("category"); got != "Core" {
				t.Errorf("category=%q, want Core", got)
			}
			writeTestJSON(t, w, catalog.Builtin().ByCategory(models.CategoryCore))
		},
	})
	defer ts.Close()

	workouts, err := NewHTTPClient(ts.URL).ListWorkouts(context.Background(), models.CategoryCore)
	if err != nil {
		t.Fatal(err)
	}
	if len(workouts) == 0 || workouts[0].Category != models.CategoryCore {
		t.Errorf("workouts = %+v", workouts)
	}
}

// TestGetWorkoutNotFound verifies a 404 maps to catalog.ErrNotFound.
func TestGetWorkoutNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts/42": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			writeTestJSON(t, w, map[string]string{"error": "workout not found"})
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).GetWorkout(context.Background(), "42")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestGetUserProfileAbsent verifies a missing profile is nil without error,
// matching the local store.
func TestGetUserProfileAbsent(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/profile": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
	})
	defer ts.Close()

	p, err := NewHTTPClient(ts.URL + "/").GetUserProfile(context.Background())
	if err != nil || p != nil {
		t.Errorf("GetUserProfile = %+v, %v; want nil, nil", p, err)
	}
}

// TestDashboard verifies the home aggregate is decoded.
func TestDashboard(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/home": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, storage.Dashboard{Greeting: "Good morning", Streak: 3, WeeklyActivity: make([]int, 7)})
		},
	})
	defer ts.Close()

	d, err := NewHTTPClient(ts.URL).Dashboard(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d.Greeting != "Good morning" || d.Streak != 3 {
		t.Errorf("dashboard = %+v", d)
	}
}

// TestListSessions verifies the limit param and record decoding.
func TestListSessions(t *testing.T) {
	id := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/history": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("limit=%q, want 5", got)
			}
			writeTestJSON(t, w, []models.SessionRecord{{ID: id, WorkoutID: "1", Completed: true}})
		},
	})
	defer ts.Close()

	recs, err := NewHTTPClient(ts.URL).ListSessions(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].ID != id || !recs[0].Completed {
		t.Errorf("records = %+v", recs)
	}
}

// TestServerError verifies non-200 responses surface as errors.
func TestServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/home": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	if _, err := NewHTTPClient(ts.URL).Dashboard(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
