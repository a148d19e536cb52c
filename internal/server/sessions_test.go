package server

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/meltforce/pulsefit/internal/catalog"
	"github.com/meltforce/pulsefit/internal/models"
	"github.com/meltforce/pulsefit/internal/session"
)

// testClock is a settable clock safe to read from runner goroutines.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func withClock(e *testEnv) *testClock {
	c := &testClock{t: time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)}
	e.srv.sessions.now = c.Now
	return c
}

func builtinWorkout(t *testing.T, id string) models.Workout {
	t.Helper()
	w, err := catalog.Builtin().Get(id)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

// TestReapIdleSessions verifies sessions untouched past the idle TTL are
// closed, that commands and ticks keep a session alive, and that a reaped
// session which ran is recorded as abandoned.
func TestReapIdleSessions(t *testing.T) {
	e := newTestEnv(t, "")
	clock := withClock(e)
	m := e.srv.sessions
	ctx := context.Background()
	w := builtinWorkout(t, "1")

	idle, err := m.Create(w)
	if err != nil {
		t.Fatal(err)
	}
	clock.Advance(20 * time.Minute)
	busy, err := m.Create(w)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Do(ctx, busy.ID, session.CmdToggle); err != nil {
		t.Fatal(err)
	}

	clock.Advance(15 * time.Minute)
	if n, err := m.Reap(ctx); err != nil || n != 1 {
		t.Fatalf("Reap = %d, %v; want 1, nil", n, err)
	}
	if _, err := m.Do(ctx, idle.ID, session.CmdSnapshot); err != ErrSessionNotFound {
		t.Errorf("idle session err = %v, want ErrSessionNotFound", err)
	}
	if m.Len() != 1 {
		t.Fatalf("open sessions = %d, want 1", m.Len())
	}

	// A tick alone counts as activity.
	clock.Advance(20 * time.Minute)
	e.ticks.tick(t)
	ls, _ := m.lookup(busy.ID)
	if _, err := ls.runner.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}
	if n, _ := m.Reap(ctx); n != 0 {
		t.Errorf("Reap after tick = %d, want 0", n)
	}

	if _, err := m.Do(ctx, busy.ID, session.CmdPause); err != nil {
		t.Fatal(err)
	}
	clock.Advance(SessionIdleTTL + time.Minute)
	if n, _ := m.Reap(ctx); n != 1 {
		t.Fatalf("Reap of paused session = %d, want 1", n)
	}
	hist, err := e.db.ListSessions(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].ID != busy.ID || hist[0].Completed {
		t.Errorf("history = %+v, want the paused session as abandoned", hist)
	}
}

// TestSessionLimit verifies creation is refused once the limit is reached.
func TestSessionLimit(t *testing.T) {
	e := newTestEnv(t, "")
	e.srv.sessions.max = 1

	if code := e.do(t, http.MethodPost, "/api/v1/sessions", createSessionRequest{WorkoutID: "1"}, nil); code != http.StatusCreated {
		t.Fatalf("first create status = %d, want 201", code)
	}
	if code := e.do(t, http.MethodPost, "/api/v1/sessions", createSessionRequest{WorkoutID: "1"}, nil); code != http.StatusTooManyRequests {
		t.Errorf("second create status = %d, want 429", code)
	}
}

// TestStartedAtIsFirstStart verifies history starts a session when it was
// first played, not when it was opened.
func TestStartedAtIsFirstStart(t *testing.T) {
	e := newTestEnv(t, "")
	clock := withClock(e)
	m := e.srv.sessions
	ctx := context.Background()

	view, err := m.Create(builtinWorkout(t, "1"))
	if err != nil {
		t.Fatal(err)
	}
	// Skipping while idle does not start the session.
	clock.Advance(5 * time.Minute)
	if _, err := m.Do(ctx, view.ID, session.CmdNext); err != nil {
		t.Fatal(err)
	}
	clock.Advance(5 * time.Minute)
	wantStart := clock.Now()
	if _, err := m.Do(ctx, view.ID, session.CmdStart); err != nil {
		t.Fatal(err)
	}
	e.ticks.tick(t)
	clock.Advance(time.Minute)
	if _, err := m.Do(ctx, view.ID, session.CmdPause); err != nil {
		t.Fatal(err)
	}

	_, rec, err := m.Close(ctx, view.ID)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("no record for a played session")
	}
	if !rec.StartedAt.Equal(wantStart) {
		t.Errorf("started at = %v, want %v", rec.StartedAt, wantStart)
	}
	if !rec.EndedAt.Equal(wantStart.Add(time.Minute)) {
		t.Errorf("ended at = %v, want %v", rec.EndedAt, wantStart.Add(time.Minute))
	}
}

// TestCloseRecordsAfterCancel verifies a session is still recorded when the
// request that closed it has gone away.
func TestCloseRecordsAfterCancel(t *testing.T) {
	e := newTestEnv(t, "")
	m := e.srv.sessions

	view, err := m.Create(builtinWorkout(t, "1"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Do(context.Background(), view.ID, session.CmdStart); err != nil {
		t.Fatal(err)
	}
	e.ticks.tick(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, rec, err := m.Close(ctx, view.ID)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if rec == nil {
		t.Fatal("no record")
	}
	hist, _ := e.db.ListSessions(context.Background(), 0)
	if len(hist) != 1 {
		t.Errorf("history = %d rows, want 1", len(hist))
	}
}
