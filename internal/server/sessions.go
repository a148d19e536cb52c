package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/pulsefit/internal/models"
	"github.com/meltforce/pulsefit/internal/session"
	"github.com/meltforce/pulsefit/internal/storage"
	"go.uber.org/multierr"
)

var (
	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions is returned by Create when MaxSessions are open.
	ErrTooManySessions = errors.New("too many open sessions")
)

const (
	// MaxSessions bounds the number of open sessions.
	MaxSessions = 64
	// SessionIdleTTL is how long a session may go without a command or a
	// tick before the reaper closes it.
	SessionIdleTTL = 30 * time.Minute
	// recordTimeout bounds recording a closed session, independent of the
	// request that closed it.
	recordTimeout = 10 * time.Second
)

// SessionView is a session snapshot tagged with its id.
type SessionView struct {
	ID uuid.UUID `json:"id"`
	session.Snapshot
}

type liveSession struct {
	workout models.Workout
	runner  *session.Runner
	// startedAt is zero until the session first leaves the idle phase.
	// Guarded by SessionManager.mu.
	startedAt time.Time
	lastSeen  atomic.Int64 // unix nanos
}

// SessionManager owns the workout sessions driven over the API. Each
// session runs on its own Runner with a one-second ticker.
type SessionManager struct {
	db       *storage.DB
	metrics  *Metrics
	log      *slog.Logger
	newTicks func() session.TickSource
	now      func() time.Time
	max      int
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*liveSession
}

// NewSessionManager creates an empty manager. Closed sessions are recorded
// to db.
func NewSessionManager(db *storage.DB, metrics *Metrics, log *slog.Logger) *SessionManager {
	return &SessionManager{
		db:       db,
		metrics:  metrics,
		log:      log,
		newTicks: func() session.TickSource { return session.NewTicker(time.Second) },
		now:      time.Now,
		max:      MaxSessions,
		ttl:      SessionIdleTTL,
		sessions: make(map[uuid.UUID]*liveSession),
	}
}

func (m *SessionManager) touch(ls *liveSession) {
	ls.lastSeen.Store(m.now().UnixNano())
}

// Create opens a paused session for w.
func (m *SessionManager) Create(w models.Workout) (SessionView, error) {
	id := uuid.New()
	fb := session.Multi{
		session.LogFeedback{Log: m.log, WorkoutID: w.ID},
		session.FeedbackFunc(func(session.Signal) {
			// Every signal closes a work or rest interval, the last one included.
			m.metrics.CounterIntervals.Inc()
		}),
	}
	ctrl, err := session.New(w, fb)
	if err != nil {
		return SessionView{}, err
	}
	snap := ctrl.Snapshot()

	m.mu.Lock()
	if len(m.sessions) >= m.max {
		m.mu.Unlock()
		return SessionView{}, ErrTooManySessions
	}
	ls := &liveSession{workout: w}
	m.touch(ls)
	ls.runner = session.NewRunner(ctrl, m.newTicks(), session.Hooks{
		OnTick: func(session.Snapshot) {
			m.touch(ls)
			m.metrics.CounterTicks.Inc()
		},
		OnComplete: func(s session.Snapshot) {
			m.metrics.CounterCompleted.Inc()
			m.log.Info("session complete", "session", id, "workout", w.ID, "elapsed", s.TotalElapsedSeconds)
		},
	})
	m.sessions[id] = ls
	m.mu.Unlock()
	m.metrics.ActiveSessions.Inc()

	m.log.Info("session opened", "session", id, "workout", w.ID)
	return SessionView{ID: id, Snapshot: snap}, nil
}

// Do applies cmd to the session with the given id.
func (m *SessionManager) Do(ctx context.Context, id uuid.UUID, cmd session.Command) (SessionView, error) {
	ls, ok := m.lookup(id)
	if !ok {
		return SessionView{}, ErrSessionNotFound
	}
	snap, err := ls.runner.Do(ctx, cmd)
	if errors.Is(err, session.ErrClosed) {
		return SessionView{}, ErrSessionNotFound
	}
	if err != nil {
		return SessionView{}, err
	}
	m.touch(ls)
	if snap.Phase != session.PhaseIdle {
		m.mu.Lock()
		if ls.startedAt.IsZero() {
			ls.startedAt = m.now()
		}
		m.mu.Unlock()
	}
	return SessionView{ID: id, Snapshot: snap}, nil
}

// Close stops the session, removes it and records it to history. A session
// that never ran is not recorded. Recording is not cancelled with ctx.
func (m *SessionManager) Close(ctx context.Context, id uuid.UUID) (SessionView, *models.SessionRecord, error) {
	m.mu.Lock()
	ls, ok := m.sessions[id]
	delete(m.sessions, id)
	var startedAt time.Time
	if ok {
		startedAt = ls.startedAt
	}
	m.mu.Unlock()
	if !ok {
		return SessionView{}, nil, ErrSessionNotFound
	}
	m.metrics.ActiveSessions.Dec()

	final := ls.runner.Close()
	view := SessionView{ID: id, Snapshot: final}
	if final.TotalElapsedSeconds == 0 {
		m.log.Info("session discarded", "session", id, "workout", ls.workout.ID)
		return view, nil, nil
	}

	endedAt := m.now()
	if startedAt.IsZero() {
		startedAt = endedAt.Add(-time.Duration(final.TotalElapsedSeconds) * time.Second)
	}
	rec := session.Record(ls.workout, final, startedAt, endedAt)
	rec.ID = id

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	rec, err := m.db.ApplySession(ctx, rec)
	if err != nil {
		return view, nil, fmt.Errorf("recording session %s: %w", id, err)
	}
	m.log.Info("session recorded", "session", id, "workout", rec.WorkoutID,
		"completed", rec.Completed, "elapsed", rec.ElapsedSeconds, "calories", rec.CaloriesBurned)
	return view, &rec, nil
}

// CloseAll closes every open session, recording each.
func (m *SessionManager) CloseAll(ctx context.Context) error {
	return m.closeMatching(ctx, func(*liveSession) bool { return true })
}

// Reap closes sessions that have seen neither a command nor a tick for
// longer than the idle TTL, recording those that ran. Playing sessions tick
// every second and are never idle. It returns the number closed.
func (m *SessionManager) Reap(ctx context.Context) (int, error) {
	cutoff := m.now().Add(-m.ttl).UnixNano()
	n := 0
	err := m.closeMatching(ctx, func(ls *liveSession) bool {
		if ls.lastSeen.Load() < cutoff {
			n++
			return true
		}
		return false
	})
	if n > 0 {
		m.log.Info("reaped idle sessions", "count", n)
	}
	return n, err
}

// RunReaper calls Reap every interval until ctx is done.
func (m *SessionManager) RunReaper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Reap(ctx); err != nil {
				m.log.Error("reaping sessions", "error", err)
			}
		}
	}
}

func (m *SessionManager) closeMatching(ctx context.Context, match func(*liveSession) bool) error {
	m.mu.Lock()
	var ids []uuid.UUID
	for id, ls := range m.sessions {
		if match(ls) {
			ids = append(ids, id)
		}
	}
	m.mu.Unlock()

	var errs error
	for _, id := range ids {
		if _, _, err := m.Close(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Len returns the number of open sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) lookup(id uuid.UUID) (*liveSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ls, ok := m.sessions[id]
	return ls, ok
}
