package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/pulsefit/internal/models"
)

// openTestDB opens a migrated SQLite database in a temp dir with a fixed clock.
func openTestDB(t *testing.T, now time.Time) *DB {
	t.Helper()
	db, err := Open(context.Background(), Options{
		Driver:     DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "data", "pulsefit.db"),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	db.now = func() time.Time { return now }
	t.Cleanup(func() { db.Close() })
	return db
}

var monday = time.Date(2024, 3, 4, 18, 30, 0, 0, time.UTC)

// TestEmptyDefaults verifies the values returned before anything is stored
// match a fresh install: no profile, zero streak, seven zero activity bars.
func TestEmptyDefaults(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, monday)

	if p, err := db.GetUserProfile(ctx); err != nil || p != nil {
		t.Errorf("GetUserProfile = %v, %v; want nil, nil", p, err)
	}
	if m, err := db.GetDailyMetrics(ctx); err != nil || m != nil {
		t.Errorf("GetDailyMetrics = %v, %v; want nil, nil", m, err)
	}
	if s, err := db.GetStreak(ctx); err != nil || s != 0 {
		t.Errorf("GetStreak = %d, %v; want 0", s, err)
	}
	a, err := db.GetWeeklyActivity(ctx)
	if err != nil || len(a) != 7 {
		t.Fatalf("GetWeeklyActivity = %v, %v; want 7 zeros", a, err)
	}
	for i, v := range a {
		if v != 0 {
			t.Errorf("activity[%d] = %d, want 0", i, v)
		}
	}
	if ms, err := db.GetMilestones(ctx); err != nil || len(ms) != 0 {
		t.Errorf("GetMilestones = %v, %v; want empty", ms, err)
	}
	if p, err := db.GetPreferences(ctx); err != nil || p != models.DefaultPreferences() {
		t.Errorf("GetPreferences = %+v, %v; want defaults", p, err)
	}
}

// TestRoundTrip verifies typed values survive storage and overwrite in place.
func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, monday)

	p := models.UserProfile{Name: "Sam", Age: 30, Weight: 170, CaloriesGoal: 2200, DurationGoal: 30, StepsGoal: 8000}
	if err := db.SetUserProfile(ctx, p); err != nil {
		t.Fatal(err)
	}
	p.Name = "Sammy"
	if err := db.SetUserProfile(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetUserProfile(ctx)
	if err != nil || got == nil || *got != p {
		t.Errorf("GetUserProfile = %+v, %v; want %+v", got, err, p)
	}

	if err := db.SetStreak(ctx, 12); err != nil {
		t.Fatal(err)
	}
	if s, _ := db.GetStreak(ctx); s != 12 {
		t.Errorf("streak = %d, want 12", s)
	}

	if err := db.SetWeeklyActivity(ctx, []int{1, 2, 3}); err == nil {
		t.Error("expected error for short weekly activity")
	}

	prefs := models.Preferences{Sound: false, Vibration: true}
	if err := db.SetPreferences(ctx, prefs); err != nil {
		t.Fatal(err)
	}
	if got, _ := db.GetPreferences(ctx); got != prefs {
		t.Errorf("preferences = %+v, want %+v", got, prefs)
	}
}

// TestInitializeSampleData verifies seeding happens once and only when no
// profile exists, and that ClearAll brings back a fresh install.
func TestInitializeSampleData(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, monday)

	seeded, err := db.InitializeSampleData(ctx)
	if err != nil || !seeded {
		t.Fatalf("InitializeSampleData = %v, %v; want true", seeded, err)
	}
	p, _ := db.GetUserProfile(ctx)
	if p == nil || p.Name != "Keisha" {
		t.Errorf("profile = %+v, want sample", p)
	}
	m, _ := db.GetDailyMetrics(ctx)
	if m == nil || m.Date != "2024-03-04" || m.Steps != 3200 {
		t.Errorf("metrics = %+v, want sample dated today", m)
	}
	if s, _ := db.GetStreak(ctx); s != 5 {
		t.Errorf("streak = %d, want 5", s)
	}
	if ms, _ := db.GetMilestones(ctx); len(ms) != 4 {
		t.Errorf("milestones = %d, want 4", len(ms))
	}

	if seeded, _ := db.InitializeSampleData(ctx); seeded {
		t.Error("second InitializeSampleData seeded again")
	}

	if err := db.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}
	if p, _ := db.GetUserProfile(ctx); p != nil {
		t.Errorf("profile after ClearAll = %+v, want nil", p)
	}
	if s, _ := db.GetStreak(ctx); s != 0 {
		t.Errorf("streak after ClearAll = %d, want 0", s)
	}
}

// TestSessionHistory verifies sessions are listed newest first and that the
// limit applies.
func TestSessionHistory(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, monday)

	for i := range 3 {
		start := monday.Add(time.Duration(i) * time.Hour)
		_, err := db.RecordSession(ctx, models.SessionRecord{
			WorkoutID:      "1",
			WorkoutTitle:   "Full Body Burn",
			Intensity:      models.IntensityHigh,
			StartedAt:      start,
			EndedAt:        start.Add(20 * time.Minute),
			ElapsedSeconds: 1200 + i,
			TotalExercises: 5,
			ExercisesDone:  5,
			Completed:      i%2 == 0,
		})
		if err != nil {
			t.Fatalf("RecordSession %d: %v", i, err)
		}
	}

	got, err := db.ListSessions(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ElapsedSeconds != 1202 || got[1].ElapsedSeconds != 1201 {
		t.Errorf("order = %d, %d; want 1202, 1201", got[0].ElapsedSeconds, got[1].ElapsedSeconds)
	}
	if got[0].ID == uuid.Nil {
		t.Error("record id was not assigned")
	}
	if !got[0].Completed || got[1].Completed {
		t.Errorf("completed flags = %v, %v; want true, false", got[0].Completed, got[1].Completed)
	}
	if !got[0].EndedAt.Equal(monday.Add(2*time.Hour + 20*time.Minute)) {
		t.Errorf("ended_at = %v", got[0].EndedAt)
	}
	if got[0].Intensity != models.IntensityHigh {
		t.Errorf("intensity = %q", got[0].Intensity)
	}
}

// TestApplySession verifies a finished session updates today's metrics, the
// weekly activity bar, the streak and milestones.
func TestApplySession(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, monday)
	if _, err := db.InitializeSampleData(ctx); err != nil {
		t.Fatal(err)
	}
	// Make yesterday the last active day so the streak extends.
	if err := db.b.put(ctx, KeyLastActive, "2024-03-03"); err != nil {
		t.Fatal(err)
	}

	rec, err := db.ApplySession(ctx, models.SessionRecord{
		WorkoutID:      "1",
		WorkoutTitle:   "Full Body Burn",
		Intensity:      models.IntensityHigh,
		StartedAt:      monday.Add(-30 * time.Minute),
		EndedAt:        monday,
		ElapsedSeconds: 1800,
		Completed:      true,
	})
	if err != nil {
		t.Fatalf("ApplySession: %v", err)
	}
	if rec.CaloriesBurned != 254 {
		t.Errorf("calories = %d, want 254", rec.CaloriesBurned)
	}

	m, _ := db.GetDailyMetrics(ctx)
	if m.DurationMinutes != 28+30 || m.CaloriesBurned != 540+254 {
		t.Errorf("metrics = %+v, want 58 minutes, 794 calories", m)
	}
	a, _ := db.GetWeeklyActivity(ctx)
	if a[0] != 100 {
		t.Errorf("monday activity = %d, want 100 (58/45 capped)", a[0])
	}
	if s, _ := db.GetStreak(ctx); s != 6 {
		t.Errorf("streak = %d, want 6", s)
	}

	// A second session on the same day does not bump the streak again.
	if _, err := db.ApplySession(ctx, models.SessionRecord{WorkoutID: "2", ElapsedSeconds: 60, StartedAt: monday, EndedAt: monday, Completed: true}); err != nil {
		t.Fatal(err)
	}
	if s, _ := db.GetStreak(ctx); s != 6 {
		t.Errorf("streak after second session = %d, want 6", s)
	}
	hist, _ := db.ListSessions(ctx, 0)
	if len(hist) != 2 {
		t.Errorf("history = %d, want 2", len(hist))
	}
}

// TestApplySessionNewDay verifies stale metrics from an earlier day are
// replaced and a gap resets the streak.
func TestApplySessionNewDay(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, monday)
	if err := db.SetDailyMetrics(ctx, models.DailyMetrics{Date: "2024-02-01", DurationMinutes: 99, Steps: 500}); err != nil {
		t.Fatal(err)
	}
	if err := db.SetStreak(ctx, 9); err != nil {
		t.Fatal(err)
	}
	if err := db.b.put(ctx, KeyLastActive, "2024-02-01"); err != nil {
		t.Fatal(err)
	}

	if _, err := db.ApplySession(ctx, models.SessionRecord{WorkoutID: "1", Intensity: models.IntensityLow, ElapsedSeconds: 600, StartedAt: monday, EndedAt: monday, Completed: true}); err != nil {
		t.Fatal(err)
	}
	m, _ := db.GetDailyMetrics(ctx)
	if m.Date != "2024-03-04" || m.DurationMinutes != 10 || m.Steps != 0 {
		t.Errorf("metrics = %+v, want fresh day with 10 minutes", m)
	}
	if s, _ := db.GetStreak(ctx); s != 1 {
		t.Errorf("streak = %d, want 1 after a gap", s)
	}
}

// TestApplySessionAbandoned verifies a session closed before the end is kept
// in history but leaves metrics, weekly activity, streak and milestones alone.
func TestApplySessionAbandoned(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, monday)
	if err := db.SetStreak(ctx, 4); err != nil {
		t.Fatal(err)
	}
	if err := db.b.put(ctx, KeyLastActive, "2024-03-03"); err != nil {
		t.Fatal(err)
	}

	rec, err := db.ApplySession(ctx, models.SessionRecord{
		WorkoutID: "1", Intensity: models.IntensityHigh, ElapsedSeconds: 1,
		StartedAt: monday, EndedAt: monday,
	})
	if err != nil {
		t.Fatalf("ApplySession: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Error("abandoned session has no id")
	}
	if s, _ := db.GetStreak(ctx); s != 4 {
		t.Errorf("streak = %d, want 4", s)
	}
	if m, _ := db.GetDailyMetrics(ctx); m != nil {
		t.Errorf("metrics = %+v, want none", m)
	}
	a, _ := db.GetWeeklyActivity(ctx)
	if a[0] != 0 {
		t.Errorf("monday activity = %d, want 0", a[0])
	}
	hist, _ := db.ListSessions(ctx, 0)
	if len(hist) != 1 || hist[0].Completed {
		t.Errorf("history = %+v, want one abandoned session", hist)
	}
}

// failingPut fails every write of key, inside or outside a transaction.
type failingPut struct {
	backend
	key string
}

func (f failingPut) put(ctx context.Context, key, value string) error {
	if key == f.key {
		return errors.New("disk full")
	}
	return f.backend.put(ctx, key, value)
}

func (f failingPut) withTx(ctx context.Context, fn func(backend) error) error {
	return f.backend.withTx(ctx, func(tx backend) error {
		return fn(failingPut{backend: tx, key: f.key})
	})
}

// TestApplySessionRollsBack verifies a failed write part way through leaves
// neither a history row nor partial metric updates behind.
func TestApplySessionRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, monday)
	if _, err := db.InitializeSampleData(ctx); err != nil {
		t.Fatal(err)
	}
	before, _ := db.GetDailyMetrics(ctx)

	orig := db.b
	db.b = failingPut{backend: orig, key: KeyStreak}
	_, err := db.ApplySession(ctx, models.SessionRecord{
		WorkoutID: "1", Intensity: models.IntensityHigh, ElapsedSeconds: 600,
		StartedAt: monday, EndedAt: monday, Completed: true,
	})
	db.b = orig
	if err == nil {
		t.Fatal("expected error from failing streak write")
	}

	if hist, _ := db.ListSessions(ctx, 0); len(hist) != 0 {
		t.Errorf("history = %d rows, want 0", len(hist))
	}
	after, _ := db.GetDailyMetrics(ctx)
	if *after != *before {
		t.Errorf("metrics = %+v, want unchanged %+v", *after, *before)
	}
	if s, _ := db.GetStreak(ctx); s != models.SampleStreak {
		t.Errorf("streak = %d, want %d", s, models.SampleStreak)
	}
}

// TestOpenUnknownDriver verifies a bad driver name is rejected.
func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "mongo"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

// TestDashboard verifies the home aggregate reads seeded data and computes
// progress against the profile goals.
func TestDashboard(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, monday)
	if _, err := db.InitializeSampleData(ctx); err != nil {
		t.Fatal(err)
	}

	d, err := db.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Greeting != "Good evening" {
		t.Errorf("greeting = %q, want %q", d.Greeting, "Good evening")
	}
	if d.Date != "Monday, Mar 4" {
		t.Errorf("date = %q, want %q", d.Date, "Monday, Mar 4")
	}
	if d.Profile == nil || d.Streak != 5 || len(d.WeeklyActivity) != 7 {
		t.Errorf("dashboard = %+v", d)
	}
	if d.Progress.Steps != 32 {
		t.Errorf("steps progress = %v, want 32", d.Progress.Steps)
	}
}

// TestDashboardStaleMetrics verifies metrics from an earlier day are not
// shown as today's.
func TestDashboardStaleMetrics(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, monday)
	if err := db.SetDailyMetrics(ctx, models.DailyMetrics{Date: "2024-03-01", Steps: 9000}); err != nil {
		t.Fatal(err)
	}
	d, err := db.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if d.Metrics.Steps != 0 || d.Metrics.Date != "2024-03-04" {
		t.Errorf("metrics = %+v, want empty day", d.Metrics)
	}
	if d.Profile != nil {
		t.Errorf("profile = %+v, want nil", d.Profile)
	}
}
