package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/pulsefit/internal/models"
)

// DefaultHistoryLimit bounds ListSessions when no limit is given.
const DefaultHistoryLimit = 50

// RecordSession appends a finished session to the history. A zero ID is
// replaced with a fresh UUID.
func (db *DB) RecordSession(ctx context.Context, rec models.SessionRecord) (models.SessionRecord, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if err := db.b.insertSession(ctx, rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// ListSessions returns up to limit sessions, most recent first.
func (db *DB) ListSessions(ctx context.Context, limit int) ([]models.SessionRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return db.b.listSessions(ctx, limit)
}

// ApplySession records rec and, when the session was completed, folds it
// into today's metrics, the weekly activity bar for today, the streak and
// milestones. An abandoned session only lands in history. Calories are
// estimated from the profile weight when rec does not carry them. All
// writes commit together or not at all.
func (db *DB) ApplySession(ctx context.Context, rec models.SessionRecord) (models.SessionRecord, error) {
	out := rec
	err := db.inTx(ctx, func(tx *DB) error {
		var err error
		out, err = tx.applySession(ctx, rec)
		return err
	})
	if err != nil {
		return rec, fmt.Errorf("applying session: %w", err)
	}
	return out, nil
}

func (db *DB) applySession(ctx context.Context, rec models.SessionRecord) (models.SessionRecord, error) {
	now := db.now()
	today := models.DateKey(now)

	profile, err := db.GetUserProfile(ctx)
	if err != nil {
		return rec, err
	}
	if profile == nil {
		p := models.SampleUserProfile
		profile = &p
	}
	if rec.CaloriesBurned == 0 {
		rec.CaloriesBurned = models.EstimateCalories(rec.Intensity, profile.Weight, rec.ElapsedSeconds)
	}

	rec, err = db.RecordSession(ctx, rec)
	if err != nil {
		return rec, err
	}
	if !rec.Completed {
		return rec, nil
	}

	metrics, err := db.GetDailyMetrics(ctx)
	if err != nil {
		return rec, err
	}
	if metrics == nil || metrics.Date != today {
		metrics = &models.DailyMetrics{Date: today}
	}
	metrics.DurationMinutes += (rec.ElapsedSeconds + 30) / 60
	metrics.CaloriesBurned += rec.CaloriesBurned
	if err := db.SetDailyMetrics(ctx, *metrics); err != nil {
		return rec, err
	}

	weekly, err := db.GetWeeklyActivity(ctx)
	if err != nil {
		return rec, err
	}
	if profile.DurationGoal > 0 {
		weekly[models.WeekdayIndex(now)] = min(100, metrics.DurationMinutes*100/profile.DurationGoal)
	}
	if err := db.SetWeeklyActivity(ctx, weekly); err != nil {
		return rec, err
	}

	streak, err := db.bumpStreak(ctx, today, models.DateKey(now.AddDate(0, 0, -1)))
	if err != nil {
		return rec, err
	}

	milestones, err := db.GetMilestones(ctx)
	if err != nil {
		return rec, err
	}
	if updated, changed := models.EvaluateMilestones(milestones, *profile, *metrics, streak, now); changed {
		if err := db.SetMilestones(ctx, updated); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// bumpStreak counts today as active: the streak grows when the previous
// active day was yesterday (or unknown), restarts at 1 after a gap, and is
// unchanged when today was already counted.
func (db *DB) bumpStreak(ctx context.Context, today, yesterday string) (int, error) {
	streak, err := db.GetStreak(ctx)
	if err != nil {
		return 0, err
	}
	last, err := db.b.get(ctx, KeyLastActive)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	switch {
	case last == today:
		return streak, nil
	case last == yesterday || last == "":
		streak++
	default:
		streak = 1
	}
	if err := db.SetStreak(ctx, streak); err != nil {
		return 0, err
	}
	if err := db.b.put(ctx, KeyLastActive, today); err != nil {
		return 0, fmt.Errorf("writing last active day: %w", err)
	}
	return streak, nil
}
