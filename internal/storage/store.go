package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/meltforce/pulsefit/internal/models"
)

// Storage keys.
const (
	KeyUserProfile    = "user_profile"
	KeyDailyMetrics   = "daily_metrics"
	KeyStreak         = "streak"
	KeyWeeklyActivity = "weekly_activity"
	KeyMilestones     = "milestones"
	KeyPreferences    = "preferences"
	KeyLastActive     = "last_active"
)

// allKeys is what ClearAll removes.
var allKeys = []string{
	KeyUserProfile, KeyDailyMetrics, KeyStreak, KeyWeeklyActivity,
	KeyMilestones, KeyPreferences, KeyLastActive,
}

// getJSON decodes the value at key into v. It reports false when the key
// is absent.
func (db *DB) getJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, err := db.b.get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

func (db *DB) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return db.b.put(ctx, key, string(data))
}

// GetUserProfile returns the stored profile, or nil before onboarding.
func (db *DB) GetUserProfile(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	ok, err := db.getJSON(ctx, KeyUserProfile, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// SetUserProfile stores the profile.
func (db *DB) SetUserProfile(ctx context.Context, p models.UserProfile) error {
	return db.putJSON(ctx, KeyUserProfile, p)
}

// GetDailyMetrics returns the stored metrics, or nil when none exist.
func (db *DB) GetDailyMetrics(ctx context.Context) (*models.DailyMetrics, error) {
	var m models.DailyMetrics
	ok, err := db.getJSON(ctx, KeyDailyMetrics, &m)
	if err != nil || !ok {
		return nil, err
	}
	return &m, nil
}

// SetDailyMetrics stores the metrics.
func (db *DB) SetDailyMetrics(ctx context.Context, m models.DailyMetrics) error {
	return db.putJSON(ctx, KeyDailyMetrics, m)
}

// GetStreak returns the streak in days, 0 when unset.
func (db *DB) GetStreak(ctx context.Context) (int, error) {
	raw, err := db.b.get(ctx, KeyStreak)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("decoding streak: %w", err)
	}
	return n, nil
}

// SetStreak stores the streak.
func (db *DB) SetStreak(ctx context.Context, days int) error {
	return db.b.put(ctx, KeyStreak, strconv.Itoa(days))
}

// GetWeeklyActivity returns seven Monday-first activity values, all zero
// when unset.
func (db *DB) GetWeeklyActivity(ctx context.Context) ([]int, error) {
	var a []int
	ok, err := db.getJSON(ctx, KeyWeeklyActivity, &a)
	if err != nil {
		return nil, err
	}
	if !ok || len(a) != 7 {
		return models.EmptyWeeklyActivity(), nil
	}
	return a, nil
}

// SetWeeklyActivity stores seven Monday-first activity values.
func (db *DB) SetWeeklyActivity(ctx context.Context, a []int) error {
	if len(a) != 7 {
		return fmt.Errorf("weekly activity needs 7 values, got %d", len(a))
	}
	return db.putJSON(ctx, KeyWeeklyActivity, a)
}

// GetMilestones returns the stored milestones, empty when unset.
func (db *DB) GetMilestones(ctx context.Context) ([]models.Milestone, error) {
	ms := []models.Milestone{}
	if _, err := db.getJSON(ctx, KeyMilestones, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// SetMilestones stores the milestones.
func (db *DB) SetMilestones(ctx context.Context, ms []models.Milestone) error {
	return db.putJSON(ctx, KeyMilestones, ms)
}

// GetPreferences returns the stored toggles, all enabled when unset.
func (db *DB) GetPreferences(ctx context.Context) (models.Preferences, error) {
	p := models.DefaultPreferences()
	if _, err := db.getJSON(ctx, KeyPreferences, &p); err != nil {
		return models.Preferences{}, err
	}
	return p, nil
}

// SetPreferences stores the toggles.
func (db *DB) SetPreferences(ctx context.Context, p models.Preferences) error {
	return db.putJSON(ctx, KeyPreferences, p)
}

// ClearAll removes every stored value. Session history is kept.
func (db *DB) ClearAll(ctx context.Context) error {
	return db.b.deleteKeys(ctx, allKeys)
}

// InitializeSampleData seeds the sample profile, metrics, streak, weekly
// activity and milestones when no profile has been stored yet. It reports
// whether it seeded anything.
func (db *DB) InitializeSampleData(ctx context.Context) (bool, error) {
	p, err := db.GetUserProfile(ctx)
	if err != nil {
		return false, err
	}
	if p != nil {
		return false, nil
	}

	if err := db.SetUserProfile(ctx, models.SampleUserProfile); err != nil {
		return false, err
	}
	if err := db.SetDailyMetrics(ctx, models.SampleDailyMetrics(db.now())); err != nil {
		return false, err
	}
	if err := db.SetStreak(ctx, models.SampleStreak); err != nil {
		return false, err
	}
	if err := db.SetWeeklyActivity(ctx, models.SampleWeeklyActivity); err != nil {
		return false, err
	}
	if err := db.SetMilestones(ctx, models.SampleMilestones()); err != nil {
		return false, err
	}
	return true, nil
}
