package storage

import (
	"context"

	"github.com/meltforce/pulsefit/internal/models"
)

// Dashboard is everything the home screen shows in one read.
type Dashboard struct {
	Greeting       string              `json:"greeting"`
	Date           string              `json:"date"`
	Profile        *models.UserProfile `json:"profile"`
	Metrics        models.DailyMetrics `json:"metrics"`
	Progress       models.GoalProgress `json:"progress"`
	Streak         int                 `json:"streak"`
	WeeklyActivity []int               `json:"weekly_activity"`
	Milestones     []models.Milestone  `json:"milestones"`
}

// Dashboard reads the profile, today's metrics, streak, weekly activity and
// milestones. Metrics stored for an earlier day read as an empty day.
func (db *DB) Dashboard(ctx context.Context) (Dashboard, error) {
	now := db.now()
	d := Dashboard{
		Greeting: models.Greeting(now),
		Date:     models.FormattedDate(now),
		Metrics:  models.DailyMetrics{Date: models.DateKey(now)},
	}

	var err error
	if d.Profile, err = db.GetUserProfile(ctx); err != nil {
		return d, err
	}
	m, err := db.GetDailyMetrics(ctx)
	if err != nil {
		return d, err
	}
	if m != nil && m.Date == d.Metrics.Date {
		d.Metrics = *m
	}
	if d.Profile != nil {
		d.Progress = models.Progress(*d.Profile, d.Metrics)
	}
	if d.Streak, err = db.GetStreak(ctx); err != nil {
		return d, err
	}
	if d.WeeklyActivity, err = db.GetWeeklyActivity(ctx); err != nil {
		return d, err
	}
	if d.Milestones, err = db.GetMilestones(ctx); err != nil {
		return d, err
	}
	return d, nil
}
