package models

import (
	"testing"
	"time"
)

// TestProgress verifies ring percentages against profile goals, including
// a zero goal that would otherwise divide by zero.
func TestProgress(t *testing.T) {
	p := SampleUserProfile
	m := DailyMetrics{CaloriesBurned: 500, DurationMinutes: 45, Steps: 12000}
	got := Progress(p, m)
	if got.Calories != 25 {
		t.Errorf("calories = %v, want 25", got.Calories)
	}
	if got.Duration != 100 {
		t.Errorf("duration = %v, want 100", got.Duration)
	}
	if got.Steps != 120 {
		t.Errorf("steps = %v, want 120 (not clamped)", got.Steps)
	}

	p.StepsGoal = 0
	if got := Progress(p, m); got.Steps != 0 {
		t.Errorf("steps with zero goal = %v, want 0", got.Steps)
	}
}

// TestGreeting verifies the hour boundaries of the home screen greeting.
func TestGreeting(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		hour int
		want string
	}{
		{0, "Good morning"},
		{11, "Good morning"},
		{12, "Good afternoon"},
		{16, "Good afternoon"},
		{17, "Good evening"},
		{23, "Good evening"},
	}
	for _, tt := range tests {
		if got := Greeting(day.Add(time.Duration(tt.hour) * time.Hour)); got != tt.want {
			t.Errorf("Greeting(%02d:00) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

// TestFormattedDateAndWeekday verifies the header date and Monday-first index.
func TestFormattedDateAndWeekday(t *testing.T) {
	monday := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	if got := FormattedDate(monday); got != "Monday, Mar 4" {
		t.Errorf("FormattedDate = %q, want %q", got, "Monday, Mar 4")
	}
	if got := WeekdayIndex(monday); got != 0 {
		t.Errorf("WeekdayIndex(Monday) = %d, want 0", got)
	}
	if got := WeekdayIndex(monday.AddDate(0, 0, 6)); got != 6 {
		t.Errorf("WeekdayIndex(Sunday) = %d, want 6", got)
	}
}

// TestEvaluateMilestones verifies thresholds and that achieved milestones
// keep their original date.
func TestEvaluateMilestones(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	ms := SampleMilestones()
	m := DailyMetrics{HydrationOz: 64, CaloriesBurned: 100}

	got, changed := EvaluateMilestones(ms, SampleUserProfile, m, 1, now)
	if !changed {
		t.Fatal("expected hydration milestone to change")
	}
	if !got[2].Achieved || got[2].DateAchieved != "2024-03-04" {
		t.Errorf("hydration = %+v, want achieved on 2024-03-04", got[2])
	}
	if got[3].Achieved {
		t.Error("power achieved below calories goal")
	}
	if got[0].DateAchieved != "2024-01-15" {
		t.Errorf("streak date = %q, want original 2024-01-15", got[0].DateAchieved)
	}
	if ms[2].Achieved {
		t.Error("input slice was mutated")
	}

	_, changed = EvaluateMilestones(got, SampleUserProfile, m, 1, now)
	if changed {
		t.Error("second evaluation reported a change")
	}
}
