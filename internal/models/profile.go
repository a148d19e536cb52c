package models

import "time"

// UserProfile is the onboarding profile and daily goals.
type UserProfile struct {
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Weight       int    `json:"weight"` // pounds
	AvatarURI    string `json:"avatar_uri,omitempty"`
	CaloriesGoal int    `json:"calories_goal"`
	DurationGoal int    `json:"duration_goal"` // minutes
	StepsGoal    int    `json:"steps_goal"`
}

// DailyMetrics is the activity summary for a single calendar day.
type DailyMetrics struct {
	Date            string  `json:"date"` // YYYY-MM-DD
	CaloriesBurned  int     `json:"calories_burned"`
	DurationMinutes int     `json:"duration_minutes"`
	Steps           int     `json:"steps"`
	HydrationOz     int     `json:"hydration_oz"`
	HeartRateAvg    int     `json:"heart_rate_avg"`
	SleepHours      float64 `json:"sleep_hours"`
}

// Preferences are the toggles on the profile screen.
type Preferences struct {
	Notifications bool `json:"notifications"`
	Sound         bool `json:"sound"`
	Vibration     bool `json:"vibration"`
}

// DefaultPreferences has every toggle enabled.
func DefaultPreferences() Preferences {
	return Preferences{Notifications: true, Sound: true, Vibration: true}
}

// GoalProgress holds the three ring percentages on the home screen.
// Values are not clamped: a ring past 100 means the goal was exceeded.
type GoalProgress struct {
	Calories float64 `json:"calories"`
	Duration float64 `json:"duration"`
	Steps    float64 `json:"steps"`
}

// Progress computes goal progress for m against the goals in p.
func Progress(p UserProfile, m DailyMetrics) GoalProgress {
	return GoalProgress{
		Calories: percentOf(m.CaloriesBurned, p.CaloriesGoal),
		Duration: percentOf(m.DurationMinutes, p.DurationGoal),
		Steps:    percentOf(m.Steps, p.StepsGoal),
	}
}

func percentOf(v, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	return float64(v) / float64(goal) * 100
}

// Greeting returns the salutation for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// FormattedDate renders t as "Monday, Jan 2".
func FormattedDate(t time.Time) string {
	return t.Format("Monday, Jan 2")
}

// DateKey is the YYYY-MM-DD key used for DailyMetrics.Date.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// WeekdayIndex maps t to the Monday-first index used by weekly activity.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
