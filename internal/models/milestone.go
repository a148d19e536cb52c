package models

import "time"

// Milestone types tracked on the stats screen.
const (
	MilestoneStreak    = "streak"
	MilestoneSteps     = "steps"
	MilestoneHydration = "hydration"
	MilestonePower     = "power"
)

// Thresholds for milestones that do not depend on profile goals.
const (
	StreakMilestoneDays  = 5
	HydrationMilestoneOz = 64
)

// Milestone is an achievement badge.
type Milestone struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Icon         string `json:"icon"`
	Achieved     bool   `json:"achieved"`
	DateAchieved string `json:"date_achieved,omitempty"`
}

// EvaluateMilestones marks milestones achieved by the given streak and
// metrics. Achieved milestones stay achieved and keep their original date.
// It returns the updated slice and whether anything changed.
func EvaluateMilestones(ms []Milestone, p UserProfile, m DailyMetrics, streak int, now time.Time) ([]Milestone, bool) {
	out := make([]Milestone, len(ms))
	copy(out, ms)

	changed := false
	for i := range out {
		if out[i].Achieved {
			continue
		}
		if milestoneReached(out[i].Type, p, m, streak) {
			out[i].Achieved = true
			out[i].DateAchieved = DateKey(now)
			changed = true
		}
	}
	return out, changed
}

func milestoneReached(kind string, p UserProfile, m DailyMetrics, streak int) bool {
	switch kind {
	case MilestoneStreak:
		return streak >= StreakMilestoneDays
	case MilestoneSteps:
		return p.StepsGoal > 0 && m.Steps >= p.StepsGoal
	case MilestoneHydration:
		return m.HydrationOz >= HydrationMilestoneOz
	case MilestonePower:
		return p.CaloriesGoal > 0 && m.CaloriesBurned >= p.CaloriesGoal
	}
	return false
}
