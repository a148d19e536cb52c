package models

import "time"

// SampleUserProfile seeds a fresh install.
var SampleUserProfile = UserProfile{
	Name:         "Keisha",
	Age:          28,
	Weight:       140,
	CaloriesGoal: 2000,
	DurationGoal: 45,
	StepsGoal:    10000,
}

// SampleDailyMetrics returns the seed metrics dated today.
func SampleDailyMetrics(now time.Time) DailyMetrics {
	return DailyMetrics{
		Date:            DateKey(now),
		CaloriesBurned:  540,
		DurationMinutes: 28,
		Steps:           3200,
		HydrationOz:     48,
		HeartRateAvg:    72,
		SleepHours:      6.75,
	}
}

// SampleStreak is the seed streak in days.
const SampleStreak = 5

// SampleWeeklyActivity is Monday-first activity percentages.
var SampleWeeklyActivity = []int{65, 80, 45, 90, 30, 70, 55}

// SampleMilestones returns a fresh copy of the seed milestones.
func SampleMilestones() []Milestone {
	return []Milestone{
		{ID: "1", Type: MilestoneStreak, Title: "Streak", Icon: "flame", Achieved: true, DateAchieved: "2024-01-15"},
		{ID: "2", Type: MilestoneSteps, Title: "Steps", Icon: "footprints", Achieved: true, DateAchieved: "2024-01-10"},
		{ID: "3", Type: MilestoneHydration, Title: "Hydrated", Icon: "droplet"},
		{ID: "4", Type: MilestonePower, Title: "Power", Icon: "zap"},
	}
}

// EmptyWeeklyActivity is returned when nothing has been stored yet.
func EmptyWeeklyActivity() []int {
	return make([]int, 7)
}
