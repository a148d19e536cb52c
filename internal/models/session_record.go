package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionRecord is the history row written when a workout session ends,
// whether it completed or was closed early.
type SessionRecord struct {
	ID             uuid.UUID `json:"id"`
	WorkoutID      string    `json:"workout_id"`
	WorkoutTitle   string    `json:"workout_title"`
	Intensity      Intensity `json:"intensity"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	ExercisesDone  int       `json:"exercises_done"`
	TotalExercises int       `json:"total_exercises"`
	Completed      bool      `json:"completed"`
	CaloriesBurned int       `json:"calories_burned"`
}

// metPerIntensity approximates metabolic equivalents for bodyweight
// circuits at each intensity label.
var metPerIntensity = map[Intensity]float64{
	IntensityLow:    3.5,
	IntensityMedium: 5.0,
	IntensityHigh:   8.0,
}

const kgPerPound = 0.45359237

// EstimateCalories estimates energy burned for elapsedSeconds of work at the
// given intensity by a person weighing weightLbs: MET * kg * hours.
func EstimateCalories(in Intensity, weightLbs, elapsedSeconds int) int {
	met, ok := metPerIntensity[in]
	if !ok {
		met = metPerIntensity[IntensityMedium]
	}
	if weightLbs <= 0 || elapsedSeconds <= 0 {
		return 0
	}
	kcal := met * float64(weightLbs) * kgPerPound * float64(elapsedSeconds) / 3600
	return int(kcal + 0.5)
}
