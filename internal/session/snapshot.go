package session

import "github.com/meltforce/pulsefit/internal/models"

// Snapshot is the read-only view handed to presentation layers after every
// transition: the raw state plus its derived projections.
type Snapshot struct {
	State
	WorkoutID               string  `json:"workout_id"`
	WorkoutTitle            string  `json:"workout_title"`
	Phase                   Phase   `json:"phase"`
	ExerciseCount           int     `json:"exercise_count"`
	ExerciseName            string  `json:"exercise_name"`
	ExerciseSets            int     `json:"exercise_sets"`
	IntervalSeconds         int     `json:"interval_seconds"`
	NextExerciseName        string  `json:"next_exercise_name"`
	OverallProgressPercent  float64 `json:"overall_progress_percent"`
	ExerciseProgressPercent float64 `json:"exercise_progress_percent"`
}

// Snapshot captures the current state and projections.
func (c *Controller) Snapshot() Snapshot {
	ex := c.CurrentExercise()
	interval := ex.DurationSeconds
	if c.state.IsResting {
		interval = models.RestSeconds
	}
	return Snapshot{
		State:                   c.state,
		WorkoutID:               c.workout.ID,
		WorkoutTitle:            c.workout.Title,
		Phase:                   c.Phase(),
		ExerciseCount:           len(c.workout.Exercises),
		ExerciseName:            ex.Name,
		ExerciseSets:            ex.Sets,
		IntervalSeconds:         interval,
		NextExerciseName:        c.NextExerciseName(),
		OverallProgressPercent:  c.OverallProgressPercent(),
		ExerciseProgressPercent: c.ExerciseProgressPercent(),
	}
}
