package session

import (
	"time"

	"github.com/meltforce/pulsefit/internal/models"
)

// Record builds the history row for a session that ended with snapshot s.
// Exercises before the current one count as done; all of them count once
// the session is complete. Calories are left for storage to estimate.
func Record(w models.Workout, s Snapshot, startedAt, endedAt time.Time) models.SessionRecord {
	done := s.ExerciseIndex
	if s.IsComplete {
		done = len(w.Exercises)
	}
	return models.SessionRecord{
		WorkoutID:      w.ID,
		WorkoutTitle:   w.Title,
		Intensity:      w.Intensity,
		StartedAt:      startedAt,
		EndedAt:        endedAt,
		ElapsedSeconds: s.TotalElapsedSeconds,
		ExercisesDone:  done,
		TotalExercises: len(w.Exercises),
		Completed:      s.IsComplete,
	}
}
