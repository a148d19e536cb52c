package models

import (
	"errors"
	"fmt"
)

// RestSeconds is the fixed rest window inserted between two sets of the same exercise.
const RestSeconds = 15

// ErrInvalidWorkout is wrapped by every ValidationError.
var ErrInvalidWorkout = errors.New("invalid workout")

// Intensity is the coarse effort label shown on workout cards.
type Intensity string

const (
	IntensityLow    Intensity = "Low"
	IntensityMedium Intensity = "Medium"
	IntensityHigh   Intensity = "High"
)

// Category groups workouts on the catalog screen.
type Category string

const (
	CategoryHIIT     Category = "HIIT"
	CategoryStrength Category = "Strength"
	CategoryCardio   Category = "Cardio"
	CategoryCore     Category = "Core"
	CategoryStretch  Category = "Stretch"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryHIIT, CategoryStrength, CategoryCardio, CategoryCore, CategoryStretch}

// Exercise is one timed movement performed for a number of sets.
type Exercise struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	DurationSeconds int    `json:"duration_seconds" yaml:"duration"`
	Sets            int    `json:"sets" yaml:"sets"`
}

// Workout is an immutable catalog entry.
type Workout struct {
	ID                   string     `json:"id" yaml:"id"`
	Title                string     `json:"title" yaml:"title"`
	TotalDurationMinutes int        `json:"total_duration_minutes" yaml:"duration"`
	Intensity            Intensity  `json:"intensity" yaml:"intensity"`
	Category             Category   `json:"category" yaml:"category"`
	MuscleGroups         []string   `json:"muscle_groups" yaml:"muscle_groups"`
	Equipment            []string   `json:"equipment" yaml:"equipment"`
	CoverImage           int        `json:"cover_image" yaml:"cover_image"`
	IsNew                bool       `json:"is_new" yaml:"is_new"`
	Exercises            []Exercise `json:"exercises" yaml:"exercises"`
}

// ValidationError describes why a workout cannot drive a session.
type ValidationError struct {
	WorkoutID string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("workout %q: %s", e.WorkoutID, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidWorkout }

// Validate checks the preconditions a session controller relies on:
// a positive planned duration, at least one exercise, and positive
// durations and set counts on every exercise.
func (w Workout) Validate() error {
	if w.TotalDurationMinutes <= 0 {
		return &ValidationError{WorkoutID: w.ID, Reason: "total duration must be positive"}
	}
	if len(w.Exercises) == 0 {
		return &ValidationError{WorkoutID: w.ID, Reason: "no exercises"}
	}
	for i, ex := range w.Exercises {
		if ex.DurationSeconds <= 0 {
			return &ValidationError{WorkoutID: w.ID, Reason: fmt.Sprintf("exercise %d (%s): duration must be positive", i, ex.Name)}
		}
		if ex.Sets <= 0 {
			return &ValidationError{WorkoutID: w.ID, Reason: fmt.Sprintf("exercise %d (%s): sets must be positive", i, ex.Name)}
		}
	}
	return nil
}

// TotalSets returns the number of sets across all exercises.
func (w Workout) TotalSets() int {
	n := 0
	for _, ex := range w.Exercises {
		n += ex.Sets
	}
	return n
}

// TotalExercises returns the number of exercises.
func (w Workout) TotalExercises() int {
	return len(w.Exercises)
}

// PlannedSeconds is the time a session takes when played without skipping:
// every set's work interval plus one rest between consecutive sets of the
// same exercise.
func (w Workout) PlannedSeconds() int {
	total := 0
	for _, ex := range w.Exercises {
		total += ex.DurationSeconds*ex.Sets + RestSeconds*(ex.Sets-1)
	}
	return total
}
