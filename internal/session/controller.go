// Package session drives a guided workout: exercise and set progression,
// inter-set rest windows, and completion, advanced by a one-second tick and
// by user commands.
//
// A Controller is not safe for concurrent use. All calls must be serialized
// onto one event loop; Runner provides such a loop.
package session

import (
	"github.com/meltforce/pulsefit/internal/models"
)

// FinishLabel is shown as the next exercise name on the last exercise.
const FinishLabel = "Finish"

// State is the mutable session state. It is comparable, so two snapshots
// of it can be checked for equality directly.
type State struct {
	ExerciseIndex        int  `json:"exercise_index"`
	CurrentSet           int  `json:"current_set"`
	TimeRemainingSeconds int  `json:"time_remaining_seconds"`
	TotalElapsedSeconds  int  `json:"total_elapsed_seconds"`
	IsResting            bool `json:"is_resting"`
	IsPlaying            bool `json:"is_playing"`
	IsComplete           bool `json:"is_complete"`
}

// Phase is the coarse position of a session in its state machine.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseWorking  Phase = "working"
	PhaseResting  Phase = "resting"
	PhaseComplete Phase = "complete"
)

// Controller owns the state of one workout session.
type Controller struct {
	workout  models.Workout
	state    State
	started  bool
	closed   bool
	feedback Feedback
}

// New creates a controller positioned at the first set of the first exercise,
// paused. It fails fast on a workout that cannot be played.
func New(w models.Workout, fb Feedback) (*Controller, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if fb == nil {
		fb = NopFeedback{}
	}
	return &Controller{
		workout:  w,
		feedback: fb,
		state: State{
			ExerciseIndex:        0,
			CurrentSet:           1,
			TimeRemainingSeconds: w.Exercises[0].DurationSeconds,
		},
	}, nil
}

// Workout returns the workout being played.
func (c *Controller) Workout() models.Workout { return c.workout }

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state }

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool { return c.closed }

// Phase derives the state machine position from the current state.
func (c *Controller) Phase() Phase {
	switch {
	case c.state.IsComplete:
		return PhaseComplete
	case c.state.IsResting:
		return PhaseResting
	case !c.started:
		return PhaseIdle
	default:
		return PhaseWorking
	}
}

// CurrentExercise returns the exercise at the current index.
func (c *Controller) CurrentExercise() models.Exercise {
	return c.workout.Exercises[c.state.ExerciseIndex]
}

// Start begins or resumes playing. It is a no-op once the session is complete.
func (c *Controller) Start() {
	if c.closed || c.state.IsComplete {
		return
	}
	c.started = true
	c.state.IsPlaying = true
}

// Pause stops playing; counters keep their values until the next Start.
func (c *Controller) Pause() {
	if c.closed {
		return
	}
	c.state.IsPlaying = false
}

// Toggle pauses a playing session and starts a paused one.
func (c *Controller) Toggle() {
	if c.state.IsPlaying {
		c.Pause()
		return
	}
	c.Start()
}

// Tick advances the clock by one second. Ticks are ignored unless the
// session is playing.
func (c *Controller) Tick() {
	if c.closed || !c.state.IsPlaying || c.state.IsComplete {
		return
	}
	if c.state.TimeRemainingSeconds > 0 {
		c.state.TimeRemainingSeconds--
	}
	c.state.TotalElapsedSeconds++
	if c.state.TimeRemainingSeconds == 0 {
		c.intervalComplete()
	}
}

func (c *Controller) intervalComplete() {
	ex := c.CurrentExercise()
	switch {
	case c.state.IsResting:
		c.state.IsResting = false
		c.state.TimeRemainingSeconds = ex.DurationSeconds
		c.emit(SignalIntervalSuccess)
	case c.state.CurrentSet < ex.Sets:
		c.state.IsResting = true
		c.state.TimeRemainingSeconds = models.RestSeconds
		c.state.CurrentSet++
		c.emit(SignalIntervalSuccess)
	case c.state.ExerciseIndex < len(c.workout.Exercises)-1:
		c.moveTo(c.state.ExerciseIndex + 1)
	default:
		c.state.IsPlaying = false
		c.state.IsComplete = true
		c.emit(SignalSessionComplete)
	}
}

// SkipToNext jumps to the first set of the next exercise, discarding the
// time left on the current one. No-op on the last exercise.
func (c *Controller) SkipToNext() {
	if c.closed || c.state.IsComplete || c.state.ExerciseIndex >= len(c.workout.Exercises)-1 {
		return
	}
	c.moveTo(c.state.ExerciseIndex + 1)
}

// SkipToPrevious jumps to the first set of the previous exercise. The set
// reached on an earlier visit is not restored. No-op on the first exercise.
func (c *Controller) SkipToPrevious() {
	if c.closed || c.state.IsComplete || c.state.ExerciseIndex == 0 {
		return
	}
	c.moveTo(c.state.ExerciseIndex - 1)
}

func (c *Controller) moveTo(i int) {
	c.state.ExerciseIndex = i
	c.state.CurrentSet = 1
	c.state.IsResting = false
	c.state.TimeRemainingSeconds = c.workout.Exercises[i].DurationSeconds
}

// Close discards the session. Every later call is a no-op.
func (c *Controller) Close() {
	c.closed = true
	c.state.IsPlaying = false
}

// OverallProgressPercent is elapsed time against the workout's planned
// duration, capped at 100.
func (c *Controller) OverallProgressPercent() float64 {
	total := float64(c.workout.TotalDurationMinutes * 60)
	p := float64(c.state.TotalElapsedSeconds) / total * 100
	return min(p, 100)
}

// ExerciseProgressPercent is progress through the active interval, which is
// the rest window while resting and the work interval otherwise.
func (c *Controller) ExerciseProgressPercent() float64 {
	span := c.CurrentExercise().DurationSeconds
	if c.state.IsResting {
		span = models.RestSeconds
	}
	return float64(span-c.state.TimeRemainingSeconds) / float64(span) * 100
}

// NextExerciseName names the exercise after the current one, or FinishLabel.
func (c *Controller) NextExerciseName() string {
	if next := c.state.ExerciseIndex + 1; next < len(c.workout.Exercises) {
		return c.workout.Exercises[next].Name
	}
	return FinishLabel
}

func (c *Controller) emit(s Signal) {
	emitSafe(c.feedback, s)
}
