package session

import "log/slog"

// Signal is a feedback cue emitted at an interval boundary.
type Signal int

const (
	// SignalIntervalSuccess marks the end of a work set or a rest window.
	SignalIntervalSuccess Signal = iota + 1
	// SignalSessionComplete marks the end of the final set. It is an interval
	// success that also completed the session.
	SignalSessionComplete
)

func (s Signal) String() string {
	switch s {
	case SignalIntervalSuccess:
		return "interval_success"
	case SignalSessionComplete:
		return "session_complete"
	}
	return "unknown"
}

// Feedback receives cues from a controller. Implementations must not block;
// a panicking implementation is ignored.
type Feedback interface {
	Signal(Signal)
}

// FeedbackFunc adapts a function to Feedback.
type FeedbackFunc func(Signal)

func (f FeedbackFunc) Signal(s Signal) { f(s) }

// NopFeedback discards every signal.
type NopFeedback struct{}

func (NopFeedback) Signal(Signal) {}

// LogFeedback writes each signal to a logger.
type LogFeedback struct {
	Log       *slog.Logger
	WorkoutID string
}

func (f LogFeedback) Signal(s Signal) {
	f.Log.Debug("session feedback", "workout", f.WorkoutID, "signal", s.String())
}

// Multi fans a signal out to several sinks.
type Multi []Feedback

func (m Multi) Signal(s Signal) {
	for _, f := range m {
		emitSafe(f, s)
	}
}

// AsyncFeedback hands signals to a buffered channel and drops them when the
// buffer is full, so a slow consumer never stalls the event loop.
type AsyncFeedback struct {
	ch chan Signal
}

// NewAsyncFeedback creates an AsyncFeedback with the given buffer size.
func NewAsyncFeedback(buffer int) *AsyncFeedback {
	return &AsyncFeedback{ch: make(chan Signal, buffer)}
}

func (a *AsyncFeedback) Signal(s Signal) {
	select {
	case a.ch <- s:
	default:
	}
}

// C returns the channel signals are delivered on.
func (a *AsyncFeedback) C() <-chan Signal { return a.ch }

func emitSafe(f Feedback, s Signal) {
	defer func() { _ = recover() }()
	f.Signal(s)
}
