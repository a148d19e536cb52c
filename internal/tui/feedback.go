package tui

import (
	"io"

	"github.com/meltforce/pulsefit/internal/session"
)

// bell rings the terminal bell on interval boundaries, twice on completion.
type bell struct {
	w       io.Writer
	enabled bool
}

func (b bell) Signal(s session.Signal) {
	if !b.enabled || b.w == nil {
		return
	}
	switch s {
	case session.SignalIntervalSuccess:
		io.WriteString(b.w, "\a")
	case session.SignalSessionComplete:
		io.WriteString(b.w, "\a\a")
	}
}
