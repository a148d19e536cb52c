package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned for commands sent to a closed Runner.
var ErrClosed = errors.New("session closed")

// Command is a user intent accepted by a Runner.
type Command string

const (
	CmdStart    Command = "start"
	CmdPause    Command = "pause"
	CmdToggle   Command = "toggle"
	CmdNext     Command = "next"
	CmdPrevious Command = "previous"
	CmdSnapshot Command = "snapshot"
)

// ParseCommand maps a command name to a Command.
func ParseCommand(s string) (Command, bool) {
	switch c := Command(s); c {
	case CmdStart, CmdPause, CmdToggle, CmdNext, CmdPrevious, CmdSnapshot:
		return c, true
	}
	return "", false
}

// Hooks are called from the runner's goroutine and must return quickly.
type Hooks struct {
	OnTick     func(Snapshot)
	OnComplete func(Snapshot)
}

type request struct {
	cmd   Command
	reply chan Snapshot
}

// Runner owns a Controller and its TickSource and serializes ticks and
// commands on a single goroutine. The tick source runs only while the
// controller is playing.
type Runner struct {
	ctrl    *Controller
	ticks   TickSource
	hooks   Hooks
	ticking bool

	reqs chan request
	quit chan struct{}
	done chan struct{}
	once sync.Once

	final Snapshot
}

// NewRunner starts the event loop for ctrl. The caller must call Close.
func NewRunner(ctrl *Controller, ticks TickSource, hooks Hooks) *Runner {
	r := &Runner{
		ctrl:  ctrl,
		ticks: ticks,
		hooks: hooks,
		reqs:  make(chan request),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go r.loop()
	return r
}

// Do applies cmd and returns the snapshot taken right after it.
func (r *Runner) Do(ctx context.Context, cmd Command) (Snapshot, error) {
	req := request{cmd: cmd, reply: make(chan Snapshot, 1)}
	select {
	case r.reqs <- req:
	case <-r.done:
		return Snapshot{}, ErrClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	return <-req.reply, nil
}

// Snapshot returns the current snapshot.
func (r *Runner) Snapshot(ctx context.Context) (Snapshot, error) {
	return r.Do(ctx, CmdSnapshot)
}

// Done is closed once the loop has exited.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Close stops the tick source and the loop, and returns the final snapshot.
// No tick is applied after Close returns. Close is idempotent.
func (r *Runner) Close() Snapshot {
	r.once.Do(func() { close(r.quit) })
	<-r.done
	return r.final
}

func (r *Runner) loop() {
	defer close(r.done)
	for {
		var tc <-chan time.Time
		if r.ticking {
			tc = r.ticks.C()
		}

		select {
		case <-tc:
			wasComplete := r.ctrl.State().IsComplete
			r.ctrl.Tick()
			snap := r.ctrl.Snapshot()
			if r.hooks.OnTick != nil {
				r.hooks.OnTick(snap)
			}
			if !wasComplete && snap.IsComplete && r.hooks.OnComplete != nil {
				r.hooks.OnComplete(snap)
			}
		case req := <-r.reqs:
			r.apply(req.cmd)
			r.syncTicks()
			req.reply <- r.ctrl.Snapshot()
			continue
		case <-r.quit:
			r.ticks.Stop()
			r.ticking = false
			r.ctrl.Close()
			r.final = r.ctrl.Snapshot()
			return
		}
		r.syncTicks()
	}
}

func (r *Runner) apply(cmd Command) {
	switch cmd {
	case CmdStart:
		r.ctrl.Start()
	case CmdPause:
		r.ctrl.Pause()
	case CmdToggle:
		r.ctrl.Toggle()
	case CmdNext:
		r.ctrl.SkipToNext()
	case CmdPrevious:
		r.ctrl.SkipToPrevious()
	}
}

func (r *Runner) syncTicks() {
	playing := r.ctrl.State().IsPlaying
	switch {
	case playing && !r.ticking:
		r.ticks.Start()
		r.ticking = true
	case !playing && r.ticking:
		r.ticks.Stop()
		r.ticking = false
	}
}
