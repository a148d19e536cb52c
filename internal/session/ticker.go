package session

import "time"

// TickSource is a restartable periodic clock owned by whoever owns the
// controller. C returns nil while the source is stopped, so a select on it
// never fires.
type TickSource interface {
	Start()
	Stop()
	C() <-chan time.Time
}

// Ticker is a TickSource backed by time.Ticker.
type Ticker struct {
	interval time.Duration
	t        *time.Ticker
}

// NewTicker returns a stopped Ticker firing every interval once started.
func NewTicker(interval time.Duration) *Ticker {
	return &Ticker{interval: interval}
}

// Start begins ticking. Starting a running ticker is a no-op.
func (t *Ticker) Start() {
	if t.t != nil {
		return
	}
	t.t = time.NewTicker(t.interval)
}

// Stop halts the ticker and releases it.
func (t *Ticker) Stop() {
	if t.t == nil {
		return
	}
	t.t.Stop()
	t.t = nil
}

func (t *Ticker) C() <-chan time.Time {
	if t.t == nil {
		return nil
	}
	return t.t.C
}
