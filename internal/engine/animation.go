package engine

import (
	"sync/atomic"
	"time"
)

// tickInterval is ~60 Hz.
const tickInterval = 16 * time.Millisecond

// Animator drives purely visual animation state (dash flow phase) from a
// background ticker. The tick only bumps an atomic counter and requests
// a redraw; it never mutates scene topology, so the renderer can read
// the phase from any goroutine without racing scene mutation.
type Animator struct {
	phase   atomic.Int64
	running atomic.Bool
	stop    chan struct{}
	redraw  func()
}

// NewAnimator creates a stopped animator. The redraw callback must be
// safe to call from the ticker goroutine (marshal to the UI thread in
// hosts that have one).
func NewAnimator(redraw func()) *Animator {
	return &Animator{redraw: redraw}
}

// Start begins ticking. Idempotent.
func (a *Animator) Start() {
	if a.running.Swap(true) {
		return
	}
	a.stop = make(chan struct{})

	go func(stop chan struct{}) {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.phase.Add(1)
				if a.redraw != nil {
					a.redraw()
				}
			case <-stop:
				return
			}
		}
	}(a.stop)
}

// Stop halts ticking immediately. Idempotent.
func (a *Animator) Stop() {
	if !a.running.Swap(false) {
		return
	}
	close(a.stop)
}

// Running reports whether the ticker is active.
func (a *Animator) Running() bool {
	return a.running.Load()
}

// Phase returns the monotonically increasing animation counter.
func (a *Animator) Phase() int64 {
	return a.phase.Load()
}
