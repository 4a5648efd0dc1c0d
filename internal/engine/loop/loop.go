// Package loop implements the gated, self-stopping render loop.
package loop

import (
	"github.com/Faultbox/hero3d/internal/engine/frame"
)

// Loop drives a per-frame step function through a frame.Scheduler.
//
// The loop is either running (exactly one frame handle outstanding) or
// stopped (no handle). Start and Stop are idempotent. A frame that finds the
// gate closed stops the loop instead of rescheduling, so a delayed or missing
// Stop never leaves the loop spinning.
type Loop struct {
	sched  frame.Scheduler
	gate   func() bool
	step   func()
	handle frame.Handle
	frames uint64
}

// New creates a stopped loop. gate reports whether frames may run; step
// advances and draws one frame.
func New(sched frame.Scheduler, gate func() bool, step func()) *Loop {
	return &Loop{
		sched: sched,
		gate:  gate,
		step:  step,
	}
}

// Running reports whether a frame is scheduled.
func (l *Loop) Running() bool {
	return l.handle != 0
}

// Frames returns the number of frames stepped since creation.
func (l *Loop) Frames() uint64 {
	return l.frames
}

// Start schedules the next frame unless the loop is already running or the
// gate is closed.
func (l *Loop) Start() {
	if l.handle != 0 || !l.gate() {
		return
	}
	l.handle = l.sched.RequestFrame(l.tick)
}

// Stop cancels the pending frame. Safe to call when already stopped.
func (l *Loop) Stop() {
	if l.handle == 0 {
		return
	}
	l.sched.CancelFrame(l.handle)
	l.handle = 0
}

func (l *Loop) tick() {
	if !l.gate() {
		l.handle = 0
		return
	}
	// Reschedule before stepping so a step that stops the loop wins.
	l.handle = l.sched.RequestFrame(l.tick)
	l.frames++
	l.step()
}
