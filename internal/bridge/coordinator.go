package bridge

import (
	"context"
	"errors"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/Faultbox/hero3d/internal/hero"
	"github.com/Faultbox/hero3d/internal/logger"
)

var (
	// ErrAlreadyTransferred is returned by a second Transfer.
	ErrAlreadyTransferred = errors.New("surface already transferred")
	// ErrNotTransferred is returned when sending intents before Transfer.
	ErrNotTransferred = errors.New("surface not transferred")
	// ErrClosed is returned when sending after Close.
	ErrClosed = errors.New("bridge closed")
)

// Coordinator is the foreground end of the bridge.
type Coordinator struct {
	ch          *Channel
	transferred atomic.Bool
	closed      atomic.Bool
	dropped     atomic.Int64
	log         *zap.Logger
}

// NewCoordinator creates the foreground end of ch.
func NewCoordinator(ch *Channel) *Coordinator {
	return &Coordinator{
		ch:  ch,
		log: logger.Named("foreground"),
	}
}

// Transfer releases the surface from the calling thread and hands it to the
// worker. It succeeds at most once per session.
func (c *Coordinator) Transfer(ctx context.Context, s Surface, width, height int) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if c.transferred.Swap(true) {
		return ErrAlreadyTransferred
	}
	if err := s.Release(); err != nil {
		return err
	}
	c.log.Info("transferring surface", zap.Int("width", width), zap.Int("height", height))
	return c.send(ctx, Message{Type: MsgInit, Surface: s, Width: width, Height: height})
}

// Transferred reports whether the surface has been handed over.
func (c *Coordinator) Transferred() bool {
	return c.transferred.Load()
}

// Pointer forwards a pointer update. Updates are dropped when the worker
// queue is full; the next update supersedes them anyway.
func (c *Coordinator) Pointer(p hero.Pointer) {
	if !c.transferred.Load() || c.closed.Load() {
		return
	}
	select {
	case c.ch.toWorker <- Message{Type: MsgMouse, Pointer: p}:
	default:
		c.dropped.Inc()
	}
}

// Resize forwards a new surface size.
func (c *Coordinator) Resize(ctx context.Context, width, height int) error {
	if !c.transferred.Load() {
		return ErrNotTransferred
	}
	return c.send(ctx, Message{Type: MsgResize, Width: width, Height: height})
}

// Visibility forwards the liveness decision.
func (c *Coordinator) Visibility(ctx context.Context, visible bool) error {
	if !c.transferred.Load() {
		return ErrNotTransferred
	}
	return c.send(ctx, Message{Type: MsgVisibility, Visible: visible})
}

// Loaded reports, without blocking, whether the worker signalled that the
// model is loaded. It returns true at most once.
func (c *Coordinator) Loaded() bool {
	select {
	case msg := <-c.ch.toMain:
		if msg.Type != MsgLoaded {
			c.log.Warn("unexpected inbound message", zap.Stringer("type", msg.Type))
			return false
		}
		return true
	default:
		return false
	}
}

// Dropped returns the number of pointer updates dropped on a full queue.
func (c *Coordinator) Dropped() int64 {
	return c.dropped.Load()
}

// Close ends the session; the worker exits after draining queued messages.
func (c *Coordinator) Close() {
	if c.closed.Swap(true) {
		return
	}
	close(c.ch.toWorker)
}

func (c *Coordinator) send(ctx context.Context, msg Message) error {
	if c.closed.Load() {
		return ErrClosed
	}
	select {
	case c.ch.toWorker <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
