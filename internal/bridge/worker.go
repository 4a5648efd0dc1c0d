package bridge

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/Faultbox/hero3d/internal/engine/frame"
	"github.com/Faultbox/hero3d/internal/engine/model"
	"github.com/Faultbox/hero3d/internal/hero"
	"github.com/Faultbox/hero3d/internal/logger"
)

// WorkerOptions configures a Worker.
type WorkerOptions struct {
	NewRenderer RendererFactory
	Loader      *model.Loader
	Motion      hero.Motion
}

// Worker is the background end of the bridge. It owns the transferred
// surface and runs a hero.Core on a dedicated OS thread.
type Worker struct {
	ch     *Channel
	opts   WorkerOptions
	log    *zap.Logger
	frames atomic.Uint64

	queue    *frame.Queue
	core     *hero.Core
	renderer Renderer
	surface  Surface
	visible  bool
}

// NewWorker creates the background end of ch.
func NewWorker(ch *Channel, opts WorkerOptions) *Worker {
	return &Worker{
		ch:      ch,
		opts:    opts,
		log:     logger.Named("worker"),
		queue:   frame.NewQueue(),
		visible: true,
	}
}

// Frames returns the number of frames rendered so far. Safe to call from any
// goroutine.
func (w *Worker) Frames() uint64 {
	return w.frames.Load()
}

// Run processes messages until ctx is done or the coordinator closes the
// channel. It must run on its own goroutine; it locks that goroutine to an
// OS thread because the surface's rendering context is thread-bound.
func (w *Worker) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer w.shutdown()

	for {
		if w.core != nil && w.core.Running() {
			if done, err := w.drain(ctx); done {
				return err
			}
			w.queue.Run()
			w.frames.Store(w.core.Frames())
			continue
		}

		select {
		case msg, ok := <-w.ch.toWorker:
			if !ok {
				return nil
			}
			if err := w.handle(ctx, msg); err != nil {
				return err
			}
		case res := <-w.loading():
			w.core.HandleLoad(res)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drain handles every queued message without blocking. It reports whether
// the worker must exit.
func (w *Worker) drain(ctx context.Context) (bool, error) {
	for {
		select {
		case msg, ok := <-w.ch.toWorker:
			if !ok {
				return true, nil
			}
			if err := w.handle(ctx, msg); err != nil {
				return true, err
			}
		case res := <-w.loading():
			w.core.HandleLoad(res)
		case <-ctx.Done():
			return true, ctx.Err()
		default:
			return false, nil
		}
	}
}

func (w *Worker) loading() <-chan model.Result {
	if w.core == nil {
		return nil
	}
	return w.core.Loading()
}

func (w *Worker) handle(ctx context.Context, msg Message) error {
	switch msg.Type {
	case MsgInit:
		return w.init(ctx, msg)
	case MsgMouse:
		if w.core != nil {
			w.core.SetPointer(msg.Pointer)
		}
	case MsgResize:
		if w.core != nil {
			w.core.Resize(msg.Width, msg.Height)
		}
	case MsgVisibility:
		w.visible = msg.Visible
		if w.core != nil {
			w.core.SetVisible(msg.Visible)
		}
	default:
		w.log.Warn("unexpected message", zap.Stringer("type", msg.Type))
	}
	return nil
}

func (w *Worker) init(ctx context.Context, msg Message) error {
	if w.core != nil {
		w.log.Warn("ignoring second surface transfer")
		return nil
	}
	if msg.Surface == nil {
		return errors.New("init without surface")
	}
	if err := msg.Surface.Acquire(); err != nil {
		return fmt.Errorf("acquire surface: %w", err)
	}
	w.surface = msg.Surface

	r, err := w.opts.NewRenderer(msg.Surface, msg.Width, msg.Height)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	w.renderer = r

	w.core = hero.New(r, w.queue, hero.Options{
		Motion:   w.opts.Motion,
		Name:     "worker",
		OnLoaded: w.notifyLoaded,
	})
	w.log.Info("surface received", zap.Int("width", msg.Width), zap.Int("height", msg.Height))

	if w.opts.Loader != nil {
		w.core.Load(ctx, w.opts.Loader)
	}
	w.core.SetVisible(w.visible)
	return nil
}

func (w *Worker) notifyLoaded() {
	select {
	case w.ch.toMain <- Message{Type: MsgLoaded}:
	default:
		w.log.Warn("loaded signal dropped")
	}
}

func (w *Worker) shutdown() {
	if w.core != nil {
		w.core.Stop()
	}
	if w.renderer != nil {
		w.renderer.Close()
	}
	if w.surface != nil {
		if err := w.surface.Release(); err != nil {
			w.log.Warn("release surface", zap.Error(err))
		}
	}
	w.log.Info("worker stopped", zap.Uint64("frames", w.frames.Load()))
}
