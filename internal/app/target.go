package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/hero3d/internal/bridge"
	"github.com/Faultbox/hero3d/internal/engine/frame"
	"github.com/Faultbox/hero3d/internal/engine/model"
	"github.com/Faultbox/hero3d/internal/hero"
	"github.com/Faultbox/hero3d/internal/logger"
)

// Target is the rendering side driven by the application: either the hero
// core running locally or the bridge to a worker running it.
type Target interface {
	// Start begins the session: the model load and the first frame.
	Start(ctx context.Context) error
	Pointer(p hero.Pointer)
	Resize(width, height int)
	SetVisible(visible bool)
	// Pump runs work owned by the foreground context. Called once per
	// main loop iteration.
	Pump()
	// Loaded reports, once, that the model has been attached.
	Loaded() bool
	// Busy reports whether the foreground has frames to render.
	Busy() bool
	Close() error
}

// Local runs the hero core on the foreground context.
type Local struct {
	renderer bridge.Renderer
	loader   *model.Loader
	queue    *frame.Queue
	core     *hero.Core
	loaded   bool
}

// NewLocal creates the local path around r.
func NewLocal(r bridge.Renderer, loader *model.Loader, motion hero.Motion) *Local {
	l := &Local{
		renderer: r,
		loader:   loader,
		queue:    frame.NewQueue(),
	}
	l.core = hero.New(r, l.queue, hero.Options{
		Motion:   motion,
		Name:     "local",
		OnLoaded: func() { l.loaded = true },
	})
	return l
}

// Core returns the hero core.
func (l *Local) Core() *hero.Core {
	return l.core
}

func (l *Local) Start(ctx context.Context) error {
	if l.loader != nil {
		l.core.Load(ctx, l.loader)
	}
	l.core.Start()
	return nil
}

func (l *Local) Pointer(p hero.Pointer) {
	l.core.SetPointer(p)
}

func (l *Local) Resize(width, height int) {
	l.core.Resize(width, height)
}

func (l *Local) SetVisible(visible bool) {
	l.core.SetVisible(visible)
}

func (l *Local) Pump() {
	l.core.PollLoad()
	l.queue.Run()
}

func (l *Local) Loaded() bool {
	loaded := l.loaded
	l.loaded = false
	return loaded
}

func (l *Local) Busy() bool {
	return l.core.Running()
}

func (l *Local) Close() error {
	l.core.Stop()
	l.renderer.Close()
	return nil
}

// Delegated forwards intents to a worker that owns the surface.
type Delegated struct {
	coord   *bridge.Coordinator
	worker  *bridge.Worker
	surface bridge.Surface
	width   int
	height  int

	// ctx bounds blocking intents; it ends with the worker.
	ctx  context.Context
	done chan error
	log  *zap.Logger
}

// NewDelegated creates the delegated path. The surface is transferred to the
// worker on Start.
func NewDelegated(coord *bridge.Coordinator, worker *bridge.Worker, surface bridge.Surface, width, height int) *Delegated {
	return &Delegated{
		coord:   coord,
		worker:  worker,
		surface: surface,
		width:   width,
		height:  height,
		ctx:     context.Background(),
		log:     logger.Named("delegated"),
	}
}

func (d *Delegated) Start(ctx context.Context) error {
	if d.done != nil {
		return bridge.ErrAlreadyTransferred
	}
	sendCtx, cancel := context.WithCancel(ctx)
	d.ctx = sendCtx
	d.done = make(chan error, 1)
	go func() {
		err := d.worker.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			d.log.Error("worker stopped early", zap.Error(err))
		}
		cancel()
		d.done <- err
	}()
	if err := d.coord.Transfer(ctx, d.surface, d.width, d.height); err != nil {
		return fmt.Errorf("transfer surface: %w", err)
	}
	return nil
}

func (d *Delegated) Pointer(p hero.Pointer) {
	d.coord.Pointer(p)
}

func (d *Delegated) Resize(width, height int) {
	if d.Stopped() {
		return
	}
	if err := d.coord.Resize(d.ctx, width, height); err != nil {
		d.log.Debug("resize not forwarded", zap.Error(err))
	}
}

func (d *Delegated) SetVisible(visible bool) {
	if d.Stopped() {
		return
	}
	if err := d.coord.Visibility(d.ctx, visible); err != nil {
		d.log.Debug("visibility not forwarded", zap.Error(err))
	}
}

func (d *Delegated) Pump() {}

// Stopped reports whether the worker has exited.
func (d *Delegated) Stopped() bool {
	return d.done != nil && d.ctx.Err() != nil
}

func (d *Delegated) Loaded() bool {
	return d.coord.Loaded()
}

func (d *Delegated) Busy() bool {
	return false
}

// Close ends the session, waits for the worker to release the surface and
// takes the surface back for foreground teardown.
func (d *Delegated) Close() error {
	d.coord.Close()
	if d.done == nil {
		return nil
	}
	err := <-d.done
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	d.done = nil
	d.log.Info("worker finished",
		zap.Uint64("frames", d.worker.Frames()),
		zap.Int64("dropped_pointer_updates", d.coord.Dropped()),
	)
	return multierr.Append(err, d.surface.Acquire())
}
