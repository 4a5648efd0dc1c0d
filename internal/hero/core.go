// Package hero is the rendering core shared by the delegated and local paths.
//
// A Core owns the scene (through a Renderer), the model group, the pointer
// target, the render loop and the visibility gate. It is not safe for
// concurrent use: it lives entirely inside one execution context, which feeds
// it events and pumps its frame scheduler.
package hero

import (
	"context"

	"go.uber.org/zap"

	"github.com/Faultbox/hero3d/internal/engine/frame"
	"github.com/Faultbox/hero3d/internal/engine/loop"
	"github.com/Faultbox/hero3d/internal/engine/model"
	"github.com/Faultbox/hero3d/internal/logger"
)

// Renderer draws the scene. Implementations own GPU state and must only be
// used from the context that created them.
type Renderer interface {
	// Upload moves the model's geometry to the GPU.
	Upload(m *model.Model) error
	// Resize updates the camera aspect and the drawing surface size.
	Resize(width, height int)
	// Render draws one frame. g is nil until the model has loaded.
	Render(g *model.Group)
}

// Core is the shared scene, loader, loop and visibility state.
type Core struct {
	renderer Renderer
	loop     *loop.Loop
	motion   Motion
	log      *zap.Logger

	pointer Pointer
	group   *model.Group
	visible bool

	loading  <-chan model.Result
	onLoaded func()
}

// Options configures a Core.
type Options struct {
	Motion Motion
	// Name tags log output with the owning context.
	Name string
	// OnLoaded is called once, on the owning context, after the model is
	// attached to the scene.
	OnLoaded func()
}

// New creates a Core drawing through r and scheduling frames on sched.
// The core starts visible with the loop stopped.
func New(r Renderer, sched frame.Scheduler, opts Options) *Core {
	if opts.Motion == (Motion{}) {
		opts.Motion = DefaultMotion()
	}
	if opts.Name == "" {
		opts.Name = "hero"
	}
	c := &Core{
		renderer: r,
		motion:   opts.Motion,
		log:      logger.Named(opts.Name),
		visible:  true,
		onLoaded: opts.OnLoaded,
	}
	c.loop = loop.New(sched, c.Visible, c.step)
	return c
}

// Visible reports the visibility gate.
func (c *Core) Visible() bool {
	return c.visible
}

// Running reports whether the render loop is running.
func (c *Core) Running() bool {
	return c.loop.Running()
}

// Frames returns the number of frames rendered.
func (c *Core) Frames() uint64 {
	return c.loop.Frames()
}

// Group returns the model group, or nil before the model has loaded.
func (c *Core) Group() *model.Group {
	return c.group
}

// Pointer returns the current pointer target.
func (c *Core) Pointer() Pointer {
	return c.pointer
}

// Start starts the render loop if visible.
func (c *Core) Start() {
	c.loop.Start()
}

// Load starts the single load attempt for this session. Further calls are
// ignored once a load is in flight or finished.
func (c *Core) Load(ctx context.Context, l *model.Loader) {
	if c.loading != nil || c.group != nil {
		return
	}
	c.log.Info("loading model", zap.String("path", l.Path))
	c.loading = l.Load(ctx)
}

// Loading returns the pending load result channel, or nil when no load is in
// flight. Owners select on it and pass the result to HandleLoad.
func (c *Core) Loading() <-chan model.Result {
	return c.loading
}

// PollLoad handles a finished load without blocking. It returns true if a
// result was handled.
func (c *Core) PollLoad() bool {
	if c.loading == nil {
		return false
	}
	select {
	case res := <-c.loading:
		c.HandleLoad(res)
		return true
	default:
		return false
	}
}

// HandleLoad attaches a loaded model or logs the failure. A failed load
// leaves the scene empty; the loop keeps rendering it.
func (c *Core) HandleLoad(res model.Result) {
	c.loading = nil
	if res.Err != nil {
		c.log.Error("error loading model", zap.Error(res.Err))
		return
	}
	if err := c.renderer.Upload(res.Model); err != nil {
		c.log.Error("error uploading model", zap.Error(err))
		return
	}
	c.group = model.NewGroup(res.Model)
	c.log.Info("model loaded", zap.Float32("scale", res.Model.Scale))
	if c.onLoaded != nil {
		c.onLoaded()
	}
	c.loop.Start()
}

// SetPointer updates the pointer target read by the next frame.
func (c *Core) SetPointer(p Pointer) {
	c.pointer = p
}

// Resize forwards a new surface size to the renderer.
func (c *Core) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.renderer.Resize(width, height)
}

// SetVisible opens or closes the visibility gate and starts or stops the
// loop to match.
func (c *Core) SetVisible(visible bool) {
	c.visible = visible
	if visible {
		c.loop.Start()
	} else {
		c.loop.Stop()
	}
	c.log.Debug("visibility", zap.Bool("visible", visible), zap.Bool("running", c.loop.Running()))
}

// Stop stops the loop without touching the visibility gate.
func (c *Core) Stop() {
	c.loop.Stop()
}

func (c *Core) step() {
	if c.group != nil {
		c.motion.Apply(c.group, c.pointer)
	}
	c.renderer.Render(c.group)
}
