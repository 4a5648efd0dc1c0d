// Package app is the foreground coordinator of the hero renderer.
//
// It owns the liveness controller and the container fade state, translates
// window input into intents for the active Target and runs the main loop.
// All methods must be called from the main goroutine.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bep/debounce"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Faultbox/hero3d/internal/hero"
	"github.com/Faultbox/hero3d/internal/liveness"
	"github.com/Faultbox/hero3d/internal/logger"
)

// Default timings.
const (
	DefaultPointerInterval = 16 * time.Millisecond
	DefaultResizeDelay     = 100 * time.Millisecond
	DefaultIdleWait        = 50 * time.Millisecond
)

// EventKind names an application event.
type EventKind string

const (
	EventSlamImpact EventKind = "slam-impact"
	EventSlamReset  EventKind = "slam-reset"
	EventViewChange EventKind = "view-change"
	EventQuit       EventKind = "quit"
)

// Event is an application event raised by the surrounding UI.
type Event struct {
	Kind EventKind
	// View is the target view id for EventViewChange.
	View string
}

// Options configures an App.
type Options struct {
	Liveness        liveness.Options
	PointerInterval time.Duration
	ResizeDelay     time.Duration
	// IdleWait bounds how long the main loop blocks on input while the
	// foreground has no frames to render.
	IdleWait time.Duration
	// Bindings maps SDL key names (case-insensitive) to events.
	Bindings map[string]Event
	Clock    clock.Clock
}

// DefaultBindings returns the standard key bindings.
func DefaultBindings() map[string]Event {
	return map[string]Event{
		"s":      {Kind: EventSlamImpact},
		"r":      {Kind: EventSlamReset},
		"h":      {Kind: EventViewChange, View: liveness.DefaultHomeView},
		"w":      {Kind: EventViewChange, View: "work"},
		"escape": {Kind: EventQuit},
	}
}

// DefaultOptions returns the standard timings and bindings.
func DefaultOptions() Options {
	return Options{
		Liveness:        liveness.DefaultOptions(),
		PointerInterval: DefaultPointerInterval,
		ResizeDelay:     DefaultResizeDelay,
		IdleWait:        DefaultIdleWait,
		Bindings:        DefaultBindings(),
	}
}

// App coordinates one hero session.
type App struct {
	opts      Options
	target    Target
	container *Container
	live      *liveness.Controller
	clock     clock.Clock
	limiter   *rate.Limiter
	debounced func(func())
	tasks     chan func()
	log       *zap.Logger

	width, height int
	quit          bool
}

// New creates the coordinator for target. width and height are the
// current window size.
func New(target Target, container *Container, width, height int, opts Options) *App {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.PointerInterval <= 0 {
		opts.PointerInterval = DefaultPointerInterval
	}
	if opts.ResizeDelay <= 0 {
		opts.ResizeDelay = DefaultResizeDelay
	}
	if opts.IdleWait <= 0 {
		opts.IdleWait = DefaultIdleWait
	}
	if opts.Bindings == nil {
		opts.Bindings = DefaultBindings()
	}
	bindings := make(map[string]Event, len(opts.Bindings))
	for k, ev := range opts.Bindings {
		bindings[strings.ToLower(k)] = ev
	}
	opts.Bindings = bindings
	opts.Liveness.Clock = opts.Clock
	if opts.Liveness.HomeView == "" {
		opts.Liveness.HomeView = liveness.DefaultHomeView
	}

	a := &App{
		opts:      opts,
		target:    target,
		container: container,
		clock:     opts.Clock,
		limiter:   rate.NewLimiter(rate.Every(opts.PointerInterval), 1),
		debounced: debounce.New(opts.ResizeDelay),
		tasks:     make(chan func(), 16),
		log:       logger.Named("app"),
		width:     width,
		height:    height,
	}
	a.live = liveness.New(opts.Liveness, a.onLiveness)
	return a
}

// Liveness returns the liveness controller.
func (a *App) Liveness() *liveness.Controller {
	return a.live
}

// Container returns the hero container.
func (a *App) Container() *Container {
	return a.container
}

// Done reports whether a quit was requested.
func (a *App) Done() bool {
	return a.quit
}

func (a *App) onLiveness(live bool) {
	a.log.Debug("liveness changed", zap.Bool("live", live), zap.Any("flags", a.live.Flags()))
	a.target.SetVisible(live)
}

// Run starts the target and runs the main loop until quit or ctx is done.
// poll must deliver pending input to the App, blocking at most timeout.
func (a *App) Run(ctx context.Context, poll func(timeout time.Duration)) error {
	if err := a.target.Start(ctx); err != nil {
		return err
	}
	a.log.Info("session started", zap.Int("width", a.width), zap.Int("height", a.height))
	for !a.quit && ctx.Err() == nil {
		poll(a.Timeout())
		a.Step()
	}
	return nil
}

// Timeout returns how long the next input poll may block.
func (a *App) Timeout() time.Duration {
	if a.target.Busy() {
		return 0
	}
	return a.opts.IdleWait
}

// Step runs one main loop iteration after input has been delivered.
func (a *App) Step() {
	a.runTasks()
	a.target.Pump()
	if a.target.Loaded() {
		a.log.Info("model loaded, fading in")
		a.container.FadeIn()
	}
	if a.live.Poll() {
		a.log.Info("no interaction, pausing rendering")
	}
}

func (a *App) runTasks() {
	for {
		select {
		case task := <-a.tasks:
			task()
		default:
			return
		}
	}
}

// post schedules fn on the main loop. It may be called from any goroutine.
func (a *App) post(fn func()) {
	select {
	case a.tasks <- fn:
	default:
		a.log.Warn("task queue full, dropping task")
	}
}

// Dispatch handles an application event.
func (a *App) Dispatch(ev Event) {
	a.log.Debug("event", zap.String("kind", string(ev.Kind)), zap.String("view", ev.View))
	switch ev.Kind {
	case EventSlamImpact:
		a.container.FadeOut()
		a.live.SlamImpact()
	case EventSlamReset:
		a.container.FadeIn()
		a.live.SlamReset()
	case EventViewChange:
		if ev.View != a.opts.Liveness.HomeView {
			a.live.ViewChange(ev.View)
			a.target.SetVisible(false)
			a.container.FadeOut()
			return
		}
		a.container.FadeIn()
		a.live.ViewChange(ev.View)
	case EventQuit:
		a.quit = true
	default:
		a.log.Warn("unknown event", zap.String("kind", string(ev.Kind)))
	}
}

// PointerMove records pointer activity and forwards the normalized pointer,
// at most once per pointer interval.
func (a *App) PointerMove(x, y int) {
	a.live.Interact(liveness.InteractionPointer)
	if !a.limiter.AllowN(a.clock.Now(), 1) {
		return
	}
	a.target.Pointer(hero.PointerFromWindow(x, y, a.width, a.height))
}

func (a *App) Scroll() {
	a.live.Interact(liveness.InteractionScroll)
}

func (a *App) Click() {
	a.live.Interact(liveness.InteractionClick)
}

func (a *App) Touch() {
	a.live.Interact(liveness.InteractionTouch)
}

// Key records key activity and dispatches a bound event, if any.
func (a *App) Key(name string) {
	a.live.Interact(liveness.InteractionKey)
	if ev, ok := a.opts.Bindings[strings.ToLower(name)]; ok {
		a.Dispatch(ev)
	}
}

// Resize records the new window size immediately for pointer normalization
// and forwards it to the target after the resize delay.
func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.width, a.height = width, height
	a.debounced(func() {
		a.post(func() {
			a.log.Debug("resize", zap.Int("width", a.width), zap.Int("height", a.height))
			a.target.Resize(a.width, a.height)
		})
	})
}

func (a *App) SetHidden(hidden bool) {
	a.live.SetHidden(hidden)
}

func (a *App) Quit() {
	a.quit = true
}

// Close stops rendering and ends the session.
func (a *App) Close() error {
	if a.live.Live() {
		a.target.SetVisible(false)
	}
	err := a.target.Close()
	a.log.Info("session closed", zap.Error(err))
	return err
}
