// Package liveness decides whether the hero render loop should be running.
//
// Three independent suppression flags are combined with a one-shot idle
// timeout. Every event handler mutates the flags and then recomputes; the
// sink is notified only when the effective state flips.
package liveness

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Default values for Options.
const (
	DefaultIdleTimeout = 5 * time.Second
	DefaultHomeView    = "home"
)

// Flags is the set of explicit suppression signals.
type Flags struct {
	Hidden  bool // window hidden or minimized
	Slammed bool // hero dismissed by a slam transition
	NotHome bool // current view is not the home view
}

// Live reports whether no flag suppresses rendering.
func (f Flags) Live() bool {
	return !f.Hidden && !f.Slammed && !f.NotHome
}

// Interaction identifies the kind of user activity that was observed.
type Interaction int

const (
	InteractionPointer Interaction = iota
	InteractionScroll
	InteractionClick
	InteractionKey
	InteractionTouch
	// InteractionApp is activity implied by an application event
	// (slam reset, returning home).
	InteractionApp
)

func (i Interaction) String() string {
	switch i {
	case InteractionPointer:
		return "pointer"
	case InteractionScroll:
		return "scroll"
	case InteractionClick:
		return "click"
	case InteractionKey:
		return "key"
	case InteractionTouch:
		return "touch"
	case InteractionApp:
		return "app"
	default:
		return "unknown"
	}
}

// Options configures a Controller.
type Options struct {
	// IdleTimeout is the window after start in which an interaction must
	// occur to avoid the one-shot idle suppression. Zero disables it.
	IdleTimeout time.Duration
	// HomeView is the view id on which the hero is shown.
	HomeView string
	// ResumeOnInteraction lifts the idle suppression on the next user
	// interaction instead of waiting for the next recompute event.
	ResumeOnInteraction bool
	// Clock is the time source; nil means the wall clock.
	Clock clock.Clock
}

// DefaultOptions returns the standard idle timeout and home view.
func DefaultOptions() Options {
	return Options{
		IdleTimeout: DefaultIdleTimeout,
		HomeView:    DefaultHomeView,
	}
}

// Controller aggregates liveness signals. It is not safe for concurrent use;
// it belongs to the foreground context.
type Controller struct {
	opts  Options
	clock clock.Clock
	sink  func(live bool)

	flags      Flags
	suppressed bool // idle suppression in effect
	interacted bool
	idleFired  bool
	deadline   time.Time
	live       bool
}

// New creates a controller with all flags clear (live) and arms the idle
// timeout. sink is called with the new effective state on every flip.
func New(opts Options, sink func(live bool)) *Controller {
	if opts.HomeView == "" {
		opts.HomeView = DefaultHomeView
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	if sink == nil {
		sink = func(bool) {}
	}
	c := &Controller{
		opts:  opts,
		clock: clk,
		sink:  sink,
		live:  true,
	}
	if opts.IdleTimeout > 0 {
		c.deadline = clk.Now().Add(opts.IdleTimeout)
	} else {
		c.idleFired = true
	}
	return c
}

// Live returns the effective liveness state.
func (c *Controller) Live() bool {
	return c.live
}

// Flags returns the current explicit flags.
func (c *Controller) Flags() Flags {
	return c.flags
}

// IdleSuppressed reports whether the one-shot idle suppression is in effect.
func (c *Controller) IdleSuppressed() bool {
	return c.suppressed
}

// Interacted reports whether any user interaction has been observed.
func (c *Controller) Interacted() bool {
	return c.interacted
}

// SetHidden records window visibility and recomputes. A report that matches
// the current state is ignored.
func (c *Controller) SetHidden(hidden bool) {
	if c.flags.Hidden == hidden {
		return
	}
	c.flags.Hidden = hidden
	c.recompute()
}

// SlamImpact marks the hero as dismissed and recomputes.
func (c *Controller) SlamImpact() {
	c.flags.Slammed = true
	c.recompute()
}

// SlamReset clears the dismissal, counts as interaction and recomputes.
func (c *Controller) SlamReset() {
	c.flags.Slammed = false
	c.interacted = true
	c.recompute()
}

// ViewChange records the current view. Returning to the home view counts as
// interaction and also clears a pending slam dismissal.
func (c *Controller) ViewChange(view string) {
	home := view == c.opts.HomeView
	c.flags.NotHome = !home
	if home {
		c.interacted = true
		c.flags.Slammed = false
	}
	c.recompute()
}

// Interact records user activity. It does not recompute the flags; with
// ResumeOnInteraction set it lifts an active idle suppression.
func (c *Controller) Interact(kind Interaction) {
	c.interacted = true
	if c.opts.ResumeOnInteraction && c.suppressed {
		c.suppressed = false
		c.emit()
	}
}

// Poll fires the idle timeout once its deadline has passed. It returns true
// if this call applied the idle suppression.
func (c *Controller) Poll() bool {
	if c.idleFired || c.clock.Now().Before(c.deadline) {
		return false
	}
	c.idleFired = true
	if c.interacted {
		return false
	}
	c.suppressed = true
	c.emit()
	return true
}

// IdleDeadline returns when the idle timeout fires, or the zero time if it
// already fired or is disabled.
func (c *Controller) IdleDeadline() time.Time {
	if c.idleFired {
		return time.Time{}
	}
	return c.deadline
}

// recompute re-derives liveness from the flags. Any recompute ends the idle
// suppression.
func (c *Controller) recompute() {
	c.suppressed = false
	c.emit()
}

func (c *Controller) emit() {
	live := c.flags.Live() && !c.suppressed
	if live == c.live {
		return
	}
	c.live = live
	c.sink(live)
}
