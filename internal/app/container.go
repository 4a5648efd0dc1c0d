package app

import (
	"go.uber.org/zap"

	"github.com/Faultbox/hero3d/internal/logger"
)

// Fade classes applied to the hero container.
const (
	ClassHidden = "opacity-0"
	ClassShown  = "opacity-100"
)

// Container is the element wrapping the drawing surface. It carries exactly
// one of the two fade classes; apply renders the class change (for the SDL
// window, as its opacity).
type Container struct {
	class string
	apply func(opacity float32) error
}

// NewContainer creates a container that starts hidden. apply may be nil.
func NewContainer(apply func(opacity float32) error) *Container {
	c := &Container{apply: apply}
	c.set(ClassHidden)
	return c
}

// Class returns the current fade class.
func (c *Container) Class() string {
	return c.class
}

// Shown reports whether the container carries ClassShown.
func (c *Container) Shown() bool {
	return c.class == ClassShown
}

// FadeIn swaps ClassHidden for ClassShown.
func (c *Container) FadeIn() {
	c.set(ClassShown)
}

// FadeOut swaps ClassShown for ClassHidden.
func (c *Container) FadeOut() {
	c.set(ClassHidden)
}

func (c *Container) set(class string) {
	if c.class == class {
		return
	}
	c.class = class
	if c.apply == nil {
		return
	}
	opacity := float32(0)
	if class == ClassShown {
		opacity = 1
	}
	if err := c.apply(opacity); err != nil {
		logger.Warn("container fade failed", zap.String("class", class), zap.Error(err))
	}
}
