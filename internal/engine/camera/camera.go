// Package camera provides camera implementations for 3D rendering.
package camera

import (
	gomath "math"

	"github.com/Faultbox/hero3d/pkg/math"
)

// PerspectiveCamera is a fixed camera looking down -Z at the origin.
type PerspectiveCamera struct {
	FovY   float32 // Vertical field of view in degrees
	Aspect float32 // Width / height
	Near   float32
	Far    float32

	Position math.Vec3
	Target   math.Vec3
}

// NewPerspectiveCamera creates a camera at (0, 0, distance) looking at the
// origin.
func NewPerspectiveCamera(fovY, aspect, near, far, distance float32) *PerspectiveCamera {
	if aspect <= 0 {
		aspect = 1
	}
	return &PerspectiveCamera{
		FovY:     fovY,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
		Position: math.Vec3{Z: distance},
	}
}

// SetAspect updates the aspect ratio from a surface size.
// Zero sizes are ignored.
func (c *PerspectiveCamera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// ProjectionMatrix returns the perspective projection.
func (c *PerspectiveCamera) ProjectionMatrix() math.Mat4 {
	fov := float32(float64(c.FovY) * gomath.Pi / 180)
	return math.Perspective(fov, c.Aspect, c.Near, c.Far)
}

// ViewMatrix returns the view matrix for this camera.
func (c *PerspectiveCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position, c.Target, up)
}
