// Package lighting provides the hero scene's light rig.
package lighting

import (
	"github.com/Faultbox/hero3d/pkg/math"
)

// DirectionalLight is a light at infinity shining from Position toward the
// origin.
type DirectionalLight struct {
	Color     [3]float32
	Intensity float32
	Position  math.Vec3
}

// Direction returns the unit vector from the origin toward the light.
func (l DirectionalLight) Direction() [3]float32 {
	d := l.Position.Normalize()
	return [3]float32{d.X, d.Y, d.Z}
}

// Radiance returns color premultiplied by intensity.
func (l DirectionalLight) Radiance() [3]float32 {
	return [3]float32{
		l.Color[0] * l.Intensity,
		l.Color[1] * l.Intensity,
		l.Color[2] * l.Intensity,
	}
}

// KeyAndFill returns the standard two-light rig: a white key light above
// front-right and a dimmer fill light from the opposite corner.
func KeyAndFill() [2]DirectionalLight {
	white := [3]float32{1, 1, 1}
	return [2]DirectionalLight{
		{Color: white, Intensity: 0.8, Position: math.Vec3{X: 5, Y: 5, Z: 5}},
		{Color: white, Intensity: 0.5, Position: math.Vec3{X: -5, Y: -5, Z: -5}},
	}
}
