package model

import (
	"github.com/Faultbox/hero3d/pkg/math"
)

// Group is the root transform node wrapping the normalized model.
// Rotation is applied in X then Y order, matching an XYZ Euler rotation.
type Group struct {
	Rotation math.Vec3
	Position math.Vec3
	Model    *Model
}

// NewGroup wraps m in a group at the origin.
func NewGroup(m *Model) *Group {
	return &Group{Model: m}
}

// Matrix returns the world transform of the wrapped model.
func (g *Group) Matrix() math.Mat4 {
	world := math.Translate(g.Position.X, g.Position.Y, g.Position.Z).
		Mul(math.RotateX(g.Rotation.X)).
		Mul(math.RotateY(g.Rotation.Y)).
		Mul(math.RotateZ(g.Rotation.Z))
	if g.Model == nil {
		return world
	}
	return world.Mul(g.Model.Matrix())
}
