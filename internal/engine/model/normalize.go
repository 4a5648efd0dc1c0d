package model

import (
	"github.com/Faultbox/hero3d/pkg/math"
)

// Normalize returns the uniform scale that maps the largest extent of bounds
// to target, and the translation that moves the scaled bounds center to the
// origin. Empty or degenerate bounds yield scale 1 and a zero offset.
func Normalize(bounds math.Box3, target float32) (scale float32, offset math.Vec3) {
	maxDim := bounds.Size().MaxComponent()
	if maxDim <= 0 {
		return 1, math.Vec3{}
	}
	scale = target / maxDim
	offset = bounds.Center().Scale(-scale)
	return scale, offset
}

// Model is a mesh with its normalization transform applied on top.
type Model struct {
	Mesh   *Mesh
	Scale  float32
	Offset math.Vec3
}

// NewModel wraps mesh and normalizes it to the given target size.
func NewModel(mesh *Mesh, target float32) *Model {
	scale, offset := Normalize(mesh.Bounds, target)
	return &Model{
		Mesh:   mesh,
		Scale:  scale,
		Offset: offset,
	}
}

// Matrix returns the model-local transform (translate after scale).
func (m *Model) Matrix() math.Mat4 {
	return math.Translate(m.Offset.X, m.Offset.Y, m.Offset.Z).Mul(math.Scale(m.Scale, m.Scale, m.Scale))
}

// Bounds returns the mesh bounds after normalization.
func (m *Model) Bounds() math.Box3 {
	if m.Mesh.Bounds.IsEmpty() {
		return m.Mesh.Bounds
	}
	mat := m.Matrix()
	return math.EmptyBox().
		ExpandByPoint(mat.TransformVec3(m.Mesh.Bounds.Min)).
		ExpandByPoint(mat.TransformVec3(m.Mesh.Bounds.Max))
}
