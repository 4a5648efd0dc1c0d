package hero

import (
	gomath "math"

	"github.com/Faultbox/hero3d/internal/engine/model"
	pmath "github.com/Faultbox/hero3d/pkg/math"
)

// Pointer is the last known pointer offset from the viewport center,
// each axis roughly in [-1, 1].
type Pointer struct {
	X, Y float32
}

// PointerFromWindow normalizes window coordinates against the current
// window size.
func PointerFromWindow(x, y, width, height int) Pointer {
	if width <= 0 || height <= 0 {
		return Pointer{}
	}
	halfX := float32(width) / 2
	halfY := float32(height) / 2
	return Pointer{
		X: (float32(x) - halfX) / halfX,
		Y: (float32(y) - halfY) / halfY,
	}
}

// Motion holds the pointer-to-transform mapping.
type Motion struct {
	Easing     float32 // fraction of the remaining distance covered per frame
	YawScale   float32 // yaw target per unit of pointer X
	PitchScale float32 // pitch target per unit of pointer Y
	Parallax   float32 // position target per unit of pointer offset
}

// DefaultMotion returns the standard hero motion.
func DefaultMotion() Motion {
	return Motion{
		Easing:     0.05,
		YawScale:   gomath.Pi,
		PitchScale: 0.5,
		Parallax:   0.6,
	}
}

// Targets returns the rotation and position targets for p. The horizontal
// position is inverted so the model drifts against the pointer.
func (m Motion) Targets(p Pointer) (rotation, position pmath.Vec3) {
	rotation = pmath.Vec3{X: p.Y * m.PitchScale, Y: p.X * m.YawScale}
	position = pmath.Vec3{X: -p.X * m.Parallax, Y: p.Y * m.Parallax}
	return rotation, position
}

// Apply eases g one frame toward the targets derived from p.
func (m Motion) Apply(g *model.Group, p Pointer) {
	rot, pos := m.Targets(p)
	g.Rotation.X = pmath.Ease(g.Rotation.X, rot.X, m.Easing)
	g.Rotation.Y = pmath.Ease(g.Rotation.Y, rot.Y, m.Easing)
	g.Position.X = pmath.Ease(g.Position.X, pos.X, m.Easing)
	g.Position.Y = pmath.Ease(g.Position.Y, pos.Y, m.Easing)
}
