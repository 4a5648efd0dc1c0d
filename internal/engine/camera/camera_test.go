package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/hero3d/pkg/math"
)

func TestNewPerspectiveCamera(t *testing.T) {
	c := NewPerspectiveCamera(75, 16.0/9.0, 0.1, 1000, 5)
	if c.Position != (math.Vec3{Z: 5}) {
		t.Errorf("expected camera at z=5, got %v", c.Position)
	}
	if c.Target != (math.Vec3{}) {
		t.Errorf("expected camera to look at origin, got %v", c.Target)
	}

	c = NewPerspectiveCamera(75, 0, 0.1, 1000, 5)
	if c.Aspect != 1 {
		t.Errorf("expected invalid aspect to default to 1, got %f", c.Aspect)
	}
}

func TestSetAspect(t *testing.T) {
	c := NewPerspectiveCamera(75, 1, 0.1, 1000, 5)
	c.SetAspect(1920, 1080)
	if gomath.Abs(float64(c.Aspect)-1920.0/1080.0) > 1e-6 {
		t.Errorf("aspect: got %f", c.Aspect)
	}
	c.SetAspect(0, 1080)
	if gomath.Abs(float64(c.Aspect)-1920.0/1080.0) > 1e-6 {
		t.Error("zero width must be ignored")
	}
}

func TestOriginProjectsToScreenCenter(t *testing.T) {
	c := NewPerspectiveCamera(75, 4.0/3.0, 0.1, 1000, 5)
	vp := c.ProjectionMatrix().Mul(c.ViewMatrix())
	clip := vp.MulVec4(math.Vec4{0, 0, 0, 1})
	if clip[3] <= 0 {
		t.Fatalf("origin behind camera: w=%f", clip[3])
	}
	x, y := clip[0]/clip[3], clip[1]/clip[3]
	if gomath.Abs(float64(x)) > 1e-5 || gomath.Abs(float64(y)) > 1e-5 {
		t.Errorf("origin should project to center, got (%f, %f)", x, y)
	}
}
