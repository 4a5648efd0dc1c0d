package hero

import (
	"context"
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/hero3d/internal/engine/frame"
	"github.com/Faultbox/hero3d/internal/engine/model"
	pmath "github.com/Faultbox/hero3d/pkg/math"
)

type fakeRenderer struct {
	uploads   int
	uploadErr error
	renders   int
	lastGroup *model.Group
	width     int
	height    int
}

func (f *fakeRenderer) Upload(*model.Model) error {
	f.uploads++
	return f.uploadErr
}

func (f *fakeRenderer) Resize(width, height int) {
	f.width, f.height = width, height
}

func (f *fakeRenderer) Render(g *model.Group) {
	f.renders++
	f.lastGroup = g
}

func testModel() *model.Model {
	bounds := pmath.EmptyBox().
		ExpandByPoint(pmath.Vec3{X: 9, Y: 6, Z: 8}).
		ExpandByPoint(pmath.Vec3{X: 11, Y: 14, Z: 12})
	return model.NewModel(&model.Mesh{Bounds: bounds}, model.TargetSize)
}

func newTestCore() (*Core, *frame.Queue, *fakeRenderer, *int) {
	q := frame.NewQueue()
	r := &fakeRenderer{}
	loaded := 0
	c := New(r, q, Options{OnLoaded: func() { loaded++ }})
	return c, q, r, &loaded
}

func TestPointerFromWindow(t *testing.T) {
	tests := []struct {
		x, y, w, h int
		want       Pointer
	}{
		{400, 300, 800, 600, Pointer{0, 0}},
		{800, 600, 800, 600, Pointer{1, 1}},
		{0, 0, 800, 600, Pointer{-1, -1}},
		{600, 150, 800, 600, Pointer{0.5, -0.5}},
		{10, 10, 0, 0, Pointer{}},
	}
	for _, tt := range tests {
		got := PointerFromWindow(tt.x, tt.y, tt.w, tt.h)
		if got != tt.want {
			t.Errorf("PointerFromWindow(%d,%d,%d,%d) = %v, want %v", tt.x, tt.y, tt.w, tt.h, got, tt.want)
		}
	}
}

func TestMotionOneFrame(t *testing.T) {
	g := model.NewGroup(testModel())
	DefaultMotion().Apply(g, Pointer{X: 1})

	want := float32(0.05 * gomath.Pi)
	if gomath.Abs(float64(g.Rotation.Y-want)) > 1e-5 {
		t.Errorf("rotation.y after one frame: got %f, want %f", g.Rotation.Y, want)
	}
	if gomath.Abs(float64(g.Position.X+0.03)) > 1e-6 {
		t.Errorf("position.x after one frame: got %f, want -0.03", g.Position.X)
	}
}

func TestMotionApproachesTargetWithoutOvershoot(t *testing.T) {
	g := model.NewGroup(testModel())
	m := DefaultMotion()
	p := Pointer{X: 1, Y: -1}
	rot, pos := m.Targets(p)

	prev := g.Rotation.Y
	for i := 0; i < 500; i++ {
		m.Apply(g, p)
		if g.Rotation.Y < prev {
			t.Fatalf("frame %d: rotation decreased from %f to %f", i, prev, g.Rotation.Y)
		}
		if g.Rotation.Y > rot.Y {
			t.Fatalf("frame %d: rotation overshot target: %f > %f", i, g.Rotation.Y, rot.Y)
		}
		if g.Position.X < pos.X || g.Rotation.X < rot.X {
			t.Fatalf("frame %d: overshoot on negative targets", i)
		}
		prev = g.Rotation.Y
	}
	if gomath.Abs(float64(g.Rotation.Y-rot.Y)) > 1e-3 {
		t.Errorf("expected rotation to converge to %f, got %f", rot.Y, g.Rotation.Y)
	}
}

func TestMotionTargets(t *testing.T) {
	rot, pos := DefaultMotion().Targets(Pointer{X: 0.5, Y: -1})
	if gomath.Abs(float64(rot.Y)-0.5*gomath.Pi) > 1e-5 {
		t.Errorf("yaw target: got %f", rot.Y)
	}
	if rot.X != -0.5 {
		t.Errorf("pitch target: got %f, want -0.5", rot.X)
	}
	if pos.X != -0.3 || pos.Y != -0.6 {
		t.Errorf("position target: got %v, want (-0.3, -0.6)", pos)
	}
}

func TestCoreRendersEmptySceneBeforeLoad(t *testing.T) {
	c, q, r, _ := newTestCore()
	c.Start()
	if !c.Running() {
		t.Fatal("expected loop running after Start")
	}
	q.Run()
	q.Run()
	if r.renders != 2 {
		t.Errorf("expected 2 renders, got %d", r.renders)
	}
	if r.lastGroup != nil {
		t.Error("expected empty scene before load")
	}
}

func TestCoreHandleLoadAttachesGroup(t *testing.T) {
	c, q, r, loaded := newTestCore()
	c.HandleLoad(model.Result{Model: testModel()})

	if c.Group() == nil {
		t.Fatal("expected group after load")
	}
	if r.uploads != 1 {
		t.Errorf("expected one upload, got %d", r.uploads)
	}
	if *loaded != 1 {
		t.Errorf("expected loaded callback once, got %d", *loaded)
	}
	if !c.Running() {
		t.Error("expected load to start the loop")
	}

	c.SetPointer(Pointer{X: 1})
	q.Run()
	if r.lastGroup != c.Group() {
		t.Error("expected render of the loaded group")
	}
	if c.Group().Rotation.Y <= 0 {
		t.Error("expected pointer easing to rotate the group")
	}
}

func TestCoreLoadFailureKeepsRendering(t *testing.T) {
	c, q, r, loaded := newTestCore()
	c.Start()
	c.HandleLoad(model.Result{Err: errors.New("decode failed")})

	if c.Group() != nil {
		t.Error("expected no group after failure")
	}
	if *loaded != 0 {
		t.Error("loaded callback must not fire on failure")
	}
	q.Run()
	if r.renders != 1 || !c.Running() {
		t.Errorf("expected loop to keep rendering, renders=%d running=%v", r.renders, c.Running())
	}
}

func TestCoreUploadFailure(t *testing.T) {
	c, _, r, loaded := newTestCore()
	r.uploadErr = errors.New("out of memory")
	c.HandleLoad(model.Result{Model: testModel()})
	if c.Group() != nil || *loaded != 0 {
		t.Error("upload failure must leave the scene empty")
	}
}

func TestCoreSetVisible(t *testing.T) {
	c, q, r, _ := newTestCore()
	c.Start()

	c.SetVisible(false)
	if c.Running() {
		t.Error("expected hidden core to stop")
	}
	if q.Run() != 0 {
		t.Error("expected no frames while hidden")
	}

	c.Start()
	if c.Running() {
		t.Error("Start must respect the visibility gate")
	}

	c.SetVisible(true)
	if !c.Running() {
		t.Error("expected visible core to run")
	}
	q.Run()
	if r.renders != 1 {
		t.Errorf("expected 1 render, got %d", r.renders)
	}
}

func TestCoreLoadThroughLoader(t *testing.T) {
	c, _, _, loaded := newTestCore()
	l := model.NewLoader("does-not-exist.glb", model.TargetSize)
	c.Load(context.Background(), l)
	ch := c.Loading()
	if ch == nil {
		t.Fatal("expected a pending load")
	}
	c.Load(context.Background(), l) // ignored while in flight
	if c.Loading() != ch {
		t.Error("second Load must not start another attempt")
	}

	c.HandleLoad(<-ch)
	if c.Loading() != nil {
		t.Error("expected load to be finished")
	}
	if c.Group() != nil || *loaded != 0 {
		t.Error("missing asset must not produce a group")
	}
	if c.PollLoad() {
		t.Error("PollLoad with no load in flight must return false")
	}
}

func TestCoreResize(t *testing.T) {
	c, _, r, _ := newTestCore()
	c.Resize(1024, 768)
	if r.width != 1024 || r.height != 768 {
		t.Errorf("expected resize to 1024x768, got %dx%d", r.width, r.height)
	}
	c.Resize(0, 768)
	if r.width != 1024 {
		t.Error("zero size must be ignored")
	}
}
