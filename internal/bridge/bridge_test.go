package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/atomic"

	"github.com/Faultbox/hero3d/internal/engine/model"
	"github.com/Faultbox/hero3d/internal/hero"
	pmath "github.com/Faultbox/hero3d/pkg/math"
)

type fakeSurface struct {
	acquired atomic.Int64
	released atomic.Int64
}

func (s *fakeSurface) Acquire() error {
	s.acquired.Inc()
	return nil
}

func (s *fakeSurface) Release() error {
	s.released.Inc()
	return nil
}

type fakeRenderer struct {
	renders atomic.Int64
	uploads atomic.Int64
	width   atomic.Int64
	yaw     atomic.Float64
	closed  atomic.Bool
}

func (r *fakeRenderer) Upload(*model.Model) error {
	r.uploads.Inc()
	return nil
}

func (r *fakeRenderer) Resize(width, height int) {
	r.width.Store(int64(width))
}

func (r *fakeRenderer) Render(g *model.Group) {
	if g != nil {
		r.yaw.Store(float64(g.Rotation.Y))
	}
	r.renders.Inc()
	// Stand in for a vsync-paced swap.
	time.Sleep(time.Millisecond)
}

func (r *fakeRenderer) Close() {
	r.closed.Store(true)
}

func testLoader() *model.Loader {
	l := model.NewLoader("hero.glb", model.TargetSize)
	l.Read = func(string) (*model.Mesh, error) {
		bounds := pmath.EmptyBox().
			ExpandByPoint(pmath.Vec3{X: -1, Y: -1, Z: -1}).
			ExpandByPoint(pmath.Vec3{X: 1, Y: 1, Z: 1})
		return &model.Mesh{Bounds: bounds}, nil
	}
	return l
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestMessageTypeString(t *testing.T) {
	tests := map[MessageType]string{
		MsgInit:         "init",
		MsgMouse:        "mouse",
		MsgResize:       "resize",
		MsgVisibility:   "visibility",
		MsgLoaded:       "loaded",
		MessageType(42): "MessageType(42)",
	}
	for mt, want := range tests {
		if mt.String() != want {
			t.Errorf("got %q, want %q", mt.String(), want)
		}
	}
}

func TestTransferOnce(t *testing.T) {
	ch := NewChannel(4)
	c := NewCoordinator(ch)
	s := &fakeSurface{}
	ctx := context.Background()

	if err := c.Transfer(ctx, s, 800, 600); err != nil {
		t.Fatalf("first transfer: %v", err)
	}
	if err := c.Transfer(ctx, s, 800, 600); !errors.Is(err, ErrAlreadyTransferred) {
		t.Errorf("second transfer: expected ErrAlreadyTransferred, got %v", err)
	}
	if s.released.Load() != 1 {
		t.Errorf("expected surface released once, got %d", s.released.Load())
	}

	inits := 0
	for len(ch.toWorker) > 0 {
		if msg := <-ch.toWorker; msg.Type == MsgInit {
			inits++
		}
	}
	if inits != 1 {
		t.Errorf("expected exactly one init message, got %d", inits)
	}
}

func TestIntentsBeforeTransfer(t *testing.T) {
	ch := NewChannel(4)
	c := NewCoordinator(ch)
	ctx := context.Background()

	if err := c.Resize(ctx, 10, 10); !errors.Is(err, ErrNotTransferred) {
		t.Errorf("Resize: expected ErrNotTransferred, got %v", err)
	}
	if err := c.Visibility(ctx, false); !errors.Is(err, ErrNotTransferred) {
		t.Errorf("Visibility: expected ErrNotTransferred, got %v", err)
	}
	c.Pointer(hero.Pointer{X: 1})
	if len(ch.toWorker) != 0 {
		t.Errorf("expected nothing queued, got %d", len(ch.toWorker))
	}
}

func TestPointerDroppedWhenQueueFull(t *testing.T) {
	ch := NewChannel(1)
	c := NewCoordinator(ch)
	if err := c.Transfer(context.Background(), &fakeSurface{}, 1, 1); err != nil {
		t.Fatal(err)
	}
	c.Pointer(hero.Pointer{X: 0.5})
	c.Pointer(hero.Pointer{X: 0.6})
	if c.Dropped() != 2 {
		t.Errorf("expected 2 dropped pointer updates, got %d", c.Dropped())
	}
}

func TestBlockingIntentHonorsContext(t *testing.T) {
	ch := NewChannel(1)
	c := NewCoordinator(ch)
	if err := c.Transfer(context.Background(), &fakeSurface{}, 1, 1); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := c.Resize(ctx, 2, 2); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded on full queue, got %v", err)
	}
}

func TestSendAfterClose(t *testing.T) {
	ch := NewChannel(4)
	c := NewCoordinator(ch)
	c.Close()
	c.Close() // idempotent
	if err := c.Transfer(context.Background(), &fakeSurface{}, 1, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func startWorker(t *testing.T, ch *Channel, r *fakeRenderer) (*Worker, <-chan error, context.CancelFunc) {
	t.Helper()
	w := NewWorker(ch, WorkerOptions{
		NewRenderer: func(Surface, int, int) (Renderer, error) { return r, nil },
		Loader:      testLoader(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return w, done, cancel
}

func TestWorkerSession(t *testing.T) {
	ch := NewChannel(DefaultQueueSize)
	c := NewCoordinator(ch)
	r := &fakeRenderer{}
	s := &fakeSurface{}
	w, done, cancel := startWorker(t, ch, r)
	defer cancel()

	ctx := context.Background()
	if err := c.Transfer(ctx, s, 800, 600); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	waitFor(t, "loaded signal", c.Loaded)
	if r.uploads.Load() != 1 {
		t.Errorf("expected one upload, got %d", r.uploads.Load())
	}
	if s.acquired.Load() != 1 {
		t.Errorf("expected worker to acquire the surface once, got %d", s.acquired.Load())
	}
	waitFor(t, "frames", func() bool { return w.Frames() > 2 })

	c.Pointer(hero.Pointer{X: 1})
	waitFor(t, "pointer easing", func() bool { return r.yaw.Load() > 0 })

	if err := c.Resize(ctx, 1024, 768); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "resize", func() bool { return r.width.Load() == 1024 })

	// Hide, then use a resize as a FIFO marker that the hide was processed.
	if err := c.Visibility(ctx, false); err != nil {
		t.Fatal(err)
	}
	if err := c.Resize(ctx, 640, 480); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "hide processed", func() bool { return r.width.Load() == 640 })
	before := r.renders.Load()
	time.Sleep(30 * time.Millisecond)
	if after := r.renders.Load(); after != before {
		t.Errorf("expected no renders while hidden, got %d more", after-before)
	}

	if err := c.Visibility(ctx, true); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "resume", func() bool { return r.renders.Load() > before })

	c.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("worker exited with error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not exit after Close")
	}
	if !r.closed.Load() {
		t.Error("expected renderer to be closed")
	}
	if s.released.Load() != 2 {
		t.Errorf("expected surface released by both contexts, got %d", s.released.Load())
	}
	if c.Loaded() {
		t.Error("loaded must be signalled only once")
	}
}

func TestWorkerVisibilityBeforeInit(t *testing.T) {
	ch := NewChannel(DefaultQueueSize)
	r := &fakeRenderer{}
	w, done, cancel := startWorker(t, ch, r)

	// Queue a hide ahead of the init, bypassing the coordinator's check.
	ch.toWorker <- Message{Type: MsgVisibility, Visible: false}
	ch.toWorker <- Message{Type: MsgInit, Surface: &fakeSurface{}, Width: 1, Height: 1}
	ch.toWorker <- Message{Type: MsgResize, Width: 5, Height: 5}
	waitFor(t, "init processed", func() bool { return r.width.Load() == 5 })

	time.Sleep(20 * time.Millisecond)
	if r.renders.Load() != 0 || w.Frames() != 0 {
		t.Errorf("expected hidden worker not to render, got %d", r.renders.Load())
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWorkerRendererFailure(t *testing.T) {
	ch := NewChannel(DefaultQueueSize)
	c := NewCoordinator(ch)
	boom := errors.New("no GL")
	w := NewWorker(ch, WorkerOptions{
		NewRenderer: func(Surface, int, int) (Renderer, error) { return nil, boom },
	})
	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	if err := c.Transfer(context.Background(), &fakeSurface{}, 1, 1); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Errorf("expected renderer error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not exit")
	}
}
