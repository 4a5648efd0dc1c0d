package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/hero3d/internal/app"
	"github.com/Faultbox/hero3d/internal/bridge"
	"github.com/Faultbox/hero3d/internal/config"
	"github.com/Faultbox/hero3d/internal/engine/input"
	"github.com/Faultbox/hero3d/internal/engine/model"
	"github.com/Faultbox/hero3d/internal/engine/scene"
	"github.com/Faultbox/hero3d/internal/engine/window"
	"github.com/Faultbox/hero3d/internal/hero"
	"github.com/Faultbox/hero3d/internal/liveness"
	"github.com/Faultbox/hero3d/internal/logger"
)

// session wires the window, the selected rendering path and the app.
type session struct {
	window *window.Window
	input  *input.Input
	app    *app.App
}

func newSession(cfg *config.Config) (*session, error) {
	mode, err := bridge.ParseMode(cfg.Render.Delegate)
	if err != nil {
		return nil, err
	}
	decoders, err := model.DecodersFor(cfg.Model.Decoder)
	if err != nil {
		return nil, err
	}

	// Window creation also makes the GL context current on this thread.
	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	width, height := win.Size()
	loader := model.NewLoader(cfg.Model.Path, cfg.Model.TargetSize)
	loader.Decoders = decoders
	motion := motionOptions(cfg.Motion)
	rigCfg := sceneConfig(cfg.Render)

	var target app.Target
	delegated := bridge.Select(mode, win.CanDelegate())
	if delegated {
		ch := bridge.NewChannel(cfg.Render.QueueSize)
		worker := bridge.NewWorker(ch, bridge.WorkerOptions{
			NewRenderer: func(_ bridge.Surface, w, h int) (bridge.Renderer, error) {
				return scene.NewRig(win, w, h, rigCfg)
			},
			Loader: loader,
			Motion: motion,
		})
		target = app.NewDelegated(bridge.NewCoordinator(ch), worker, win, width, height)
	} else {
		if mode == bridge.ModeOn {
			logger.Warn("render delegation requested but not supported on this platform")
		}
		rig, err := scene.NewRig(win, width, height, rigCfg)
		if err != nil {
			win.Close()
			return nil, fmt.Errorf("failed to create scene: %w", err)
		}
		target = app.NewLocal(rig, loader, motion)
	}
	logger.Info("rendering path selected",
		zap.Bool("delegated", delegated),
		zap.String("mode", string(mode)),
	)

	container := app.NewContainer(win.SetOpacity)
	return &session{
		window: win,
		input:  input.New(),
		app:    app.New(target, container, width, height, appOptions(cfg)),
	}, nil
}

// Run runs the main loop until quit.
func (s *session) Run(ctx context.Context) error {
	return s.app.Run(ctx, func(timeout time.Duration) {
		s.input.Poll(s.app, timeout)
	})
}

// Close ends the session and destroys the window.
func (s *session) Close() error {
	err := s.app.Close()
	logger.Debug("input events handled", zap.Int("events", s.input.Events()))
	s.window.Close()
	return err
}

func motionOptions(c config.MotionConfig) hero.Motion {
	return hero.Motion{
		Easing:     c.Easing,
		YawScale:   c.YawScale,
		PitchScale: c.PitchScale,
		Parallax:   c.Parallax,
	}
}

func sceneConfig(c config.RenderConfig) scene.Config {
	sc := scene.DefaultConfig()
	if c.FieldOfView > 0 {
		sc.FovY = c.FieldOfView
	}
	if c.CameraDistance > 0 {
		sc.Distance = c.CameraDistance
	}
	if c.Exposure > 0 {
		sc.Exposure = c.Exposure
	}
	if c.MaxPixelRatio > 0 {
		sc.MaxPixelRatio = c.MaxPixelRatio
	}
	if c.EnvironmentRows > 0 {
		sc.EnvironmentRows = c.EnvironmentRows
	}
	return sc
}

func appOptions(cfg *config.Config) app.Options {
	opts := app.DefaultOptions()
	opts.Liveness = liveness.Options{
		IdleTimeout:         cfg.Liveness.IdleTimeout,
		HomeView:            cfg.Liveness.HomeView,
		ResumeOnInteraction: cfg.Liveness.ResumeOnInteraction,
	}
	if cfg.Input.PointerInterval > 0 {
		opts.PointerInterval = cfg.Input.PointerInterval
	}
	if cfg.Input.ResizeDelay > 0 {
		opts.ResizeDelay = cfg.Input.ResizeDelay
	}
	if len(cfg.Bindings) > 0 {
		opts.Bindings = make(map[string]app.Event, len(cfg.Bindings))
		for key, b := range cfg.Bindings {
			opts.Bindings[key] = app.Event{
				Kind: app.EventKind(strings.ToLower(b.Event)),
				View: b.View,
			}
		}
	}
	return opts
}
