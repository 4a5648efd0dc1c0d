// Package config handles hero renderer configuration loading and management.
package config

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Config holds all renderer settings.
type Config struct {
	Window   WindowConfig             `yaml:"window"`
	Render   RenderConfig             `yaml:"render"`
	Model    ModelConfig              `yaml:"model"`
	Motion   MotionConfig             `yaml:"motion"`
	Input    InputConfig              `yaml:"input"`
	Liveness LivenessConfig           `yaml:"liveness"`
	Bindings map[string]BindingConfig `yaml:"bindings"` // keyed by SDL key name
	Logging  LoggingConfig            `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// RenderConfig holds scene and delegation settings.
type RenderConfig struct {
	Delegate        string  `yaml:"delegate"` // auto, on or off
	MaxPixelRatio   float32 `yaml:"max_pixel_ratio"`
	Exposure        float32 `yaml:"exposure"`
	FieldOfView     float32 `yaml:"field_of_view"` // degrees
	CameraDistance  float32 `yaml:"camera_distance"`
	EnvironmentRows int     `yaml:"environment_rows"`
	QueueSize       int     `yaml:"queue_size"` // intent messages buffered toward the worker
}

// ModelConfig holds the hero asset settings.
type ModelConfig struct {
	Path       string  `yaml:"path"`
	TargetSize float32 `yaml:"target_size"`
	// Decoder selects compressed-geometry decoding: draco or none.
	Decoder string `yaml:"decoder"`
}

// MotionConfig holds the pointer-to-transform mapping.
type MotionConfig struct {
	Easing     float32 `yaml:"easing"`
	YawScale   float32 `yaml:"yaw_scale"`
	PitchScale float32 `yaml:"pitch_scale"`
	Parallax   float32 `yaml:"parallax"`
}

// InputConfig holds input throttling settings.
type InputConfig struct {
	PointerInterval time.Duration `yaml:"pointer_interval"`
	ResizeDelay     time.Duration `yaml:"resize_delay"`
}

// LivenessConfig holds the render gating settings.
type LivenessConfig struct {
	IdleTimeout         time.Duration `yaml:"idle_timeout"`
	HomeView            string        `yaml:"home_view"`
	ResumeOnInteraction bool          `yaml:"resume_on_interaction"`
}

// BindingConfig maps a key to an application event.
type BindingConfig struct {
	Event string `yaml:"event"`
	View  string `yaml:"view,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Application events a key can be bound to.
var bindableEvents = []string{"slam-impact", "slam-reset", "view-change", "quit"}

var delegateModes = []string{"auto", "on", "off"}

var modelDecoders = []string{"draco", "none"}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "hero3d",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Render: RenderConfig{
			Delegate:        "auto",
			MaxPixelRatio:   2,
			Exposure:        1,
			FieldOfView:     75,
			CameraDistance:  5,
			EnvironmentRows: 32,
			QueueSize:       64,
		},
		Model: ModelConfig{
			Path:       "cotton_ball-v1.glb",
			TargetSize: 4,
			Decoder:    "draco",
		},
		Motion: MotionConfig{
			Easing:     0.05,
			YawScale:   3.1415927,
			PitchScale: 0.5,
			Parallax:   0.6,
		},
		Input: InputConfig{
			PointerInterval: 16 * time.Millisecond,
			ResizeDelay:     100 * time.Millisecond,
		},
		Liveness: LivenessConfig{
			IdleTimeout:         5 * time.Second,
			HomeView:            "home",
			ResumeOnInteraction: false,
		},
		Bindings: map[string]BindingConfig{
			"S":      {Event: "slam-impact"},
			"R":      {Event: "slam-reset"},
			"H":      {Event: "view-change", View: "home"},
			"W":      {Event: "view-change", View: "work"},
			"Escape": {Event: "quit"},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var err error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if !oneOf(c.Render.Delegate, delegateModes) {
		err = multierr.Append(err, fmt.Errorf("render.delegate must be one of %v, got %q", delegateModes, c.Render.Delegate))
	}
	if c.Model.Path == "" {
		err = multierr.Append(err, fmt.Errorf("model.path is required"))
	}
	if !oneOf(c.Model.Decoder, modelDecoders) {
		err = multierr.Append(err, fmt.Errorf("model.decoder must be one of %v, got %q", modelDecoders, c.Model.Decoder))
	}
	if c.Motion.Easing <= 0 || c.Motion.Easing > 1 {
		err = multierr.Append(err, fmt.Errorf("motion.easing must be in (0, 1], got %v", c.Motion.Easing))
	}
	if c.Liveness.IdleTimeout < 0 {
		err = multierr.Append(err, fmt.Errorf("liveness.idle_timeout must not be negative"))
	}
	for key, b := range c.Bindings {
		if !oneOf(b.Event, bindableEvents) {
			err = multierr.Append(err, fmt.Errorf("binding %q: unknown event %q", key, b.Event))
			continue
		}
		if b.Event == "view-change" && b.View == "" {
			err = multierr.Append(err, fmt.Errorf("binding %q: view-change needs a view", key))
		}
	}
	return err
}

func oneOf(s string, set []string) bool {
	s = strings.ToLower(s)
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
