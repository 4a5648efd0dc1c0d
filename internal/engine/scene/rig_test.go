package scene

import (
	"testing"

	"github.com/Faultbox/hero3d/internal/engine/renderer"
	"github.com/Faultbox/hero3d/internal/engine/scene/shaders"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.FovY != 75 || cfg.Near != 0.1 || cfg.Far != 1000 || cfg.Distance != 5 {
		t.Errorf("unexpected camera framing: %+v", cfg)
	}
	if cfg.Exposure != 1 {
		t.Errorf("exposure: got %f", cfg.Exposure)
	}
	if cfg.MaxPixelRatio != renderer.DefaultMaxPixelRatio {
		t.Errorf("max pixel ratio: got %f", cfg.MaxPixelRatio)
	}
}

func TestNewRigRejectsEmptySurface(t *testing.T) {
	if _, err := NewRig(nil, 0, 600, DefaultConfig()); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := NewRig(nil, 800, -1, DefaultConfig()); err == nil {
		t.Error("expected error for negative height")
	}
}

func TestShadersEmbedded(t *testing.T) {
	if shaders.HeroVertexShader == "" || shaders.HeroFragmentShader == "" {
		t.Fatal("hero shaders not embedded")
	}
}
