// Package scene provides the hero scene rig: camera, lights, environment
// and the draw pass for the single model group.
package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/hero3d/internal/engine/camera"
	"github.com/Faultbox/hero3d/internal/engine/lighting"
	"github.com/Faultbox/hero3d/internal/engine/model"
	"github.com/Faultbox/hero3d/internal/engine/renderer"
	"github.com/Faultbox/hero3d/internal/engine/scene/shaders"
	"github.com/Faultbox/hero3d/internal/engine/shader"
	"github.com/Faultbox/hero3d/internal/logger"
)

// ErrClosed is returned when uploading to a closed rig.
var ErrClosed = errors.New("scene rig closed")

// Surface is the presentable side of a GL context.
type Surface interface {
	// Swap presents the default framebuffer.
	Swap()
	// DrawableSize returns the default framebuffer size in pixels.
	DrawableSize() (int, int)
}

// Config holds scene rig parameters.
type Config struct {
	FovY     float32 // degrees
	Near     float32
	Far      float32
	Distance float32 // camera distance along +Z
	Exposure float32

	// PixelRatio overrides the ratio derived from the surface when > 0.
	PixelRatio    float32
	MaxPixelRatio float32

	// EnvironmentRows is the latitude resolution of the irradiance bake.
	EnvironmentRows int
}

// DefaultConfig returns the standard hero framing.
func DefaultConfig() Config {
	return Config{
		FovY:            75,
		Near:            0.1,
		Far:             1000,
		Distance:        5,
		Exposure:        1,
		MaxPixelRatio:   renderer.DefaultMaxPixelRatio,
		EnvironmentRows: 32,
	}
}

// Rig renders the hero group into a surface.
type Rig struct {
	cfg      Config
	surface  Surface
	renderer *renderer.Renderer
	program  *shader.Program
	camera   *camera.PerspectiveCamera
	lights   [2]lighting.DirectionalLight
	env      []float32

	mesh     *renderer.Mesh
	material model.Material

	width, height int
	closed        bool
}

// NewRig creates the scene for a surface of the given window size. The
// caller's GL context must be current.
func NewRig(surface Surface, width, height int, cfg Config) (*Rig, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	ratio := cfg.PixelRatio
	if ratio <= 0 {
		dw, _ := surface.DrawableSize()
		ratio = float32(dw) / float32(width)
	}

	r, err := renderer.New(renderer.Config{
		Width:         width,
		Height:        height,
		PixelRatio:    ratio,
		MaxPixelRatio: cfg.MaxPixelRatio,
	})
	if err != nil {
		return nil, err
	}

	program, err := shader.NewProgram(shaders.HeroVertexShader, shaders.HeroFragmentShader)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("hero shader: %w", err)
	}

	rig := &Rig{
		cfg:      cfg,
		surface:  surface,
		renderer: r,
		program:  program,
		camera:   camera.NewPerspectiveCamera(cfg.FovY, float32(width)/float32(height), cfg.Near, cfg.Far, cfg.Distance),
		lights:   lighting.KeyAndFill(),
		env:      lighting.BakeSH(lighting.RoomEnvironment, cfg.EnvironmentRows).Flat(),
		material: model.DefaultMaterial(),
		width:    width,
		height:   height,
	}

	logger.Debug("scene rig created",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Float32("pixel_ratio", r.PixelRatio()),
	)
	return rig, nil
}

// Upload moves the model geometry to the GPU, replacing any previous mesh.
func (r *Rig) Upload(m *model.Model) error {
	if r.closed {
		return ErrClosed
	}
	mesh, err := r.renderer.UploadMesh(m.Mesh)
	if err != nil {
		return fmt.Errorf("uploading model: %w", err)
	}
	if r.mesh != nil {
		r.mesh.Delete()
	}
	r.mesh = mesh
	r.material = m.Mesh.Material
	return nil
}

// Resize updates the camera aspect and render target size.
func (r *Rig) Resize(width, height int) {
	if r.closed || width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
	r.camera.SetAspect(width, height)
	r.renderer.Resize(width, height)
}

// Render draws one frame and presents it. A nil group draws the empty,
// transparent scene.
func (r *Rig) Render(g *model.Group) {
	if r.closed {
		return
	}
	r.renderer.Begin()
	if g != nil && r.mesh != nil {
		r.drawGroup(g)
	}
	dw, dh := r.surface.DrawableSize()
	r.renderer.End(dw, dh)
	r.surface.Swap()
}

func (r *Rig) drawGroup(g *model.Group) {
	p := r.program
	p.Use()
	p.SetMat4("uModel", g.Matrix())
	p.SetMat4("uViewProj", r.camera.ProjectionMatrix().Mul(r.camera.ViewMatrix()))
	pos := r.camera.Position
	p.SetVec3("uCameraPos", [3]float32{pos.X, pos.Y, pos.Z})
	p.SetFloat("uExposure", r.cfg.Exposure)
	p.SetVec4("uBaseColor", r.material.BaseColor)
	p.SetFloat("uRoughness", r.material.Roughness)

	dirs := make([]float32, 0, 6)
	colors := make([]float32, 0, 6)
	for _, l := range r.lights {
		d, c := l.Direction(), l.Radiance()
		dirs = append(dirs, d[:]...)
		colors = append(colors, c[:]...)
	}
	p.SetVec3Array("uLightDir", dirs)
	p.SetVec3Array("uLightColor", colors)
	p.SetVec3Array("uSH", r.env)

	r.mesh.Draw()
}

// Close releases GPU resources. It is safe to call more than once.
func (r *Rig) Close() {
	if r.closed {
		return
	}
	r.closed = true
	if r.mesh != nil {
		r.mesh.Delete()
		r.mesh = nil
	}
	r.program.Delete()
	r.renderer.Close()
	logger.Debug("scene rig closed")
}
