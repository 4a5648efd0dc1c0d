// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/hero3d/internal/engine/framebuffer"
	"github.com/Faultbox/hero3d/internal/engine/model"
	"github.com/Faultbox/hero3d/internal/logger"
)

// DefaultMaxPixelRatio caps the render resolution on high density displays.
const DefaultMaxPixelRatio = 2

// ErrEmptyMesh is returned when uploading a mesh without triangles.
var ErrEmptyMesh = errors.New("mesh has no triangles")

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	// PixelRatio is drawable pixels per window unit.
	PixelRatio float32
	// MaxPixelRatio caps PixelRatio; zero means DefaultMaxPixelRatio.
	MaxPixelRatio float32
}

// EffectivePixelRatio clamps a device pixel ratio to [1, limit].
func EffectivePixelRatio(device, limit float32) float32 {
	if limit <= 0 {
		limit = DefaultMaxPixelRatio
	}
	if device < 1 {
		device = 1
	}
	return min(device, limit)
}

// ScaledSize returns the render target size for a window size and ratio.
func ScaledSize(width, height int, ratio float32) (int32, int32) {
	w := int32(float32(width)*ratio + 0.5)
	h := int32(float32(height)*ratio + 0.5)
	return max(w, 1), max(h, 1)
}

// Renderer owns the GL state for one context: the offscreen target and
// uploaded meshes.
type Renderer struct {
	config Config
	ratio  float32
	target *framebuffer.Framebuffer
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		ratio:  EffectivePixelRatio(cfg.PixelRatio, cfg.MaxPixelRatio),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
		zap.Float32("pixel_ratio", r.ratio),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)

	w, h := ScaledSize(cfg.Width, cfg.Height, r.ratio)
	target, err := framebuffer.New(w, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create render target: %w", err)
	}
	r.target = target

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Debug("closing renderer")
	if r.target != nil {
		r.target.Destroy()
		r.target = nil
	}
}

// PixelRatio returns the effective pixel ratio.
func (r *Renderer) PixelRatio() float32 {
	return r.ratio
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = width
	r.config.Height = height
	w, h := ScaledSize(width, height, r.ratio)
	r.target.Resize(w, h)
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int32("target_width", w),
		zap.Int32("target_height", h),
	)
}

// Begin binds the offscreen target and clears it to transparent.
func (r *Renderer) Begin() {
	r.target.Bind()
	r.target.Clear(0, 0, 0, 0)
}

// End resolves the offscreen target into the default framebuffer.
func (r *Renderer) End(drawableW, drawableH int) {
	r.target.BlitToScreen(int32(drawableW), int32(drawableH))
}

// Mesh is a mesh resident on the GPU.
type Mesh struct {
	vao   uint32
	vbo   uint32
	ebo   uint32
	count int32
}

// vertexStride is position + normal.
const vertexStride = 6 * 4

// Interleave packs vertices as position, normal float triples.
func Interleave(vertices []model.Vertex) []float32 {
	out := make([]float32, 0, len(vertices)*6)
	for _, v := range vertices {
		out = append(out, v.Position[0], v.Position[1], v.Position[2])
		out = append(out, v.Normal[0], v.Normal[1], v.Normal[2])
	}
	return out
}

// UploadMesh copies mesh geometry into GPU buffers.
func (r *Renderer) UploadMesh(m *model.Mesh) (*Mesh, error) {
	if m == nil || len(m.Indices) < 3 || len(m.Vertices) == 0 {
		return nil, ErrEmptyMesh
	}
	vertices := Interleave(m.Vertices)

	gm := &Mesh{count: int32(len(m.Indices))}
	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)

	gl.GenBuffers(1, &gm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &gm.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, vertexStride, nil)
	gl.EnableVertexAttribArray(0)

	// Normal attribute (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, vertexStride, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	logger.Debug("mesh uploaded",
		zap.Uint32("vao", gm.vao),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int32("indices", gm.count),
	)
	return gm, nil
}

// Draw issues the indexed draw call for the mesh.
func (m *Mesh) Draw() {
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// Delete releases GPU buffers.
func (m *Mesh) Delete() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
}
