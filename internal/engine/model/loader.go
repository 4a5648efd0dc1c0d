package model

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/hero3d/internal/logger"
)

// Result is the outcome of a single load attempt.
type Result struct {
	Model *Model
	Err   error
}

// Loader fetches and normalizes the hero asset off the calling goroutine.
type Loader struct {
	Path       string
	TargetSize float32
	// Decoders decompress compressed primitives. NewLoader installs the
	// Draco decoder.
	Decoders []Decoder

	// Read decodes the asset; it defaults to ReadGLTF with Decoders.
	Read func(path string) (*Mesh, error)
}

// NewLoader creates a loader for the asset at path.
func NewLoader(path string, targetSize float32) *Loader {
	if targetSize <= 0 {
		targetSize = TargetSize
	}
	l := &Loader{
		Path:       path,
		TargetSize: targetSize,
		Decoders:   []Decoder{Draco{}},
	}
	l.Read = l.readGLTF
	return l
}

func (l *Loader) readGLTF(path string) (*Mesh, error) {
	return ReadGLTF(path, l.Decoders...)
}

// Load starts one load attempt and returns a channel that receives exactly
// one Result. The channel is buffered so the loader never blocks on a
// receiver that went away. Cancelling ctx abandons the result.
func (l *Loader) Load(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		start := time.Now()
		mesh, err := l.Read(l.Path)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			out <- Result{Err: err}
			return
		}
		m := NewModel(mesh, l.TargetSize)
		logger.Debug("model decoded",
			zap.String("path", l.Path),
			zap.Int("vertices", len(mesh.Vertices)),
			zap.Int("triangles", len(mesh.Indices)/3),
			zap.Float32("scale", m.Scale),
			zap.Duration("took", time.Since(start)),
		)
		out <- Result{Model: m}
	}()
	return out
}
