// Package model loads the hero asset and normalizes it for display.
package model

import (
	"github.com/Faultbox/hero3d/pkg/math"
)

// TargetSize is the extent of the largest axis after normalization.
const TargetSize = 4.0

// Vertex represents a mesh vertex with position and normal.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// Material holds the surface parameters used by the renderer.
type Material struct {
	BaseColor [4]float32
	Roughness float32
}

// DefaultMaterial returns a white, fairly rough material.
func DefaultMaterial() Material {
	return Material{
		BaseColor: [4]float32{1, 1, 1, 1},
		Roughness: 1,
	}
}

// Mesh holds the flattened asset geometry ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Material Material
	Bounds   math.Box3
}
