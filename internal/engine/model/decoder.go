package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qmuntal/draco-go/gltf/draco"
	"github.com/qmuntal/gltf"
)

// Decoder names accepted by DecodersFor.
const (
	DecoderDraco = "draco"
	DecoderNone  = "none"
)

// ErrNoDecoder is returned for a compressed primitive when no configured
// Decoder handles its extension.
var ErrNoDecoder = errors.New("no decoder for compressed primitive")

// Decoded holds the vertex streams of one decompressed primitive. Normals may
// be empty; they are then generated from the faces.
type Decoded struct {
	Positions [][3]float32
	Normals   [][3]float32
	Indices   []uint32
}

// Decoder decompresses primitives stored under a glTF extension.
type Decoder interface {
	// Extension is the glTF extension name the decoder handles.
	Extension() string
	Decode(doc *gltf.Document, prim *gltf.Primitive) (*Decoded, error)
}

// DecodersFor returns the decoders selected by name: "draco" (or empty) for
// KHR_draco_mesh_compression, "none" for no decoding.
func DecodersFor(name string) ([]Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DecoderDraco:
		return []Decoder{Draco{}}, nil
	case DecoderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown decoder %q (want %s or %s)", name, DecoderDraco, DecoderNone)
	}
}

// Draco decodes KHR_draco_mesh_compression primitives.
type Draco struct{}

func (Draco) Extension() string {
	return draco.ExtensionName
}

func (Draco) Decode(doc *gltf.Document, prim *gltf.Primitive) (*Decoded, error) {
	ext, ok := prim.Extensions[draco.ExtensionName].(*draco.PrimitiveExt)
	if !ok {
		return nil, fmt.Errorf("%s: missing extension data", draco.ExtensionName)
	}
	bv := int(ext.BufferView)
	if bv < 0 || bv >= len(doc.BufferViews) {
		return nil, fmt.Errorf("%s: buffer view %d out of range", draco.ExtensionName, bv)
	}

	pd, err := draco.UnmarshalMesh(doc, doc.BufferViews[bv])
	if err != nil {
		return nil, fmt.Errorf("decode draco mesh: %w", err)
	}

	out := &Decoded{}
	if out.Indices, err = pd.ReadIndices(nil); err != nil {
		return nil, fmt.Errorf("read draco indices: %w", err)
	}
	if out.Positions, err = readVec3(pd, prim, gltf.POSITION); err != nil {
		return nil, err
	}
	if _, ok := prim.Attributes[gltf.NORMAL]; ok {
		if out.Normals, err = readVec3(pd, prim, gltf.NORMAL); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readVec3(pd *draco.PrimitiveDecoder, prim *gltf.Primitive, name string) ([][3]float32, error) {
	data, err := pd.ReadAttr(prim, name, nil)
	if err != nil {
		return nil, fmt.Errorf("read draco %s: %w", strings.ToLower(name), err)
	}
	v, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("draco %s: unexpected component type %T", strings.ToLower(name), data)
	}
	return v, nil
}
