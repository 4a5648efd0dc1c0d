package model

import (
	"errors"
	"fmt"

	"github.com/qmuntal/draco-go/gltf/draco"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/hero3d/pkg/math"
)

// ErrNoGeometry is returned when an asset contains no triangle geometry.
var ErrNoGeometry = errors.New("asset contains no triangle geometry")

// compressionExtensions are the primitive extensions that replace the
// accessor data and so cannot be read without a Decoder.
var compressionExtensions = []string{draco.ExtensionName}

// ReadGLTF reads a glTF 2.0 asset (.glb or .gltf) and flattens every mesh of
// its default scene into a single Mesh in scene space. Compressed primitives
// are decompressed by the decoder for their extension.
func ReadGLTF(path string, decoders ...Decoder) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return BuildMesh(doc, decoders...)
}

// BuildMesh flattens the default scene of doc into a single Mesh.
func BuildMesh(doc *gltf.Document, decoders ...Decoder) (*Mesh, error) {
	byExt := make(map[string]Decoder, len(decoders))
	for _, d := range decoders {
		byExt[d.Extension()] = d
	}
	for _, ext := range doc.ExtensionsRequired {
		if isCompression(ext) && byExt[ext] == nil {
			return nil, fmt.Errorf("%s: %w", ext, ErrNoDecoder)
		}
	}

	b := &meshBuilder{
		doc:      doc,
		decoders: byExt,
		mesh: &Mesh{
			Material: DefaultMaterial(),
			Bounds:   math.EmptyBox(),
		},
	}

	roots, err := sceneRoots(doc)
	if err != nil {
		return nil, err
	}
	for _, n := range roots {
		if err := b.visit(n, math.Identity(), 0); err != nil {
			return nil, err
		}
	}

	if len(b.mesh.Indices) == 0 {
		return nil, ErrNoGeometry
	}
	return b.mesh, nil
}

// sceneRoots returns the root node indices of the default scene.
func sceneRoots(doc *gltf.Document) ([]int, error) {
	if len(doc.Scenes) == 0 {
		// No scenes: treat every node as a root.
		roots := make([]int, len(doc.Nodes))
		for i := range doc.Nodes {
			roots[i] = i
		}
		return roots, nil
	}
	idx := 0
	if doc.Scene != nil {
		idx = int(*doc.Scene)
	}
	if idx < 0 || idx >= len(doc.Scenes) {
		return nil, fmt.Errorf("scene index %d out of range", idx)
	}
	return doc.Scenes[idx].Nodes, nil
}

func isCompression(ext string) bool {
	for _, e := range compressionExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

type meshBuilder struct {
	doc         *gltf.Document
	decoders    map[string]Decoder
	mesh        *Mesh
	hasMaterial bool
}

// maxDepth guards against cyclic node graphs in malformed files.
const maxDepth = 64

func (b *meshBuilder) visit(nodeIdx int, parent math.Mat4, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("node hierarchy deeper than %d", maxDepth)
	}
	if nodeIdx < 0 || nodeIdx >= len(b.doc.Nodes) {
		return fmt.Errorf("node index %d out of range", nodeIdx)
	}
	node := b.doc.Nodes[nodeIdx]
	world := parent.Mul(nodeMatrix(node))

	if node.Mesh != nil {
		meshIdx := int(*node.Mesh)
		if meshIdx < 0 || meshIdx >= len(b.doc.Meshes) {
			return fmt.Errorf("mesh index %d out of range", meshIdx)
		}
		for _, prim := range b.doc.Meshes[meshIdx].Primitives {
			if err := b.addPrimitive(prim, world); err != nil {
				return fmt.Errorf("mesh %d: %w", meshIdx, err)
			}
		}
	}

	for _, child := range node.Children {
		if err := b.visit(int(child), world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// nodeMatrix returns the local transform of a node, from its matrix when one
// is set and from translation, rotation and scale otherwise.
func nodeMatrix(node *gltf.Node) math.Mat4 {
	m := node.MatrixOrDefault()
	if m != identity64 {
		var out math.Mat4
		for i := range m {
			out[i] = float32(m[i])
		}
		return out
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()
	rot := math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}.Normalize()
	return math.Translate(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul(rot.ToMat4()).
		Mul(math.Scale(float32(s[0]), float32(s[1]), float32(s[2])))
}

var identity64 = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func (b *meshBuilder) addPrimitive(prim *gltf.Primitive, world math.Mat4) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil
	}

	streams, err := b.readPrimitive(prim)
	if err != nil || streams == nil {
		return err
	}
	positions, normals, indices := streams.Positions, streams.Normals, streams.Indices
	if indices == nil {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(normals) != len(positions) {
		normals = computeNormals(positions, indices)
	}

	base := uint32(len(b.mesh.Vertices))
	for i, p := range positions {
		wp := world.TransformPoint(p)
		wn := vec(world.TransformDirection(normals[i])).Normalize()

		b.mesh.Vertices = append(b.mesh.Vertices, Vertex{
			Position: wp,
			Normal:   [3]float32{wn.X, wn.Y, wn.Z},
		})
		b.mesh.Bounds = b.mesh.Bounds.ExpandByPoint(math.Vec3{X: wp[0], Y: wp[1], Z: wp[2]})
	}
	for i := 0; i+2 < len(indices); i += 3 {
		a, c, e := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(positions) || int(c) >= len(positions) || int(e) >= len(positions) {
			continue
		}
		b.mesh.Indices = append(b.mesh.Indices, base+a, base+c, base+e)
	}

	if !b.hasMaterial && prim.Material != nil {
		b.applyMaterial(int(*prim.Material))
	}
	return nil
}

// readPrimitive returns the vertex streams of prim, decompressing them when
// the primitive carries a compression extension. A nil result with no error
// means the primitive has no positions and is skipped.
func (b *meshBuilder) readPrimitive(prim *gltf.Primitive) (*Decoded, error) {
	for ext := range prim.Extensions {
		if d, ok := b.decoders[ext]; ok {
			return d.Decode(b.doc, prim)
		}
		if isCompression(ext) {
			return nil, fmt.Errorf("%s: %w", ext, ErrNoDecoder)
		}
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	var (
		out Decoded
		err error
	)
	out.Positions, err = modeler.ReadPosition(b.doc, b.doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	if prim.Indices != nil {
		out.Indices, err = modeler.ReadIndices(b.doc, b.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	}
	if nIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		out.Normals, err = modeler.ReadNormal(b.doc, b.doc.Accessors[nIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}
	return &out, nil
}

// applyMaterial takes surface parameters from the first referenced material.
func (b *meshBuilder) applyMaterial(idx int) {
	if idx < 0 || idx >= len(b.doc.Materials) {
		return
	}
	b.hasMaterial = true
	pbr := b.doc.Materials[idx].PBRMetallicRoughness
	if pbr == nil {
		return
	}
	if pbr.BaseColorFactor != nil {
		for i, v := range pbr.BaseColorFactor {
			b.mesh.Material.BaseColor[i] = float32(v)
		}
	}
	if pbr.RoughnessFactor != nil {
		b.mesh.Material.Roughness = float32(*pbr.RoughnessFactor)
	}
}

// computeNormals derives smooth vertex normals by accumulating face normals.
func computeNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	acc := make([]math.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		ia, ib, ic := indices[i], indices[i+1], indices[i+2]
		if int(ia) >= len(positions) || int(ib) >= len(positions) || int(ic) >= len(positions) {
			continue
		}
		a := vec(positions[ia])
		e1 := vec(positions[ib]).Sub(a)
		e2 := vec(positions[ic]).Sub(a)
		n := e1.Cross(e2)
		acc[ia] = acc[ia].Add(n)
		acc[ib] = acc[ib].Add(n)
		acc[ic] = acc[ic].Add(n)
	}

	out := make([][3]float32, len(positions))
	for i, n := range acc {
		n = n.Normalize()
		if n == (math.Vec3{}) {
			n = math.Vec3{Y: 1}
		}
		out[i] = [3]float32{n.X, n.Y, n.Z}
	}
	return out
}

func vec(p [3]float32) math.Vec3 {
	return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
}
