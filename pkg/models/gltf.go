package models

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/skykeep/pkg/math3d"
	"github.com/taigrr/skykeep/pkg/render"
)

// ErrNoRenderableRoot is returned when a document has neither a scene nor a mesh.
var ErrNoRenderableRoot = errors.New("no renderable root")

// maxNodeDepth bounds hierarchy recursion so a cyclic document cannot loop forever.
const maxNodeDepth = 64

// Node is one level of a decoded hierarchy. Meshes are in node-local space.
type Node struct {
	Name     string
	Local    math3d.Mat4
	Meshes   []*Mesh
	Children []*Node
}

// LoadedAsset is a decoded model resolved to its renderable root.
// It is either a SceneAsset or a MeshAsset.
type LoadedAsset interface {
	root() *Node
}

// SceneAsset is a document that declared a scene.
type SceneAsset struct {
	Root *Node
}

// MeshAsset is a document without a scene; its first mesh is used directly.
type MeshAsset struct {
	Node *Node
}

func (a SceneAsset) root() *Node { return a.Root }
func (a MeshAsset) root() *Node  { return a.Node }

// Walk visits every node depth-first with its accumulated transform.
func Walk(asset LoadedAsset, fn func(n *Node, world math3d.Mat4)) {
	var visit func(n *Node, parent math3d.Mat4)
	visit = func(n *Node, parent math3d.Mat4) {
		world := parent.Mul(n.Local)
		fn(n, world)
		for _, c := range n.Children {
			visit(c, world)
		}
	}
	if r := asset.root(); r != nil {
		visit(r, math3d.Identity())
	}
}

// Flatten returns every mesh of the asset with its node transforms baked into
// the vertices. Materials are shared with the hierarchy.
func Flatten(asset LoadedAsset) []*Mesh {
	var out []*Mesh
	Walk(asset, func(n *Node, world math3d.Mat4) {
		for _, m := range n.Meshes {
			out = append(out, m.Transformed(world))
		}
	})
	return out
}

// DecodeGLTF parses a glTF or GLB document and resolves its renderable root.
func DecodeGLTF(data []byte) (LoadedAsset, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode gltf: %w", err)
	}
	return resolve(doc)
}

func resolve(doc *gltf.Document) (LoadedAsset, error) {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		sc := doc.Scenes[idx]
		root := &Node{Name: sc.Name, Local: math3d.Identity()}
		for _, ni := range sc.Nodes {
			child, err := buildNode(doc, ni, 0)
			if err != nil {
				return nil, err
			}
			root.Children = append(root.Children, child)
		}
		return SceneAsset{Root: root}, nil
	}

	if len(doc.Meshes) > 0 {
		meshes, err := buildMesh(doc, 0)
		if err != nil {
			return nil, err
		}
		return MeshAsset{Node: &Node{
			Name:   doc.Meshes[0].Name,
			Local:  math3d.Identity(),
			Meshes: meshes,
		}}, nil
	}

	return nil, ErrNoRenderableRoot
}

func buildNode(doc *gltf.Document, idx, depth int) (*Node, error) {
	if idx < 0 || idx >= len(doc.Nodes) {
		return nil, fmt.Errorf("node %d out of range", idx)
	}
	if depth > maxNodeDepth {
		return nil, fmt.Errorf("node hierarchy deeper than %d", maxNodeDepth)
	}

	src := doc.Nodes[idx]
	n := &Node{Name: src.Name, Local: nodeTransform(src)}

	if src.Mesh != nil {
		meshes, err := buildMesh(doc, *src.Mesh)
		if err != nil {
			return nil, err
		}
		n.Meshes = meshes
	}

	for _, ci := range src.Children {
		child, err := buildNode(doc, ci, depth+1)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// nodeTransform prefers an explicit matrix, falling back to TRS.
func nodeTransform(n *gltf.Node) math3d.Mat4 {
	if m := math3d.Mat4(n.MatrixOrDefault()); m != math3d.Identity() {
		return m
	}
	t := n.TranslationOrDefault()
	s := n.ScaleOrDefault()
	return math3d.Compose(
		math3d.V3(t[0], t[1], t[2]),
		math3d.FromQuat(n.RotationOrDefault()),
		math3d.V3(s[0], s[1], s[2]),
	)
}

// buildMesh converts every triangle primitive of doc.Meshes[idx].
func buildMesh(doc *gltf.Document, idx int) ([]*Mesh, error) {
	if idx < 0 || idx >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh %d out of range", idx)
	}
	src := doc.Meshes[idx]

	var out []*Mesh
	for pi, prim := range src.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}
		mesh, err := buildPrimitive(doc, prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", src.Name, pi, err)
		}
		if mesh == nil {
			continue
		}
		mesh.Name = src.Name
		out = append(out, mesh)
	}
	return out, nil
}

func buildPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*Mesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	acc, err := accessor(doc, posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if ni, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acc, err = accessor(doc, ni); err != nil {
			return nil, err
		}
		normals, err = modeler.ReadNormal(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs [][2]float32
	if ui, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if acc, err = accessor(doc, ui); err != nil {
			return nil, err
		}
		uvs, err = modeler.ReadTextureCoord(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
	}

	mesh := NewMesh("")
	mesh.HasUV = len(uvs) > 0
	mesh.Vertices = make([]MeshVertex, len(positions))
	for i, p := range positions {
		v := MeshVertex{Position: math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math3d.V3(float64(n[0]), float64(n[1]), float64(n[2]))
		}
		if i < len(uvs) {
			// Top-left origin, same as render.Texture
			v.UV = math3d.V2(float64(uvs[i][0]), float64(uvs[i][1]))
		}
		mesh.Vertices[i] = v
	}

	if prim.Indices != nil {
		if acc, err = accessor(doc, *prim.Indices); err != nil {
			return nil, err
		}
		indices, err := modeler.ReadIndices(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		for i := 0; i+2 < len(indices); i += 3 {
			a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
			if a >= len(positions) || b >= len(positions) || c >= len(positions) {
				return nil, fmt.Errorf("index out of range at triangle %d", i/3)
			}
			mesh.AddTriangleCCW(a, b, c)
		}
	} else {
		for i := 0; i+2 < len(positions); i += 3 {
			mesh.AddTriangleCCW(i, i+1, i+2)
		}
	}

	if len(normals) == 0 {
		mesh.CalculateSmoothNormals()
	}
	mesh.Material = embeddedMaterial(doc, prim)
	mesh.CalculateBounds()
	return mesh, nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}

// embeddedMaterial maps the document's PBR factors. Embedded images are not
// decoded; manifest textures replace them.
func embeddedMaterial(doc *gltf.Document, prim *gltf.Primitive) *render.Material {
	if prim.Material == nil || *prim.Material >= len(doc.Materials) {
		return nil
	}
	src := doc.Materials[*prim.Material]
	mat := render.NewMaterial(src.Name, math3d.V3(1, 1, 1))
	if pbr := src.PBRMetallicRoughness; pbr != nil {
		c := pbr.BaseColorFactorOrDefault()
		mat.Color = math3d.V3(c[0], c[1], c[2])
		mat.Metalness = pbr.MetallicFactorOrDefault()
		mat.Roughness = pbr.RoughnessFactorOrDefault()
	}
	return mat
}
