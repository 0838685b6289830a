package assettype

import (
	"maps"
	"slices"

	"github.com/meigma/assetpipe/codec"
)

// Texture is a finished, shareable texture.
type Texture struct {
	Name      string
	Container string
	Width     int
	Height    int
	Format    codec.Format
	Mipmap    bool
	Linear    bool
	Pixels    []byte
}

// NewTexture assembles a Texture from decoded data. The texture takes
// ownership of d's pixel buffer.
func NewTexture(d *codec.TextureData, container string) *Texture {
	return &Texture{
		Name:      d.Name,
		Container: container,
		Width:     d.Width,
		Height:    d.Height,
		Format:    d.Format,
		Mipmap:    d.Mipmap,
		Linear:    d.Linear,
		Pixels:    d.Pixels,
	}
}

// Clone returns a deep copy of t.
func (t *Texture) Clone() *Texture {
	c := *t
	c.Pixels = slices.Clone(t.Pixels)
	return &c
}

// Mesh is a finished, shareable mesh.
type Mesh struct {
	Name        string
	Container   string
	Vertices    []codec.Vec3
	Colors      []codec.Color
	UV          []codec.Vec2
	Normals     []codec.Vec3
	Tangents    []codec.Vec4
	BoneWeights []codec.BoneWeight
	BindPoses   []codec.Matrix4x4
	SubMeshes   [][]int32
}

// NewMesh assembles a Mesh from decoded data, taking ownership of its arrays.
func NewMesh(d *codec.MeshData, container string) *Mesh {
	return &Mesh{
		Name:        d.Name,
		Container:   container,
		Vertices:    d.Vertices,
		Colors:      d.Colors,
		UV:          d.UV,
		Normals:     d.Normals,
		Tangents:    d.Tangents,
		BoneWeights: d.BoneWeights,
		BindPoses:   d.BindPoses,
		SubMeshes:   d.SubMeshes,
	}
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Vertices = slices.Clone(m.Vertices)
	c.Colors = slices.Clone(m.Colors)
	c.UV = slices.Clone(m.UV)
	c.Normals = slices.Clone(m.Normals)
	c.Tangents = slices.Clone(m.Tangents)
	c.BoneWeights = slices.Clone(m.BoneWeights)
	c.BindPoses = slices.Clone(m.BindPoses)
	if m.SubMeshes != nil {
		c.SubMeshes = make([][]int32, len(m.SubMeshes))
		for i, tris := range m.SubMeshes {
			c.SubMeshes[i] = slices.Clone(tris)
		}
	}
	return &c
}

// TriangleCount returns the number of triangles across all sub-meshes.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, tris := range m.SubMeshes {
		n += len(tris) / 3
	}
	return n
}

// Material is a finished, shareable material.
type Material struct {
	Name      string
	Container string
	Shader    string
	Colors    map[string]codec.Color
	Floats    map[string]float32

	// Textures maps a shader property to the content hash of its texture.
	Textures map[string]string
}

// NewMaterial assembles a Material from decoded data, taking ownership of
// its maps.
func NewMaterial(d *codec.MaterialData, container string) *Material {
	return &Material{
		Name:      d.Name,
		Container: container,
		Shader:    d.Shader,
		Colors:    d.Colors,
		Floats:    d.Floats,
		Textures:  d.Textures,
	}
}

// Clone returns a deep copy of m.
func (m *Material) Clone() *Material {
	c := *m
	c.Colors = maps.Clone(m.Colors)
	c.Floats = maps.Clone(m.Floats)
	c.Textures = maps.Clone(m.Textures)
	return &c
}

// TextureCount returns how many textures the material references.
func (m *Material) TextureCount() int {
	return len(m.Textures)
}
