package codec

// Tag is the type tag at the start of every payload.
type Tag uint8

const (
	// TagNull marks an empty payload.
	TagNull Tag = iota
	TagMesh
	TagTexture
	TagImage
	TagMaterial
)

// String returns the human-readable name of the tag.
func (t Tag) String() string {
	switch t {
	case TagNull:
		return "null"
	case TagMesh:
		return "mesh"
	case TagTexture:
		return "texture"
	case TagImage:
		return "image"
	case TagMaterial:
		return "material"
	default:
		return "unknown"
	}
}

// Vec2 is a two-component vector.
type Vec2 [2]float32

// Vec3 is a three-component vector.
type Vec3 [3]float32

// Vec4 is a four-component vector.
type Vec4 [4]float32

// Color is a linear RGBA color.
type Color [4]float32

// Matrix4x4 is a column-major 4x4 matrix.
type Matrix4x4 [16]float32

// BoneWeight binds a vertex to up to four bones.
type BoneWeight struct {
	Weights [4]float32
	Indices [4]int32
}

// MeshData is the decoded, engine-independent form of a mesh payload.
type MeshData struct {
	Name        string
	Vertices    []Vec3
	Colors      []Color
	UV          []Vec2
	Normals     []Vec3
	Tangents    []Vec4
	BoneWeights []BoneWeight
	BindPoses   []Matrix4x4

	// SubMeshes holds one index array per sub-mesh.
	SubMeshes [][]int32
}

// Format identifies the pixel layout of an image.
type Format uint8

const (
	FormatRGBA32 Format = iota + 1
	FormatRGB24
	FormatAlpha8
	FormatDXT1
	FormatDXT5
)

// String returns the human-readable name of the format.
func (f Format) String() string {
	switch f {
	case FormatRGBA32:
		return "rgba32"
	case FormatRGB24:
		return "rgb24"
	case FormatAlpha8:
		return "alpha8"
	case FormatDXT1:
		return "dxt1"
	case FormatDXT5:
		return "dxt5"
	default:
		return "unknown"
	}
}

// Image is the content of an encoded image blob.
type Image struct {
	Width    int
	Height   int
	Format   Format
	MipCount int
	Pixels   []byte
}

// TextureData is the decoded, engine-independent form of a texture payload.
type TextureData struct {
	Name   string
	Pixels []byte
	Width  int
	Height int
	Format Format
	Mipmap bool
	Linear bool
}

// MaterialData is the decoded form of a material payload.
type MaterialData struct {
	Name   string
	Shader string
	Colors map[string]Color
	Floats map[string]float32

	// Textures maps a shader property to the content hash of its texture.
	Textures map[string]string
}

// PeekTag returns the type tag of a payload without decoding it.
func PeekTag(data []byte) (Tag, bool) {
	if len(data) == 0 {
		return TagNull, false
	}
	t := Tag(data[0])
	if t > TagMaterial {
		return t, false
	}
	return t, true
}
