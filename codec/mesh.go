package codec

const (
	vec2Size       = 8
	vec3Size       = 12
	vec4Size       = 16
	boneWeightSize = 32
	matrixSize     = 64
)

// EncodeMesh serializes a mesh payload.
func EncodeMesh(m *MeshData) []byte {
	w := &writer{buf: make([]byte, 0, meshSizeHint(m))}
	w.u8(uint8(TagMesh))
	w.str(m.Name)
	writeArray(w, m.Vertices, writeFloats[Vec3])
	writeArray(w, m.Colors, writeFloats[Color])
	writeArray(w, m.UV, writeFloats[Vec2])
	writeArray(w, m.Normals, writeFloats[Vec3])
	writeArray(w, m.Tangents, writeFloats[Vec4])
	writeArray(w, m.BoneWeights, writeBoneWeight)
	writeArray(w, m.BindPoses, writeFloats[Matrix4x4])
	w.count(len(m.SubMeshes))
	for _, tris := range m.SubMeshes {
		w.i32s(tris)
	}
	return w.buf
}

// DecodeMesh parses a mesh payload.
func DecodeMesh(data []byte) (*MeshData, error) {
	r := newReader(data)
	r.expectTag(TagMesh)
	m := &MeshData{Name: r.str()}
	m.Vertices = readArray(r, vec3Size, readFloats[Vec3])
	m.Colors = readArray(r, vec4Size, readFloats[Color])
	m.UV = readArray(r, vec2Size, readFloats[Vec2])
	m.Normals = readArray(r, vec3Size, readFloats[Vec3])
	m.Tangents = readArray(r, vec4Size, readFloats[Vec4])
	m.BoneWeights = readArray(r, boneWeightSize, readBoneWeight)
	m.BindPoses = readArray(r, matrixSize, readFloats[Matrix4x4])

	n := r.count(4)
	if n > 0 {
		m.SubMeshes = make([][]int32, n)
		for i := range m.SubMeshes {
			m.SubMeshes[i] = r.i32s()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

// floatArray is any fixed-size float32 vector type.
type floatArray interface {
	Vec2 | Vec3 | Vec4 | Color | Matrix4x4
}

func readFloats[T floatArray](r *reader) T {
	var v T
	for i := range len(v) {
		v[i] = r.f32()
	}
	return v
}

func writeFloats[T floatArray](w *writer, v T) {
	for i := range len(v) {
		w.f32(v[i])
	}
}

func readBoneWeight(r *reader) BoneWeight {
	var b BoneWeight
	r.f32s(b.Weights[:])
	for i := range b.Indices {
		b.Indices[i] = r.i32()
	}
	return b
}

func writeBoneWeight(w *writer, b BoneWeight) {
	w.f32s(b.Weights[:])
	for _, idx := range b.Indices {
		w.i32(idx)
	}
}

func meshSizeHint(m *MeshData) int {
	n := 64 + len(m.Name)
	n += len(m.Vertices)*vec3Size + len(m.Colors)*vec4Size + len(m.UV)*vec2Size
	n += len(m.Normals)*vec3Size + len(m.Tangents)*vec4Size
	n += len(m.BoneWeights)*boneWeightSize + len(m.BindPoses)*matrixSize
	for _, tris := range m.SubMeshes {
		n += 4 + 4*len(tris)
	}
	return n
}
