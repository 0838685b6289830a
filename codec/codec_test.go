package codec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMesh() *MeshData {
	return &MeshData{
		Name:     "crate",
		Vertices: []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		Colors:   []Color{{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}, {1, 1, 1, 1}},
		UV:       []Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		Normals:  []Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		BoneWeights: []BoneWeight{
			{Weights: [4]float32{1}, Indices: [4]int32{0}},
			{Weights: [4]float32{0.5, 0.5}, Indices: [4]int32{0, 1}},
			{Weights: [4]float32{1}, Indices: [4]int32{1}},
			{Weights: [4]float32{1}, Indices: [4]int32{1}},
		},
		BindPoses: []Matrix4x4{{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}},
		SubMeshes: [][]int32{{0, 1, 2}, {1, 3, 2}},
	}
}

func TestMeshRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mesh *MeshData
	}{
		{"full", sampleMesh()},
		{"empty", &MeshData{Name: "empty"}},
		{"no submeshes", &MeshData{Name: "points", Vertices: []Vec3{{1, 2, 3}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeMesh(EncodeMesh(tt.mesh))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.mesh, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("mesh mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeMeshMalformed(t *testing.T) {
	t.Parallel()

	data := EncodeMesh(sampleMesh())

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrMalformed},
		{"truncated", data[:len(data)/2], ErrMalformed},
		{"wrong tag", append([]byte{byte(TagMaterial)}, data[1:]...), ErrUnexpectedTag},
		{"huge count", []byte{byte(TagMesh), 0, 0xff, 0xff, 0xff, 0x7f}, ErrMalformed},
		{"negative count", []byte{byte(TagMesh), 0, 0xff, 0xff, 0xff, 0xff}, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeMesh(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTextureRoundTrip(t *testing.T) {
	t.Parallel()

	pixels := make([]byte, 4*4*4)
	for i := range pixels {
		pixels[i] = byte(i)
	}
	tex := &TextureData{
		Name:   "bricks",
		Pixels: pixels,
		Width:  4,
		Height: 4,
		Format: FormatRGBA32,
		Mipmap: true,
		Linear: true,
	}

	data, err := EncodeTexture(tex)
	require.NoError(t, err)

	got, err := DecodeTexture(data)
	require.NoError(t, err)
	if diff := cmp.Diff(tex, got); diff != "" {
		t.Errorf("texture mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTextureAcceptsImageTag(t *testing.T) {
	t.Parallel()

	data, err := EncodeTexture(&TextureData{Name: "n", Width: 1, Height: 1, Format: FormatAlpha8, Pixels: []byte{9}})
	require.NoError(t, err)
	data[0] = byte(TagImage)

	got, err := DecodeTexture(data)
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, got.Pixels)
	assert.False(t, got.Mipmap)
}

func TestDecodeTextureRejectsMesh(t *testing.T) {
	t.Parallel()

	_, err := DecodeTexture(EncodeMesh(sampleMesh()))
	assert.ErrorIs(t, err, ErrUnexpectedTag)
}

func TestDecodeTextureBadBlob(t *testing.T) {
	t.Parallel()

	w := &writer{}
	w.u8(uint8(TagTexture))
	w.str("broken")
	w.boolean(false)
	w.count(3)
	w.buf = append(w.buf, 1, 2, 3)

	_, err := DecodeTexture(w.buf)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeImageSizeLimit(t *testing.T) {
	t.Parallel()

	blob, err := EncodeImage(&Image{Width: 8, Height: 8, Format: FormatAlpha8, MipCount: 1, Pixels: make([]byte, 64)})
	require.NoError(t, err)

	_, err = NewDecoder(WithMaxImageBytes(32)).DecodeImage(blob)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	img, err := NewDecoder(WithMaxImageBytes(64)).DecodeImage(blob)
	require.NoError(t, err)
	assert.Len(t, img.Pixels, 64)
}

func TestDecoderReuse(t *testing.T) {
	t.Parallel()

	d := NewDecoder(WithDecoderLowmem(true))
	for i := range 8 {
		blob, err := EncodeImage(&Image{Width: i, Height: 1, Format: FormatAlpha8, MipCount: 1, Pixels: make([]byte, i)})
		require.NoError(t, err)
		img, err := d.DecodeImage(blob)
		require.NoError(t, err)
		assert.Equal(t, i, img.Width)
		assert.Len(t, img.Pixels, i)
	}
}

func TestMaterialRoundTrip(t *testing.T) {
	t.Parallel()

	mat := &MaterialData{
		Name:   "wood",
		Shader: "Standard",
		Colors: map[string]Color{"_Color": {1, 0.5, 0.25, 1}},
		Floats: map[string]float32{"_Glossiness": 0.3, "_Metallic": 0},
		Textures: map[string]string{
			"_MainTex": "sha256:aaaa",
			"_BumpMap": "sha256:bbbb",
		},
	}

	data := EncodeMaterial(mat)
	assert.Equal(t, data, EncodeMaterial(mat), "encoding must be deterministic")

	got, err := DecodeMaterial(data)
	require.NoError(t, err)
	if diff := cmp.Diff(mat, got); diff != "" {
		t.Errorf("material mismatch (-want +got):\n%s", diff)
	}

	_, err = DecodeMaterial(data[:len(data)-3])
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestMipLevels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, mipLevels(1, 1))
	assert.Equal(t, 3, mipLevels(4, 4))
	assert.Equal(t, 4, mipLevels(8, 2))
}
