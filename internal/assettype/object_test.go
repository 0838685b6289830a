package assettype

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meigma/assetpipe/codec"
)

func TestTextureClone(t *testing.T) {
	t.Parallel()

	orig := NewTexture(&codec.TextureData{Name: "t", Width: 1, Height: 1, Pixels: []byte{1, 2, 3, 4}}, "a.pak")
	clone := orig.Clone()
	assert.Equal(t, orig, clone)
	assert.NotSame(t, orig, clone)

	clone.Pixels[0] = 99
	assert.Equal(t, byte(1), orig.Pixels[0])
}

func TestMeshClone(t *testing.T) {
	t.Parallel()

	orig := NewMesh(&codec.MeshData{
		Name:      "m",
		Vertices:  []codec.Vec3{{1, 2, 3}},
		SubMeshes: [][]int32{{0, 0, 0}, {0, 0, 0}},
	}, "a.pak")
	clone := orig.Clone()
	assert.Equal(t, orig, clone)
	assert.Equal(t, 2, clone.TriangleCount())

	clone.Vertices[0][0] = 42
	clone.SubMeshes[1][0] = 7
	assert.InDelta(t, 1, orig.Vertices[0][0], 0)
	assert.Equal(t, int32(0), orig.SubMeshes[1][0])
}

func TestMaterialClone(t *testing.T) {
	t.Parallel()

	orig := NewMaterial(&codec.MaterialData{
		Name:     "mat",
		Textures: map[string]string{"_MainTex": "h1", "_BumpMap": "h2"},
	}, "a.pak")
	assert.Equal(t, 2, orig.TextureCount())

	clone := orig.Clone()
	clone.Textures["_Extra"] = "h3"
	assert.Equal(t, 2, orig.TextureCount())
	assert.Equal(t, 3, clone.TextureCount())
}

func TestKindParseRoundTrip(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{KindOther, KindTexture, KindMesh, KindMaterial} {
		got, ok := ParseKind(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("shader")
	assert.False(t, ok)

	assert.True(t, KindMesh.Decodable())
	assert.False(t, KindMaterial.Decodable())
	assert.Equal(t, TierLOD, TierOf(false))
	assert.Equal(t, "primary", TierOf(true).String())
}
