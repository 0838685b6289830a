package testutil

import (
	"testing"

	"github.com/meigma/assetpipe/codec"
)

// MeshPayload returns an encoded quad mesh named name.
func MeshPayload(name string) []byte {
	return codec.EncodeMesh(&codec.MeshData{
		Name:      name,
		Vertices:  []codec.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		UV:        []codec.Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		Normals:   []codec.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		SubMeshes: [][]int32{{0, 1, 2, 1, 3, 2}},
	})
}

// TexturePayload returns an encoded RGBA texture filled with fill.
func TexturePayload(tb testing.TB, name string, size int, fill byte) []byte {
	tb.Helper()
	pixels := make([]byte, size*size*4)
	for i := range pixels {
		pixels[i] = fill
	}
	data, err := codec.EncodeTexture(&codec.TextureData{
		Name:   name,
		Pixels: pixels,
		Width:  size,
		Height: size,
		Format: codec.FormatRGBA32,
	})
	if err != nil {
		tb.Fatalf("encode texture %s: %v", name, err)
	}
	return data
}

// MaterialPayload returns an encoded material referencing textures, keyed
// by shader property.
func MaterialPayload(name string, textures map[string]string) []byte {
	return codec.EncodeMaterial(&codec.MaterialData{
		Name:     name,
		Shader:   "Standard",
		Colors:   map[string]codec.Color{"_Color": {1, 1, 1, 1}},
		Textures: textures,
	})
}
