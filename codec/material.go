package codec

import (
	"maps"
	"slices"
)

// EncodeMaterial serializes a material payload. Map entries are written in
// key order so equal materials encode to equal bytes.
func EncodeMaterial(m *MaterialData) []byte {
	w := &writer{}
	w.u8(uint8(TagMaterial))
	w.str(m.Name)
	w.str(m.Shader)

	w.count(len(m.Colors))
	for _, k := range slices.Sorted(maps.Keys(m.Colors)) {
		c := m.Colors[k]
		w.str(k)
		w.f32s(c[:])
	}
	w.count(len(m.Floats))
	for _, k := range slices.Sorted(maps.Keys(m.Floats)) {
		w.str(k)
		w.f32(m.Floats[k])
	}
	w.count(len(m.Textures))
	for _, k := range slices.Sorted(maps.Keys(m.Textures)) {
		w.str(k)
		w.str(m.Textures[k])
	}
	return w.buf
}

// DecodeMaterial parses a material payload.
func DecodeMaterial(data []byte) (*MaterialData, error) {
	r := newReader(data)
	r.expectTag(TagMaterial)
	m := &MaterialData{
		Name:   r.str(),
		Shader: r.str(),
	}

	// Each entry holds at least a one-byte key length.
	if n := r.count(1 + vec4Size); n > 0 {
		m.Colors = make(map[string]Color, n)
		for range n {
			k := r.str()
			var c Color
			r.f32s(c[:])
			m.Colors[k] = c
		}
	}
	if n := r.count(1 + 4); n > 0 {
		m.Floats = make(map[string]float32, n)
		for range n {
			k := r.str()
			m.Floats[k] = r.f32()
		}
	}
	if n := r.count(2); n > 0 {
		m.Textures = make(map[string]string, n)
		for range n {
			k := r.str()
			m.Textures[k] = r.str()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}
