package codec

import "fmt"

// EncodeTexture serializes a texture payload, packing its pixels into an
// image blob.
func EncodeTexture(t *TextureData) ([]byte, error) {
	mips := 1
	if t.Mipmap {
		mips = max(2, mipLevels(t.Width, t.Height))
	}
	blob, err := EncodeImage(&Image{
		Width:    t.Width,
		Height:   t.Height,
		Format:   t.Format,
		MipCount: mips,
		Pixels:   t.Pixels,
	})
	if err != nil {
		return nil, fmt.Errorf("encode texture %q: %w", t.Name, err)
	}

	w := &writer{buf: make([]byte, 0, len(blob)+len(t.Name)+16)}
	w.u8(uint8(TagTexture))
	w.str(t.Name)
	w.boolean(t.Linear)
	w.count(len(blob))
	w.buf = append(w.buf, blob...)
	return w.buf, nil
}

// DecodeTexture parses a texture payload. Both texture and bare image tags
// are accepted.
func (d *Decoder) DecodeTexture(data []byte) (*TextureData, error) {
	r := newReader(data)
	r.expectTag(TagTexture, TagImage)
	t := &TextureData{Name: r.str()}
	t.Linear = r.boolean()
	blob := r.bytes(r.count(1))
	if r.err != nil {
		return nil, r.err
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, r.remaining())
	}

	img, err := d.DecodeImage(blob)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", t.Name, err)
	}
	t.Pixels = img.Pixels
	t.Width = img.Width
	t.Height = img.Height
	t.Format = img.Format
	t.Mipmap = img.MipCount > 1
	return t, nil
}

// mipLevels returns the length of a full mip chain for the given size.
func mipLevels(w, h int) int {
	n := 1
	for w > 1 || h > 1 {
		w /= 2
		h /= 2
		n++
	}
	return min(n, 255)
}
