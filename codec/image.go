package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/assetpipe/internal/sizing"
)

// imageMagic opens the decompressed content of every image blob.
var imageMagic = [4]byte{'A', 'I', 'M', 'G'}

// imageHeaderSize is magic, width, height, format, mip count and pixel length.
const imageHeaderSize = 4 + 4 + 4 + 1 + 1 + 4

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	encoderErr  error
)

func sharedEncoder() (*zstd.Encoder, error) {
	encoderOnce.Do(func() {
		encoder, encoderErr = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	})
	return encoder, encoderErr
}

// EncodeImage packs img into a zstd-compressed image blob.
func EncodeImage(img *Image) ([]byte, error) {
	if img.Width < 0 || img.Height < 0 || img.MipCount < 0 || img.MipCount > 255 {
		return nil, fmt.Errorf("%w: invalid image dimensions", ErrMalformed)
	}
	enc, err := sharedEncoder()
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	raw := make([]byte, 0, imageHeaderSize+len(img.Pixels))
	raw = append(raw, imageMagic[:]...)
	raw = binary.LittleEndian.AppendUint32(raw, uint32(img.Width))  //nolint:gosec // checked above
	raw = binary.LittleEndian.AppendUint32(raw, uint32(img.Height)) //nolint:gosec // checked above
	raw = append(raw, uint8(img.Format), uint8(img.MipCount))
	raw = binary.LittleEndian.AppendUint32(raw, uint32(len(img.Pixels))) //nolint:gosec // pixel data is far below 4GB
	raw = append(raw, img.Pixels...)
	return enc.EncodeAll(raw, nil), nil
}

// DecodeImage unpacks an image blob produced by [EncodeImage].
func (d *Decoder) DecodeImage(blob []byte) (*Image, error) {
	dec, release, err := d.pool.get(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer release()

	var hdr [imageHeaderSize]byte
	if _, err := io.ReadFull(dec, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: image header: %v", ErrMalformed, err)
	}
	if !bytes.Equal(hdr[:4], imageMagic[:]) {
		return nil, fmt.Errorf("%w: bad image magic", ErrMalformed)
	}
	img := &Image{
		Width:    int(binary.LittleEndian.Uint32(hdr[4:])),
		Height:   int(binary.LittleEndian.Uint32(hdr[8:])),
		Format:   Format(hdr[12]),
		MipCount: int(hdr[13]),
	}
	n := int64(binary.LittleEndian.Uint32(hdr[14:]))

	img.Pixels, err = sizing.ReadFullWithLimit(dec, n, d.maxImageBytes, ErrImageTooLarge)
	if err != nil {
		if errors.Is(err, ErrImageTooLarge) {
			return nil, fmt.Errorf("%w: %d bytes", err, n)
		}
		return nil, fmt.Errorf("%w: image pixels: %v", ErrMalformed, err)
	}
	if err := ensureNoExtra(dec); err != nil {
		return nil, err
	}
	return img, nil
}

func ensureNoExtra(r io.Reader) error {
	var buf [1]byte
	n, err := r.Read(buf[:])
	if n > 0 {
		return fmt.Errorf("%w: trailing image data", ErrMalformed)
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}
