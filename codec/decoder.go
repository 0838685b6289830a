package codec

const (
	// DefaultMaxImageBytes is the default cap on decoded pixel data (256MB).
	DefaultMaxImageBytes = 256 << 20

	// DefaultMaxDecoderMemory is the default zstd decoder memory limit (256MB).
	DefaultMaxDecoderMemory = 256 << 20
)

// Decoder decodes payloads, reusing zstd decoder state across image blobs.
// A Decoder is safe for concurrent use.
type Decoder struct {
	maxImageBytes    int64
	maxDecoderMemory uint64
	lowmem           bool
	pool             *decoderPool
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMaxImageBytes caps the pixel data a single image blob may declare.
// Set to 0 to disable the limit.
func WithMaxImageBytes(n int64) DecoderOption {
	return func(d *Decoder) {
		if n < 0 {
			n = 0
		}
		d.maxImageBytes = n
	}
}

// WithMaxDecoderMemory sets the zstd decoder memory limit.
// Set to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) DecoderOption {
	return func(d *Decoder) {
		d.maxDecoderMemory = limit
	}
}

// WithDecoderLowmem sets whether zstd decoders use low-memory mode.
func WithDecoderLowmem(enabled bool) DecoderOption {
	return func(d *Decoder) {
		d.lowmem = enabled
	}
}

// NewDecoder creates a Decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		maxImageBytes:    DefaultMaxImageBytes,
		maxDecoderMemory: DefaultMaxDecoderMemory,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.pool = newDecoderPool(d.maxDecoderMemory, d.lowmem)
	return d
}

var defaultDecoder = NewDecoder()

// DecodeTexture parses a texture payload with a shared default [Decoder].
func DecodeTexture(data []byte) (*TextureData, error) {
	return defaultDecoder.DecodeTexture(data)
}

// DecodeImage unpacks an image blob with a shared default [Decoder].
func DecodeImage(blob []byte) (*Image, error) {
	return defaultDecoder.DecodeImage(blob)
}
