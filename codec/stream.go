package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// reader decodes primitives from a payload. The first failure is sticky:
// later reads return zero values and err reports the first problem.
type reader struct {
	buf []byte
	off int
	err error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.remaining() < n {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformed, n, r.off, r.remaining())
		return false
	}
	return true
}

func (r *reader) u8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *reader) boolean() bool {
	return r.u8() != 0
}

func (r *reader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *reader) i32() int32 {
	return int32(r.u32()) //nolint:gosec // two's complement reinterpretation
}

func (r *reader) f32() float32 {
	return math.Float32frombits(r.u32())
}

func (r *reader) str() string {
	if r.err != nil {
		return ""
	}
	n, size := binary.Uvarint(r.buf[r.off:])
	if size <= 0 {
		r.err = fmt.Errorf("%w: bad string length at offset %d", ErrMalformed, r.off)
		return ""
	}
	r.off += size
	if n > uint64(r.remaining()) {
		r.err = fmt.Errorf("%w: string of %d bytes at offset %d, have %d", ErrMalformed, n, r.off, r.remaining())
		return ""
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s
}

// count reads an int32 element count and checks that count elements of
// elemSize bytes fit in the rest of the payload.
func (r *reader) count(elemSize int) int {
	n := r.i32()
	if r.err != nil {
		return 0
	}
	if n < 0 || int64(n)*int64(elemSize) > int64(r.remaining()) {
		r.err = fmt.Errorf("%w: count %d at offset %d", ErrMalformed, n, r.off-4)
		return 0
	}
	return int(n)
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	out := make([]byte, n)
	copy(out, r.buf[r.off:r.off+n])
	r.off += n
	return out
}

func (r *reader) f32s(dst []float32) {
	for i := range dst {
		dst[i] = r.f32()
	}
}

func (r *reader) i32s() []int32 {
	n := r.count(4)
	if n == 0 {
		return nil
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = r.i32()
	}
	return out
}

// expectTag reads the type tag and fails unless it is one of want.
func (r *reader) expectTag(want ...Tag) Tag {
	tag := Tag(r.u8())
	if r.err != nil {
		return tag
	}
	for _, w := range want {
		if tag == w {
			return tag
		}
	}
	r.err = fmt.Errorf("%w: got %s, want %v", ErrUnexpectedTag, tag, want)
	return tag
}

// readArray reads an int32-counted array whose elements occupy elemSize bytes.
func readArray[T any](r *reader, elemSize int, read func(*reader) T) []T {
	n := r.count(elemSize)
	if n == 0 {
		return nil
	}
	out := make([]T, n)
	for i := range out {
		out[i] = read(r)
	}
	return out
}

// writer appends primitives to a growing payload.
type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) boolean(v bool) {
	if v {
		w.u8(1)
		return
	}
	w.u8(0)
}

func (w *writer) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *writer) i32(v int32) {
	w.u32(uint32(v)) //nolint:gosec // two's complement reinterpretation
}

func (w *writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *writer) f32s(vs []float32) {
	for _, v := range vs {
		w.f32(v)
	}
}

func (w *writer) str(s string) {
	w.buf = binary.AppendUvarint(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) count(n int) {
	w.i32(int32(n)) //nolint:gosec // payload arrays are far below 2^31 elements
}

func (w *writer) i32s(vs []int32) {
	w.count(len(vs))
	for _, v := range vs {
		w.i32(v)
	}
}

func writeArray[T any](w *writer, vs []T, write func(*writer, T)) {
	w.count(len(vs))
	for _, v := range vs {
		write(w, v)
	}
}
