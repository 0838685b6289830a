// Package sizing provides safe size arithmetic and conversions to prevent overflow.
package sizing

import (
	"io"
	"math"
)

// ToInt converts a uint64 to int, returning overflowErr if it doesn't fit.
func ToInt(size uint64, overflowErr error) (int, error) {
	if size > uint64(math.MaxInt) {
		return 0, overflowErr
	}
	return int(size), nil
}

// ToInt64 converts a uint64 to int64, returning overflowErr if it doesn't fit.
func ToInt64(size uint64, overflowErr error) (int64, error) {
	if size > uint64(math.MaxInt64) {
		return 0, overflowErr
	}
	return int64(size), nil
}

// AddInt64 adds two non-negative int64 values, returning (0, false) if either
// is negative or the sum overflows.
func AddInt64(a, b int64) (int64, bool) {
	if a < 0 || b < 0 || a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

// InRange reports whether the range [off, off+length) is non-negative and
// lies within a source of the given size.
func InRange(off, length, size int64) bool {
	end, ok := AddInt64(off, length)
	return ok && size >= 0 && end <= size
}

// ReadFullWithLimit reads exactly n bytes from r. It returns overflowErr
// without reading when n is negative or above limit (0 disables the limit).
func ReadFullWithLimit(r io.Reader, n, limit int64, overflowErr error) ([]byte, error) {
	if n < 0 || (limit > 0 && n > limit) || n > math.MaxInt32 {
		return nil, overflowErr
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
