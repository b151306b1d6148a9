package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Float64 stores each value as 8 little-endian bytes (IEEE-754 binary64)
// without a header. The vector length is derived from the blob size.
type Float64 struct{}

// Name returns "float64".
func (Float64) Name() string { return "float64" }

// Width returns the element width in bytes.
func (Float64) Width() int { return 8 }

// Encode returns len(values)*8 bytes. An empty vector encodes to an empty,
// non-nil slice.
func (Float64) Encode(values []float64) ([]byte, error) {
	b := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b, nil
}

// Decode fails with a CorruptPayloadError when len(data) is not a multiple
// of 8. Zero bytes decode to an empty vector.
func (Float64) Decode(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, corrupt("float64", data, "length is not a multiple of 8", nil)
	}
	out := make([]float64, len(data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return out, nil
}

// Float32 stores each value as 4 little-endian bytes (IEEE-754 binary32).
//
// Values are rounded to the nearest float32 on encode; finite values whose
// magnitude exceeds math.MaxFloat32 are rejected with ErrNotRepresentable
// instead of silently becoming infinities.
type Float32 struct{}

// Name returns "float32".
func (Float32) Name() string { return "float32" }

// Width returns the element width in bytes.
func (Float32) Width() int { return 4 }

// Encode returns len(values)*4 bytes.
func (Float32) Encode(values []float64) ([]byte, error) {
	b := make([]byte, len(values)*4)
	for i, v := range values {
		if !math.IsInf(v, 0) && !math.IsNaN(v) && math.Abs(v) > math.MaxFloat32 {
			return nil, fmt.Errorf("%w: %g at index %d overflows float32", ErrNotRepresentable, v, i)
		}
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(float32(v)))
	}
	return b, nil
}

// Decode fails with a CorruptPayloadError when len(data) is not a multiple
// of 4.
func (Float32) Decode(data []byte) ([]float64, error) {
	if len(data)%4 != 0 {
		return nil, corrupt("float32", data, "length is not a multiple of 4", nil)
	}
	out := make([]float64, len(data)/4)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
	}
	return out, nil
}
