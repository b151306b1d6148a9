// Package codec converts numeric vectors to and from the byte blobs stored in
// matrix store cells.
//
// Codec selection is a file-format boundary: a file written with one codec
// cannot be read with another. The default, Float64, is a headerless
// little-endian sequence of IEEE-754 binary64 values; the framed codecs
// (lz4, zstd, sparse) carry a magic prefix and a declared length that is
// checked on decode.
package codec

import "fmt"

// Codec encodes and decodes numeric vectors.
// Implementations must be safe for concurrent use.
type Codec interface {
	Encode(values []float64) ([]byte, error)
	Decode(data []byte) ([]float64, error)
	Name() string
}

// FixedWidth is implemented by element codecs whose encoded size is
// exactly Width() bytes per value.
type FixedWidth interface {
	Codec
	Width() int
}

// Default is the codec used when none is configured.
var Default Codec = Float64{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "float64", "":
		return Float64{}, true
	case "float32":
		return Float32{}, true
	case "lz4":
		return NewLZ4(), true
	case "zstd":
		return NewZSTD(), true
	case "sparse":
		return Sparse{}, true
	default:
		return nil, false
	}
}

// Names lists the names accepted by ByName.
func Names() []string {
	return []string{"float64", "float32", "lz4", "zstd", "sparse"}
}

// MustEncode is a helper for tests and fixtures.
func MustEncode(c Codec, values []float64) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Encode(values)
	if err != nil {
		panic(fmt.Errorf("codec %s encode failed: %w", c.Name(), err))
	}
	return b
}
