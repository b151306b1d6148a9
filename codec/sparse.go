package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// sparseMagic prefixes every Sparse frame.
var sparseMagic = [4]byte{'M', 'X', 'S', '1'}

// Frame layout:
//
//	[magic 4][length u32][bitmap length u32][roaring bitmap][values 8*cardinality]
const sparseHeaderSize = 12

// Sparse stores only the non-zero elements of a vector.
//
// Positions of non-zero values are kept in a roaring bitmap and the values
// follow in position order as little-endian binary64. Prescribing matrices
// are mostly zeros (most practices never prescribe most presentations), so
// this is usually far smaller than the dense encoding. A value counts as
// zero only when its bit pattern is +0.0; -0.0 and NaN are stored.
//
// A frame of few bytes may declare a long, mostly zero vector, so Decode
// rejects declared lengths above MaxLength before allocating.
type Sparse struct {
	// MaxLength is the longest vector Decode accepts.
	// Default: MaxDecodedBytes / 8.
	MaxLength int
}

func (s Sparse) maxLength() int {
	if s.MaxLength > 0 {
		return s.MaxLength
	}
	return MaxDecodedBytes / 8
}

// Name returns "sparse".
func (Sparse) Name() string { return "sparse" }

// Encode writes the bitmap of non-zero positions and their values.
func (Sparse) Encode(values []float64) ([]byte, error) {
	if uint64(len(values)) > math.MaxUint32 {
		return nil, fmt.Errorf("sparse codec: vector of %d values exceeds frame limit", len(values))
	}

	bm := roaring.New()
	for i, v := range values {
		if math.Float64bits(v) != 0 {
			bm.Add(uint32(i))
		}
	}
	bm.RunOptimize()

	bitmap, err := bm.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("sparse codec: serialize bitmap: %w", err)
	}

	card := int(bm.GetCardinality())
	out := make([]byte, sparseHeaderSize+len(bitmap)+card*8)
	copy(out, sparseMagic[:])
	binary.LittleEndian.PutUint32(out[4:], uint32(len(values)))
	binary.LittleEndian.PutUint32(out[8:], uint32(len(bitmap)))
	copy(out[sparseHeaderSize:], bitmap)

	off := sparseHeaderSize + len(bitmap)
	it := bm.Iterator()
	for it.HasNext() {
		binary.LittleEndian.PutUint64(out[off:], math.Float64bits(values[it.Next()]))
		off += 8
	}
	return out, nil
}

// Decode rebuilds the dense vector. The value section must hold exactly one
// element per set bit, and no set bit may fall outside the declared length.
func (s Sparse) Decode(data []byte) ([]float64, error) {
	if len(data) < sparseHeaderSize {
		return nil, corrupt("sparse", data, "frame shorter than header", nil)
	}
	if [4]byte(data[:4]) != sparseMagic {
		return nil, corrupt("sparse", data, "bad frame magic", nil)
	}
	length := int(binary.LittleEndian.Uint32(data[4:]))
	if length > s.maxLength() {
		return nil, corrupt("sparse", data, fmt.Sprintf("length %d exceeds limit %d", length, s.maxLength()), nil)
	}
	bitmapLen := int(binary.LittleEndian.Uint32(data[8:]))
	if bitmapLen > len(data)-sparseHeaderSize {
		return nil, corrupt("sparse", data, fmt.Sprintf("bitmap length %d exceeds frame", bitmapLen), nil)
	}

	bm := roaring.New()
	if err := bm.UnmarshalBinary(data[sparseHeaderSize : sparseHeaderSize+bitmapLen]); err != nil {
		return nil, corrupt("sparse", data, "bitmap", err)
	}
	if err := bm.Validate(); err != nil {
		return nil, corrupt("sparse", data, "bitmap", err)
	}

	values := data[sparseHeaderSize+bitmapLen:]
	card := bm.GetCardinality()
	if uint64(len(values)) != card*8 {
		return nil, corrupt("sparse", data, fmt.Sprintf("value section is %d bytes, bitmap holds %d positions", len(values), card), nil)
	}
	if card > 0 && int(bm.Maximum()) >= length {
		return nil, corrupt("sparse", data, fmt.Sprintf("position %d outside length %d", bm.Maximum(), length), nil)
	}

	out := make([]float64, length)
	off := 0
	it := bm.Iterator()
	for it.HasNext() {
		pos := it.Next()
		if pos >= uint32(length) {
			return nil, corrupt("sparse", data, fmt.Sprintf("position %d outside length %d", pos, length), nil)
		}
		if off+8 > len(values) {
			return nil, corrupt("sparse", data, "bitmap yields more positions than its cardinality", nil)
		}
		out[pos] = math.Float64frombits(binary.LittleEndian.Uint64(values[off:]))
		off += 8
	}
	return out, nil
}
