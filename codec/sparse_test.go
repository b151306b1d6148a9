package codec

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparse_SmallerThanDense(t *testing.T) {
	values := make([]float64, 8000*12)
	values[17] = 3
	values[9000] = 1.5
	values[len(values)-1] = -2

	data, err := Sparse{}.Encode(values)
	require.NoError(t, err)
	assert.Less(t, len(data), 200)

	got, err := Sparse{}.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestSparse_NegativeZeroIsStored(t *testing.T) {
	negZero := math.Copysign(0, -1)

	data, err := Sparse{}.Encode([]float64{0, negZero})
	require.NoError(t, err)

	got, err := Sparse{}.Decode(data)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, math.Signbit(got[1]))
	assert.False(t, math.Signbit(got[0]))
}

func TestSparse_DecodeCorrupt(t *testing.T) {
	valid, err := Sparse{}.Encode([]float64{0, 1, 0, 2, 0})
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"ShortHeader", func(b []byte) []byte { return b[:5] }},
		{"BadMagic", func(b []byte) []byte { b[3] = '9'; return b }},
		{"BitmapLengthOverflow", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[8:], uint32(len(b)))
			return b
		}},
		{"MissingValue", func(b []byte) []byte { return b[:len(b)-8] }},
		{"ExtraBytes", func(b []byte) []byte { return append(b, 0) }},
		{"PositionOutsideLength", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[4:], 3)
			return b
		}},
		{"GarbageBitmap", func(b []byte) []byte {
			for i := sparseHeaderSize; i < sparseHeaderSize+4; i++ {
				b[i] = 0xff
			}
			return b
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(append([]byte(nil), valid...))
			_, err := Sparse{}.Decode(data)
			require.ErrorIs(t, err, ErrCorruptPayload)
		})
	}
}

// unorderedBitmap is a portable roaring bitmap whose containers are out of
// key order: key 1 (position 65536) precedes key 0 (position 5), so
// Maximum reports 5.
func unorderedBitmap() []byte {
	var b []byte
	b = binary.LittleEndian.AppendUint32(b, 12346) // no-run cookie
	b = binary.LittleEndian.AppendUint32(b, 2)     // containers
	b = binary.LittleEndian.AppendUint16(b, 1)     // key
	b = binary.LittleEndian.AppendUint16(b, 0)     // cardinality - 1
	b = binary.LittleEndian.AppendUint16(b, 0)
	b = binary.LittleEndian.AppendUint16(b, 0)
	b = binary.LittleEndian.AppendUint32(b, 24) // offsets
	b = binary.LittleEndian.AppendUint32(b, 26)
	b = binary.LittleEndian.AppendUint16(b, 0) // key 1: low bits 0
	b = binary.LittleEndian.AppendUint16(b, 5) // key 0: low bits 5
	return b
}

func sparseFrame(length int, bitmap []byte, values int) []byte {
	b := append([]byte(nil), sparseMagic[:]...)
	b = binary.LittleEndian.AppendUint32(b, uint32(length))
	b = binary.LittleEndian.AppendUint32(b, uint32(len(bitmap)))
	b = append(b, bitmap...)
	return append(b, make([]byte, values*8)...)
}

func TestSparse_DecodeUnorderedContainers(t *testing.T) {
	_, err := Sparse{}.Decode(sparseFrame(64, unorderedBitmap(), 2))
	require.ErrorIs(t, err, ErrCorruptPayload)
}

func TestSparse_MaxLength(t *testing.T) {
	empty, err := roaring.New().ToBytes()
	require.NoError(t, err)

	// A few bytes declaring a huge, all-zero vector.
	_, err = Sparse{}.Decode(sparseFrame(math.MaxUint32, empty, 0))
	require.ErrorIs(t, err, ErrCorruptPayload)

	data, err := Sparse{}.Encode([]float64{0, 1, 0, 2, 0})
	require.NoError(t, err)

	_, err = Sparse{MaxLength: 4}.Decode(data)
	require.ErrorIs(t, err, ErrCorruptPayload)

	got, err := Sparse{MaxLength: 5}.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 2, 0}, got)
}

func FuzzSparseDecode(f *testing.F) {
	for _, values := range [][]float64{nil, {0, 1, 0, 2, 0}, {math.NaN(), 0, -1}} {
		data, err := Sparse{}.Encode(values)
		require.NoError(f, err)
		f.Add(data)
	}
	f.Add(sparseFrame(64, unorderedBitmap(), 2))

	f.Fuzz(func(t *testing.T, data []byte) {
		got, err := Sparse{MaxLength: 1 << 16}.Decode(data)
		if err != nil {
			require.ErrorIs(t, err, ErrCorruptPayload)
			return
		}
		require.Len(t, got, int(binary.LittleEndian.Uint32(data[4:])))
	})
}
