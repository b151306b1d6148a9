package codec

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bits(values []float64) []uint64 {
	out := make([]uint64, len(values))
	for i, v := range values {
		out[i] = math.Float64bits(v)
	}
	return out
}

func sampleVectors() map[string][]float64 {
	rng := rand.New(rand.NewSource(42))
	dense := make([]float64, 513)
	for i := range dense {
		dense[i] = rng.NormFloat64() * 1e6
	}
	sparse := make([]float64, 4096)
	for i := 0; i < 40; i++ {
		sparse[rng.Intn(len(sparse))] = float64(rng.Intn(1000))
	}
	return map[string][]float64{
		"empty":    {},
		"single":   {42.5},
		"scenario": {10, 20, 30, 40},
		"special":  {math.Inf(1), math.Inf(-1), math.NaN(), math.Copysign(0, -1), math.SmallestNonzeroFloat64, math.MaxFloat64},
		"dense":    dense,
		"sparse":   sparse,
		"zeros":    make([]float64, 100),
	}
}

func TestRoundTrip(t *testing.T) {
	codecs := []Codec{Float64{}, NewLZ4(), NewZSTD(), Sparse{}}

	for _, c := range codecs {
		for name, values := range sampleVectors() {
			t.Run(c.Name()+"/"+name, func(t *testing.T) {
				data, err := c.Encode(values)
				require.NoError(t, err)

				got, err := c.Decode(data)
				require.NoError(t, err)
				assert.Equal(t, bits(values), bits(got))
			})
		}
	}
}

func TestRoundTrip_Float32(t *testing.T) {
	values := []float64{0, 1.5, -2.25, 1 << 20, float64(float32(math.Pi)), math.Inf(-1)}

	data, err := Float32{}.Encode(values)
	require.NoError(t, err)
	assert.Len(t, data, len(values)*4)

	got, err := Float32{}.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, bits(values), bits(got))
}

func TestFloat32_NotRepresentable(t *testing.T) {
	_, err := Float32{}.Encode([]float64{1, math.MaxFloat64})
	require.ErrorIs(t, err, ErrNotRepresentable)
}

func TestFloat64_WireFormat(t *testing.T) {
	data, err := Float64{}.Encode([]float64{1, -2})
	require.NoError(t, err)
	require.Len(t, data, 16)

	assert.Equal(t, math.Float64bits(1), binary.LittleEndian.Uint64(data[0:]))
	assert.Equal(t, math.Float64bits(-2), binary.LittleEndian.Uint64(data[8:]))
}

func TestFloat64_Decode(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		got, err := Float64{}.Decode(nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("NotMultipleOfWidth", func(t *testing.T) {
		for _, n := range []int{1, 7, 9, 15} {
			_, err := Float64{}.Decode(make([]byte, n))
			require.ErrorIs(t, err, ErrCorruptPayload, "length %d", n)

			var cpe *CorruptPayloadError
			require.True(t, errors.As(err, &cpe))
			assert.Equal(t, "float64", cpe.Codec)
			assert.Equal(t, n, cpe.Length)
		}
	})

	t.Run("DoesNotAliasInput", func(t *testing.T) {
		data := MustEncode(Float64{}, []float64{1, 2})
		got, err := Float64{}.Decode(data)
		require.NoError(t, err)

		data[0] = 0xff
		assert.Equal(t, []float64{1, 2}, got)
	})
}

func TestFloat32_Decode_NotMultipleOfWidth(t *testing.T) {
	_, err := Float32{}.Decode(make([]byte, 7))
	require.ErrorIs(t, err, ErrCorruptPayload)
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	c, ok := ByName("")
	require.True(t, ok)
	assert.Equal(t, "float64", c.Name())

	_, ok = ByName("pickle")
	assert.False(t, ok)
}

func TestMustEncode_DefaultCodec(t *testing.T) {
	assert.Len(t, MustEncode(nil, []float64{1, 2, 3}), 24)
}

func TestCorruptPayloadError_Message(t *testing.T) {
	err := &CorruptPayloadError{Codec: "float64", Length: 7, Reason: "length is not a multiple of 8"}
	assert.Equal(t, "float64 codec: corrupt payload of 7 bytes: length is not a multiple of 8", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

func BenchmarkFloat64_Decode(b *testing.B) {
	values := make([]float64, 8000*60)
	for i := range values {
		values[i] = float64(i)
	}
	data := MustEncode(Float64{}, values)

	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	for b.Loop() {
		if _, err := (Float64{}).Decode(data); err != nil {
			b.Fatal(err)
		}
	}
}
