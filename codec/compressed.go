package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm identifies the block compression used by a Compressed frame.
type Algorithm uint8

const (
	// AlgorithmNone marks a frame whose payload is stored uncompressed.
	// Encode falls back to it when compression does not shrink the payload.
	AlgorithmNone Algorithm = 0
	// AlgorithmLZ4 is LZ4 block compression (fast, good for hot data).
	AlgorithmLZ4 Algorithm = 1
	// AlgorithmZSTD is a zstd frame (better ratio, good for cold data).
	AlgorithmZSTD Algorithm = 2
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "none"
	case AlgorithmLZ4:
		return "lz4"
	case AlgorithmZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// compressedMagic prefixes every Compressed frame.
var compressedMagic = [4]byte{'M', 'X', 'C', '1'}

// Frame layout:
//
//	[magic 4][algorithm u8][reserved u8][element width u16][count u32][payload...]
const compressedHeaderSize = 12

// MaxDecodedBytes bounds the decoded size of a framed blob. Frames that
// declare more are rejected before any buffer is allocated.
const MaxDecodedBytes = 1 << 30

// Upper bounds on how far a payload of n bytes can expand: an LZ4 block
// reaches about 255:1, a zstd RLE block turns 4 bytes into 128 KiB.
const (
	lz4MaxExpansion  = 255
	zstdMaxExpansion = 32 << 10
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(MaxDecodedBytes))
	return dec
}

// Compressed frames the output of a fixed-width element codec and
// compresses it with LZ4 or zstd.
//
// The header declares the element width and the element count; Decode
// rejects frames whose decompressed size disagrees with the declaration.
type Compressed struct {
	algo  Algorithm
	inner FixedWidth
}

// NewLZ4 returns an LZ4-compressed Float64 codec.
func NewLZ4() *Compressed { return NewCompressed(AlgorithmLZ4, Float64{}) }

// NewZSTD returns a zstd-compressed Float64 codec.
func NewZSTD() *Compressed { return NewCompressed(AlgorithmZSTD, Float64{}) }

// NewCompressed returns a codec that compresses inner's output with algo.
// If inner is nil, Float64 is used.
func NewCompressed(algo Algorithm, inner FixedWidth) *Compressed {
	if inner == nil {
		inner = Float64{}
	}
	return &Compressed{algo: algo, inner: inner}
}

// Name returns the algorithm name ("lz4" or "zstd").
func (c *Compressed) Name() string { return c.algo.String() }

// Algorithm returns the configured compression algorithm.
func (c *Compressed) Algorithm() Algorithm { return c.algo }

// Encode writes a frame header followed by the compressed element bytes.
func (c *Compressed) Encode(values []float64) ([]byte, error) {
	if uint64(len(values)) > math.MaxUint32 {
		return nil, fmt.Errorf("%s codec: vector of %d values exceeds frame limit", c.Name(), len(values))
	}
	raw, err := c.inner.Encode(values)
	if err != nil {
		return nil, err
	}

	algo := c.algo
	var payload []byte
	switch algo {
	case AlgorithmLZ4:
		payload, err = compressLZ4(raw)
	case AlgorithmZSTD:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(raw, nil)
		zstdEncoderPool.Put(enc)
	case AlgorithmNone:
	default:
		return nil, fmt.Errorf("codec: unsupported compression %s", algo)
	}
	if err != nil {
		return nil, err
	}

	// If compression doesn't help, store the raw bytes.
	if payload == nil || len(payload) >= len(raw) {
		algo = AlgorithmNone
		payload = raw
	}

	out := make([]byte, compressedHeaderSize+len(payload))
	copy(out, compressedMagic[:])
	out[4] = byte(algo)
	binary.LittleEndian.PutUint16(out[6:], uint16(c.inner.Width()))
	binary.LittleEndian.PutUint32(out[8:], uint32(len(values)))
	copy(out[compressedHeaderSize:], payload)
	return out, nil
}

// Decode validates the frame header, decompresses the payload and decodes
// the element bytes with the inner codec.
func (c *Compressed) Decode(data []byte) ([]float64, error) {
	name := c.Name()
	if len(data) < compressedHeaderSize {
		return nil, corrupt(name, data, "frame shorter than header", nil)
	}
	if [4]byte(data[:4]) != compressedMagic {
		return nil, corrupt(name, data, "bad frame magic", nil)
	}
	algo := Algorithm(data[4])
	width := int(binary.LittleEndian.Uint16(data[6:]))
	count := int(binary.LittleEndian.Uint32(data[8:]))
	if width != c.inner.Width() {
		return nil, corrupt(name, data, fmt.Sprintf("element width %d, want %d", width, c.inner.Width()), nil)
	}

	payload := data[compressedHeaderSize:]
	size := count * width
	if int64(count)*int64(width) > MaxDecodedBytes {
		return nil, corrupt(name, data, fmt.Sprintf("header declares %d elements, limit is %d bytes", count, MaxDecodedBytes), nil)
	}

	var raw []byte
	switch algo {
	case AlgorithmNone:
		if len(payload) != size {
			return nil, corrupt(name, data, fmt.Sprintf("stored payload is %d bytes, header declares %d", len(payload), size), nil)
		}
		raw = payload
	case AlgorithmLZ4:
		if size > lz4MaxExpansion*len(payload)+16 {
			return nil, corrupt(name, data, fmt.Sprintf("%d payload bytes cannot hold %d decompressed bytes", len(payload), size), nil)
		}
		raw = make([]byte, size)
		n, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return nil, corrupt(name, data, "lz4 block", err)
		}
		if n != size {
			return nil, corrupt(name, data, fmt.Sprintf("decompressed %d bytes, header declares %d", n, size), nil)
		}
	case AlgorithmZSTD:
		var h zstd.Header
		if err := h.Decode(payload); err != nil {
			return nil, corrupt(name, data, "zstd frame header", err)
		}
		if h.HasFCS && h.FrameContentSize != uint64(size) {
			return nil, corrupt(name, data, fmt.Sprintf("zstd frame holds %d bytes, header declares %d", h.FrameContentSize, size), nil)
		}
		if size > zstdMaxExpansion*len(payload) {
			return nil, corrupt(name, data, fmt.Sprintf("%d payload bytes cannot hold %d decompressed bytes", len(payload), size), nil)
		}
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(payload, make([]byte, 0, size))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, corrupt(name, data, "zstd frame", err)
		}
		if len(decoded) != size {
			return nil, corrupt(name, data, fmt.Sprintf("decompressed %d bytes, header declares %d", len(decoded), size), nil)
		}
		raw = decoded
	default:
		return nil, corrupt(name, data, fmt.Sprintf("unknown compression %s", algo), nil)
	}

	return c.inner.Decode(raw)
}

func compressLZ4(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return compressed[:n], nil
}
