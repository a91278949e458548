// Package codec compresses model payloads. Blocks carry a small header
// so a stored blob can be decoded without knowing how it was written;
// streams use the standard zstd and lz4 frame formats so files stay
// readable by the command line tools.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// Type identifies a compression algorithm.
type Type uint8

const (
	None Type = 0
	LZ4  Type = 1
	Zstd Type = 2
)

// String returns the config name of the codec.
func (t Type) String() string {
	switch t {
	case None:
		return types.CompressionNone
	case LZ4:
		return types.CompressionLZ4
	case Zstd:
		return types.CompressionZstd
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Parse maps a config name to a codec. The empty name selects zstd.
func Parse(name string) (Type, error) {
	switch name {
	case "", types.CompressionZstd:
		return Zstd, nil
	case types.CompressionLZ4:
		return LZ4, nil
	case types.CompressionNone:
		return None, nil
	}
	return None, fmt.Errorf("%w: %q", types.ErrCompressionUnknown, name)
}

// Block errors.
var (
	ErrShortBlock    = errors.New("block too small for header")
	ErrSizeMismatch  = errors.New("decompressed size mismatch")
	ErrBlockTooLarge = errors.New("block exceeds maximum size")
)

// MaxBlockSize bounds the uncompressed size of one block.
const MaxBlockSize = 1 << 30

// lz4MaxRatio is the largest expansion an lz4 block can encode.
const lz4MaxRatio = 255

// zstdPrealloc bounds the output buffer reserved before zstd decoding
// as a multiple of the packed size; the decoder grows it past that.
const zstdPrealloc = 16

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxBlockSize))
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Block layout: [Type uint8][UncompressedSize uint32][CompressedSize uint32][Data...]
// A CompressedSize of 0 means the data is stored as is.
const headerSize = 9

// Compress encodes data as one block. Data that does not shrink below
// 90% of its size is stored uncompressed.
func Compress(data []byte, t Type) ([]byte, error) {
	if len(data) > MaxBlockSize {
		return nil, fmt.Errorf("compress: %w: %d bytes", ErrBlockTooLarge, len(data))
	}
	var packed []byte
	var err error
	switch t {
	case None:
	case LZ4:
		packed, err = compressLZ4(data)
	case Zstd:
		packed = compressZstd(data)
	default:
		return nil, fmt.Errorf("compress: %w: %s", types.ErrCompressionUnknown, t)
	}
	if err != nil {
		return nil, fmt.Errorf("compress %s: %w", t, err)
	}

	stored := len(packed) == 0 || float64(len(packed)) > float64(len(data))*0.9
	body := packed
	if stored {
		body = data
	}
	out := make([]byte, headerSize+len(body))
	out[0] = byte(t)
	binary.LittleEndian.PutUint32(out[1:], uint32(len(data)))
	if !stored {
		binary.LittleEndian.PutUint32(out[5:], uint32(len(packed)))
	}
	copy(out[headerSize:], body)
	return out, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, buf, nil)
	if err != nil {
		return nil, err
	}
	// zero means incompressible
	return buf[:n], nil
}

func compressZstd(data []byte) []byte {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)
	return enc.EncodeAll(data, nil)
}

// Decompress decodes a block written by Compress.
func Decompress(block []byte) ([]byte, error) {
	if len(block) < headerSize {
		return nil, ErrShortBlock
	}
	t := Type(block[0])
	size := uint64(binary.LittleEndian.Uint32(block[1:]))
	packedSize := uint64(binary.LittleEndian.Uint32(block[5:]))
	if size > MaxBlockSize {
		return nil, fmt.Errorf("decompress: %w: %d bytes", ErrBlockTooLarge, size)
	}

	if packedSize == 0 {
		if uint64(len(block)) < headerSize+size {
			return nil, fmt.Errorf("decompress: %w", ErrShortBlock)
		}
		out := make([]byte, size)
		copy(out, block[headerSize:headerSize+size])
		return out, nil
	}
	if uint64(len(block)) < headerSize+packedSize {
		return nil, fmt.Errorf("decompress: %w", ErrShortBlock)
	}
	packed := block[headerSize : headerSize+packedSize]

	switch t {
	case LZ4:
		if size > packedSize*lz4MaxRatio {
			return nil, fmt.Errorf("decompress lz4: %w", ErrSizeMismatch)
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(packed, out)
		if err != nil {
			return nil, fmt.Errorf("decompress lz4: %w", err)
		}
		if uint64(n) != size {
			return nil, ErrSizeMismatch
		}
		return out, nil
	case Zstd:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)
		out := make([]byte, 0, min(size, packedSize*zstdPrealloc))
		decoded, err := dec.DecodeAll(packed, out)
		if err != nil {
			return nil, fmt.Errorf("decompress zstd: %w", err)
		}
		if uint64(len(decoded)) != size {
			return nil, ErrSizeMismatch
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("decompress: %w: %s", types.ErrCompressionUnknown, t)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewWriter wraps w in a streaming compressor. Close flushes the frame
// but does not close w.
func NewWriter(w io.Writer, t Type) (io.WriteCloser, error) {
	switch t {
	case None:
		return nopWriteCloser{w}, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("new zstd writer: %w", err)
		}
		return enc, nil
	}
	return nil, fmt.Errorf("new writer: %w: %s", types.ErrCompressionUnknown, t)
}

type zstdReadCloser struct{ *zstd.Decoder }

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// NewReader wraps r in a streaming decompressor. Close releases decoder
// resources but does not close r.
func NewReader(r io.Reader, t Type) (io.ReadCloser, error) {
	switch t {
	case None:
		return io.NopCloser(r), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("new zstd reader: %w", err)
		}
		return zstdReadCloser{dec}, nil
	}
	return nil, fmt.Errorf("new reader: %w: %s", types.ErrCompressionUnknown, t)
}
