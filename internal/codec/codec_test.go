package codec

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		want    Type
		wantErr error
	}{
		{"", Zstd, nil},
		{"zstd", Zstd, nil},
		{"lz4", LZ4, nil},
		{"none", None, nil},
		{"gzip", None, types.ErrCompressionUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.name)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte(`{"posis_i":[0,1,2],"posis_ts":[65536,65536,65536]}`), 200)
	for _, ct := range []Type{None, LZ4, Zstd} {
		t.Run(ct.String(), func(t *testing.T) {
			block, err := Compress(data, ct)
			require.NoError(t, err)
			if ct != None {
				assert.Less(t, len(block), len(data)/2)
			}
			got, err := Decompress(block)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestCompressIncompressibleIsStored(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i * 17 % 256)
	}
	block, err := Compress(data, LZ4)
	require.NoError(t, err)
	got, err := Decompress(block)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCompressEmpty(t *testing.T) {
	block, err := Compress(nil, Zstd)
	require.NoError(t, err)
	got, err := Decompress(block)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecompressErrors(t *testing.T) {
	_, err := Decompress([]byte{2, 0})
	assert.ErrorIs(t, err, ErrShortBlock)

	block, err := Compress(bytes.Repeat([]byte("abc"), 500), Zstd)
	require.NoError(t, err)
	_, err = Decompress(block[:len(block)-3])
	assert.ErrorIs(t, err, ErrShortBlock)

	_, err = Compress([]byte("x"), Type(9))
	assert.ErrorIs(t, err, types.ErrCompressionUnknown)
}

func TestDecompressRejectsCorruptSize(t *testing.T) {
	header := func(ct Type, size, packed uint32) []byte {
		b := make([]byte, headerSize)
		b[0] = byte(ct)
		binary.LittleEndian.PutUint32(b[1:], size)
		binary.LittleEndian.PutUint32(b[5:], packed)
		return b
	}

	_, err := Decompress(header(None, 0xFFFFFFFF, 0))
	assert.ErrorIs(t, err, ErrBlockTooLarge)

	_, err = Decompress(header(None, MaxBlockSize, 0))
	assert.ErrorIs(t, err, ErrShortBlock)

	data := bytes.Repeat([]byte("abc"), 500)
	for _, ct := range []Type{LZ4, Zstd} {
		t.Run(ct.String(), func(t *testing.T) {
			block, err := Compress(data, ct)
			require.NoError(t, err)
			packed := binary.LittleEndian.Uint32(block[5:])
			require.NotZero(t, packed)

			binary.LittleEndian.PutUint32(block[1:], MaxBlockSize)
			_, err = Decompress(block)
			assert.Error(t, err)

			binary.LittleEndian.PutUint32(block[1:], uint32(len(data))+1)
			_, err = Decompress(block)
			assert.ErrorIs(t, err, ErrSizeMismatch)
		})
	}
}

func TestStreamRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("wire edge vert posi "), 300)
	for _, ct := range []Type{None, LZ4, Zstd} {
		t.Run(ct.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(&buf, ct)
			require.NoError(t, err)
			_, err = w.Write(data)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := NewReader(&buf, ct)
			require.NoError(t, err)
			defer r.Close()
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}
