// Package modelio reads and writes model files. The extension picks the
// encoding: .gi is plain JSON, .gi.zst and .gi.lz4 are compressed JSON.
// Writes go to a temp file that is synced and renamed into place.
package modelio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/geokernel/internal/codec"
	"github.com/mesh-intelligence/geokernel/pkg/model"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// File extensions.
const (
	ExtJSON = ".gi"
	ExtZstd = ".gi.zst"
	ExtLZ4  = ".gi.lz4"
)

// ErrUnknownExt is returned for paths without a model file extension.
var ErrUnknownExt = errors.New("unknown model file extension")

// CodecFor returns the codec implied by the file name.
func CodecFor(path string) (codec.Type, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ExtZstd):
		return codec.Zstd, nil
	case strings.HasSuffix(name, ExtLZ4):
		return codec.LZ4, nil
	case strings.HasSuffix(name, ExtJSON), strings.HasSuffix(name, ".json"):
		return codec.None, nil
	}
	return codec.None, fmt.Errorf("%w: %s", ErrUnknownExt, path)
}

// Decode reads one payload from r.
func Decode(r io.Reader, t codec.Type) (types.ModelData, error) {
	var d types.ModelData
	zr, err := codec.NewReader(r, t)
	if err != nil {
		return d, err
	}
	defer zr.Close()
	if err := json.NewDecoder(bufio.NewReader(zr)).Decode(&d); err != nil {
		return d, fmt.Errorf("%w: decoding model: %w", types.ErrInvalidPayload, err)
	}
	return d, nil
}

// Encode writes one payload to w.
func Encode(w io.Writer, d types.ModelData, t codec.Type) error {
	zw, err := codec.NewWriter(w, t)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(zw).Encode(d); err != nil {
		zw.Close()
		return fmt.Errorf("encoding model: %w", err)
	}
	return zw.Close()
}

// ReadData reads a payload from a model file.
func ReadData(path string) (types.ModelData, error) {
	t, err := CodecFor(path)
	if err != nil {
		return types.ModelData{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return types.ModelData{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	d, err := Decode(f, t)
	if err != nil {
		return d, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// WriteData atomically writes a payload to a model file.
func WriteData(path string, d types.ModelData) error {
	t, err := CodecFor(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".gi-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(format string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf(format, err)
	}

	w := bufio.NewWriter(tmp)
	if err := Encode(w, d, t); err != nil {
		return fail("writing model: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Load reads a model file into a new model.
func Load(path string, opts ...model.Option) (*model.Model, error) {
	d, err := ReadData(path)
	if err != nil {
		return nil, err
	}
	m := model.New(opts...)
	if err := m.SetData(d); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Save writes m to a model file.
func Save(path string, m *model.Model) error {
	return WriteData(path, m.GetData())
}
