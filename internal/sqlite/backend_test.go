package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/geokernel/internal/paths"
	"github.com/mesh-intelligence/geokernel/pkg/model"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

func houseData(t *testing.T) types.ModelData {
	t.Helper()
	m := model.New()
	sq := []int{
		m.AddPosi([3]float64{0, 0, 0}),
		m.AddPosi([3]float64{4, 0, 0}),
		m.AddPosi([3]float64{4, 4, 0}),
		m.AddPosi([3]float64{0, 4, 0}),
	}
	pg := m.AddPgon(sq)
	pt := m.Geom().AddPoint(m.AddPosi([3]float64{2, 2, 3}))
	m.Geom().AddColl(-1, []int{pt}, nil, []int{pg})
	require.NoError(t, m.SetAttribVal(types.Pgon, pg, "name", "floor"))
	return m.GetData()
}

func attached(t *testing.T, compression string) *Backend {
	t.Helper()
	b := NewBackend()
	cfg := types.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Compression = compression
	require.NoError(t, b.Attach(cfg))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackendAttach(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend()
	cfg := types.Config{DataDir: filepath.Join(dir, "nested")}

	require.NoError(t, b.Attach(cfg))
	_, err := os.Stat(filepath.Join(dir, "nested", paths.StoreFile))
	assert.NoError(t, err)
	assert.ErrorIs(t, b.Attach(cfg), types.ErrAlreadyAttached)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "Detach is idempotent")
}

func TestBackendAttachRejectsBadConfig(t *testing.T) {
	b := NewBackend()
	err := b.Attach(types.Config{DataDir: t.TempDir(), Compression: "gzip"})
	assert.ErrorIs(t, err, types.ErrCompressionUnknown)
}

func TestBackendDetached(t *testing.T) {
	b := NewBackend()
	_, err := b.Save("x", types.ModelData{})
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.Load("x")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.List()
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	assert.ErrorIs(t, b.Delete("x"), types.ErrStoreDetached)
}

func TestBackendSaveLoad(t *testing.T) {
	d := houseData(t)
	for _, c := range []string{types.CompressionNone, types.CompressionLZ4, types.CompressionZstd} {
		t.Run(c, func(t *testing.T) {
			b := attached(t, c)
			id, err := b.Save("house", d)
			require.NoError(t, err)
			assert.Len(t, id, 36)

			got, err := b.Load(id)
			require.NoError(t, err)
			m := model.New()
			require.NoError(t, m.SetData(got))
			assert.Equal(t, d, m.GetData())
		})
	}
}

func TestBackendLoadMissing(t *testing.T) {
	b := attached(t, "")
	_, err := b.Load("nope")
	assert.ErrorIs(t, err, types.ErrModelNotFound)
	assert.ErrorIs(t, b.Delete("nope"), types.ErrModelNotFound)
}

func TestBackendListAndDelete(t *testing.T) {
	b := attached(t, types.CompressionZstd)
	d := houseData(t)
	first, err := b.Save("first", d)
	require.NoError(t, err)
	second, err := b.Save("second", model.New().GetData())
	require.NoError(t, err)

	infos, err := b.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, second, infos[0].ID, "newest first")
	assert.Equal(t, "first", infos[1].Name)
	assert.Equal(t, "zstd", infos[1].Codec)
	assert.Positive(t, infos[1].Size)
	assert.Equal(t, map[types.EntType]int{
		types.Posi: 5, types.Point: 1, types.Pline: 0, types.Pgon: 1, types.Coll: 1,
	}, infos[1].Counts)
	assert.False(t, infos[1].CreatedAt.IsZero())

	require.NoError(t, b.Delete(first))
	infos, err = b.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, second, infos[0].ID)
}

func TestBackendPersistsAcrossAttach(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.DataDir = t.TempDir()

	b := NewBackend()
	require.NoError(t, b.Attach(cfg))
	id, err := b.Save("kept", houseData(t))
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(cfg))
	defer b2.Detach()
	_, err = b2.Load(id)
	assert.NoError(t, err)
}

func TestCounts(t *testing.T) {
	m := model.New()
	a := m.Geom().AddPoint(m.AddPosi([3]float64{0, 0, 0}))
	m.Geom().AddPoint(m.AddPosi([3]float64{1, 0, 0}))
	m.Geom().DelPoint(a)

	got := Counts(m.GetData())
	assert.Equal(t, 1, got[types.Point])
	assert.Equal(t, 2, got[types.Posi])
}
