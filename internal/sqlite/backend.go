// Package sqlite implements the local model store. Each saved model is one
// row holding a compressed JSON payload plus the entity counts shown by
// List.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/geokernel/internal/codec"
	"github.com/mesh-intelligence/geokernel/internal/paths"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// Backend implements types.ModelStore on a SQLite file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	codec    codec.Type
	db       *sql.DB
}

var _ types.ModelStore = (*Backend)(nil)

// NewBackend creates a detached backend. Call Attach before use.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens models.db under config.DataDir, creating the directory
// and the schema when they do not exist.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	ct, err := codec.Parse(config.Compression)
	if err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, paths.StoreFile))
	if err != nil {
		return err
	}
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.codec = ct
	b.attached = true
	return nil
}

// Detach closes the database. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// generateUUID generates a UUID v7 so ids sort by creation time.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Save compresses the payload with the configured codec and stores it
// under a new id.
func (b *Backend) Save(name string, data types.ModelData) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encoding model: %w", err)
	}
	counts, err := json.Marshal(Counts(data))
	if err != nil {
		return "", fmt.Errorf("encoding counts: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return "", types.ErrStoreDetached
	}

	blob, err := codec.Compress(raw, b.codec)
	if err != nil {
		return "", err
	}
	id := generateUUID()
	now := time.Now().UTC().Format(timeLayout)
	_, err = b.db.Exec(
		`INSERT INTO models (model_id, name, codec, size, counts, payload, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, b.codec.String(), len(blob), string(counts), blob, now)
	if err != nil {
		return "", fmt.Errorf("inserting model: %w", err)
	}
	return id, nil
}

// Load returns the payload stored under id.
func (b *Backend) Load(id string) (types.ModelData, error) {
	var d types.ModelData

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return d, types.ErrStoreDetached
	}

	var blob []byte
	err := b.db.QueryRow(`SELECT payload FROM models WHERE model_id = ?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return d, fmt.Errorf("%w: %s", types.ErrModelNotFound, id)
	}
	if err != nil {
		return d, fmt.Errorf("querying model: %w", err)
	}
	raw, err := codec.Decompress(blob)
	if err != nil {
		return d, fmt.Errorf("model %s: %w", id, err)
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("model %s: %w: %v", id, types.ErrInvalidPayload, err)
	}
	return d, nil
}

// List returns every stored model, newest first.
func (b *Backend) List() ([]types.ModelInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.Query(
		`SELECT model_id, name, codec, size, counts, created_at FROM models ORDER BY created_at DESC, model_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying models: %w", err)
	}
	defer rows.Close()

	var out []types.ModelInfo
	for rows.Next() {
		var (
			info    types.ModelInfo
			counts  string
			created string
		)
		if err := rows.Scan(&info.ID, &info.Name, &info.Codec, &info.Size, &counts, &created); err != nil {
			return nil, fmt.Errorf("scanning model: %w", err)
		}
		if err := json.Unmarshal([]byte(counts), &info.Counts); err != nil {
			return nil, fmt.Errorf("model %s counts: %w", info.ID, err)
		}
		info.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("model %s created_at: %w", info.ID, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes the model stored under id.
func (b *Backend) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	res, err := b.db.Exec(`DELETE FROM models WHERE model_id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting model: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", types.ErrModelNotFound, id)
	}
	return nil
}

// Counts returns the number of live entities per top-level kind of a
// payload without loading it into a model.
func Counts(d types.ModelData) map[types.EntType]int {
	g := d.Geometry
	live := func(refs []types.Ref) int {
		n := 0
		for _, r := range refs {
			if !r.IsNull() {
				n++
			}
		}
		return n
	}
	colls := 0
	for _, c := range g.Colls {
		if c != nil {
			colls++
		}
	}
	return map[types.EntType]int{
		types.Posi:  live(g.PosisTs),
		types.Point: live(g.Points),
		types.Pline: live(g.Plines),
		types.Pgon:  live(g.Pgons),
		types.Coll:  colls,
	}
}
