package sqlite

// Schema DDL. The database is the source of truth, so statements are
// idempotent and run on every Attach.
const (
	createModels = `CREATE TABLE IF NOT EXISTS models (
    model_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    codec TEXT NOT NULL,
    size INTEGER NOT NULL,
    counts TEXT NOT NULL,
    payload BLOB NOT NULL,
    created_at TEXT NOT NULL
);`

	idxModelsCreated = `CREATE INDEX IF NOT EXISTS idx_models_created ON models(created_at);`
	idxModelsName    = `CREATE INDEX IF NOT EXISTS idx_models_name ON models(name);`
)

var schemaDDL = []string{
	createModels,
	idxModelsCreated,
	idxModelsName,
}
