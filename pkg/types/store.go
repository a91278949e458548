package types

import (
	"errors"
	"time"
)

// ModelStore persists whole model payloads under generated ids.
// Callers attach to a backend, save and load models, and detach when done.
type ModelStore interface {
	// Attach opens the backend described by config, creating DataDir when
	// it does not exist. Returns ErrAlreadyAttached on a second call.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error

	// Save stores the payload under a new id and returns the id.
	Save(name string, data ModelData) (string, error)

	// Load returns the payload stored under id, or ErrModelNotFound.
	Load(id string) (ModelData, error)

	// List returns summaries of every stored model, newest first.
	List() ([]ModelInfo, error)

	// Delete removes the model stored under id, or returns ErrModelNotFound.
	Delete(id string) error
}

// ModelInfo summarises one stored model.
type ModelInfo struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Codec     string          `json:"codec"`
	Size      int             `json:"size"`
	Counts    map[EntType]int `json:"counts"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("model store is detached")
	ErrAlreadyAttached = errors.New("model store is already attached")
	ErrModelNotFound   = errors.New("model not found")
)
