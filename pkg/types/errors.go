package types

import (
	"errors"
	"fmt"
)

// Kernel errors.
var (
	ErrMergeConflict    = errors.New("merge conflict")
	ErrTimestampCorrupt = errors.New("timestamp table does not match entity table")
	ErrDataTypeMismatch = errors.New("attribute data type mismatch")
	ErrAttribNotFound   = errors.New("attribute not found")
	ErrAttribExists     = errors.New("attribute already exists")
	ErrEntityNotFound   = errors.New("entity not found")
	ErrCollCycle        = errors.New("collection parent would create a cycle")
	ErrInvalidPayload   = errors.New("invalid model payload")
	ErrUnknownEntType   = errors.New("unknown entity type")
	ErrMaterialConflict = errors.New("a non-basic material with this name already exists")
)

// ConflictError reports an entity that was edited independently in both
// models of a merge.
type ConflictError struct {
	Kind  EntType
	Index int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict merging %s: entity %d", e.Kind.Plural(), e.Index)
}

// Unwrap lets errors.Is match ErrMergeConflict.
func (e *ConflictError) Unwrap() error {
	return ErrMergeConflict
}

// EntityError attaches an entity reference to a failure.
type EntityError struct {
	Kind  EntType
	Index int
	Err   error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s %d: %v", e.Kind.Title(), e.Index, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}
