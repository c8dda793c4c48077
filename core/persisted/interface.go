// Package persisted keeps rendered operations in a registry addressed by the
// SHA-256 hash of their text, the identifier automatic persisted queries use.
// Storage is pluggable through Repository; the sqlite package provides the
// default implementation.
package persisted

import (
	"context"
	"errors"
	"time"

	"github.com/asaidimu/go-gqlbuilder/core/query"
)

var (
	// ErrNotFound is returned when no record matches a hash or name.
	ErrNotFound = errors.New("persisted operation not found")
	// ErrInvalidDocument is returned when an operation does not render to a
	// valid document or its kind does not match the requested one.
	ErrInvalidDocument = errors.New("invalid operation document")
)

// Record is a stored operation.
type Record struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Kind      query.OperationKind `json:"kind"`
	Hash      string              `json:"hash"`
	Document  string              `json:"document"`
	CreatedAt time.Time           `json:"createdAt"`
}

// String returns the stored document text, so a record can be wrapped in a
// request envelope like any other renderer.
func (r *Record) String() string {
	if r == nil {
		return ""
	}
	return r.Document
}

// ListOptions narrows a List call. Zero values mean no restriction.
type ListOptions struct {
	Kind   query.OperationKind
	Name   string
	Limit  int
	Offset int
}

// Repository is the storage port of the store.
type Repository interface {
	// EnsureSchema creates the backing storage if it does not exist yet.
	EnsureSchema(ctx context.Context) error
	// Insert stores a new record. Hashes are unique.
	Insert(ctx context.Context, record *Record) error
	// FindByHash returns the record with the given hash or ErrNotFound.
	FindByHash(ctx context.Context, hash string) (*Record, error)
	// FindByName returns the most recently created record with the given
	// name or ErrNotFound.
	FindByName(ctx context.Context, name string) (*Record, error)
	// List returns records ordered by creation time, oldest first.
	List(ctx context.Context, opts ListOptions) ([]*Record, error)
	// Delete removes the record with the given hash or returns ErrNotFound.
	Delete(ctx context.Context, hash string) error
}
