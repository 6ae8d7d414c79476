// Package modelstore provides storage backends for fitted pipeline models.
//
// A model document is a small immutable blob (the persistence envelope of a
// serialized extractor tree). Stores only need whole-document semantics:
// Put, Get, Delete, List. Local-filesystem and in-memory backends live here;
// S3, DynamoDB-registry and MinIO backends live in the subpackages.
package modelstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a model document does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("modelstore: model not found")

// Store is an abstraction for storing immutable model documents.
type Store interface {
	// Put writes a model document atomically, replacing any existing one.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads a whole model document.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes a model document. Deleting a missing document is not an
	// error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all model documents with the given prefix,
	// sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
