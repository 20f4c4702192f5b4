package repository

import (
	"context"
	"errors"

	"github.com/yashrajoria/lezzetli-admin/models"
)

var (
	// ErrNotFound is the only signal adapters use for a missing record.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable marks transient failures worth retrying: throttling,
	// network faults, server-side timeouts.
	ErrUnavailable = errors.New("store unavailable")
	// ErrUnbuiltQuery is returned for a Query that did not come from
	// BuildQuery or CredentialQuery.
	ErrUnbuiltQuery = errors.New("query was not built by the scope builder")
)

// Store is a schemaless per-collection document store. Adapters exist for
// DynamoDB, MongoDB and memory; none of them offer transactions.
type Store interface {
	// Get returns the document with the given id or ErrNotFound.
	Get(ctx context.Context, collection, id string) (models.Document, error)
	// Query returns every document matching q. Listing always goes through
	// a Query, so every listing is scoped.
	Query(ctx context.Context, q Query) ([]models.Document, error)
	// Add stores doc, assigning an id when it has none, and returns the id.
	// Adding a document whose id already exists replaces it.
	Add(ctx context.Context, collection string, doc models.Document) (string, error)
	// Update sets the given top-level fields. It returns ErrNotFound when
	// the document does not exist.
	Update(ctx context.Context, collection, id string, fields models.Document) error
	// Delete removes the document. Deleting a missing document succeeds.
	Delete(ctx context.Context, collection, id string) error
}

// prepare validates q for adapters. skip is true when q can match nothing
// and the adapter should return an empty result without I/O.
func prepare(q Query) (skip bool, err error) {
	if !q.built {
		return false, ErrUnbuiltQuery
	}
	return q.denyAll, nil
}
