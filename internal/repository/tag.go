package repository

import (
	"context"

	"docproc/internal/model"
)

// TagRepository defines data access for tags and document-tag associations.
type TagRepository interface {
	// GetOrCreate inserts a tag under its canonical name or returns the
	// existing row. It relies on the unique constraint plus a conflict-safe
	// upsert, so concurrent calls with the same name never create duplicates.
	GetOrCreate(ctx context.Context, name, displayName string) (*model.Tag, error)

	// ListAll returns every tag ordered by canonical name.
	ListAll(ctx context.Context) ([]model.Tag, error)

	// ListForDocuments bulk-loads the tags attached to the given documents in
	// a single query, keyed by document ID. Documents without tags are absent
	// from the map.
	ListForDocuments(ctx context.Context, documentIDs []string) (map[string][]model.Tag, error)

	// Attach links a tag to a document. Attaching an already-linked pair is a
	// no-op, not an error.
	Attach(ctx context.Context, documentID, tagID string) error

	// Detach removes the association. Returns true when a row was deleted.
	Detach(ctx context.Context, documentID, tagID string) (bool, error)
}
