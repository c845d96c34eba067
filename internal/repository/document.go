package repository

import (
	"context"

	"docproc/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations. Tag associations
// are loaded separately through TagRepository so the bulk-join step stays
// explicit in the service layer.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, including extracted content.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a page of documents ordered by creation time descending,
	// optionally restricted to documents carrying the given canonical tag.
	// The content column is not loaded for list views.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Delete removes a document by ID. Returns true when a row was deleted.
	// Tag associations cascade at the schema level.
	Delete(ctx context.Context, id string) (bool, error)

	// MarkProcessed records a successful extraction: content, page count,
	// status transition pending -> processed, and the processing timestamp.
	MarkProcessed(ctx context.Context, id, content string, pageCount int) error

	// MarkFailed records a failed extraction: status transition
	// pending -> failed with an error detail.
	MarkFailed(ctx context.Context, id, detail string) error

	// Search returns up to limit documents whose content contains query as a
	// case-insensitive substring. Only id, original filename, and content are
	// populated. The query is always bound as a parameter, never concatenated.
	Search(ctx context.Context, query string, limit int) ([]model.Document, error)
}
