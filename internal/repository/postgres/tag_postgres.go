package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"docproc/internal/model"
	"docproc/internal/repository"
)

// newTagID generates the candidate primary key for an upserted tag. On
// conflict the generated ID is discarded and the existing row's ID returned.
var newTagID = uuid.NewString

// TagPostgres is a PostgreSQL implementation of repository.TagRepository.
type TagPostgres struct {
	db *sql.DB
}

// NewTagPostgres creates a new TagPostgres repository.
func NewTagPostgres(db *sql.DB) *TagPostgres {
	return &TagPostgres{db: db}
}

var _ repository.TagRepository = (*TagPostgres)(nil)

// GetOrCreate upserts a tag by its canonical name. The DO UPDATE arm is a
// no-op self-assignment so the statement returns the existing row on
// conflict; check-then-insert would race under concurrent attaches.
func (r *TagPostgres) GetOrCreate(ctx context.Context, name, displayName string) (*model.Tag, error) {
	const q = `
		INSERT INTO tags (id, name, display_name, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, display_name, created_at
	`
	row := r.db.QueryRowContext(ctx, q, newTagID(), name, displayName)
	var t model.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.DisplayName, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListAll returns every tag ordered by canonical name.
func (r *TagPostgres) ListAll(ctx context.Context) ([]model.Tag, error) {
	const q = `
		SELECT id, name, display_name, created_at
		FROM tags
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.DisplayName, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListForDocuments loads tags for a batch of documents with one query,
// regardless of batch size.
func (r *TagPostgres) ListForDocuments(ctx context.Context, documentIDs []string) (map[string][]model.Tag, error) {
	out := make(map[string][]model.Tag, len(documentIDs))
	if len(documentIDs) == 0 {
		return out, nil
	}

	q := fmt.Sprintf(`
		SELECT dt.document_id, t.id, t.name, t.display_name, t.created_at
		FROM document_tags dt
		JOIN tags t ON t.id = dt.tag_id
		WHERE dt.document_id IN (%s)
		ORDER BY t.name
	`, placeholders(1, len(documentIDs)))

	args := make([]any, len(documentIDs))
	for i, id := range documentIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var docID string
		var t model.Tag
		if err := rows.Scan(&docID, &t.ID, &t.Name, &t.DisplayName, &t.CreatedAt); err != nil {
			return nil, err
		}
		out[docID] = append(out[docID], t)
	}
	return out, rows.Err()
}

// Attach links a tag to a document; re-attaching an existing pair is a no-op.
func (r *TagPostgres) Attach(ctx context.Context, documentID, tagID string) error {
	const q = `
		INSERT INTO document_tags (document_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, documentID, tagID)
	return err
}

// Detach removes the association and reports whether a row was deleted.
func (r *TagPostgres) Detach(ctx context.Context, documentID, tagID string) (bool, error) {
	const q = `DELETE FROM document_tags WHERE document_id = $1 AND tag_id = $2`
	res, err := r.db.ExecContext(ctx, q, documentID, tagID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
