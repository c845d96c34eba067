package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docproc/internal/model"
	"docproc/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, original_filename, stored_filename, size, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, original_filename, stored_filename, size, status, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.OriginalFilename,
		doc.StoredFilename,
		doc.Size,
		doc.Status,
		doc.CreatedAt,
	)
	var out model.Document
	if err := row.Scan(
		&out.ID,
		&out.OriginalFilename,
		&out.StoredFilename,
		&out.Size,
		&out.Status,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single document by its ID, including extracted content.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT id, original_filename, stored_filename, size, page_count, content,
		       status, error_detail, created_at, processed_at
		FROM documents
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.OriginalFilename,
		&d.StoredFilename,
		&d.Size,
		&d.PageCount,
		&d.Content,
		&d.Status,
		&d.ErrorDetail,
		&d.CreatedAt,
		&d.ProcessedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
// The content column is deliberately excluded from list projections.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	var (
		total int
		rows  *sql.Rows
		err   error
	)

	if pq.Tag != "" {
		const qCount = `
			SELECT COUNT(*) FROM documents d
			WHERE EXISTS (
				SELECT 1 FROM document_tags dt
				JOIN tags t ON t.id = dt.tag_id
				WHERE dt.document_id = d.id AND t.name = $1
			)
		`
		if err = r.db.QueryRowContext(ctx, qCount, pq.Tag).Scan(&total); err != nil {
			return nil, err
		}

		const qList = `
			SELECT d.id, d.original_filename, d.stored_filename, d.size, d.page_count,
			       d.status, d.error_detail, d.created_at, d.processed_at
			FROM documents d
			WHERE EXISTS (
				SELECT 1 FROM document_tags dt
				JOIN tags t ON t.id = dt.tag_id
				WHERE dt.document_id = d.id AND t.name = $1
			)
			ORDER BY d.created_at DESC, d.id DESC
			LIMIT $2 OFFSET $3
		`
		rows, err = r.db.QueryContext(ctx, qList, pq.Tag, pq.Limit, pq.Offset)
	} else {
		const qCount = `SELECT COUNT(*) FROM documents`
		if err = r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
			return nil, err
		}

		const qList = `
			SELECT d.id, d.original_filename, d.stored_filename, d.size, d.page_count,
			       d.status, d.error_detail, d.created_at, d.processed_at
			FROM documents d
			ORDER BY d.created_at DESC, d.id DESC
			LIMIT $1 OFFSET $2
		`
		rows, err = r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(
			&d.ID,
			&d.OriginalFilename,
			&d.StoredFilename,
			&d.Size,
			&d.PageCount,
			&d.Status,
			&d.ErrorDetail,
			&d.CreatedAt,
			&d.ProcessedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a document by ID and reports whether a row was deleted.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkProcessed writes the terminal processed state for a pending document.
func (r *DocumentPostgres) MarkProcessed(ctx context.Context, id, content string, pageCount int) error {
	const q = `
		UPDATE documents
		SET content = $2, page_count = $3, status = $4, processed_at = now()
		WHERE id = $1 AND status = $5
	`
	_, err := r.db.ExecContext(ctx, q, id, content, pageCount, model.StatusProcessed, model.StatusPending)
	return err
}

// MarkFailed writes the terminal failed state for a pending document.
func (r *DocumentPostgres) MarkFailed(ctx context.Context, id, detail string) error {
	const q = `
		UPDATE documents
		SET status = $2, error_detail = $3, processed_at = now()
		WHERE id = $1 AND status = $4
	`
	_, err := r.db.ExecContext(ctx, q, id, model.StatusFailed, detail, model.StatusPending)
	return err
}

// Search matches query as a case-insensitive substring of content. The user
// input is bound as a single parameter with ILIKE metacharacters escaped, so
// it can never alter the statement or act as a wildcard.
func (r *DocumentPostgres) Search(ctx context.Context, query string, limit int) ([]model.Document, error) {
	const q = `
		SELECT id, original_filename, content
		FROM documents
		WHERE content ILIKE $1 ESCAPE '\'
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	pattern := "%" + escapeLike(query) + "%"

	rows, err := r.db.QueryContext(ctx, q, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.OriginalFilename, &d.Content); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// escapeLike neutralizes LIKE/ILIKE pattern metacharacters in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// placeholders renders $start..$start+n-1 for dynamic IN clauses.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}
