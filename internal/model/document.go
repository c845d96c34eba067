package model

import "time"

// DocumentStatus tracks where a document is in the ingestion pipeline.
// A document starts as pending and moves exactly once to processed or failed.
type DocumentStatus string

const (
	StatusPending   DocumentStatus = "pending"
	StatusProcessed DocumentStatus = "processed"
	StatusFailed    DocumentStatus = "failed"
)

// Document represents one uploaded PDF file.
// This is a pure domain model with no database-specific dependencies or tags,
// shared across the HTTP, service, and repository layers.
type Document struct {
	ID               string         `json:"id"`
	OriginalFilename string         `json:"filename"`
	StoredFilename   string         `json:"stored_filename"`
	Size             int64          `json:"size"`
	PageCount        *int           `json:"page_count"`
	Content          *string        `json:"content,omitempty"`
	Status           DocumentStatus `json:"status"`
	ErrorDetail      *string        `json:"error_detail,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	ProcessedAt      *time.Time     `json:"processed_at,omitempty"`
	Tags             []Tag          `json:"tags"`
}

// SearchResult is one full-text search hit: the matching document plus a
// short snippet of content surrounding the first match.
type SearchResult struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Snippet  string `json:"snippet"`
}
