package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"docproc/internal/model"
	"docproc/internal/repository"
	"docproc/internal/storage"
)

const (
	// DefaultListLimit applies when the client does not supply a limit.
	DefaultListLimit = 100
	// MaxListLimit is the server-side ceiling on one page of results.
	MaxListLimit = 200
	// maxSearchResults bounds one search response.
	maxSearchResults = 50
	// snippetRadius is the number of runes kept on each side of a match.
	snippetRadius = 60

	allowedExtension = ".pdf"
)

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload validates the file, writes it under a generated collision-proof
	// name, records a pending document, and queues extraction. The returned
	// document always has status pending; processing is asynchronous relative
	// to the call.
	Upload(ctx context.Context, r io.Reader, originalFilename string, size int64) (*model.Document, error)

	// List returns documents newest-first with tags eager-loaded, optionally
	// filtered to those carrying the named tag (case-insensitive).
	List(ctx context.Context, skip, limit int, tag string) (*DocumentListResult, error)

	// Get returns the full document including extracted content and tags.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Delete removes the document row (associations cascade) and its stored
	// file. Fails with ErrNotFound when the id does not exist.
	Delete(ctx context.Context, id string) error

	// Search returns documents whose content contains query as a
	// case-insensitive substring, with a snippet around the first match.
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store     storage.Storage
	docs      repository.DocumentRepository
	tags      repository.TagRepository
	queue     ProcessQueue
	maxUpload int64
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, docs repository.DocumentRepository, tags repository.TagRepository, queue ProcessQueue, maxUpload int64) DocumentService {
	return &documentService{
		store:     store,
		docs:      docs,
		tags:      tags,
		queue:     queue,
		maxUpload: maxUpload,
	}
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, originalFilename string, size int64) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}

	safeName, err := sanitizeFilename(originalFilename)
	if err != nil {
		return nil, err
	}
	if strings.ToLower(filepath.Ext(safeName)) != allowedExtension {
		return nil, validationErr("only PDF files are allowed")
	}
	if size <= 0 {
		return nil, validationErr("file is empty")
	}
	if size > s.maxUpload {
		return nil, fmt.Errorf("%w (%d bytes, max %d)", ErrFileTooLarge, size, s.maxUpload)
	}

	// The stored name is never the user-supplied one; a UUID prefix makes
	// concurrent uploads collision-proof.
	storedName := uuid.NewString() + allowedExtension

	// Cap the copy one byte past the ceiling so a lying Content-Length cannot
	// sneak an oversized body past validation.
	objInfo, err := s.store.Put(ctx, storedName, io.LimitReader(r, s.maxUpload+1), storage.PutObjectOptions{
		Size:        size,
		ContentType: "application/pdf",
		Metadata: map[string]string{
			"original-filename": safeName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if objInfo.Size > s.maxUpload {
		if delErr := s.store.Delete(ctx, storedName); delErr != nil {
			log.Printf("failed to remove oversized upload %s: %v", storedName, delErr)
		}
		return nil, ErrFileTooLarge
	}

	doc := &model.Document{
		ID:               uuid.NewString(),
		OriginalFilename: safeName,
		StoredFilename:   storedName,
		Size:             objInfo.Size,
		Status:           model.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the stored file so a DB failure leaves no orphan.
		if delErr := s.store.Delete(ctx, storedName); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	stored.Tags = []model.Tag{}

	s.queue.Enqueue(stored.ID, stored.StoredFilename)
	return stored, nil
}

func (s *documentService) List(ctx context.Context, skip, limit int, tag string) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if skip < 0 {
		skip = 0
	}

	pq := repository.PageQuery{
		Limit:  limit,
		Offset: skip,
		Tag:    strings.ToLower(strings.TrimSpace(tag)),
	}
	res, err := s.docs.List(ctx, pq)
	if err != nil {
		return nil, err
	}

	if err := s.attachTagsToAll(ctx, res.Items); err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// attachTagsToAll bulk-loads tags for a batch of documents with a single
// query, independent of batch size.
func (s *documentService) attachTagsToAll(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}

	byDoc, err := s.tags.ListForDocuments(ctx, ids)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	for i := range docs {
		if t, ok := byDoc[docs[i].ID]; ok {
			docs[i].Tags = t
		} else {
			docs[i].Tags = []model.Tag{}
		}
	}
	return nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	byDoc, err := s.tags.ListForDocuments(ctx, []string{doc.ID})
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	doc.Tags = byDoc[doc.ID]
	if doc.Tags == nil {
		doc.Tags = []model.Tag{}
	}
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrNotFound
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	deleted, err := s.docs.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	// Row and associations are gone; the file removal is best-effort.
	if err := s.store.Delete(ctx, doc.StoredFilename); err != nil {
		log.Printf("failed to remove stored file %s for deleted document %s: %v", doc.StoredFilename, id, err)
	}
	return nil
}

func (s *documentService) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, validationErr("search query is required")
	}

	docs, err := s.docs.Search(ctx, q, maxSearchResults)
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(docs))
	for _, d := range docs {
		content := ""
		if d.Content != nil {
			content = *d.Content
		}
		results = append(results, model.SearchResult{
			ID:       d.ID,
			Filename: d.OriginalFilename,
			Snippet:  snippet(content, q),
		})
	}
	return results, nil
}

// sanitizeFilename validates a user-supplied name. Traversal sequences and
// path separators are rejected outright rather than stripped, so a hostile
// name never silently maps onto a different record.
func sanitizeFilename(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", validationErr("filename is required")
	}
	if strings.Contains(trimmed, "..") || strings.ContainsAny(trimmed, `/\`) {
		return "", validationErr("invalid filename")
	}
	return trimmed, nil
}

// snippet returns the text surrounding the first case-insensitive occurrence
// of q in content, ellipsized on truncated sides. Matching happens entirely in
// rune space: lowercasing can change a character's byte length (Ⱥ is two
// bytes, ⱥ is three), so a byte offset into the lowered string cannot be used
// to slice the original.
func snippet(content, q string) string {
	if content == "" {
		return ""
	}

	runes := []rune(content)
	lowered := make([]rune, len(runes))
	for i, r := range runes {
		lowered[i] = unicode.ToLower(r)
	}
	needle := []rune(strings.ToLower(q))

	start := runeIndex(lowered, needle)
	if start < 0 {
		// Content matched in the database but not here (normalization edge);
		// fall back to the head of the document.
		start = 0
	}
	end := start + len(needle)
	if end > len(runes) {
		end = len(runes)
	}

	from := start - snippetRadius
	if from < 0 {
		from = 0
	}
	to := end + snippetRadius
	if to > len(runes) {
		to = len(runes)
	}

	out := strings.TrimSpace(string(runes[from:to]))
	if from > 0 {
		out = "..." + out
	}
	if to < len(runes) {
		out = out + "..."
	}
	return out
}

// runeIndex reports the index of the first occurrence of needle in haystack,
// or -1 when needle is empty or absent.
func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, r := range needle {
			if haystack[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
