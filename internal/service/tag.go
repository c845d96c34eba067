package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"docproc/internal/model"
	"docproc/internal/repository"
)

// TagService defines the use cases for labeling documents.
type TagService interface {
	// AttachTags gets-or-creates each named tag (case-insensitive) and links
	// it to the document, skipping pairs that already exist. Returns the
	// updated document with its tags.
	AttachTags(ctx context.Context, documentID string, names []string) (*model.Document, error)

	// DetachTag removes one association. The tag itself is never deleted,
	// even when this was its last attachment.
	DetachTag(ctx context.Context, documentID, tagID string) error

	// ListTags returns every tag, for building filter UIs.
	ListTags(ctx context.Context) ([]model.Tag, error)
}

type tagService struct {
	docs repository.DocumentRepository
	tags repository.TagRepository
}

// NewTagService constructs a new TagService.
func NewTagService(docs repository.DocumentRepository, tags repository.TagRepository) TagService {
	return &tagService{docs: docs, tags: tags}
}

func (s *tagService) AttachTags(ctx context.Context, documentID string, names []string) (*model.Document, error) {
	if len(names) == 0 {
		return nil, validationErr("at least one tag name is required")
	}

	// Validate the whole batch before touching any state: a blank name later
	// in the list must not leave earlier tags created or attached.
	displays := make([]string, 0, len(names))
	for _, raw := range names {
		display := strings.TrimSpace(raw)
		if display == "" {
			return nil, validationErr("tag name must not be empty")
		}
		displays = append(displays, display)
	}

	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	for _, display := range displays {
		canonical := strings.ToLower(display)

		tag, err := s.tags.GetOrCreate(ctx, canonical, display)
		if err != nil {
			return nil, fmt.Errorf("get or create tag %q: %w", canonical, err)
		}
		if err := s.tags.Attach(ctx, doc.ID, tag.ID); err != nil {
			return nil, fmt.Errorf("attach tag %q: %w", canonical, err)
		}
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

func (s *tagService) DetachTag(ctx context.Context, documentID, tagID string) error {
	removed, err := s.tags.Detach(ctx, documentID, tagID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func (s *tagService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.tags.ListAll(ctx)
}
