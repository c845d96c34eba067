package model

import "time"

// Tag is a reusable label attached to documents.
//
// Name is the canonical lower-cased form and is unique across all tags;
// DisplayName preserves the form the tag was first created with. Tags are
// created lazily on first attachment and never deleted automatically, so a
// tag with zero attachments stays available for reuse and filter lists.
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}
