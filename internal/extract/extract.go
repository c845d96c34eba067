package extract

import (
	"context"
	"io"
)

// Result holds the output of a successful text extraction.
type Result struct {
	Text      string
	PageCount int
}

// Extractor turns an uploaded file's bytes into plain text plus a page count.
// The ingestion pipeline treats it as a black box: bytes in, text and page
// count out, or an error.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader) (Result, error)
}
