package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfExtractor extracts plain text from PDF files.
type pdfExtractor struct{}

// NewPDF returns an Extractor for PDF content.
func NewPDF() Extractor {
	return &pdfExtractor{}
}

func (e *pdfExtractor) Extract(ctx context.Context, r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read file: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}

	numPages := reader.NumPage()
	var sb strings.Builder

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the whole document.
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return Result{Text: sb.String(), PageCount: numPages}, nil
}
