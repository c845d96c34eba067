package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPDFExtractorRejectsGarbage(t *testing.T) {
	e := NewPDF()

	tests := []struct {
		name string
		body string
	}{
		{name: "empty input", body: ""},
		{name: "plain text", body: "this is not a pdf"},
		{name: "truncated header", body: "%PDF-1.4"},
		{name: "html masquerading as pdf", body: "<html><body>hi</body></html>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Extract(context.Background(), strings.NewReader(tc.body))
			assert.Error(t, err)
		})
	}
}

func TestPDFExtractorReadFailure(t *testing.T) {
	e := NewPDF()

	_, err := e.Extract(context.Background(), failingReader{})
	assert.ErrorContains(t, err, "read file")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, assert.AnError
}
