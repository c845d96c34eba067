package service

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docproc/internal/extract"
	extractmocks "docproc/internal/extract/mocks"
	repomocks "docproc/internal/repository/mocks"
	"docproc/internal/storage"
	storagemocks "docproc/internal/storage/mocks"
)

func TestProcessor_Success(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	extractor := new(extractmocks.MockExtractor)

	store.On("Get", mock.Anything, "stored.pdf").
		Return(io.NopCloser(strings.NewReader("%PDF-1.4")), storage.ObjectInfo{Size: 8}, nil)
	extractor.On("Extract", mock.Anything, mock.Anything).
		Return(extract.Result{Text: "hello world", PageCount: 3}, nil)
	repo.On("MarkProcessed", mock.Anything, "doc-1", "hello world", 3).Return(nil)

	p := NewProcessor(repo, store, extractor, 2, prometheus.NewRegistry())
	p.Enqueue("doc-1", "stored.pdf")
	p.Close()

	repo.AssertCalled(t, "MarkProcessed", mock.Anything, "doc-1", "hello world", 3)
	repo.AssertNotCalled(t, "MarkFailed")
	store.AssertNotCalled(t, "Delete")
}

func TestProcessor_ExtractionFailure(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	extractor := new(extractmocks.MockExtractor)

	store.On("Get", mock.Anything, "stored.pdf").
		Return(io.NopCloser(strings.NewReader("not a pdf")), storage.ObjectInfo{}, nil)
	extractor.On("Extract", mock.Anything, mock.Anything).
		Return(extract.Result{}, errors.New("bad xref table"))
	store.On("Delete", mock.Anything, "stored.pdf").Return(nil)
	repo.On("MarkFailed", mock.Anything, "doc-1", mock.MatchedBy(func(detail string) bool {
		return strings.Contains(detail, "bad xref table")
	})).Return(nil)

	p := NewProcessor(repo, store, extractor, 1, prometheus.NewRegistry())
	p.Enqueue("doc-1", "stored.pdf")
	p.Close()

	repo.AssertExpectations(t)
	store.AssertCalled(t, "Delete", mock.Anything, "stored.pdf")
	repo.AssertNotCalled(t, "MarkProcessed")
}

func TestProcessor_StoredFileMissing(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	extractor := new(extractmocks.MockExtractor)

	store.On("Get", mock.Anything, "gone.pdf").
		Return(nil, storage.ObjectInfo{}, errors.New("no such file"))
	store.On("Delete", mock.Anything, "gone.pdf").Return(nil)
	repo.On("MarkFailed", mock.Anything, "doc-1", mock.MatchedBy(func(detail string) bool {
		return strings.Contains(detail, "no such file")
	})).Return(nil)

	p := NewProcessor(repo, store, extractor, 1, prometheus.NewRegistry())
	p.Enqueue("doc-1", "gone.pdf")
	p.Close()

	repo.AssertExpectations(t)
	extractor.AssertNotCalled(t, "Extract")
}

func TestProcessor_PanicIsRecovered(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	extractor := new(extractmocks.MockExtractor)

	store.On("Get", mock.Anything, "stored.pdf").
		Return(io.NopCloser(strings.NewReader("x")), storage.ObjectInfo{}, nil)
	extractor.On("Extract", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("corrupt page tree") }).
		Return(extract.Result{}, nil)
	store.On("Delete", mock.Anything, "stored.pdf").Return(nil)
	repo.On("MarkFailed", mock.Anything, "doc-1", mock.MatchedBy(func(detail string) bool {
		return strings.Contains(detail, "corrupt page tree")
	})).Return(nil)

	p := NewProcessor(repo, store, extractor, 1, prometheus.NewRegistry())
	p.Enqueue("doc-1", "stored.pdf")
	p.Close()

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "MarkProcessed")
}

func TestProcessor_ConcurrentJobs(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	extractor := new(extractmocks.MockExtractor)

	store.On("Get", mock.Anything, mock.Anything).
		Return(nil, storage.ObjectInfo{}, errors.New("transient"))
	store.On("Delete", mock.Anything, mock.Anything).Return(nil)
	repo.On("MarkFailed", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	p := NewProcessor(repo, store, extractor, 4, prometheus.NewRegistry())
	for i := 0; i < 8; i++ {
		p.Enqueue("doc", "stored.pdf")
	}

	done := make(chan struct{})
	go func() {
		p.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("processor did not drain queued jobs")
	}

	repo.AssertNumberOfCalls(t, "MarkFailed", 8)
	assert.True(t, len(store.Calls) >= 8)
}
