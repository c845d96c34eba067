package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"docproc/internal/extract"
	"docproc/internal/model"
	"docproc/internal/repository"
	"docproc/internal/storage"
)

// ProcessQueue accepts extraction work for uploaded documents. The upload
// request handler returns as soon as the job is queued; extraction never runs
// on a request-serving goroutine.
type ProcessQueue interface {
	Enqueue(documentID, storedFilename string)
}

type processJob struct {
	documentID     string
	storedFilename string
}

// Processor runs PDF text extraction on a fixed pool of worker goroutines.
// Each job transitions its document from pending to processed or failed
// exactly once; the terminal row update happens before any reader can observe
// the terminal status.
type Processor struct {
	repo      repository.DocumentRepository
	store     storage.Storage
	extractor extract.Extractor

	jobs    chan processJob
	wg      sync.WaitGroup
	timeout time.Duration

	processed *prometheus.CounterVec
}

// NewProcessor starts workers goroutines consuming extraction jobs.
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewProcessor(repo repository.DocumentRepository, store storage.Storage, extractor extract.Extractor, workers int, reg prometheus.Registerer) *Processor {
	if workers <= 0 {
		workers = 1
	}

	p := &Processor{
		repo:      repo,
		store:     store,
		extractor: extractor,
		jobs:      make(chan processJob, workers*4),
		timeout:   2 * time.Minute,
		processed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_processed_total",
				Help: "Total number of documents that reached a terminal processing status.",
			},
			[]string{"status"},
		),
	}
	if reg != nil {
		reg.MustRegister(p.processed)
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Enqueue submits a document for extraction. Blocks only when the queue is
// full, applying backpressure to uploads rather than dropping work.
func (p *Processor) Enqueue(documentID, storedFilename string) {
	p.jobs <- processJob{documentID: documentID, storedFilename: storedFilename}
}

// Close stops accepting jobs and waits for in-flight extractions to finish.
func (p *Processor) Close() {
	close(p.jobs)
	p.wg.Wait()
}

func (p *Processor) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		p.run(j)
	}
}

func (p *Processor) run(j processJob) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic while processing document %s: %v", j.documentID, r)
			p.fail(j, fmt.Sprintf("internal error: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	rc, _, err := p.store.Get(ctx, j.storedFilename)
	if err != nil {
		p.fail(j, fmt.Sprintf("read stored file: %v", err))
		return
	}

	res, err := p.extractor.Extract(ctx, rc)
	rc.Close()
	if err != nil {
		p.fail(j, fmt.Sprintf("extract text: %v", err))
		return
	}

	if err := p.repo.MarkProcessed(ctx, j.documentID, res.Text, res.PageCount); err != nil {
		log.Printf("failed to mark document %s processed: %v", j.documentID, err)
		return
	}
	p.processed.WithLabelValues(string(model.StatusProcessed)).Inc()
}

// fail removes the stored file and records the failure against the document.
// The row stays visible with status failed so the upload is auditable; the
// error never propagates past the extraction worker.
func (p *Processor) fail(j processJob, detail string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := p.store.Delete(ctx, j.storedFilename); err != nil {
		log.Printf("failed to remove stored file %s: %v", j.storedFilename, err)
	}
	if err := p.repo.MarkFailed(ctx, j.documentID, detail); err != nil {
		log.Printf("failed to mark document %s failed: %v", j.documentID, err)
		return
	}
	p.processed.WithLabelValues(string(model.StatusFailed)).Inc()
}
