package service

import (
	"context"
	"log"
	"sync"
	"time"

	"expenso/internal/port"
)

// ProcessQueueConfig holds settings for the batch processing worker.
type ProcessQueueConfig struct {
	PollInterval time.Duration
	Concurrency  int
}

// ProcessQueueWorker polls for queued batches and dispatches them for
// processing.
type ProcessQueueWorker struct {
	batchRepo port.BatchRepository
	processor ProcessingService
	cfg       ProcessQueueConfig
	wg        sync.WaitGroup
}

// NewProcessQueueWorker creates a new ProcessQueueWorker.
func NewProcessQueueWorker(batchRepo port.BatchRepository, processor ProcessingService, cfg ProcessQueueConfig) *ProcessQueueWorker {
	return &ProcessQueueWorker{
		batchRepo: batchRepo,
		processor: processor,
		cfg:       cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight batches have finished.
func (w *ProcessQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("processQueueWorker: started (poll=%s, concurrency=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			log.Printf("processQueueWorker: shutting down, waiting for in-flight batches...")
			w.wg.Wait()
			log.Printf("processQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			batches, err := w.batchRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("processQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range batches {
				batch := batches[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight batches complete even during shutdown.
					procCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
					defer cancel()

					log.Printf("processQueueWorker: dispatching batch %s", batch.ID)
					w.processor.ProcessBatch(procCtx, &batch)
				}()
			}
		}
	}
}
