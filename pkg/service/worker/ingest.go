package worker

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/utils/errutil"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
)

// Ingester runs one ingestion cycle
type Ingester interface {
	Run(ctx context.Context) (*model.IngestionResult, error)
}

// IngestWorker runs ingestion periodically in the background
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Duplicate runs across instances are harmless because inserts are idempotent per URL
type IngestWorker struct {
	ingester Ingester
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	// startOnce guards doneCh ownership: either run closes it or Stop does when never started
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewIngestWorker creates a new worker running ingester every interval
func NewIngestWorker(ingester Ingester, interval time.Duration) *IngestWorker {
	return &IngestWorker{
		ingester: ingester,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background ingestion loop without blocking the caller.
// The first run starts immediately. Calls after the first, or after Stop, do nothing.
func (w *IngestWorker) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		logging.From(ctx).Info("ingest worker starting", "interval", w.interval.String())
		go w.run(ctx)
	})
}

// Stop signals the worker to stop and waits for the current run to complete
func (w *IngestWorker) Stop() {
	w.stopOnce.Do(func() {
		logging.Default().Info("ingest worker stopping")
		close(w.stopCh)
	})
	w.startOnce.Do(func() {
		close(w.doneCh)
	})
	<-w.doneCh
	logging.Default().Info("ingest worker stopped")
}

func (w *IngestWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.ingest(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.ingest(ctx)

		case <-w.stopCh:
			logging.Default().Info("ingest worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("ingest worker context cancelled")
			return
		}
	}
}

func (w *IngestWorker) ingest(ctx context.Context) {
	startTime := time.Now()
	result, err := w.ingester.Run(ctx)
	if err != nil {
		// keep the loop alive, next tick retries
		_ = errutil.Handle(ctx, err, "scheduled ingestion failed")
		return
	}

	logging.From(ctx).Info("scheduled ingestion completed",
		"new", result.NewCount,
		"existing", result.ExistingCount,
		"duration", time.Since(startTime).String())
}
