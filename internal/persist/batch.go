// Package persist writes record sequences to the document store in
// chunks that respect the store's per-batch operation ceiling.
package persist

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/chronos-erp/flowledger/internal/infrastructure/metrics"
	"github.com/chronos-erp/flowledger/internal/store"
)

// MaxBatchOps is the default per-batch write ceiling.
const MaxBatchOps = 500

// BatchCommitError reports a failed chunk commit along with how many
// records were durably committed before it, so the caller can resume
// from the next chunk instead of re-uploading everything. Natural-key
// upserts absorb any duplicates a resume produces.
type BatchCommitError struct {
	Collection string
	Committed  int
	Err        error
}

func (e *BatchCommitError) Error() string {
	return fmt.Sprintf("batch commit to %s failed after %d committed records: %v", e.Collection, e.Committed, e.Err)
}

func (e *BatchCommitError) Unwrap() error {
	return e.Err
}

// BatchPersister splits record sequences into store-sized chunks.
// Chunks commit sequentially: chunk N+1 is only attempted after chunk N
// succeeded, keeping progress monotonic and in-flight work bounded to
// one chunk.
type BatchPersister struct {
	store   store.Store
	maxOps  int
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// New creates a BatchPersister. maxOps <= 0 selects MaxBatchOps.
func New(s store.Store, maxOps int, m *metrics.Metrics, log zerolog.Logger) *BatchPersister {
	if maxOps <= 0 {
		maxOps = MaxBatchOps
	}
	if m == nil {
		m = metrics.NewWith(prometheus.NewRegistry())
	}
	return &BatchPersister{store: s, maxOps: maxOps, metrics: m, log: log}
}

// Persist upserts docs into collection, returning how many were
// committed. On failure the returned count and the BatchCommitError
// both carry the durable progress.
func (p *BatchPersister) Persist(ctx context.Context, collection string, docs []store.Document) (int, error) {
	committed := 0
	for start := 0; start < len(docs); start += p.maxOps {
		end := start + p.maxOps
		if end > len(docs) {
			end = len(docs)
		}
		chunk := docs[start:end]

		if _, err := p.store.BatchWrite(ctx, collection, chunk, p.maxOps); err != nil {
			return committed, &BatchCommitError{Collection: collection, Committed: committed, Err: err}
		}

		committed += len(chunk)
		p.metrics.BatchChunks.Inc()
		p.metrics.BatchDocs.Add(float64(len(chunk)))
		p.log.Debug().
			Str("collection", collection).
			Int("committed", committed).
			Int("total", len(docs)).
			Msg("batch chunk committed")
	}

	return committed, nil
}

// Clear drains collection before a full reload, deleting in pages of at
// most the batch ceiling. Unsafe to run concurrently with other writers
// of the same collection.
func (p *BatchPersister) Clear(ctx context.Context, collection string) (int, error) {
	return p.store.ClearCollection(ctx, collection, p.maxOps)
}
