package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/chronos-erp/flowledger/internal/adapter/repository/docstore"
	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/infrastructure/metrics"
	"github.com/chronos-erp/flowledger/internal/store"
)

// Persister is the batched persistence dependency of the runner.
type Persister interface {
	Persist(ctx context.Context, collection string, docs []store.Document) (int, error)
	Clear(ctx context.Context, collection string) (int, error)
}

// Runner executes one migration job: parse, normalize, transform,
// persist, and record the summary. Ingestion is single-threaded per
// job; jobs for disjoint collections may run concurrently.
type Runner struct {
	persister Persister
	locker    Locker
	jobs      *docstore.JobRepository
	idGen     docstore.IDGenerator
	currency  string
	metrics   *metrics.Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// RunnerConfig wires a Runner.
type RunnerConfig struct {
	Persister Persister
	Locker    Locker
	Jobs      *docstore.JobRepository
	IDGen     docstore.IDGenerator
	// DefaultCurrency applies when a run does not name one.
	DefaultCurrency string
	Metrics         *metrics.Metrics
	Logger          zerolog.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewWith(prometheus.NewRegistry())
	}
	if cfg.IDGen == nil {
		cfg.IDGen = docstore.NewULIDGenerator()
	}
	return &Runner{
		persister: cfg.Persister,
		locker:    cfg.Locker,
		jobs:      cfg.Jobs,
		idGen:     cfg.IDGen,
		currency:  cfg.DefaultCurrency,
		metrics:   cfg.Metrics,
		log:       cfg.Logger,
		now:       time.Now,
	}
}

// RunInput describes one ingestion run.
type RunInput struct {
	Mission  string
	SourceID string
	Currency string
	Grid     [][]string
	Force    bool // clear the target collection before loading
}

// Run executes the job. Row-level problems never escalate past the job
// summary; the returned error is reserved for failures that stop the
// run (unknown mission, lock contention, storage failures).
func (r *Runner) Run(ctx context.Context, input RunInput) (*domain.MigrationJob, error) {
	mission, err := ParseMission(input.Mission)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	parser, err := NewParser(mission)
	if err != nil {
		return nil, err
	}
	currency := input.Currency
	if currency == "" {
		currency = r.currency
	}
	transformer, err := NewTransformer(TransformerConfig{
		Mission:  mission,
		SourceID: input.SourceID,
		Currency: currency,
		Now:      now,
	})
	if err != nil {
		return nil, err
	}

	collection := transformer.Collection()
	release, err := r.locker.Acquire(ctx, collection)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(ctx); err != nil {
			r.log.Error().Err(err).Str("collection", collection).Msg("failed to release job lock")
		}
	}()

	job := &domain.MigrationJob{
		ID:        r.idGen.Generate(),
		Mission:   string(mission),
		SourceID:  input.SourceID,
		StartedAt: now,
	}

	log := r.log.With().Str("job_id", job.ID).Str("mission", job.Mission).Logger()

	if input.Force {
		deleted, err := r.persister.Clear(ctx, collection)
		if err != nil {
			return r.finish(ctx, job, err), err
		}
		log.Info().Int("deleted", deleted).Str("collection", collection).Msg("cleared collection before reload")
	}

	var docs []store.Document
	parseErr := parser.Each(input.Grid, func(row Row) error {
		result := transformer.Transform(row)
		if result.Skip {
			job.Skipped++
			r.metrics.IngestionRows.WithLabelValues(job.Mission, "skipped").Inc()
			return nil
		}

		job.Warnings = append(job.Warnings, result.Warnings...)

		data, err := json.Marshal(result.Record.Value)
		if err != nil {
			job.Errored++
			r.metrics.IngestionRows.WithLabelValues(job.Mission, "errored").Inc()
			log.Warn().Err(err).Int("row", row.Index).Msg("row could not be encoded")
			return nil
		}

		docs = append(docs, store.Document{ID: result.Record.ID, Data: data})
		job.Processed++
		r.metrics.IngestionRows.WithLabelValues(job.Mission, "processed").Inc()
		return nil
	})
	if parseErr != nil {
		return r.finish(ctx, job, parseErr), parseErr
	}

	committed, persistErr := r.persister.Persist(ctx, collection, docs)
	job.Committed = committed

	finished := r.finish(ctx, job, persistErr)
	log.Info().
		Int("processed", job.Processed).
		Int("skipped", job.Skipped).
		Int("errored", job.Errored).
		Int("committed", job.Committed).
		Str("status", string(job.Status)).
		Msg("migration job finished")

	return finished, persistErr
}

// finish assigns the terminal status, records the summary and reports
// metrics. The job summary is written even when the run failed.
func (r *Runner) finish(ctx context.Context, job *domain.MigrationJob, runErr error) *domain.MigrationJob {
	switch {
	case runErr != nil && job.Committed == 0:
		job.Status = domain.JobFailed
	case runErr != nil || job.Errored > 0:
		job.Status = domain.JobPartial
	default:
		job.Status = domain.JobSuccess
	}
	if runErr != nil {
		job.Error = runErr.Error()
	}
	job.FinishedAt = r.now().UTC()

	if r.jobs != nil {
		if err := r.jobs.Put(ctx, job); err != nil {
			r.log.Error().Err(err).Str("job_id", job.ID).Msg("failed to persist job summary")
		}
	}
	r.metrics.IngestionJobs.WithLabelValues(string(job.Status)).Inc()

	return job
}
