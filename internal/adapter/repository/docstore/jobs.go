package docstore

import (
	"context"

	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/store"
)

// JobRepository persists migration job summaries.
type JobRepository struct {
	store store.Store
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(s store.Store) *JobRepository {
	return &JobRepository{store: s}
}

// Put writes a job summary.
func (r *JobRepository) Put(ctx context.Context, job *domain.MigrationJob) error {
	data, err := encode(job)
	if err != nil {
		return err
	}
	_, err = r.store.BatchWrite(ctx, CollJobs, []store.Document{{ID: job.ID, Data: data}}, 1)
	return err
}

// GetByID reads one job summary.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.MigrationJob, error) {
	doc, err := r.store.Get(ctx, CollJobs, id)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrJobNotFound)
	}

	job := &domain.MigrationJob{}
	if err := decode(doc, job); err != nil {
		return nil, err
	}
	return job, nil
}

// List returns job summaries ordered by ID.
func (r *JobRepository) List(ctx context.Context, limit, offset int) ([]*domain.MigrationJob, error) {
	docs, err := r.store.List(ctx, CollJobs, limit, offset)
	if err != nil {
		return nil, err
	}

	jobs := make([]*domain.MigrationJob, 0, len(docs))
	for _, doc := range docs {
		job := &domain.MigrationJob{}
		if err := decode(doc, job); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
