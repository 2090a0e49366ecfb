package domain

import "time"

// JobStatus is the terminal state of a migration job.
type JobStatus string

const (
	JobSuccess JobStatus = "success"
	JobPartial JobStatus = "partial"
	JobFailed  JobStatus = "failed"
)

// ParseWarning records a non-fatal normalization problem on one cell.
// Warnings never stop a run; they are reported on the job summary.
type ParseWarning struct {
	Row     int    `json:"row"`
	Section string `json:"section,omitempty"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Reason  string `json:"reason"`
}

// MigrationJob is one unit of ingestion work: a mission applied to one
// source grid. Immutable once terminal.
type MigrationJob struct {
	ID         string         `json:"id"`
	Mission    string         `json:"mission"`
	SourceID   string         `json:"source_id"`
	Processed  int            `json:"processed_rows"`
	Skipped    int            `json:"skipped_rows"`
	Errored    int            `json:"errored_rows"`
	Committed  int            `json:"committed_docs"`
	Warnings   []ParseWarning `json:"warnings,omitempty"`
	Status     JobStatus      `json:"status"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}
