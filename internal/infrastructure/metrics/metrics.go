package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ingestion pipeline and
// the ledger engine.
type Metrics struct {
	// Ingestion metrics
	IngestionRows *prometheus.CounterVec
	IngestionJobs *prometheus.CounterVec
	BatchChunks   prometheus.Counter
	BatchDocs     prometheus.Counter

	// Ledger engine metrics
	TransfersCreated prometheus.Counter
	SalesSettled     prometheus.Counter
	DebtPayments     prometheus.Counter
	EngineConflicts  prometheus.Counter
	EngineErrors     *prometheus.CounterVec
	EngineDuration   *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates and registers all metrics on reg. Tests pass a fresh
// registry to avoid duplicate registration.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		IngestionRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowledger_ingestion_rows_total",
				Help: "Ingested rows by mission and outcome",
			},
			[]string{"mission", "outcome"},
		),
		IngestionJobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowledger_ingestion_jobs_total",
				Help: "Completed migration jobs by terminal status",
			},
			[]string{"status"},
		),
		BatchChunks: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowledger_batch_chunks_committed_total",
			Help: "Committed batch chunks",
		}),
		BatchDocs: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowledger_batch_docs_committed_total",
			Help: "Documents committed through the batch persister",
		}),
		TransfersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowledger_transfers_created_total",
			Help: "Total number of transfers created",
		}),
		SalesSettled: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowledger_sales_settled_total",
			Help: "Total number of sale settlements",
		}),
		DebtPayments: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowledger_debt_payments_total",
			Help: "Total number of debt payments recorded",
		}),
		EngineConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowledger_engine_conflicts_total",
			Help: "Transaction conflicts observed by the ledger engine",
		}),
		EngineErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowledger_engine_errors_total",
				Help: "Ledger engine errors by operation",
			},
			[]string{"operation"},
		),
		EngineDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flowledger_engine_duration_seconds",
				Help:    "Duration of ledger engine operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}
