package ingest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/chronos-erp/flowledger/internal/adapter/repository/docstore"
	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/ingest"
	"github.com/chronos-erp/flowledger/internal/persist"
	"github.com/chronos-erp/flowledger/internal/store"
	"github.com/chronos-erp/flowledger/internal/store/memory"
)

func newTestRunner(t *testing.T) (*ingest.Runner, *memory.Store, *ingest.LocalLocker) {
	t.Helper()
	mem := memory.New()
	locker := ingest.NewLocalLocker()
	runner := ingest.NewRunner(ingest.RunnerConfig{
		Persister: persist.New(mem, 500, nil, zerolog.Nop()),
		Locker:    locker,
		Jobs:      docstore.NewJobRepository(mem),
		Logger:    zerolog.Nop(),
	})
	return runner, mem, locker
}

func weeklyCutGrid() [][]string {
	return [][]string{
		{"Corte semanal BOVEDA", "", "", "", "", "", "", ""},
		{"INGRESOS", "", "", "", "", "GASTOS", "", ""},
		{"15/03/2024", "Venta mostrador", "$1,000.00", "", "", "15/03/2024", "Gasolina", "250"},
		{"16/03/2024", "Abono cliente", "2,500", "", "", "16/03/2024", "Comida", "$75.50"},
		{"", "", "", "", "", "17/03/2024", "Renta", "500"},
		{"17/03/2024", "", "0", "", "", "", "", ""},
	}
}

func countDocs(t *testing.T, mem *memory.Store, collection string) int {
	t.Helper()
	docs, err := mem.List(context.Background(), collection, 1000, 0)
	if err != nil {
		t.Fatalf("list %s: %v", collection, err)
	}
	return len(docs)
}

func TestRunner_BankLedgerRun(t *testing.T) {
	ctx := context.Background()
	runner, mem, _ := newTestRunner(t)

	job, err := runner.Run(ctx, ingest.RunInput{
		Mission:  "bank_ledger",
		SourceID: "boveda_monte",
		Currency: "USD",
		Grid:     weeklyCutGrid(),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if job.Status != domain.JobSuccess {
		t.Errorf("expected success, got %s (%s)", job.Status, job.Error)
	}
	if job.Processed != 5 {
		t.Errorf("processed: expected 5, got %d", job.Processed)
	}
	if job.Skipped != 1 {
		t.Errorf("skipped: expected 1, got %d", job.Skipped)
	}
	if job.Committed != 5 {
		t.Errorf("committed: expected 5, got %d", job.Committed)
	}
	if got := countDocs(t, mem, docstore.CollEntries); got != 5 {
		t.Errorf("expected 5 entries stored, got %d", got)
	}

	// The summary is queryable after the run.
	stored, err := docstore.NewJobRepository(mem).GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if stored.Status != domain.JobSuccess || stored.Committed != 5 {
		t.Errorf("unexpected stored summary: %+v", stored)
	}
}

func TestRunner_RerunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	runner, mem, _ := newTestRunner(t)

	input := ingest.RunInput{Mission: "bank_ledger", SourceID: "boveda_monte", Grid: weeklyCutGrid()}
	if _, err := runner.Run(ctx, input); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := runner.Run(ctx, input); err != nil {
		t.Fatalf("second run: %v", err)
	}

	// Natural keys make the second run an upsert, not an append.
	if got := countDocs(t, mem, docstore.CollEntries); got != 5 {
		t.Errorf("expected 5 entries after re-run, got %d", got)
	}
}

func TestRunner_ForceClearsCollection(t *testing.T) {
	ctx := context.Background()
	runner, mem, _ := newTestRunner(t)

	// A stale record from an earlier, differently-keyed load.
	_, err := mem.BatchWrite(ctx, docstore.CollEntries, []store.Document{{ID: "stale", Data: []byte(`{}`)}}, 1)
	if err != nil {
		t.Fatalf("seed stale doc: %v", err)
	}

	input := ingest.RunInput{Mission: "bank_ledger", SourceID: "boveda_monte", Grid: weeklyCutGrid()}

	if _, err := runner.Run(ctx, input); err != nil {
		t.Fatalf("run without force: %v", err)
	}
	if got := countDocs(t, mem, docstore.CollEntries); got != 6 {
		t.Fatalf("expected stale doc to survive a plain run, got %d docs", got)
	}

	input.Force = true
	if _, err := runner.Run(ctx, input); err != nil {
		t.Fatalf("run with force: %v", err)
	}
	if got := countDocs(t, mem, docstore.CollEntries); got != 5 {
		t.Errorf("expected 5 docs after forced reload, got %d", got)
	}
}

func TestRunner_UnknownMission(t *testing.T) {
	runner, _, _ := newTestRunner(t)

	_, err := runner.Run(context.Background(), ingest.RunInput{Mission: "payroll", Grid: weeklyCutGrid()})
	if !errors.Is(err, domain.ErrUnsupportedMission) {
		t.Fatalf("expected ErrUnsupportedMission, got %v", err)
	}
}

func TestRunner_ConcurrentJobRejected(t *testing.T) {
	ctx := context.Background()
	runner, _, locker := newTestRunner(t)

	// Another job holds the target collection.
	release, err := locker.Acquire(ctx, docstore.CollEntries)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	_, err = runner.Run(ctx, ingest.RunInput{Mission: "bank_ledger", SourceID: "boveda_monte", Grid: weeklyCutGrid()})
	if !errors.Is(err, domain.ErrJobLocked) {
		t.Fatalf("expected ErrJobLocked, got %v", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := runner.Run(ctx, ingest.RunInput{Mission: "bank_ledger", SourceID: "boveda_monte", Grid: weeklyCutGrid()}); err != nil {
		t.Fatalf("run after release: %v", err)
	}
}

func TestRunner_SalesMission(t *testing.T) {
	ctx := context.Background()
	runner, mem, _ := newTestRunner(t)

	grid := [][]string{
		{"FECHA", "FOLIO", "CLIENTE", "CANTIDAD", "PRECIO", "COSTO", "FLETE", "ESTADO", "CONCEPTO"},
		{"15/03/2024", "V-001", "Juan", "2", "450", "375", "aplica", "parcial", ""},
		{"16/03/2024", "V-002", "Ana", "1", "900", "750", "no aplica", "pagado", ""},
	}

	job, err := runner.Run(ctx, ingest.RunInput{Mission: "sales", SourceID: "control_maestro", Grid: grid})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if job.Processed != 2 || job.Committed != 2 {
		t.Errorf("expected 2 processed and committed, got %d/%d", job.Processed, job.Committed)
	}
	if got := countDocs(t, mem, docstore.CollSales); got != 2 {
		t.Errorf("expected 2 sales stored, got %d", got)
	}
}
