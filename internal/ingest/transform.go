package ingest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chronos-erp/flowledger/internal/adapter/repository/docstore"
	"github.com/chronos-erp/flowledger/internal/domain"
)

// Record is one typed record ready for persistence. ID is the
// deterministic natural key, so re-running the same ingestion upserts
// instead of appending duplicates.
type Record struct {
	ID    string
	Value any
}

// Result is the outcome of transforming one parsed row. Skip marks
// formatting-only rows (no usable amount, no concept) that are filtered,
// not errored.
type Result struct {
	Record   *Record
	Warnings []domain.ParseWarning
	Skip     bool
}

// Column→field mapping tables, declared once per mission.
var (
	bankColumns = struct{ Date, Concept, Amount int }{0, 1, 2}

	salesColumns = struct {
		Date, Folio, Client, Quantity, UnitPrice, UnitCost, Freight, Status, Concept int
	}{0, 1, 2, 3, 4, 5, 6, 7, 8}

	clientColumns = struct{ Name, TotalPurchased, Debt int }{0, 1, 2}

	inventoryColumns = struct{ SKU, Name, Quantity, UnitCost int }{0, 1, 2, 3}
)

// freightFee is the flat freight charge per sale when the freight flag
// is set, matching the source exports.
var freightFee = decimal.NewFromInt(500)

// TransformerConfig selects and parameterizes a mission transformer.
type TransformerConfig struct {
	Mission  Mission
	SourceID string // bank_ledger: the target account id
	Currency string
	Now      time.Time // the run's timestamp, used for date fallbacks
}

// Transformer maps normalized fields of one mission into domain records.
type Transformer struct {
	cfg        TransformerConfig
	collection string
	fn         func(*Transformer, Row) Result
}

// NewTransformer resolves the transformer for cfg.Mission once, at job
// start. Unknown missions are rejected here, before any write.
func NewTransformer(cfg TransformerConfig) (*Transformer, error) {
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}

	t := &Transformer{cfg: cfg}
	switch cfg.Mission {
	case MissionBankLedger:
		t.collection = docstore.CollEntries
		t.fn = (*Transformer).bankLedger
	case MissionSales:
		t.collection = docstore.CollSales
		t.fn = (*Transformer).sales
	case MissionClients:
		t.collection = docstore.CollClients
		t.fn = (*Transformer).clients
	case MissionInventory:
		t.collection = docstore.CollInventory
		t.fn = (*Transformer).inventory
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedMission, cfg.Mission)
	}
	return t, nil
}

// Collection is the target collection for this mission's records.
func (t *Transformer) Collection() string {
	return t.collection
}

// Transform maps one parsed row into a record, a skip, or a record with
// warnings. It never fails a run.
func (t *Transformer) Transform(row Row) Result {
	return t.fn(t, row)
}

// naturalKey derives the deterministic record id: mission, source,
// section, row position and date. A row whose date did not parse keys
// on "na" so the fallback timestamp cannot break idempotence.
func (t *Transformer) naturalKey(row Row, date time.Time, dateOK bool) string {
	datePart := "na"
	if dateOK {
		datePart = date.Format("20060102")
	}
	return fmt.Sprintf("%s:%s:%s:%06d:%s", t.cfg.Mission, t.cfg.SourceID, row.Section, row.Index, datePart)
}

func (t *Transformer) dateWarning(row Row, raw string) domain.ParseWarning {
	return domain.ParseWarning{
		Row:     row.Index,
		Section: string(row.Section),
		Field:   "date",
		Value:   raw,
		Reason:  "unparseable date, using run timestamp",
	}
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func (t *Transformer) bankLedger(row Row) Result {
	amount := ParseAmount(cell(row.Cells, bankColumns.Amount))
	concept := CleanString(cell(row.Cells, bankColumns.Concept))

	if amount.IsZero() && concept == "" {
		return Result{Skip: true}
	}

	var warnings []domain.ParseWarning
	rawDate := cell(row.Cells, bankColumns.Date)
	date, ok := ParseDate(rawDate, t.cfg.Now)
	if !ok {
		warnings = append(warnings, t.dateWarning(row, rawDate))
	}

	kind := domain.EntryIncome
	if row.Section == SectionExpense {
		kind = domain.EntryExpense
	}
	// A negative amount in either column means the movement goes the
	// other way.
	if amount.IsNegative() {
		amount = amount.Abs()
		if kind == domain.EntryIncome {
			kind = domain.EntryExpense
		} else {
			kind = domain.EntryIncome
		}
	}

	key := t.naturalKey(row, date, ok)
	entry := &domain.LedgerEntry{
		ID:         key,
		AccountID:  t.cfg.SourceID,
		Kind:       kind,
		Amount:     amount,
		Currency:   t.cfg.Currency,
		OccurredAt: date,
		Concept:    concept,
		SourceRef:  fmt.Sprintf("%s:%d", t.cfg.Mission, row.Index),
		CreatedAt:  t.cfg.Now,
	}

	return Result{Record: &Record{ID: key, Value: entry}, Warnings: warnings}
}

func (t *Transformer) sales(row Row) Result {
	client := CleanString(cell(row.Cells, salesColumns.Client))
	quantity := ParseAmount(cell(row.Cells, salesColumns.Quantity))
	unitPrice := ParseAmount(cell(row.Cells, salesColumns.UnitPrice))
	unitCost := ParseAmount(cell(row.Cells, salesColumns.UnitCost))
	subtotal := quantity.Mul(unitPrice)

	if subtotal.IsZero() && client == "" {
		return Result{Skip: true}
	}

	var warnings []domain.ParseWarning
	rawDate := cell(row.Cells, salesColumns.Date)
	date, ok := ParseDate(rawDate, t.cfg.Now)
	if !ok {
		warnings = append(warnings, t.dateWarning(row, rawDate))
	}

	freight := ParseEnum(cell(row.Cells, salesColumns.Freight), []string{"aplica", "no aplica"}, "no aplica") == "aplica"
	freightTotal := decimal.Zero
	if freight {
		freightTotal = freightFee
	}
	margin := quantity.Mul(unitPrice.Sub(unitCost))
	if margin.IsNegative() {
		margin = decimal.Zero
	}

	status := domain.PaymentPending
	switch ParseEnum(cell(row.Cells, salesColumns.Status), []string{"pagado", "parcial", "pendiente"}, "pendiente") {
	case "pagado":
		status = domain.PaymentPaid
	case "parcial":
		status = domain.PaymentPartial
	}

	total := subtotal.Add(freightTotal)
	paid := decimal.Zero
	if status == domain.PaymentPaid {
		paid = total
	}

	key := t.naturalKey(row, date, ok)
	folio := CleanString(cell(row.Cells, salesColumns.Folio))
	if folio == "" {
		folio = fmt.Sprintf("V-%04d", row.Index)
	}

	sale := &domain.Sale{
		ID:         key,
		Folio:      folio,
		ClientName: client,
		Items: []domain.LineItem{{
			Name:      "Producto estándar",
			Quantity:  quantity,
			UnitPrice: unitPrice,
			UnitCost:  unitCost,
			Freight:   freight,
		}},
		Subtotal:     subtotal,
		FreightTotal: freightTotal,
		MarginTotal:  margin,
		Total:        total,
		Currency:     t.cfg.Currency,
		Status:       status,
		PaidAmount:   paid,
		OccurredAt:   date,
		SourceRef:    fmt.Sprintf("%s:%d", t.cfg.Mission, row.Index),
		CreatedAt:    t.cfg.Now,
		UpdatedAt:    t.cfg.Now,
	}

	return Result{Record: &Record{ID: key, Value: sale}, Warnings: warnings}
}

func (t *Transformer) clients(row Row) Result {
	name := CleanString(cell(row.Cells, clientColumns.Name))
	if name == "" {
		return Result{Skip: true}
	}

	key := t.naturalKey(row, time.Time{}, false)
	client := &domain.Client{
		ID:             key,
		Name:           name,
		TotalPurchased: ParseAmount(cell(row.Cells, clientColumns.TotalPurchased)),
		DebtTotal:      ParseAmount(cell(row.Cells, clientColumns.Debt)),
		Active:         true,
		CreatedAt:      t.cfg.Now,
		UpdatedAt:      t.cfg.Now,
	}

	return Result{Record: &Record{ID: key, Value: client}}
}

func (t *Transformer) inventory(row Row) Result {
	sku := CleanString(cell(row.Cells, inventoryColumns.SKU))
	name := CleanString(cell(row.Cells, inventoryColumns.Name))
	if sku == "" && name == "" {
		return Result{Skip: true}
	}

	key := t.naturalKey(row, time.Time{}, false)
	item := &domain.InventoryItem{
		ID:        key,
		SKU:       sku,
		Name:      name,
		Quantity:  ParseAmount(cell(row.Cells, inventoryColumns.Quantity)),
		UnitCost:  ParseAmount(cell(row.Cells, inventoryColumns.UnitCost)),
		UpdatedAt: t.cfg.Now,
	}

	return Result{Record: &Record{ID: key, Value: item}}
}
