package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies a ledger entry.
type EntryKind string

const (
	EntryIncome  EntryKind = "income"
	EntryExpense EntryKind = "expense"
	EntryCut     EntryKind = "cut"
)

// LedgerEntry is an immutable financial fact attributed to one account.
// Entries are never mutated; a mistake is corrected by a compensating
// entry referencing the original through VoidOf.
type LedgerEntry struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"account_id"`
	Kind       EntryKind       `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	OccurredAt time.Time       `json:"occurred_at"`
	Concept    string          `json:"concept"`
	SourceRef  string          `json:"source_ref,omitempty"`
	VoidOf     string          `json:"void_of,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Validate checks entry invariants: a known kind and a non-negative amount.
func (e *LedgerEntry) Validate() error {
	switch e.Kind {
	case EntryIncome, EntryExpense, EntryCut:
	default:
		return ErrInvalidAmount
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Signed returns the amount signed by direction: income positive,
// expense and cut negative.
func (e *LedgerEntry) Signed() decimal.Decimal {
	if e.Kind == EntryIncome {
		return e.Amount
	}
	return e.Amount.Neg()
}
