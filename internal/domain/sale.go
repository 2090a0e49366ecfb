package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the payment state of a sale. Transitions move
// strictly forward: pending -> partial -> paid, or pending/partial ->
// cancelled. A paid or cancelled sale is never reopened.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

// LineItem is a product line on a sale or purchase.
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Freight   bool            `json:"freight"`
}

// Sale is a commercial transaction. On settlement it fans out into
// ledger entries across the principal, freight and margin accounts and,
// when only partially paid, creates a Debt for the remainder.
type Sale struct {
	ID           string          `json:"id"`
	Folio        string          `json:"folio"`
	ClientID     string          `json:"client_id"`
	ClientName   string          `json:"client_name"`
	Items        []LineItem      `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	FreightTotal decimal.Decimal `json:"freight_total"`
	MarginTotal  decimal.Decimal `json:"margin_total"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
	Status       PaymentStatus   `json:"status"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	DebtID       string          `json:"debt_id,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
	SourceRef    string          `json:"source_ref,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Outstanding returns the unpaid remainder.
func (s *Sale) Outstanding() decimal.Decimal {
	return s.Total.Sub(s.PaidAmount)
}

// ApplyPayment records a payment and advances the status machine.
func (s *Sale) ApplyPayment(amount decimal.Decimal) error {
	if s.Status == PaymentPaid || s.Status == PaymentCancelled {
		return ErrSaleFinal
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(s.Outstanding()) {
		return ErrInvalidAmount
	}

	s.PaidAmount = s.PaidAmount.Add(amount)
	if s.PaidAmount.GreaterThanOrEqual(s.Total) {
		s.Status = PaymentPaid
	} else {
		s.Status = PaymentPartial
	}
	return nil
}

// Cancel marks the sale cancelled. Terminal: no further entries may be
// created against it.
func (s *Sale) Cancel() error {
	if s.Status == PaymentPaid || s.Status == PaymentCancelled {
		return ErrSaleFinal
	}
	s.Status = PaymentCancelled
	return nil
}
