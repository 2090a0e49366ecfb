package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debt tracks a client's outstanding balance against a sale. Created
// when a sale is only partially paid, updated on each subsequent
// payment, closed when the remainder reaches zero.
type Debt struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"client_id"`
	ClientName string          `json:"client_name"`
	SaleID     string          `json:"sale_id"`
	SaleFolio  string          `json:"sale_folio"`
	Original   decimal.Decimal `json:"original"`
	Paid       decimal.Decimal `json:"paid"`
	Remaining  decimal.Decimal `json:"remaining"`
	Settled    bool            `json:"settled"`
	Voided     bool            `json:"voided"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ApplyPayment decrements the remaining amount and marks the debt
// settled once it reaches zero.
func (d *Debt) ApplyPayment(amount decimal.Decimal) error {
	if d.Voided {
		return ErrDebtVoided
	}
	if d.Settled {
		return ErrDebtSettled
	}
	if amount.LessThanOrEqual(decimal.Zero) || amount.GreaterThan(d.Remaining) {
		return ErrInvalidAmount
	}

	d.Paid = d.Paid.Add(amount)
	d.Remaining = d.Remaining.Sub(amount)
	if d.Remaining.IsZero() {
		d.Settled = true
	}
	return nil
}

// Void closes the debt without payment, used when the owning sale is
// cancelled.
func (d *Debt) Void() error {
	if d.Settled {
		return ErrDebtSettled
	}
	d.Voided = true
	d.Remaining = decimal.Zero
	return nil
}
