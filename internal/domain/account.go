package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a named money pool (a treasury vault, a freight pool, a
// commissions pool). Its balance is only ever mutated through ledger
// entry and transfer commits, never directly.
type Account struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ValidateDebit checks whether the account can be debited by amount.
// Overdraft must be requested explicitly per operation.
func (a *Account) ValidateDebit(amount decimal.Decimal, allowOverdraft bool) error {
	if !a.Active {
		return ErrAccountInactive
	}
	if !allowOverdraft && a.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateCredit checks whether the account can receive amount.
func (a *Account) ValidateCredit(amount decimal.Decimal) error {
	if !a.Active {
		return ErrAccountInactive
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
