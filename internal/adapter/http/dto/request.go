package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/ingest"
	"github.com/chronos-erp/flowledger/internal/ledger"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ToEngineInput converts to engine input.
func (r *CreateAccountRequest) ToEngineInput() ledger.CreateAccountInput {
	return ledger.CreateAccountInput{
		ID:             r.ID,
		Name:           r.Name,
		Currency:       r.Currency,
		OpeningBalance: r.OpeningBalance,
	}
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason,omitempty"`
	Overdraft     bool            `json:"overdraft,omitempty"`
	OccurredAt    *time.Time      `json:"occurred_at,omitempty"`
}

// ToEngineInput converts to engine input.
func (r *CreateTransferRequest) ToEngineInput() ledger.TransferInput {
	return ledger.TransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Reason:        r.Reason,
		Overdraft:     r.Overdraft,
		OccurredAt:    r.OccurredAt,
	}
}

// SaleItem represents a single line on a sale request.
type SaleItem struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Freight   bool            `json:"freight,omitempty"`
}

// CreateSaleRequest represents a request to register a sale.
type CreateSaleRequest struct {
	Folio        string          `json:"folio,omitempty"`
	ClientID     string          `json:"client_id,omitempty"`
	ClientName   string          `json:"client_name"`
	Items        []SaleItem      `json:"items"`
	FreightTotal decimal.Decimal `json:"freight_total"`
	Currency     string          `json:"currency"`
	OccurredAt   *time.Time      `json:"occurred_at,omitempty"`
}

// ToEngineInput converts to engine input.
func (r *CreateSaleRequest) ToEngineInput() ledger.CreateSaleInput {
	items := make([]domain.LineItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.LineItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			UnitCost:  item.UnitCost,
			Freight:   item.Freight,
		}
	}
	return ledger.CreateSaleInput{
		Folio:        r.Folio,
		ClientID:     r.ClientID,
		ClientName:   r.ClientName,
		Items:        items,
		FreightTotal: r.FreightTotal,
		Currency:     r.Currency,
		OccurredAt:   r.OccurredAt,
	}
}

// SettleSaleRequest represents a request to settle a sale.
type SettleSaleRequest struct {
	AmountPaid decimal.Decimal `json:"amount_paid"`
	OccurredAt *time.Time      `json:"occurred_at,omitempty"`
}

// DebtPaymentRequest represents a request to pay down a debt.
type DebtPaymentRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt *time.Time      `json:"occurred_at,omitempty"`
}

// IngestionRequest represents a request to run a migration job.
type IngestionRequest struct {
	Mission  string     `json:"mission"`
	SourceID string     `json:"source_id"`
	Currency string     `json:"currency,omitempty"`
	Grid     [][]string `json:"grid"`
	Force    bool       `json:"force,omitempty"`
}

// ToRunInput converts to runner input.
func (r *IngestionRequest) ToRunInput() ingest.RunInput {
	return ingest.RunInput{
		Mission:  r.Mission,
		SourceID: r.SourceID,
		Currency: r.Currency,
		Grid:     r.Grid,
		Force:    r.Force,
	}
}
