package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a counterparty that buys on account.
type Client struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	TotalPurchased decimal.Decimal `json:"total_purchased"`
	DebtTotal      decimal.Decimal `json:"debt_total"`
	SalesCount     int             `json:"sales_count"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// InventoryItem is a stocked product.
type InventoryItem struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	UpdatedAt time.Time       `json:"updated_at"`
}
