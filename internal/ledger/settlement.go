package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/store"
)

// CreateSaleInput represents input for registering a sale.
type CreateSaleInput struct {
	Folio        string
	ClientID     string
	ClientName   string
	Items        []domain.LineItem
	FreightTotal decimal.Decimal
	Currency     string
	OccurredAt   *time.Time
}

// CreateSale registers a pending sale and updates the client's purchase
// aggregates. No ledger entries are booked until the sale settles.
func (e *Engine) CreateSale(ctx context.Context, input CreateSaleInput) (*domain.Sale, error) {
	if len(input.Items) == 0 {
		return nil, domain.ErrInvalidAmount
	}
	if input.FreightTotal.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	now := e.now().UTC()
	occurredAt := now
	if input.OccurredAt != nil {
		occurredAt = input.OccurredAt.UTC()
	}

	subtotal := decimal.Zero
	margin := decimal.Zero
	for _, item := range input.Items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) || item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidAmount
		}
		subtotal = subtotal.Add(item.Quantity.Mul(item.UnitPrice))
		lineMargin := item.Quantity.Mul(item.UnitPrice.Sub(item.UnitCost))
		if lineMargin.IsPositive() {
			margin = margin.Add(lineMargin)
		}
	}

	clientID := input.ClientID
	if clientID == "" {
		clientID = e.idGen.Generate()
	}

	sale := &domain.Sale{
		ID:           e.idGen.Generate(),
		Folio:        input.Folio,
		ClientID:     clientID,
		ClientName:   input.ClientName,
		Items:        input.Items,
		Subtotal:     subtotal,
		FreightTotal: input.FreightTotal,
		MarginTotal:  margin,
		Total:        subtotal.Add(input.FreightTotal),
		Currency:     input.Currency,
		Status:       domain.PaymentPending,
		PaidAmount:   decimal.Zero,
		OccurredAt:   occurredAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if sale.Folio == "" {
		sale.Folio = fmt.Sprintf("V-%s", sale.ID)
	}

	err := e.run(ctx, "create_sale", func(ctx context.Context, tx store.Tx) error {
		if err := e.sales.CreateTx(ctx, tx, sale); err != nil {
			return err
		}

		client, err := e.loadOrInitClient(ctx, tx, sale.ClientID, sale.ClientName, now)
		if err != nil {
			return err
		}
		client.TotalPurchased = client.TotalPurchased.Add(sale.Total)
		client.SalesCount++
		client.UpdatedAt = now
		return e.clients.SetTx(ctx, tx, client)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().Str("sale_id", sale.ID).Str("folio", sale.Folio).Str("total", sale.Total.String()).Msg("sale created")
	return sale, nil
}

// SettleSaleInput represents input for settling a sale.
type SettleSaleInput struct {
	SaleID     string
	AmountPaid decimal.Decimal
	OccurredAt *time.Time
}

// SettleSale books a pending sale into the ledger. The sale's total is
// fanned out across the freight, margin and principal pools (in that
// clamping priority when the configured components exceed the total),
// pool balances are credited, and any unpaid remainder becomes a Debt
// owed by the client. Settling a sale that is not pending fails.
func (e *Engine) SettleSale(ctx context.Context, input SettleSaleInput) (*domain.Sale, error) {
	if input.AmountPaid.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	now := e.now().UTC()
	occurredAt := now
	if input.OccurredAt != nil {
		occurredAt = input.OccurredAt.UTC()
	}

	var settled *domain.Sale
	err := e.run(ctx, "settle_sale", func(ctx context.Context, tx store.Tx) error {
		sale, err := e.sales.GetTx(ctx, tx, input.SaleID)
		if err != nil {
			return err
		}
		if sale.Status != domain.PaymentPending {
			return domain.ErrSaleFinal
		}
		if input.AmountPaid.GreaterThan(sale.Total) {
			return domain.ErrInvalidAmount
		}

		principal, freight, margin := splitSettlement(sale.Total, sale.FreightTotal, sale.MarginTotal)

		pools, err := e.loadPools(ctx, tx)
		if err != nil {
			return err
		}

		parts := []struct {
			accountID string
			kind      domain.EntryKind
			amount    decimal.Decimal
			concept   string
		}{
			{e.pools.Principal, domain.EntryIncome, principal, fmt.Sprintf("Venta %s", sale.Folio)},
			{e.pools.Freight, domain.EntryIncome, freight, fmt.Sprintf("Flete venta %s", sale.Folio)},
			{e.pools.Margin, domain.EntryCut, margin, fmt.Sprintf("Utilidad venta %s", sale.Folio)},
		}
		for _, part := range parts {
			if !part.amount.IsPositive() {
				continue
			}
			entry := &domain.LedgerEntry{
				ID:         e.idGen.Generate(),
				AccountID:  part.accountID,
				Kind:       part.kind,
				Amount:     part.amount,
				Currency:   sale.Currency,
				OccurredAt: occurredAt,
				Concept:    part.concept,
				SourceRef:  sale.ID,
				CreatedAt:  now,
			}
			if err := e.entries.CreateTx(ctx, tx, entry); err != nil {
				return err
			}
			account := pools[part.accountID]
			account.Balance = account.ApplyCredit(part.amount)
			account.UpdatedAt = now
		}
		for _, account := range pools {
			if err := e.accounts.PutTx(ctx, tx, account); err != nil {
				return err
			}
		}

		if input.AmountPaid.IsPositive() {
			if err := sale.ApplyPayment(input.AmountPaid); err != nil {
				return err
			}
		}

		outstanding := sale.Outstanding()
		if outstanding.IsPositive() {
			debt := &domain.Debt{
				ID:         e.idGen.Generate(),
				ClientID:   sale.ClientID,
				ClientName: sale.ClientName,
				SaleID:     sale.ID,
				SaleFolio:  sale.Folio,
				Original:   outstanding,
				Paid:       decimal.Zero,
				Remaining:  outstanding,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := e.debts.CreateTx(ctx, tx, debt); err != nil {
				return err
			}
			sale.DebtID = debt.ID

			client, err := e.loadOrInitClient(ctx, tx, sale.ClientID, sale.ClientName, now)
			if err != nil {
				return err
			}
			client.DebtTotal = client.DebtTotal.Add(outstanding)
			client.UpdatedAt = now
			if err := e.clients.SetTx(ctx, tx, client); err != nil {
				return err
			}
		}

		sale.UpdatedAt = now
		if err := e.sales.PutTx(ctx, tx, sale); err != nil {
			return err
		}

		settled = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.SalesSettled.Inc()
	e.log.Info().
		Str("sale_id", settled.ID).
		Str("status", string(settled.Status)).
		Str("outstanding", settled.Outstanding().String()).
		Msg("sale settled")
	return settled, nil
}

// DebtPaymentInput represents input for paying down a debt.
type DebtPaymentInput struct {
	DebtID     string
	Amount     decimal.Decimal
	OccurredAt *time.Time
}

// RecordDebtPayment applies a payment against a debt: the principal
// pool receives an income entry and a balance credit, the owning sale's
// paid amount advances, and the client's outstanding total shrinks, all
// in one transaction. The debt settles when its remainder reaches zero.
func (e *Engine) RecordDebtPayment(ctx context.Context, input DebtPaymentInput) (*domain.Debt, error) {
	now := e.now().UTC()
	occurredAt := now
	if input.OccurredAt != nil {
		occurredAt = input.OccurredAt.UTC()
	}

	var paid *domain.Debt
	err := e.run(ctx, "debt_payment", func(ctx context.Context, tx store.Tx) error {
		debt, err := e.debts.GetTx(ctx, tx, input.DebtID)
		if err != nil {
			return err
		}
		if err := debt.ApplyPayment(input.Amount); err != nil {
			return err
		}
		debt.UpdatedAt = now

		account, err := e.accounts.GetTx(ctx, tx, e.pools.Principal)
		if err != nil {
			return err
		}
		entry := &domain.LedgerEntry{
			ID:         e.idGen.Generate(),
			AccountID:  account.ID,
			Kind:       domain.EntryIncome,
			Amount:     input.Amount,
			Currency:   account.Currency,
			OccurredAt: occurredAt,
			Concept:    fmt.Sprintf("Abono adeudo venta %s", debt.SaleFolio),
			SourceRef:  debt.ID,
			CreatedAt:  now,
		}
		if err := e.entries.CreateTx(ctx, tx, entry); err != nil {
			return err
		}
		account.Balance = account.ApplyCredit(input.Amount)
		account.UpdatedAt = now
		if err := e.accounts.PutTx(ctx, tx, account); err != nil {
			return err
		}

		sale, err := e.sales.GetTx(ctx, tx, debt.SaleID)
		if err != nil {
			return err
		}
		if err := sale.ApplyPayment(input.Amount); err != nil {
			return err
		}
		sale.UpdatedAt = now
		if err := e.sales.PutTx(ctx, tx, sale); err != nil {
			return err
		}

		client, err := e.loadOrInitClient(ctx, tx, debt.ClientID, debt.ClientName, now)
		if err != nil {
			return err
		}
		client.DebtTotal = client.DebtTotal.Sub(input.Amount)
		client.UpdatedAt = now
		if err := e.clients.SetTx(ctx, tx, client); err != nil {
			return err
		}

		if err := e.debts.PutTx(ctx, tx, debt); err != nil {
			return err
		}

		paid = debt
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.DebtPayments.Inc()
	e.log.Info().
		Str("debt_id", paid.ID).
		Str("remaining", paid.Remaining.String()).
		Bool("settled", paid.Settled).
		Msg("debt payment recorded")
	return paid, nil
}

// CancelSale cancels a sale that has not reached a terminal state and
// voids its outstanding debt, if any. Ledger entries already booked for
// the sale are left intact; corrections are compensating entries, not
// rewrites.
func (e *Engine) CancelSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	now := e.now().UTC()

	var cancelled *domain.Sale
	err := e.run(ctx, "cancel_sale", func(ctx context.Context, tx store.Tx) error {
		sale, err := e.sales.GetTx(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if err := sale.Cancel(); err != nil {
			return err
		}
		sale.UpdatedAt = now

		if sale.DebtID != "" {
			debt, err := e.debts.GetTx(ctx, tx, sale.DebtID)
			if err != nil {
				return err
			}
			if !debt.Settled && !debt.Voided {
				forgiven := debt.Remaining
				if err := debt.Void(); err != nil {
					return err
				}
				debt.UpdatedAt = now
				if err := e.debts.PutTx(ctx, tx, debt); err != nil {
					return err
				}

				client, err := e.loadOrInitClient(ctx, tx, sale.ClientID, sale.ClientName, now)
				if err != nil {
					return err
				}
				client.DebtTotal = client.DebtTotal.Sub(forgiven)
				client.UpdatedAt = now
				if err := e.clients.SetTx(ctx, tx, client); err != nil {
					return err
				}
			}
		}

		if err := e.sales.PutTx(ctx, tx, sale); err != nil {
			return err
		}

		cancelled = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().Str("sale_id", cancelled.ID).Msg("sale cancelled")
	return cancelled, nil
}

// GetSale retrieves a sale by ID.
func (e *Engine) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	return e.sales.GetByID(ctx, id)
}

// ListSales lists sales.
func (e *Engine) ListSales(ctx context.Context, limit, offset int) ([]*domain.Sale, error) {
	return e.sales.List(ctx, clampLimit(limit), offset)
}

// GetDebt retrieves a debt by ID.
func (e *Engine) GetDebt(ctx context.Context, id string) (*domain.Debt, error) {
	return e.debts.GetByID(ctx, id)
}

// ListClientDebts lists debts owed by one client.
func (e *Engine) ListClientDebts(ctx context.Context, clientID string, limit int) ([]*domain.Debt, error) {
	return e.debts.ListByClient(ctx, clientID, clampLimit(limit))
}

// ListClients lists clients.
func (e *Engine) ListClients(ctx context.Context, limit, offset int) ([]*domain.Client, error) {
	return e.clients.List(ctx, clampLimit(limit), offset)
}

// splitSettlement divides a sale total into principal, freight and
// margin components. Freight is satisfied first, margin second, and
// the principal takes the remainder, so the three parts always sum to
// exactly the total even when the recorded components overshoot it.
func splitSettlement(total, freight, margin decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	if freight.GreaterThan(total) {
		freight = total
	}
	rest := total.Sub(freight)
	if margin.GreaterThan(rest) {
		margin = rest
	}
	principal := rest.Sub(margin)
	return principal, freight, margin
}

// loadPools reads the settlement accounts, deduplicating shared roles
// so a doubly-used account is read and written once.
func (e *Engine) loadPools(ctx context.Context, tx store.Tx) (map[string]*domain.Account, error) {
	pools := make(map[string]*domain.Account)
	for _, id := range []string{e.pools.Principal, e.pools.Freight, e.pools.Margin} {
		if _, ok := pools[id]; ok {
			continue
		}
		account, err := e.accounts.GetTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		pools[id] = account
	}
	return pools, nil
}

func (e *Engine) loadOrInitClient(ctx context.Context, tx store.Tx, id, name string, now time.Time) (*domain.Client, error) {
	client, err := e.clients.GetTx(ctx, tx, id)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	return &domain.Client{
		ID:             id,
		Name:           name,
		TotalPurchased: decimal.Zero,
		DebtTotal:      decimal.Zero,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
