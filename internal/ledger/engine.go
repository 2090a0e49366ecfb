// Package ledger implements the transactional money-movement engine:
// transfers between accounts, sale settlement fan-out and debt
// payments, each committed as one atomic document store transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/chronos-erp/flowledger/internal/adapter/repository/docstore"
	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/infrastructure/metrics"
	"github.com/chronos-erp/flowledger/internal/store"
)

// SettlementAccounts names the pool accounts a sale settlement fans out
// into. The same account may serve more than one role.
type SettlementAccounts struct {
	Principal string
	Freight   string
	Margin    string
}

// Config configures the engine.
type Config struct {
	Store      store.Store
	IDGen      docstore.IDGenerator
	Pools      SettlementAccounts
	MaxRetries int
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
}

// Engine executes ledger operations. Every operation runs inside one
// store transaction and is retried a bounded number of times when it
// loses an optimistic concurrency race.
type Engine struct {
	store      store.Store
	accounts   *docstore.AccountRepository
	entries    *docstore.EntryRepository
	transfers  *docstore.TransferRepository
	sales      *docstore.SaleRepository
	debts      *docstore.DebtRepository
	clients    *docstore.ClientRepository
	idGen      docstore.IDGenerator
	pools      SettlementAccounts
	maxRetries int
	metrics    *metrics.Metrics
	log        zerolog.Logger
	now        func() time.Time
}

// New creates an Engine.
func New(cfg Config) *Engine {
	if cfg.IDGen == nil {
		cfg.IDGen = docstore.NewULIDGenerator()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewWith(prometheus.NewRegistry())
	}

	return &Engine{
		store:      cfg.Store,
		accounts:   docstore.NewAccountRepository(cfg.Store),
		entries:    docstore.NewEntryRepository(cfg.Store),
		transfers:  docstore.NewTransferRepository(cfg.Store),
		sales:      docstore.NewSaleRepository(cfg.Store),
		debts:      docstore.NewDebtRepository(cfg.Store),
		clients:    docstore.NewClientRepository(cfg.Store),
		idGen:      cfg.IDGen,
		pools:      cfg.Pools,
		maxRetries: cfg.MaxRetries,
		metrics:    cfg.Metrics,
		log:        cfg.Logger,
		now:        time.Now,
	}
}

// run executes fn as one store transaction, retrying conflicts with
// exponential backoff up to maxRetries attempts.
func (e *Engine) run(ctx context.Context, operation string, fn func(ctx context.Context, tx store.Tx) error) error {
	start := e.now()
	err := e.withRetry(ctx, operation, fn)
	e.metrics.EngineDuration.WithLabelValues(operation).Observe(e.now().Sub(start).Seconds())
	if err != nil {
		e.metrics.EngineErrors.WithLabelValues(operation).Inc()
	}
	return err
}

func (e *Engine) withRetry(ctx context.Context, operation string, fn func(ctx context.Context, tx store.Tx) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 1 * time.Second
	b.MaxElapsedTime = 10 * time.Second

	retries := 0

	return backoff.Retry(func() error {
		err := e.store.RunTransaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrTxConflict) {
			return backoff.Permanent(err)
		}

		e.metrics.EngineConflicts.Inc()
		retries++
		if retries > e.maxRetries {
			return backoff.Permanent(fmt.Errorf("%w: %s failed %d times: %v",
				domain.ErrConcurrencyExhausted, operation, retries, err))
		}

		e.log.Warn().
			Str("operation", operation).
			Int("retry", retries).
			Msg("transaction conflict, retrying")
		return err
	}, backoff.WithContext(b, ctx))
}

// CreateAccountInput represents input for provisioning an account.
type CreateAccountInput struct {
	ID             string
	Name           string
	Currency       string
	OpeningBalance decimal.Decimal
}

// CreateAccount provisions a new account. A positive opening balance is
// booked as an opening income entry so the account's balance stays
// derivable from its entries.
func (e *Engine) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if input.ID == "" {
		input.ID = e.idGen.Generate()
	}
	if input.OpeningBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	now := e.now().UTC()
	account := &domain.Account{
		ID:        input.ID,
		Name:      input.Name,
		Currency:  input.Currency,
		Balance:   input.OpeningBalance,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := e.run(ctx, "create_account", func(ctx context.Context, tx store.Tx) error {
		if err := e.accounts.CreateTx(ctx, tx, account); err != nil {
			return err
		}
		if input.OpeningBalance.IsPositive() {
			entry := &domain.LedgerEntry{
				ID:         e.idGen.Generate(),
				AccountID:  account.ID,
				Kind:       domain.EntryIncome,
				Amount:     input.OpeningBalance,
				Currency:   account.Currency,
				OccurredAt: now,
				Concept:    "Saldo inicial",
				CreatedAt:  now,
			}
			if err := e.entries.CreateTx(ctx, tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().Str("account_id", account.ID).Str("name", account.Name).Msg("account created")
	return account, nil
}

// GetAccount retrieves an account by ID.
func (e *Engine) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return e.accounts.GetByID(ctx, id)
}

// ListAccounts lists accounts.
func (e *Engine) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	return e.accounts.List(ctx, clampLimit(limit), offset)
}

// ListEntries lists ledger entries for one account.
func (e *Engine) ListEntries(ctx context.Context, accountID string, limit int) ([]*domain.LedgerEntry, error) {
	return e.entries.ListByAccount(ctx, accountID, clampLimit(limit))
}

// TransferInput represents input for moving money between accounts.
type TransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Reason        string
	Overdraft     bool
	OccurredAt    *time.Time
}

// Transfer atomically moves Amount from one account to another,
// recording an expense entry on the source and an income entry on the
// destination in the same transaction as both balance updates.
func (e *Engine) Transfer(ctx context.Context, input TransferInput) (*domain.Transfer, error) {
	now := e.now().UTC()
	occurredAt := now
	if input.OccurredAt != nil {
		occurredAt = input.OccurredAt.UTC()
	}

	transfer := &domain.Transfer{
		ID:            e.idGen.Generate(),
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Amount:        input.Amount,
		Reason:        input.Reason,
		Overdraft:     input.Overdraft,
		OccurredAt:    occurredAt,
		CreatedAt:     now,
	}
	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	err := e.run(ctx, "transfer", func(ctx context.Context, tx store.Tx) error {
		from, err := e.accounts.GetTx(ctx, tx, input.FromAccountID)
		if err != nil {
			return err
		}
		to, err := e.accounts.GetTx(ctx, tx, input.ToAccountID)
		if err != nil {
			return err
		}

		if from.Currency != to.Currency {
			return domain.ErrCurrencyMismatch
		}
		if err := from.ValidateDebit(input.Amount, input.Overdraft); err != nil {
			return err
		}
		if err := to.ValidateCredit(input.Amount); err != nil {
			return err
		}

		if err := e.transfers.CreateTx(ctx, tx, transfer); err != nil {
			return err
		}

		outEntry := &domain.LedgerEntry{
			ID:         e.idGen.Generate(),
			AccountID:  from.ID,
			Kind:       domain.EntryExpense,
			Amount:     input.Amount,
			Currency:   from.Currency,
			OccurredAt: occurredAt,
			Concept:    fmt.Sprintf("Transferencia a %s", to.Name),
			SourceRef:  transfer.ID,
			CreatedAt:  now,
		}
		inEntry := &domain.LedgerEntry{
			ID:         e.idGen.Generate(),
			AccountID:  to.ID,
			Kind:       domain.EntryIncome,
			Amount:     input.Amount,
			Currency:   to.Currency,
			OccurredAt: occurredAt,
			Concept:    fmt.Sprintf("Transferencia de %s", from.Name),
			SourceRef:  transfer.ID,
			CreatedAt:  now,
		}
		if err := e.entries.CreateTx(ctx, tx, outEntry); err != nil {
			return err
		}
		if err := e.entries.CreateTx(ctx, tx, inEntry); err != nil {
			return err
		}

		from.Balance = from.ApplyDebit(input.Amount)
		from.UpdatedAt = now
		to.Balance = to.ApplyCredit(input.Amount)
		to.UpdatedAt = now

		if err := e.accounts.PutTx(ctx, tx, from); err != nil {
			return err
		}
		return e.accounts.PutTx(ctx, tx, to)
	})
	if err != nil {
		return nil, err
	}

	e.metrics.TransfersCreated.Inc()
	e.log.Info().
		Str("transfer_id", transfer.ID).
		Str("from", transfer.FromAccountID).
		Str("to", transfer.ToAccountID).
		Str("amount", transfer.Amount.String()).
		Msg("transfer committed")
	return transfer, nil
}

// GetTransfer retrieves a transfer by ID.
func (e *Engine) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return e.transfers.GetByID(ctx, id)
}

// ListTransfers lists transfers.
func (e *Engine) ListTransfers(ctx context.Context, limit, offset int) ([]*domain.Transfer, error) {
	return e.transfers.List(ctx, clampLimit(limit), offset)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
