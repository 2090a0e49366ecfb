package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/ledger"
	"github.com/chronos-erp/flowledger/internal/store/memory"
)

func newTestEngine(t *testing.T) (*ledger.Engine, *memory.Store) {
	t.Helper()
	mem := memory.New()
	engine := ledger.New(ledger.Config{
		Store: mem,
		Pools: ledger.SettlementAccounts{
			Principal: "boveda_monte",
			Freight:   "flete_sur",
			Margin:    "utilidades",
		},
		MaxRetries: 3,
		Logger:     zerolog.Nop(),
	})
	return engine, mem
}

func mustCreateAccount(t *testing.T, engine *ledger.Engine, id string, opening int64) *domain.Account {
	t.Helper()
	account, err := engine.CreateAccount(context.Background(), ledger.CreateAccountInput{
		ID:             id,
		Name:           id,
		Currency:       "USD",
		OpeningBalance: decimal.NewFromInt(opening),
	})
	if err != nil {
		t.Fatalf("create account %s: %v", id, err)
	}
	return account
}

func balance(t *testing.T, engine *ledger.Engine, id string) decimal.Decimal {
	t.Helper()
	account, err := engine.GetAccount(context.Background(), id)
	if err != nil {
		t.Fatalf("get account %s: %v", id, err)
	}
	return account.Balance
}

func TestEngine_Transfer(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)
	mustCreateAccount(t, engine, "source", 500)
	mustCreateAccount(t, engine, "dest", 0)

	transfer, err := engine.Transfer(ctx, ledger.TransferInput{
		FromAccountID: "source",
		ToAccountID:   "dest",
		Amount:        decimal.NewFromInt(200),
		Reason:        "weekly sweep",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if got := balance(t, engine, "source"); !got.Equal(decimal.NewFromInt(300)) {
		t.Errorf("source balance: expected 300, got %s", got)
	}
	if got := balance(t, engine, "dest"); !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("dest balance: expected 200, got %s", got)
	}

	// Both sides of the movement must be visible as entries.
	sourceEntries, err := engine.ListEntries(ctx, "source", 10)
	if err != nil {
		t.Fatalf("list source entries: %v", err)
	}
	var foundExpense bool
	for _, entry := range sourceEntries {
		if entry.SourceRef == transfer.ID && entry.Kind == domain.EntryExpense && entry.Amount.Equal(transfer.Amount) {
			foundExpense = true
		}
	}
	if !foundExpense {
		t.Error("expected expense entry on source referencing the transfer")
	}

	destEntries, err := engine.ListEntries(ctx, "dest", 10)
	if err != nil {
		t.Fatalf("list dest entries: %v", err)
	}
	var foundIncome bool
	for _, entry := range destEntries {
		if entry.SourceRef == transfer.ID && entry.Kind == domain.EntryIncome && entry.Amount.Equal(transfer.Amount) {
			foundIncome = true
		}
	}
	if !foundIncome {
		t.Error("expected income entry on dest referencing the transfer")
	}
}

func TestEngine_TransferValidation(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)
	mustCreateAccount(t, engine, "source", 300)
	mustCreateAccount(t, engine, "dest", 0)

	tests := []struct {
		name    string
		input   ledger.TransferInput
		wantErr error
	}{
		{
			name: "insufficient funds",
			input: ledger.TransferInput{
				FromAccountID: "source", ToAccountID: "dest",
				Amount: decimal.NewFromInt(600),
			},
			wantErr: domain.ErrInsufficientFunds,
		},
		{
			name: "same account",
			input: ledger.TransferInput{
				FromAccountID: "source", ToAccountID: "source",
				Amount: decimal.NewFromInt(10),
			},
			wantErr: domain.ErrSameAccount,
		},
		{
			name: "zero amount",
			input: ledger.TransferInput{
				FromAccountID: "source", ToAccountID: "dest",
				Amount: decimal.Zero,
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "unknown destination",
			input: ledger.TransferInput{
				FromAccountID: "source", ToAccountID: "missing",
				Amount: decimal.NewFromInt(10),
			},
			wantErr: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Transfer(ctx, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	// A rejected transfer must leave both balances untouched.
	if got := balance(t, engine, "source"); !got.Equal(decimal.NewFromInt(300)) {
		t.Errorf("source balance changed after rejected transfers: %s", got)
	}
	if got := balance(t, engine, "dest"); !got.IsZero() {
		t.Errorf("dest balance changed after rejected transfers: %s", got)
	}
}

func TestEngine_TransferOverdraft(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)
	mustCreateAccount(t, engine, "source", 100)
	mustCreateAccount(t, engine, "dest", 0)

	_, err := engine.Transfer(ctx, ledger.TransferInput{
		FromAccountID: "source",
		ToAccountID:   "dest",
		Amount:        decimal.NewFromInt(250),
		Overdraft:     true,
	})
	if err != nil {
		t.Fatalf("overdraft transfer: %v", err)
	}

	if got := balance(t, engine, "source"); !got.Equal(decimal.NewFromInt(-150)) {
		t.Errorf("source balance: expected -150, got %s", got)
	}
}

func TestEngine_CreateAccountDuplicate(t *testing.T) {
	engine, _ := newTestEngine(t)
	mustCreateAccount(t, engine, "source", 0)

	_, err := engine.CreateAccount(context.Background(), ledger.CreateAccountInput{ID: "source", Name: "dup", Currency: "USD"})
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func settlementScenario(t *testing.T, engine *ledger.Engine) *domain.Sale {
	t.Helper()
	ctx := context.Background()
	mustCreateAccount(t, engine, "boveda_monte", 0)
	mustCreateAccount(t, engine, "flete_sur", 0)
	mustCreateAccount(t, engine, "utilidades", 0)

	sale, err := engine.CreateSale(ctx, ledger.CreateSaleInput{
		Folio:      "V-0001",
		ClientID:   "cl-juan",
		ClientName: "Juan",
		Items: []domain.LineItem{
			{Name: "Producto estándar", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(900), UnitCost: decimal.NewFromInt(750)},
		},
		FreightTotal: decimal.NewFromInt(100),
		Currency:     "USD",
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if !sale.Total.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("sale total: expected 1000, got %s", sale.Total)
	}
	if !sale.MarginTotal.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("sale margin: expected 150, got %s", sale.MarginTotal)
	}
	return sale
}

func TestEngine_SettleSalePartialPayment(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)
	sale := settlementScenario(t, engine)

	settled, err := engine.SettleSale(ctx, ledger.SettleSaleInput{
		SaleID:     sale.ID,
		AmountPaid: decimal.NewFromInt(600),
	})
	if err != nil {
		t.Fatalf("settle sale: %v", err)
	}

	if settled.Status != domain.PaymentPartial {
		t.Errorf("expected partial status, got %s", settled.Status)
	}
	if !settled.PaidAmount.Equal(decimal.NewFromInt(600)) {
		t.Errorf("paid amount: expected 600, got %s", settled.PaidAmount)
	}
	if settled.DebtID == "" {
		t.Fatal("expected a debt for the unpaid remainder")
	}

	// Full total fans out across the pools regardless of how much cash
	// actually arrived: 1000 = 750 principal + 100 freight + 150 margin.
	if got := balance(t, engine, "boveda_monte"); !got.Equal(decimal.NewFromInt(750)) {
		t.Errorf("principal pool: expected 750, got %s", got)
	}
	if got := balance(t, engine, "flete_sur"); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("freight pool: expected 100, got %s", got)
	}
	if got := balance(t, engine, "utilidades"); !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("margin pool: expected 150, got %s", got)
	}

	debt, err := engine.GetDebt(ctx, settled.DebtID)
	if err != nil {
		t.Fatalf("get debt: %v", err)
	}
	if !debt.Remaining.Equal(decimal.NewFromInt(400)) {
		t.Errorf("debt remaining: expected 400, got %s", debt.Remaining)
	}
	if debt.SaleID != sale.ID || debt.ClientID != "cl-juan" {
		t.Errorf("debt not linked to sale and client: %+v", debt)
	}

	// Settling twice must fail without touching the pools again.
	_, err = engine.SettleSale(ctx, ledger.SettleSaleInput{SaleID: sale.ID, AmountPaid: decimal.NewFromInt(400)})
	if !errors.Is(err, domain.ErrSaleFinal) {
		t.Fatalf("expected ErrSaleFinal on second settlement, got %v", err)
	}
	if got := balance(t, engine, "boveda_monte"); !got.Equal(decimal.NewFromInt(750)) {
		t.Errorf("principal pool changed after rejected settlement: %s", got)
	}
}

func TestEngine_SettleSaleFullPayment(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)
	sale := settlementScenario(t, engine)

	settled, err := engine.SettleSale(ctx, ledger.SettleSaleInput{
		SaleID:     sale.ID,
		AmountPaid: decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatalf("settle sale: %v", err)
	}

	if settled.Status != domain.PaymentPaid {
		t.Errorf("expected paid status, got %s", settled.Status)
	}
	if settled.DebtID != "" {
		t.Error("fully paid sale must not create a debt")
	}
}

func TestEngine_RecordDebtPayment(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)
	sale := settlementScenario(t, engine)

	settled, err := engine.SettleSale(ctx, ledger.SettleSaleInput{SaleID: sale.ID, AmountPaid: decimal.NewFromInt(600)})
	if err != nil {
		t.Fatalf("settle sale: %v", err)
	}

	debt, err := engine.RecordDebtPayment(ctx, ledger.DebtPaymentInput{
		DebtID: settled.DebtID,
		Amount: decimal.NewFromInt(400),
	})
	if err != nil {
		t.Fatalf("debt payment: %v", err)
	}

	if !debt.Settled {
		t.Error("expected debt settled after paying the remainder")
	}
	if !debt.Remaining.IsZero() {
		t.Errorf("debt remaining: expected 0, got %s", debt.Remaining)
	}

	// The cash lands in the principal pool: 750 + 400.
	if got := balance(t, engine, "boveda_monte"); !got.Equal(decimal.NewFromInt(1150)) {
		t.Errorf("principal pool: expected 1150, got %s", got)
	}

	paidSale, err := engine.GetSale(ctx, sale.ID)
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if paidSale.Status != domain.PaymentPaid {
		t.Errorf("expected sale paid, got %s", paidSale.Status)
	}

	// A settled debt accepts no more payments.
	_, err = engine.RecordDebtPayment(ctx, ledger.DebtPaymentInput{DebtID: debt.ID, Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, domain.ErrDebtSettled) {
		t.Fatalf("expected ErrDebtSettled, got %v", err)
	}
}

func TestEngine_DebtOverpaymentRejected(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)
	sale := settlementScenario(t, engine)

	settled, err := engine.SettleSale(ctx, ledger.SettleSaleInput{SaleID: sale.ID, AmountPaid: decimal.NewFromInt(600)})
	if err != nil {
		t.Fatalf("settle sale: %v", err)
	}

	_, err = engine.RecordDebtPayment(ctx, ledger.DebtPaymentInput{
		DebtID: settled.DebtID,
		Amount: decimal.NewFromInt(500),
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	// Rejected payment leaves the pool untouched.
	if got := balance(t, engine, "boveda_monte"); !got.Equal(decimal.NewFromInt(750)) {
		t.Errorf("principal pool changed after rejected payment: %s", got)
	}
}

func TestEngine_CancelSaleVoidsDebt(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)
	sale := settlementScenario(t, engine)

	settled, err := engine.SettleSale(ctx, ledger.SettleSaleInput{SaleID: sale.ID, AmountPaid: decimal.NewFromInt(600)})
	if err != nil {
		t.Fatalf("settle sale: %v", err)
	}

	cancelled, err := engine.CancelSale(ctx, sale.ID)
	if err != nil {
		t.Fatalf("cancel sale: %v", err)
	}
	if cancelled.Status != domain.PaymentCancelled {
		t.Errorf("expected cancelled status, got %s", cancelled.Status)
	}

	debt, err := engine.GetDebt(ctx, settled.DebtID)
	if err != nil {
		t.Fatalf("get debt: %v", err)
	}
	if !debt.Voided {
		t.Error("expected debt voided with its sale")
	}
	if !debt.Remaining.IsZero() {
		t.Errorf("voided debt remaining: expected 0, got %s", debt.Remaining)
	}

	_, err = engine.CancelSale(ctx, sale.ID)
	if !errors.Is(err, domain.ErrSaleFinal) {
		t.Fatalf("expected ErrSaleFinal on double cancel, got %v", err)
	}
}

func TestEngine_RetriesConflictsThenSucceeds(t *testing.T) {
	ctx := context.Background()
	engine, mem := newTestEngine(t)
	mustCreateAccount(t, engine, "source", 500)
	mustCreateAccount(t, engine, "dest", 0)

	mem.FailNextCommits(2)
	_, err := engine.Transfer(ctx, ledger.TransferInput{
		FromAccountID: "source",
		ToAccountID:   "dest",
		Amount:        decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("transfer should survive two conflicts: %v", err)
	}
	if got := balance(t, engine, "dest"); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("dest balance: expected 100, got %s", got)
	}
}

func TestEngine_RetriesExhausted(t *testing.T) {
	ctx := context.Background()
	engine, mem := newTestEngine(t)
	mustCreateAccount(t, engine, "source", 500)
	mustCreateAccount(t, engine, "dest", 0)

	mem.FailNextCommits(10)
	_, err := engine.Transfer(ctx, ledger.TransferInput{
		FromAccountID: "source",
		ToAccountID:   "dest",
		Amount:        decimal.NewFromInt(100),
	})
	if !errors.Is(err, domain.ErrConcurrencyExhausted) {
		t.Fatalf("expected ErrConcurrencyExhausted, got %v", err)
	}
	if got := balance(t, engine, "dest"); !got.IsZero() {
		t.Errorf("dest balance changed after exhausted retries: %s", got)
	}
}
