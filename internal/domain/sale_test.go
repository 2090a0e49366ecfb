package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func newSale(total int64) *Sale {
	return &Sale{
		ID:         "sale-1",
		Total:      decimal.NewFromInt(total),
		PaidAmount: decimal.Zero,
		Status:     PaymentPending,
	}
}

func TestSaleApplyPayment(t *testing.T) {
	tests := []struct {
		name       string
		payments   []int64
		wantStatus PaymentStatus
		wantErr    error
	}{
		{name: "partial payment", payments: []int64{600}, wantStatus: PaymentPartial},
		{name: "full payment", payments: []int64{1000}, wantStatus: PaymentPaid},
		{name: "two payments reach paid", payments: []int64{600, 400}, wantStatus: PaymentPaid},
		{name: "overpayment rejected", payments: []int64{1200}, wantStatus: PaymentPending, wantErr: ErrInvalidAmount},
		{name: "zero payment rejected", payments: []int64{0}, wantStatus: PaymentPending, wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSale(1000)

			var err error
			for _, p := range tt.payments {
				err = s.ApplyPayment(decimal.NewFromInt(p))
			}

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if s.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", s.Status, tt.wantStatus)
			}
		})
	}
}

func TestSalePaidIsFinal(t *testing.T) {
	s := newSale(100)
	if err := s.ApplyPayment(decimal.NewFromInt(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.ApplyPayment(decimal.NewFromInt(1)); err != ErrSaleFinal {
		t.Errorf("payment on paid sale: expected ErrSaleFinal, got %v", err)
	}
	if err := s.Cancel(); err != ErrSaleFinal {
		t.Errorf("cancel on paid sale: expected ErrSaleFinal, got %v", err)
	}
}

func TestSaleCancel(t *testing.T) {
	s := newSale(100)
	if err := s.Cancel(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status != PaymentCancelled {
		t.Errorf("status = %s, want cancelled", s.Status)
	}

	if err := s.ApplyPayment(decimal.NewFromInt(10)); err != ErrSaleFinal {
		t.Errorf("payment on cancelled sale: expected ErrSaleFinal, got %v", err)
	}
}

func TestDebtApplyPayment(t *testing.T) {
	d := &Debt{
		Original:  decimal.NewFromInt(400),
		Paid:      decimal.Zero,
		Remaining: decimal.NewFromInt(400),
	}

	if err := d.ApplyPayment(decimal.NewFromInt(150)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Settled {
		t.Error("debt settled too early")
	}

	if err := d.ApplyPayment(decimal.NewFromInt(250)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Settled {
		t.Error("debt should be settled")
	}
	if !d.Remaining.IsZero() {
		t.Errorf("remaining = %s, want 0", d.Remaining)
	}

	if err := d.ApplyPayment(decimal.NewFromInt(1)); err != ErrDebtSettled {
		t.Errorf("payment on settled debt: expected ErrDebtSettled, got %v", err)
	}
}

func TestAccountValidateDebit(t *testing.T) {
	acc := &Account{ID: "a", Balance: decimal.NewFromInt(100), Active: true}

	if err := acc.ValidateDebit(decimal.NewFromInt(100), false); err != nil {
		t.Errorf("exact balance debit: unexpected error %v", err)
	}
	if err := acc.ValidateDebit(decimal.NewFromInt(101), false); err != ErrInsufficientFunds {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
	if err := acc.ValidateDebit(decimal.NewFromInt(101), true); err != nil {
		t.Errorf("overdraft debit: unexpected error %v", err)
	}

	acc.Active = false
	if err := acc.ValidateDebit(decimal.NewFromInt(1), false); err != ErrAccountInactive {
		t.Errorf("expected ErrAccountInactive, got %v", err)
	}
}
