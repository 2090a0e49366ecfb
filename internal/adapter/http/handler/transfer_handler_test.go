package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/chronos-erp/flowledger/internal/adapter/http/dto"
	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/ledger"
)

type transferServiceStub struct {
	transferFn func(ctx context.Context, input ledger.TransferInput) (*domain.Transfer, error)
	getFn      func(ctx context.Context, id string) (*domain.Transfer, error)
	listFn     func(ctx context.Context, limit, offset int) ([]*domain.Transfer, error)
}

func (s *transferServiceStub) Transfer(ctx context.Context, input ledger.TransferInput) (*domain.Transfer, error) {
	return s.transferFn(ctx, input)
}

func (s *transferServiceStub) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return s.getFn(ctx, id)
}

func (s *transferServiceStub) ListTransfers(ctx context.Context, limit, offset int) ([]*domain.Transfer, error) {
	return s.listFn(ctx, limit, offset)
}

func TestTransferHandler_Create_Success(t *testing.T) {
	transfer := &domain.Transfer{ID: "tx-1", Amount: decimal.NewFromInt(100)}
	var captured ledger.TransferInput

	h := NewTransferHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, input ledger.TransferInput) (*domain.Transfer, error) {
			captured = input
			return transfer, nil
		},
	})

	body, _ := json.Marshal(dto.CreateTransferRequest{
		FromAccountID: "boveda_monte",
		ToAccountID:   "utilidades",
		Amount:        decimal.NewFromInt(100),
		Reason:        "corte semanal",
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if captured.FromAccountID != "boveda_monte" || captured.ToAccountID != "utilidades" {
		t.Errorf("unexpected input: %+v", captured)
	}
	if !captured.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unexpected amount: %s", captured.Amount)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "tx-1" {
		t.Errorf("unexpected response id: %s", resp.ID)
	}
}

func TestTransferHandler_Create_InvalidBody(t *testing.T) {
	h := NewTransferHandler(&transferServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Create_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusBadRequest},
		{"same account", domain.ErrSameAccount, http.StatusBadRequest},
		{"currency mismatch", domain.ErrCurrencyMismatch, http.StatusBadRequest},
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"retries exhausted", domain.ErrConcurrencyExhausted, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTransferHandler(&transferServiceStub{
				transferFn: func(ctx context.Context, input ledger.TransferInput) (*domain.Transfer, error) {
					return nil, tt.err
				},
			})

			body, _ := json.Marshal(dto.CreateTransferRequest{
				FromAccountID: "a", ToAccountID: "b", Amount: decimal.NewFromInt(10),
			})
			req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}
