package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chronos-erp/flowledger/internal/adapter/http/dto"
	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/ledger"
)

// DebtService defines the behavior needed by DebtHandler.
type DebtService interface {
	GetDebt(ctx context.Context, id string) (*domain.Debt, error)
	RecordDebtPayment(ctx context.Context, input ledger.DebtPaymentInput) (*domain.Debt, error)
	ListClientDebts(ctx context.Context, clientID string, limit int) ([]*domain.Debt, error)
	ListClients(ctx context.Context, limit, offset int) ([]*domain.Client, error)
}

// DebtHandler handles debt-related HTTP requests.
type DebtHandler struct {
	engine DebtService
}

// NewDebtHandler creates a new DebtHandler.
func NewDebtHandler(engine DebtService) *DebtHandler {
	return &DebtHandler{engine: engine}
}

// Get retrieves a debt by ID.
func (h *DebtHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing debt ID", "")
		return
	}

	debt, err := h.engine.GetDebt(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get debt", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DebtFromDomain(debt))
}

// RecordPayment applies a payment against a debt.
func (h *DebtHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing debt ID", "")
		return
	}

	var req dto.DebtPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	debt, err := h.engine.RecordDebtPayment(r.Context(), ledger.DebtPaymentInput{
		DebtID:     id,
		Amount:     req.Amount,
		OccurredAt: req.OccurredAt,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DebtFromDomain(debt))
}

// ListByClient lists debts owed by one client.
func (h *DebtHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "missing client ID", "")
		return
	}
	limit := parseIntQuery(r, "limit", 100)

	debts, err := h.engine.ListClientDebts(r.Context(), clientID, limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list debts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListDebtsResponse{
		Debts: dto.DebtsFromDomain(debts),
		Total: int64(len(debts)),
	})
}

// ListClients lists clients.
func (h *DebtHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	clients, err := h.engine.ListClients(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list clients", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListClientsResponse{
		Clients: dto.ClientsFromDomain(clients),
		Total:   int64(len(clients)),
	})
}
