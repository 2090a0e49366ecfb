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

// SaleService defines the behavior needed by SaleHandler.
type SaleService interface {
	CreateSale(ctx context.Context, input ledger.CreateSaleInput) (*domain.Sale, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	ListSales(ctx context.Context, limit, offset int) ([]*domain.Sale, error)
	SettleSale(ctx context.Context, input ledger.SettleSaleInput) (*domain.Sale, error)
	CancelSale(ctx context.Context, id string) (*domain.Sale, error)
}

// SaleHandler handles sale-related HTTP requests.
type SaleHandler struct {
	engine SaleService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(engine SaleService) *SaleHandler {
	return &SaleHandler{engine: engine}
}

// Create registers a new sale.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "sale needs at least one item", "")
		return
	}

	sale, err := h.engine.CreateSale(r.Context(), req.ToEngineInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create sale", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SaleFromDomain(sale))
}

// Get retrieves a sale by ID.
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing sale ID", "")
		return
	}

	sale, err := h.engine.GetSale(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get sale", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SaleFromDomain(sale))
}

// List lists sales.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	sales, err := h.engine.ListSales(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sales", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListSalesResponse{
		Sales: dto.SalesFromDomain(sales),
		Total: int64(len(sales)),
	})
}

// Settle books a pending sale into the ledger.
func (h *SaleHandler) Settle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing sale ID", "")
		return
	}

	var req dto.SettleSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	sale, err := h.engine.SettleSale(r.Context(), ledger.SettleSaleInput{
		SaleID:     id,
		AmountPaid: req.AmountPaid,
		OccurredAt: req.OccurredAt,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to settle sale", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SaleFromDomain(sale))
}

// Cancel cancels a sale and voids its outstanding debt.
func (h *SaleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing sale ID", "")
		return
	}

	sale, err := h.engine.CancelSale(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to cancel sale", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SaleFromDomain(sale))
}
