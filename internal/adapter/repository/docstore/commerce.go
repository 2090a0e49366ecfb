package docstore

import (
	"context"

	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/store"
)

// SaleRepository persists sales.
type SaleRepository struct {
	store store.Store
}

func NewSaleRepository(s store.Store) *SaleRepository {
	return &SaleRepository{store: s}
}

func (r *SaleRepository) CreateTx(ctx context.Context, tx store.Tx, sale *domain.Sale) error {
	data, err := encode(sale)
	if err != nil {
		return err
	}
	return tx.Set(ctx, CollSales, sale.ID, data)
}

func (r *SaleRepository) GetByID(ctx context.Context, id string) (*domain.Sale, error) {
	doc, err := r.store.Get(ctx, CollSales, id)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrSaleNotFound)
	}

	sale := &domain.Sale{}
	if err := decode(doc, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *SaleRepository) GetTx(ctx context.Context, tx store.Tx, id string) (*domain.Sale, error) {
	doc, err := tx.Get(ctx, CollSales, id)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrSaleNotFound)
	}

	sale := &domain.Sale{}
	if err := decode(doc, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *SaleRepository) PutTx(ctx context.Context, tx store.Tx, sale *domain.Sale) error {
	data, err := encode(sale)
	if err != nil {
		return err
	}
	return tx.Update(ctx, CollSales, sale.ID, data)
}

func (r *SaleRepository) List(ctx context.Context, limit, offset int) ([]*domain.Sale, error) {
	docs, err := r.store.List(ctx, CollSales, limit, offset)
	if err != nil {
		return nil, err
	}

	sales := make([]*domain.Sale, 0, len(docs))
	for _, doc := range docs {
		sale := &domain.Sale{}
		if err := decode(doc, sale); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

// DebtRepository persists debts.
type DebtRepository struct {
	store store.Store
}

func NewDebtRepository(s store.Store) *DebtRepository {
	return &DebtRepository{store: s}
}

func (r *DebtRepository) CreateTx(ctx context.Context, tx store.Tx, debt *domain.Debt) error {
	data, err := encode(debt)
	if err != nil {
		return err
	}
	return tx.Set(ctx, CollDebts, debt.ID, data)
}

func (r *DebtRepository) GetByID(ctx context.Context, id string) (*domain.Debt, error) {
	doc, err := r.store.Get(ctx, CollDebts, id)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrDebtNotFound)
	}

	debt := &domain.Debt{}
	if err := decode(doc, debt); err != nil {
		return nil, err
	}
	return debt, nil
}

func (r *DebtRepository) GetTx(ctx context.Context, tx store.Tx, id string) (*domain.Debt, error) {
	doc, err := tx.Get(ctx, CollDebts, id)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrDebtNotFound)
	}

	debt := &domain.Debt{}
	if err := decode(doc, debt); err != nil {
		return nil, err
	}
	return debt, nil
}

func (r *DebtRepository) PutTx(ctx context.Context, tx store.Tx, debt *domain.Debt) error {
	data, err := encode(debt)
	if err != nil {
		return err
	}
	return tx.Update(ctx, CollDebts, debt.ID, data)
}

// ListByClient returns up to limit debts owed by one client.
func (r *DebtRepository) ListByClient(ctx context.Context, clientID string, limit int) ([]*domain.Debt, error) {
	if limit <= 0 {
		limit = 100
	}

	var debts []*domain.Debt
	err := scan(ctx, r.store, CollDebts, func(doc *store.Document) (bool, error) {
		debt := &domain.Debt{}
		if err := decode(doc, debt); err != nil {
			return false, err
		}
		if debt.ClientID == clientID {
			debts = append(debts, debt)
		}
		return len(debts) < limit, nil
	})
	if err != nil {
		return nil, err
	}
	return debts, nil
}

// ClientRepository persists clients.
type ClientRepository struct {
	store store.Store
}

func NewClientRepository(s store.Store) *ClientRepository {
	return &ClientRepository{store: s}
}

func (r *ClientRepository) GetTx(ctx context.Context, tx store.Tx, id string) (*domain.Client, error) {
	doc, err := tx.Get(ctx, CollClients, id)
	if err != nil {
		return nil, err
	}

	client := &domain.Client{}
	if err := decode(doc, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (r *ClientRepository) SetTx(ctx context.Context, tx store.Tx, client *domain.Client) error {
	data, err := encode(client)
	if err != nil {
		return err
	}
	return tx.Set(ctx, CollClients, client.ID, data)
}

func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]*domain.Client, error) {
	docs, err := r.store.List(ctx, CollClients, limit, offset)
	if err != nil {
		return nil, err
	}

	clients := make([]*domain.Client, 0, len(docs))
	for _, doc := range docs {
		client := &domain.Client{}
		if err := decode(doc, client); err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, nil
}

// InventoryRepository reads inventory items loaded by ingestion.
type InventoryRepository struct {
	store store.Store
}

func NewInventoryRepository(s store.Store) *InventoryRepository {
	return &InventoryRepository{store: s}
}

func (r *InventoryRepository) List(ctx context.Context, limit, offset int) ([]*domain.InventoryItem, error) {
	docs, err := r.store.List(ctx, CollInventory, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]*domain.InventoryItem, 0, len(docs))
	for _, doc := range docs {
		item := &domain.InventoryItem{}
		if err := decode(doc, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
