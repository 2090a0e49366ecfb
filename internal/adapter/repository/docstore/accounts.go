package docstore

import (
	"context"
	"errors"

	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/store"
)

// AccountRepository persists accounts.
type AccountRepository struct {
	store store.Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(s store.Store) *AccountRepository {
	return &AccountRepository{store: s}
}

// Create provisions a new account. Fails if the ID is taken.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.Get(ctx, CollAccounts, account.ID)
		if err == nil {
			return domain.ErrAccountExists
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		data, err := encode(account)
		if err != nil {
			return err
		}
		return tx.Set(ctx, CollAccounts, account.ID, data)
	})
}

// CreateTx provisions an account inside a caller-owned transaction.
// Fails if the ID is taken.
func (r *AccountRepository) CreateTx(ctx context.Context, tx store.Tx, account *domain.Account) error {
	_, err := tx.Get(ctx, CollAccounts, account.ID)
	if err == nil {
		return domain.ErrAccountExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	data, err := encode(account)
	if err != nil {
		return err
	}
	return tx.Set(ctx, CollAccounts, account.ID, data)
}

// GetByID reads one account outside a transaction.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	doc, err := r.store.Get(ctx, CollAccounts, id)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrAccountNotFound)
	}

	account := &domain.Account{}
	if err := decode(doc, account); err != nil {
		return nil, err
	}
	return account, nil
}

// List returns accounts ordered by ID.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	docs, err := r.store.List(ctx, CollAccounts, limit, offset)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(docs))
	for _, doc := range docs {
		account := &domain.Account{}
		if err := decode(doc, account); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// GetTx reads an account inside a transaction.
func (r *AccountRepository) GetTx(ctx context.Context, tx store.Tx, id string) (*domain.Account, error) {
	doc, err := tx.Get(ctx, CollAccounts, id)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrAccountNotFound)
	}

	account := &domain.Account{}
	if err := decode(doc, account); err != nil {
		return nil, err
	}
	return account, nil
}

// PutTx writes back a mutated account inside a transaction.
func (r *AccountRepository) PutTx(ctx context.Context, tx store.Tx, account *domain.Account) error {
	data, err := encode(account)
	if err != nil {
		return err
	}
	return tx.Update(ctx, CollAccounts, account.ID, data)
}
