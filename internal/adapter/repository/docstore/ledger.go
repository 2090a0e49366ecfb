package docstore

import (
	"context"

	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/store"
)

// EntryRepository persists ledger entries. Entries are append-only.
type EntryRepository struct {
	store store.Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(s store.Store) *EntryRepository {
	return &EntryRepository{store: s}
}

// CreateTx appends an entry inside a transaction.
func (r *EntryRepository) CreateTx(ctx context.Context, tx store.Tx, entry *domain.LedgerEntry) error {
	data, err := encode(entry)
	if err != nil {
		return err
	}
	return tx.Set(ctx, CollEntries, entry.ID, data)
}

// ListByAccount returns up to limit entries for one account.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	var entries []*domain.LedgerEntry
	err := scan(ctx, r.store, CollEntries, func(doc *store.Document) (bool, error) {
		entry := &domain.LedgerEntry{}
		if err := decode(doc, entry); err != nil {
			return false, err
		}
		if entry.AccountID == accountID {
			entries = append(entries, entry)
		}
		return len(entries) < limit, nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// TransferRepository persists transfers.
type TransferRepository struct {
	store store.Store
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(s store.Store) *TransferRepository {
	return &TransferRepository{store: s}
}

// CreateTx appends a transfer inside a transaction.
func (r *TransferRepository) CreateTx(ctx context.Context, tx store.Tx, transfer *domain.Transfer) error {
	data, err := encode(transfer)
	if err != nil {
		return err
	}
	return tx.Set(ctx, CollTransfers, transfer.ID, data)
}

// GetByID reads one transfer.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	doc, err := r.store.Get(ctx, CollTransfers, id)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrTransferNotFound)
	}

	transfer := &domain.Transfer{}
	if err := decode(doc, transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

// List returns transfers ordered by ID.
func (r *TransferRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transfer, error) {
	docs, err := r.store.List(ctx, CollTransfers, limit, offset)
	if err != nil {
		return nil, err
	}

	transfers := make([]*domain.Transfer, 0, len(docs))
	for _, doc := range docs {
		transfer := &domain.Transfer{}
		if err := decode(doc, transfer); err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}
	return transfers, nil
}
