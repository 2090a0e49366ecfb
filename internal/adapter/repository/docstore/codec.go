// Package docstore provides typed collection access for each aggregate
// on top of the abstract document store.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chronos-erp/flowledger/internal/store"
)

// Collection names. The presentation layer reads these collections
// directly (read-only); the names are part of the external contract.
const (
	CollAccounts  = "accounts"
	CollEntries   = "ledger_entries"
	CollTransfers = "transfers"
	CollDebts     = "debts"
	CollSales     = "sales"
	CollClients   = "clients"
	CollInventory = "inventory_items"
	CollJobs      = "migration_jobs"
)

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

func decode(doc *store.Document, v any) error {
	if err := json.Unmarshal(doc.Data, v); err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	return nil
}

// scanPageSize bounds how many documents a filtered listing reads per
// store round trip.
const scanPageSize = 500

// scan walks a collection page by page, calling fn for each document.
// fn returns false to stop early.
func scan(ctx context.Context, s store.Store, collection string, fn func(*store.Document) (bool, error)) error {
	offset := 0
	for {
		docs, err := s.List(ctx, collection, scanPageSize, offset)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			more, err := fn(doc)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}
		if len(docs) < scanPageSize {
			return nil
		}
		offset += len(docs)
	}
}

func mapNotFound(err, domainErr error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainErr
	}
	return err
}
