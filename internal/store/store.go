// Package store defines the transactional document store boundary the
// ledger and ingestion components are written against. Any store
// offering versioned documents, batched writes and multi-document
// transactions can implement it.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Document is one versioned JSON document inside a collection.
type Document struct {
	ID      string
	Version int64
	Data    []byte
}

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrTxConflict is returned when a transaction loses an optimistic
	// concurrency race and should be retried from scratch.
	ErrTxConflict = errors.New("transaction conflict")
)

// BatchTooLargeError is returned when a single batch exceeds the store's
// per-batch operation ceiling. Callers are expected to chunk first.
type BatchTooLargeError struct {
	Ops    int
	MaxOps int
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("batch of %d operations exceeds ceiling of %d", e.Ops, e.MaxOps)
}

// Tx exposes the primitives available inside a transaction. Reads
// observe a consistent snapshot; writes become visible only on commit.
type Tx interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Set(ctx context.Context, collection, id string, data []byte) error
	Update(ctx context.Context, collection, id string, data []byte) error
	Delete(ctx context.Context, collection, id string) error
}

// Store is the persistence boundary.
//
// RunTransaction executes fn atomically: every write fn issues is
// committed together or not at all. A conflicting concurrent commit
// surfaces as ErrTxConflict; retry policy belongs to the caller.
//
// BatchWrite upserts docs as one atomic batch of at most maxOps
// operations. ClearCollection drains a collection in pages of at most
// maxOps deletes and reports how many documents were removed; it must
// not run concurrently with other writers of the same collection.
type Store interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	BatchWrite(ctx context.Context, collection string, docs []Document, maxOps int) (int, error)
	ClearCollection(ctx context.Context, collection string, maxOps int) (int, error)

	Get(ctx context.Context, collection, id string) (*Document, error)
	List(ctx context.Context, collection string, limit, offset int) ([]*Document, error)
}
