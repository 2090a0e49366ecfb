// Package postgres implements store.Store on a single JSONB documents
// table. Transactions run at serializable isolation; a serialization
// failure or deadlock maps to store.ErrTxConflict so callers can retry.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chronos-erp/flowledger/internal/store"
)

// PostgreSQL error codes that mean the transaction lost a concurrency
// race and can be retried with the same input.
const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlock             = "40P01"
)

// Store is a document store backed by a PostgreSQL table.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store on an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type pgTx struct {
	tx pgx.Tx
}

// RunTransaction runs fn inside one serializable transaction.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return mapConflict(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapConflict(err)
	}
	return nil
}

func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlock:
			return fmt.Errorf("%w: %s", store.ErrTxConflict, pgErr.Code)
		}
	}
	return err
}

func (t *pgTx) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	doc := &store.Document{ID: id}
	err := t.tx.QueryRow(ctx,
		`SELECT version, data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&doc.Version, &doc.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (t *pgTx) Set(ctx context.Context, collection, id string, data []byte) error {
	_, err := t.tx.Exec(ctx, upsertSQL, collection, id, data)
	return err
}

func (t *pgTx) Update(ctx context.Context, collection, id string, data []byte) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE documents SET data = $3, version = version + 1, updated_at = now()
		 WHERE collection = $1 AND id = $2`,
		collection, id, data,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *pgTx) Delete(ctx context.Context, collection, id string) error {
	_, err := t.tx.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	return err
}

const upsertSQL = `
INSERT INTO documents (collection, id, version, data)
VALUES ($1, $2, 1, $3)
ON CONFLICT (collection, id)
DO UPDATE SET data = EXCLUDED.data, version = documents.version + 1, updated_at = now()`

// BatchWrite upserts docs inside one transaction using a pipelined batch.
func (s *Store) BatchWrite(ctx context.Context, collection string, docs []store.Document, maxOps int) (int, error) {
	if len(docs) > maxOps {
		return 0, &store.BatchTooLargeError{Ops: len(docs), MaxOps: maxOps}
	}
	if len(docs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, doc := range docs {
		batch.Queue(upsertSQL, collection, doc.ID, doc.Data)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("send batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	return len(docs), nil
}

// ClearCollection deletes documents in pages until the collection is
// empty. Unsafe to run concurrently with other writers of the same
// collection.
func (s *Store) ClearCollection(ctx context.Context, collection string, maxOps int) (int, error) {
	total := 0
	for {
		tag, err := s.pool.Exec(ctx,
			`DELETE FROM documents
			 WHERE collection = $1 AND id IN (
			     SELECT id FROM documents WHERE collection = $1 LIMIT $2
			 )`,
			collection, maxOps,
		)
		if err != nil {
			return total, err
		}

		n := int(tag.RowsAffected())
		total += n
		if n < maxOps {
			return total, nil
		}
	}
}

// Get reads one committed document outside any transaction.
func (s *Store) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	doc := &store.Document{ID: id}
	err := s.pool.QueryRow(ctx,
		`SELECT version, data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&doc.Version, &doc.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns committed documents ordered by ID.
func (s *Store) List(ctx context.Context, collection string, limit, offset int) ([]*store.Document, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, version, data FROM documents
		 WHERE collection = $1 ORDER BY id LIMIT $2 OFFSET $3`,
		collection, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*store.Document
	for rows.Next() {
		doc := &store.Document{}
		if err := rows.Scan(&doc.ID, &doc.Version, &doc.Data); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
