// Package memory implements store.Store in process memory with
// optimistic concurrency control. It backs the test suite and the
// development mode of the server.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/chronos-erp/flowledger/internal/store"
)

// Store is an in-memory document store. Transactions buffer their
// writes and validate their read set at commit time; a stale read
// fails the commit with store.ErrTxConflict.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]*store.Document
	failCommits int
}

// New creates an empty Store.
func New() *Store {
	return &Store{collections: make(map[string]map[string]*store.Document)}
}

// FailNextCommits forces the next n transaction commits to fail with
// store.ErrTxConflict. Test hook for exercising retry paths.
func (s *Store) FailNextCommits(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCommits = n
}

const (
	opSet = iota
	opUpdate
	opDelete
)

type writeOp struct {
	kind       int
	collection string
	id         string
	data       []byte
}

type pendingDoc struct {
	data    []byte
	deleted bool
}

type memTx struct {
	s       *Store
	reads   map[string]int64
	pending map[string]*pendingDoc
	ops     []writeOp
}

func key(collection, id string) string { return collection + "/" + id }

func cloneDoc(d *store.Document) *store.Document {
	data := make([]byte, len(d.Data))
	copy(data, d.Data)
	return &store.Document{ID: d.ID, Version: d.Version, Data: data}
}

// RunTransaction executes fn and commits its buffered writes if every
// document read during fn is still at the version that was observed.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	tx := &memTx{
		s:       s,
		reads:   make(map[string]int64),
		pending: make(map[string]*pendingDoc),
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return s.commit(tx)
}

func (s *Store) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCommits > 0 {
		s.failCommits--
		return store.ErrTxConflict
	}

	for k, seen := range tx.reads {
		collection, id := splitKey(k)
		var current int64
		if doc, ok := s.collections[collection][id]; ok {
			current = doc.Version
		}
		if current != seen {
			return store.ErrTxConflict
		}
	}

	for _, op := range tx.ops {
		coll := s.collections[op.collection]
		if coll == nil {
			coll = make(map[string]*store.Document)
			s.collections[op.collection] = coll
		}

		switch op.kind {
		case opSet, opUpdate:
			var version int64 = 1
			if existing, ok := coll[op.id]; ok {
				version = existing.Version + 1
			}
			data := make([]byte, len(op.data))
			copy(data, op.data)
			coll[op.id] = &store.Document{ID: op.id, Version: version, Data: data}
		case opDelete:
			delete(coll, op.id)
		}
	}

	return nil
}

func splitKey(k string) (collection, id string) {
	for i := 0; i < len(k); i++ {
		if k[i] == '/' {
			return k[:i], k[i+1:]
		}
	}
	return k, ""
}

func (t *memTx) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	k := key(collection, id)
	if p, ok := t.pending[k]; ok {
		if p.deleted {
			return nil, store.ErrNotFound
		}
		data := make([]byte, len(p.data))
		copy(data, p.data)
		return &store.Document{ID: id, Data: data}, nil
	}

	t.s.mu.Lock()
	doc, ok := t.s.collections[collection][id]
	var version int64
	if ok {
		version = doc.Version
		doc = cloneDoc(doc)
	}
	t.s.mu.Unlock()

	if _, seen := t.reads[k]; !seen {
		t.reads[k] = version
	}
	if !ok {
		return nil, store.ErrNotFound
	}
	return doc, nil
}

func (t *memTx) Set(ctx context.Context, collection, id string, data []byte) error {
	t.stage(opSet, collection, id, data)
	return nil
}

func (t *memTx) Update(ctx context.Context, collection, id string, data []byte) error {
	if _, err := t.Get(ctx, collection, id); err != nil {
		return err
	}
	t.stage(opUpdate, collection, id, data)
	return nil
}

func (t *memTx) Delete(ctx context.Context, collection, id string) error {
	t.stage(opDelete, collection, id, nil)
	return nil
}

func (t *memTx) stage(kind int, collection, id string, data []byte) {
	t.ops = append(t.ops, writeOp{kind: kind, collection: collection, id: id, data: data})
	t.pending[key(collection, id)] = &pendingDoc{data: data, deleted: kind == opDelete}
}

// BatchWrite upserts docs as one atomic batch.
func (s *Store) BatchWrite(ctx context.Context, collection string, docs []store.Document, maxOps int) (int, error) {
	if len(docs) > maxOps {
		return 0, &store.BatchTooLargeError{Ops: len(docs), MaxOps: maxOps}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[collection]
	if coll == nil {
		coll = make(map[string]*store.Document)
		s.collections[collection] = coll
	}

	for _, doc := range docs {
		var version int64 = 1
		if existing, ok := coll[doc.ID]; ok {
			version = existing.Version + 1
		}
		data := make([]byte, len(doc.Data))
		copy(data, doc.Data)
		coll[doc.ID] = &store.Document{ID: doc.ID, Version: version, Data: data}
	}

	return len(docs), nil
}

// ClearCollection drains a collection in pages of at most maxOps deletes.
func (s *Store) ClearCollection(ctx context.Context, collection string, maxOps int) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		s.mu.Lock()
		coll := s.collections[collection]
		n := 0
		for id := range coll {
			if n == maxOps {
				break
			}
			delete(coll, id)
			n++
		}
		s.mu.Unlock()

		total += n
		if n < maxOps {
			return total, nil
		}
	}
}

// Get reads one committed document.
func (s *Store) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneDoc(doc), nil
}

// List returns committed documents ordered by ID.
func (s *Store) List(ctx context.Context, collection string, limit, offset int) ([]*store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[collection]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}

	docs := make([]*store.Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, cloneDoc(coll[id]))
	}
	return docs, nil
}
