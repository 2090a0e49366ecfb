package persist_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/chronos-erp/flowledger/internal/infrastructure/logging"
	"github.com/chronos-erp/flowledger/internal/persist"
	"github.com/chronos-erp/flowledger/internal/persist/mocks"
	"github.com/chronos-erp/flowledger/internal/store"
)

func makeDocs(n int) []store.Document {
	docs := make([]store.Document, n)
	for i := range docs {
		docs[i] = store.Document{ID: fmt.Sprintf("doc-%04d", i), Data: []byte(`{}`)}
	}
	return docs
}

func newPersister(s store.Store, maxOps int) *persist.BatchPersister {
	return persist.New(s, maxOps, nil, logging.New("disabled", "json"))
}

func TestBatchPersister_ChunksAtCeiling(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)

	docs := makeDocs(1201)
	var chunkSizes []int
	mockStore.EXPECT().
		BatchWrite(gomock.Any(), "ledger_entries", gomock.Any(), 500).
		DoAndReturn(func(_ context.Context, _ string, chunk []store.Document, _ int) (int, error) {
			chunkSizes = append(chunkSizes, len(chunk))
			return len(chunk), nil
		}).
		Times(3)

	committed, err := newPersister(mockStore, 500).Persist(context.Background(), "ledger_entries", docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if committed != 1201 {
		t.Errorf("expected 1201 committed, got %d", committed)
	}

	want := []int{500, 500, 201}
	if len(chunkSizes) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunkSizes))
	}
	for i, n := range want {
		if chunkSizes[i] != n {
			t.Errorf("chunk %d: expected %d docs, got %d", i, n, chunkSizes[i])
		}
	}
}

func TestBatchPersister_ExactMultiple(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)

	mockStore.EXPECT().
		BatchWrite(gomock.Any(), "accounts", gomock.Any(), 500).
		DoAndReturn(func(_ context.Context, _ string, chunk []store.Document, _ int) (int, error) {
			if len(chunk) != 500 {
				t.Errorf("expected full chunk of 500, got %d", len(chunk))
			}
			return len(chunk), nil
		}).
		Times(2)

	committed, err := newPersister(mockStore, 500).Persist(context.Background(), "accounts", makeDocs(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if committed != 1000 {
		t.Errorf("expected 1000 committed, got %d", committed)
	}
}

func TestBatchPersister_EmptyInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)
	// No BatchWrite expectations: zero docs must not touch the store.

	committed, err := newPersister(mockStore, 500).Persist(context.Background(), "accounts", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if committed != 0 {
		t.Errorf("expected 0 committed, got %d", committed)
	}
}

func TestBatchPersister_MidChunkFailureReportsProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)

	storeErr := errors.New("write rejected")
	gomock.InOrder(
		mockStore.EXPECT().
			BatchWrite(gomock.Any(), "ledger_entries", gomock.Any(), 100).
			Return(100, nil),
		mockStore.EXPECT().
			BatchWrite(gomock.Any(), "ledger_entries", gomock.Any(), 100).
			Return(0, storeErr),
	)

	committed, err := newPersister(mockStore, 100).Persist(context.Background(), "ledger_entries", makeDocs(250))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if committed != 100 {
		t.Errorf("expected 100 committed before failure, got %d", committed)
	}

	var commitErr *persist.BatchCommitError
	if !errors.As(err, &commitErr) {
		t.Fatalf("expected BatchCommitError, got %T", err)
	}
	if commitErr.Committed != 100 {
		t.Errorf("expected Committed=100, got %d", commitErr.Committed)
	}
	if commitErr.Collection != "ledger_entries" {
		t.Errorf("expected collection ledger_entries, got %q", commitErr.Collection)
	}
	if !errors.Is(err, storeErr) {
		t.Error("expected wrapped store error")
	}
}

func TestBatchPersister_Clear(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)

	mockStore.EXPECT().
		ClearCollection(gomock.Any(), "sales", 500).
		Return(42, nil)

	deleted, err := newPersister(mockStore, 500).Clear(context.Background(), "sales")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 42 {
		t.Errorf("expected 42 deleted, got %d", deleted)
	}
}
