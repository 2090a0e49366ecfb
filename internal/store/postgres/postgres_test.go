package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chronos-erp/flowledger/internal/store"
)

func TestMapConflict(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantConflict bool
	}{
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, wantConflict: true},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, wantConflict: true},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, wantConflict: false},
		{name: "plain error", err: errors.New("boom"), wantConflict: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(mapConflict(tt.err), store.ErrTxConflict)
			if got != tt.wantConflict {
				t.Errorf("mapConflict(%v) conflict = %v, want %v", tt.err, got, tt.wantConflict)
			}
		})
	}
}

func TestMapConflictPreservesOtherErrors(t *testing.T) {
	original := &pgconn.PgError{Code: "23505"}
	if got := mapConflict(original); !errors.Is(got, original) {
		t.Errorf("non-retryable error was rewritten: %v", got)
	}
}
