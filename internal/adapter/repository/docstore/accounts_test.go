package docstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/chronos-erp/flowledger/internal/adapter/repository/docstore"
	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/store"
	"github.com/chronos-erp/flowledger/internal/store/memory"
)

func testAccount(id string) *domain.Account {
	now := time.Now().UTC()
	return &domain.Account{
		ID:        id,
		Name:      id,
		Currency:  "USD",
		Balance:   decimal.NewFromInt(100),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestAccountRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := docstore.NewAccountRepository(memory.New())

	require.NoError(t, repo.Create(ctx, testAccount("boveda_monte")))

	got, err := repo.GetByID(ctx, "boveda_monte")
	require.NoError(t, err)
	require.Equal(t, "boveda_monte", got.ID)
	require.True(t, got.Balance.Equal(decimal.NewFromInt(100)))
}

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := docstore.NewAccountRepository(memory.New())

	require.NoError(t, repo.Create(ctx, testAccount("utilidades")))
	err := repo.Create(ctx, testAccount("utilidades"))
	require.ErrorIs(t, err, domain.ErrAccountExists)
}

func TestAccountRepository_GetMissing(t *testing.T) {
	repo := docstore.NewAccountRepository(memory.New())

	_, err := repo.GetByID(context.Background(), "no_such_account")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := docstore.NewAccountRepository(memory.New())

	for _, id := range []string{"casa_principal", "boveda_monte", "flete_sur"} {
		require.NoError(t, repo.Create(ctx, testAccount(id)))
	}

	accounts, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	require.Equal(t, "boveda_monte", accounts[0].ID)

	page, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "flete_sur", page[0].ID)
}

func TestAccountRepository_PutTxUpdatesBalance(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	repo := docstore.NewAccountRepository(s)

	require.NoError(t, repo.Create(ctx, testAccount("boveda_monte")))

	err := s.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		account, err := repo.GetTx(ctx, tx, "boveda_monte")
		if err != nil {
			return err
		}
		account.Balance = account.Balance.Add(decimal.NewFromInt(50))
		return repo.PutTx(ctx, tx, account)
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "boveda_monte")
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.NewFromInt(150)))
}
