package repository

import (
	"context"
	"testing"

	"marketbot/apperrors"
	"marketbot/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		account, err := repo.Create(ctx, 100, 555, "alice", decimal.NewFromInt(1000))
		require.NoError(t, err)
		require.NotNil(t, account)

		assert.NotZero(t, account.ID)
		assert.Equal(t, int64(100), account.GuildID)
		assert.Equal(t, int64(555), account.AccountNumber)
		assert.Equal(t, "alice", account.Name)
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(1000)))
		assert.False(t, account.CreatedAt.IsZero())
	})

	t.Run("duplicate account number in same guild", func(t *testing.T) {
		_, err := repo.Create(ctx, 100, 556, "bob", decimal.NewFromInt(1000))
		require.NoError(t, err)

		_, err = repo.Create(ctx, 100, 556, "bob again", decimal.NewFromInt(1000))
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindIntegrityViolation))
	})

	t.Run("same account number in another guild is allowed", func(t *testing.T) {
		_, err := repo.Create(ctx, 100, 557, "carol", decimal.NewFromInt(1000))
		require.NoError(t, err)

		account, err := repo.Create(ctx, 200, 557, "carol elsewhere", decimal.NewFromInt(1000))
		require.NoError(t, err)
		assert.Equal(t, int64(200), account.GuildID)
	})

	t.Run("negative starting balance violates the schema", func(t *testing.T) {
		_, err := repo.Create(ctx, 100, 558, "dave", decimal.NewFromInt(-5))
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindIntegrityViolation))
	})
}

func TestAccountRepository_GetByAccountNumber(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing account returns nil without error", func(t *testing.T) {
		account, err := repo.GetByAccountNumber(ctx, 100, 999)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("lookup is guild scoped", func(t *testing.T) {
		created, err := repo.Create(ctx, 100, 555, "alice", decimal.NewFromInt(1000))
		require.NoError(t, err)

		account, err := repo.GetByAccountNumber(ctx, 100, 555)
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, created.ID, account.ID)

		other, err := repo.GetByAccountNumber(ctx, 200, 555)
		require.NoError(t, err)
		assert.Nil(t, other)
	})
}

func TestAccountRepository_Balances(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account, err := repo.Create(ctx, 100, 555, "alice", decimal.NewFromInt(1000))
	require.NoError(t, err)

	t.Run("add balance credits the account", func(t *testing.T) {
		err := repo.AddBalance(ctx, account.ID, decimal.NewFromFloat(250.50))
		require.NoError(t, err)

		fetched, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, fetched.Balance.Equal(decimal.NewFromFloat(1250.50)))
	})

	t.Run("add balance rejects non-positive amounts", func(t *testing.T) {
		err := repo.AddBalance(ctx, account.ID, decimal.Zero)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	})

	t.Run("deduct balance debits the account", func(t *testing.T) {
		err := repo.DeductBalance(ctx, account.ID, decimal.NewFromFloat(250.50))
		require.NoError(t, err)

		fetched, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, fetched.Balance.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("deduct beyond the balance fails without changing it", func(t *testing.T) {
		err := repo.DeductBalance(ctx, account.ID, decimal.NewFromInt(5000))
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientFunds))

		fetched, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, fetched.Balance.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("deduct from unknown account", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 99999, decimal.NewFromInt(10))
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}

func TestAccountRepository_UpdateName(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account, err := repo.Create(ctx, 100, 555, "alice", decimal.NewFromInt(1000))
	require.NoError(t, err)

	t.Run("updates the display name", func(t *testing.T) {
		err := repo.UpdateName(ctx, account.ID, "alice renamed")
		require.NoError(t, err)

		fetched, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice renamed", fetched.Name)
	})

	t.Run("unknown account", func(t *testing.T) {
		err := repo.UpdateName(ctx, 99999, "nobody")
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}
