package service

import (
	"context"
	"testing"

	"marketbot/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestAccountService() (AccountService, *MockUnitOfWork, *MockAccountRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, nil)
	mockFactory.On("Create").Return(mockUoW)

	svc := NewAccountService(mockFactory, testConfig())
	return svc, mockUoW, mockAccountRepo
}

func TestAccountService_GetOrCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account with starting balance on first interaction", func(t *testing.T) {
		svc, mockUoW, mockAccountRepo := createTestAccountService()
		setupBasicTransactionMocks(mockUoW)

		caller := createTestCaller(100, 555)
		created := createTestAccount(1, 100, 555, 1000)

		mockAccountRepo.On("GetByAccountNumber", mock.Anything, caller.GuildID, caller.AccountNumber).Return(nil, nil)
		mockAccountRepo.On("Create", mock.Anything, caller.GuildID, caller.AccountNumber, caller.Name, decimalEq(decimal.NewFromInt(1000))).Return(created, nil)

		account, err := svc.GetOrCreateAccount(ctx, caller)

		require.NoError(t, err)
		assert.Equal(t, created, account)
		mockAccountRepo.AssertExpectations(t)
	})

	t.Run("returns existing account unchanged", func(t *testing.T) {
		svc, mockUoW, mockAccountRepo := createTestAccountService()
		setupBasicTransactionMocks(mockUoW)

		caller := createTestCaller(100, 555)
		existing := createTestAccount(1, 100, 555, 750)

		mockAccountRepo.On("GetByAccountNumber", mock.Anything, caller.GuildID, caller.AccountNumber).Return(existing, nil)

		account, err := svc.GetOrCreateAccount(ctx, caller)

		require.NoError(t, err)
		assert.Equal(t, existing, account)
		mockAccountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("refreshes a stale display name", func(t *testing.T) {
		svc, mockUoW, mockAccountRepo := createTestAccountService()
		setupBasicTransactionMocks(mockUoW)

		caller := Caller{GuildID: 100, AccountNumber: 555, Name: "renamed"}
		existing := createTestAccount(1, 100, 555, 750)

		mockAccountRepo.On("GetByAccountNumber", mock.Anything, caller.GuildID, caller.AccountNumber).Return(existing, nil)
		mockAccountRepo.On("UpdateName", mock.Anything, existing.ID, "renamed").Return(nil)

		account, err := svc.GetOrCreateAccount(ctx, caller)

		require.NoError(t, err)
		assert.Equal(t, "renamed", account.Name)
		mockAccountRepo.AssertExpectations(t)
	})

	t.Run("balance is never touched by lookup", func(t *testing.T) {
		svc, mockUoW, mockAccountRepo := createTestAccountService()
		setupBasicTransactionMocks(mockUoW)

		caller := createTestCaller(100, 555)
		existing := createTestAccount(1, 100, 555, 42)

		mockAccountRepo.On("GetByAccountNumber", mock.Anything, caller.GuildID, caller.AccountNumber).Return(existing, nil)

		account, err := svc.GetOrCreateAccount(ctx, caller)

		require.NoError(t, err)
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(42)))
		mockAccountRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
		mockAccountRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAccountService_GetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("reports existing balance", func(t *testing.T) {
		svc, mockUoW, mockAccountRepo := createTestAccountService()
		setupBasicTransactionMocks(mockUoW)

		caller := createTestCaller(100, 555)
		existing := createTestAccount(1, 100, 555, 750)

		mockAccountRepo.On("GetByAccountNumber", mock.Anything, caller.GuildID, caller.AccountNumber).Return(existing, nil)

		balance, err := svc.GetBalance(ctx, caller)

		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(750)))
	})

	t.Run("reports starting balance for a new account", func(t *testing.T) {
		svc, mockUoW, mockAccountRepo := createTestAccountService()
		setupBasicTransactionMocks(mockUoW)

		caller := createTestCaller(100, 555)
		created := createTestAccount(1, 100, 555, 1000)

		mockAccountRepo.On("GetByAccountNumber", mock.Anything, caller.GuildID, caller.AccountNumber).Return(nil, nil)
		mockAccountRepo.On("Create", mock.Anything, caller.GuildID, caller.AccountNumber, caller.Name, decimalEq(decimal.NewFromInt(1000))).Return(created, nil)

		balance, err := svc.GetBalance(ctx, caller)

		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(1000)))
	})
}
