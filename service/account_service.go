package service

import (
	"context"
	"fmt"

	"marketbot/config"
	"marketbot/models"

	"github.com/shopspring/decimal"
)

type accountService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory, cfg *config.Config) AccountService {
	return &accountService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// GetOrCreateAccount resolves the caller's account, creating it with the
// configured starting balance on first interaction
func (s *accountService) GetOrCreateAccount(ctx context.Context, caller Caller) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := resolveAccount(ctx, uow.AccountRepository(), caller, s.config)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// GetBalance reports the caller's current balance, creating the account
// first if this is their first interaction
func (s *accountService) GetBalance(ctx context.Context, caller Caller) (decimal.Decimal, error) {
	account, err := s.GetOrCreateAccount(ctx, caller)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// resolveAccount is the get-or-create shared by every engine operation
// that acts on behalf of a caller. A stale display name is refreshed on
// lookup; that is an ordinary field update, not a balance mutation.
func resolveAccount(ctx context.Context, accounts AccountRepository, caller Caller, cfg *config.Config) (*models.Account, error) {
	account, err := accounts.GetByAccountNumber(ctx, caller.GuildID, caller.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if account != nil {
		if account.Name != caller.Name {
			if err := accounts.UpdateName(ctx, account.ID, caller.Name); err != nil {
				return nil, fmt.Errorf("failed to refresh account name: %w", err)
			}
			account.Name = caller.Name
		}
		return account, nil
	}

	account, err = accounts.Create(ctx, caller.GuildID, caller.AccountNumber, caller.Name, cfg.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}
