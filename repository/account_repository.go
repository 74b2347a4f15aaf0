package repository

import (
	"context"
	"fmt"

	"marketbot/apperrors"
	"marketbot/database"
	"marketbot/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository implements account data access
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository bound to a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByAccountNumber retrieves an account by its guild-scoped account number
func (r *AccountRepository) GetByAccountNumber(ctx context.Context, guildID, accountNumber int64) (*models.Account, error) {
	query := `
		SELECT id, guild_id, account_number, name, balance, created_at
		FROM accounts
		WHERE guild_id = $1 AND account_number = $2
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, guildID, accountNumber).Scan(
		&account.ID,
		&account.GuildID,
		&account.AccountNumber,
		&account.Name,
		&account.Balance,
		&account.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d in guild %d: %w", accountNumber, guildID, err)
	}

	return &account, nil
}

// GetByID retrieves an account by its primary key
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `
		SELECT id, guild_id, account_number, name, balance, created_at
		FROM accounts
		WHERE id = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.GuildID,
		&account.AccountNumber,
		&account.Name,
		&account.Balance,
		&account.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}

	return &account, nil
}

// Create creates a new account with the starting balance
func (r *AccountRepository) Create(ctx context.Context, guildID, accountNumber int64, name string, startingBalance decimal.Decimal) (*models.Account, error) {
	query := `
		INSERT INTO accounts (guild_id, account_number, name, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING id, guild_id, account_number, name, balance, created_at
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, guildID, accountNumber, name, startingBalance.Round(2)).Scan(
		&account.ID,
		&account.GuildID,
		&account.AccountNumber,
		&account.Name,
		&account.Balance,
		&account.CreatedAt,
	)

	if err != nil {
		return nil, mapConstraintError(err, fmt.Sprintf("failed to create account %d in guild %d", accountNumber, guildID))
	}

	return &account, nil
}

// UpdateName refreshes the display name recorded for an account
func (r *AccountRepository) UpdateName(ctx context.Context, id int64, name string) error {
	query := `
		UPDATE accounts
		SET name = $1
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("failed to update name for account %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFoundf("account %d not found", id)
	}

	return nil
}

// AddBalance credits an account atomically
func (r *AccountRepository) AddBalance(ctx context.Context, id int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.InvalidInputf("credit amount must be positive, got %s", amount)
	}

	query := `
		UPDATE accounts
		SET balance = balance + $1
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount.Round(2), id)
	if err != nil {
		return fmt.Errorf("failed to add balance for account %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFoundf("account %d not found", id)
	}

	return nil
}

// DeductBalance debits an account atomically, failing with
// InsufficientFunds when the balance does not cover the amount
func (r *AccountRepository) DeductBalance(ctx context.Context, id int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.InvalidInputf("debit amount must be positive, got %s", amount)
	}

	// Conditional update so concurrent debits cannot take the balance
	// below zero; the table CHECK backstops this.
	query := `
		UPDATE accounts
		SET balance = balance - $1
		WHERE id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount.Round(2), id)
	if err != nil {
		return mapConstraintError(err, fmt.Sprintf("failed to deduct balance for account %d", id))
	}

	if result.RowsAffected() == 0 {
		account, err := r.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check account %d: %w", id, err)
		}
		if account == nil {
			return apperrors.NotFoundf("account %d not found", id)
		}
		return apperrors.InsufficientFundsf("balance %s does not cover %s", account.Balance, amount)
	}

	return nil
}
