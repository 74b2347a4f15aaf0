package service

import (
	"context"
	"time"

	"marketbot/events"
	"marketbot/models"

	"github.com/shopspring/decimal"
)

// Caller identifies the already-authenticated user a command acts for
type Caller struct {
	GuildID       int64
	AccountNumber int64
	Name          string
}

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByAccountNumber retrieves an account by its guild-scoped account number
	GetByAccountNumber(ctx context.Context, guildID, accountNumber int64) (*models.Account, error)

	// GetByID retrieves an account by its primary key
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// Create creates a new account with the starting balance
	Create(ctx context.Context, guildID, accountNumber int64, name string, startingBalance decimal.Decimal) (*models.Account, error)

	// UpdateName refreshes the display name recorded for an account
	UpdateName(ctx context.Context, id int64, name string) error

	// AddBalance credits an account atomically
	AddBalance(ctx context.Context, id int64, amount decimal.Decimal) error

	// DeductBalance debits an account atomically, failing if funds are insufficient
	DeductBalance(ctx context.Context, id int64, amount decimal.Decimal) error
}

// PollRepository defines the interface for poll data access. It is the
// only mutator of poll status.
type PollRepository interface {
	// CreateWithOptions creates a poll and its ordered options atomically
	CreateWithOptions(ctx context.Context, poll *models.Poll, optionValues []string) ([]*models.PollOption, error)

	// GetByID retrieves a poll by its ID
	GetByID(ctx context.Context, id int64) (*models.Poll, error)

	// GetDetailByID retrieves a poll with its owner and ordered options
	GetDetailByID(ctx context.Context, id int64) (*models.PollDetail, error)

	// ListByStatus returns all polls in the given status
	ListByStatus(ctx context.Context, status models.PollStatus) ([]*models.Poll, error)

	// ListOpenPollsDue returns open polls whose lock-in deadline has elapsed
	ListOpenPollsDue(ctx context.Context, now time.Time) ([]*models.Poll, error)

	// SetReference records the announcement message backing the poll
	SetReference(ctx context.Context, id int64, reference string) error

	// Transition moves a poll to the target status, applying optional fields
	Transition(ctx context.Context, poll *models.Poll, target models.PollStatus, update models.PollUpdate) error

	// MarkWinning flags the option as the poll's winning outcome, once
	MarkWinning(ctx context.Context, option *models.PollOption) error
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Upsert creates a bet or accumulates stake into an existing one
	Upsert(ctx context.Context, accountID, optionID int64, stake decimal.Decimal) (*models.Bet, error)

	// StakeTotalsByOption returns per-option stake aggregates in index order
	StakeTotalsByOption(ctx context.Context, pollID int64) ([]decimal.Decimal, error)

	// WinningBets returns every bet on the poll's winning option(s)
	WinningBets(ctx context.Context, pollID int64) ([]*models.WinningBet, error)
}

// AccountService defines the interface for account operations
type AccountService interface {
	// GetOrCreateAccount resolves the caller's account, creating it with
	// the starting balance on first interaction
	GetOrCreateAccount(ctx context.Context, caller Caller) (*models.Account, error)

	// GetBalance reports the caller's current balance
	GetBalance(ctx context.Context, caller Caller) (decimal.Decimal, error)
}

// PollService defines the interface for poll lifecycle and settlement operations
type PollService interface {
	// CreatePoll opens a new poll owned by the caller
	CreatePoll(ctx context.Context, caller Caller, question string, options []string, lockinDuration time.Duration, reference string) (*models.PollDetail, error)

	// AttachReference records the announcement message backing the poll
	AttachReference(ctx context.Context, pollID int64, reference string) error

	// PlaceBet stakes money on one option of an open poll
	PlaceBet(ctx context.Context, caller Caller, pollID int64, optionIndex int, stake decimal.Decimal) (*models.BetReceipt, error)

	// LockPoll transitions an open poll to locked
	LockPoll(ctx context.Context, pollID int64) error

	// ClosePoll finalizes a poll and settles payouts
	ClosePoll(ctx context.Context, caller Caller, pollID int64, winningIndex int) (*models.SettlementResult, error)

	// GetPollDetail retrieves a poll with its owner and options
	GetPollDetail(ctx context.Context, pollID int64) (*models.PollDetail, error)

	// StakeTotals returns per-option stake aggregates in index order
	StakeTotals(ctx context.Context, pollID int64) ([]decimal.Decimal, error)

	// LockExpiredPolls locks every open poll whose deadline has elapsed
	LockExpiredPolls(ctx context.Context) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	PollRepository() PollRepository
	BetRepository() BetRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
