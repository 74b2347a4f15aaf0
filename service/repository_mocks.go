package service

import (
	"context"
	"time"

	"marketbot/events"
	"marketbot/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByAccountNumber(ctx context.Context, guildID, accountNumber int64) (*models.Account, error) {
	args := m.Called(ctx, guildID, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, guildID, accountNumber int64, name string, startingBalance decimal.Decimal) (*models.Account, error) {
	args := m.Called(ctx, guildID, accountNumber, name, startingBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateName(ctx context.Context, id int64, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockAccountRepository) AddBalance(ctx context.Context, id int64, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) DeductBalance(ctx context.Context, id int64, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

// MockPollRepository is a mock implementation of PollRepository
type MockPollRepository struct {
	mock.Mock
}

func (m *MockPollRepository) CreateWithOptions(ctx context.Context, poll *models.Poll, optionValues []string) ([]*models.PollOption, error) {
	args := m.Called(ctx, poll, optionValues)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PollOption), args.Error(1)
}

func (m *MockPollRepository) GetByID(ctx context.Context, id int64) (*models.Poll, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Poll), args.Error(1)
}

func (m *MockPollRepository) GetDetailByID(ctx context.Context, id int64) (*models.PollDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PollDetail), args.Error(1)
}

func (m *MockPollRepository) SetReference(ctx context.Context, id int64, reference string) error {
	args := m.Called(ctx, id, reference)
	return args.Error(0)
}

func (m *MockPollRepository) ListByStatus(ctx context.Context, status models.PollStatus) ([]*models.Poll, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Poll), args.Error(1)
}

func (m *MockPollRepository) ListOpenPollsDue(ctx context.Context, now time.Time) ([]*models.Poll, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Poll), args.Error(1)
}

func (m *MockPollRepository) Transition(ctx context.Context, poll *models.Poll, target models.PollStatus, update models.PollUpdate) error {
	args := m.Called(ctx, poll, target, update)
	if args.Error(0) == nil {
		poll.Status = target
		if update.LockinBy != nil {
			poll.LockinBy = *update.LockinBy
		}
		if update.FinalizedAt != nil {
			poll.FinalizedAt = update.FinalizedAt
		}
	}
	return args.Error(0)
}

func (m *MockPollRepository) MarkWinning(ctx context.Context, option *models.PollOption) error {
	args := m.Called(ctx, option)
	if args.Error(0) == nil {
		option.Winning = true
	}
	return args.Error(0)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Upsert(ctx context.Context, accountID, optionID int64, stake decimal.Decimal) (*models.Bet, error) {
	args := m.Called(ctx, accountID, optionID, stake)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) StakeTotalsByOption(ctx context.Context, pollID int64) ([]decimal.Decimal, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]decimal.Decimal), args.Error(1)
}

func (m *MockBetRepository) WinningBets(ctx context.Context, pollID int64) ([]*models.WinningBet, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WinningBet), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories
// are plain fields rather than expectations so tests can wire concrete
// mocks once via SetRepositories.
type MockUnitOfWork struct {
	mock.Mock
	accountRepo AccountRepository
	pollRepo    PollRepository
	betRepo     BetRepository
	eventBus    EventPublisher
}

func (m *MockUnitOfWork) SetRepositories(accounts AccountRepository, polls PollRepository, bets BetRepository) {
	m.accountRepo = accounts
	m.pollRepo = polls
	m.betRepo = bets
}

func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) PollRepository() PollRepository {
	return m.pollRepo
}

func (m *MockUnitOfWork) BetRepository() BetRepository {
	return m.betRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
