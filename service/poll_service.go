package service

import (
	"context"
	"fmt"
	"time"

	"marketbot/apperrors"
	"marketbot/config"
	"marketbot/events"
	"marketbot/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// MaxPollOptions bounds the number of options a poll may carry
const MaxPollOptions = 10

type pollService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
	now        func() time.Time
}

// NewPollService creates a new poll service
func NewPollService(uowFactory UnitOfWorkFactory, cfg *config.Config) PollService {
	return &pollService{
		uowFactory: uowFactory,
		config:     cfg,
		now:        time.Now,
	}
}

// CreatePoll opens a new poll owned by the caller, with its options
// indexed 1..N in the order given
func (s *pollService) CreatePoll(ctx context.Context, caller Caller, question string, options []string, lockinDuration time.Duration, reference string) (*models.PollDetail, error) {
	if question == "" {
		return nil, apperrors.InvalidInputf("question cannot be empty")
	}
	if len(options) < 2 || len(options) > MaxPollOptions {
		return nil, apperrors.InvalidInputf("a poll needs between 2 and %d options, got %d", MaxPollOptions, len(options))
	}
	if lockinDuration <= 0 {
		return nil, apperrors.InvalidInputf("lock-in duration must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	owner, err := resolveAccount(ctx, uow.AccountRepository(), caller, s.config)
	if err != nil {
		return nil, err
	}

	now := s.now()
	poll := &models.Poll{
		AccountID: owner.ID,
		Status:    models.PollStatusOpen,
		Question:  question,
		CreatedAt: now,
		LockinBy:  now.Add(lockinDuration),
		Reference: reference,
	}

	pollOptions, err := uow.PollRepository().CreateWithOptions(ctx, poll, options)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PollCreatedEvent{
		Poll:    poll,
		Options: pollOptions,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.PollDetail{
		Poll:    poll,
		Owner:   owner,
		Options: pollOptions,
	}, nil
}

// AttachReference records the announcement message backing the poll,
// once it exists
func (s *pollService) AttachReference(ctx context.Context, pollID int64, reference string) error {
	if reference == "" {
		return apperrors.InvalidInputf("reference cannot be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PollRepository().SetReference(ctx, pollID, reference); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// PlaceBet stakes money on one option of an open poll. A repeat bet on
// the same option accumulates into the existing one. Returns the
// updated per-option stake totals for re-rendering.
func (s *pollService) PlaceBet(ctx context.Context, caller Caller, pollID int64, optionIndex int, stake decimal.Decimal) (*models.BetReceipt, error) {
	stake = stake.Round(2)
	if minStake := s.config.MinStake(); stake.LessThanOrEqual(minStake) {
		return nil, apperrors.InvalidInputf("stake must exceed %s", minStake)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := uow.PollRepository().GetDetailByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if detail == nil || detail.Owner.GuildID != caller.GuildID {
		return nil, apperrors.NotFoundf("poll %d not found", pollID)
	}

	poll := detail.Poll
	if !poll.IsOpen() {
		return nil, apperrors.InvalidStatef("poll %d is not open for betting (status: %s)", pollID, poll.Status)
	}

	option := detail.OptionByIndex(optionIndex)
	if option == nil {
		return nil, apperrors.InvalidInputf("option %d is out of range, poll has %d options", optionIndex, len(detail.Options))
	}

	account, err := resolveAccount(ctx, uow.AccountRepository(), caller, s.config)
	if err != nil {
		return nil, err
	}

	if !account.CanAfford(stake) {
		return nil, apperrors.InsufficientFundsf("balance %s does not cover stake %s", account.Balance, stake)
	}

	// Debit first; the bet row trusts that the stake has already left
	// the balance within this transaction.
	if err := uow.AccountRepository().DeductBalance(ctx, account.ID, stake); err != nil {
		return nil, err
	}

	bet, err := uow.BetRepository().Upsert(ctx, account.ID, option.ID, stake)
	if err != nil {
		return nil, err
	}

	totals, err := uow.BetRepository().StakeTotalsByOption(ctx, pollID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.BetReceipt{
		Poll:        poll,
		Option:      option,
		Bet:         bet,
		StakeTotals: totals,
	}, nil
}

// LockPoll transitions an open poll to locked and announces the stake
// totals. It does not check the deadline; locking early rewrites the
// lock-in time to now. Only the scheduler filters on elapsed deadlines.
func (s *pollService) LockPoll(ctx context.Context, pollID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	poll, err := uow.PollRepository().GetByID(ctx, pollID)
	if err != nil {
		return err
	}
	if poll == nil {
		return apperrors.NotFoundf("poll %d not found", pollID)
	}

	if err := s.lockPoll(ctx, uow, poll); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// lockPoll performs the open->locked transition within an existing unit
// of work
func (s *pollService) lockPoll(ctx context.Context, uow UnitOfWork, poll *models.Poll) error {
	if !poll.IsOpen() {
		return apperrors.InvalidStatef("poll %d is not open (status: %s)", poll.ID, poll.Status)
	}

	var update models.PollUpdate
	if now := s.now(); now.Before(poll.LockinBy) {
		update.LockinBy = &now
	}

	if err := uow.PollRepository().Transition(ctx, poll, models.PollStatusLocked, update); err != nil {
		return err
	}

	totals, err := uow.BetRepository().StakeTotalsByOption(ctx, poll.ID)
	if err != nil {
		return err
	}

	uow.EventBus().Publish(events.PollLockedEvent{
		Poll:        poll,
		StakeTotals: totals,
	})

	return nil
}

// ClosePoll finalizes a poll: the chosen option wins and every bet on
// it is credited stake * (prize + allStake) / winnerStake. Losing
// stakes were debited at bet time and are not returned. With no winning
// stake there is nothing to redistribute and no payouts occur.
func (s *pollService) ClosePoll(ctx context.Context, caller Caller, pollID int64, winningIndex int) (*models.SettlementResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := uow.PollRepository().GetDetailByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if detail == nil || detail.Owner.GuildID != caller.GuildID {
		return nil, apperrors.NotFoundf("poll %d not found", pollID)
	}

	poll := detail.Poll
	if poll.IsFinalized() {
		return nil, apperrors.InvalidStatef("poll %d is already closed", pollID)
	}

	winningOption := detail.OptionByIndex(winningIndex)
	if winningOption == nil {
		return nil, apperrors.InvalidInputf("option %d is out of range, poll has %d options", winningIndex, len(detail.Options))
	}

	account, err := resolveAccount(ctx, uow.AccountRepository(), caller, s.config)
	if err != nil {
		return nil, err
	}
	if poll.AccountID != account.ID {
		return nil, apperrors.Unauthorizedf("poll %d is not owned by account %d", pollID, account.ID)
	}

	// An open poll is locked first, so the lifecycle always passes
	// through the lock notification.
	if poll.IsOpen() {
		if err := s.lockPoll(ctx, uow, poll); err != nil {
			return nil, err
		}
	}

	if err := uow.PollRepository().MarkWinning(ctx, winningOption); err != nil {
		return nil, err
	}

	now := s.now()
	if err := uow.PollRepository().Transition(ctx, poll, models.PollStatusFinalized, models.PollUpdate{FinalizedAt: &now}); err != nil {
		return nil, err
	}

	totals, err := uow.BetRepository().StakeTotalsByOption(ctx, pollID)
	if err != nil {
		return nil, err
	}

	allStake := decimal.Zero
	for _, total := range totals {
		allStake = allStake.Add(total)
	}

	winningBets, err := uow.BetRepository().WinningBets(ctx, pollID)
	if err != nil {
		return nil, err
	}

	winnerStake := decimal.Zero
	for _, bet := range winningBets {
		winnerStake = winnerStake.Add(bet.Stake)
	}

	ratio := models.PayoutRatio(s.config.BasePrize, allStake, winnerStake)

	var payouts []models.Payout
	for _, bet := range winningBets {
		amount := bet.Payout(ratio)
		if err := uow.AccountRepository().AddBalance(ctx, bet.AccountID, amount); err != nil {
			return nil, err
		}
		payouts = append(payouts, models.Payout{
			AccountID:     bet.AccountID,
			AccountNumber: bet.AccountNumber,
			AccountName:   bet.AccountName,
			Amount:        amount,
		})
	}

	uow.EventBus().Publish(events.PollFinalizedEvent{
		Poll:          poll,
		WinningOption: winningOption,
		Payouts:       payouts,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.SettlementResult{
		Poll:          poll,
		WinningOption: winningOption,
		TotalPot:      allStake,
		PayoutRatio:   ratio,
		Payouts:       payouts,
	}, nil
}

// GetPollDetail retrieves a poll with its owner and options
func (s *pollService) GetPollDetail(ctx context.Context, pollID int64) (*models.PollDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := uow.PollRepository().GetDetailByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, apperrors.NotFoundf("poll %d not found", pollID)
	}

	return detail, nil
}

// StakeTotals returns per-option stake aggregates in index order
func (s *pollService) StakeTotals(ctx context.Context, pollID int64) ([]decimal.Decimal, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.BetRepository().StakeTotalsByOption(ctx, pollID)
}

// LockExpiredPolls locks every open poll whose deadline has elapsed.
// Each poll gets its own transaction; a failure is logged and skipped,
// and the poll is retried on the next scheduler tick since its deadline
// stays elapsed.
func (s *pollService) LockExpiredPolls(ctx context.Context) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	due, err := uow.PollRepository().ListOpenPollsDue(ctx, s.now())
	uow.Rollback()

	if err != nil {
		return fmt.Errorf("failed to list expired polls: %w", err)
	}

	for _, poll := range due {
		if err := s.LockPoll(ctx, poll.ID); err != nil {
			log.WithFields(log.Fields{
				"pollID": poll.ID,
				"error":  err,
			}).Error("Failed to lock expired poll, will retry next tick")
		}
	}

	return nil
}
