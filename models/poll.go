package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PollStatus represents the lifecycle state of a poll
type PollStatus string

const (
	PollStatusOpen      PollStatus = "open"
	PollStatusLocked    PollStatus = "locked"
	PollStatusFinalized PollStatus = "finalized"
)

// Poll represents a betting poll with a lock-in deadline
type Poll struct {
	ID          int64      `db:"id"`
	AccountID   int64      `db:"account_id"`
	Status      PollStatus `db:"status"`
	Question    string     `db:"question"`
	CreatedAt   time.Time  `db:"created_at"`
	LockinBy    time.Time  `db:"lockin_by"`
	FinalizedAt *time.Time `db:"finalized_at"`
	Reference   string     `db:"reference"`
}

// PollOption represents a possible outcome of a poll, indexed from 1
type PollOption struct {
	ID      int64  `db:"id"`
	PollID  int64  `db:"poll_id"`
	Index   int    `db:"option_index"`
	Value   string `db:"value"`
	Winning bool   `db:"winning"`
}

// PollUpdate carries the optional fields applied alongside a status
// transition. Nil means leave unchanged.
type PollUpdate struct {
	LockinBy    *time.Time
	FinalizedAt *time.Time
}

// PollDetail combines a poll with its owner and ordered options
type PollDetail struct {
	Poll    *Poll
	Owner   *Account
	Options []*PollOption
}

// IsOpen checks if the poll still accepts bets
func (p *Poll) IsOpen() bool {
	return p.Status == PollStatusOpen
}

// IsFinalized checks if the poll has been settled
func (p *Poll) IsFinalized() bool {
	return p.Status == PollStatusFinalized
}

// IsLockinElapsed checks if the lock-in deadline has passed
func (p *Poll) IsLockinElapsed(now time.Time) bool {
	return !now.Before(p.LockinBy)
}

// CanTransitionTo reports whether the status transition is legal.
// Valid edges: open->locked, open->finalized, locked->finalized.
// Finalized is terminal.
func (p *Poll) CanTransitionTo(target PollStatus) bool {
	switch p.Status {
	case PollStatusOpen:
		return target == PollStatusLocked || target == PollStatusFinalized
	case PollStatusLocked:
		return target == PollStatusFinalized
	default:
		return false
	}
}

// OptionByIndex returns the option with the given 1-based index, or nil
// when the index is out of range
func (d *PollDetail) OptionByIndex(index int) *PollOption {
	if index < 1 || index > len(d.Options) {
		return nil
	}
	return d.Options[index-1]
}

// SettlementResult represents the outcome of finalizing a poll
type SettlementResult struct {
	Poll          *Poll
	WinningOption *PollOption
	TotalPot      decimal.Decimal
	PayoutRatio   decimal.Decimal
	Payouts       []Payout
}

// Payout records one winning account's credit at settlement
type Payout struct {
	AccountID     int64
	AccountNumber int64
	AccountName   string
	Amount        decimal.Decimal
}

// PayoutRatio computes the settlement multiplier (prize + allStake) / winnerStake.
// Division is carried at full precision; callers round only the final
// per-account payouts. Returns zero when winnerStake is zero.
func PayoutRatio(prize, allStake, winnerStake decimal.Decimal) decimal.Decimal {
	if winnerStake.IsZero() {
		return decimal.Zero
	}
	return prize.Add(allStake).Div(winnerStake)
}
