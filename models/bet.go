package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bet represents an account's accumulated stake on one poll option.
// At most one row exists per (account, option); repeat bets grow Stake.
type Bet struct {
	ID        int64           `db:"id"`
	AccountID int64           `db:"account_id"`
	OptionID  int64           `db:"option_id"`
	Stake     decimal.Decimal `db:"stake"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// WinningBet is a bet on the winning option joined with its holder
type WinningBet struct {
	Bet
	AccountNumber int64  `db:"account_number"`
	AccountName   string `db:"name"`
}

// BetReceipt is returned to the caller after a bet is placed
type BetReceipt struct {
	Poll        *Poll
	Option      *PollOption
	Bet         *Bet
	StakeTotals []decimal.Decimal
}

// Payout computes this bet's settlement credit, rounded to 2 decimals
func (b *Bet) Payout(ratio decimal.Decimal) decimal.Decimal {
	return b.Stake.Mul(ratio).Round(2)
}
