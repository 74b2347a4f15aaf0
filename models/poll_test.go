package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPoll_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    PollStatus
		to      PollStatus
		allowed bool
	}{
		{PollStatusOpen, PollStatusLocked, true},
		{PollStatusOpen, PollStatusFinalized, true},
		{PollStatusLocked, PollStatusFinalized, true},
		{PollStatusLocked, PollStatusOpen, false},
		{PollStatusFinalized, PollStatusOpen, false},
		{PollStatusFinalized, PollStatusLocked, false},
		{PollStatusOpen, PollStatusOpen, false},
		{PollStatusFinalized, PollStatusFinalized, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			poll := &Poll{Status: tt.from}
			assert.Equal(t, tt.allowed, poll.CanTransitionTo(tt.to))
		})
	}
}

func TestPoll_IsLockinElapsed(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	poll := &Poll{LockinBy: now}

	assert.False(t, poll.IsLockinElapsed(now.Add(-time.Second)))
	assert.True(t, poll.IsLockinElapsed(now))
	assert.True(t, poll.IsLockinElapsed(now.Add(time.Second)))
}

func TestPollDetail_OptionByIndex(t *testing.T) {
	detail := &PollDetail{
		Options: []*PollOption{
			{ID: 10, Index: 1, Value: "yes"},
			{ID: 11, Index: 2, Value: "no"},
		},
	}

	assert.Equal(t, "yes", detail.OptionByIndex(1).Value)
	assert.Equal(t, "no", detail.OptionByIndex(2).Value)
	assert.Nil(t, detail.OptionByIndex(0))
	assert.Nil(t, detail.OptionByIndex(3))
}

func TestPayoutRatio(t *testing.T) {
	t.Run("pools prize and all stake over winner stake", func(t *testing.T) {
		ratio := PayoutRatio(decimal.NewFromInt(100), decimal.NewFromInt(400), decimal.NewFromInt(100))
		assert.True(t, ratio.Equal(decimal.NewFromInt(5)))
	})

	t.Run("no prize", func(t *testing.T) {
		ratio := PayoutRatio(decimal.Zero, decimal.NewFromInt(400), decimal.NewFromInt(100))
		assert.True(t, ratio.Equal(decimal.NewFromInt(4)))
	})

	t.Run("everyone bet on the winner", func(t *testing.T) {
		// ratio exceeds 1 only because of the prize
		ratio := PayoutRatio(decimal.NewFromInt(100), decimal.NewFromInt(400), decimal.NewFromInt(400))
		assert.True(t, ratio.Equal(decimal.NewFromFloat(1.25)))
	})

	t.Run("zero winner stake yields zero ratio", func(t *testing.T) {
		ratio := PayoutRatio(decimal.NewFromInt(100), decimal.NewFromInt(400), decimal.Zero)
		assert.True(t, ratio.IsZero())
	})
}

func TestBet_Payout(t *testing.T) {
	t.Run("rounds to cents", func(t *testing.T) {
		// 100 * (100 + 400) / 300 = 166.666... -> 166.67
		ratio := PayoutRatio(decimal.NewFromInt(100), decimal.NewFromInt(400), decimal.NewFromInt(300))
		bet := &Bet{Stake: decimal.NewFromInt(100)}

		assert.True(t, bet.Payout(ratio).Equal(decimal.NewFromFloat(166.67)))
	})

	t.Run("full ratio precision is kept until the final rounding", func(t *testing.T) {
		ratio := PayoutRatio(decimal.Zero, decimal.NewFromInt(1000), decimal.NewFromInt(300))
		bet := &Bet{Stake: decimal.NewFromFloat(0.30)}

		// 0.30 * 1000/300 = 1.00 exactly when the ratio is not pre-rounded
		assert.True(t, bet.Payout(ratio).Equal(decimal.NewFromInt(1)))
	})
}
