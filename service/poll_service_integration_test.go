package service_test

import (
	"context"
	"testing"
	"time"

	"marketbot/apperrors"
	"marketbot/config"
	"marketbot/events"
	"marketbot/models"
	"marketbot/repository"
	"marketbot/repository/testutil"
	"marketbot/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func integrationConfig() *config.Config {
	return &config.Config{
		StartingBalance:   decimal.NewFromInt(1000),
		BasePrize:         decimal.NewFromInt(100),
		MinStakeRatio:     decimal.NewFromFloat(0.25),
		MaxLockinDuration: 14 * 24 * time.Hour,
		LockCheckInterval: time.Minute,
		Environment:       "test",
	}
}

func TestPollSettlement_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	cfg := integrationConfig()
	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	accountService := service.NewAccountService(uowFactory, cfg)
	pollService := service.NewPollService(uowFactory, cfg)

	owner := service.Caller{GuildID: 100, AccountNumber: 111111, Name: "owner"}
	rival := service.Caller{GuildID: 100, AccountNumber: 222222, Name: "rival"}

	t.Run("full lifecycle with settlement", func(t *testing.T) {
		detail, err := pollService.CreatePoll(ctx, owner, "Who takes the derby?", []string{"home", "away"}, 6*time.Hour, "chan/msg-1")
		require.NoError(t, err)
		pollID := detail.Poll.ID

		// owner backs home with 100, rival backs away with 300
		_, err = pollService.PlaceBet(ctx, owner, pollID, 1, decimal.NewFromInt(100))
		require.NoError(t, err)
		receipt, err := pollService.PlaceBet(ctx, rival, pollID, 2, decimal.NewFromInt(300))
		require.NoError(t, err)

		require.Len(t, receipt.StakeTotals, 2)
		assert.True(t, receipt.StakeTotals[0].Equal(decimal.NewFromInt(100)))
		assert.True(t, receipt.StakeTotals[1].Equal(decimal.NewFromInt(300)))

		// stakes leave the balances immediately
		ownerAccount, err := accountService.GetOrCreateAccount(ctx, owner)
		require.NoError(t, err)
		assert.True(t, ownerAccount.Balance.Equal(decimal.NewFromInt(900)))

		result, err := pollService.ClosePoll(ctx, owner, pollID, 1)
		require.NoError(t, err)

		// ratio = (100 prize + 400 pot) / 100 winner stake = 5
		assert.True(t, result.PayoutRatio.Equal(decimal.NewFromInt(5)))
		require.Len(t, result.Payouts, 1)
		assert.True(t, result.Payouts[0].Amount.Equal(decimal.NewFromInt(500)))

		ownerAccount, err = accountService.GetOrCreateAccount(ctx, owner)
		require.NoError(t, err)
		assert.True(t, ownerAccount.Balance.Equal(decimal.NewFromInt(1400)))

		rivalAccount, err := accountService.GetOrCreateAccount(ctx, rival)
		require.NoError(t, err)
		assert.True(t, rivalAccount.Balance.Equal(decimal.NewFromInt(700)))

		closed, err := pollService.GetPollDetail(ctx, pollID)
		require.NoError(t, err)
		assert.Equal(t, models.PollStatusFinalized, closed.Poll.Status)
		assert.True(t, closed.OptionByIndex(1).Winning)
		assert.NotNil(t, closed.Poll.FinalizedAt)
	})

	t.Run("repeat bets accumulate and settle once", func(t *testing.T) {
		detail, err := pollService.CreatePoll(ctx, owner, "Double down?", []string{"yes", "no"}, 6*time.Hour, "chan/msg-2")
		require.NoError(t, err)
		pollID := detail.Poll.ID

		_, err = pollService.PlaceBet(ctx, rival, pollID, 1, decimal.NewFromInt(50))
		require.NoError(t, err)
		receipt, err := pollService.PlaceBet(ctx, rival, pollID, 1, decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.True(t, receipt.Bet.Stake.Equal(decimal.NewFromInt(100)))

		result, err := pollService.ClosePoll(ctx, owner, pollID, 1)
		require.NoError(t, err)

		// one accumulated bet of 100, ratio (100+100)/100 = 2
		require.Len(t, result.Payouts, 1)
		assert.True(t, result.Payouts[0].Amount.Equal(decimal.NewFromInt(200)))
	})

	t.Run("closing twice fails", func(t *testing.T) {
		detail, err := pollService.CreatePoll(ctx, owner, "Close twice?", []string{"yes", "no"}, 6*time.Hour, "chan/msg-3")
		require.NoError(t, err)

		_, err = pollService.ClosePoll(ctx, owner, detail.Poll.ID, 1)
		require.NoError(t, err)

		_, err = pollService.ClosePoll(ctx, owner, detail.Poll.ID, 2)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})

	t.Run("locked poll rejects bets but settles", func(t *testing.T) {
		detail, err := pollService.CreatePoll(ctx, owner, "Lock first?", []string{"yes", "no"}, 6*time.Hour, "chan/msg-4")
		require.NoError(t, err)
		pollID := detail.Poll.ID

		_, err = pollService.PlaceBet(ctx, rival, pollID, 2, decimal.NewFromInt(100))
		require.NoError(t, err)

		require.NoError(t, pollService.LockPoll(ctx, pollID))

		_, err = pollService.PlaceBet(ctx, rival, pollID, 1, decimal.NewFromInt(100))
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))

		result, err := pollService.ClosePoll(ctx, owner, pollID, 2)
		require.NoError(t, err)
		require.Len(t, result.Payouts, 1)
	})

	t.Run("expired polls are swept into locked", func(t *testing.T) {
		detail, err := pollService.CreatePoll(ctx, owner, "Sweep me?", []string{"yes", "no"}, time.Second, "chan/msg-5")
		require.NoError(t, err)

		time.Sleep(1100 * time.Millisecond)

		require.NoError(t, pollService.LockExpiredPolls(ctx))

		swept, err := pollService.GetPollDetail(ctx, detail.Poll.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PollStatusLocked, swept.Poll.Status)
	})
}
