package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"marketbot/apperrors"
	"marketbot/bot/common"
	"marketbot/service"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
)

// callerFromInteraction builds the caller identity from the invoking
// guild member
func callerFromInteraction(i *discordgo.InteractionCreate) (service.Caller, error) {
	if i.Member == nil || i.Member.User == nil {
		return service.Caller{}, fmt.Errorf("interaction has no guild member")
	}

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		return service.Caller{}, fmt.Errorf("invalid guild ID %q: %w", i.GuildID, err)
	}

	accountNumber, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		return service.Caller{}, fmt.Errorf("invalid user ID %q: %w", i.Member.User.ID, err)
	}

	name := i.Member.Nick
	if name == "" {
		name = i.Member.User.Username
	}

	return service.Caller{
		GuildID:       guildID,
		AccountNumber: accountNumber,
		Name:          name,
	}, nil
}

// userMessage maps a service error to something worth showing the caller
func userMessage(err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return "Poll not found."
	case apperrors.KindInvalidState:
		return "That poll no longer accepts this action."
	case apperrors.KindInvalidInput:
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return appErr.Message
		}
		return "Invalid input."
	case apperrors.KindInsufficientFunds:
		return "You don't have enough balance for that stake."
	case apperrors.KindUnauthorized:
		return "Only the poll owner can do that."
	default:
		return "Something went wrong. Please try again."
	}
}

func (b *Bot) handlePollCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "create":
		b.handlePollCreate(s, i, options[0].Options)
	case "bet":
		b.handlePollBet(s, i, options[0].Options)
	case "close":
		b.handlePollClose(s, i, options[0].Options)
	case "show":
		b.handlePollShow(s, i, options[0].Options)
	}
}

func (b *Bot) handlePollCreate(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	caller, err := callerFromInteraction(i)
	if err != nil {
		log.Errorf("Error resolving caller: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var question, optionsInput, durationInput string
	for _, opt := range opts {
		switch opt.Name {
		case "question":
			question = strings.TrimSpace(opt.StringValue())
		case "options":
			optionsInput = opt.StringValue()
		case "duration":
			durationInput = opt.StringValue()
		}
	}

	optionValues, err := service.ParseOptions(optionsInput)
	if err != nil {
		common.RespondWithError(s, i, userMessage(err))
		return
	}

	duration, err := service.ParseLockinDuration(durationInput, b.config.MaxLockinDuration)
	if err != nil {
		common.RespondWithError(s, i, userMessage(err))
		return
	}

	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Error deferring response: %v", err)
		return
	}

	detail, err := b.pollService.CreatePoll(ctx, caller, question, optionValues, duration, "")
	if err != nil {
		log.Errorf("Error creating poll: %v", err)
		common.FollowUpWithError(s, i, userMessage(err))
		return
	}

	embed := createPollEmbed(detail, nil)
	message, err := common.FollowUpWithEmbed(s, i, embed, false)
	if err != nil {
		log.Errorf("Error sending poll announcement: %v", err)
		return
	}

	// Remember the announcement so later lifecycle events can update it
	reference := fmt.Sprintf("%s/%s", message.ChannelID, message.ID)
	if err := b.pollService.AttachReference(ctx, detail.Poll.ID, reference); err != nil {
		log.Errorf("Error attaching reference to poll %d: %v", detail.Poll.ID, err)
	}
}

func (b *Bot) handlePollBet(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	caller, err := callerFromInteraction(i)
	if err != nil {
		log.Errorf("Error resolving caller: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var pollID int64
	var optionIndex int
	var stake decimal.Decimal
	for _, opt := range opts {
		switch opt.Name {
		case "id":
			pollID = opt.IntValue()
		case "option":
			optionIndex = int(opt.IntValue())
		case "stake":
			stake = decimal.NewFromFloat(opt.FloatValue())
		}
	}

	receipt, err := b.pollService.PlaceBet(ctx, caller, pollID, optionIndex, stake)
	if err != nil {
		common.RespondWithError(s, i, userMessage(err))
		return
	}

	message := fmt.Sprintf("Staked **%s** on option %d (**%s**), your total on it: **%s**",
		common.FormatMoney(stake.Round(2)),
		receipt.Option.Index,
		receipt.Option.Value,
		common.FormatMoney(receipt.Bet.Stake),
	)
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to bet: %v", err)
	}

	b.refreshAnnouncement(receipt.Poll.Reference, pollID)
}

func (b *Bot) handlePollClose(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	caller, err := callerFromInteraction(i)
	if err != nil {
		log.Errorf("Error resolving caller: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var pollID int64
	var winningIndex int
	for _, opt := range opts {
		switch opt.Name {
		case "id":
			pollID = opt.IntValue()
		case "winning_option":
			winningIndex = int(opt.IntValue())
		}
	}

	result, err := b.pollService.ClosePoll(ctx, caller, pollID, winningIndex)
	if err != nil {
		common.RespondWithError(s, i, userMessage(err))
		return
	}

	if err := common.RespondWithEmbed(s, i, createSettlementEmbed(result), false); err != nil {
		log.Errorf("Error responding to close: %v", err)
	}
}

func (b *Bot) handlePollShow(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var pollID int64
	for _, opt := range opts {
		if opt.Name == "id" {
			pollID = opt.IntValue()
		}
	}

	detail, err := b.pollService.GetPollDetail(ctx, pollID)
	if err != nil {
		common.RespondWithError(s, i, userMessage(err))
		return
	}

	totals, err := b.pollService.StakeTotals(ctx, pollID)
	if err != nil {
		log.Errorf("Error loading stake totals for poll %d: %v", pollID, err)
	}

	if err := common.RespondWithEmbed(s, i, createPollEmbed(detail, totals), true); err != nil {
		log.Errorf("Error responding to show: %v", err)
	}
}

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	caller, err := callerFromInteraction(i)
	if err != nil {
		log.Errorf("Error resolving caller: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	account, err := b.accountService.GetOrCreateAccount(ctx, caller)
	if err != nil {
		log.Errorf("Error resolving account for %d: %v", caller.AccountNumber, err)
		common.RespondWithError(s, i, "Unable to retrieve balance. Please try again.")
		return
	}

	message := fmt.Sprintf("%s, your current balance: **%s**", account.Name, common.FormatMoney(account.Balance))
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to balance: %v", err)
	}
}
