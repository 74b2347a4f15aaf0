package bot

import (
	"fmt"
	"strings"

	"marketbot/bot/common"
	"marketbot/models"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
)

const (
	colorOpen      = 0xFFD700 // gold
	colorLocked    = 0x3498DB // blue
	colorFinalized = 0x9B59B6 // purple
)

// createPollEmbed renders a poll with its options and running stake
// totals. StakeTotals may be nil for a freshly created poll.
func createPollEmbed(detail *models.PollDetail, stakeTotals []decimal.Decimal) *discordgo.MessageEmbed {
	poll := detail.Poll

	embed := &discordgo.MessageEmbed{
		Title: poll.Question,
		Color: colorOpen,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Poll ID: %d | by %s", poll.ID, detail.Owner.Name),
		},
		Timestamp: poll.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	switch {
	case poll.IsFinalized():
		embed.Color = colorFinalized
		embed.Description = "**CLOSED**"
	case poll.IsOpen():
		embed.Description = fmt.Sprintf("Betting locks %s", common.FormatDiscordTimestamp(poll.LockinBy, "R"))
	default:
		embed.Color = colorLocked
		embed.Description = "**LOCKED** — no more bets"
	}

	for i, option := range detail.Options {
		name := fmt.Sprintf("%d. %s", option.Index, option.Value)
		if option.Winning {
			name = "🏆 " + name
		}

		value := "*No bets yet*"
		if stakeTotals != nil && i < len(stakeTotals) && !stakeTotals[i].IsZero() {
			value = fmt.Sprintf("**%s** staked", common.FormatMoney(stakeTotals[i]))
		}

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   name,
			Value:  value,
			Inline: false,
		})
	}

	return embed
}

// createSettlementEmbed renders the outcome of a finalized poll
func createSettlementEmbed(result *models.SettlementResult) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Poll settled: %s", result.Poll.Question),
		Description: fmt.Sprintf("Winner: **%s**", result.WinningOption.Value),
		Color:       colorFinalized,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Poll ID: %d", result.Poll.ID),
		},
	}

	if len(result.Payouts) == 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Payouts",
			Value: "*Nobody bet on the winning option*",
		})
		return embed
	}

	var lines []string
	for _, payout := range result.Payouts {
		lines = append(lines, fmt.Sprintf("<@%d> wins **%s**", payout.AccountNumber, common.FormatMoney(payout.Amount)))
	}

	value := strings.Join(lines, "\n")
	if len(value) > 1024 {
		value = value[:1021] + "..."
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("Payouts (pot %s, %sx)", common.FormatMoney(result.TotalPot), result.PayoutRatio.Round(2)),
		Value: value,
	})

	return embed
}
