package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"marketbot/events"
	"marketbot/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token             string
	GuildID           string
	MaxLockinDuration time.Duration
}

type Bot struct {
	config         Config
	session        *discordgo.Session
	accountService service.AccountService
	pollService    service.PollService
	eventBus       *events.Bus
}

func New(config Config, accountService service.AccountService, pollService service.PollService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:         config,
		session:        dg,
		accountService: accountService,
		pollService:    pollService,
		eventBus:       eventBus,
	}

	dg.AddHandler(bot.handleCommands)

	// Keep announcement messages current as polls move through their
	// lifecycle, regardless of what triggered the transition.
	eventBus.Subscribe(events.EventTypePollLocked, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.PollLockedEvent); ok {
			bot.refreshAnnouncement(e.Poll.Reference, e.Poll.ID)
		}
	})
	eventBus.Subscribe(events.EventTypePollFinalized, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.PollFinalizedEvent); ok {
			bot.refreshAnnouncement(e.Poll.Reference, e.Poll.ID)
		}
	})

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.handleBalance(s, i)
	case "poll":
		b.handlePollCommand(s, i)
	}
}

// refreshAnnouncement re-renders the poll's announcement message in
// place. A poll created before its announcement was recorded has an
// empty reference; nothing to refresh then.
func (b *Bot) refreshAnnouncement(reference string, pollID int64) {
	if reference == "" {
		return
	}

	channelID, messageID, ok := strings.Cut(reference, "/")
	if !ok {
		log.Warnf("Malformed reference %q on poll %d", reference, pollID)
		return
	}

	ctx := context.Background()
	detail, err := b.pollService.GetPollDetail(ctx, pollID)
	if err != nil {
		log.Errorf("Error loading poll %d for announcement refresh: %v", pollID, err)
		return
	}

	totals, err := b.pollService.StakeTotals(ctx, pollID)
	if err != nil {
		log.Errorf("Error loading stake totals for poll %d: %v", pollID, err)
	}

	if _, err := b.session.ChannelMessageEditEmbed(channelID, messageID, createPollEmbed(detail, totals)); err != nil {
		log.Errorf("Error editing announcement for poll %d: %v", pollID, err)
	}
}
