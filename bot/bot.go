package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"doubloon/bot/common"
	"doubloon/events"
	"doubloon/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token               string
	AnnounceChannelName string
	SoundsDir           string
}

type Bot struct {
	config            Config
	session           *discordgo.Session
	userService       service.UserService
	voiceStatsService service.VoiceStatsService
	presence          *service.PresenceService
	announcer         *Announcer
	eventBus          *events.Bus
}

// New creates the Discord bot and opens the gateway connection. The bot's
// Announcer satisfies service.Notifier; hand it to the presence service and
// complete the loop with WirePresence before traffic matters.
func New(config Config, userService service.UserService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	bot := &Bot{
		config:      config,
		session:     dg,
		userService: userService,
		eventBus:    eventBus,
	}
	bot.announcer = NewAnnouncer(dg, config.AnnounceChannelName)

	dg.AddHandler(bot.handleMessage)
	dg.AddHandler(bot.handleVoiceStateUpdate)

	// Winning rolls get a celebration sound in the voice channel
	eventBus.Subscribe(events.EventTypeSpinCompleted, func(ctx context.Context, event events.Event) {
		spin, ok := event.(events.SpinCompletedEvent)
		if !ok || !spin.Won {
			return
		}
		if err := bot.playCelebration(spin.GuildID, spin.ChannelID); err != nil {
			log.WithFields(log.Fields{
				"guildID":   spin.GuildID,
				"channelID": spin.ChannelID,
			}).WithError(err).Warn("Failed to play celebration sound")
		}
	})

	eventBus.Subscribe(events.EventTypeDailyRewardGranted, func(ctx context.Context, event events.Event) {
		granted, ok := event.(events.DailyRewardGrantedEvent)
		if !ok {
			return
		}
		bot.announcer.AnnounceDailyReward(granted.GuildID, granted.UserID, granted.Amount, granted.NewBalance)
	})

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	return bot, nil
}

// Announcer returns the notification surface for the presence service
func (b *Bot) Announcer() *Announcer {
	return b.announcer
}

// WirePresence connects gateway voice events to the presence pipeline and
// the voice time read path that shares its tracker.
func (b *Bot) WirePresence(presence *service.PresenceService, voiceStats service.VoiceStatsService) {
	b.presence = presence
	b.voiceStatsService = voiceStats
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// handleVoiceStateUpdate adapts a raw gateway voice event into a presence
// event and hands it to the single-threaded pipeline.
func (b *Bot) handleVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if b.presence == nil {
		return
	}
	if vs.GuildID == "" {
		return
	}
	// Ignore the bot itself and other bots
	if vs.UserID == s.State.User.ID {
		return
	}
	if vs.Member != nil && vs.Member.User != nil && vs.Member.User.Bot {
		return
	}

	guildID, err := parseSnowflake(vs.GuildID)
	if err != nil {
		log.WithError(err).Warn("Unparseable guild ID in voice state update")
		return
	}
	userID, err := parseSnowflake(vs.UserID)
	if err != nil {
		log.WithError(err).Warn("Unparseable user ID in voice state update")
		return
	}

	var prevChannelID, newChannelID int64
	if vs.BeforeUpdate != nil && vs.BeforeUpdate.ChannelID != "" {
		if prevChannelID, err = parseSnowflake(vs.BeforeUpdate.ChannelID); err != nil {
			log.WithError(err).Warn("Unparseable previous channel ID")
			return
		}
	}
	if vs.ChannelID != "" {
		if newChannelID, err = parseSnowflake(vs.ChannelID); err != nil {
			log.WithError(err).Warn("Unparseable channel ID")
			return
		}
	}

	username := vs.UserID
	if vs.Member != nil && vs.Member.User != nil {
		username = vs.Member.User.Username
	}

	b.presence.Enqueue(service.PresenceEvent{
		GuildID:       guildID,
		UserID:        userID,
		Username:      username,
		PrevChannelID: prevChannelID,
		NewChannelID:  newChannelID,
	})
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)
	switch {
	case content == "!doubloons":
		b.handleDoubloonsCommand(s, m)
	case content == "!voicetime":
		b.handleVoiceTimeCommand(s, m)
	}
}

func (b *Bot) handleDoubloonsCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := context.Background()

	userID, err := parseSnowflake(m.Author.ID)
	if err != nil {
		return
	}

	user, err := b.userService.GetOrCreateUser(ctx, userID, m.Author.Username)
	if err != nil {
		log.WithError(err).Error("Failed to look up balance")
		s.ChannelMessageSend(m.ChannelID, "❌ Couldn't fetch your balance, try again later.")
		return
	}

	msg := fmt.Sprintf("💰 <@%s> has **%s doubloons**", m.Author.ID, common.FormatDoubloons(user.Balance))
	if _, err := s.ChannelMessageSend(m.ChannelID, msg); err != nil {
		log.WithError(err).Warn("Failed to send balance message")
	}
}

func (b *Bot) handleVoiceTimeCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	if b.voiceStatsService == nil {
		return
	}
	ctx := context.Background()

	guildID, err := parseSnowflake(m.GuildID)
	if err != nil {
		return
	}
	userID, err := parseSnowflake(m.Author.ID)
	if err != nil {
		return
	}

	total, err := b.voiceStatsService.GetTotalVoiceTime(ctx, guildID, userID)
	if err != nil {
		log.WithError(err).Error("Failed to look up voice time")
		s.ChannelMessageSend(m.ChannelID, "❌ Couldn't fetch your voice time, try again later.")
		return
	}

	msg := fmt.Sprintf("🎙️ <@%s> has spent **%s** in voice channels", m.Author.ID, common.FormatDuration(total))
	if _, err := s.ChannelMessageSend(m.ChannelID, msg); err != nil {
		log.WithError(err).Warn("Failed to send voice time message")
	}
}

func parseSnowflake(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", id, err)
	}
	return n, nil
}
