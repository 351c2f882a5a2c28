package bot

import (
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"doubloon/bot/common"
	"doubloon/service"

	"github.com/bwmarrin/discordgo"
)

// announcementTTL is how long a join announcement stays before deletion
const announcementTTL = 5 * time.Minute

// Announcer implements service.Notifier over a Discord session. Everything
// here is best-effort: a failed lookup or send is logged and swallowed so
// presence processing never stalls on Discord API hiccups.
type Announcer struct {
	session     *discordgo.Session
	channelName string
}

// NewAnnouncer creates an announcer preferring the named text channel
func NewAnnouncer(session *discordgo.Session, channelName string) *Announcer {
	return &Announcer{
		session:     session,
		channelName: channelName,
	}
}

// AnnounceJoin sends the rarity-flavored join announcement and removes it
// after the TTL so the channel doesn't silt up.
func (a *Announcer) AnnounceJoin(guildID, channelID, userID int64, rarity service.RarityTier) {
	guildStr := strconv.FormatInt(guildID, 10)
	userStr := strconv.FormatInt(userID, 10)

	targetID, err := a.findAnnounceChannel(guildStr)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
		}).WithError(err).Warn("No announce channel available")
		return
	}

	displayName := a.displayName(guildStr, userStr)
	channelName := a.voiceChannelName(strconv.FormatInt(channelID, 10))

	msg := "🔔 " + service.RollJoinMessage(rarity, displayName, channelName)

	sent, err := a.session.ChannelMessageSend(targetID, msg)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
		}).WithError(err).Warn("Failed to send join announcement")
		return
	}

	// Discord has no server-side expiry for plain messages
	time.AfterFunc(announcementTTL, func() {
		if err := a.session.ChannelMessageDelete(sent.ChannelID, sent.ID); err != nil {
			log.WithError(err).Debug("Failed to delete expired announcement")
		}
	})
}

// AnnounceSpin posts the slot roll outcome with the rendered grid
func (a *Announcer) AnnounceSpin(guildID, userID int64, result *service.SpinResult) {
	guildStr := strconv.FormatInt(guildID, 10)
	userStr := strconv.FormatInt(userID, 10)

	targetID, err := a.findAnnounceChannel(guildStr)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
		}).WithError(err).Warn("No announce channel available")
		return
	}

	msg := fmt.Sprintf("🎰 <@%s> stuck around, the slots are rolling!\n%s\n%s",
		userStr,
		result.Grid.String(),
		common.FormatSpinResult(result.Won, result.Symbol, result.Payout, result.NewBalance))

	if _, err := a.session.ChannelMessageSend(targetID, msg); err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
		}).WithError(err).Warn("Failed to send spin announcement")
	}
}

// AnnounceDailyReward posts the login bonus notice
func (a *Announcer) AnnounceDailyReward(guildID, userID, amount, newBalance int64) {
	guildStr := strconv.FormatInt(guildID, 10)
	userStr := strconv.FormatInt(userID, 10)

	targetID, err := a.findAnnounceChannel(guildStr)
	if err != nil {
		return
	}

	msg := fmt.Sprintf("💰 <@%s> collected their daily **%s doubloons**! Balance: **%s doubloons**",
		userStr, common.FormatDoubloons(amount), common.FormatDoubloons(newBalance))

	if _, err := a.session.ChannelMessageSend(targetID, msg); err != nil {
		log.WithError(err).Warn("Failed to send daily reward notice")
	}
}

// findAnnounceChannel returns the preferred text channel's ID: the channel
// named like the configured announce channel when present, otherwise the
// guild's first text channel.
func (a *Announcer) findAnnounceChannel(guildID string) (string, error) {
	channels, err := a.guildChannels(guildID)
	if err != nil {
		return "", err
	}

	var first *discordgo.Channel
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if ch.Name == a.channelName {
			return ch.ID, nil
		}
		if first == nil || ch.Position < first.Position {
			first = ch
		}
	}
	if first == nil {
		return "", fmt.Errorf("guild %s has no text channels", guildID)
	}
	return first.ID, nil
}

func (a *Announcer) guildChannels(guildID string) ([]*discordgo.Channel, error) {
	if guild, err := a.session.State.Guild(guildID); err == nil && len(guild.Channels) > 0 {
		return guild.Channels, nil
	}
	channels, err := a.session.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

// displayName resolves the friendliest available name for a member
func (a *Announcer) displayName(guildID, userID string) string {
	member, err := a.session.State.Member(guildID, userID)
	if err != nil {
		member, err = a.session.GuildMember(guildID, userID)
	}
	if err != nil || member == nil || member.User == nil {
		return "<@" + userID + ">"
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

// voiceChannelName resolves a voice channel's display name
func (a *Announcer) voiceChannelName(channelID string) string {
	ch, err := a.session.State.Channel(channelID)
	if err != nil {
		ch, err = a.session.Channel(channelID)
	}
	if err != nil || ch == nil {
		return "a voice channel"
	}
	return ch.Name
}
