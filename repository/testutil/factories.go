package testutil

import (
	"time"

	"doubloon/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(discordID int64, username string) *models.User {
	now := time.Now()
	return &models.User{
		DiscordID: discordID,
		Username:  username,
		Balance:   1000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(discordID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		DiscordID:       discordID,
		GuildID:         100,
		BalanceBefore:   1000,
		BalanceAfter:    1050,
		ChangeAmount:    50,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}

// CreateTestVoiceSession creates a completed session record
func CreateTestVoiceSession(guildID, userID int64, duration time.Duration) *models.VoiceSessionRecord {
	ended := time.Now().UTC().Truncate(time.Second)
	return &models.VoiceSessionRecord{
		GuildID:         guildID,
		UserID:          userID,
		ChannelID:       555,
		StartedAt:       ended.Add(-duration),
		EndedAt:         ended,
		DurationSeconds: int64(duration / time.Second),
	}
}

// CreateTestSlotSpin creates a losing spin record
func CreateTestSlotSpin(guildID, userID int64) *models.SlotSpin {
	return &models.SlotSpin{
		GuildID:   guildID,
		UserID:    userID,
		ChannelID: 555,
		Rarity:    "common",
		Grid:      "🍒 🍋 🍊\n🍋 🍊 🍒\n🍊 🍒 🍋",
		Won:       false,
		Payout:    0,
	}
}
