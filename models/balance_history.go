package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial     TransactionType = "initial"
	TransactionTypeDailyReward TransactionType = "daily_reward"
	TransactionTypeSlotPayout  TransactionType = "slot_payout"
)

// BalanceHistory represents a historical balance change. Balances are only
// ever credited by this bot, so ChangeAmount is always positive.
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	DiscordID           int64           `db:"discord_id"`
	GuildID             int64           `db:"guild_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}
