package models

import (
	"time"
)

// DailyReward tracks the last UTC calendar day a user claimed the login bonus
type DailyReward struct {
	DiscordID      int64     `db:"discord_id"`
	LastRewardDate time.Time `db:"last_reward_date"`
}
