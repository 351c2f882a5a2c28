package models

import (
	"time"
)

// SlotSpin is the append-only record of one slot roll, written win or lose.
// Grid holds the 3×3 symbols flattened row-major.
type SlotSpin struct {
	ID        int64     `db:"id"`
	GuildID   int64     `db:"guild_id"`
	UserID    int64     `db:"user_id"`
	ChannelID int64     `db:"channel_id"`
	Rarity    string    `db:"rarity"`
	Grid      string    `db:"grid"`
	Won       bool      `db:"won"`
	Symbol    *string   `db:"symbol"`
	Payout    int64     `db:"payout"`
	CreatedAt time.Time `db:"created_at"`
}
