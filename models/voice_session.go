package models

import (
	"time"
)

// VoiceSessionRecord is the immutable history row written once per
// completed voice session.
type VoiceSessionRecord struct {
	ID              int64     `db:"id"`
	GuildID         int64     `db:"guild_id"`
	UserID          int64     `db:"user_id"`
	ChannelID       int64     `db:"channel_id"`
	StartedAt       time.Time `db:"started_at"`
	EndedAt         time.Time `db:"ended_at"`
	DurationSeconds int64     `db:"duration_seconds"`
	CreatedAt       time.Time `db:"created_at"`
}

// VoiceTotal is the cumulative time a user has spent in voice channels
// within one guild.
type VoiceTotal struct {
	UserID       int64 `db:"user_id"`
	GuildID      int64 `db:"guild_id"`
	TotalSeconds int64 `db:"total_seconds"`
}
