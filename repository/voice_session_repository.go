package repository

import (
	"context"
	"fmt"

	"doubloon/database"
	"doubloon/models"
	"github.com/jackc/pgx/v5"
)

// VoiceSessionRepository implements the service.VoiceSessionRepository
// interface: append-only session history plus cumulative per-guild totals.
type VoiceSessionRepository struct {
	q queryable
}

// NewVoiceSessionRepository creates a new voice session repository
func NewVoiceSessionRepository(db *database.DB) *VoiceSessionRepository {
	return &VoiceSessionRepository{q: db.Pool}
}

// newVoiceSessionRepositoryWithTx creates a new voice session repository with a transaction
func newVoiceSessionRepositoryWithTx(tx queryable) *VoiceSessionRepository {
	return &VoiceSessionRepository{q: tx}
}

// CreateRecord writes the immutable history row for one completed session
func (r *VoiceSessionRepository) CreateRecord(ctx context.Context, record *models.VoiceSessionRecord) error {
	query := `
		INSERT INTO voice_sessions (guild_id, user_id, channel_id, started_at, ended_at, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		record.GuildID,
		record.UserID,
		record.ChannelID,
		record.StartedAt,
		record.EndedAt,
		record.DurationSeconds,
	).Scan(&record.ID, &record.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create voice session record for user %d: %w", record.UserID, err)
	}

	return nil
}

// AddTotalSeconds increments the user's cumulative voice time for a guild.
// The increment happens server-side so concurrent leaves cannot lose seconds.
func (r *VoiceSessionRepository) AddTotalSeconds(ctx context.Context, userID, guildID, seconds int64) error {
	query := `
		INSERT INTO voice_totals (user_id, guild_id, total_seconds)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, guild_id)
		DO UPDATE SET total_seconds = voice_totals.total_seconds + EXCLUDED.total_seconds
	`

	if _, err := r.q.Exec(ctx, query, userID, guildID, seconds); err != nil {
		return fmt.Errorf("failed to add voice seconds for user %d: %w", userID, err)
	}

	return nil
}

// GetTotalSeconds returns the user's cumulative voice time for a guild.
// A missing row means zero, not an error.
func (r *VoiceSessionRepository) GetTotalSeconds(ctx context.Context, userID, guildID int64) (int64, error) {
	query := `
		SELECT total_seconds
		FROM voice_totals
		WHERE user_id = $1 AND guild_id = $2
	`

	var total int64
	err := r.q.QueryRow(ctx, query, userID, guildID).Scan(&total)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get voice total for user %d: %w", userID, err)
	}

	return total, nil
}

// GetRecentByUser returns the most recent completed sessions for a user
func (r *VoiceSessionRepository) GetRecentByUser(ctx context.Context, guildID, userID int64, limit int) ([]*models.VoiceSessionRecord, error) {
	query := `
		SELECT id, guild_id, user_id, channel_id, started_at, ended_at, duration_seconds, created_at
		FROM voice_sessions
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY started_at DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, guildID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get voice sessions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var records []*models.VoiceSessionRecord
	for rows.Next() {
		var record models.VoiceSessionRecord
		err := rows.Scan(
			&record.ID,
			&record.GuildID,
			&record.UserID,
			&record.ChannelID,
			&record.StartedAt,
			&record.EndedAt,
			&record.DurationSeconds,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voice session: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate voice sessions: %w", err)
	}

	return records, nil
}
