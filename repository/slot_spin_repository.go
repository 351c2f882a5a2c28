package repository

import (
	"context"
	"fmt"
	"time"

	"doubloon/database"
	"doubloon/models"
)

// SlotSpinRepository implements the service.SlotSpinRepository interface
type SlotSpinRepository struct {
	q queryable
}

// NewSlotSpinRepository creates a new slot spin repository
func NewSlotSpinRepository(db *database.DB) *SlotSpinRepository {
	return &SlotSpinRepository{q: db.Pool}
}

// newSlotSpinRepositoryWithTx creates a new slot spin repository with a transaction
func newSlotSpinRepositoryWithTx(tx queryable) *SlotSpinRepository {
	return &SlotSpinRepository{q: tx}
}

// Create appends one spin record, win or lose
func (r *SlotSpinRepository) Create(ctx context.Context, spin *models.SlotSpin) error {
	query := `
		INSERT INTO slot_spins (guild_id, user_id, channel_id, rarity, grid, won, symbol, payout)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		spin.GuildID,
		spin.UserID,
		spin.ChannelID,
		spin.Rarity,
		spin.Grid,
		spin.Won,
		spin.Symbol,
		spin.Payout,
	).Scan(&spin.ID, &spin.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create slot spin record for user %d: %w", spin.UserID, err)
	}

	return nil
}

// CountByUserSince returns how many spins a user has made since a given time
func (r *SlotSpinRepository) CountByUserSince(ctx context.Context, guildID, userID int64, since time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM slot_spins
		WHERE guild_id = $1 AND user_id = $2 AND created_at >= $3
	`

	var count int64
	if err := r.q.QueryRow(ctx, query, guildID, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count slot spins for user %d: %w", userID, err)
	}

	return count, nil
}
