package repository

import (
	"context"
	"fmt"
	"time"

	"doubloon/database"
	"doubloon/models"
	"github.com/jackc/pgx/v5"
)

// DailyRewardRepository implements the service.DailyRewardRepository interface
type DailyRewardRepository struct {
	q queryable
}

// NewDailyRewardRepository creates a new daily reward repository
func NewDailyRewardRepository(db *database.DB) *DailyRewardRepository {
	return &DailyRewardRepository{q: db.Pool}
}

// newDailyRewardRepositoryWithTx creates a new daily reward repository with a transaction
func newDailyRewardRepositoryWithTx(tx queryable) *DailyRewardRepository {
	return &DailyRewardRepository{q: tx}
}

// GetByDiscordID returns the user's claim record, or nil if they have never claimed
func (r *DailyRewardRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.DailyReward, error) {
	query := `
		SELECT discord_id, last_reward_date
		FROM daily_rewards
		WHERE discord_id = $1
	`

	var reward models.DailyReward
	err := r.q.QueryRow(ctx, query, discordID).Scan(&reward.DiscordID, &reward.LastRewardDate)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily reward for user %d: %w", discordID, err)
	}

	return &reward, nil
}

// TryClaim advances the user's last reward date to day and reports whether
// this call won the claim. The conditional upsert makes the claim atomic:
// a second same-day claim matches zero rows.
func (r *DailyRewardRepository) TryClaim(ctx context.Context, discordID int64, day time.Time) (bool, error) {
	query := `
		INSERT INTO daily_rewards (discord_id, last_reward_date)
		VALUES ($1, $2)
		ON CONFLICT (discord_id)
		DO UPDATE SET last_reward_date = EXCLUDED.last_reward_date
		WHERE daily_rewards.last_reward_date < EXCLUDED.last_reward_date
	`

	result, err := r.q.Exec(ctx, query, discordID, day)
	if err != nil {
		return false, fmt.Errorf("failed to claim daily reward for user %d: %w", discordID, err)
	}

	return result.RowsAffected() > 0, nil
}
