package service

import (
	"context"
	"fmt"
	"time"

	"doubloon/config"
	"doubloon/events"
	"doubloon/models"
)

// dailyRewardService implements the DailyRewardService interface
type dailyRewardService struct {
	uowFactory UnitOfWorkFactory
	clock      Clock
}

// NewDailyRewardService creates a new daily reward service
func NewDailyRewardService(uowFactory UnitOfWorkFactory, clock Clock) DailyRewardService {
	return &dailyRewardService{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// GrantIfEligible credits the daily login bonus at most once per UTC calendar
// day. The claim itself is a conditional upsert, so two concurrent joins for
// the same user settle inside the store and only one caller sees true.
func (s *dailyRewardService) GrantIfEligible(ctx context.Context, guildID, discordID int64, username string) (bool, error) {
	now := s.clock.Now().UTC()
	day := now.Truncate(24 * time.Hour)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	claimed, err := uow.DailyRewardRepository().TryClaim(ctx, discordID, day)
	if err != nil {
		return false, fmt.Errorf("failed to claim daily reward: %w", err)
	}
	if !claimed {
		return false, nil
	}

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	cfg := config.Get()
	amount := cfg.DailyRewardAmount

	var balanceBefore int64
	if user == nil {
		user, err = uow.UserRepository().Create(ctx, discordID, username, cfg.StartingBalance)
		if err != nil {
			return false, fmt.Errorf("failed to create user: %w", err)
		}

		initial := &models.BalanceHistory{
			DiscordID:       discordID,
			GuildID:         guildID,
			BalanceBefore:   0,
			BalanceAfter:    cfg.StartingBalance,
			ChangeAmount:    cfg.StartingBalance,
			TransactionType: models.TransactionTypeInitial,
			TransactionMetadata: map[string]any{
				"username": username,
			},
		}
		if err := RecordBalanceChange(ctx, uow, initial); err != nil {
			return false, fmt.Errorf("failed to record initial balance: %w", err)
		}
	}
	balanceBefore = user.Balance

	if err := uow.UserRepository().AddBalance(ctx, discordID, amount); err != nil {
		return false, fmt.Errorf("failed to credit daily reward: %w", err)
	}
	newBalance := balanceBefore + amount

	history := &models.BalanceHistory{
		DiscordID:       discordID,
		GuildID:         guildID,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    newBalance,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeDailyReward,
		TransactionMetadata: map[string]any{
			"day": day.Format("2006-01-02"),
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return false, fmt.Errorf("failed to record balance change: %w", err)
	}

	uow.EventBus().Publish(events.DailyRewardGrantedEvent{
		GuildID:    guildID,
		UserID:     discordID,
		Amount:     amount,
		NewBalance: newBalance,
	})

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}
