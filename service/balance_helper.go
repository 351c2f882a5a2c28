package service

import (
	"context"
	"fmt"

	"doubloon/events"
	"doubloon/models"
)

// RecordBalanceChange records a balance history entry and emits the matching
// events. This is the single entry point for all balance changes.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	// Emitted after the transaction commits
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          history.DiscordID,
		GuildID:         history.GuildID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	if history.TransactionType == models.TransactionTypeInitial {
		if username, ok := history.TransactionMetadata["username"].(string); ok {
			uow.EventBus().Publish(events.UserCreatedEvent{
				DiscordID:      history.DiscordID,
				Username:       username,
				InitialBalance: history.BalanceAfter,
			})
		}
	}

	return nil
}
