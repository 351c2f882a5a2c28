package service

import (
	"context"
	"fmt"

	"doubloon/config"
	"doubloon/events"
	"doubloon/models"

	log "github.com/sirupsen/logrus"
)

// SpinResult is the outcome of one slot roll
type SpinResult struct {
	Grid       SlotGrid
	Rarity     RarityTier
	Won        bool
	Symbol     string
	Payout     int64
	NewBalance int64
}

type gamblingService struct {
	uowFactory UnitOfWorkFactory

	// spin is swapped out in tests for deterministic grids
	spin func() SlotGrid
}

// NewGamblingService creates a new gambling service
func NewGamblingService(uowFactory UnitOfWorkFactory) GamblingService {
	return &gamblingService{
		uowFactory: uowFactory,
		spin:       rollGrid,
	}
}

// SpinFor runs one slot roll for a user: spins a grid, persists the spin
// record win or lose, and credits any payout with a balance history row in
// the same transaction. Persistence is best-effort relative to user-facing
// feedback: the returned result is valid even when err is non-nil.
func (s *gamblingService) SpinFor(ctx context.Context, guildID, userID, channelID int64, username string, rarity RarityTier) (*SpinResult, error) {
	grid := s.spin()
	won, symbol, payout := EvaluateGrid(grid)

	result := &SpinResult{
		Grid:   grid,
		Rarity: rarity,
		Won:    won,
		Symbol: symbol,
		Payout: payout,
	}

	if err := s.persistSpin(ctx, guildID, userID, channelID, username, result); err != nil {
		return result, fmt.Errorf("failed to persist spin for user %d: %w", userID, err)
	}

	return result, nil
}

func (s *gamblingService) persistSpin(ctx context.Context, guildID, userID, channelID int64, username string, result *SpinResult) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByDiscordID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		// The daily reward path normally creates the user on join; a missing
		// row here means that write lost a race or failed.
		startingBalance := config.Get().StartingBalance
		user, err = uow.UserRepository().Create(ctx, userID, username, startingBalance)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		log.WithFields(log.Fields{
			"userID": userID,
		}).Info("Created user on first slot roll")
	}

	spin := &models.SlotSpin{
		GuildID:   guildID,
		UserID:    userID,
		ChannelID: channelID,
		Rarity:    string(result.Rarity),
		Grid:      result.Grid.String(),
		Won:       result.Won,
		Payout:    result.Payout,
	}
	if result.Won {
		spin.Symbol = &result.Symbol
	}

	if err := uow.SlotSpinRepository().Create(ctx, spin); err != nil {
		return fmt.Errorf("failed to create spin record: %w", err)
	}

	result.NewBalance = user.Balance

	if result.Payout > 0 {
		if err := uow.UserRepository().AddBalance(ctx, userID, result.Payout); err != nil {
			return fmt.Errorf("failed to credit payout: %w", err)
		}
		result.NewBalance = user.Balance + result.Payout

		history := &models.BalanceHistory{
			DiscordID:       userID,
			GuildID:         guildID,
			BalanceBefore:   user.Balance,
			BalanceAfter:    result.NewBalance,
			ChangeAmount:    result.Payout,
			TransactionType: models.TransactionTypeSlotPayout,
			TransactionMetadata: map[string]any{
				"rarity": string(result.Rarity),
				"symbol": result.Symbol,
			},
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return fmt.Errorf("failed to record balance change: %w", err)
		}
	}

	uow.EventBus().Publish(events.SpinCompletedEvent{
		GuildID:   guildID,
		UserID:    userID,
		ChannelID: channelID,
		Rarity:    string(result.Rarity),
		Won:       result.Won,
		Payout:    result.Payout,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
