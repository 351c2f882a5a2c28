package service

import (
	"context"
	"time"

	"doubloon/events"
	"doubloon/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByDiscordID retrieves a user by their Discord ID
	GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error)

	// Create creates a new user with the initial balance
	Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.User, error)

	// AddBalance credits a user's balance atomically
	AddBalance(ctx context.Context, discordID int64, amount int64) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user
	GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error)
}

// VoiceSessionRepository defines the interface for voice session history and totals
type VoiceSessionRepository interface {
	// CreateRecord appends the history row for one completed session
	CreateRecord(ctx context.Context, record *models.VoiceSessionRecord) error

	// AddTotalSeconds increments the user's cumulative voice time in a guild
	AddTotalSeconds(ctx context.Context, userID, guildID, seconds int64) error

	// GetTotalSeconds returns the cumulative voice time, zero if absent
	GetTotalSeconds(ctx context.Context, userID, guildID int64) (int64, error)

	// GetRecentByUser returns the most recent completed sessions
	GetRecentByUser(ctx context.Context, guildID, userID int64, limit int) ([]*models.VoiceSessionRecord, error)
}

// SlotSpinRepository defines the interface for slot spin history
type SlotSpinRepository interface {
	// Create appends one spin record, win or lose
	Create(ctx context.Context, spin *models.SlotSpin) error

	// CountByUserSince returns how many spins a user made since a given time
	CountByUserSince(ctx context.Context, guildID, userID int64, since time.Time) (int64, error)
}

// DailyRewardRepository defines the interface for daily reward claims
type DailyRewardRepository interface {
	// GetByDiscordID returns the claim record, nil if never claimed
	GetByDiscordID(ctx context.Context, discordID int64) (*models.DailyReward, error)

	// TryClaim atomically advances the last reward date, reporting whether
	// this call won the claim for the given day
	TryClaim(ctx context.Context, discordID int64, day time.Time) (bool, error)
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates a new one with initial balance
	GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error)

	// GetBalance returns the user's current balance, zero for unknown users
	GetBalance(ctx context.Context, discordID int64) (int64, error)
}

// GamblingService defines the interface for slot roll orchestration
type GamblingService interface {
	// SpinFor runs one slot roll for a user, persists the spin record and
	// credits any payout
	SpinFor(ctx context.Context, guildID, userID, channelID int64, username string, rarity RarityTier) (*SpinResult, error)
}

// DailyRewardService defines the interface for the daily login bonus
type DailyRewardService interface {
	// GrantIfEligible credits the daily bonus at most once per UTC calendar
	// day, reporting whether a credit happened
	GrantIfEligible(ctx context.Context, guildID, discordID int64, username string) (bool, error)
}

// VoiceStatsService defines the interface for voice time queries
type VoiceStatsService interface {
	// GetTotalVoiceTime returns the user's cumulative voice time in a guild,
	// including any session still in progress
	GetTotalVoiceTime(ctx context.Context, guildID, userID int64) (time.Duration, error)
}

// Notifier is the user-facing announcement surface, implemented by the bot.
// All methods are best-effort; failures stay inside the implementation.
type Notifier interface {
	// AnnounceJoin sends the rarity-flavored join announcement
	AnnounceJoin(guildID, channelID, userID int64, rarity RarityTier)

	// AnnounceSpin sends the slot roll result
	AnnounceSpin(guildID, userID int64, result *SpinResult)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	VoiceSessionRepository() VoiceSessionRepository
	SlotSpinRepository() SlotSpinRepository
	DailyRewardRepository() DailyRewardRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
