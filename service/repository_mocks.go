package service

import (
	"context"
	"time"

	"doubloon/events"
	"doubloon/models"

	"github.com/stretchr/testify/mock"
)

// Testify mocks shared by the service tests.

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.User, error) {
	args := m.Called(ctx, discordID, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, discordID int64, amount int64) error {
	args := m.Called(ctx, discordID, amount)
	return args.Error(0)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockVoiceSessionRepository is a mock implementation of VoiceSessionRepository
type MockVoiceSessionRepository struct {
	mock.Mock
}

func (m *MockVoiceSessionRepository) CreateRecord(ctx context.Context, record *models.VoiceSessionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockVoiceSessionRepository) AddTotalSeconds(ctx context.Context, userID, guildID, seconds int64) error {
	args := m.Called(ctx, userID, guildID, seconds)
	return args.Error(0)
}

func (m *MockVoiceSessionRepository) GetTotalSeconds(ctx context.Context, userID, guildID int64) (int64, error) {
	args := m.Called(ctx, userID, guildID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVoiceSessionRepository) GetRecentByUser(ctx context.Context, guildID, userID int64, limit int) ([]*models.VoiceSessionRecord, error) {
	args := m.Called(ctx, guildID, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.VoiceSessionRecord), args.Error(1)
}

// MockSlotSpinRepository is a mock implementation of SlotSpinRepository
type MockSlotSpinRepository struct {
	mock.Mock
}

func (m *MockSlotSpinRepository) Create(ctx context.Context, spin *models.SlotSpin) error {
	args := m.Called(ctx, spin)
	return args.Error(0)
}

func (m *MockSlotSpinRepository) CountByUserSince(ctx context.Context, guildID, userID int64, since time.Time) (int64, error) {
	args := m.Called(ctx, guildID, userID, since)
	return args.Get(0).(int64), args.Error(1)
}

// MockDailyRewardRepository is a mock implementation of DailyRewardRepository
type MockDailyRewardRepository struct {
	mock.Mock
}

func (m *MockDailyRewardRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.DailyReward, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyReward), args.Error(1)
}

func (m *MockDailyRewardRepository) TryClaim(ctx context.Context, discordID int64, day time.Time) (bool, error) {
	args := m.Called(ctx, discordID, day)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock

	userRepo        UserRepository
	balanceHistRepo BalanceHistoryRepository
	voiceRepo       VoiceSessionRepository
	slotSpinRepo    SlotSpinRepository
	dailyRewardRepo DailyRewardRepository
	eventBus        EventPublisher
}

// SetRepositories wires the mock repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	balanceHistRepo BalanceHistoryRepository,
	voiceRepo VoiceSessionRepository,
	slotSpinRepo SlotSpinRepository,
	dailyRewardRepo DailyRewardRepository,
	eventBus EventPublisher,
) {
	m.userRepo = userRepo
	m.balanceHistRepo = balanceHistRepo
	m.voiceRepo = voiceRepo
	m.slotSpinRepo = slotSpinRepo
	m.dailyRewardRepo = dailyRewardRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistRepo
}

func (m *MockUnitOfWork) VoiceSessionRepository() VoiceSessionRepository {
	return m.voiceRepo
}

func (m *MockUnitOfWork) SlotSpinRepository() SlotSpinRepository {
	return m.slotSpinRepo
}

func (m *MockUnitOfWork) DailyRewardRepository() DailyRewardRepository {
	return m.dailyRewardRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) AnnounceJoin(guildID, channelID, userID int64, rarity RarityTier) {
	m.Called(guildID, channelID, userID, rarity)
}

func (m *MockNotifier) AnnounceSpin(guildID, userID int64, result *SpinResult) {
	m.Called(guildID, userID, result)
}

// MockGamblingService is a mock implementation of GamblingService
type MockGamblingService struct {
	mock.Mock
}

func (m *MockGamblingService) SpinFor(ctx context.Context, guildID, userID, channelID int64, username string, rarity RarityTier) (*SpinResult, error) {
	args := m.Called(ctx, guildID, userID, channelID, username, rarity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SpinResult), args.Error(1)
}

// MockDailyRewardService is a mock implementation of DailyRewardService
type MockDailyRewardService struct {
	mock.Mock
}

func (m *MockDailyRewardService) GrantIfEligible(ctx context.Context, guildID, discordID int64, username string) (bool, error) {
	args := m.Called(ctx, guildID, discordID, username)
	return args.Bool(0), args.Error(1)
}

// FixedClock is a Clock pinned to a settable instant
type FixedClock struct {
	Time time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.Time
}
