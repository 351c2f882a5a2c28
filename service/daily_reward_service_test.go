package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"doubloon/events"
	"doubloon/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDailyRewardFixture(t *testing.T, clock Clock) (DailyRewardService, *MockUnitOfWork, *MockUserRepository, *MockBalanceHistoryRepository, *MockDailyRewardRepository, *MockEventPublisher) {
	t.Helper()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockBalanceHistoryRepo := new(MockBalanceHistoryRepository)
	mockDailyRewardRepo := new(MockDailyRewardRepository)
	mockEventBus := new(MockEventPublisher)

	mockUoW.SetRepositories(mockUserRepo, mockBalanceHistoryRepo, nil, nil, mockDailyRewardRepo, mockEventBus)
	mockFactory.On("Create").Return(mockUoW)

	svc := NewDailyRewardService(mockFactory, clock)
	return svc, mockUoW, mockUserRepo, mockBalanceHistoryRepo, mockDailyRewardRepo, mockEventBus
}

func TestDailyRewardService_GrantIfEligible_FirstJoinOfDay(t *testing.T) {
	ctx := context.Background()
	clock := &FixedClock{Time: time.Date(2026, 3, 1, 23, 59, 30, 0, time.UTC)}
	svc, mockUoW, mockUserRepo, mockBalanceHistoryRepo, mockDailyRewardRepo, mockEventBus := newDailyRewardFixture(t, clock)

	midnight := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// The claim is keyed by the UTC calendar day, not the instant
	mockDailyRewardRepo.On("TryClaim", ctx, int64(456), midnight).Return(true, nil)
	mockUserRepo.On("GetByDiscordID", ctx, int64(456)).Return(&models.User{
		DiscordID: 456,
		Balance:   1000,
	}, nil)
	mockUserRepo.On("AddBalance", ctx, int64(456), int64(50)).Return(nil)
	mockBalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.DiscordID == 456 &&
			h.BalanceBefore == 1000 &&
			h.BalanceAfter == 1050 &&
			h.ChangeAmount == 50 &&
			h.TransactionType == models.TransactionTypeDailyReward
	})).Return(nil)
	mockEventBus.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()
	mockEventBus.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		granted, ok := e.(events.DailyRewardGrantedEvent)
		return ok && granted.Amount == 50 && granted.NewBalance == 1050
	})).Return()

	granted, err := svc.GrantIfEligible(ctx, 123, 456, "sailor")

	require.NoError(t, err)
	assert.True(t, granted)

	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockBalanceHistoryRepo.AssertExpectations(t)
	mockDailyRewardRepo.AssertExpectations(t)
	mockEventBus.AssertExpectations(t)
}

func TestDailyRewardService_GrantIfEligible_AlreadyClaimed(t *testing.T) {
	ctx := context.Background()
	clock := &FixedClock{Time: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc, mockUoW, mockUserRepo, mockBalanceHistoryRepo, mockDailyRewardRepo, _ := newDailyRewardFixture(t, clock)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockDailyRewardRepo.On("TryClaim", ctx, int64(456), mock.Anything).Return(false, nil)

	granted, err := svc.GrantIfEligible(ctx, 123, 456, "sailor")

	require.NoError(t, err)
	assert.False(t, granted)

	// Losing the claim means no balance activity at all
	mockUserRepo.AssertNotCalled(t, "AddBalance")
	mockBalanceHistoryRepo.AssertNotCalled(t, "Record")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestDailyRewardService_GrantIfEligible_CreatesUnknownUser(t *testing.T) {
	ctx := context.Background()
	clock := &FixedClock{Time: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	svc, mockUoW, mockUserRepo, mockBalanceHistoryRepo, mockDailyRewardRepo, mockEventBus := newDailyRewardFixture(t, clock)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockDailyRewardRepo.On("TryClaim", ctx, int64(456), mock.Anything).Return(true, nil)
	mockUserRepo.On("GetByDiscordID", ctx, int64(456)).Return(nil, nil)
	mockUserRepo.On("Create", ctx, int64(456), "newbie", int64(1000)).Return(&models.User{
		DiscordID: 456,
		Username:  "newbie",
		Balance:   1000,
	}, nil)
	mockUserRepo.On("AddBalance", ctx, int64(456), int64(50)).Return(nil)

	// One history row for the starting balance, one for the bonus
	mockBalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeInitial && h.BalanceAfter == 1000
	})).Return(nil)
	mockBalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeDailyReward && h.BalanceAfter == 1050
	})).Return(nil)

	mockEventBus.On("Publish", mock.Anything).Return()

	granted, err := svc.GrantIfEligible(ctx, 123, 456, "newbie")

	require.NoError(t, err)
	assert.True(t, granted)

	mockUserRepo.AssertExpectations(t)
	mockBalanceHistoryRepo.AssertExpectations(t)
}

func TestDailyRewardService_GrantIfEligible_ClaimError(t *testing.T) {
	ctx := context.Background()
	clock := &FixedClock{Time: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc, mockUoW, mockUserRepo, _, mockDailyRewardRepo, _ := newDailyRewardFixture(t, clock)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockDailyRewardRepo.On("TryClaim", ctx, int64(456), mock.Anything).Return(false, errors.New("connection reset"))

	granted, err := svc.GrantIfEligible(ctx, 123, 456, "sailor")

	assert.Error(t, err)
	assert.False(t, granted)
	mockUserRepo.AssertNotCalled(t, "AddBalance")
}
