package service

import (
	"context"
	"errors"
	"testing"

	"doubloon/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetOrCreateUser_ExistingUser(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockBalanceHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, mockBalanceHistoryRepo, nil, nil, nil, nil)

	svc := NewUserService(mockFactory)

	existingUser := &models.User{
		DiscordID: 123456,
		Username:  "testuser",
		Balance:   5000,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	// No Commit expected, nothing was written

	mockUserRepo.On("GetByDiscordID", ctx, int64(123456)).Return(existingUser, nil)

	user, err := svc.GetOrCreateUser(ctx, 123456, "testuser")

	require.NoError(t, err)
	assert.Equal(t, existingUser, user)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockBalanceHistoryRepo.AssertNotCalled(t, "Record")
}

func TestUserService_GetOrCreateUser_NewUser(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockBalanceHistoryRepo := new(MockBalanceHistoryRepository)
	mockEventBus := new(MockEventPublisher)

	mockUoW.SetRepositories(mockUserRepo, mockBalanceHistoryRepo, nil, nil, nil, mockEventBus)

	svc := NewUserService(mockFactory)

	newUser := &models.User{
		DiscordID: 123456,
		Username:  "newuser",
		Balance:   1000,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByDiscordID", ctx, int64(123456)).Return(nil, nil)
	mockUserRepo.On("Create", ctx, int64(123456), "newuser", int64(1000)).Return(newUser, nil)
	mockBalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.DiscordID == 123456 &&
			h.BalanceBefore == 0 &&
			h.BalanceAfter == 1000 &&
			h.TransactionType == models.TransactionTypeInitial
	})).Return(nil)
	mockEventBus.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()
	mockEventBus.On("Publish", mock.AnythingOfType("events.UserCreatedEvent")).Return()

	user, err := svc.GetOrCreateUser(ctx, 123456, "newuser")

	require.NoError(t, err)
	assert.Equal(t, newUser, user)

	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockBalanceHistoryRepo.AssertExpectations(t)
	mockEventBus.AssertExpectations(t)
}

func TestUserService_GetOrCreateUser_RepositoryError(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil)

	svc := NewUserService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByDiscordID", ctx, int64(123456)).Return(nil, errors.New("connection reset"))

	user, err := svc.GetOrCreateUser(ctx, 123456, "testuser")

	assert.Error(t, err)
	assert.Nil(t, user)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestUserService_GetBalance_ExistingUser(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil)

	svc := NewUserService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByDiscordID", ctx, int64(123456)).Return(&models.User{
		DiscordID: 123456,
		Balance:   777,
	}, nil)

	balance, err := svc.GetBalance(ctx, 123456)

	require.NoError(t, err)
	assert.Equal(t, int64(777), balance)
}

func TestUserService_GetBalance_UnknownUser(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil)

	svc := NewUserService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByDiscordID", ctx, int64(999)).Return(nil, nil)

	balance, err := svc.GetBalance(ctx, 999)

	require.NoError(t, err)
	assert.Zero(t, balance)
}
