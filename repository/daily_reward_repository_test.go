package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"doubloon/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyRewardRepository_TryClaim(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewDailyRewardRepository(testDB.DB)
	ctx := context.Background()

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	nextDay := day.AddDate(0, 0, 1)

	t.Run("first claim wins", func(t *testing.T) {
		won, err := repo.TryClaim(ctx, 123456, day)
		require.NoError(t, err)
		assert.True(t, won)
	})

	t.Run("second claim same day loses", func(t *testing.T) {
		won, err := repo.TryClaim(ctx, 123456, day)
		require.NoError(t, err)
		assert.False(t, won)
	})

	t.Run("next day wins again", func(t *testing.T) {
		won, err := repo.TryClaim(ctx, 123456, nextDay)
		require.NoError(t, err)
		assert.True(t, won)

		reward, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		require.NotNil(t, reward)
		assert.Equal(t, nextDay, reward.LastRewardDate.UTC())
	})

	t.Run("stale day never wins", func(t *testing.T) {
		won, err := repo.TryClaim(ctx, 123456, day)
		require.NoError(t, err)
		assert.False(t, won)
	})

	t.Run("never claimed returns nil", func(t *testing.T) {
		reward, err := repo.GetByDiscordID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, reward)
	})
}

func TestDailyRewardRepository_TryClaim_Concurrent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewDailyRewardRepository(testDB.DB)
	ctx := context.Background()

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Many simultaneous claims for the same user and day: exactly one wins
	const workers = 10
	var wins atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			won, err := repo.TryClaim(ctx, 123456, day)
			assert.NoError(t, err)
			if won {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
