package repository

import (
	"context"
	"sync"
	"testing"

	"doubloon/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("get missing user returns nil", func(t *testing.T) {
		user, err := repo.GetByDiscordID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("create and get round trip", func(t *testing.T) {
		created, err := repo.Create(ctx, 123456, "testuser", 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(123456), created.DiscordID)
		assert.Equal(t, "testuser", created.Username)
		assert.Equal(t, int64(1000), created.Balance)
		assert.False(t, created.CreatedAt.IsZero())

		fetched, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, created.Balance, fetched.Balance)
	})

	t.Run("duplicate create fails", func(t *testing.T) {
		_, err := repo.Create(ctx, 123456, "testuser", 1000)
		assert.Error(t, err)
	})
}

func TestUserRepository_AddBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 123456, "testuser", 1000)
	require.NoError(t, err)

	t.Run("credits the balance", func(t *testing.T) {
		require.NoError(t, repo.AddBalance(ctx, 123456, 50))

		user, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		assert.Equal(t, int64(1050), user.Balance)
	})

	t.Run("unknown user errors", func(t *testing.T) {
		assert.Error(t, repo.AddBalance(ctx, 999999, 50))
	})

	t.Run("non-positive amount errors", func(t *testing.T) {
		assert.Error(t, repo.AddBalance(ctx, 123456, 0))
		assert.Error(t, repo.AddBalance(ctx, 123456, -5))
	})

	t.Run("concurrent credits all land", func(t *testing.T) {
		before, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)

		const workers = 20
		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				assert.NoError(t, repo.AddBalance(ctx, 123456, 10))
			}()
		}
		wg.Wait()

		after, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		assert.Equal(t, before.Balance+workers*10, after.Balance)
	})
}
