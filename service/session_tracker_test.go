package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTracker_JoinThenLeave(t *testing.T) {
	tracker := NewSessionTracker()
	key := SessionKey{GuildID: 1, UserID: 2}
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	stale := tracker.Join(key, 10, start)
	assert.Nil(t, stale)
	assert.True(t, tracker.IsActive(key))

	closed, ok := tracker.Leave(key, start.Add(90*time.Second))
	require.True(t, ok)
	assert.Equal(t, key, closed.Key)
	assert.Equal(t, int64(10), closed.ChannelID)
	assert.Equal(t, 90*time.Second, closed.Duration)
	assert.False(t, tracker.IsActive(key))
}

func TestSessionTracker_LeaveWithoutSession(t *testing.T) {
	tracker := NewSessionTracker()

	closed, ok := tracker.Leave(SessionKey{GuildID: 1, UserID: 2}, time.Now())

	assert.False(t, ok)
	assert.Nil(t, closed)
}

func TestSessionTracker_RejoinClosesStaleSession(t *testing.T) {
	tracker := NewSessionTracker()
	key := SessionKey{GuildID: 1, UserID: 2}
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rejoin := start.Add(5 * time.Minute)

	tracker.Join(key, 10, start)
	stale := tracker.Join(key, 20, rejoin)

	require.NotNil(t, stale)
	assert.Equal(t, int64(10), stale.ChannelID)
	assert.Equal(t, 5*time.Minute, stale.Duration)

	// The new session starts at the rejoin, in the new channel
	active, ok := tracker.Current(key)
	require.True(t, ok)
	assert.Equal(t, int64(20), active.ChannelID)
	assert.Equal(t, rejoin, active.StartedAt)
}

func TestSessionTracker_SwitchKeepsStartTime(t *testing.T) {
	tracker := NewSessionTracker()
	key := SessionKey{GuildID: 1, UserID: 2}
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tracker.Join(key, 10, start)
	ok := tracker.Switch(key, 20)
	require.True(t, ok)

	active, found := tracker.Current(key)
	require.True(t, found)
	assert.Equal(t, int64(20), active.ChannelID)
	assert.Equal(t, start, active.StartedAt)

	// Duration spans the whole stay across both channels
	closed, left := tracker.Leave(key, start.Add(10*time.Minute))
	require.True(t, left)
	assert.Equal(t, 10*time.Minute, closed.Duration)
	assert.Equal(t, int64(20), closed.ChannelID)
}

func TestSessionTracker_SwitchWithoutSession(t *testing.T) {
	tracker := NewSessionTracker()

	assert.False(t, tracker.Switch(SessionKey{GuildID: 1, UserID: 2}, 20))
}

func TestSessionTracker_KeysAreIndependent(t *testing.T) {
	tracker := NewSessionTracker()
	start := time.Now()

	keyA := SessionKey{GuildID: 1, UserID: 2}
	keyB := SessionKey{GuildID: 1, UserID: 3}
	keyC := SessionKey{GuildID: 9, UserID: 2} // same user, other guild

	tracker.Join(keyA, 10, start)
	tracker.Join(keyB, 10, start)
	tracker.Join(keyC, 11, start)

	_, ok := tracker.Leave(keyA, start.Add(time.Minute))
	require.True(t, ok)

	assert.False(t, tracker.IsActive(keyA))
	assert.True(t, tracker.IsActive(keyB))
	assert.True(t, tracker.IsActive(keyC))
}
