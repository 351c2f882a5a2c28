package service

import (
	"sync"
	"time"
)

// SessionKey identifies one user's presence timeline within one guild
type SessionKey struct {
	GuildID int64
	UserID  int64
}

// ActiveSession is an open voice session for a key
type ActiveSession struct {
	Key       SessionKey
	ChannelID int64
	StartedAt time.Time
}

// ClosedSession is the result of closing an active session
type ClosedSession struct {
	Key       SessionKey
	ChannelID int64
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
}

// SessionTracker is the keyed Absent/Active registry for voice presence.
// It is owned by the presence service, not package state, and is safe for
// concurrent use.
type SessionTracker struct {
	mu       sync.Mutex
	sessions map[SessionKey]ActiveSession
}

// NewSessionTracker creates an empty tracker
func NewSessionTracker() *SessionTracker {
	return &SessionTracker{
		sessions: make(map[SessionKey]ActiveSession),
	}
}

// Join opens a session for the key. If a session is already open (a join
// without a recorded leave), the old session is closed and returned so its
// duration is not silently lost, and a new session starts at now.
func (t *SessionTracker) Join(key SessionKey, channelID int64, now time.Time) *ClosedSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	var closed *ClosedSession
	if prev, ok := t.sessions[key]; ok {
		closed = &ClosedSession{
			Key:       key,
			ChannelID: prev.ChannelID,
			StartedAt: prev.StartedAt,
			EndedAt:   now,
			Duration:  now.Sub(prev.StartedAt),
		}
	}

	t.sessions[key] = ActiveSession{
		Key:       key,
		ChannelID: channelID,
		StartedAt: now,
	}
	return closed
}

// Leave closes the session for the key. Returns false when no session is
// open, which callers treat as a duplicate or out-of-order event.
func (t *SessionTracker) Leave(key SessionKey, now time.Time) (*ClosedSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	active, ok := t.sessions[key]
	if !ok {
		return nil, false
	}
	delete(t.sessions, key)

	return &ClosedSession{
		Key:       key,
		ChannelID: active.ChannelID,
		StartedAt: active.StartedAt,
		EndedAt:   now,
		Duration:  now.Sub(active.StartedAt),
	}, true
}

// Switch updates the channel of an open session without touching its start
// time; channel-to-channel moves are continuous occupancy.
func (t *SessionTracker) Switch(key SessionKey, channelID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	active, ok := t.sessions[key]
	if !ok {
		return false
	}
	active.ChannelID = channelID
	t.sessions[key] = active
	return true
}

// IsActive reports whether the key has an open session
func (t *SessionTracker) IsActive(key SessionKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[key]
	return ok
}

// Current returns the open session for the key, if any
func (t *SessionTracker) Current(key SessionKey) (ActiveSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	active, ok := t.sessions[key]
	return active, ok
}
