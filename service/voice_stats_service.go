package service

import (
	"context"
	"fmt"
	"time"
)

// voiceStatsService implements the VoiceStatsService interface
type voiceStatsService struct {
	uowFactory UnitOfWorkFactory
	tracker    *SessionTracker
	clock      Clock
}

// NewVoiceStatsService creates a new voice stats service. The tracker is
// shared with the presence service so in-progress time is counted too.
func NewVoiceStatsService(uowFactory UnitOfWorkFactory, tracker *SessionTracker, clock Clock) VoiceStatsService {
	return &voiceStatsService{
		uowFactory: uowFactory,
		tracker:    tracker,
		clock:      clock,
	}
}

// GetTotalVoiceTime returns persisted totals plus the elapsed portion of any
// open session.
func (s *voiceStatsService) GetTotalVoiceTime(ctx context.Context, guildID, userID int64) (time.Duration, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	seconds, err := uow.VoiceSessionRepository().GetTotalSeconds(ctx, userID, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to get voice totals: %w", err)
	}

	total := time.Duration(seconds) * time.Second
	if active, ok := s.tracker.Current(SessionKey{GuildID: guildID, UserID: userID}); ok {
		total += s.clock.Now().Sub(active.StartedAt)
	}

	return total, nil
}
