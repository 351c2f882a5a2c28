package service

import (
	"context"
	"fmt"
	"time"

	"doubloon/events"
	"doubloon/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RollDelay is how long a user must stay in voice before their slot roll fires
const RollDelay = 120 * time.Second

// PresenceEvent is one raw voice-state transition as reported by the gateway.
// Channel IDs are zero when the user was, or ends up, outside voice.
type PresenceEvent struct {
	GuildID       int64
	UserID        int64
	Username      string
	PrevChannelID int64
	NewChannelID  int64
}

// Transition classifies what a presence event means for session tracking
type Transition int

const (
	TransitionNoop Transition = iota
	TransitionJoin
	TransitionLeave
	TransitionSwitch
)

// Classify maps the before/after channel pair to a transition. Mute, deafen
// and stream toggles arrive as events with an unchanged channel and fall out
// as Noop.
func (e PresenceEvent) Classify() Transition {
	switch {
	case e.PrevChannelID == 0 && e.NewChannelID != 0:
		return TransitionJoin
	case e.PrevChannelID != 0 && e.NewChannelID == 0:
		return TransitionLeave
	case e.PrevChannelID != 0 && e.NewChannelID != 0 && e.PrevChannelID != e.NewChannelID:
		return TransitionSwitch
	default:
		return TransitionNoop
	}
}

// PresenceService orchestrates everything that hangs off voice presence:
// join announcements, the delayed slot roll, session duration tracking and
// the daily login bonus.
type PresenceService struct {
	tracker      *SessionTracker
	scheduler    *RollScheduler
	uowFactory   UnitOfWorkFactory
	gambling     GamblingService
	dailyRewards DailyRewardService
	notifier     Notifier
	clock        Clock
	rollDelay    time.Duration

	queue chan PresenceEvent
}

// NewPresenceService creates a new presence service
func NewPresenceService(
	uowFactory UnitOfWorkFactory,
	gambling GamblingService,
	dailyRewards DailyRewardService,
	notifier Notifier,
	clock Clock,
) *PresenceService {
	return &PresenceService{
		tracker:      NewSessionTracker(),
		scheduler:    NewRollScheduler(),
		uowFactory:   uowFactory,
		gambling:     gambling,
		dailyRewards: dailyRewards,
		notifier:     notifier,
		clock:        clock,
		rollDelay:    RollDelay,
		queue:        make(chan PresenceEvent, 256),
	}
}

// Start runs the event loop on a single goroutine so events for the same
// user are processed in arrival order. The returned function stops the loop
// and cancels all pending rolls.
func (s *PresenceService) Start(ctx context.Context) func() {
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-loopCtx.Done():
				return
			case ev := <-s.queue:
				if err := s.HandleEvent(loopCtx, ev); err != nil {
					log.WithFields(log.Fields{
						"guildID": ev.GuildID,
						"userID":  ev.UserID,
					}).WithError(err).Error("Failed to handle presence event")
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
		s.scheduler.Stop()
	}
}

// Enqueue hands an event to the processing loop. Drops the event with a log
// line if the queue is full rather than blocking the gateway handler.
func (s *PresenceService) Enqueue(ev PresenceEvent) {
	select {
	case s.queue <- ev:
	default:
		log.WithFields(log.Fields{
			"guildID": ev.GuildID,
			"userID":  ev.UserID,
		}).Warn("Presence queue full, dropping event")
	}
}

// HandleEvent processes a single presence event synchronously
func (s *PresenceService) HandleEvent(ctx context.Context, ev PresenceEvent) error {
	key := SessionKey{GuildID: ev.GuildID, UserID: ev.UserID}
	logger := log.WithFields(log.Fields{
		"correlationID": uuid.New().String(),
		"guildID":       ev.GuildID,
		"userID":        ev.UserID,
	})

	switch ev.Classify() {
	case TransitionJoin:
		return s.handleJoin(ctx, key, ev, logger)
	case TransitionLeave:
		return s.handleLeave(ctx, key, ev, logger)
	case TransitionSwitch:
		if !s.tracker.Switch(key, ev.NewChannelID) {
			// Bot restarted mid-session or the join event was missed; start
			// tracking from here.
			logger.Warn("Channel switch without an open session, opening one")
			s.tracker.Join(key, ev.NewChannelID, s.clock.Now())
		}
		return nil
	default:
		return nil
	}
}

func (s *PresenceService) handleJoin(ctx context.Context, key SessionKey, ev PresenceEvent, logger *log.Entry) error {
	now := s.clock.Now()

	if stale := s.tracker.Join(key, ev.NewChannelID, now); stale != nil {
		// Join while already active means we missed the leave. Close the old
		// session so its time still counts.
		logger.WithField("staleDuration", stale.Duration).Warn("Join with open session, closing stale session")
		if err := s.persistClosedSession(ctx, stale); err != nil {
			logger.WithError(err).Error("Failed to persist stale session")
		}
	}

	rarity := RollRarity()
	logger.WithFields(log.Fields{
		"channelID": ev.NewChannelID,
		"rarity":    rarity,
	}).Info("User joined voice")

	s.notifier.AnnounceJoin(ev.GuildID, ev.NewChannelID, ev.UserID, rarity)

	scheduled := s.scheduler.Schedule(key, s.rollDelay, func() {
		s.fireRoll(key, ev.Username, rarity)
	})
	if !scheduled {
		logger.Debug("Roll already pending, keeping existing countdown")
	}

	// The bonus is keyed by user and day, not by session, so it runs off the
	// event loop and never delays ordering-sensitive work.
	go func() {
		granted, err := s.dailyRewards.GrantIfEligible(context.Background(), ev.GuildID, ev.UserID, ev.Username)
		if err != nil {
			logger.WithError(err).Error("Failed to grant daily reward")
			return
		}
		if granted {
			logger.Info("Granted daily reward")
		}
	}()

	return nil
}

func (s *PresenceService) handleLeave(ctx context.Context, key SessionKey, ev PresenceEvent, logger *log.Entry) error {
	if cancelled := s.scheduler.Cancel(key); cancelled {
		logger.Debug("Cancelled pending roll")
	}

	closed, ok := s.tracker.Leave(key, s.clock.Now())
	if !ok {
		// Duplicate leave or a session that predates this process
		logger.Warn("Leave without an open session, ignoring")
		return nil
	}

	logger.WithFields(log.Fields{
		"channelID": closed.ChannelID,
		"duration":  closed.Duration,
	}).Info("User left voice")

	return s.persistClosedSession(ctx, closed)
}

func (s *PresenceService) fireRoll(key SessionKey, username string, rarity RarityTier) {
	ctx := context.Background()

	// The session may have ended between the timer claim and now, or moved
	// channels since the join; the spin targets wherever the user is today,
	// not where they came in.
	active, ok := s.tracker.Current(key)
	if !ok {
		return
	}

	result, err := s.gambling.SpinFor(ctx, key.GuildID, key.UserID, active.ChannelID, username, rarity)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": key.GuildID,
			"userID":  key.UserID,
		}).WithError(err).Error("Failed to persist slot roll")
	}
	if result != nil {
		s.notifier.AnnounceSpin(key.GuildID, key.UserID, result)
	}
}

func (s *PresenceService) persistClosedSession(ctx context.Context, closed *ClosedSession) error {
	seconds := int64(closed.Duration / time.Second)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	record := &models.VoiceSessionRecord{
		GuildID:         closed.Key.GuildID,
		UserID:          closed.Key.UserID,
		ChannelID:       closed.ChannelID,
		StartedAt:       closed.StartedAt,
		EndedAt:         closed.EndedAt,
		DurationSeconds: seconds,
	}
	if err := uow.VoiceSessionRepository().CreateRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to create session record: %w", err)
	}

	if err := uow.VoiceSessionRepository().AddTotalSeconds(ctx, closed.Key.UserID, closed.Key.GuildID, seconds); err != nil {
		return fmt.Errorf("failed to update voice totals: %w", err)
	}

	uow.EventBus().Publish(events.VoiceSessionEndedEvent{
		GuildID:         closed.Key.GuildID,
		UserID:          closed.Key.UserID,
		ChannelID:       closed.ChannelID,
		DurationSeconds: seconds,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Tracker exposes the session registry for read-side queries
func (s *PresenceService) Tracker() *SessionTracker {
	return s.tracker
}

// Scheduler exposes the pending roll registry
func (s *PresenceService) Scheduler() *RollScheduler {
	return s.scheduler
}
