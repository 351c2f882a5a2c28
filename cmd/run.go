package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"doubloon/bot"
	"doubloon/config"
	"doubloon/database"
	"doubloon/events"
	"doubloon/repository"
	"doubloon/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting doubloon bot...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	log.Info("Initializing services...")
	clock := &service.DefaultClock{}
	userService := service.NewUserService(uowFactory)
	gamblingService := service.NewGamblingService(uowFactory)
	dailyRewardService := service.NewDailyRewardService(uowFactory, clock)

	log.Info("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:               cfg.DiscordToken,
		AnnounceChannelName: cfg.AnnounceChannelName,
		SoundsDir:           cfg.SoundsDir,
	}
	// The announcer and the presence service depend on each other through
	// the Notifier interface, so the bot comes up first without presence
	// wiring and gets it immediately after.
	discordBot, err := bot.New(botConfig, userService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	presenceService := service.NewPresenceService(
		uowFactory,
		gamblingService,
		dailyRewardService,
		discordBot.Announcer(),
		clock,
	)
	voiceStatsService := service.NewVoiceStatsService(uowFactory, presenceService.Tracker(), clock)
	discordBot.WirePresence(presenceService, voiceStatsService)

	stopPresence := presenceService.Start(ctx)

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")

	stopPresence()

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}
