package repository

import (
	"context"
	"fmt"

	"doubloon/database"
	"doubloon/events"
	"doubloon/service"
	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the service.UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	userRepo         service.UserRepository
	balanceHistRepo  service.BalanceHistoryRepository
	voiceSessionRepo service.VoiceSessionRepository
	slotSpinRepo     service.SlotSpinRepository
	dailyRewardRepo  service.DailyRewardRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.userRepo = newUserRepositoryWithTx(tx)
	u.balanceHistRepo = newBalanceHistoryRepositoryWithTx(tx)
	u.voiceSessionRepo = newVoiceSessionRepositoryWithTx(tx)
	u.slotSpinRepo = newSlotSpinRepositoryWithTx(tx)
	u.dailyRewardRepo = newDailyRewardRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction. No-op if already committed.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() service.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

// BalanceHistoryRepository returns the balance history repository for this unit of work
func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	if u.balanceHistRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.balanceHistRepo
}

// VoiceSessionRepository returns the voice session repository for this unit of work
func (u *unitOfWork) VoiceSessionRepository() service.VoiceSessionRepository {
	if u.voiceSessionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.voiceSessionRepo
}

// SlotSpinRepository returns the slot spin repository for this unit of work
func (u *unitOfWork) SlotSpinRepository() service.SlotSpinRepository {
	if u.slotSpinRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.slotSpinRepo
}

// DailyRewardRepository returns the daily reward repository for this unit of work
func (u *unitOfWork) DailyRewardRepository() service.DailyRewardRepository {
	if u.dailyRewardRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.dailyRewardRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
