package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bank-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// unitOfWork is one SQLite transaction plus the row locks it holds.
type unitOfWork struct {
	id    string
	tx    *sql.Tx
	locks *store.LockSet
	now   func() time.Time
}

func (u *unitOfWork) Id() string                   { return u.id }
func (u *unitOfWork) Accounts() store.AccountStore { return &accountRepository{u: u} }
func (u *unitOfWork) History() store.HistoryStore  { return &historyRepository{u: u} }

// WithinUnitOfWork runs fn inside a single database transaction
func (s *Service) WithinUnitOfWork(ctx context.Context, fn func(uow store.UnitOfWork) error) error {
	uowId := uuid.New().String()

	// Start database transaction for atomicity (BEGIN IMMEDIATE, see dsn)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		zap.L().Error("Failed to begin unit of work", zap.String("unit_of_work_id", uowId), zap.Error(err))
		return store.Fault("begin unit of work", err)
	}

	uow := &unitOfWork{
		id:    uowId,
		tx:    tx,
		locks: s.rowLocks.NewSet(),
		now:   s.now,
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				zap.L().Warn("Failed to roll back unit of work", zap.String("unit_of_work_id", uowId), zap.Error(err))
			}
		}
		uow.locks.Release()
	}()

	if err := fn(uow); err != nil {
		zap.L().Debug("Unit of work rolled back", zap.String("unit_of_work_id", uowId), zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		zap.L().Error("Failed to commit unit of work", zap.String("unit_of_work_id", uowId), zap.Error(err))
		return store.Fault("commit unit of work", err)
	}
	committed = true

	zap.L().Debug("Unit of work committed",
		zap.String("unit_of_work_id", uowId),
		zap.Int64s("locked_account_ids", uow.locks.Held()))
	return nil
}
