package memstore

import (
	"context"
	"sync"
	"time"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"go.uber.org/zap"
)

// bankIndexLock is the row-lock id guarding the bank uniqueness index. Account
// ids start at 1, so a unit of work that creates accounts takes it before any
// account row lock.
const bankIndexLock int64 = 0

// Store is an in-memory LedgerStore. Committed state lives behind mu; each
// unit of work stages its writes and applies them in one step on commit.
type Store struct {
	mu       sync.RWMutex
	rowLocks *store.RowLocks
	accounts map[int64]models.Account
	banks    map[models.Bank]int64
	history  []models.HistoryEntry
	nextId   int64
	closed   bool
	now      func() time.Time
}

// Compile-time check that Store implements store.LedgerStore
var _ store.LedgerStore = (*Store)(nil)

// New creates an empty store. lockTimeout bounds every row-lock wait.
func New(lockTimeout time.Duration) *Store {
	return &Store{
		rowLocks: store.NewRowLocks(lockTimeout),
		accounts: make(map[int64]models.Account),
		banks:    make(map[models.Bank]int64),
		nextId:   1,
		now:      time.Now,
	}
}

// RowLocks exposes the lock table so callers can observe acquisition order.
func (s *Store) RowLocks() *store.RowLocks {
	return s.rowLocks
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	zap.L().Info("In-memory store closed", zap.Int("accounts", len(s.accounts)), zap.Int("history_entries", len(s.history)))
}

func (s *Store) WithinUnitOfWork(ctx context.Context, fn func(uow store.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return store.Fault("begin unit of work", store.ErrStoreClosed)
	}

	uow := newUnitOfWork(s)
	defer uow.locks.Release()

	if err := fn(uow); err != nil {
		zap.L().Debug("Unit of work rolled back", zap.String("unit_of_work_id", uow.id), zap.Error(err))
		return err
	}

	if err := s.commit(uow); err != nil {
		zap.L().Error("Failed to commit unit of work", zap.String("unit_of_work_id", uow.id), zap.Error(err))
		return err
	}

	zap.L().Debug("Unit of work committed",
		zap.String("unit_of_work_id", uow.id),
		zap.Int64s("locked_account_ids", uow.locks.Held()))
	return nil
}

func (s *Store) commit(uow *unitOfWork) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.Fault("commit unit of work", store.ErrStoreClosed)
	}

	for _, id := range uow.dirtyOrder {
		account := uow.dirty[id]
		s.accounts[id] = account
		s.banks[account.Bank] = id
	}
	s.history = append(s.history, uow.appended...)
	return nil
}

// committedAccount returns a copy of the committed row for id
func (s *Store) committedAccount(id int64) (models.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return models.Account{}, false, store.ErrStoreClosed
	}
	account, ok := s.accounts[id]
	return account, ok, nil
}

func (s *Store) allocateId() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextId
	s.nextId++
	return id
}
