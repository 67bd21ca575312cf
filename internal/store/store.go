package store

import (
	"context"
	"errors"
	"fmt"

	"bank-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrDuplicateBank   = errors.New("an account already exists for this bank")
	ErrStorageFault    = errors.New("storage fault")
	ErrLockTimeout     = errors.New("timed out waiting for row lock")
	ErrLockOrder       = errors.New("row locks must be acquired in ascending id order")
	ErrRowNotLocked    = errors.New("row must be locked before it is written")
	ErrStoreClosed     = errors.New("store is closed")
)

// StorageFaultError wraps a persistence or transaction failure. It matches
// ErrStorageFault under errors.Is and unwraps to the underlying cause.
type StorageFaultError struct {
	Op  string
	Err error
}

func (e *StorageFaultError) Error() string {
	return fmt.Sprintf("storage fault during %s: %v", e.Op, e.Err)
}

func (e *StorageFaultError) Unwrap() error { return e.Err }

func (e *StorageFaultError) Is(target error) bool { return target == ErrStorageFault }

// Fault wraps err as a StorageFaultError unless it already is one.
func Fault(op string, err error) error {
	if err == nil {
		return nil
	}
	var fault *StorageFaultError
	if errors.As(err, &fault) {
		return err
	}
	return &StorageFaultError{Op: op, Err: err}
}

// AccountStore is the persistence contract for account rows. Writes are only
// reachable through a UnitOfWork.
type AccountStore interface {
	Create(ctx context.Context, bank models.Bank, openingBalance decimal.Decimal) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	ListAll(ctx context.Context) ([]models.Account, error)

	// Lock takes exclusive locks on the given rows, in ascending id order, for
	// the rest of the unit of work and returns the locked rows keyed by id.
	Lock(ctx context.Context, ids ...int64) (map[int64]*models.Account, error)
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	UpdateStatus(ctx context.Context, id int64, status models.Status) error
}

// HistoryStore is the append-only contract for history entries.
type HistoryStore interface {
	Append(ctx context.Context, entry models.HistoryEntry) (*models.HistoryEntry, error)
	QueryByDateRange(ctx context.Context, start, end models.Date) ([]models.HistoryEntry, error)
	QueryByAccount(ctx context.Context, accountId int64) ([]models.HistoryEntry, error)
}

// UnitOfWork groups the reads, writes and lock acquisitions of one ledger operation.
type UnitOfWork interface {
	Id() string
	Accounts() AccountStore
	History() HistoryStore
}

// LedgerStore defines the contract that every backend (SQLite, in-memory) must satisfy.
type LedgerStore interface {
	// WithinUnitOfWork runs fn atomically. Everything fn wrote commits when it
	// returns nil and is rolled back otherwise (including on panic). Row locks
	// are released on every exit path.
	WithinUnitOfWork(ctx context.Context, fn func(uow UnitOfWork) error) error

	// --- Lifecycle ---
	Close()
}
