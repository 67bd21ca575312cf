package api

import (
	"errors"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"go.uber.org/zap"
)

// Business rule violations. All are recoverable and returned wrapped with
// the ids and amounts involved.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrSelfTransfer       = errors.New("cannot transfer to the same account")
	ErrHasBalance         = errors.New("account still has a balance")
	ErrAlreadyActive      = errors.New("account is already active")
	ErrAlreadyInactive    = errors.New("account is already inactive")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrNegativeBalance    = errors.New("balance cannot be negative")
	ErrInvariantViolation = errors.New("ledger invariant violated")
	ErrNoActiveAccounts   = errors.New("no active accounts")
)

// Re-exported so callers only need this package
var (
	ErrAccountNotFound = store.ErrAccountNotFound
	ErrDuplicateBank   = store.ErrDuplicateBank
	ErrStorageFault    = store.ErrStorageFault
	ErrUnknownBank     = models.ErrUnknownBank
	ErrUnknownKind     = models.ErrUnknownKind
	ErrDateOutOfRange  = models.ErrDateOutOfRange
)

// logFailure logs storage faults at error level and rule violations at warn
func logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if errors.Is(err, store.ErrStorageFault) {
		zap.L().Error(msg, fields...)
		return
	}
	zap.L().Warn(msg, fields...)
}
