package api

import (
	"context"
	"fmt"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Transfer moves amount from one account to another and records a Debit and
// a Credit entry dated with today's date. Both rows are locked in ascending id
// order for the whole unit of work.
func (s *LedgerService) Transfer(ctx context.Context, fromId, toId int64, amount decimal.Decimal) (*models.TransferResult, error) {
	zap.L().Info("Processing transfer",
		zap.Int64("from_account_id", fromId),
		zap.Int64("to_account_id", toId),
		zap.String("amount", amount.String()))

	if !amount.IsPositive() {
		err := fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
		logFailure("Transfer rejected", err, zap.Int64("from_account_id", fromId), zap.Int64("to_account_id", toId))
		return nil, err
	}

	date := s.Today()
	var result models.TransferResult
	err := s.db.WithinUnitOfWork(ctx, func(uow store.UnitOfWork) error {
		accounts := uow.Accounts()

		rows, err := accounts.Lock(ctx, fromId, toId)
		if err != nil {
			return err
		}
		if fromId == toId {
			return fmt.Errorf("%w: account %d", ErrSelfTransfer, fromId)
		}
		from, to := rows[fromId], rows[toId]

		if from.Balance.LessThan(amount) {
			return fmt.Errorf("%w: account %d has %s, transfer requires %s", ErrInsufficientFunds, fromId, from.Balance, amount)
		}
		if s.policy.RequireActiveDestination && !to.IsActive() {
			return fmt.Errorf("%w: destination account %d", ErrInactiveAccount, toId)
		}

		pairBefore := from.Balance.Add(to.Balance)
		if err := accounts.UpdateBalance(ctx, fromId, from.Balance.Sub(amount)); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, toId, to.Balance.Add(amount)); err != nil {
			return err
		}

		debit, err := uow.History().Append(ctx, models.HistoryEntry{
			AccountId: fromId,
			Kind:      models.KindDebit,
			Amount:    amount,
			Date:      date,
		})
		if err != nil {
			return err
		}
		credit, err := uow.History().Append(ctx, models.HistoryEntry{
			AccountId: toId,
			Kind:      models.KindCredit,
			Amount:    amount,
			Date:      date,
		})
		if err != nil {
			return err
		}

		// Verify against what the store now holds before committing
		fromAfter, err := accounts.GetByID(ctx, fromId)
		if err != nil {
			return err
		}
		toAfter, err := accounts.GetByID(ctx, toId)
		if err != nil {
			return err
		}
		if pairAfter := fromAfter.Balance.Add(toAfter.Balance); !pairAfter.Equal(pairBefore) {
			return fmt.Errorf("%w: pair balance changed from %s to %s", ErrInvariantViolation, pairBefore, pairAfter)
		}
		if fromAfter.Balance.IsNegative() || toAfter.Balance.IsNegative() {
			return fmt.Errorf("%w: negative balance after transfer (%s, %s)", ErrInvariantViolation, fromAfter.Balance, toAfter.Balance)
		}

		result = models.TransferResult{
			From:   *fromAfter,
			To:     *toAfter,
			Debit:  *debit,
			Credit: *credit,
		}
		return nil
	})
	if err != nil {
		logFailure("Transfer failed", err,
			zap.Int64("from_account_id", fromId),
			zap.Int64("to_account_id", toId),
			zap.String("amount", amount.String()))
		return nil, err
	}

	zap.L().Info("Transfer processed successfully",
		zap.Int64("from_account_id", fromId),
		zap.Int64("to_account_id", toId),
		zap.String("amount", amount.String()),
		zap.String("from_balance", result.From.Balance.String()),
		zap.String("to_balance", result.To.Balance.String()),
		zap.String("date", date.String()))
	return &result, nil
}

// Movement applies a single Credit or Debit to an Active account. A zero date
// means today.
func (s *LedgerService) Movement(ctx context.Context, accountId int64, kind models.Kind, amount decimal.Decimal, date models.Date) (*models.MovementResult, error) {
	zap.L().Info("Processing movement",
		zap.Int64("account_id", accountId),
		zap.String("kind", kind.String()),
		zap.String("amount", amount.String()))

	if !amount.IsPositive() {
		err := fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
		logFailure("Movement rejected", err, zap.Int64("account_id", accountId))
		return nil, err
	}
	if !kind.Valid() {
		err := fmt.Errorf("%w %q", ErrUnknownKind, kind)
		logFailure("Movement rejected", err, zap.Int64("account_id", accountId))
		return nil, err
	}
	if date.IsZero() {
		date = s.Today()
	}
	if !date.Valid() {
		err := fmt.Errorf("%w: %s", ErrDateOutOfRange, date)
		logFailure("Movement rejected", err, zap.Int64("account_id", accountId))
		return nil, err
	}

	var result models.MovementResult
	err := s.db.WithinUnitOfWork(ctx, func(uow store.UnitOfWork) error {
		rows, err := uow.Accounts().Lock(ctx, accountId)
		if err != nil {
			return err
		}
		account := rows[accountId]

		if !account.IsActive() {
			return fmt.Errorf("%w: account %d", ErrInactiveAccount, accountId)
		}

		var newBalance decimal.Decimal
		switch kind {
		case models.KindCredit:
			newBalance = account.Balance.Add(amount)
		case models.KindDebit:
			if account.Balance.LessThan(amount) {
				return fmt.Errorf("%w: account %d has %s, debit requires %s", ErrInsufficientFunds, accountId, account.Balance, amount)
			}
			newBalance = account.Balance.Sub(amount)
		}

		if err := uow.Accounts().UpdateBalance(ctx, accountId, newBalance); err != nil {
			return err
		}
		entry, err := uow.History().Append(ctx, models.HistoryEntry{
			AccountId: accountId,
			Kind:      kind,
			Amount:    amount,
			Date:      date,
		})
		if err != nil {
			return err
		}

		account.Balance = newBalance
		result = models.MovementResult{Account: *account, Entry: *entry}
		return nil
	})
	if err != nil {
		logFailure("Movement failed", err,
			zap.Int64("account_id", accountId),
			zap.String("kind", kind.String()),
			zap.String("amount", amount.String()))
		return nil, err
	}

	zap.L().Info("Movement processed successfully",
		zap.Int64("account_id", accountId),
		zap.String("kind", kind.String()),
		zap.String("amount", amount.String()),
		zap.String("new_balance", result.Account.Balance.String()),
		zap.String("date", date.String()))
	return &result, nil
}
