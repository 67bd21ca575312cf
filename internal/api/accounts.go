package api

import (
	"context"
	"fmt"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateAccount opens an Active account for bank. At most one account may
// exist per bank, whatever its status.
func (s *LedgerService) CreateAccount(ctx context.Context, bank models.Bank, initialBalance decimal.Decimal) (*models.Account, error) {
	if !bank.Valid() {
		err := fmt.Errorf("%w %q", ErrUnknownBank, bank)
		logFailure("Account creation rejected", err, zap.String("bank", bank.String()))
		return nil, err
	}
	if initialBalance.IsNegative() {
		err := fmt.Errorf("%w: initial balance %s", ErrNegativeBalance, initialBalance)
		logFailure("Account creation rejected", err, zap.String("bank", bank.String()))
		return nil, err
	}

	var account *models.Account
	err := s.db.WithinUnitOfWork(ctx, func(uow store.UnitOfWork) error {
		var err error
		account, err = uow.Accounts().Create(ctx, bank, initialBalance)
		return err
	})
	if err != nil {
		logFailure("Account creation failed", err,
			zap.String("bank", bank.String()),
			zap.String("amount", initialBalance.String()))
		return nil, err
	}

	zap.L().Info("Account created",
		zap.Int64("account_id", account.Id),
		zap.String("bank", account.Bank.String()),
		zap.String("balance", account.Balance.String()))
	return account, nil
}

// DeactivateAccount marks an account with a zero balance Inactive
func (s *LedgerService) DeactivateAccount(ctx context.Context, id int64) (*models.Account, error) {
	var account *models.Account
	err := s.db.WithinUnitOfWork(ctx, func(uow store.UnitOfWork) error {
		rows, err := uow.Accounts().Lock(ctx, id)
		if err != nil {
			return err
		}
		account = rows[id]

		if !account.Balance.IsZero() {
			return fmt.Errorf("%w: account %d holds %s", ErrHasBalance, id, account.Balance)
		}
		if account.Status == models.StatusInactive && s.policy.RejectInactiveDeactivation {
			return fmt.Errorf("%w: account %d", ErrAlreadyInactive, id)
		}

		if err := uow.Accounts().UpdateStatus(ctx, id, models.StatusInactive); err != nil {
			return err
		}
		account.Status = models.StatusInactive
		return nil
	})
	if err != nil {
		logFailure("Account deactivation failed", err, zap.Int64("account_id", id))
		return nil, err
	}

	zap.L().Info("Account deactivated", zap.Int64("account_id", id), zap.String("bank", account.Bank.String()))
	return account, nil
}

// ActivateAccount marks an Inactive account Active again
func (s *LedgerService) ActivateAccount(ctx context.Context, id int64) (*models.Account, error) {
	var account *models.Account
	err := s.db.WithinUnitOfWork(ctx, func(uow store.UnitOfWork) error {
		rows, err := uow.Accounts().Lock(ctx, id)
		if err != nil {
			return err
		}
		account = rows[id]

		switch account.Status {
		case models.StatusActive:
			return fmt.Errorf("%w: account %d", ErrAlreadyActive, id)
		case models.StatusInactive:
		}

		if err := uow.Accounts().UpdateStatus(ctx, id, models.StatusActive); err != nil {
			return err
		}
		account.Status = models.StatusActive
		return nil
	})
	if err != nil {
		logFailure("Account activation failed", err, zap.Int64("account_id", id))
		return nil, err
	}

	zap.L().Info("Account activated", zap.Int64("account_id", id), zap.String("bank", account.Bank.String()))
	return account, nil
}
