/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type accountRepository struct {
	u *unitOfWork
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	var bank, status, balanceStr, openingStr string
	err := row.Scan(&account.Id, &bank, &status, &balanceStr, &openingStr, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}

	account.Bank = models.Bank(bank)
	if !account.Bank.Valid() {
		return nil, fmt.Errorf("account %d has %w %q", account.Id, models.ErrUnknownBank, bank)
	}
	account.Status = models.Status(status)
	if !account.Status.Valid() {
		return nil, fmt.Errorf("account %d has %w %q", account.Id, models.ErrUnknownStatus, status)
	}

	account.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance '%s': %w", balanceStr, err)
	}
	account.OpeningBalance, err = decimal.NewFromString(openingStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse opening balance '%s': %w", openingStr, err)
	}
	return &account, nil
}

func (r *accountRepository) Create(ctx context.Context, bank models.Bank, openingBalance decimal.Decimal) (*models.Account, error) {
	zap.L().Info("Creating account", zap.String("bank", bank.String()), zap.String("opening_balance", openingBalance.String()))

	// Check for an existing account on this bank, whatever its status
	var existingId int64
	err := r.u.tx.QueryRowContext(ctx, queryFindAccountByBank, string(bank)).Scan(&existingId)
	if err == nil {
		zap.L().Warn("Account already exists for bank",
			zap.String("bank", bank.String()),
			zap.Int64("existing_account_id", existingId))
		return nil, fmt.Errorf("%w: %s (account %d)", store.ErrDuplicateBank, bank, existingId)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, store.Fault("check bank uniqueness", err)
	}

	now := r.u.now()
	result, err := r.u.tx.ExecContext(ctx, queryInsertAccount,
		string(bank), string(models.StatusActive), openingBalance.String(), openingBalance.String(), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrDuplicateBank, bank)
		}
		zap.L().Error("Failed to insert account", zap.String("bank", bank.String()), zap.Error(err))
		return nil, store.Fault("insert account", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, store.Fault("read account id", err)
	}

	zap.L().Info("Account created successfully", zap.Int64("account_id", id), zap.String("bank", bank.String()))
	return &models.Account{
		Id:             id,
		Bank:           bank,
		Status:         models.StatusActive,
		Balance:        openingBalance,
		OpeningBalance: openingBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	zap.L().Debug("Querying account by ID", zap.Int64("account_id", id))

	account, err := scanAccount(r.u.tx.QueryRowContext(ctx, queryGetAccountById, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", store.ErrAccountNotFound, id)
		}
		zap.L().Error("Failed to query account by ID", zap.Int64("account_id", id), zap.Error(err))
		return nil, store.Fault("query account", err)
	}
	return account, nil
}

func (r *accountRepository) ListAll(ctx context.Context) ([]models.Account, error) {
	zap.L().Debug("Querying all accounts")

	rows, err := r.u.tx.QueryContext(ctx, queryGetAllAccounts)
	if err != nil {
		zap.L().Error("Failed to query accounts", zap.Error(err))
		return nil, store.Fault("query accounts", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			zap.L().Error("Failed to scan account row", zap.Error(err))
			return nil, store.Fault("scan account row", err)
		}
		accounts = append(accounts, *account)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during account row iteration", zap.Error(err))
		return nil, store.Fault("iterate account rows", err)
	}

	zap.L().Debug("Retrieved accounts", zap.Int("count", len(accounts)))
	return accounts, nil
}

func (r *accountRepository) Lock(ctx context.Context, ids ...int64) (map[int64]*models.Account, error) {
	ordered := store.OrderedIds(ids)
	if err := r.u.locks.Acquire(ctx, ordered...); err != nil {
		if errors.Is(err, store.ErrLockOrder) {
			return nil, err
		}
		return nil, store.Fault("acquire row locks", err)
	}

	locked := make(map[int64]*models.Account, len(ordered))
	for _, id := range ordered {
		account, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = account
	}
	return locked, nil
}

func (r *accountRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	if !r.u.locks.Holds(id) {
		return fmt.Errorf("%w: account %d", store.ErrRowNotLocked, id)
	}
	return r.update(ctx, "update balance", queryUpdateAccountBalance, id, balance.String())
}

func (r *accountRepository) UpdateStatus(ctx context.Context, id int64, status models.Status) error {
	if !r.u.locks.Holds(id) {
		return fmt.Errorf("%w: account %d", store.ErrRowNotLocked, id)
	}
	return r.update(ctx, "update status", queryUpdateAccountStatus, id, string(status))
}

func (r *accountRepository) update(ctx context.Context, op, query string, id int64, value string) error {
	result, err := r.u.tx.ExecContext(ctx, query, value, r.u.now(), id)
	if err != nil {
		zap.L().Error("Failed to update account", zap.String("op", op), zap.Int64("account_id", id), zap.Error(err))
		return store.Fault(op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return store.Fault(op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %d", store.ErrAccountNotFound, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
