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

package api

import (
	"context"
	"fmt"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ListAccounts returns every account ordered by id
func (s *LedgerService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Accounts, nil
}

// TotalBalance sums the balance of every account, active or not
func (s *LedgerService) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return snapshot.Total, nil
}

// Snapshot reads every account and their total within one unit of work
func (s *LedgerService) Snapshot(ctx context.Context) (*models.LedgerSnapshot, error) {
	var accounts []models.Account
	err := s.db.WithinUnitOfWork(ctx, func(uow store.UnitOfWork) error {
		var err error
		accounts, err = uow.Accounts().ListAll(ctx)
		return err
	})
	if err != nil {
		logFailure("Failed to list accounts", err)
		return nil, fmt.Errorf("failed to retrieve accounts: %w", err)
	}

	total := decimal.Zero
	for _, account := range accounts {
		total = total.Add(account.Balance)
	}

	zap.L().Debug("Ledger snapshot", zap.Int("accounts", len(accounts)), zap.String("total", total.String()))
	return &models.LedgerSnapshot{Accounts: accounts, Total: total}, nil
}

// ActiveBalances returns the balance of each active account by bank
func (s *LedgerService) ActiveBalances(ctx context.Context) ([]models.BankBalance, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var balances []models.BankBalance
	for _, account := range snapshot.Accounts {
		if !account.IsActive() {
			continue
		}
		balances = append(balances, models.BankBalance{
			AccountId: account.Id,
			Bank:      account.Bank,
			Balance:   account.Balance,
		})
	}
	if len(balances) == 0 {
		zap.L().Warn("No active accounts to report", zap.Int("accounts", len(snapshot.Accounts)))
		return nil, ErrNoActiveAccounts
	}
	return balances, nil
}

// ReconcileAccount rebuilds an account's balance from its opening balance and
// history and compares it with the stored balance. The row stays locked while
// its history is read, so concurrent movements on it cannot interleave.
func (s *LedgerService) ReconcileAccount(ctx context.Context, id int64) (*models.Reconciliation, error) {
	var account *models.Account
	var entries []models.HistoryEntry
	err := s.db.WithinUnitOfWork(ctx, func(uow store.UnitOfWork) error {
		rows, err := uow.Accounts().Lock(ctx, id)
		if err != nil {
			return err
		}
		account = rows[id]
		entries, err = uow.History().QueryByAccount(ctx, id)
		return err
	})
	if err != nil {
		logFailure("Reconciliation failed", err, zap.Int64("account_id", id))
		return nil, err
	}

	result := models.Reconciliation{
		AccountId:      id,
		OpeningBalance: account.OpeningBalance,
		Credits:        decimal.Zero,
		Debits:         decimal.Zero,
		Current:        account.Balance,
		Entries:        len(entries),
	}
	for _, entry := range entries {
		switch entry.Kind {
		case models.KindCredit:
			result.Credits = result.Credits.Add(entry.Amount)
		case models.KindDebit:
			result.Debits = result.Debits.Add(entry.Amount)
		}
	}
	result.Calculated = result.OpeningBalance.Add(result.Credits).Sub(result.Debits)

	if !result.Balanced() {
		zap.L().Error("Balance mismatch detected",
			zap.Int64("account_id", id),
			zap.String("current_balance", result.Current.String()),
			zap.String("calculated_balance", result.Calculated.String()))
		return &result, fmt.Errorf("%w: account %d stored balance %s, history gives %s",
			ErrInvariantViolation, id, result.Current, result.Calculated)
	}

	zap.L().Debug("Balance reconciled",
		zap.Int64("account_id", id),
		zap.String("balance", result.Current.String()),
		zap.Int("entries", result.Entries))
	return &result, nil
}
