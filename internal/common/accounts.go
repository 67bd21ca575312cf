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

package common

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bank-ledger-go/internal/api"
	"bank-ledger-go/internal/models"

	"go.uber.org/zap"
)

// SelectAccounts retrieves accounts based on an optional bank filter.
// If bankFilter is provided, returns the single account held at that bank.
// If bankFilter is empty, returns all accounts.
func SelectAccounts(ctx context.Context, ledger *api.LedgerService, bankFilter string) ([]models.Account, error) {
	all, err := ledger.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	if bankFilter == "" {
		zap.L().Info("Retrieved accounts", zap.Int("count", len(all)))
		return all, nil
	}

	bank, err := models.ParseBank(bankFilter)
	if err != nil {
		return nil, err
	}
	zap.L().Info("Looking up account by bank", zap.String("bank", bank.String()))
	for _, account := range all {
		if account.Bank == bank {
			return []models.Account{account}, nil
		}
	}
	return nil, fmt.Errorf("%w: no account for bank %s", api.ErrAccountNotFound, bank)
}

// ResolveAccountId accepts either a numeric account id or a bank name
func ResolveAccountId(ctx context.Context, ledger *api.LedgerService, ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("account id or bank is required")
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}

	accounts, err := SelectAccounts(ctx, ledger, ref)
	if err != nil {
		return 0, err
	}
	return accounts[0].Id, nil
}
