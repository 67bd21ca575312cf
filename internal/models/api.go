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

package models

import (
	"github.com/shopspring/decimal"
)

// TransferResult represents the committed outcome of a transfer
type TransferResult struct {
	From   Account      `json:"from"`
	To     Account      `json:"to"`
	Debit  HistoryEntry `json:"debit"`
	Credit HistoryEntry `json:"credit"`
}

// MovementResult represents the committed outcome of a single-account movement
type MovementResult struct {
	Account Account      `json:"account"`
	Entry   HistoryEntry `json:"entry"`
}

// LedgerSnapshot is a consistent read of every account and their total
type LedgerSnapshot struct {
	Accounts []Account       `json:"accounts"`
	Total    decimal.Decimal `json:"total"`
}

// BankBalance is one bar of the active-accounts-by-bank breakdown
type BankBalance struct {
	AccountId int64           `json:"account_id"`
	Bank      Bank            `json:"bank"`
	Balance   decimal.Decimal `json:"balance"`
}

// Reconciliation compares an account's stored balance with the one rebuilt from history
type Reconciliation struct {
	AccountId      int64           `json:"account_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Credits        decimal.Decimal `json:"credits"`
	Debits         decimal.Decimal `json:"debits"`
	Calculated     decimal.Decimal `json:"calculated"`
	Current        decimal.Decimal `json:"current"`
	Entries        int             `json:"entries"`
}

// Balanced reports whether the stored balance matches the history
func (r Reconciliation) Balanced() bool {
	return r.Current.Equal(r.Calculated)
}
