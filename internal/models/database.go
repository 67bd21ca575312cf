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
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a balance holder tied to exactly one bank (current state)
type Account struct {
	Id             int64           `db:"id"`
	Bank           Bank            `db:"bank"`
	Status         Status          `db:"status"`
	Balance        decimal.Decimal `db:"balance"`
	OpeningBalance decimal.Decimal `db:"opening_balance"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// IsActive reports whether the account accepts movements
func (a Account) IsActive() bool {
	return a.Status == StatusActive
}

// HistoryEntry represents one immutable balance change (audit trail)
type HistoryEntry struct {
	Id        string          `db:"id"`
	AccountId int64           `db:"account_id"`
	Kind      Kind            `db:"kind"`
	Amount    decimal.Decimal `db:"amount"`
	Date      Date            `db:"entry_date"`
	CreatedAt time.Time       `db:"created_at"`
}
