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

const (
	// Account queries
	queryFindAccountByBank = `
		SELECT id FROM accounts WHERE bank = ? LIMIT 1`

	queryInsertAccount = `
		INSERT INTO accounts (bank, status, balance, opening_balance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetAccountById = `
		SELECT id, bank, status, balance, opening_balance, created_at, updated_at
		FROM accounts
		WHERE id = ?`

	queryGetAllAccounts = `
		SELECT id, bank, status, balance, opening_balance, created_at, updated_at
		FROM accounts
		ORDER BY id`

	queryUpdateAccountBalance = `
		UPDATE accounts
		SET balance = ?, updated_at = ?
		WHERE id = ?`

	queryUpdateAccountStatus = `
		UPDATE accounts
		SET status = ?, updated_at = ?
		WHERE id = ?`

	// History queries
	queryInsertHistoryEntry = `
		INSERT INTO history (id, account_id, kind, amount, entry_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetHistoryByDateRange = `
		SELECT id, account_id, kind, amount, entry_date, created_at
		FROM history
		WHERE entry_date BETWEEN ? AND ?
		ORDER BY entry_date, rowid`

	queryGetHistoryByAccount = `
		SELECT id, account_id, kind, amount, entry_date, created_at
		FROM history
		WHERE account_id = ?
		ORDER BY entry_date, rowid`
)
