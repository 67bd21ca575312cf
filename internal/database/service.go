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
	"fmt"
	"time"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Service)(nil)

type Service struct {
	db       *sql.DB
	rowLocks *store.RowLocks
	now      func() time.Time
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}
	if cfg.LockTimeout <= 0 {
		return nil, fmt.Errorf("lock timeout must be positive, got %v", cfg.LockTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	if cfg.Path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database after ping failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{
		db:       db,
		rowLocks: store.NewRowLocks(cfg.LockTimeout),
		now:      func() time.Time { return time.Now().UTC() },
	}
	if err := service.initSchema(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database after schema failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

// dsn enables WAL, foreign keys and BEGIN IMMEDIATE so that every unit of work
// takes the write lock up front and waits at most LockTimeout for it.
func dsn(cfg models.DatabaseConfig) string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_foreign_keys=1&_txlock=immediate&_busy_timeout=%d",
		cfg.Path, cfg.LockTimeout.Milliseconds())
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

// RowLocks exposes the lock table so callers can observe acquisition order.
func (s *Service) RowLocks() *store.RowLocks {
	return s.rowLocks
}

func (s *Service) initSchema(ctx context.Context) error {
	schema := `
	-- Accounts (current state, one per bank)
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bank TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'Active' CHECK (status IN ('Active', 'Inactive')),
		balance TEXT NOT NULL CHECK (CAST(balance AS REAL) >= 0),
		opening_balance TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- History (audit trail, append-only)
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		kind TEXT NOT NULL CHECK (kind IN ('Credit', 'Debit')),
		amount TEXT NOT NULL CHECK (CAST(amount AS REAL) > 0),
		entry_date TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_history_entry_date ON history(entry_date);
	CREATE INDEX IF NOT EXISTS idx_history_account_id ON history(account_id);

	CREATE TRIGGER IF NOT EXISTS trg_history_no_update BEFORE UPDATE ON history
	BEGIN
		SELECT RAISE(ABORT, 'history entries are immutable');
	END;

	CREATE TRIGGER IF NOT EXISTS trg_history_no_delete BEFORE DELETE ON history
	BEGIN
		SELECT RAISE(ABORT, 'history entries are immutable');
	END;

	CREATE TRIGGER IF NOT EXISTS trg_accounts_no_delete BEFORE DELETE ON accounts
	BEGIN
		SELECT RAISE(ABORT, 'accounts are never deleted');
	END;
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}
