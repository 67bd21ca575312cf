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
	"time"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"
)

// LedgerService enforces the ledger invariants over an injected store. Every
// public operation is exactly one unit of work.
type LedgerService struct {
	db     store.LedgerStore
	policy models.LedgerConfig
	now    func() time.Time
}

func NewLedgerService(db store.LedgerStore, policy models.LedgerConfig) *LedgerService {
	return &LedgerService{
		db:     db,
		policy: policy,
		now:    time.Now,
	}
}

// WithClock replaces the clock used to date transfers
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// Today is the calendar date of the service clock
func (s *LedgerService) Today() models.Date {
	return models.DateOf(s.now())
}

func (s *LedgerService) HealthCheck(ctx context.Context) error {
	err := s.db.WithinUnitOfWork(ctx, func(uow store.UnitOfWork) error {
		_, err := uow.Accounts().ListAll(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
