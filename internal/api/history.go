package api

import (
	"context"
	"fmt"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"go.uber.org/zap"
)

// HistoryBetween returns the entries dated within [start, end]
func (s *LedgerService) HistoryBetween(ctx context.Context, start, end models.Date) ([]models.HistoryEntry, error) {
	if !start.Valid() || !end.Valid() {
		err := fmt.Errorf("%w: %s to %s", ErrDateOutOfRange, start, end)
		logFailure("History query rejected", err)
		return nil, err
	}
	if start.After(end) {
		zap.L().Debug("Empty history range", zap.String("start", start.String()), zap.String("end", end.String()))
		return []models.HistoryEntry{}, nil
	}

	var entries []models.HistoryEntry
	err := s.db.WithinUnitOfWork(ctx, func(uow store.UnitOfWork) error {
		var err error
		entries, err = uow.History().QueryByDateRange(ctx, start, end)
		return err
	})
	if err != nil {
		logFailure("Failed to query history", err,
			zap.String("start", start.String()),
			zap.String("end", end.String()))
		return nil, fmt.Errorf("failed to retrieve history: %w", err)
	}
	return entries, nil
}
