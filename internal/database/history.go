package database

import (
	"context"
	"database/sql"
	"fmt"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type historyRepository struct {
	u *unitOfWork
}

// Append records an immutable history entry. The id and creation time are
// assigned here; any values set on entry are ignored.
func (r *historyRepository) Append(ctx context.Context, entry models.HistoryEntry) (*models.HistoryEntry, error) {
	entry.Id = uuid.New().String()
	entry.CreatedAt = r.u.now()

	_, err := r.u.tx.ExecContext(ctx, queryInsertHistoryEntry,
		entry.Id, entry.AccountId, string(entry.Kind), entry.Amount.String(), entry.Date.String(), entry.CreatedAt)
	if err != nil {
		zap.L().Error("Failed to insert history entry",
			zap.Int64("account_id", entry.AccountId),
			zap.String("kind", entry.Kind.String()),
			zap.Error(err))
		return nil, store.Fault("insert history entry", err)
	}

	zap.L().Debug("History entry appended",
		zap.String("entry_id", entry.Id),
		zap.Int64("account_id", entry.AccountId),
		zap.String("kind", entry.Kind.String()),
		zap.String("amount", entry.Amount.String()),
		zap.String("date", entry.Date.String()))
	return &entry, nil
}

func (r *historyRepository) QueryByDateRange(ctx context.Context, start, end models.Date) ([]models.HistoryEntry, error) {
	zap.L().Debug("Querying history by date range",
		zap.String("start", start.String()),
		zap.String("end", end.String()))
	return r.query(ctx, queryGetHistoryByDateRange, start.String(), end.String())
}

func (r *historyRepository) QueryByAccount(ctx context.Context, accountId int64) ([]models.HistoryEntry, error) {
	zap.L().Debug("Querying history by account", zap.Int64("account_id", accountId))
	return r.query(ctx, queryGetHistoryByAccount, accountId)
}

func (r *historyRepository) query(ctx context.Context, query string, args ...any) ([]models.HistoryEntry, error) {
	rows, err := r.u.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.Fault("query history", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var entry models.HistoryEntry
		var kind, amountStr, dateStr string
		err := rows.Scan(&entry.Id, &entry.AccountId, &kind, &amountStr, &dateStr, &entry.CreatedAt)
		if err != nil {
			return nil, store.Fault("scan history row", err)
		}

		entry.Kind = models.Kind(kind)
		if !entry.Kind.Valid() {
			return nil, store.Fault("scan history row", fmt.Errorf("entry %s has %w %q", entry.Id, models.ErrUnknownKind, kind))
		}
		entry.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, store.Fault("scan history row", fmt.Errorf("failed to parse amount '%s': %w", amountStr, err))
		}
		entry.Date, err = models.ParseDate(models.DateLayout, dateStr)
		if err != nil {
			return nil, store.Fault("scan history row", err)
		}

		entries = append(entries, entry)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during history row iteration", zap.Error(err))
		return nil, store.Fault("iterate history rows", err)
	}

	return entries, nil
}
