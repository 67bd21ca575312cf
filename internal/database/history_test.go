package database

import (
	"context"
	"testing"
	"time"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/shopspring/decimal"
)

func appendEntry(t *testing.T, service *Service, accountId int64, kind models.Kind, amount string, date models.Date) *models.HistoryEntry {
	t.Helper()
	var entry *models.HistoryEntry
	err := service.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		var err error
		entry, err = uow.History().Append(context.Background(), models.HistoryEntry{
			AccountId: accountId,
			Kind:      kind,
			Amount:    decimal.RequireFromString(amount),
			Date:      date,
		})
		return err
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	return entry
}

func TestHistoryAppend_AssignsId(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	account := createAccount(t, service, models.BankNubank, "0")
	first := appendEntry(t, service, account.Id, models.KindCredit, "10", models.NewDate(2024, time.March, 1))
	second := appendEntry(t, service, account.Id, models.KindCredit, "10", models.NewDate(2024, time.March, 1))

	if first.Id == "" || second.Id == "" || first.Id == second.Id {
		t.Errorf("Expected distinct non-empty ids, got %q and %q", first.Id, second.Id)
	}
}

func TestHistoryQueryByDateRange_Inclusive(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	account := createAccount(t, service, models.BankNubank, "0")
	appendEntry(t, service, account.Id, models.KindCredit, "1", models.NewDate(2023, time.December, 31))
	appendEntry(t, service, account.Id, models.KindCredit, "2", models.NewDate(2024, time.January, 1))
	appendEntry(t, service, account.Id, models.KindDebit, "3", models.NewDate(2024, time.January, 15))
	appendEntry(t, service, account.Id, models.KindCredit, "4", models.NewDate(2024, time.January, 31))
	appendEntry(t, service, account.Id, models.KindCredit, "5", models.NewDate(2024, time.February, 1))

	var entries []models.HistoryEntry
	err := service.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		var err error
		entries, err = uow.History().QueryByDateRange(context.Background(),
			models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 31))
		return err
	})
	if err != nil {
		t.Fatalf("QueryByDateRange failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	expected := []string{"2", "3", "4"}
	for i, entry := range entries {
		if !entry.Amount.Equal(decimal.RequireFromString(expected[i])) {
			t.Errorf("Entry %d: expected amount %s, got %s", i, expected[i], entry.Amount)
		}
	}
	if entries[1].Kind != models.KindDebit || entries[1].Date != models.NewDate(2024, time.January, 15) {
		t.Errorf("Expected debit on 2024-01-15, got %s on %s", entries[1].Kind, entries[1].Date)
	}
}

func TestHistoryQueryByDateRange_Empty(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	var entries []models.HistoryEntry
	err := service.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		var err error
		entries, err = uow.History().QueryByDateRange(context.Background(),
			models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 31))
		return err
	})
	if err != nil {
		t.Fatalf("QueryByDateRange failed: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", entries)
	}
}

func TestHistoryQueryByAccount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	a := createAccount(t, service, models.BankNubank, "0")
	b := createAccount(t, service, models.BankInter, "0")
	appendEntry(t, service, a.Id, models.KindCredit, "1", models.NewDate(2024, time.May, 1))
	appendEntry(t, service, b.Id, models.KindCredit, "2", models.NewDate(2024, time.May, 1))
	appendEntry(t, service, a.Id, models.KindDebit, "1", models.NewDate(2024, time.May, 2))

	var entries []models.HistoryEntry
	err := service.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		var err error
		entries, err = uow.History().QueryByAccount(context.Background(), a.Id)
		return err
	})
	if err != nil {
		t.Fatalf("QueryByAccount failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries for account %d, got %d", a.Id, len(entries))
	}
	for _, entry := range entries {
		if entry.AccountId != a.Id {
			t.Errorf("Expected account %d, got %d", a.Id, entry.AccountId)
		}
	}
}

func TestHistoryIsImmutable(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	account := createAccount(t, service, models.BankNubank, "0")
	entry := appendEntry(t, service, account.Id, models.KindCredit, "10", models.NewDate(2024, time.June, 1))

	if _, err := service.db.Exec("UPDATE history SET amount = '1' WHERE id = ?", entry.Id); err == nil {
		t.Errorf("Expected update of history entry to fail")
	}
	if _, err := service.db.Exec("DELETE FROM history WHERE id = ?", entry.Id); err == nil {
		t.Errorf("Expected delete of history entry to fail")
	}
	if _, err := service.db.Exec("DELETE FROM accounts WHERE id = ?", account.Id); err == nil {
		t.Errorf("Expected delete of account to fail")
	}
}

func TestHistoryAppend_UnknownAccount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	err := service.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		_, err := uow.History().Append(context.Background(), models.HistoryEntry{
			AccountId: 404,
			Kind:      models.KindCredit,
			Amount:    decimal.NewFromInt(1),
			Date:      models.NewDate(2024, time.June, 1),
		})
		return err
	})
	if err == nil {
		t.Fatalf("Expected foreign key violation for unknown account")
	}
}
