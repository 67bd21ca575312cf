package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func create(t *testing.T, s *Store, bank models.Bank, balance int64) *models.Account {
	t.Helper()
	var account *models.Account
	err := s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		var err error
		account, err = uow.Accounts().Create(context.Background(), bank, decimal.NewFromInt(balance))
		return err
	})
	require.NoError(t, err)
	return account
}

func list(t *testing.T, s *Store) []models.Account {
	t.Helper()
	var accounts []models.Account
	err := s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		var err error
		accounts, err = uow.Accounts().ListAll(context.Background())
		return err
	})
	require.NoError(t, err)
	return accounts
}

func TestCreateAndList(t *testing.T) {
	s := New(time.Second)

	a := create(t, s, models.BankNubank, 100)
	b := create(t, s, models.BankInter, 50)

	assert.Equal(t, int64(1), a.Id)
	assert.Equal(t, int64(2), b.Id)
	assert.Equal(t, models.StatusActive, a.Status)

	accounts := list(t, s)
	require.Len(t, accounts, 2)
	assert.Equal(t, models.BankNubank, accounts[0].Bank)
	assert.Equal(t, models.BankInter, accounts[1].Bank)
	assert.True(t, accounts[0].OpeningBalance.Equal(decimal.NewFromInt(100)))
}

func TestCreate_DuplicateBank(t *testing.T) {
	s := New(time.Second)
	create(t, s, models.BankNeon, 0)

	err := s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		_, err := uow.Accounts().Create(context.Background(), models.BankNeon, decimal.Zero)
		return err
	})
	assert.ErrorIs(t, err, store.ErrDuplicateBank)

	// Duplicate within a single unit of work
	err = s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		if _, err := uow.Accounts().Create(context.Background(), models.BankItau, decimal.Zero); err != nil {
			return err
		}
		_, err := uow.Accounts().Create(context.Background(), models.BankItau, decimal.Zero)
		return err
	})
	assert.ErrorIs(t, err, store.ErrDuplicateBank)
	assert.Len(t, list(t, s), 1)
}

func TestCreate_AfterRowLockViolatesOrder(t *testing.T) {
	s := New(time.Second)
	a := create(t, s, models.BankNubank, 0)

	err := s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		if _, err := uow.Accounts().Lock(context.Background(), a.Id); err != nil {
			return err
		}
		_, err := uow.Accounts().Create(context.Background(), models.BankInter, decimal.Zero)
		return err
	})
	assert.ErrorIs(t, err, store.ErrLockOrder)
}

func TestRollbackDiscardsStagedWrites(t *testing.T) {
	s := New(time.Second)
	a := create(t, s, models.BankSantander, 10)

	boom := errors.New("boom")
	err := s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		if _, err := uow.Accounts().Lock(context.Background(), a.Id); err != nil {
			return err
		}
		if err := uow.Accounts().UpdateBalance(context.Background(), a.Id, decimal.NewFromInt(3)); err != nil {
			return err
		}
		if _, err := uow.History().Append(context.Background(), models.HistoryEntry{
			AccountId: a.Id,
			Kind:      models.KindDebit,
			Amount:    decimal.NewFromInt(7),
			Date:      models.NewDate(2024, time.April, 2),
		}); err != nil {
			return err
		}

		// Reads inside the unit of work see the staged writes
		got, err := uow.Accounts().GetByID(context.Background(), a.Id)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(3)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	accounts := list(t, s)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].Balance.Equal(decimal.NewFromInt(10)))
	assert.Empty(t, s.history)
}

func TestRollbackOnPanicReleasesLocks(t *testing.T) {
	s := New(100 * time.Millisecond)
	a := create(t, s, models.BankNubank, 10)

	assert.Panics(t, func() {
		_ = s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
			if _, err := uow.Accounts().Lock(context.Background(), a.Id); err != nil {
				return err
			}
			panic("unexpected")
		})
	})

	err := s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		_, err := uow.Accounts().Lock(context.Background(), a.Id)
		return err
	})
	assert.NoError(t, err)
}

func TestUpdateRequiresLock(t *testing.T) {
	s := New(time.Second)
	a := create(t, s, models.BankInter, 10)

	err := s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		return uow.Accounts().UpdateStatus(context.Background(), a.Id, models.StatusInactive)
	})
	assert.ErrorIs(t, err, store.ErrRowNotLocked)
}

func TestUpdateBalance_Negative(t *testing.T) {
	s := New(time.Second)
	a := create(t, s, models.BankInter, 10)

	err := s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		if _, err := uow.Accounts().Lock(context.Background(), a.Id); err != nil {
			return err
		}
		return uow.Accounts().UpdateBalance(context.Background(), a.Id, decimal.NewFromInt(-1))
	})
	assert.ErrorIs(t, err, store.ErrStorageFault)
}

func TestLock_NotFound(t *testing.T) {
	s := New(time.Second)

	err := s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		_, err := uow.Accounts().Lock(context.Background(), 42)
		return err
	})
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestLock_Timeout(t *testing.T) {
	s := New(50 * time.Millisecond)
	a := create(t, s, models.BankNubank, 10)

	holding := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
			if _, err := uow.Accounts().Lock(context.Background(), a.Id); err != nil {
				return err
			}
			close(holding)
			<-done
			return nil
		})
	}()
	<-holding
	defer close(done)

	err := s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		_, err := uow.Accounts().Lock(context.Background(), a.Id)
		return err
	})
	assert.ErrorIs(t, err, store.ErrLockTimeout)
	assert.ErrorIs(t, err, store.ErrStorageFault)
}

func TestHistoryQueries(t *testing.T) {
	s := New(time.Second)
	a := create(t, s, models.BankNubank, 0)
	b := create(t, s, models.BankNeon, 0)

	err := s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		for _, e := range []models.HistoryEntry{
			{AccountId: a.Id, Kind: models.KindCredit, Amount: decimal.NewFromInt(1), Date: models.NewDate(2024, time.March, 5)},
			{AccountId: b.Id, Kind: models.KindCredit, Amount: decimal.NewFromInt(2), Date: models.NewDate(2024, time.March, 1)},
			{AccountId: a.Id, Kind: models.KindDebit, Amount: decimal.NewFromInt(3), Date: models.NewDate(2024, time.March, 31)},
			{AccountId: a.Id, Kind: models.KindDebit, Amount: decimal.NewFromInt(4), Date: models.NewDate(2024, time.April, 1)},
		} {
			if _, err := uow.History().Append(context.Background(), e); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	var byRange, byAccount []models.HistoryEntry
	err = s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		var err error
		byRange, err = uow.History().QueryByDateRange(context.Background(),
			models.NewDate(2024, time.March, 1), models.NewDate(2024, time.March, 31))
		if err != nil {
			return err
		}
		byAccount, err = uow.History().QueryByAccount(context.Background(), a.Id)
		return err
	})
	require.NoError(t, err)

	require.Len(t, byRange, 3)
	assert.Equal(t, models.NewDate(2024, time.March, 1), byRange[0].Date)
	assert.Equal(t, models.NewDate(2024, time.March, 5), byRange[1].Date)
	assert.Equal(t, models.NewDate(2024, time.March, 31), byRange[2].Date)

	require.Len(t, byAccount, 3)
	for _, e := range byAccount {
		assert.Equal(t, a.Id, e.AccountId)
		assert.NotEmpty(t, e.Id)
	}
}

func TestHistoryAppend_UnknownAccount(t *testing.T) {
	s := New(time.Second)

	err := s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error {
		_, err := uow.History().Append(context.Background(), models.HistoryEntry{
			AccountId: 9, Kind: models.KindCredit, Amount: decimal.NewFromInt(1), Date: models.NewDate(2024, 1, 1),
		})
		return err
	})
	assert.ErrorIs(t, err, store.ErrStorageFault)
}

func TestClosedStore(t *testing.T) {
	s := New(time.Second)
	s.Close()

	err := s.WithinUnitOfWork(context.Background(), func(uow store.UnitOfWork) error { return nil })
	assert.ErrorIs(t, err, store.ErrStorageFault)
	assert.ErrorIs(t, err, store.ErrStoreClosed)
}
