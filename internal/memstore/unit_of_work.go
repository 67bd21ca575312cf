package memstore

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type unitOfWork struct {
	id    string
	s     *Store
	locks *store.LockSet

	// dirty holds staged rows (created or modified) keyed by id
	dirty      map[int64]models.Account
	dirtyOrder []int64
	created    map[int64]bool
	appended   []models.HistoryEntry
}

func newUnitOfWork(s *Store) *unitOfWork {
	return &unitOfWork{
		id:      uuid.New().String(),
		s:       s,
		locks:   s.rowLocks.NewSet(),
		dirty:   make(map[int64]models.Account),
		created: make(map[int64]bool),
	}
}

func (u *unitOfWork) Id() string                   { return u.id }
func (u *unitOfWork) Accounts() store.AccountStore { return &accountRepository{u: u} }
func (u *unitOfWork) History() store.HistoryStore  { return &historyRepository{u: u} }

func (u *unitOfWork) stage(account models.Account) {
	if _, ok := u.dirty[account.Id]; !ok {
		u.dirtyOrder = append(u.dirtyOrder, account.Id)
	}
	u.dirty[account.Id] = account
}

// get reads id with this unit of work's staged writes applied
func (u *unitOfWork) get(id int64) (models.Account, error) {
	if account, ok := u.dirty[id]; ok {
		return account, nil
	}
	account, ok, err := u.s.committedAccount(id)
	if err != nil {
		return models.Account{}, store.Fault("get account", err)
	}
	if !ok {
		return models.Account{}, fmt.Errorf("%w: %d", store.ErrAccountNotFound, id)
	}
	return account, nil
}

type accountRepository struct {
	u *unitOfWork
}

func (r *accountRepository) Create(ctx context.Context, bank models.Bank, openingBalance decimal.Decimal) (*models.Account, error) {
	zap.L().Info("Creating account", zap.String("bank", bank.String()), zap.String("opening_balance", openingBalance.String()))

	if !bank.Valid() {
		return nil, store.Fault("insert account", fmt.Errorf("%w %q", models.ErrUnknownBank, bank))
	}
	if openingBalance.IsNegative() {
		return nil, store.Fault("insert account", fmt.Errorf("negative opening balance %s", openingBalance))
	}

	// The bank index stays locked until this unit of work ends.
	if err := r.u.locks.Acquire(ctx, bankIndexLock); err != nil {
		if errors.Is(err, store.ErrLockOrder) {
			return nil, err
		}
		return nil, store.Fault("lock bank index", err)
	}

	r.u.s.mu.RLock()
	existingId, exists := r.u.s.banks[bank]
	closed := r.u.s.closed
	r.u.s.mu.RUnlock()
	if closed {
		return nil, store.Fault("insert account", store.ErrStoreClosed)
	}
	if !exists {
		for _, id := range r.u.dirtyOrder {
			if r.u.created[id] && r.u.dirty[id].Bank == bank {
				existingId, exists = id, true
				break
			}
		}
	}
	if exists {
		zap.L().Warn("Account already exists for bank",
			zap.String("bank", bank.String()),
			zap.Int64("existing_account_id", existingId))
		return nil, fmt.Errorf("%w: %s (account %d)", store.ErrDuplicateBank, bank, existingId)
	}

	now := r.u.s.now()
	account := models.Account{
		Id:             r.u.s.allocateId(),
		Bank:           bank,
		Status:         models.StatusActive,
		Balance:        openingBalance,
		OpeningBalance: openingBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.u.created[account.Id] = true
	r.u.stage(account)

	zap.L().Info("Account created",
		zap.Int64("account_id", account.Id),
		zap.String("bank", bank.String()))
	return &account, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	account, err := r.u.get(id)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) ListAll(ctx context.Context) ([]models.Account, error) {
	r.u.s.mu.RLock()
	if r.u.s.closed {
		r.u.s.mu.RUnlock()
		return nil, store.Fault("list accounts", store.ErrStoreClosed)
	}
	merged := make(map[int64]models.Account, len(r.u.s.accounts)+len(r.u.dirty))
	for id, account := range r.u.s.accounts {
		merged[id] = account
	}
	r.u.s.mu.RUnlock()

	for id, account := range r.u.dirty {
		merged[id] = account
	}

	accounts := make([]models.Account, 0, len(merged))
	for _, account := range merged {
		accounts = append(accounts, account)
	}
	slices.SortFunc(accounts, func(a, b models.Account) int {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		}
		return 0
	})
	return accounts, nil
}

func (r *accountRepository) Lock(ctx context.Context, ids ...int64) (map[int64]*models.Account, error) {
	ordered := store.OrderedIds(ids)
	if err := r.u.locks.Acquire(ctx, ordered...); err != nil {
		if errors.Is(err, store.ErrLockOrder) {
			return nil, err
		}
		return nil, store.Fault("acquire row locks", err)
	}

	locked := make(map[int64]*models.Account, len(ordered))
	for _, id := range ordered {
		account, err := r.u.get(id)
		if err != nil {
			return nil, err
		}
		locked[id] = &account
	}
	return locked, nil
}

func (r *accountRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return store.Fault("update balance", fmt.Errorf("negative balance %s for account %d", balance, id))
	}
	return r.update(id, func(account *models.Account) { account.Balance = balance })
}

func (r *accountRepository) UpdateStatus(ctx context.Context, id int64, status models.Status) error {
	if !status.Valid() {
		return store.Fault("update status", fmt.Errorf("%w %q", models.ErrUnknownStatus, status))
	}
	return r.update(id, func(account *models.Account) { account.Status = status })
}

func (r *accountRepository) update(id int64, apply func(*models.Account)) error {
	if !r.u.created[id] && !r.u.locks.Holds(id) {
		return fmt.Errorf("%w: account %d", store.ErrRowNotLocked, id)
	}
	account, err := r.u.get(id)
	if err != nil {
		return err
	}
	apply(&account)
	account.UpdatedAt = r.u.s.now()
	r.u.stage(account)
	return nil
}

type historyRepository struct {
	u *unitOfWork
}

func (r *historyRepository) Append(ctx context.Context, entry models.HistoryEntry) (*models.HistoryEntry, error) {
	if !entry.Kind.Valid() {
		return nil, store.Fault("insert history entry", fmt.Errorf("%w %q", models.ErrUnknownKind, entry.Kind))
	}
	if !entry.Amount.IsPositive() {
		return nil, store.Fault("insert history entry", fmt.Errorf("non-positive amount %s", entry.Amount))
	}
	if _, err := r.u.get(entry.AccountId); err != nil {
		return nil, store.Fault("insert history entry", err)
	}

	entry.Id = uuid.New().String()
	entry.CreatedAt = r.u.s.now()
	r.u.appended = append(r.u.appended, entry)

	zap.L().Debug("History entry appended",
		zap.String("entry_id", entry.Id),
		zap.Int64("account_id", entry.AccountId),
		zap.String("kind", entry.Kind.String()),
		zap.String("amount", entry.Amount.String()),
		zap.String("date", entry.Date.String()))
	return &entry, nil
}

func (r *historyRepository) QueryByDateRange(ctx context.Context, start, end models.Date) ([]models.HistoryEntry, error) {
	entries, err := r.query(func(entry models.HistoryEntry) bool { return entry.Date.Within(start, end) })
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(entries, func(a, b models.HistoryEntry) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return 0
	})
	return entries, nil
}

func (r *historyRepository) QueryByAccount(ctx context.Context, accountId int64) ([]models.HistoryEntry, error) {
	return r.query(func(entry models.HistoryEntry) bool { return entry.AccountId == accountId })
}

// query returns matching entries in insertion order, staged entries last
func (r *historyRepository) query(match func(models.HistoryEntry) bool) ([]models.HistoryEntry, error) {
	r.u.s.mu.RLock()
	if r.u.s.closed {
		r.u.s.mu.RUnlock()
		return nil, store.Fault("query history", store.ErrStoreClosed)
	}
	entries := []models.HistoryEntry{}
	for _, entry := range r.u.s.history {
		if match(entry) {
			entries = append(entries, entry)
		}
	}
	r.u.s.mu.RUnlock()

	for _, entry := range r.u.appended {
		if match(entry) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
