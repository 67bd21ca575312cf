package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// RowLocks hands out exclusive per-account locks. A LockSet only ever waits
// for ids greater than every id it already holds, so no two units of work can
// wait on each other in a cycle.
type RowLocks struct {
	mu       sync.Mutex
	rows     map[int64]*rowLock
	timeout  time.Duration
	observer func(id int64)
}

type rowLock struct {
	sem  chan struct{}
	refs int
}

// NewRowLocks creates a lock table. A positive timeout bounds every wait.
func NewRowLocks(timeout time.Duration) *RowLocks {
	return &RowLocks{
		rows:    make(map[int64]*rowLock),
		timeout: timeout,
	}
}

// SetObserver registers fn to be called after each row lock is acquired.
func (r *RowLocks) SetObserver(fn func(id int64)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = fn
}

// NewSet starts an empty set of held locks for one unit of work.
func (r *RowLocks) NewSet() *LockSet {
	return &LockSet{locks: r}
}

func (r *RowLocks) ref(id int64) *rowLock {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[id]
	if !ok {
		l = &rowLock{sem: make(chan struct{}, 1)}
		r.rows[id] = l
	}
	l.refs++
	return l
}

func (r *RowLocks) unref(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[id]
	if !ok {
		return
	}
	l.refs--
	if l.refs == 0 {
		delete(r.rows, id)
	}
}

func (r *RowLocks) acquire(ctx context.Context, id int64) error {
	l := r.ref(id)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		r.unref(id)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: account %d", ErrLockTimeout, id)
		}
		return ctx.Err()
	}

	r.mu.Lock()
	observer := r.observer
	r.mu.Unlock()
	if observer != nil {
		observer(id)
	}
	return nil
}

func (r *RowLocks) release(id int64) {
	r.mu.Lock()
	l := r.rows[id]
	r.mu.Unlock()
	if l != nil {
		<-l.sem
	}
	r.unref(id)
}

// LockSet is the set of row locks held by a single unit of work. It is not
// safe for concurrent use.
type LockSet struct {
	locks *RowLocks
	held  []int64 // ascending
}

// Acquire locks ids in ascending order, skipping ids already held. Asking for
// an id below the highest id already held fails with ErrLockOrder.
func (s *LockSet) Acquire(ctx context.Context, ids ...int64) error {
	pending := OrderedIds(ids)
	pending = slices.DeleteFunc(pending, s.Holds)
	if len(pending) == 0 {
		return nil
	}
	if n := len(s.held); n > 0 && pending[0] < s.held[n-1] {
		return fmt.Errorf("%w: holding %d, requested %d", ErrLockOrder, s.held[n-1], pending[0])
	}

	for _, id := range pending {
		if err := s.locks.acquire(ctx, id); err != nil {
			return err
		}
		s.held = append(s.held, id)
	}
	return nil
}

// Holds reports whether the set holds the lock for id
func (s *LockSet) Holds(id int64) bool {
	_, found := slices.BinarySearch(s.held, id)
	return found
}

// Held returns the held ids in acquisition order
func (s *LockSet) Held() []int64 {
	return slices.Clone(s.held)
}

// Release drops every held lock, highest id first.
func (s *LockSet) Release() {
	for i := len(s.held) - 1; i >= 0; i-- {
		s.locks.release(s.held[i])
	}
	s.held = nil
}

// OrderedIds returns ids sorted ascending with duplicates removed.
func OrderedIds(ids []int64) []int64 {
	ordered := slices.Clone(ids)
	slices.Sort(ordered)
	return slices.Compact(ordered)
}
