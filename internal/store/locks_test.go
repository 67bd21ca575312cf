package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedIds(t *testing.T) {
	assert.Equal(t, []int64{1, 3, 7}, OrderedIds([]int64{7, 3, 1, 3, 7}))
	assert.Empty(t, OrderedIds(nil))
}

func TestLockSet_AcquiresInAscendingOrder(t *testing.T) {
	locks := NewRowLocks(time.Second)

	var mu sync.Mutex
	var order []int64
	locks.SetObserver(func(id int64) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, id)
	})

	set := locks.NewSet()
	require.NoError(t, set.Acquire(context.Background(), 9, 2, 5, 2))
	defer set.Release()

	assert.Equal(t, []int64{2, 5, 9}, order)
	assert.Equal(t, []int64{2, 5, 9}, set.Held())
	assert.True(t, set.Holds(5))
	assert.False(t, set.Holds(3))
}

func TestLockSet_ReacquireHeldIsNoop(t *testing.T) {
	locks := NewRowLocks(time.Second)
	set := locks.NewSet()
	defer set.Release()

	require.NoError(t, set.Acquire(context.Background(), 4))
	require.NoError(t, set.Acquire(context.Background(), 4))
	assert.Equal(t, []int64{4}, set.Held())
}

func TestLockSet_RejectsDescendingAcquisition(t *testing.T) {
	locks := NewRowLocks(time.Second)
	set := locks.NewSet()
	defer set.Release()

	require.NoError(t, set.Acquire(context.Background(), 10))
	err := set.Acquire(context.Background(), 3)
	assert.ErrorIs(t, err, ErrLockOrder)

	// Higher ids are still fine.
	require.NoError(t, set.Acquire(context.Background(), 11))
}

func TestLockSet_TimesOutWhileRowHeld(t *testing.T) {
	locks := NewRowLocks(20 * time.Millisecond)

	holder := locks.NewSet()
	require.NoError(t, holder.Acquire(context.Background(), 1))
	defer holder.Release()

	waiter := locks.NewSet()
	err := waiter.Acquire(context.Background(), 1)
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Empty(t, waiter.Held())
}

func TestLockSet_ReleaseHandsLockToWaiter(t *testing.T) {
	locks := NewRowLocks(0)

	holder := locks.NewSet()
	require.NoError(t, holder.Acquire(context.Background(), 1))

	acquired := make(chan error, 1)
	go func() {
		waiter := locks.NewSet()
		err := waiter.Acquire(context.Background(), 1)
		waiter.Release()
		acquired <- err
	}()

	select {
	case <-acquired:
		t.Fatal("waiter acquired a lock that is still held")
	case <-time.After(20 * time.Millisecond):
	}

	holder.Release()
	select {
	case err := <-acquired:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the released lock")
	}
}

func TestLockSet_ContextCancelled(t *testing.T) {
	locks := NewRowLocks(0)
	holder := locks.NewSet()
	require.NoError(t, holder.Acquire(context.Background(), 1))
	defer holder.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := locks.NewSet().Acquire(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLockSet_OppositeOrderRequestsDoNotDeadlock(t *testing.T) {
	locks := NewRowLocks(time.Second)

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			set := locks.NewSet()
			defer set.Release()
			errs <- set.Acquire(context.Background(), 1, 2)
		}()
		go func() {
			defer wg.Done()
			set := locks.NewSet()
			defer set.Release()
			errs <- set.Acquire(context.Background(), 2, 1)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Empty(t, locks.rows, "lock table should be empty once every set is released")
}

func TestFault(t *testing.T) {
	cause := errors.New("disk I/O error")

	err := Fault("commit", cause)
	assert.ErrorIs(t, err, ErrStorageFault)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage fault during commit: disk I/O error", err.Error())

	// Already a fault: not wrapped twice.
	wrapped := fmt.Errorf("transfer: %w", err)
	assert.Same(t, wrapped, Fault("other", wrapped))

	assert.NoError(t, Fault("noop", nil))
}
