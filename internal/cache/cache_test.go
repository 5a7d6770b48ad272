package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natar10/uva-ong-block/internal/config"
	"github.com/natar10/uva-ong-block/internal/errs"
)

func newTestStore() (*Store, *time.Time) {
	store := New(config.CacheConfig{RetryAttempts: 1})
	store.baseDelay = time.Millisecond

	now := time.Now()
	store.now = func() time.Time { return now }
	return store, &now
}

func TestGetCachesWithinWindow(t *testing.T) {
	store, _ := newTestStore()
	key := NewKey(KindProject, "water-well")

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return "v1", nil
	}

	for i := 0; i < 3; i++ {
		value, err := store.Get(context.Background(), key, fetch)
		require.NoError(t, err)
		assert.Equal(t, "v1", value)
	}

	assert.Equal(t, 1, calls)
}

func TestGetRefetchesAfterWindow(t *testing.T) {
	store, now := newTestStore()
	key := NewKey(KindBalance, "0xabc")

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	_, err := store.Get(context.Background(), key, fetch)
	require.NoError(t, err)

	// 余额窗口30秒，31秒后过期
	*now = now.Add(31 * time.Second)

	value, err := store.Get(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, value)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	store, _ := newTestStore()
	key := NewKey(KindDonor, "0xabc")

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	_, err := store.Get(context.Background(), key, fetch)
	require.NoError(t, err)

	store.Invalidate(KindDonor, "0xabc")

	value, err := store.Get(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, value)
}

func TestInvalidateWildcard(t *testing.T) {
	store, _ := newTestStore()

	fetch := func(ctx context.Context) (interface{}, error) { return "x", nil }
	for _, id := range []string{"a", "b", "c"} {
		_, err := store.Get(context.Background(), NewKey(KindPurchase, id), fetch)
		require.NoError(t, err)
	}
	_, err := store.Get(context.Background(), NewKey(KindDonor, "d"), fetch)
	require.NoError(t, err)

	store.Invalidate(KindPurchase, Wildcard)
	assert.Equal(t, 1, store.Len())
}

func TestInvalidateMissingIsNoop(t *testing.T) {
	store, _ := newTestStore()
	store.Invalidate(KindProject, "does-not-exist")
	store.Invalidate(KindProject, Wildcard)
	assert.Equal(t, 0, store.Len())
}

func TestGetRetriesTransientFailure(t *testing.T) {
	store, _ := newTestStore()
	store.attempts = 3

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return "ok", nil
	}

	value, err := store.Get(context.Background(), NewKey(KindProject, "p"), fetch)
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
	assert.Equal(t, 3, calls)
}

func TestGetDoesNotRetryUnreachable(t *testing.T) {
	store, _ := newTestStore()
	store.attempts = 3

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, errs.LedgerUnreachable(errors.New("no contract code"))
	}

	_, err := store.Get(context.Background(), NewKey(KindProject, "p"), fetch)
	require.Error(t, err)
	assert.Equal(t, errs.KindLedgerUnreachable, errs.KindOf(err))
	assert.Equal(t, 1, calls)
}

func TestGetStopsOnContextCancel(t *testing.T) {
	store, _ := newTestStore()
	store.attempts = 5

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		cancel()
		return nil, errors.New("transient")
	}

	_, err := store.Get(ctx, NewKey(KindProject, "p"), fetch)
	require.Error(t, err)
	assert.LessOrEqual(t, calls, 2)
}

func TestGetSharesInFlightFetch(t *testing.T) {
	store, _ := newTestStore()
	key := NewKey(KindProjectList, Wildcard)

	started := make(chan struct{})
	release := make(chan struct{})

	var mu sync.Mutex
	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		return "shared", nil
	}

	type result struct {
		value interface{}
		err   error
	}
	results := make(chan result, 2)
	read := func() {
		value, err := store.Get(context.Background(), key, fetch)
		results <- result{value: value, err: err}
	}

	go read()
	<-started
	go read()

	// 第一个取数仍被阻塞，第二个读者此时只能挂到进行中的取数上
	time.Sleep(5 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		r := <-results
		require.NoError(t, r.err)
		assert.Equal(t, "shared", r.value)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestFailedFetchDoesNotCache(t *testing.T) {
	store, _ := newTestStore()

	fetch := func(ctx context.Context) (interface{}, error) {
		return nil, errs.LedgerUnreachable(errors.New("down"))
	}
	_, err := store.Get(context.Background(), NewKey(KindProject, "p"), fetch)
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}
