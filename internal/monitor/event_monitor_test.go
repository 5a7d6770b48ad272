package monitor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/config"
)

func warm(t *testing.T, store *cache.Store, key cache.Key) {
	t.Helper()
	_, err := store.Get(context.Background(), key, func(ctx context.Context) (interface{}, error) {
		return "warm", nil
	})
	require.NoError(t, err)
}

func cached(store *cache.Store, key cache.Key) bool {
	fetched := false
	_, _ = store.Get(context.Background(), key, func(ctx context.Context) (interface{}, error) {
		fetched = true
		return "fresh", nil
	})
	return !fetched
}

func TestInvalidateForPurchaseRequested(t *testing.T) {
	store := cache.New(config.CacheConfig{RetryAttempts: 1})
	m := &EventMonitor{store: store}

	purchaseKey := cache.NewKey(cache.KindPurchase, "p-1")
	purchaseListKey := cache.NewKey(cache.KindPurchaseList, "well")
	projectKey := cache.NewKey(cache.KindProject, "well")
	projectListKey := cache.NewKey(cache.KindProjectList, cache.Wildcard)
	donorKey := cache.NewKey(cache.KindDonor, "0xabc")

	for _, key := range []cache.Key{purchaseKey, purchaseListKey, projectKey, projectListKey, donorKey} {
		warm(t, store, key)
	}

	m.invalidateFor(chain.Event{
		Name: "PurchaseRequested",
		Args: map[string]interface{}{"purchaseId": "p-1", "projectId": "well"},
	})

	// 采购申请改变项目剩余额度视图，项目缓存随采购缓存一起回收
	assert.False(t, cached(store, purchaseKey))
	assert.False(t, cached(store, purchaseListKey))
	assert.False(t, cached(store, projectKey))
	assert.False(t, cached(store, projectListKey))
	assert.True(t, cached(store, donorKey))
}
