package workflow

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/config"
	"github.com/natar10/uva-ong-block/internal/precheck"
	"github.com/natar10/uva-ong-block/internal/reader"
)

var purchaseProviderAddr = common.HexToAddress("0x4444444444444444444444444444444444444444")

// purchaseSession 采购场景的账本替身：
// 活跃项目由当前账户负责，目录里有单价1代币的水泥。
type purchaseSession struct {
	mu   sync.Mutex
	sent []sentTx
}

func (s *purchaseSession) Account() common.Address         { return voterAddr }
func (s *purchaseSession) ContractAddress() common.Address { return contractAddr }

func (s *purchaseSession) Open(ctx context.Context) (chain.Session, error) {
	return s, nil
}

func (s *purchaseSession) Call(ctx context.Context, target chain.Target, method string, args ...interface{}) ([]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch method {
	case "getProject":
		return []interface{}{
			args[0].(string), "desc", voterAddr,
			reader.TokensToWei(10), reader.TokensToWei(2), uint8(1),
			big.NewInt(2), big.NewInt(0),
		}, nil
	case "getPurchase":
		return []interface{}{
			"", "", common.Address{}, common.Address{}, "",
			uint64(0), big.NewInt(0), false, big.NewInt(0),
		}, nil
	case "getProvider":
		return []interface{}{purchaseProviderAddr, "prov-1", "bulk cement", big.NewInt(0)}, nil
	case "materialCount":
		return []interface{}{big.NewInt(1)}, nil
	case "materialAt":
		return []interface{}{"cement", reader.TokensToWei(1)}, nil
	}
	return nil, fmt.Errorf("unexpected method %s", method)
}

func (s *purchaseSession) Send(ctx context.Context, target chain.Target, method string, value *big.Int, args ...interface{}) (chain.Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, sentTx{method: method, args: args})

	if method == "requestPurchase" {
		return &scriptedPending{events: []chain.Event{
			{Name: "PurchaseRequested", Args: map[string]interface{}{"purchaseId": args[0], "projectId": args[1]}},
		}}, nil
	}
	return nil, fmt.Errorf("unexpected method %s", method)
}

func newPurchaseDeps(session *purchaseSession) *Deps {
	store := cache.New(config.CacheConfig{RetryAttempts: 1})
	validator := precheck.NewValidator(
		reader.NewDonorReader(session, store),
		reader.NewProjectReader(session, store),
		reader.NewPurchaseReader(session, store),
		reader.NewProviderReader(session, store),
		reader.NewMaterialReader(session, store),
	)
	return NewDeps(session, store, validator, nil)
}

func TestPurchaseRequestInvalidatesProjectCaches(t *testing.T) {
	session := &purchaseSession{}
	deps := newPurchaseDeps(session)
	flow := NewPurchaseFlow(deps)

	// 预热项目列表缓存，确认回来后应被回收
	listCalls := 0
	_, err := deps.Cache.Get(context.Background(), cache.NewKey(cache.KindProjectList, cache.Wildcard),
		func(ctx context.Context) (interface{}, error) {
			listCalls++
			return "warm", nil
		})
	require.NoError(t, err)
	require.Equal(t, 1, listCalls)

	outcome, err := flow.Request(context.Background(), "p-1", "well", purchaseProviderAddr, "cement", 5)
	require.NoError(t, err)
	assert.Equal(t, "p-1", outcome.PurchaseId)
	assert.Equal(t, "well", outcome.ProjectId)

	require.Len(t, session.sent, 1)
	assert.Equal(t, "requestPurchase", session.sent[0].method)

	// 前置检查时读过的项目详情缓存也要失效，否则项目视图保持旧状态到窗口过期
	projectCalls := 0
	_, err = deps.Cache.Get(context.Background(), cache.NewKey(cache.KindProject, "well"),
		func(ctx context.Context) (interface{}, error) {
			projectCalls++
			return "fresh", nil
		})
	require.NoError(t, err)
	assert.Equal(t, 1, projectCalls)

	_, err = deps.Cache.Get(context.Background(), cache.NewKey(cache.KindProjectList, cache.Wildcard),
		func(ctx context.Context) (interface{}, error) {
			listCalls++
			return "fresh", nil
		})
	require.NoError(t, err)
	assert.Equal(t, 2, listCalls)
}

func TestPurchaseRequestRejectsOverBudget(t *testing.T) {
	session := &purchaseSession{}
	flow := NewPurchaseFlow(newPurchaseDeps(session))

	// 剩余额度 10-2=8，9 份超出
	_, err := flow.Request(context.Background(), "p-1", "well", purchaseProviderAddr, "cement", 9)
	require.Error(t, err)
	assert.Empty(t, session.sent)
}
