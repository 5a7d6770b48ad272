package reader

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/config"
)

// fakeSession 测试用的账本会话替身
type fakeSession struct {
	account  common.Address
	contract common.Address
	onCall   func(target chain.Target, method string, args []interface{}) ([]interface{}, error)

	callCounts map[string]int
}

func newFakeSession(onCall func(target chain.Target, method string, args []interface{}) ([]interface{}, error)) *fakeSession {
	return &fakeSession{
		account:    common.HexToAddress("0x1111111111111111111111111111111111111111"),
		contract:   common.HexToAddress("0x2222222222222222222222222222222222222222"),
		onCall:     onCall,
		callCounts: make(map[string]int),
	}
}

func (f *fakeSession) Account() common.Address         { return f.account }
func (f *fakeSession) ContractAddress() common.Address { return f.contract }

func (f *fakeSession) Call(ctx context.Context, target chain.Target, method string, args ...interface{}) ([]interface{}, error) {
	f.callCounts[method]++
	return f.onCall(target, method, args)
}

func (f *fakeSession) Send(ctx context.Context, target chain.Target, method string, value *big.Int, args ...interface{}) (chain.Pending, error) {
	panic("reads must not send transactions")
}

// newTestCache 重试退避调小的缓存
func newTestCache() *cache.Store {
	return cache.New(config.CacheConfig{RetryAttempts: 1})
}

func mustWei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad wei literal: " + s)
	}
	return v
}
