package reader

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/model"
)

// ProviderReader 供应商读取器
type ProviderReader struct {
	session chain.Session
	cache   *cache.Store
}

// NewProviderReader 创建供应商读取器
func NewProviderReader(session chain.Session, store *cache.Store) *ProviderReader {
	return &ProviderReader{session: session, cache: store}
}

// Get 按地址获取供应商记录，未注册返回 nil
func (r *ProviderReader) Get(ctx context.Context, address common.Address) (*model.Provider, error) {
	value, err := r.cache.Get(ctx, cache.NewKey(cache.KindProvider, address.Hex()), func(ctx context.Context) (interface{}, error) {
		return r.fetchProvider(ctx, address)
	})
	if err != nil {
		if errs.KindOf(err) == errs.KindLedgerUnreachable {
			return nil, nil
		}
		return nil, err
	}

	provider, _ := value.(*model.Provider)
	return provider, nil
}

// fetchProvider 读取供应商，零地址哨兵表示未注册
func (r *ProviderReader) fetchProvider(ctx context.Context, address common.Address) (interface{}, error) {
	out, err := r.session.Call(ctx, chain.TargetDonations, "getProvider", address)
	if err != nil {
		return nil, errs.Classify(err)
	}

	recorded, err := fieldAddress(out, 0)
	if err != nil {
		return nil, fmt.Errorf("malformed provider record: %w", err)
	}
	if isZeroAddress(recorded) {
		return (*model.Provider)(nil), nil
	}

	id, err := fieldString(out, 1)
	if err != nil {
		return nil, fmt.Errorf("malformed provider record: %w", err)
	}
	description, err := fieldString(out, 2)
	if err != nil {
		return nil, fmt.Errorf("malformed provider record: %w", err)
	}
	earnings, err := fieldBig(out, 3)
	if err != nil {
		return nil, fmt.Errorf("malformed provider record: %w", err)
	}

	provider := &model.Provider{
		Address:            recorded.Hex(),
		Id:                 id,
		Description:        description,
		CumulativeEarnings: FormatUnits(earnings),
	}

	return provider, nil
}
