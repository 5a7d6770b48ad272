package reader

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/model"
)

// DonorReader 捐赠者读取器
type DonorReader struct {
	session chain.Session
	cache   *cache.Store
}

// NewDonorReader 创建捐赠者读取器
func NewDonorReader(session chain.Session, store *cache.Store) *DonorReader {
	return &DonorReader{session: session, cache: store}
}

// Get 按地址获取捐赠者记录，未注册返回 nil
func (r *DonorReader) Get(ctx context.Context, address common.Address) (*model.Donor, error) {
	value, err := r.cache.Get(ctx, cache.NewKey(cache.KindDonor, address.Hex()), func(ctx context.Context) (interface{}, error) {
		return r.fetchDonor(ctx, address)
	})
	if err != nil {
		if errs.KindOf(err) == errs.KindLedgerUnreachable {
			logger.Warn("Contract not reachable, treating donor %s as unregistered: %v", address.Hex(), err)
			return nil, nil
		}
		return nil, err
	}

	donor, _ := value.(*model.Donor)
	return donor, nil
}

// GovernanceBalance 治理代币余额
func (r *DonorReader) GovernanceBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	value, err := r.cache.Get(ctx, cache.NewKey(cache.KindBalance, address.Hex()), func(ctx context.Context) (interface{}, error) {
		out, err := r.session.Call(ctx, chain.TargetDonations, "governanceBalance", address)
		if err != nil {
			return nil, errs.Classify(err)
		}
		balance, err := fieldBig(out, 0)
		if err != nil {
			return nil, fmt.Errorf("malformed balance: %w", err)
		}
		return balance, nil
	})
	if err != nil {
		if errs.KindOf(err) == errs.KindLedgerUnreachable {
			return big.NewInt(0), nil
		}
		return nil, err
	}

	return value.(*big.Int), nil
}

// fetchDonor 读取捐赠者，零地址哨兵表示未注册
func (r *DonorReader) fetchDonor(ctx context.Context, address common.Address) (interface{}, error) {
	out, err := r.session.Call(ctx, chain.TargetDonations, "getDonor", address)
	if err != nil {
		return nil, errs.Classify(err)
	}

	recorded, err := fieldAddress(out, 0)
	if err != nil {
		return nil, fmt.Errorf("malformed donor record: %w", err)
	}
	if isZeroAddress(recorded) {
		return (*model.Donor)(nil), nil
	}

	displayName, err := fieldString(out, 1)
	if err != nil {
		return nil, fmt.Errorf("malformed donor record: %w", err)
	}
	class, err := fieldUint8(out, 2)
	if err != nil {
		return nil, fmt.Errorf("malformed donor record: %w", err)
	}
	donated, err := fieldBig(out, 3)
	if err != nil {
		return nil, fmt.Errorf("malformed donor record: %w", err)
	}
	tokens, err := fieldBig(out, 4)
	if err != nil {
		return nil, fmt.Errorf("malformed donor record: %w", err)
	}

	donor := &model.Donor{
		Address:           recorded.Hex(),
		DisplayName:       displayName,
		Class:             model.DonorClass(class),
		CumulativeDonated: FormatUnits(donated),
		GovernanceBalance: tokens.String(),
	}

	return donor, nil
}
