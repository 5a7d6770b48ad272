package reader

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/model"
)

// PurchaseReader 采购读取器
type PurchaseReader struct {
	session chain.Session
	cache   *cache.Store
}

// NewPurchaseReader 创建采购读取器
func NewPurchaseReader(session chain.Session, store *cache.Store) *PurchaseReader {
	return &PurchaseReader{session: session, cache: store}
}

// Get 按ID获取采购记录，不存在返回 nil
func (r *PurchaseReader) Get(ctx context.Context, purchaseId string) (*model.Purchase, error) {
	value, err := r.cache.Get(ctx, cache.NewKey(cache.KindPurchase, purchaseId), func(ctx context.Context) (interface{}, error) {
		return r.fetchPurchase(ctx, purchaseId)
	})
	if err != nil {
		return nil, err
	}

	purchase, _ := value.(*model.Purchase)
	return purchase, nil
}

// ListByProject 枚举项目下全部采购记录
func (r *PurchaseReader) ListByProject(ctx context.Context, projectId string) ([]model.Purchase, error) {
	value, err := r.cache.Get(ctx, cache.NewKey(cache.KindPurchaseList, projectId), func(ctx context.Context) (interface{}, error) {
		return r.fetchByProject(ctx, projectId)
	})
	if err != nil {
		if errs.KindOf(err) == errs.KindLedgerUnreachable {
			logger.Warn("Contract not reachable, returning empty purchase list for project %s: %v", projectId, err)
			return []model.Purchase{}, nil
		}
		return nil, err
	}

	return value.([]model.Purchase), nil
}

// fetchByProject 计数读一次，逐索引取记录，坏记录跳过
func (r *PurchaseReader) fetchByProject(ctx context.Context, projectId string) (interface{}, error) {
	out, err := r.session.Call(ctx, chain.TargetDonations, "purchaseCountByProject", projectId)
	if err != nil {
		return nil, errs.Classify(err)
	}

	total, err := fieldBig(out, 0)
	if err != nil {
		return nil, errs.Classify(fmt.Errorf("invalid purchase count: %w", err))
	}

	count := int(total.Int64())
	purchases := make([]model.Purchase, 0, count)

	for i := 0; i < count; i++ {
		idOut, err := r.session.Call(ctx, chain.TargetDonations, "purchaseIdAt", projectId, big.NewInt(int64(i)))
		if err != nil {
			logger.Warn("Skipping purchase at index %d of project %s: %v", i, projectId, err)
			continue
		}
		purchaseId, err := fieldString(idOut, 0)
		if err != nil {
			logger.Warn("Skipping malformed purchase id at index %d of project %s: %v", i, projectId, err)
			continue
		}

		detail, err := r.session.Call(ctx, chain.TargetDonations, "getPurchase", purchaseId)
		if err != nil {
			logger.Warn("Skipping purchase %s: %v", purchaseId, err)
			continue
		}
		purchase, err := decodePurchase(detail)
		if err != nil {
			logger.Warn("Skipping malformed purchase %s: %v", purchaseId, err)
			continue
		}

		purchases = append(purchases, *purchase)
	}

	return purchases, nil
}

// fetchPurchase 读取单条采购
func (r *PurchaseReader) fetchPurchase(ctx context.Context, purchaseId string) (interface{}, error) {
	out, err := r.session.Call(ctx, chain.TargetDonations, "getPurchase", purchaseId)
	if err != nil {
		return nil, errs.Classify(err)
	}

	id, err := fieldString(out, 0)
	if err != nil {
		return nil, fmt.Errorf("malformed purchase record: %w", err)
	}
	if id == "" {
		return (*model.Purchase)(nil), nil
	}

	purchase, err := decodePurchase(out)
	if err != nil {
		return nil, fmt.Errorf("malformed purchase record: %w", err)
	}

	return purchase, nil
}

// decodePurchase 原始元组转采购实体
func decodePurchase(out []interface{}) (*model.Purchase, error) {
	id, err := fieldString(out, 0)
	if err != nil {
		return nil, err
	}
	projectId, err := fieldString(out, 1)
	if err != nil {
		return nil, err
	}
	buyer, err := fieldAddress(out, 2)
	if err != nil {
		return nil, err
	}
	provider, err := fieldAddress(out, 3)
	if err != nil {
		return nil, err
	}
	materialKind, err := fieldString(out, 4)
	if err != nil {
		return nil, err
	}
	quantity, err := fieldUint64(out, 5)
	if err != nil {
		return nil, err
	}
	value, err := fieldBig(out, 6)
	if err != nil {
		return nil, err
	}
	validated, err := fieldBool(out, 7)
	if err != nil {
		return nil, err
	}
	timestamp, err := fieldBig(out, 8)
	if err != nil {
		return nil, err
	}

	purchase := &model.Purchase{
		Id:           id,
		ProjectId:    projectId,
		Buyer:        buyer.Hex(),
		Provider:     provider.Hex(),
		MaterialKind: materialKind,
		Quantity:     quantity,
		Value:        FormatUnits(value),
		Validated:    validated,
		Timestamp:    time.Unix(timestamp.Int64(), 0).UTC(),
	}

	return purchase, nil
}
