package reader

import (
	"context"
	"fmt"
	"math/big"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/model"
)

// MaterialReader 物料目录读取器。目录不可变，缓存窗口最长
type MaterialReader struct {
	session chain.Session
	cache   *cache.Store
}

// NewMaterialReader 创建物料读取器
func NewMaterialReader(session chain.Session, store *cache.Store) *MaterialReader {
	return &MaterialReader{session: session, cache: store}
}

// List 枚举物料目录
func (r *MaterialReader) List(ctx context.Context) ([]model.Material, error) {
	value, err := r.cache.Get(ctx, cache.NewKey(cache.KindMaterial, cache.Wildcard), r.fetchMaterials)
	if err != nil {
		if errs.KindOf(err) == errs.KindLedgerUnreachable {
			logger.Warn("Contract not reachable, returning empty material catalog: %v", err)
			return []model.Material{}, nil
		}
		return nil, err
	}

	return value.([]model.Material), nil
}

// UnitPrice 按物料名查单价，未收录返回 nil
func (r *MaterialReader) UnitPrice(ctx context.Context, name string) (*big.Int, error) {
	materials, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, m := range materials {
		if m.Name == name {
			price, err := ParseUnits(m.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("invalid unit price for material %s: %w", name, err)
			}
			return price, nil
		}
	}

	return nil, nil
}

// fetchMaterials 计数读一次，逐索引取条目
func (r *MaterialReader) fetchMaterials(ctx context.Context) (interface{}, error) {
	out, err := r.session.Call(ctx, chain.TargetDonations, "materialCount")
	if err != nil {
		return nil, errs.Classify(err)
	}

	total, err := fieldBig(out, 0)
	if err != nil {
		return nil, errs.Classify(fmt.Errorf("invalid material count: %w", err))
	}

	count := int(total.Int64())
	materials := make([]model.Material, 0, count)

	for i := 0; i < count; i++ {
		entry, err := r.session.Call(ctx, chain.TargetDonations, "materialAt", big.NewInt(int64(i)))
		if err != nil {
			logger.Warn("Skipping material at index %d: %v", i, err)
			continue
		}

		name, err := fieldString(entry, 0)
		if err != nil {
			logger.Warn("Skipping malformed material at index %d: %v", i, err)
			continue
		}
		unitPrice, err := fieldBig(entry, 1)
		if err != nil {
			logger.Warn("Skipping malformed material %s: %v", name, err)
			continue
		}

		materials = append(materials, model.Material{
			Name:      name,
			UnitPrice: FormatUnits(unitPrice),
		})
	}

	return materials, nil
}
