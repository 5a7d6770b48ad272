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

// DonationReader 捐赠流水读取器
type DonationReader struct {
	session chain.Session
	cache   *cache.Store
}

// NewDonationReader 创建捐赠流水读取器
func NewDonationReader(session chain.Session, store *cache.Store) *DonationReader {
	return &DonationReader{session: session, cache: store}
}

// List 枚举全部捐赠记录，按链上追加顺序返回
func (r *DonationReader) List(ctx context.Context) ([]model.Donation, error) {
	value, err := r.cache.Get(ctx, cache.NewKey(cache.KindDonationList, cache.Wildcard), r.fetchDonations)
	if err != nil {
		if errs.KindOf(err) == errs.KindLedgerUnreachable {
			logger.Warn("Contract not reachable, returning empty donation list: %v", err)
			return []model.Donation{}, nil
		}
		return nil, err
	}

	return value.([]model.Donation), nil
}

// ListByProject 过滤出某项目的捐赠记录
func (r *DonationReader) ListByProject(ctx context.Context, projectId string) ([]model.Donation, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	donations := make([]model.Donation, 0)
	for _, d := range all {
		if d.ProjectId == projectId {
			donations = append(donations, d)
		}
	}

	return donations, nil
}

// fetchDonations 计数读一次，逐索引取记录
func (r *DonationReader) fetchDonations(ctx context.Context) (interface{}, error) {
	out, err := r.session.Call(ctx, chain.TargetDonations, "totalDonations")
	if err != nil {
		return nil, errs.Classify(err)
	}

	total, err := fieldBig(out, 0)
	if err != nil {
		return nil, errs.Classify(fmt.Errorf("invalid donation count: %w", err))
	}

	count := int(total.Int64())
	donations := make([]model.Donation, 0, count)

	for i := 0; i < count; i++ {
		entry, err := r.session.Call(ctx, chain.TargetDonations, "donationAt", big.NewInt(int64(i)))
		if err != nil {
			logger.Warn("Skipping donation at index %d: %v", i, err)
			continue
		}

		donation, err := decodeDonation(entry)
		if err != nil {
			logger.Warn("Skipping malformed donation at index %d: %v", i, err)
			continue
		}

		donations = append(donations, *donation)
	}

	return donations, nil
}

// decodeDonation 原始元组转捐赠实体
func decodeDonation(out []interface{}) (*model.Donation, error) {
	id, err := fieldBig(out, 0)
	if err != nil {
		return nil, err
	}
	donor, err := fieldAddress(out, 1)
	if err != nil {
		return nil, err
	}
	projectId, err := fieldString(out, 2)
	if err != nil {
		return nil, err
	}
	amount, err := fieldBig(out, 3)
	if err != nil {
		return nil, err
	}
	timestamp, err := fieldBig(out, 4)
	if err != nil {
		return nil, err
	}

	donation := &model.Donation{
		Id:        id.Uint64(),
		Donor:     donor.Hex(),
		ProjectId: projectId,
		Amount:    FormatUnits(amount),
		Timestamp: time.Unix(timestamp.Int64(), 0).UTC(),
	}

	return donation, nil
}
