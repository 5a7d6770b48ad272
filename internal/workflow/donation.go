package workflow

import (
	"context"
	"fmt"
	"math/big"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/reader"
)

// DonationFlow 捐赠编排
type DonationFlow struct {
	deps *Deps
}

// NewDonationFlow 创建捐赠流程
func NewDonationFlow(deps *Deps) *DonationFlow {
	return &DonationFlow{deps: deps}
}

// DonationOutcome 捐赠结果
type DonationOutcome struct {
	ProjectId string         `json:"project_id"`
	Donor     string         `json:"donor"`
	Amount    string         `json:"amount"`
	TxHash    string         `json:"tx_hash"`
	Receipt   *chain.Receipt `json:"-"`
}

// Donate 向项目捐赠原生币，金额随交易携带。
// 同一项目同一账户的捐赠不允许并发执行。
func (f *DonationFlow) Donate(ctx context.Context, projectId string, amount *big.Int) (*DonationOutcome, error) {
	session, err := f.deps.Gateway.Open(ctx)
	if err != nil {
		return nil, err
	}
	donor := session.Account()

	target := fmt.Sprintf("donate:%s:%s", projectId, donor.Hex())
	if err := f.deps.guard.acquire(target); err != nil {
		return nil, err
	}
	defer f.deps.guard.release(target)

	if err := f.deps.Validator.CheckDonation(ctx, donor, projectId, amount); err != nil {
		return nil, err
	}

	pending, err := session.Send(ctx, chain.TargetDonations, "donate", amount, projectId)
	if err != nil {
		return nil, err
	}

	logger.Info("Donation of %s to project %s broadcast, tx %s",
		reader.FormatUnits(amount), projectId, pending.Hash().Hex())

	receipt, err := f.deps.settle(ctx, pending, func(receipt *chain.Receipt) {
		f.deps.Cache.Invalidate(cache.KindProject, projectId)
		f.deps.Cache.Invalidate(cache.KindProjectList, cache.Wildcard)
		f.deps.Cache.Invalidate(cache.KindDonationList, cache.Wildcard)
		f.deps.Cache.Invalidate(cache.KindDonor, donor.Hex())
		f.deps.Cache.Invalidate(cache.KindBalance, donor.Hex())
	})
	if err != nil {
		return nil, err
	}

	return &DonationOutcome{
		ProjectId: projectId,
		Donor:     donor.Hex(),
		Amount:    reader.FormatUnits(amount),
		TxHash:    receipt.TxHash.Hex(),
		Receipt:   receipt,
	}, nil
}
