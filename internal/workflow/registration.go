package workflow

import (
	"context"
	"fmt"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/model"
)

// RegistrationFlow 捐赠者注册编排
type RegistrationFlow struct {
	deps *Deps
}

// NewRegistrationFlow 创建注册流程
func NewRegistrationFlow(deps *Deps) *RegistrationFlow {
	return &RegistrationFlow{deps: deps}
}

// RegistrationOutcome 注册结果
type RegistrationOutcome struct {
	Account string         `json:"account"`
	TxHash  string         `json:"tx_hash"`
	Receipt *chain.Receipt `json:"-"`
}

// Register 注册当前钱包账户为捐赠者。
// 同一账户的注册不允许并发执行。
func (f *RegistrationFlow) Register(ctx context.Context, displayName string, class model.DonorClass) (*RegistrationOutcome, error) {
	session, err := f.deps.Gateway.Open(ctx)
	if err != nil {
		return nil, err
	}
	account := session.Account()

	target := fmt.Sprintf("register:%s", account.Hex())
	if err := f.deps.guard.acquire(target); err != nil {
		return nil, err
	}
	defer f.deps.guard.release(target)

	if err := f.deps.Validator.CheckRegistration(ctx, account, displayName, class); err != nil {
		return nil, err
	}

	pending, err := session.Send(ctx, chain.TargetDonations, "registerDonor", nil, displayName, uint8(class))
	if err != nil {
		return nil, err
	}

	logger.Info("Donor registration broadcast for %s, tx %s", account.Hex(), pending.Hash().Hex())

	receipt, err := f.deps.settle(ctx, pending, func(receipt *chain.Receipt) {
		f.deps.Cache.Invalidate(cache.KindDonor, account.Hex())
		f.deps.Cache.Invalidate(cache.KindBalance, account.Hex())
	})
	if err != nil {
		return nil, err
	}

	return &RegistrationOutcome{
		Account: account.Hex(),
		TxHash:  receipt.TxHash.Hex(),
		Receipt: receipt,
	}, nil
}
