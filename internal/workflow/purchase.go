package workflow

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/logger"
)

// PurchaseFlow 采购申请与验证编排
type PurchaseFlow struct {
	deps *Deps
}

// NewPurchaseFlow 创建采购流程
func NewPurchaseFlow(deps *Deps) *PurchaseFlow {
	return &PurchaseFlow{deps: deps}
}

// PurchaseOutcome 采购操作结果
type PurchaseOutcome struct {
	PurchaseId string         `json:"purchase_id"`
	ProjectId  string         `json:"project_id"`
	TxHash     string         `json:"tx_hash"`
	Receipt    *chain.Receipt `json:"-"`
}

// Request 项目负责人申请采购
func (f *PurchaseFlow) Request(ctx context.Context, purchaseId, projectId string, provider common.Address, materialKind string, quantity uint64) (*PurchaseOutcome, error) {
	session, err := f.deps.Gateway.Open(ctx)
	if err != nil {
		return nil, err
	}
	buyer := session.Account()

	target := fmt.Sprintf("purchase:%s", purchaseId)
	if err := f.deps.guard.acquire(target); err != nil {
		return nil, err
	}
	defer f.deps.guard.release(target)

	if err := f.deps.Validator.CheckPurchaseRequest(ctx, buyer, purchaseId, projectId, provider, materialKind, quantity); err != nil {
		return nil, err
	}

	pending, err := session.Send(ctx, chain.TargetDonations, "requestPurchase", nil,
		purchaseId, projectId, provider, materialKind, quantity)
	if err != nil {
		return nil, err
	}

	logger.Info("Purchase %s for project %s broadcast, tx %s", purchaseId, projectId, pending.Hash().Hex())

	receipt, err := f.deps.settle(ctx, pending, func(receipt *chain.Receipt) {
		f.deps.Cache.Invalidate(cache.KindPurchase, purchaseId)
		f.deps.Cache.Invalidate(cache.KindPurchaseList, projectId)
		f.deps.Cache.Invalidate(cache.KindProject, projectId)
		f.deps.Cache.Invalidate(cache.KindProjectList, cache.Wildcard)
	})
	if err != nil {
		return nil, err
	}

	return &PurchaseOutcome{
		PurchaseId: purchaseId,
		ProjectId:  projectId,
		TxHash:     receipt.TxHash.Hex(),
		Receipt:    receipt,
	}, nil
}

// Validate 项目负责人确认货物到位，资金划转给供应商。
// 验证是单向的，已验证的采购无法撤销。
func (f *PurchaseFlow) Validate(ctx context.Context, purchaseId string) (*PurchaseOutcome, error) {
	session, err := f.deps.Gateway.Open(ctx)
	if err != nil {
		return nil, err
	}
	caller := session.Account()

	target := fmt.Sprintf("validate:%s", purchaseId)
	if err := f.deps.guard.acquire(target); err != nil {
		return nil, err
	}
	defer f.deps.guard.release(target)

	if err := f.deps.Validator.CheckPurchaseValidation(ctx, caller, purchaseId); err != nil {
		return nil, err
	}

	pending, err := session.Send(ctx, chain.TargetDonations, "validatePurchase", nil, purchaseId)
	if err != nil {
		return nil, err
	}

	logger.Info("Purchase validation for %s broadcast, tx %s", purchaseId, pending.Hash().Hex())

	receipt, err := f.deps.settle(ctx, pending, func(receipt *chain.Receipt) {
		f.deps.Cache.Invalidate(cache.KindPurchase, purchaseId)
		f.deps.Cache.Invalidate(cache.KindPurchaseList, cache.Wildcard)
		f.deps.Cache.Invalidate(cache.KindProject, cache.Wildcard)
		f.deps.Cache.Invalidate(cache.KindProjectList, cache.Wildcard)
		f.deps.Cache.Invalidate(cache.KindProvider, cache.Wildcard)
	})
	if err != nil {
		return nil, err
	}

	projectId := ""
	if event, ok := receipt.FindEvent("PurchaseValidated"); ok {
		projectId = event.StringArg("projectId")
	}

	return &PurchaseOutcome{
		PurchaseId: purchaseId,
		ProjectId:  projectId,
		TxHash:     receipt.TxHash.Hex(),
		Receipt:    receipt,
	}, nil
}
