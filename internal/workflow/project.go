package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/logger"
)

// ProjectFlow 项目创建编排，合约限制只有owner可以调用
type ProjectFlow struct {
	deps *Deps
}

// NewProjectFlow 创建项目流程
func NewProjectFlow(deps *Deps) *ProjectFlow {
	return &ProjectFlow{deps: deps}
}

// ProjectOutcome 项目创建结果
type ProjectOutcome struct {
	ProjectId string         `json:"project_id"`
	TxHash    string         `json:"tx_hash"`
	Receipt   *chain.Receipt `json:"-"`
}

// Create 创建新的提案项目
func (f *ProjectFlow) Create(ctx context.Context, projectId, description string, responsible common.Address) (*ProjectOutcome, error) {
	if strings.TrimSpace(projectId) == "" {
		return nil, errs.PreconditionFailed(errs.PreconditionInvalidInput, "project id must not be empty")
	}
	if responsible == (common.Address{}) {
		return nil, errs.PreconditionFailed(errs.PreconditionInvalidInput, "responsible address must not be zero")
	}

	session, err := f.deps.Gateway.Open(ctx)
	if err != nil {
		return nil, err
	}

	target := fmt.Sprintf("create:%s", projectId)
	if err := f.deps.guard.acquire(target); err != nil {
		return nil, err
	}
	defer f.deps.guard.release(target)

	// 重复ID本地先拦一道，链上同名检查仍然兜底
	existing, err := f.deps.Validator.ProjectExists(ctx, projectId)
	if err != nil {
		return nil, err
	}
	if existing {
		return nil, errs.PreconditionFailed(errs.PreconditionDuplicateId, fmt.Sprintf("project %s already exists", projectId))
	}

	pending, err := session.Send(ctx, chain.TargetDonations, "createProject", nil, projectId, description, responsible)
	if err != nil {
		return nil, err
	}

	logger.Info("Project %s creation broadcast, tx %s", projectId, pending.Hash().Hex())

	receipt, err := f.deps.settle(ctx, pending, func(receipt *chain.Receipt) {
		f.deps.Cache.Invalidate(cache.KindProject, projectId)
		f.deps.Cache.Invalidate(cache.KindProjectList, cache.Wildcard)
	})
	if err != nil {
		return nil, err
	}

	return &ProjectOutcome{
		ProjectId: projectId,
		TxHash:    receipt.TxHash.Hex(),
		Receipt:   receipt,
	}, nil
}
