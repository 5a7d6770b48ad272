package workflow

import (
	"context"
	"fmt"
	"math/big"

	"github.com/natar10/uva-ong-block/internal/allowance"
	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/model"
)

// VoteKind 投票类型
type VoteKind string

const (
	VoteApproval     VoteKind = "approval"     // 批准提案项目
	VoteCancellation VoteKind = "cancellation" // 取消未进入终态的项目
)

// VoteFlow 治理投票编排。投票消耗治理代币，
// 合约代扣前需要足够的授权额度，流程内先协商授权再投票。
type VoteFlow struct {
	deps *Deps
}

// NewVoteFlow 创建投票流程
func NewVoteFlow(deps *Deps) *VoteFlow {
	return &VoteFlow{deps: deps}
}

// VoteOutcome 投票结果。Transition 为本票触发的状态迁移，
// 未达阈值时为 nil。
type VoteOutcome struct {
	ProjectId      string              `json:"project_id"`
	Voter          string              `json:"voter"`
	Amount         string              `json:"amount"`
	Kind           VoteKind            `json:"kind"`
	ApprovalIssued bool                `json:"approval_issued"` // 本次是否补发了代币授权
	Transition     *model.ProjectState `json:"transition,omitempty"`
	TxHash         string              `json:"tx_hash"`
	Receipt        *chain.Receipt      `json:"-"`
}

// Approve 对提案项目投批准票
func (f *VoteFlow) Approve(ctx context.Context, projectId string, amount *big.Int) (*VoteOutcome, error) {
	return f.vote(ctx, VoteApproval, projectId, amount)
}

// Cancel 对未进入终态的项目投取消票
func (f *VoteFlow) Cancel(ctx context.Context, projectId string, amount *big.Int) (*VoteOutcome, error) {
	return f.vote(ctx, VoteCancellation, projectId, amount)
}

// vote 投票主流程：前置检查、授权协商、投票、迁移检测
func (f *VoteFlow) vote(ctx context.Context, kind VoteKind, projectId string, amount *big.Int) (*VoteOutcome, error) {
	session, err := f.deps.Gateway.Open(ctx)
	if err != nil {
		return nil, err
	}
	voter := session.Account()

	target := fmt.Sprintf("vote:%s:%s", projectId, voter.Hex())
	if err := f.deps.guard.acquire(target); err != nil {
		return nil, err
	}
	defer f.deps.guard.release(target)

	switch kind {
	case VoteApproval:
		err = f.deps.Validator.CheckApprovalVote(ctx, voter, projectId, amount)
	case VoteCancellation:
		err = f.deps.Validator.CheckCancellationVote(ctx, voter, projectId, amount)
	default:
		return nil, fmt.Errorf("unknown vote kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	// 额度足够时这里不发交易
	negotiated, err := allowance.NewNegotiator(session).Ensure(ctx, amount)
	if err != nil {
		return nil, err
	}

	method := "voteApproval"
	if kind == VoteCancellation {
		method = "voteCancellation"
	}

	pending, err := session.Send(ctx, chain.TargetDonations, method, nil, projectId, amount)
	if err != nil {
		return nil, err
	}

	logger.Info("%s vote of %s tokens on project %s broadcast, tx %s",
		kind, amount, projectId, pending.Hash().Hex())

	receipt, err := f.deps.settle(ctx, pending, func(receipt *chain.Receipt) {
		f.deps.Cache.Invalidate(cache.KindProject, projectId)
		f.deps.Cache.Invalidate(cache.KindProjectList, cache.Wildcard)
		f.deps.Cache.Invalidate(cache.KindDonor, voter.Hex())
		f.deps.Cache.Invalidate(cache.KindBalance, voter.Hex())
	})
	if err != nil {
		return nil, err
	}

	outcome := &VoteOutcome{
		ProjectId:      projectId,
		Voter:          voter.Hex(),
		Amount:         amount.String(),
		Kind:           kind,
		ApprovalIssued: negotiated.Approved,
		Transition:     transitionFromReceipt(receipt),
		TxHash:         receipt.TxHash.Hex(),
		Receipt:        receipt,
	}

	if outcome.Transition != nil {
		logger.Info("Project %s transitioned to %s after vote", projectId, outcome.Transition)
	}

	return outcome, nil
}

// transitionFromReceipt 从回执事件判断状态迁移，不重读链上状态
func transitionFromReceipt(receipt *chain.Receipt) *model.ProjectState {
	if _, ok := receipt.FindEvent("ProjectApproved"); ok {
		state := model.ProjectStateActive
		return &state
	}
	if _, ok := receipt.FindEvent("ProjectCancelled"); ok {
		state := model.ProjectStateCancelled
		return &state
	}
	return nil
}
