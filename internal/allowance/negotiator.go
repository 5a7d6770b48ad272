package allowance

import (
	"context"
	"fmt"
	"math/big"

	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/logger"
)

// Negotiator 治理代币授权协商。
// 投票前合约需要足够的 allowance 才能代扣代币，
// 每次都读取链上实时额度，不缓存，额度提高时会重新授权。
type Negotiator struct {
	session chain.Session
}

// NewNegotiator 创建授权协商器
func NewNegotiator(session chain.Session) *Negotiator {
	return &Negotiator{session: session}
}

// Result 协商结果
type Result struct {
	Approved bool           // 本次是否发出了授权交易
	Receipt  *chain.Receipt // 授权交易回执，未发授权时为 nil
}

// Ensure 确保合约对当前账户至少有 amount 的代扣额度。
// 额度足够时不发交易；不足时发出 approve 并等待确认。
func (n *Negotiator) Ensure(ctx context.Context, amount *big.Int) (*Result, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, errs.PreconditionFailed(errs.PreconditionInvalidInput, "allowance amount must be positive")
	}

	current, err := n.Current(ctx)
	if err != nil {
		return nil, err
	}
	if current.Cmp(amount) >= 0 {
		logger.Debug("Allowance %s already covers %s, skipping approval", current, amount)
		return &Result{Approved: false}, nil
	}

	logger.Info("Allowance %s below required %s, requesting approval from %s",
		current, amount, n.session.Account().Hex())

	pending, err := n.session.Send(ctx, chain.TargetToken, "approve", nil, n.session.ContractAddress(), amount)
	if err != nil {
		return nil, errs.Classify(err)
	}

	receipt, err := pending.Confirm(ctx)
	if err != nil {
		return nil, errs.Classify(err)
	}

	logger.Info("Approval confirmed in tx %s", receipt.TxHash.Hex())
	return &Result{Approved: true, Receipt: receipt}, nil
}

// Current 链上实时额度
func (n *Negotiator) Current(ctx context.Context) (*big.Int, error) {
	out, err := n.session.Call(ctx, chain.TargetToken, "allowance", n.session.Account(), n.session.ContractAddress())
	if err != nil {
		return nil, errs.Classify(err)
	}

	current, err := toBig(out)
	if err != nil {
		return nil, err
	}

	return current, nil
}

// Balance 当前账户的治理代币余额
func (n *Negotiator) Balance(ctx context.Context) (*big.Int, error) {
	out, err := n.session.Call(ctx, chain.TargetToken, "balanceOf", n.session.Account())
	if err != nil {
		return nil, errs.Classify(err)
	}

	return toBig(out)
}

func toBig(out []interface{}) (*big.Int, error) {
	if len(out) < 1 {
		return nil, fmt.Errorf("empty token response")
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected token response type %T", out[0])
	}
	return value, nil
}
