package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// pendingTx 已广播的写入
type pendingTx struct {
	client   *Client
	contract *Contract
	tx       *types.Transaction
	from     common.Address
}

// Hash 交易哈希
func (p *pendingTx) Hash() common.Hash {
	return p.tx.Hash()
}

// Confirm 等待确认并解码目标合约的事件
func (p *pendingTx) Confirm(ctx context.Context) (*Receipt, error) {
	receipt, err := p.client.WaitMined(ctx, p.tx, p.from)
	if err != nil {
		return nil, err
	}

	return &Receipt{
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
		Events:      p.contract.EventsFromReceipt(receipt),
	}, nil
}
