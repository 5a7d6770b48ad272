package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Target 调用目标合约
type Target int

const (
	TargetDonations Target = iota // 捐赠合约
	TargetToken                   // 治理代币合约
)

// Event 已解码的合约事件
type Event struct {
	Name        string
	TxHash      common.Hash
	BlockNumber uint64
	LogIndex    uint
	Args        map[string]interface{}
}

// BigArg 读取大整数参数
func (e Event) BigArg(name string) *big.Int {
	if v, ok := e.Args[name].(*big.Int); ok {
		return v
	}
	return nil
}

// StringArg 读取字符串参数
func (e Event) StringArg(name string) string {
	if v, ok := e.Args[name].(string); ok {
		return v
	}
	return ""
}

// AddressArg 读取地址参数
func (e Event) AddressArg(name string) common.Address {
	if v, ok := e.Args[name].(common.Address); ok {
		return v
	}
	return common.Address{}
}

// Receipt 已确认写入的回执
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Events      []Event
}

// FindEvent 按名称查找回执中的事件。
// 状态转换通过回执事件判断，不重读链上状态。
func (r *Receipt) FindEvent(name string) (Event, bool) {
	for _, event := range r.Events {
		if event.Name == name {
			return event, true
		}
	}
	return Event{}, false
}

// Pending 已广播、等待确认的写入。
// 广播后无法撤销，调用方可以放弃等待，但确认到达后缓存仍须回收。
type Pending interface {
	// Hash 交易哈希
	Hash() common.Hash

	// Confirm 等待确认。链上回滚返回 TransactionReverted，
	// 配置的等待窗口内未确认返回 TransactionTimeout。
	Confirm(ctx context.Context) (*Receipt, error)
}
