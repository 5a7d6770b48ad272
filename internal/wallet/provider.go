package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Provider 签名钱包提供者协议。
// 账户访问可能需要用户确认，对确认等待不设超时。
type Provider interface {
	// RequestAccounts 请求账户访问，必要时提示解锁
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// ConnectedAccounts 返回已连接的账户，不触发提示
	ConnectedAccounts(ctx context.Context) ([]common.Address, error)

	// AccountChanges 账户变更通知流
	AccountChanges() <-chan []common.Address

	// NewTransactor 为指定账户创建交易签名器
	NewTransactor(account common.Address, chainId *big.Int) (*bind.TransactOpts, error)
}
