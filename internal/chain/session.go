package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/wallet"
)

// Session 已认证的账本通道。读取免费无副作用，
// 写入需要钱包签名并产生费用。
type Session interface {
	// Account 会话账户地址
	Account() common.Address

	// ContractAddress 捐赠合约地址（代币授权的spender）
	ContractAddress() common.Address

	// Call 只读调用，返回按ABI解包的输出
	Call(ctx context.Context, target Target, method string, args ...interface{}) ([]interface{}, error)

	// Send 签名并广播写入
	Send(ctx context.Context, target Target, method string, value *big.Int, args ...interface{}) (Pending, error)
}

// liveSession 基于链客户端的会话实现
type liveSession struct {
	client    *Client
	provider  wallet.Provider
	account   common.Address
	auth      *bind.TransactOpts
	donations *Contract
	bound     *bind.BoundContract

	mu         sync.Mutex
	token      *Contract
	tokenBound *bind.BoundContract
}

// newLiveSession 创建会话
func newLiveSession(client *Client, provider wallet.Provider, donations *Contract, account common.Address) (*liveSession, error) {
	auth, err := provider.NewTransactor(account, client.ChainId())
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	bound := bind.NewBoundContract(donations.GetAddress(), donations.GetABI(), client.Eth(), client.Eth(), client.Eth())

	return &liveSession{
		client:    client,
		provider:  provider,
		account:   account,
		auth:      auth,
		donations: donations,
		bound:     bound,
	}, nil
}

// Account 会话账户地址
func (s *liveSession) Account() common.Address {
	return s.account
}

// ContractAddress 捐赠合约地址
func (s *liveSession) ContractAddress() common.Address {
	return s.donations.GetAddress()
}

// Call 只读调用
func (s *liveSession) Call(ctx context.Context, target Target, method string, args ...interface{}) ([]interface{}, error) {
	bound, _, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: s.account}
	if err := bound.Call(opts, &out, method, args...); err != nil {
		return nil, fmt.Errorf("call %s failed: %w", method, err)
	}

	return out, nil
}

// Send 签名并广播写入
func (s *liveSession) Send(ctx context.Context, target Target, method string, value *big.Int, args ...interface{}) (Pending, error) {
	bound, contract, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	// 每次写入复制签名配置，避免并发修改共享的 TransactOpts
	opts := *s.auth
	opts.Context = ctx
	opts.Value = value

	tx, err := bound.Transact(&opts, method, args...)
	if err != nil {
		return nil, errs.Classify(fmt.Errorf("send %s failed: %w", method, err))
	}

	return &pendingTx{
		client:   s.client,
		contract: contract,
		tx:       tx,
		from:     s.account,
	}, nil
}

// resolveTarget 解析目标合约，代币合约地址从捐赠合约懒加载
func (s *liveSession) resolveTarget(ctx context.Context, target Target) (*bind.BoundContract, *Contract, error) {
	if target == TargetDonations {
		return s.bound, s.donations, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tokenBound != nil {
		return s.tokenBound, s.token, nil
	}

	// 从捐赠合约读取治理代币地址
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: s.account}
	if err := s.bound.Call(opts, &out, "governanceToken"); err != nil {
		return nil, nil, errs.Classify(fmt.Errorf("failed to resolve governance token: %w", err))
	}

	tokenAddr, ok := out[0].(common.Address)
	if !ok || tokenAddr == (common.Address{}) {
		return nil, nil, errs.LedgerUnreachable(fmt.Errorf("governance token address not available"))
	}

	token, err := NewContract("governance_token", tokenAddr.Hex(), tokenABI)
	if err != nil {
		return nil, nil, err
	}

	s.token = token
	s.tokenBound = bind.NewBoundContract(tokenAddr, token.GetABI(), s.client.Eth(), s.client.Eth(), s.client.Eth())

	return s.tokenBound, s.token, nil
}
