package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/wallet"
)

// Gateway 账本网关。会话整个应用生命周期内获取一次，
// 账户变更时失效，不依赖环境全局状态。
type Gateway struct {
	client    *Client
	provider  wallet.Provider
	donations *Contract

	mu      sync.Mutex
	current *liveSession
}

// NewGateway 创建账本网关
func NewGateway(client *Client, provider wallet.Provider, contractAddr string) (*Gateway, error) {
	donations, err := NewContract("donations", contractAddr, donationsABI)
	if err != nil {
		return nil, fmt.Errorf("failed to create donations contract: %w", err)
	}

	g := &Gateway{
		client:    client,
		provider:  provider,
		donations: donations,
	}

	// 账户变更时丢弃当前会话
	go g.watchAccountChanges()

	return g, nil
}

// Open 打开已认证的账本通道。
// 没有签名钱包返回 WalletUnavailable，用户拒绝返回 UserRejected。
func (g *Gateway) Open(ctx context.Context) (Session, error) {
	g.mu.Lock()
	if g.current != nil {
		session := g.current
		g.mu.Unlock()
		return session, nil
	}
	g.mu.Unlock()

	accounts, err := g.provider.RequestAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, errs.WalletUnavailable(fmt.Errorf("no accounts available"))
	}

	session, err := newLiveSession(g.client, g.provider, g.donations, accounts[0])
	if err != nil {
		return nil, errs.Classify(err)
	}

	g.mu.Lock()
	g.current = session
	g.mu.Unlock()

	logger.Info("Opened ledger session for account %s", accounts[0].Hex())
	return session, nil
}

// Contract 捐赠合约
func (g *Gateway) Contract() *Contract {
	return g.donations
}

// Client 链客户端
func (g *Gateway) Client() *Client {
	return g.client
}

// IsDeployed 检查捐赠合约是否已部署
func (g *Gateway) IsDeployed(ctx context.Context) (bool, error) {
	return g.client.IsDeployed(ctx, g.donations.GetAddress())
}

// watchAccountChanges 账户变更时失效当前会话
func (g *Gateway) watchAccountChanges() {
	for accounts := range g.provider.AccountChanges() {
		g.mu.Lock()
		g.current = nil
		g.mu.Unlock()
		logger.Info("Wallet accounts changed (%d accounts), session invalidated", len(accounts))
	}
}
