package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"

	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/logger"
)

// PassphraseFunc 解锁口令来源。可能阻塞任意长的时间等待用户输入，
// 返回错误表示用户拒绝解锁。
type PassphraseFunc func(account common.Address) (string, error)

// KeystoreProvider 基于本地 keystore 的钱包提供者
type KeystoreProvider struct {
	ks         *keystore.KeyStore
	passphrase PassphraseFunc

	mu       sync.Mutex
	unlocked map[common.Address]bool
	changes  chan []common.Address
	sub      event.Subscription
}

// NewKeystoreProvider 创建钱包提供者
func NewKeystoreProvider(keystoreDir string, passphrase PassphraseFunc) *KeystoreProvider {
	ks := keystore.NewKeyStore(keystoreDir, keystore.StandardScryptN, keystore.StandardScryptP)

	p := &KeystoreProvider{
		ks:         ks,
		passphrase: passphrase,
		unlocked:   make(map[common.Address]bool),
		changes:    make(chan []common.Address, 1),
	}

	// 监听钱包事件，转换为账户变更通知
	events := make(chan accounts.WalletEvent, 16)
	p.sub = ks.Subscribe(events)
	go p.forwardWalletEvents(events)

	return p
}

// FixedPassphrase 使用固定口令的来源（配置注入）
func FixedPassphrase(passphrase string) PassphraseFunc {
	return func(common.Address) (string, error) {
		return passphrase, nil
	}
}

// RequestAccounts 请求账户访问，必要时解锁第一个账户
func (p *KeystoreProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	all := p.ks.Accounts()
	if len(all) == 0 {
		return nil, errs.WalletUnavailable(fmt.Errorf("keystore holds no accounts"))
	}

	addresses := make([]common.Address, 0, len(all))
	for _, account := range all {
		addresses = append(addresses, account.Address)
	}

	primary := all[0]
	p.mu.Lock()
	alreadyUnlocked := p.unlocked[primary.Address]
	p.mu.Unlock()

	if alreadyUnlocked {
		return addresses, nil
	}

	// 口令提示可能无限期等待用户，不在这里设置超时
	pass, err := p.passphrase(primary.Address)
	if err != nil {
		return nil, errs.UserRejected(err)
	}

	if err := p.ks.Unlock(primary, pass); err != nil {
		return nil, errs.UserRejected(fmt.Errorf("failed to unlock account %s: %w", primary.Address.Hex(), err))
	}

	p.mu.Lock()
	p.unlocked[primary.Address] = true
	p.mu.Unlock()

	logger.Info("Unlocked wallet account %s", primary.Address.Hex())
	return addresses, nil
}

// ConnectedAccounts 返回已解锁的账户，不触发提示
func (p *KeystoreProvider) ConnectedAccounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var addresses []common.Address
	for _, account := range p.ks.Accounts() {
		if p.unlocked[account.Address] {
			addresses = append(addresses, account.Address)
		}
	}

	return addresses, nil
}

// AccountChanges 账户变更通知流
func (p *KeystoreProvider) AccountChanges() <-chan []common.Address {
	return p.changes
}

// NewTransactor 为指定账户创建交易签名器
func (p *KeystoreProvider) NewTransactor(account common.Address, chainId *big.Int) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyStoreTransactorWithChainID(p.ks, accounts.Account{Address: account}, chainId)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor for %s: %w", account.Hex(), err)
	}
	return auth, nil
}

// Close 停止事件转发
func (p *KeystoreProvider) Close() {
	if p.sub != nil {
		p.sub.Unsubscribe()
	}
}

// forwardWalletEvents 将 keystore 钱包事件转换为账户列表通知
func (p *KeystoreProvider) forwardWalletEvents(events <-chan accounts.WalletEvent) {
	for range events {
		all := p.ks.Accounts()
		addresses := make([]common.Address, 0, len(all))
		for _, account := range all {
			addresses = append(addresses, account.Address)
		}

		// 丢弃旧通知，只保留最新的账户列表
		select {
		case <-p.changes:
		default:
		}
		p.changes <- addresses
	}
}
