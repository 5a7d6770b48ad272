package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/natar10/uva-ong-block/internal/config"
	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/logger"
)

// Client 链客户端
type Client struct {
	eth            *ethclient.Client
	chainId        *big.Int
	confirmations  int
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

// NewClient 创建链客户端并校验网络
func NewClient(cfg config.ChainConfig) (*Client, error) {
	// 连接以太坊客户端
	eth, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	// 校验链ID，防止连到错误的网络
	chainId, err := eth.ChainID(context.Background())
	if err != nil {
		eth.Close()
		return nil, errs.LedgerUnreachable(fmt.Errorf("failed to get chain id: %w", err))
	}
	if cfg.ChainId != 0 && chainId.Int64() != cfg.ChainId {
		eth.Close()
		return nil, errs.LedgerUnreachable(fmt.Errorf("unexpected chain id %d, configured %d", chainId.Int64(), cfg.ChainId))
	}

	confirmTimeout := time.Duration(cfg.ConfirmTimeout) * time.Second
	if confirmTimeout == 0 {
		confirmTimeout = 2 * time.Minute
	}

	logger.Info("Connected to chain %d via %s", chainId.Int64(), cfg.RpcUrl)

	return &Client{
		eth:            eth,
		chainId:        chainId,
		confirmations:  cfg.Confirmations,
		confirmTimeout: confirmTimeout,
		pollInterval:   2 * time.Second,
	}, nil
}

// Eth 获取底层客户端
func (c *Client) Eth() *ethclient.Client {
	return c.eth
}

// ChainId 获取链ID
func (c *Client) ChainId() *big.Int {
	return new(big.Int).Set(c.chainId)
}

// ConfirmTimeout 确认等待超时
func (c *Client) ConfirmTimeout() time.Duration {
	return c.confirmTimeout
}

// GetLatestBlock 获取最新区块号
func (c *Client) GetLatestBlock(ctx context.Context) (uint64, error) {
	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

// IsDeployed 检查地址上是否有合约代码
func (c *Client) IsDeployed(ctx context.Context, address common.Address) (bool, error) {
	code, err := c.eth.CodeAt(ctx, address, nil)
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

// GetLogs 获取指定区块范围内的合约日志
func (c *Client) GetLogs(ctx context.Context, addresses []common.Address, fromBlock, toBlock int64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(fromBlock),
		ToBlock:   big.NewInt(toBlock),
		Addresses: addresses,
	}

	return c.eth.FilterLogs(ctx, query)
}

// WaitMined 等待交易确认。超时返回 TransactionTimeout，
// 链上回滚返回 TransactionReverted 并尽量带出回滚原因。
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction, from common.Address) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, tx.Hash())
		if err == nil && receipt != nil {
			if confirmed, cerr := c.hasConfirmations(ctx, receipt); cerr == nil && confirmed {
				if receipt.Status == types.ReceiptStatusFailed {
					reason := c.revertReason(ctx, tx, from, receipt.BlockNumber)
					return nil, errs.TransactionReverted(reason, fmt.Errorf("transaction %s reverted", tx.Hash().Hex()))
				}
				return receipt, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, errs.TransactionTimeout(fmt.Errorf("transaction %s not confirmed: %w", tx.Hash().Hex(), ctx.Err()))
		case <-ticker.C:
		}
	}
}

// hasConfirmations 检查回执是否达到配置的确认数
func (c *Client) hasConfirmations(ctx context.Context, receipt *types.Receipt) (bool, error) {
	if c.confirmations <= 1 {
		return true, nil
	}

	latest, err := c.GetLatestBlock(ctx)
	if err != nil {
		return false, err
	}

	return latest+1 >= receipt.BlockNumber.Uint64()+uint64(c.confirmations), nil
}

// revertReason 通过在回滚区块重放调用提取回滚原因
func (c *Client) revertReason(ctx context.Context, tx *types.Transaction, from common.Address, blockNum *big.Int) string {
	msg := ethereum.CallMsg{
		From:     from,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}

	_, err := c.eth.CallContract(ctx, msg, blockNum)
	if err == nil {
		return ""
	}

	classified := errs.Classify(err)
	return classified.Reason
}

// Close 关闭客户端
func (c *Client) Close() {
	c.eth.Close()
}
