package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/panjf2000/ants/v2"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/logic"
)

// EventMonitor 合约事件监控器。
// 本进程外的写入（其他客户端、直接合约调用）不会经过流程编排，
// 监控器扫描链上日志补齐留档并回收受影响的缓存。
type EventMonitor struct {
	client   *chain.Client
	contract *chain.Contract
	store    *cache.Store
	activity *logic.ActivityLogic

	startBlock   int64
	pollInterval time.Duration
	batchSize    int64

	mu         sync.Mutex
	nextBlock  int64
	retryCount int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewEventMonitor 创建事件监控器
func NewEventMonitor(client *chain.Client, contract *chain.Contract, store *cache.Store, activity *logic.ActivityLogic, startBlock int64, pollInterval time.Duration) *EventMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventMonitor{
		client:       client,
		contract:     contract,
		store:        store,
		activity:     activity,
		startBlock:   startBlock,
		pollInterval: pollInterval,
		batchSize:    500,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start 启动监控
func (m *EventMonitor) Start() error {
	current, err := m.client.GetLatestBlock(m.ctx)
	if err != nil {
		return err
	}

	from := m.startBlock
	if last, err := m.activity.MaxRecordedBlock(); err == nil && last >= from {
		from = last + 1
	}

	m.mu.Lock()
	m.nextBlock = from
	m.mu.Unlock()

	logger.Info("Starting event monitor for contract %s from block %d (chain head %d)",
		m.contract.GetAddress().Hex(), from, current)

	go m.loop()
	return nil
}

// Stop 停止监控
func (m *EventMonitor) Stop() {
	logger.Info("Stopping event monitor")
	m.cancel()
}

// loop 监控循环
func (m *EventMonitor) loop() {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Event monitor stopped")
			return
		case <-ticker.C:
			if err := m.scan(); err != nil {
				m.handleError(err)
				continue
			}
			m.mu.Lock()
			m.retryCount = 0
			m.mu.Unlock()
		}
	}
}

// scan 扫描从上次处理位置到链头的日志
func (m *EventMonitor) scan() error {
	head, err := m.client.GetLatestBlock(m.ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	from := m.nextBlock
	m.mu.Unlock()

	to := int64(head)
	if from > to {
		return nil
	}

	for batchFrom := from; batchFrom <= to; batchFrom += m.batchSize {
		batchTo := batchFrom + m.batchSize - 1
		if batchTo > to {
			batchTo = to
		}

		if err := m.processBatch(batchFrom, batchTo); err != nil {
			return err
		}

		m.mu.Lock()
		m.nextBlock = batchTo + 1
		m.mu.Unlock()
	}

	return nil
}

// processBatch 处理一批区块的日志。
// 日志按交易分组后并发处理，组内保持日志顺序。
func (m *EventMonitor) processBatch(fromBlock, toBlock int64) error {
	logs, err := m.client.GetLogs(m.ctx, []common.Address{m.contract.GetAddress()}, fromBlock, toBlock)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		return nil
	}

	logger.Debug("Found %d logs in blocks %d-%d", len(logs), fromBlock, toBlock)

	groups := groupLogsByTx(logs)

	pool, err := ants.NewPool(len(groups))
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, txLogs := range groups {
		txLogs := txLogs
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			m.processTxLogs(txLogs)
		}); err != nil {
			wg.Done()
			logger.Error("Failed to submit log group to pool: %v", err)
		}
	}
	wg.Wait()

	return nil
}

// processTxLogs 处理一笔交易的全部日志
func (m *EventMonitor) processTxLogs(logs []types.Log) {
	receipt := &chain.Receipt{}
	for _, log := range logs {
		event, ok := m.contract.ParseEvent(log)
		if !ok {
			continue
		}
		receipt.Events = append(receipt.Events, event)
		m.invalidateFor(event)
	}

	if len(receipt.Events) > 0 {
		receipt.TxHash = receipt.Events[0].TxHash
		receipt.BlockNumber = receipt.Events[0].BlockNumber
		m.activity.RecordReceipt(receipt)
	}
}

// invalidateFor 按事件回收缓存，让下一次读取看到新状态
func (m *EventMonitor) invalidateFor(event chain.Event) {
	switch event.Name {
	case "DonorRegistered":
		account := event.AddressArg("account").Hex()
		m.store.Invalidate(cache.KindDonor, account)
	case "DonationReceived":
		donor := event.AddressArg("donor").Hex()
		m.store.Invalidate(cache.KindDonor, donor)
		m.store.Invalidate(cache.KindBalance, donor)
		m.store.Invalidate(cache.KindProject, event.StringArg("projectId"))
		m.store.Invalidate(cache.KindProjectList, cache.Wildcard)
		m.store.Invalidate(cache.KindDonationList, cache.Wildcard)
	case "ApprovalVoteCast", "CancellationVoteCast":
		voter := event.AddressArg("voter").Hex()
		m.store.Invalidate(cache.KindDonor, voter)
		m.store.Invalidate(cache.KindBalance, voter)
		m.store.Invalidate(cache.KindProject, event.StringArg("projectId"))
		m.store.Invalidate(cache.KindProjectList, cache.Wildcard)
	case "ProjectCreated", "ProjectApproved", "ProjectCancelled":
		m.store.Invalidate(cache.KindProject, event.StringArg("projectId"))
		m.store.Invalidate(cache.KindProjectList, cache.Wildcard)
	case "PurchaseRequested":
		m.store.Invalidate(cache.KindPurchase, event.StringArg("purchaseId"))
		m.store.Invalidate(cache.KindPurchaseList, event.StringArg("projectId"))
		m.store.Invalidate(cache.KindProject, event.StringArg("projectId"))
		m.store.Invalidate(cache.KindProjectList, cache.Wildcard)
	case "PurchaseValidated":
		m.store.Invalidate(cache.KindPurchase, event.StringArg("purchaseId"))
		m.store.Invalidate(cache.KindPurchaseList, event.StringArg("projectId"))
		m.store.Invalidate(cache.KindProject, event.StringArg("projectId"))
		m.store.Invalidate(cache.KindProjectList, cache.Wildcard)
		m.store.Invalidate(cache.KindProvider, cache.Wildcard)
	}
}

// handleError 记录错误并计数，网络抖动时下个周期重试
func (m *EventMonitor) handleError(err error) {
	m.mu.Lock()
	m.retryCount++
	count := m.retryCount
	m.mu.Unlock()

	logger.Error("Event monitor scan failed (attempt %d): %v", count, err)
}

// Status 监控状态
func (m *EventMonitor) Status() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]interface{}{
		"next_block":  m.nextBlock,
		"retry_count": m.retryCount,
		"contract":    m.contract.GetAddress().Hex(),
	}
}

// groupLogsByTx 按交易哈希分组日志
func groupLogsByTx(logs []types.Log) map[common.Hash][]types.Log {
	groups := make(map[common.Hash][]types.Log)
	for _, log := range logs {
		groups[log.TxHash] = append(groups[log.TxHash], log)
	}
	return groups
}
