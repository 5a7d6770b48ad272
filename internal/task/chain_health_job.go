package task

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-co-op/gocron/v2"

	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/config"
	"github.com/natar10/uva-ong-block/internal/logger"
)

// ChainHealthJob 链连接巡检任务，记录链头高度和合约部署状态
type ChainHealthJob struct {
	config *config.Config
	client *chain.Client
}

// NewChainHealthJob 创建链巡检任务
func NewChainHealthJob(cfg *config.Config, client *chain.Client) *ChainHealthJob {
	return &ChainHealthJob{
		config: cfg,
		client: client,
	}
}

// GetName 获取任务名称
func (j *ChainHealthJob) GetName() string {
	return "chain_health_check"
}

// GetSchedule 获取调度配置
func (j *ChainHealthJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *ChainHealthJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	head, err := j.client.GetLatestBlock(ctx)
	if err != nil {
		logger.Error("Chain health check failed, RPC unreachable: %v", err)
		return
	}

	deployed, err := j.client.IsDeployed(ctx, common.HexToAddress(j.config.Chain.ContractAddr))
	if err != nil {
		logger.Error("Chain health check failed, code lookup error: %v", err)
		return
	}
	if !deployed {
		logger.Warn("Donations contract has no code at %s, reads will return empty results", j.config.Chain.ContractAddr)
		return
	}

	logger.Debug("Chain healthy, head block %d, contract deployed", head)
}
