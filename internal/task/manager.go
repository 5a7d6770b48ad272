package task

import (
	"github.com/go-co-op/gocron/v2"

	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/config"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/reader"
)

// Manager 定时任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	config    *config.Config
	client    *chain.Client
	projects  *reader.ProjectReader
}

// NewManager 创建任务管理器
func NewManager(cfg *config.Config, client *chain.Client, projects *reader.ProjectReader) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Manager{
		scheduler: s,
		config:    cfg,
		client:    client,
		projects:  projects,
	}, nil
}

// Start 注册并启动所有任务
func (m *Manager) Start() {
	m.registerJob(NewProjectRefreshJob(m.config, m.projects))
	m.registerJob(NewChainHealthJob(m.config, m.client))

	m.scheduler.Start()
	logger.Info("Task manager started")
}

// Job 定时任务
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// registerJob 注册任务，同一任务不并发执行
func (m *Manager) registerJob(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
