package task

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/natar10/uva-ong-block/internal/config"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/reader"
)

// ProjectRefreshJob 项目列表预热任务。
// 列表页是访问最多的读取，定期重建缓存让过期窗口内的请求都命中。
type ProjectRefreshJob struct {
	config   *config.Config
	projects *reader.ProjectReader
}

// NewProjectRefreshJob 创建项目列表预热任务
func NewProjectRefreshJob(cfg *config.Config, projects *reader.ProjectReader) *ProjectRefreshJob {
	return &ProjectRefreshJob{
		config:   cfg,
		projects: projects,
	}
}

// GetName 获取任务名称
func (j *ProjectRefreshJob) GetName() string {
	return "project_list_refresh"
}

// GetSchedule 获取调度配置
func (j *ProjectRefreshJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *ProjectRefreshJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	list, err := j.projects.List(ctx)
	if err != nil {
		logger.Error("Project list refresh failed: %v", err)
		return
	}

	logger.Debug("Project list refreshed, %d projects, total raised %s",
		list.Stats.TotalProjects, list.Stats.TotalRaised)
}
