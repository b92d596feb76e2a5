package task

import (
	"techmart/internal/service"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台定时任务
// 管理范围：统计快照刷新、库存预警
type TaskManager struct {
	statsTask *StatsRefreshTask
	stockTask *StockAlertTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	StatsService *service.StatsService
	Notifier     *service.WebhookNotifier
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	StatsEnabled bool
	StockEnabled bool
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		StatsEnabled: true,
		StockEnabled: true,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m := &TaskManager{}
	if cfg.StatsEnabled {
		m.statsTask = NewStatsRefreshTask(deps.StatsService)
	}
	if cfg.StockEnabled {
		m.stockTask = NewStockAlertTask(deps.StatsService, deps.Notifier)
	}
	return m
}

// Start 启动全部任务
func (m *TaskManager) Start() {
	if m.statsTask != nil {
		m.statsTask.Start()
	}
	if m.stockTask != nil {
		m.stockTask.Start()
	}
}

// Stop 停止全部任务
func (m *TaskManager) Stop() {
	if m.statsTask != nil {
		m.statsTask.Stop()
	}
	if m.stockTask != nil {
		m.stockTask.Stop()
	}
}
