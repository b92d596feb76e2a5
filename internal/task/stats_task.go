package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"techmart/internal/service"
	"techmart/pkg/logger"
)

// ==================== StatsRefreshTask 统计快照刷新任务 ====================

// StatsRefreshTask 周期性重算仪表盘统计快照
type StatsRefreshTask struct {
	statsService *service.StatsService
	cron         *cron.Cron
	schedule     string
}

// NewStatsRefreshTask 创建统计快照刷新任务
func NewStatsRefreshTask(statsService *service.StatsService) *StatsRefreshTask {
	return &StatsRefreshTask{
		statsService: statsService,
		cron:         cron.New(cron.WithSeconds()),
		schedule:     "0 */10 * * * *", // 每10分钟
	}
}

// Start 启动定时任务，启动时先同步刷新一次
func (t *StatsRefreshTask) Start() {
	_, err := t.cron.AddFunc(t.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		t.refreshJob(ctx)
	})
	if err != nil {
		logger.L.Fatal("统计快照任务注册失败", zap.Error(err))
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		t.refreshJob(ctx)
	}()

	t.cron.Start()
	logger.L.Info("统计快照刷新任务已启动", zap.String("schedule", t.schedule))
}

// Stop 停止定时任务
func (t *StatsRefreshTask) Stop() {
	t.cron.Stop()
	logger.L.Info("统计快照刷新任务已停止")
}

func (t *StatsRefreshTask) refreshJob(ctx context.Context) {
	start := time.Now()
	if err := t.statsService.RefreshSnapshots(ctx); err != nil {
		logger.L.Error("统计快照刷新失败", zap.Error(err))
		return
	}
	logger.L.Info("统计快照刷新完成", zap.Duration("cost", time.Since(start)))
}
