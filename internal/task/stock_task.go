package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"techmart/internal/service"
	"techmart/pkg/logger"
)

// ==================== StockAlertTask 库存预警任务 ====================

// StockAlertTask 定时巡检低库存商品并推送预警
type StockAlertTask struct {
	statsService *service.StatsService
	notifier     *service.WebhookNotifier
	cron         *cron.Cron
	schedule     string
}

// NewStockAlertTask 创建库存预警任务
func NewStockAlertTask(statsService *service.StatsService, notifier *service.WebhookNotifier) *StockAlertTask {
	return &StockAlertTask{
		statsService: statsService,
		notifier:     notifier,
		cron:         cron.New(cron.WithSeconds()),
		schedule:     "0 0 * * * *", // 每小时
	}
}

// Start 启动定时任务
func (t *StockAlertTask) Start() {
	_, err := t.cron.AddFunc(t.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.alertJob(ctx)
	})
	if err != nil {
		logger.L.Fatal("库存预警任务注册失败", zap.Error(err))
	}

	t.cron.Start()
	logger.L.Info("库存预警任务已启动", zap.String("schedule", t.schedule))
}

// Stop 停止定时任务
func (t *StockAlertTask) Stop() {
	t.cron.Stop()
	logger.L.Info("库存预警任务已停止")
}

func (t *StockAlertTask) alertJob(ctx context.Context) {
	products, err := t.statsService.LowStockProducts(ctx)
	if err != nil {
		logger.L.Error("低库存巡检失败", zap.Error(err))
		return
	}
	if len(products) == 0 {
		return
	}

	items := make([]map[string]interface{}, 0, len(products))
	for _, p := range products {
		items = append(items, map[string]interface{}{
			"productId": p.ID,
			"name":      p.Name,
			"sku":       p.SKU,
			"stock":     p.QuantityInStock,
		})
	}
	logger.L.Warn("发现低库存商品", zap.Int("count", len(products)))

	if t.notifier != nil {
		t.notifier.Notify(ctx, "stock.low", map[string]interface{}{
			"count":    len(items),
			"products": items,
		})
	}
}
