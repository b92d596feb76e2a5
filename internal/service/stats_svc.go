package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"techmart/internal/model"
	"techmart/internal/repository"
	"techmart/pkg/logger"
)

// 快照分区名
const (
	statsSectionRevenue  = "revenue"
	statsSectionProducts = "products"
	statsSectionUsers    = "users"
	statsSectionOrders   = "orders"
)

// ==================== StatsService ====================

// StatsService 仪表盘统计
// 读取优先走定时任务生成的快照，快照缺失时实时计算并回填
type StatsService struct {
	statsRepo         repository.StatsRepository
	lowStockThreshold int
}

// NewStatsService 创建统计服务
func NewStatsService(statsRepo repository.StatsRepository, lowStockThreshold int) *StatsService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 5
	}
	return &StatsService{statsRepo: statsRepo, lowStockThreshold: lowStockThreshold}
}

// ==================== 实时计算 ====================

// ComputeRevenue 营收统计：总营收、按月营收、已支付订单数
func (s *StatsService) ComputeRevenue(ctx context.Context) (*model.RevenueStats, error) {
	rows, err := s.statsRepo.ListPaidOrders(ctx)
	if err != nil {
		return nil, err
	}
	stats := &model.RevenueStats{
		RevenueByMonth: make(map[string]float64),
		PaidOrders:     int64(len(rows)),
	}
	for _, row := range rows {
		stats.TotalRevenue += row.TotalAmount
		stats.RevenueByMonth[row.CreatedAt.Format("2006-01")] += row.TotalAmount
	}
	return stats, nil
}

// ComputeProducts 商品统计
func (s *StatsService) ComputeProducts(ctx context.Context) (*model.ProductStats, error) {
	total, active, featured, outOfStock, err := s.statsRepo.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.statsRepo.CountLowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	sold, inStock, err := s.statsRepo.SumQuantities(ctx)
	if err != nil {
		return nil, err
	}
	return &model.ProductStats{
		Total:       total,
		Active:      active,
		Featured:    featured,
		OutOfStock:  outOfStock,
		LowStock:    lowStock,
		TotalSold:   sold,
		TotalInShop: inStock,
	}, nil
}

// ComputeUsers 用户统计
func (s *StatsService) ComputeUsers(ctx context.Context) (*model.UserStats, error) {
	byRole, err := s.statsRepo.CountUsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	enabled, disabled, err := s.statsRepo.CountUsersByEnabled(ctx)
	if err != nil {
		return nil, err
	}
	return &model.UserStats{
		Total:    enabled + disabled,
		Enabled:  enabled,
		Disabled: disabled,
		ByRole:   byRole,
	}, nil
}

// ComputeOrders 订单统计
func (s *StatsService) ComputeOrders(ctx context.Context) (*model.OrderStats, error) {
	byStatus, err := s.statsRepo.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range byStatus {
		total += c
	}
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.statsRepo.CountOrdersSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	return &model.OrderStats{Total: total, ByStatus: byStatus, Today: today}, nil
}

// ==================== 快照读取 ====================

// Revenue 营收统计（优先快照）
func (s *StatsService) Revenue(ctx context.Context) (*model.RevenueStats, error) {
	var out model.RevenueStats
	if s.loadSnapshot(ctx, statsSectionRevenue, &out) {
		return &out, nil
	}
	stats, err := s.ComputeRevenue(ctx)
	if err != nil {
		return nil, err
	}
	s.saveSnapshot(ctx, statsSectionRevenue, stats)
	return stats, nil
}

// Products 商品统计（优先快照）
func (s *StatsService) Products(ctx context.Context) (*model.ProductStats, error) {
	var out model.ProductStats
	if s.loadSnapshot(ctx, statsSectionProducts, &out) {
		return &out, nil
	}
	stats, err := s.ComputeProducts(ctx)
	if err != nil {
		return nil, err
	}
	s.saveSnapshot(ctx, statsSectionProducts, stats)
	return stats, nil
}

// Users 用户统计（优先快照）
func (s *StatsService) Users(ctx context.Context) (*model.UserStats, error) {
	var out model.UserStats
	if s.loadSnapshot(ctx, statsSectionUsers, &out) {
		return &out, nil
	}
	stats, err := s.ComputeUsers(ctx)
	if err != nil {
		return nil, err
	}
	s.saveSnapshot(ctx, statsSectionUsers, stats)
	return stats, nil
}

// Orders 订单统计（优先快照）
func (s *StatsService) Orders(ctx context.Context) (*model.OrderStats, error) {
	var out model.OrderStats
	if s.loadSnapshot(ctx, statsSectionOrders, &out) {
		return &out, nil
	}
	stats, err := s.ComputeOrders(ctx)
	if err != nil {
		return nil, err
	}
	s.saveSnapshot(ctx, statsSectionOrders, stats)
	return stats, nil
}

// RefreshSnapshots 重算并覆盖全部快照（定时任务入口）
func (s *StatsService) RefreshSnapshots(ctx context.Context) error {
	revenue, err := s.ComputeRevenue(ctx)
	if err != nil {
		return fmt.Errorf("计算营收统计失败: %w", err)
	}
	products, err := s.ComputeProducts(ctx)
	if err != nil {
		return fmt.Errorf("计算商品统计失败: %w", err)
	}
	users, err := s.ComputeUsers(ctx)
	if err != nil {
		return fmt.Errorf("计算用户统计失败: %w", err)
	}
	orders, err := s.ComputeOrders(ctx)
	if err != nil {
		return fmt.Errorf("计算订单统计失败: %w", err)
	}

	s.saveSnapshot(ctx, statsSectionRevenue, revenue)
	s.saveSnapshot(ctx, statsSectionProducts, products)
	s.saveSnapshot(ctx, statsSectionUsers, users)
	s.saveSnapshot(ctx, statsSectionOrders, orders)
	return nil
}

// LowStockProducts 低库存商品列表（库存预警任务用）
func (s *StatsService) LowStockProducts(ctx context.Context) ([]model.Product, error) {
	return s.statsRepo.ListLowStockProducts(ctx, s.lowStockThreshold)
}

// loadSnapshot 读取快照并反序列化，成功返回 true
func (s *StatsService) loadSnapshot(ctx context.Context, section string, out interface{}) bool {
	snapshot, err := s.statsRepo.GetSnapshot(ctx, section)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(snapshot.Payload, out); err != nil {
		logger.L.Warn("统计快照反序列化失败",
			zap.String("section", section), zap.Error(err))
		return false
	}
	return true
}

// saveSnapshot 序列化并覆盖快照，失败只记日志
func (s *StatsService) saveSnapshot(ctx context.Context, section string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.L.Warn("统计快照序列化失败",
			zap.String("section", section), zap.Error(err))
		return
	}
	snapshot := &model.StatsSnapshot{
		Section:     section,
		Payload:     data,
		GeneratedAt: time.Now(),
	}
	if err := s.statsRepo.SaveSnapshot(ctx, snapshot); err != nil {
		logger.L.Warn("统计快照写入失败",
			zap.String("section", section), zap.Error(err))
	}
}
