package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"techmart/internal/model"
)

// ==================== 接口定义 ====================

// PaidOrderRow 营收聚合用的精简行
type PaidOrderRow struct {
	TotalAmount float64
	CreatedAt   time.Time
}

// StatsRepository 统计仓储接口
// 聚合查询保持数据库无关（sqlite 测试、postgres 生产），按月聚合在 Go 侧完成
type StatsRepository interface {
	CountProducts(ctx context.Context) (total, active, featured, outOfStock int64, err error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
	SumQuantities(ctx context.Context) (sold, inStock int64, err error)

	CountUsersByRole(ctx context.Context) (map[string]int64, error)
	CountUsersByEnabled(ctx context.Context) (enabled, disabled int64, err error)

	CountOrdersByStatus(ctx context.Context) (map[string]int64, error)
	CountOrdersSince(ctx context.Context, since time.Time) (int64, error)
	ListPaidOrders(ctx context.Context) ([]PaidOrderRow, error)

	// 低库存商品列表（库存预警任务用）
	ListLowStockProducts(ctx context.Context, threshold int) ([]model.Product, error)

	// 快照读写
	SaveSnapshot(ctx context.Context, snapshot *model.StatsSnapshot) error
	GetSnapshot(ctx context.Context, section string) (*model.StatsSnapshot, error)
}

// ==================== 仓储实现 ====================

type statsRepo struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计仓储
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) CountProducts(ctx context.Context) (total, active, featured, outOfStock int64, err error) {
	m := r.db.WithContext(ctx).Model(&model.Product{})
	if err = m.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return
	}
	if err = m.Session(&gorm.Session{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return
	}
	if err = m.Session(&gorm.Session{}).Where("is_featured = ?", true).Count(&featured).Error; err != nil {
		return
	}
	err = m.Session(&gorm.Session{}).Where("quantity_in_stock <= 0").Count(&outOfStock).Error
	return
}

func (r *statsRepo) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("quantity_in_stock > 0 AND quantity_in_stock <= ?", threshold).
		Count(&count).Error
	return count, err
}

func (r *statsRepo) SumQuantities(ctx context.Context) (sold, inStock int64, err error) {
	type sums struct {
		Sold    int64
		InStock int64
	}
	var s sums
	err = r.db.WithContext(ctx).
		Model(&model.Product{}).
		Select("COALESCE(SUM(quantity_sold),0) AS sold, COALESCE(SUM(quantity_in_stock),0) AS in_stock").
		Scan(&s).Error
	return s.Sold, s.InStock, err
}

func (r *statsRepo) CountUsersByRole(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Role  string
		Count int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.Role] = rw.Count
	}
	return out, nil
}

func (r *statsRepo) CountUsersByEnabled(ctx context.Context) (enabled, disabled int64, err error) {
	m := r.db.WithContext(ctx).Model(&model.User{})
	if err = m.Session(&gorm.Session{}).Where("is_enabled = ?", true).Count(&enabled).Error; err != nil {
		return
	}
	err = m.Session(&gorm.Session{}).Where("is_enabled = ?", false).Count(&disabled).Error
	return
}

func (r *statsRepo) CountOrdersByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.Count
	}
	return out, nil
}

func (r *statsRepo) CountOrdersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *statsRepo) ListPaidOrders(ctx context.Context) ([]PaidOrderRow, error) {
	var rows []PaidOrderRow
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("total_amount, created_at").
		Where("payment_status = ?", model.PaymentStatusPaid).
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepo) ListLowStockProducts(ctx context.Context, threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND quantity_in_stock <= ?", true, threshold).
		Order("quantity_in_stock ASC").
		Find(&products).Error
	return products, err
}

func (r *statsRepo) SaveSnapshot(ctx context.Context, snapshot *model.StatsSnapshot) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "section"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "generated_at"}),
	}).Create(snapshot).Error
}

func (r *statsRepo) GetSnapshot(ctx context.Context, section string) (*model.StatsSnapshot, error) {
	var snapshot model.StatsSnapshot
	err := r.db.WithContext(ctx).
		Where("section = ?", section).
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
