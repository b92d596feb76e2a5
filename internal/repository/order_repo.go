package repository

import (
	"context"

	"gorm.io/gorm"

	"techmart/internal/model"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单查询条件
type OrderFilter struct {
	UserID        int64
	Status        model.OrderStatus
	PaymentStatus model.PaymentStatus
	Keyword       string // 匹配订单号/买家名/邮箱
	Page          int
	PageSize      int
}

// ==================== 接口定义 ====================

// OrderRepository 订单仓储接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)

	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error
	UpdateItemStatus(ctx context.Context, itemID int64, status model.OrderItemStatus) error
	AppendHistory(ctx context.Context, history *model.OrderStatusHistory) error

	// Transaction 订单与库存共用一个事务，任一步失败整体回滚
	Transaction(ctx context.Context, fn func(txOrders OrderRepository, txProducts ProductRepository) error) error
}

// ==================== 仓储实现 ====================

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where(
			"order_number LIKE ? OR user_name LIKE ? OR user_email LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	var orders []model.Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *orderRepo) UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
}

func (r *orderRepo) UpdateItemStatus(ctx context.Context, itemID int64, status model.OrderItemStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("id = ?", itemID).
		Update("status", status).Error
}

func (r *orderRepo) AppendHistory(ctx context.Context, history *model.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

func (r *orderRepo) Transaction(ctx context.Context, fn func(txOrders OrderRepository, txProducts ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&orderRepo{db: tx}, &productRepo{db: tx})
	})
}
