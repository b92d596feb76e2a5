package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"techmart/internal/model"
	"techmart/internal/repository"
)

// ==================== OrderService ====================

// OrderService 订单生命周期
// 状态迁移表在这里做权威校验，前端的下拉限制只是预过滤
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	publisher   *OrderEventPublisher
	notifier    *WebhookNotifier
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	publisher *OrderEventPublisher,
	notifier *WebhookNotifier,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		notifier:    notifier,
	}
}

// ==================== 下单 ====================

// OrderItemInput 下单行
type OrderItemInput struct {
	ProductID int64
	Quantity  int
}

// Create 门店下单：校验库存 → 扣减库存并生成 PENDING 订单（同事务）
func (s *OrderService) Create(
	ctx context.Context,
	user *model.User,
	address map[string]interface{},
	paymentMethod string,
	inputs []OrderItemInput,
) (*model.Order, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: 订单不能为空", ErrInvalid)
	}

	var (
		items    []model.OrderItem
		total    float64
		products = make(map[int64]*model.Product, len(inputs))
		needed   = make(map[int64]int, len(inputs))
	)
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: 数量必须大于 0", ErrInvalid)
		}
		product, ok := products[in.ProductID]
		if !ok {
			var err error
			product, err = s.productRepo.GetByID(ctx, in.ProductID)
			if err != nil {
				return nil, fmt.Errorf("%w: 商品 %d 不存在", ErrInvalid, in.ProductID)
			}
			if !product.IsActive {
				return nil, fmt.Errorf("%w: 商品已下架: %s", ErrInvalid, product.Name)
			}
			products[in.ProductID] = product
		}
		// 同一商品出现在多行时按合计数量校验
		needed[in.ProductID] += in.Quantity
		if needed[in.ProductID] > product.QuantityInStock {
			return nil, fmt.Errorf("%w: 库存不足: %s（剩余 %d）", ErrConflict, product.Name, product.QuantityInStock)
		}
		unitPrice := product.FinalPrice()
		total += unitPrice * float64(in.Quantity)
		items = append(items, model.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			SKU:         product.SKU,
			UnitPrice:   unitPrice,
			Quantity:    in.Quantity,
			Status:      model.ItemStatusPending,
		})
	}

	order := &model.Order{
		OrderNumber:     newOrderNumber(),
		UserID:          user.ID,
		UserName:        user.Name,
		UserEmail:       user.Email,
		ShippingAddress: datatypes.JSONMap(address),
		TotalAmount:     total,
		Status:          model.OrderStatusPending,
		PaymentStatus:   initialPaymentStatus(paymentMethod),
		PaymentMethod:   paymentMethod,
		Items:           items,
	}

	// 扣减带下限保护，并发下单在这里被回滚而不是把库存扣负
	err := s.orderRepo.Transaction(ctx, func(txOrders repository.OrderRepository, txProducts repository.ProductRepository) error {
		for productID, quantity := range needed {
			if err := txProducts.DeductStock(ctx, productID, quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return fmt.Errorf("%w: 库存不足: %s", ErrConflict, products[productID].Name)
				}
				return err
			}
		}
		return txOrders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishCreated(s.toEvent(order, "", order.Status))
	return order, nil
}

// newOrderNumber 订单号：日期 + uuid 片段
func newOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%s",
		time.Now().Format("20060102"),
		strings.ToUpper(uuid.NewString()[:8]))
}

// initialPaymentStatus 货到付款走 COD_PENDING，其余等待支付
func initialPaymentStatus(method string) model.PaymentStatus {
	if strings.EqualFold(method, "COD") {
		return model.PaymentStatusCODPending
	}
	return model.PaymentStatusPending
}

// ==================== 查询 ====================

// GetByID 订单详情
func (s *OrderService) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// List 管理端订单列表
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.List(ctx, filter)
}

// StatusOptions 当前订单允许迁移到的状态集合
func (s *OrderService) StatusOptions(ctx context.Context, id int64) ([]model.OrderStatus, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.NextValidOrderStatuses(order.Status), nil
}

// ==================== 状态迁移 ====================

// UpdateStatus 更新订单状态
// 非法迁移返回 ErrConflict；成功后追加历史、同步行状态、发事件
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, to model.OrderStatus, note string, changedBy int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if !model.CanTransitionOrderStatus(from, to) {
		return nil, fmt.Errorf("%w: 订单状态不能从 %s 迁移到 %s（允许: %v）",
			ErrConflict, from, to, model.NextValidOrderStatuses(from))
	}

	err = s.orderRepo.Transaction(ctx, func(txOrders repository.OrderRepository, txProducts repository.ProductRepository) error {
		if err := txOrders.UpdateStatus(ctx, id, to); err != nil {
			return err
		}
		if err := txOrders.AppendHistory(ctx, &model.OrderStatusHistory{
			OrderID:    id,
			FromStatus: from,
			ToStatus:   to,
			Note:       note,
			ChangedBy:  changedBy,
		}); err != nil {
			return err
		}
		// 整单状态推进时，未终结的订单行跟随
		if itemStatus, follow := itemStatusFor(to); follow {
			for _, item := range order.Items {
				if item.Status == model.ItemStatusReturned || item.Status == model.ItemStatusCanceled {
					continue
				}
				if err := txOrders.UpdateItemStatus(ctx, item.ID, itemStatus); err != nil {
					return err
				}
			}
		}
		// 取消时回补库存，与状态变更同事务
		if to == model.OrderStatusCanceled {
			for _, item := range order.Items {
				if err := txProducts.AdjustStock(ctx, item.ProductID, item.Quantity, -item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterStatusChange(order, from, to)
	return s.orderRepo.GetByID(ctx, id)
}

// itemStatusFor 整单状态对应的行状态
func itemStatusFor(status model.OrderStatus) (model.OrderItemStatus, bool) {
	switch status {
	case model.OrderStatusConfirmed:
		return model.ItemStatusConfirmed, true
	case model.OrderStatusProcessing:
		return model.ItemStatusProcessing, true
	case model.OrderStatusShipping:
		return model.ItemStatusShipping, true
	case model.OrderStatusDelivered:
		return model.ItemStatusDelivered, true
	case model.OrderStatusCanceled:
		return model.ItemStatusCanceled, true
	case model.OrderStatusFullyReturned:
		return model.ItemStatusReturned, true
	}
	return "", false
}

// UpdatePaymentStatus 更新支付状态
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id int64, to model.PaymentStatus) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := order.PaymentStatus
	if from == to {
		return order, nil
	}
	if !model.CanTransitionPaymentStatus(from, to) {
		return nil, fmt.Errorf("%w: 支付状态不能从 %s 迁移到 %s", ErrConflict, from, to)
	}
	if err := s.orderRepo.UpdatePaymentStatus(ctx, id, to); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(ctx, id)
}

// ==================== 退货 ====================

// ReturnItems 部分/全部退货
// 仅在 DELIVERED / PARTIALLY_RETURNED 下允许；订单状态按行状态推导
func (s *OrderService) ReturnItems(ctx context.Context, orderID int64, itemIDs []int64, note string, changedBy int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusDelivered && order.Status != model.OrderStatusPartiallyReturned {
		return nil, fmt.Errorf("%w: 订单状态 %s 不允许退货", ErrConflict, order.Status)
	}
	if len(itemIDs) == 0 {
		return nil, fmt.Errorf("%w: 未指定退货行", ErrInvalid)
	}

	target := make(map[int64]*model.OrderItem, len(itemIDs))
	for i := range order.Items {
		item := &order.Items[i]
		for _, id := range itemIDs {
			if item.ID == id {
				target[id] = item
			}
		}
	}
	if len(target) != len(itemIDs) {
		return nil, fmt.Errorf("%w: 存在不属于该订单的行", ErrInvalid)
	}

	from := order.Status
	err = s.orderRepo.Transaction(ctx, func(txOrders repository.OrderRepository, txProducts repository.ProductRepository) error {
		for _, item := range target {
			if item.Status == model.ItemStatusReturned {
				continue
			}
			if err := txOrders.UpdateItemStatus(ctx, item.ID, model.ItemStatusReturned); err != nil {
				return err
			}
			// 退货行回补库存，与行状态同事务
			if err := txProducts.AdjustStock(ctx, item.ProductID, item.Quantity, -item.Quantity); err != nil {
				return err
			}
			item.Status = model.ItemStatusReturned
		}

		// 推导整单状态：全退 FULLY_RETURNED，否则 PARTIALLY_RETURNED
		to := model.OrderStatusFullyReturned
		for _, item := range order.Items {
			if item.Status != model.ItemStatusReturned && item.Status != model.ItemStatusCanceled {
				to = model.OrderStatusPartiallyReturned
				break
			}
		}
		if to == from {
			return nil
		}
		if err := txOrders.UpdateStatus(ctx, orderID, to); err != nil {
			return err
		}
		return txOrders.AppendHistory(ctx, &model.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: from,
			ToStatus:   to,
			Note:       note,
			ChangedBy:  changedBy,
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if updated.Status != from {
		s.afterStatusChange(updated, from, updated.Status)
	}
	return updated, nil
}

// ==================== 事件 ====================

func (s *OrderService) afterStatusChange(order *model.Order, from, to model.OrderStatus) {
	evt := s.toEvent(order, string(from), to)
	s.publisher.PublishStatusChanged(evt)

	// webhook 异步发送，不阻塞请求
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		s.notifier.Notify(ctx, "order.status.changed", evt)
	}()
}

func (s *OrderService) toEvent(order *model.Order, from string, to model.OrderStatus) OrderEvent {
	return OrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		FromStatus:  from,
		ToStatus:    string(to),
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now(),
	}
}
