package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 订单状态 ====================

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending           OrderStatus = "PENDING"
	OrderStatusConfirmed         OrderStatus = "CONFIRMED"
	OrderStatusProcessing        OrderStatus = "PROCESSING"
	OrderStatusShipping          OrderStatus = "SHIPPING"
	OrderStatusDelivered         OrderStatus = "DELIVERED"
	OrderStatusPartiallyReturned OrderStatus = "PARTIALLY_RETURNED"
	OrderStatusFullyReturned     OrderStatus = "FULLY_RETURNED"
	OrderStatusCanceled          OrderStatus = "CANCELED"
)

// orderTransitions 订单状态迁移表，服务端权威校验
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:           {OrderStatusConfirmed, OrderStatusCanceled},
	OrderStatusConfirmed:         {OrderStatusProcessing, OrderStatusCanceled},
	OrderStatusProcessing:        {OrderStatusShipping, OrderStatusCanceled},
	OrderStatusShipping:          {OrderStatusDelivered, OrderStatusCanceled},
	OrderStatusDelivered:         {OrderStatusFullyReturned},
	OrderStatusPartiallyReturned: {OrderStatusFullyReturned},
	OrderStatusFullyReturned:     {},
	OrderStatusCanceled:          {},
}

// NextValidOrderStatuses 当前状态允许迁移到的状态集合
func NextValidOrderStatuses(current OrderStatus) []OrderStatus {
	next, ok := orderTransitions[current]
	if !ok {
		return nil
	}
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransitionOrderStatus 判断状态迁移是否合法
func CanTransitionOrderStatus(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ==================== 支付状态 ====================

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusPaid       PaymentStatus = "PAID"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
	PaymentStatusCODPending PaymentStatus = "COD_PENDING"
)

// paymentTransitions REFUNDED 仅可由 PAID 到达，且为终态
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusPaid, PaymentStatusFailed, PaymentStatusCODPending},
	PaymentStatusCODPending: {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusFailed:     {PaymentStatusPaid, PaymentStatusPending},
	PaymentStatusPaid:       {PaymentStatusRefunded},
	PaymentStatusRefunded:   {},
}

// CanTransitionPaymentStatus 判断支付状态迁移是否合法
func CanTransitionPaymentStatus(from, to PaymentStatus) bool {
	for _, s := range paymentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ==================== 订单行状态 ====================

// OrderItemStatus 订单行状态，是订单状态的子集加 RETURNED
type OrderItemStatus string

const (
	ItemStatusPending    OrderItemStatus = "PENDING"
	ItemStatusConfirmed  OrderItemStatus = "CONFIRMED"
	ItemStatusProcessing OrderItemStatus = "PROCESSING"
	ItemStatusShipping   OrderItemStatus = "SHIPPING"
	ItemStatusDelivered  OrderItemStatus = "DELIVERED"
	ItemStatusReturned   OrderItemStatus = "RETURNED"
	ItemStatusCanceled   OrderItemStatus = "CANCELED"
)

// ==================== 订单模型 ====================

// Order 订单
type Order struct {
	BaseModel
	OrderNumber string `gorm:"size:64;uniqueIndex;not null" json:"orderNumber"`

	// 买家冗余信息，下单时快照
	UserID    int64  `gorm:"index;not null" json:"userId"`
	UserName  string `gorm:"size:255" json:"userName"`
	UserEmail string `gorm:"size:255" json:"userEmail"`

	// 收货地址（jsonb）
	ShippingAddress datatypes.JSONMap `gorm:"type:jsonb" json:"shippingAddress"`

	TotalAmount float64 `gorm:"not null" json:"totalAmount"`

	Status        OrderStatus   `gorm:"size:32;index;default:PENDING" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:32;index;default:PENDING" json:"paymentStatus"`
	PaymentMethod string        `gorm:"size:64" json:"paymentMethod"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID" json:"statusHistory"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单行，保存下单时的商品快照
type OrderItem struct {
	BaseModel
	OrderID     int64           `gorm:"index;not null" json:"-"`
	ProductID   int64           `gorm:"index;not null" json:"productId"`
	ProductName string          `gorm:"size:255" json:"productName"`
	SKU         string          `gorm:"size:100" json:"sku"`
	UnitPrice   float64         `json:"unitPrice"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Status      OrderItemStatus `gorm:"size:32;default:PENDING" json:"status"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// OrderStatusHistory 状态变更日志，只追加
type OrderStatusHistory struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64       `gorm:"index;not null" json:"-"`
	FromStatus OrderStatus `gorm:"size:32" json:"fromStatus"`
	ToStatus   OrderStatus `gorm:"size:32" json:"toStatus"`
	Note       string      `gorm:"size:500" json:"note,omitempty"`
	ChangedBy  int64       `json:"changedBy"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_histories"
}
