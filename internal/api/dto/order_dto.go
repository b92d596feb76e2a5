package dto

// ==================== 请求 DTO ====================

// OrderItemReq 下单行
type OrderItemReq struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gte=1"`
}

// CreateOrderReq 下单请求
type CreateOrderReq struct {
	ShippingAddress map[string]interface{} `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required,oneof=COD CARD BANK_TRANSFER"`
	Items           []OrderItemReq         `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusReq 更新订单状态请求
type UpdateOrderStatusReq struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// UpdatePaymentStatusReq 更新支付状态请求
type UpdatePaymentStatusReq struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

// ReturnItemsReq 订单行退货请求
type ReturnItemsReq struct {
	ItemIDs []int64 `json:"itemIds" binding:"required,min=1"`
	Note    string  `json:"note"`
}

// AdminOrderListReq 管理端订单列表查询
type AdminOrderListReq struct {
	Status        string `form:"status"`
	PaymentStatus string `form:"paymentStatus"`
	Keyword       string `form:"keyword"`
	Page          int    `form:"page"`
	PageSize      int    `form:"pageSize"`
}
