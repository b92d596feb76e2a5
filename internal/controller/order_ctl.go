package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"techmart/internal/api/dto"
	"techmart/internal/middleware"
	"techmart/internal/model"
	"techmart/internal/repository"
	"techmart/internal/service"
)

type OrderController struct {
	orderSvc *service.OrderService
	userSvc  *service.UserService
}

func NewOrderController(orderSvc *service.OrderService, userSvc *service.UserService) *OrderController {
	return &OrderController{orderSvc: orderSvc, userSvc: userSvc}
}

// Create 下单
// @Summary 下单
// @Description 校验库存，创建 PENDING 订单并扣减库存
// @Tags Order (订单管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOrderReq true "订单参数"
// @Success 200 {object} model.Order
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 409 {object} map[string]string "库存不足"
// @Router /api/orders [post]
func (c *OrderController) Create(ctx *gin.Context) {
	claims := middleware.ClaimsFrom(ctx)

	var req dto.CreateOrderReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	user, err := c.userSvc.GetByID(ctx.Request.Context(), claims.UserID)
	if err != nil {
		writeError(ctx, err)
		return
	}

	inputs := make([]service.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		inputs = append(inputs, service.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := c.orderSvc.Create(ctx.Request.Context(), user, req.ShippingAddress, req.PaymentMethod, inputs)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// MyOrders 我的订单
// @Summary 我的订单列表
// @Tags Order (订单管理)
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param pageSize query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{} "{"items": [], "total": 0}"
// @Router /api/orders/my [get]
func (c *OrderController) MyOrders(ctx *gin.Context) {
	claims := middleware.ClaimsFrom(ctx)

	var req dto.AdminOrderListReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	orders, total, err := c.orderSvc.List(ctx.Request.Context(), repository.OrderFilter{
		UserID:   claims.UserID,
		Status:   model.OrderStatus(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"items": orders, "total": total})
}

// Get 订单详情
// @Summary 订单详情
// @Description 本人或订单员可见，带订单行与状态历史
// @Tags Order (订单管理)
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} model.Order
// @Failure 403 {object} map[string]string "无权查看"
// @Failure 404 {object} map[string]string "订单不存在"
// @Router /api/orders/{id} [get]
func (c *OrderController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	order, err := c.orderSvc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}

	claims := middleware.ClaimsFrom(ctx)
	role := model.Role(claims.Role)
	if order.UserID != claims.UserID && role != model.RoleOrderStaff && role != model.RoleManager {
		ctx.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "无权查看该订单"})
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// AdminList 管理端订单列表
// @Summary 管理端订单列表
// @Description 支持状态、支付状态、关键词（单号/姓名/邮箱）过滤
// @Tags Order (订单管理)
// @Produce json
// @Security BearerAuth
// @Param status query string false "订单状态"
// @Param paymentStatus query string false "支付状态"
// @Param keyword query string false "关键词"
// @Param page query int false "页码" default(1)
// @Param pageSize query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{} "{"items": [], "total": 0}"
// @Router /api/admin/orders [get]
func (c *OrderController) AdminList(ctx *gin.Context) {
	var req dto.AdminOrderListReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	orders, total, err := c.orderSvc.List(ctx.Request.Context(), repository.OrderFilter{
		Status:        model.OrderStatus(req.Status),
		PaymentStatus: model.PaymentStatus(req.PaymentStatus),
		Keyword:       req.Keyword,
		Page:          req.Page,
		PageSize:      req.PageSize,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"items": orders, "total": total})
}

// StatusOptions 可用的下一状态
// @Summary 订单当前可流转的状态集合
// @Tags Order (订单管理)
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {array} string
// @Failure 404 {object} map[string]string "订单不存在"
// @Router /api/admin/orders/{id}/status-options [get]
func (c *OrderController) StatusOptions(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	options, err := c.orderSvc.StatusOptions(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, options)
}

// UpdateStatus 更新订单状态
// @Summary 更新订单状态
// @Description 只允许状态机定义内的流转，CANCELED 自动回补库存
// @Tags Order (订单管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Param request body dto.UpdateOrderStatusReq true "目标状态"
// @Success 200 {object} model.Order
// @Failure 409 {object} map[string]string "非法流转"
// @Router /api/admin/orders/{id}/status [put]
func (c *OrderController) UpdateStatus(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	claims := middleware.ClaimsFrom(ctx)
	order, err := c.orderSvc.UpdateStatus(ctx.Request.Context(), id,
		model.OrderStatus(req.Status), req.Note, claims.UserID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// UpdatePaymentStatus 更新支付状态
// @Summary 更新支付状态
// @Tags Order (订单管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Param request body dto.UpdatePaymentStatusReq true "目标支付状态"
// @Success 200 {object} model.Order
// @Failure 409 {object} map[string]string "非法流转"
// @Router /api/admin/orders/{id}/payment-status [put]
func (c *OrderController) UpdatePaymentStatus(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdatePaymentStatusReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	order, err := c.orderSvc.UpdatePaymentStatus(ctx.Request.Context(), id, model.PaymentStatus(req.PaymentStatus))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// ReturnItems 订单行退货
// @Summary 订单行退货
// @Description 仅 DELIVERED / PARTIALLY_RETURNED 订单可退，整单退完流转为 FULLY_RETURNED
// @Tags Order (订单管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Param request body dto.ReturnItemsReq true "退货订单行"
// @Success 200 {object} model.Order
// @Failure 409 {object} map[string]string "订单状态不允许退货"
// @Router /api/admin/orders/{id}/returns [post]
func (c *OrderController) ReturnItems(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.ReturnItemsReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	claims := middleware.ClaimsFrom(ctx)
	order, err := c.orderSvc.ReturnItems(ctx.Request.Context(), id, req.ItemIDs, req.Note, claims.UserID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}
