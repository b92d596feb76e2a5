package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"techmart/internal/service"
)

type StatsController struct {
	statsSvc *service.StatsService
}

func NewStatsController(statsSvc *service.StatsService) *StatsController {
	return &StatsController{statsSvc: statsSvc}
}

// Revenue 营收统计
// @Summary 营收统计
// @Description 总营收、按月营收、已支付订单数，读快照
// @Tags Statistics (报表统计)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.RevenueStats
// @Router /api/admin/statistics/revenue [get]
func (c *StatsController) Revenue(ctx *gin.Context) {
	stats, err := c.statsSvc.Revenue(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// Products 商品统计
// @Summary 商品统计
// @Tags Statistics (报表统计)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.ProductStats
// @Router /api/admin/statistics/products [get]
func (c *StatsController) Products(ctx *gin.Context) {
	stats, err := c.statsSvc.Products(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// Users 用户统计
// @Summary 用户统计
// @Tags Statistics (报表统计)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserStats
// @Router /api/admin/statistics/users [get]
func (c *StatsController) Users(ctx *gin.Context) {
	stats, err := c.statsSvc.Users(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// Orders 订单统计
// @Summary 订单统计
// @Tags Statistics (报表统计)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.OrderStats
// @Router /api/admin/statistics/orders [get]
func (c *StatsController) Orders(ctx *gin.Context) {
	stats, err := c.statsSvc.Orders(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}
