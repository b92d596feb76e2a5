package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"techmart/internal/api/dto"
	"techmart/internal/model"
	"techmart/internal/service"
)

type UserController struct {
	userSvc *service.UserService
}

func NewUserController(userSvc *service.UserService) *UserController {
	return &UserController{userSvc: userSvc}
}

// List 用户列表
// @Summary 管理端用户列表
// @Description 支持关键词、角色、启用状态过滤与排序分页
// @Tags User (用户管理)
// @Produce json
// @Security BearerAuth
// @Param search query string false "姓名/邮箱/手机号关键词"
// @Param role query string false "角色" Enums(USER,ORDER_STAFF,PRODUCT_STAFF,MANAGER)
// @Param isEnabled query bool false "启用状态"
// @Param sort query string false "排序键" Enums(name_asc,name_desc,date_asc,date_desc)
// @Param page query int false "页码" default(1)
// @Param pageSize query int false "每页数量" default(20)
// @Success 200 {object} listing.Result[model.User]
// @Router /api/admin/users [get]
func (c *UserController) List(ctx *gin.Context) {
	var req dto.AdminUserListReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	query := service.AdminUserQuery{
		Search:    req.Search,
		IsEnabled: req.IsEnabled,
		SortKey:   req.SortKey,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.Role != "" {
		role := model.Role(req.Role)
		query.Role = &role
	}

	result, err := c.userSvc.List(ctx.Request.Context(), query)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Get 用户详情
// @Summary 用户详情
// @Tags User (用户管理)
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} dto.UserResp
// @Failure 404 {object} map[string]string "用户不存在"
// @Router /api/admin/users/{id} [get]
func (c *UserController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	user, err := c.userSvc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toUserResp(user))
}

// UpdateStatus 启用/禁用账号
// @Summary 启用/禁用账号
// @Tags User (用户管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body dto.UpdateUserStatusReq true "启用状态"
// @Success 200 {object} dto.UserResp
// @Failure 404 {object} map[string]string "用户不存在"
// @Router /api/admin/users/{id}/status [put]
func (c *UserController) UpdateStatus(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserStatusReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	user, err := c.userSvc.UpdateStatus(ctx.Request.Context(), id, *req.IsEnabled)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toUserResp(user))
}

// UpdateRole 调整角色
// @Summary 调整账号角色
// @Tags User (用户管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body dto.UpdateUserRoleReq true "目标角色"
// @Success 200 {object} dto.UserResp
// @Failure 400 {object} map[string]string "未知角色"
// @Router /api/admin/users/{id}/role [put]
func (c *UserController) UpdateRole(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRoleReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	user, err := c.userSvc.UpdateRole(ctx.Request.Context(), id, model.Role(req.Role))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toUserResp(user))
}
