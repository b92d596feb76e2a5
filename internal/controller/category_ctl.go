package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"techmart/internal/api/dto"
	"techmart/internal/model"
	"techmart/internal/service"
)

type CategoryController struct {
	categorySvc *service.CategoryService
}

func NewCategoryController(categorySvc *service.CategoryService) *CategoryController {
	return &CategoryController{categorySvc: categorySvc}
}

// List 分类列表
// @Summary 分类列表
// @Description 返回全部分类，带根分类与有效规格字段数
// @Tags Category (分类管理)
// @Produce json
// @Success 200 {array} service.CategoryEnriched
// @Router /api/categories [get]
func (c *CategoryController) List(ctx *gin.Context) {
	categories, err := c.categorySvc.ListEnriched(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, categories)
}

// Get 分类详情
// @Summary 分类详情
// @Tags Category (分类管理)
// @Produce json
// @Param id path int true "分类ID"
// @Success 200 {object} model.Category
// @Failure 404 {object} map[string]string "分类不存在"
// @Router /api/categories/{id} [get]
func (c *CategoryController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	category, err := c.categorySvc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, category)
}

// ListChildren 子分类列表
// @Summary 子分类列表
// @Tags Category (分类管理)
// @Produce json
// @Param id path int true "父分类ID"
// @Success 200 {array} model.Category
// @Router /api/categories/parent/{id} [get]
func (c *CategoryController) ListChildren(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	children, err := c.categorySvc.ListChildren(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, children)
}

// GetRoot 根分类
// @Summary 沿父链解析根分类
// @Tags Category (分类管理)
// @Produce json
// @Param id path int true "分类ID"
// @Success 200 {object} model.Category
// @Failure 404 {object} map[string]string "分类不存在"
// @Router /api/categories/{id}/root [get]
func (c *CategoryController) GetRoot(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	root, err := c.categorySvc.GetRoot(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, root)
}

// EffectiveFields 有效规格字段
// @Summary 分类的有效规格字段
// @Description 自身定义非空用自身，否则继承根分类的定义
// @Tags Category (分类管理)
// @Produce json
// @Param id path int true "分类ID"
// @Success 200 {array} model.SpecificationField
// @Failure 404 {object} map[string]string "分类不存在"
// @Router /api/categories/{id}/specification-fields [get]
func (c *CategoryController) EffectiveFields(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	fields, err := c.categorySvc.EffectiveFields(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, fields)
}

// Create 创建分类
// @Summary 创建分类
// @Tags Category (分类管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCategoryReq true "分类参数"
// @Success 200 {object} model.Category
// @Failure 400 {object} map[string]string "参数错误"
// @Router /api/admin/categories [post]
func (c *CategoryController) Create(ctx *gin.Context) {
	var req dto.CreateCategoryReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	category := &model.Category{
		Name:                req.Name,
		Description:         req.Description,
		ImageURL:            req.ImageURL,
		ParentID:            req.ParentID,
		SpecificationFields: req.SpecificationFields,
	}
	if err := c.categorySvc.Create(ctx.Request.Context(), category); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, category)
}

// Update 更新分类
// @Summary 更新分类
// @Tags Category (分类管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Param request body dto.UpdateCategoryReq true "分类参数"
// @Success 200 {object} model.Category
// @Failure 400 {object} map[string]string "参数错误"
// @Router /api/admin/categories/{id} [put]
func (c *CategoryController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateCategoryReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	category, err := c.categorySvc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	category.Name = req.Name
	category.Description = req.Description
	category.ImageURL = req.ImageURL
	category.ParentID = req.ParentID
	category.SpecificationFields = req.SpecificationFields

	if err := c.categorySvc.Update(ctx.Request.Context(), category); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, category)
}

// Delete 删除分类
// @Summary 删除分类
// @Description 有子分类或名下有商品时拒绝
// @Tags Category (分类管理)
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Success 200 {object} map[string]string "{"message": "删除成功"}"
// @Failure 409 {object} map[string]string "分类非空"
// @Router /api/admin/categories/{id} [delete]
func (c *CategoryController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.categorySvc.Delete(ctx.Request.Context(), id); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}
