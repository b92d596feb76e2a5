package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"techmart/internal/api/dto"
	"techmart/internal/model"
	"techmart/internal/service"
)

type BrandController struct {
	brandSvc *service.BrandService
}

func NewBrandController(brandSvc *service.BrandService) *BrandController {
	return &BrandController{brandSvc: brandSvc}
}

// List 品牌列表
// @Summary 品牌列表
// @Tags Brand (品牌管理)
// @Produce json
// @Success 200 {array} model.Brand
// @Router /api/brands [get]
func (c *BrandController) List(ctx *gin.Context) {
	brands, err := c.brandSvc.ListAll(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, brands)
}

// ListByCategory 分类下的品牌
// @Summary 某分类（含子孙分类）下有商品的品牌
// @Tags Brand (品牌管理)
// @Produce json
// @Param id path int true "分类ID"
// @Success 200 {array} model.Brand
// @Router /api/brands/category/{id} [get]
func (c *BrandController) ListByCategory(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	brands, err := c.brandSvc.ListByCategory(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, brands)
}

// Create 创建品牌
// @Summary 创建品牌
// @Tags Brand (品牌管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BrandReq true "品牌参数"
// @Success 200 {object} model.Brand
// @Failure 400 {object} map[string]string "参数错误"
// @Router /api/admin/brands [post]
func (c *BrandController) Create(ctx *gin.Context) {
	var req dto.BrandReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	brand := &model.Brand{Name: req.Name, LogoURL: req.LogoURL}
	if err := c.brandSvc.Create(ctx.Request.Context(), brand); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, brand)
}

// Update 更新品牌
// @Summary 更新品牌
// @Tags Brand (品牌管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "品牌ID"
// @Param request body dto.BrandReq true "品牌参数"
// @Success 200 {object} model.Brand
// @Failure 404 {object} map[string]string "品牌不存在"
// @Router /api/admin/brands/{id} [put]
func (c *BrandController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.BrandReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	brand, err := c.brandSvc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	brand.Name = req.Name
	brand.LogoURL = req.LogoURL
	brand.Slug = ""

	if err := c.brandSvc.Update(ctx.Request.Context(), brand); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, brand)
}

// Delete 删除品牌
// @Summary 删除品牌
// @Description 名下还有商品时拒绝
// @Tags Brand (品牌管理)
// @Produce json
// @Security BearerAuth
// @Param id path int true "品牌ID"
// @Success 200 {object} map[string]string "{"message": "删除成功"}"
// @Failure 409 {object} map[string]string "品牌下还有商品"
// @Router /api/admin/brands/{id} [delete]
func (c *BrandController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.brandSvc.Delete(ctx.Request.Context(), id); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}
