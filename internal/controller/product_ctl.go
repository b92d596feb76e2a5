package controller

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"techmart/internal/api/dto"
	"techmart/internal/model"
	"techmart/internal/service"
)

// 单张商品图片上限
const maxImageSize = 10 << 20

type ProductController struct {
	productSvc *service.ProductService
}

func NewProductController(productSvc *service.ProductService) *ProductController {
	return &ProductController{productSvc: productSvc}
}

// AdminList 管理端商品列表
// @Summary 管理端商品列表
// @Description 支持关键词、状态、分类（含子分类）、品牌、价格区间、库存区间过滤与排序分页
// @Tags Product (商品管理)
// @Produce json
// @Security BearerAuth
// @Param search query string false "关键词（名称/SKU/描述/品牌）"
// @Param isActive query bool false "上架状态"
// @Param isFeatured query bool false "推荐状态"
// @Param hasDiscount query bool false "是否有折扣"
// @Param categoryId query int false "分类ID（含子分类）"
// @Param brandId query int false "品牌ID"
// @Param priceMin query number false "最低价"
// @Param priceMax query number false "最高价"
// @Param sort query string false "排序键" Enums(name_asc,name_desc,price_asc,price_desc,date_asc,date_desc,stock_asc,stock_desc,sold_desc)
// @Param page query int false "页码" default(1)
// @Param pageSize query int false "每页数量" default(20)
// @Success 200 {object} listing.Result[model.Product]
// @Router /api/admin/products [get]
func (c *ProductController) AdminList(ctx *gin.Context) {
	var req dto.AdminProductListReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	result, err := c.productSvc.AdminList(ctx.Request.Context(), service.AdminProductQuery{
		Search:      req.Search,
		IsActive:    req.IsActive,
		IsFeatured:  req.IsFeatured,
		HasDiscount: req.HasDiscount,
		CategoryID:  req.CategoryID,
		BrandID:     req.BrandID,
		PriceMin:    req.PriceMin,
		PriceMax:    req.PriceMax,
		StockMin:    req.StockMin,
		StockMax:    req.StockMax,
		SortKey:     req.SortKey,
		Page:        req.Page,
		PageSize:    req.PageSize,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// ListAll 全量商品
// @Summary 全量商品（下拉选择、导出用）
// @Tags Product (商品管理)
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Product
// @Router /api/admin/products/all [get]
func (c *ProductController) ListAll(ctx *gin.Context) {
	products, err := c.productSvc.ListAll(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, products)
}

// StorefrontList 门店商品列表
// @Summary 门店商品列表
// @Description 只返回上架商品，分类过滤包含整棵子树
// @Tags Product (商品管理)
// @Produce json
// @Param categoryId query int false "分类ID"
// @Param brandId query int false "品牌ID"
// @Success 200 {array} model.Product
// @Router /api/products [get]
func (c *ProductController) StorefrontList(ctx *gin.Context) {
	categoryID, _ := strconv.ParseInt(ctx.Query("categoryId"), 10, 64)
	brandID, _ := strconv.ParseInt(ctx.Query("brandId"), 10, 64)

	products, err := c.productSvc.StorefrontList(ctx.Request.Context(), categoryID, brandID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, products)
}

// Get 商品详情
// @Summary 商品详情
// @Tags Product (商品管理)
// @Produce json
// @Param id path int true "商品ID"
// @Success 200 {object} model.Product
// @Failure 404 {object} map[string]string "商品不存在"
// @Router /api/products/{id} [get]
func (c *ProductController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	product, err := c.productSvc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

// Create 创建商品
// @Summary 创建商品
// @Description 规格值按分类的有效字段定义做类型收敛，空值剔除
// @Tags Product (商品管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProductReq true "商品参数"
// @Success 200 {object} model.Product
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 409 {object} map[string]string "SKU 已存在"
// @Router /api/admin/products [post]
func (c *ProductController) Create(ctx *gin.Context) {
	var req dto.CreateProductReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	product := &model.Product{
		Name:            req.Name,
		SKU:             req.SKU,
		Description:     req.Description,
		Price:           req.Price,
		Discount:        req.Discount,
		QuantityInStock: req.QuantityInStock,
		IsActive:        req.IsActive,
		IsFeatured:      req.IsFeatured,
		CategoryID:      req.CategoryID,
		BrandID:         req.BrandID,
	}
	if err := c.productSvc.Create(ctx.Request.Context(), product, req.Specifications); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

// Update 更新商品
// @Summary 更新商品
// @Tags Product (商品管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param request body dto.UpdateProductReq true "商品参数"
// @Success 200 {object} model.Product
// @Failure 404 {object} map[string]string "商品不存在"
// @Router /api/admin/products/{id} [put]
func (c *ProductController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	product, err := c.productSvc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Discount = req.Discount
	product.QuantityInStock = req.QuantityInStock
	product.IsActive = req.IsActive
	product.IsFeatured = req.IsFeatured
	product.CategoryID = req.CategoryID
	product.BrandID = req.BrandID

	if err := c.productSvc.Update(ctx.Request.Context(), product, req.Specifications); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

// Delete 删除商品
// @Summary 删除商品
// @Tags Product (商品管理)
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Success 200 {object} map[string]string "{"message": "删除成功"}"
// @Router /api/admin/products/{id} [delete]
func (c *ProductController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.productSvc.Delete(ctx.Request.Context(), id); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// UploadImage 上传商品图片
// @Summary 上传商品图片
// @Description multipart 上传，首张自动设为主图
// @Tags Product (商品管理)
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param file formData file true "图片文件"
// @Param altText formData string false "替代文本"
// @Success 200 {object} model.ProductImage
// @Failure 400 {object} map[string]string "文件缺失或过大"
// @Router /api/admin/products/{id}/images [post]
func (c *ProductController) UploadImage(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "缺少图片文件"})
		return
	}
	if fileHeader.Size > maxImageSize {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "图片不能超过 10MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	image, err := c.productSvc.UploadImage(ctx.Request.Context(), id,
		data, fileHeader.Filename, contentType, ctx.PostForm("altText"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, image)
}

// SetMainImage 设置主图
// @Summary 设置商品主图
// @Description 同一商品始终只有一张主图
// @Tags Product (商品管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param request body dto.SetMainImageReq true "图片ID"
// @Success 200 {object} map[string]string "{"message": "设置成功"}"
// @Failure 404 {object} map[string]string "图片不存在"
// @Router /api/admin/products/{id}/images/main [put]
func (c *ProductController) SetMainImage(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.SetMainImageReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	if err := c.productSvc.SetMainImage(ctx.Request.Context(), id, req.ImageID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "设置成功"})
}

// DeleteImage 删除商品图片
// @Summary 删除商品图片
// @Description 删除主图时自动提升排序最靠前的剩余图片为主图
// @Tags Product (商品管理)
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param imageId path int true "图片ID"
// @Success 200 {object} map[string]string "{"message": "删除成功"}"
// @Router /api/admin/products/{id}/images/{imageId} [delete]
func (c *ProductController) DeleteImage(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(ctx, "imageId")
	if !ok {
		return
	}
	if err := c.productSvc.DeleteImage(ctx.Request.Context(), id, imageID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// SpecSuggestions 规格值联想
// @Summary 规格值联想
// @Description 返回分类子树下某规格键的历史去重取值
// @Tags Product (商品管理)
// @Produce json
// @Security BearerAuth
// @Param categoryId query int true "分类ID"
// @Param key query string true "规格键"
// @Success 200 {array} string
// @Router /api/admin/products/spec-suggestions [get]
func (c *ProductController) SpecSuggestions(ctx *gin.Context) {
	categoryID, err := strconv.ParseInt(ctx.Query("categoryId"), 10, 64)
	if err != nil || categoryID <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "无效的 categoryId"})
		return
	}
	key := ctx.Query("key")
	if key == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "缺少 key"})
		return
	}

	values, err := c.productSvc.SpecSuggestions(ctx.Request.Context(), categoryID, key)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, values)
}
