package dto

// ==================== 请求 DTO ====================

// CreateProductReq 创建商品请求
type CreateProductReq struct {
	Name        string  `json:"name" binding:"required,max=200"`
	SKU         string  `json:"sku" binding:"required,max=64"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Discount    int     `json:"discount" binding:"gte=0,lte=100"`

	QuantityInStock int  `json:"quantityInStock" binding:"gte=0"`
	IsActive        bool `json:"isActive"`
	IsFeatured      bool `json:"isFeatured"`

	CategoryID int64 `json:"categoryId" binding:"required"`
	BrandID    int64 `json:"brandId" binding:"required"`

	// 规格值，键必须出现在分类的有效字段定义里
	Specifications map[string]interface{} `json:"specifications"`
}

// UpdateProductReq 更新商品请求
type UpdateProductReq struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Discount    int     `json:"discount" binding:"gte=0,lte=100"`

	QuantityInStock int  `json:"quantityInStock" binding:"gte=0"`
	IsActive        bool `json:"isActive"`
	IsFeatured      bool `json:"isFeatured"`

	CategoryID int64 `json:"categoryId" binding:"required"`
	BrandID    int64 `json:"brandId" binding:"required"`

	Specifications map[string]interface{} `json:"specifications"`
}

// AdminProductListReq 管理端商品列表查询
type AdminProductListReq struct {
	Search      string   `form:"search"`
	IsActive    *bool    `form:"isActive"`
	IsFeatured  *bool    `form:"isFeatured"`
	HasDiscount *bool    `form:"hasDiscount"`
	CategoryID  int64    `form:"categoryId"`
	BrandID     int64    `form:"brandId"`
	PriceMin    *float64 `form:"priceMin"`
	PriceMax    *float64 `form:"priceMax"`
	StockMin    *int     `form:"stockMin"`
	StockMax    *int     `form:"stockMax"`
	SortKey     string   `form:"sort"`
	Page        int      `form:"page"`
	PageSize    int      `form:"pageSize"`
}

// SetMainImageReq 设置主图请求
type SetMainImageReq struct {
	ImageID int64 `json:"imageId" binding:"required"`
}
