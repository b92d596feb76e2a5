package dto

import "techmart/internal/model"

// ==================== 分类 ====================

// CreateCategoryReq 创建分类请求
type CreateCategoryReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	ParentID    *int64 `json:"parentId"`

	// 规格字段定义，只有根分类允许携带
	SpecificationFields []model.SpecificationField `json:"specificationFields"`
}

// UpdateCategoryReq 更新分类请求
type UpdateCategoryReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	ParentID    *int64 `json:"parentId"`

	SpecificationFields []model.SpecificationField `json:"specificationFields"`
}

// ==================== 品牌 ====================

// BrandReq 创建/更新品牌请求
type BrandReq struct {
	Name    string `json:"name" binding:"required,max=100"`
	LogoURL string `json:"logoUrl"`
}
