package service

import (
	"context"
	"fmt"

	"techmart/internal/model"
	"techmart/internal/repository"
	"techmart/pkg/utils"
)

// ==================== BrandService ====================

// BrandService 品牌管理
type BrandService struct {
	brandRepo   repository.BrandRepository
	productRepo repository.ProductRepository
	categorySvc *CategoryService
}

// NewBrandService 创建品牌服务
func NewBrandService(
	brandRepo repository.BrandRepository,
	productRepo repository.ProductRepository,
	categorySvc *CategoryService,
) *BrandService {
	return &BrandService{
		brandRepo:   brandRepo,
		productRepo: productRepo,
		categorySvc: categorySvc,
	}
}

// Create 创建品牌
func (s *BrandService) Create(ctx context.Context, brand *model.Brand) error {
	if brand.Name == "" {
		return fmt.Errorf("%w: 品牌名不能为空", ErrInvalid)
	}
	if brand.Slug == "" {
		brand.Slug = utils.Slugify(brand.Name)
	}
	return s.brandRepo.Create(ctx, brand)
}

// Update 更新品牌
func (s *BrandService) Update(ctx context.Context, brand *model.Brand) error {
	if _, err := s.brandRepo.GetByID(ctx, brand.ID); err != nil {
		return err
	}
	if brand.Name == "" {
		return fmt.Errorf("%w: 品牌名不能为空", ErrInvalid)
	}
	if brand.Slug == "" {
		brand.Slug = utils.Slugify(brand.Name)
	}
	return s.brandRepo.Update(ctx, brand)
}

// Delete 删除品牌，名下还有商品时拒绝
func (s *BrandService) Delete(ctx context.Context, id int64) error {
	if _, err := s.brandRepo.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.productRepo.CountByBrand(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: 品牌下还有 %d 个商品", ErrConflict, count)
	}
	return s.brandRepo.Delete(ctx, id)
}

// GetByID 品牌详情
func (s *BrandService) GetByID(ctx context.Context, id int64) (*model.Brand, error) {
	return s.brandRepo.GetByID(ctx, id)
}

// ListAll 全部品牌
func (s *BrandService) ListAll(ctx context.Context) ([]model.Brand, error) {
	return s.brandRepo.ListAll(ctx)
}

// ListByCategory 某分类（含子孙分类）下有商品的品牌
func (s *BrandService) ListByCategory(ctx context.Context, categoryID int64) ([]model.Brand, error) {
	ids, err := s.categorySvc.SubtreeIDs(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return s.brandRepo.ListByCategoryIDs(ctx, ids)
}
