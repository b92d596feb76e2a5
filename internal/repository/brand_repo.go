package repository

import (
	"context"

	"gorm.io/gorm"

	"techmart/internal/model"
)

// BrandRepository 品牌仓储接口
type BrandRepository interface {
	Create(ctx context.Context, brand *model.Brand) error
	GetByID(ctx context.Context, id int64) (*model.Brand, error)
	Update(ctx context.Context, brand *model.Brand) error
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]model.Brand, error)
	// ListByCategoryIDs 返回在给定分类集合下有商品的品牌
	ListByCategoryIDs(ctx context.Context, categoryIDs []int64) ([]model.Brand, error)
}

type brandRepo struct {
	db *gorm.DB
}

// NewBrandRepository 创建品牌仓储
func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepo{db: db}
}

func (r *brandRepo) Create(ctx context.Context, brand *model.Brand) error {
	return r.db.WithContext(ctx).Create(brand).Error
}

func (r *brandRepo) GetByID(ctx context.Context, id int64) (*model.Brand, error) {
	var brand model.Brand
	if err := r.db.WithContext(ctx).First(&brand, id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *brandRepo) Update(ctx context.Context, brand *model.Brand) error {
	return r.db.WithContext(ctx).Save(brand).Error
}

func (r *brandRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Brand{}, id).Error
}

func (r *brandRepo) ListAll(ctx context.Context) ([]model.Brand, error) {
	var brands []model.Brand
	err := r.db.WithContext(ctx).Order("name ASC").Find(&brands).Error
	return brands, err
}

func (r *brandRepo) ListByCategoryIDs(ctx context.Context, categoryIDs []int64) ([]model.Brand, error) {
	if len(categoryIDs) == 0 {
		return []model.Brand{}, nil
	}
	var brands []model.Brand
	err := r.db.WithContext(ctx).
		Distinct("brands.*").
		Joins("JOIN products ON products.brand_id = brands.id AND products.deleted_at IS NULL").
		Where("products.category_id IN ?", categoryIDs).
		Order("brands.name ASC").
		Find(&brands).Error
	return brands, err
}
