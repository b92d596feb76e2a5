package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"techmart/internal/model"
)

// ErrInsufficientStock 库存不足以完成扣减
var ErrInsufficientStock = errors.New("库存不足")

// ==================== 过滤条件 ====================

// ProductFilter 数据库侧的粗过滤，细粒度过滤走 pkg/listing
type ProductFilter struct {
	CategoryIDs []int64
	BrandID     int64
	IsActive    *bool
}

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	List(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
	CountByBrand(ctx context.Context, brandID int64) (int64, error)

	// 图片操作
	CreateImage(ctx context.Context, image *model.ProductImage) error
	GetImage(ctx context.Context, id int64) (*model.ProductImage, error)
	GetImagesByProductID(ctx context.Context, productID int64) ([]model.ProductImage, error)
	DeleteImage(ctx context.Context, id int64) error
	// SetMainImage 事务内维护「有且只有一张主图」
	SetMainImage(ctx context.Context, productID, imageID int64) error

	// 库存
	AdjustStock(ctx context.Context, id int64, delta int, soldDelta int) error
	// DeductStock 带下限保护的扣减，余量不足返回 ErrInsufficientStock
	DeductStock(ctx context.Context, id int64, quantity int) error

	Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Category").
		Preload("Brand").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	query := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Category").
		Preload("Brand")

	if len(filter.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filter.CategoryIDs)
	}
	if filter.BrandID > 0 {
		query = query.Where("brand_id = ?", filter.BrandID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var products []model.Product
	err := query.Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	return r.List(ctx, ProductFilter{})
}

func (r *productRepo) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func (r *productRepo) CountByBrand(ctx context.Context, brandID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("brand_id = ?", brandID).
		Count(&count).Error
	return count, err
}

// ==================== 图片 ====================

func (r *productRepo) CreateImage(ctx context.Context, image *model.ProductImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *productRepo) GetImage(ctx context.Context, id int64) (*model.ProductImage, error) {
	var image model.ProductImage
	if err := r.db.WithContext(ctx).First(&image, id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *productRepo) GetImagesByProductID(ctx context.Context, productID int64) ([]model.ProductImage, error) {
	var images []model.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sort_order ASC").
		Find(&images).Error
	return images, err
}

func (r *productRepo) DeleteImage(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.ProductImage{}, id).Error
}

func (r *productRepo) SetMainImage(ctx context.Context, productID, imageID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ProductImage{}).
			Where("product_id = ?", productID).
			Update("is_main", false).Error; err != nil {
			return err
		}
		res := tx.Model(&model.ProductImage{}).
			Where("id = ? AND product_id = ?", imageID, productID).
			Update("is_main", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ==================== 库存 ====================

func (r *productRepo) AdjustStock(ctx context.Context, id int64, delta int, soldDelta int) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity_in_stock": gorm.Expr("quantity_in_stock + ?", delta),
			"quantity_sold":     gorm.Expr("quantity_sold + ?", soldDelta),
		}).Error
}

func (r *productRepo) DeductStock(ctx context.Context, id int64, quantity int) error {
	// 条件更新：余量不足时零行命中，并发下单也不会把库存扣成负数
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND quantity_in_stock >= ?", id, quantity).
		Updates(map[string]interface{}{
			"quantity_in_stock": gorm.Expr("quantity_in_stock - ?", quantity),
			"quantity_sold":     gorm.Expr("quantity_sold + ?", quantity),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// ==================== 事务 ====================

func (r *productRepo) Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&productRepo{db: tx})
	})
}
