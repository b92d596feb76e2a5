package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"techmart/internal/model"
	"techmart/internal/repository"
	"techmart/pkg/listing"
	"techmart/pkg/utils"
)

// ==================== ProductService ====================

// ProductService 商品管理
type ProductService struct {
	productRepo repository.ProductRepository
	brandRepo   repository.BrandRepository
	categorySvc *CategoryService
	storage     *StorageService
	cache       *Cache
}

// NewProductService 创建商品服务
func NewProductService(
	productRepo repository.ProductRepository,
	brandRepo repository.BrandRepository,
	categorySvc *CategoryService,
	storage *StorageService,
	cache *Cache,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		brandRepo:   brandRepo,
		categorySvc: categorySvc,
		storage:     storage,
		cache:       cache,
	}
}

// ==================== CRUD ====================

// Create 创建商品
// 规格值按所属分类的有效规格字段做类型校验，空值在入库前裁剪
func (s *ProductService) Create(ctx context.Context, product *model.Product, specs map[string]interface{}) error {
	if err := s.validate(product); err != nil {
		return err
	}
	if _, err := s.productRepo.GetBySKU(ctx, product.SKU); err == nil {
		return fmt.Errorf("%w: SKU 已存在: %s", ErrConflict, product.SKU)
	}
	if _, err := s.brandRepo.GetByID(ctx, product.BrandID); err != nil {
		return fmt.Errorf("%w: 品牌不存在", ErrInvalid)
	}
	if product.Slug == "" {
		product.Slug = utils.Slugify(product.Name)
	}

	coerced, err := s.coerceSpecs(ctx, product.CategoryID, specs)
	if err != nil {
		return err
	}
	product.Specifications = coerced

	return s.productRepo.Create(ctx, product)
}

// Update 更新商品
func (s *ProductService) Update(ctx context.Context, product *model.Product, specs map[string]interface{}) error {
	existing, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return err
	}
	if err := s.validate(product); err != nil {
		return err
	}
	if product.SKU != existing.SKU {
		if _, err := s.productRepo.GetBySKU(ctx, product.SKU); err == nil {
			return fmt.Errorf("%w: SKU 已存在: %s", ErrConflict, product.SKU)
		}
	}
	if product.Slug == "" {
		product.Slug = existing.Slug
	}

	if specs != nil {
		coerced, err := s.coerceSpecs(ctx, product.CategoryID, specs)
		if err != nil {
			return err
		}
		product.Specifications = coerced
	} else {
		product.Specifications = existing.Specifications
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}
	s.cache.Delete(ctx, productCacheKey(product.ID))
	return nil
}

// Delete 删除商品
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(ctx, productCacheKey(id))
	return nil
}

// GetByID 商品详情，带读穿缓存
func (s *ProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	key := productCacheKey(id)

	var cached model.Product
	if s.cache.GetJSON(ctx, key, &cached) && cached.ID == id {
		return &cached, nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, product)
	return product, nil
}

// ListAll 全量商品（管理端导出、下拉选择用）
func (s *ProductService) ListAll(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.ListAll(ctx)
}

func (s *ProductService) validate(product *model.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: 商品名称不能为空", ErrInvalid)
	}
	if strings.TrimSpace(product.SKU) == "" {
		return fmt.Errorf("%w: SKU 不能为空", ErrInvalid)
	}
	if product.Price < 0 {
		return fmt.Errorf("%w: 价格不能为负", ErrInvalid)
	}
	if product.Discount < 0 || product.Discount > 100 {
		return fmt.Errorf("%w: 折扣必须在 0-100 之间", ErrInvalid)
	}
	if product.QuantityInStock < 0 {
		return fmt.Errorf("%w: 库存不能为负", ErrInvalid)
	}
	return nil
}

func (s *ProductService) coerceSpecs(ctx context.Context, categoryID int64, specs map[string]interface{}) (datatypes.JSONMap, error) {
	fields, err := s.categorySvc.EffectiveFields(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 分类不存在", ErrInvalid)
		}
		return nil, err
	}
	coerced, err := model.CoerceSpecifications(fields, specs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return coerced, nil
}

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// ==================== 管理端列表 ====================

// AdminProductQuery 管理端商品列表查询参数
type AdminProductQuery struct {
	Search      string
	IsActive    *bool
	IsFeatured  *bool
	HasDiscount *bool
	CategoryID  int64 // 含子分类
	BrandID     int64
	PriceMin    *float64
	PriceMax    *float64
	StockMin    *int
	StockMax    *int
	SortKey     string
	Page        int
	PageSize    int
}

// AdminList 管理端商品列表：谓词合取过滤 + 单比较器排序 + 偏移分页
func (s *ProductService) AdminList(ctx context.Context, q AdminProductQuery) (listing.Result[model.Product], error) {
	var zero listing.Result[model.Product]

	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return zero, err
	}

	preds, err := s.buildPredicates(ctx, q)
	if err != nil {
		return zero, err
	}

	return listing.Apply(products, listing.Query[model.Product]{
		Predicates: preds,
		Sort:       productSortLess(q.SortKey),
		Page:       q.Page,
		PageSize:   q.PageSize,
	}), nil
}

func (s *ProductService) buildPredicates(ctx context.Context, q AdminProductQuery) ([]listing.Predicate[model.Product], error) {
	var preds []listing.Predicate[model.Product]

	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		preds = append(preds, func(p model.Product) bool {
			if strings.Contains(strings.ToLower(p.Name), search) ||
				strings.Contains(strings.ToLower(p.SKU), search) ||
				strings.Contains(strings.ToLower(p.Description), search) {
				return true
			}
			return p.Brand != nil && strings.Contains(strings.ToLower(p.Brand.Name), search)
		})
	}
	if q.IsActive != nil {
		want := *q.IsActive
		preds = append(preds, func(p model.Product) bool { return p.IsActive == want })
	}
	if q.IsFeatured != nil {
		want := *q.IsFeatured
		preds = append(preds, func(p model.Product) bool { return p.IsFeatured == want })
	}
	if q.HasDiscount != nil {
		want := *q.HasDiscount
		preds = append(preds, func(p model.Product) bool { return (p.Discount > 0) == want })
	}
	if q.CategoryID > 0 {
		ids, err := s.categorySvc.SubtreeIDs(ctx, q.CategoryID)
		if err != nil {
			return nil, err
		}
		idSet := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			idSet[id] = struct{}{}
		}
		preds = append(preds, func(p model.Product) bool {
			_, ok := idSet[p.CategoryID]
			return ok
		})
	}
	if q.BrandID > 0 {
		preds = append(preds, func(p model.Product) bool { return p.BrandID == q.BrandID })
	}
	if q.PriceMin != nil {
		min := *q.PriceMin
		preds = append(preds, func(p model.Product) bool { return p.Price >= min })
	}
	if q.PriceMax != nil {
		max := *q.PriceMax
		preds = append(preds, func(p model.Product) bool { return p.Price <= max })
	}
	if q.StockMin != nil {
		min := *q.StockMin
		preds = append(preds, func(p model.Product) bool { return p.QuantityInStock >= min })
	}
	if q.StockMax != nil {
		max := *q.StockMax
		preds = append(preds, func(p model.Product) bool { return p.QuantityInStock <= max })
	}
	return preds, nil
}

// productSortLess 排序键到比较器的映射，未知键回落到 date_desc
func productSortLess(key string) listing.Less[model.Product] {
	switch key {
	case "name_asc":
		return func(a, b model.Product) bool { return a.Name < b.Name }
	case "name_desc":
		return func(a, b model.Product) bool { return a.Name > b.Name }
	case "price_asc":
		return func(a, b model.Product) bool { return a.Price < b.Price }
	case "price_desc":
		return func(a, b model.Product) bool { return a.Price > b.Price }
	case "date_asc":
		return func(a, b model.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "stock_asc":
		return func(a, b model.Product) bool { return a.QuantityInStock < b.QuantityInStock }
	case "stock_desc":
		return func(a, b model.Product) bool { return a.QuantityInStock > b.QuantityInStock }
	case "sold_desc":
		return func(a, b model.Product) bool { return a.QuantitySold > b.QuantitySold }
	default: // date_desc
		return func(a, b model.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
}

// ==================== 门店列表 ====================

// StorefrontList 门店侧按分类/品牌的上架商品
func (s *ProductService) StorefrontList(ctx context.Context, categoryID, brandID int64) ([]model.Product, error) {
	active := true
	filter := repository.ProductFilter{BrandID: brandID, IsActive: &active}
	if categoryID > 0 {
		ids, err := s.categorySvc.SubtreeIDs(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		filter.CategoryIDs = ids
	}
	return s.productRepo.List(ctx, filter)
}

// ==================== 图片 ====================

// UploadImage 上传商品图片并入库
// 第一张图强制为主图，保证「有且只有一张主图」
func (s *ProductService) UploadImage(ctx context.Context, productID int64, data []byte, filename, contentType, altText string) (*model.ProductImage, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, fmt.Errorf("存储服务未配置")
	}

	url, err := s.storage.Upload(ctx, data, filename, contentType)
	if err != nil {
		return nil, fmt.Errorf("图片上传失败: %w", err)
	}

	var image *model.ProductImage
	err = s.productRepo.Transaction(ctx, func(txRepo repository.ProductRepository) error {
		existing, err := txRepo.GetImagesByProductID(ctx, productID)
		if err != nil {
			return err
		}
		image = &model.ProductImage{
			ProductID: productID,
			ImageURL:  url,
			AltText:   altText,
			IsMain:    len(existing) == 0,
			SortOrder: len(existing),
		}
		return txRepo.CreateImage(ctx, image)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, productCacheKey(productID))
	return image, nil
}

// SetMainImage 切换主图，事务内先清后置
func (s *ProductService) SetMainImage(ctx context.Context, productID, imageID int64) error {
	if err := s.productRepo.SetMainImage(ctx, productID, imageID); err != nil {
		return err
	}
	s.cache.Delete(ctx, productCacheKey(productID))
	return nil
}

// DeleteImage 删除图片；删除主图时把 sort_order 最小的幸存图提升为主图
func (s *ProductService) DeleteImage(ctx context.Context, productID, imageID int64) error {
	err := s.productRepo.Transaction(ctx, func(txRepo repository.ProductRepository) error {
		image, err := txRepo.GetImage(ctx, imageID)
		if err != nil {
			return err
		}
		if image.ProductID != productID {
			return gorm.ErrRecordNotFound
		}
		if err := txRepo.DeleteImage(ctx, imageID); err != nil {
			return err
		}
		if !image.IsMain {
			return nil
		}
		survivors, err := txRepo.GetImagesByProductID(ctx, productID)
		if err != nil {
			return err
		}
		if len(survivors) == 0 {
			return nil
		}
		return txRepo.SetMainImage(ctx, productID, survivors[0].ID)
	})
	if err != nil {
		return err
	}
	s.cache.Delete(ctx, productCacheKey(productID))
	return nil
}

// ==================== 规格值联想 ====================

// SpecSuggestions 某分类子树下、某规格字段历史上用过的去重值
// 前端用来渲染输入联想
func (s *ProductService) SpecSuggestions(ctx context.Context, categoryID int64, key string) ([]string, error) {
	ids, err := s.categorySvc.SubtreeIDs(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.List(ctx, repository.ProductFilter{CategoryIDs: ids})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var suggestions []string
	add := func(v string) {
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		suggestions = append(suggestions, v)
	}

	for _, p := range products {
		raw, ok := p.Specifications[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case string:
			add(v)
		case float64:
			add(strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), "."))
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		}
	}
	return suggestions, nil
}
