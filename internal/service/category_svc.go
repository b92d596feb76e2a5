package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"techmart/internal/model"
	"techmart/internal/repository"
	"techmart/pkg/utils"
)

// maxParentDepth 父链遍历上限，防御脏数据形成的环
const maxParentDepth = 32

// ==================== CategoryService ====================

// fieldCache 有效规格字段缓存所需的操作，*Cache 即满足
type fieldCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) bool
	SetJSON(ctx context.Context, key string, val interface{})
	Delete(ctx context.Context, keys ...string)
}

// CategoryService 分类与规格字段模板
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        fieldCache
}

// NewCategoryService 创建分类服务
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache fieldCache,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
	}
}

// ==================== CRUD ====================

// Create 创建分类
// 规则：规格字段只允许定义在根分类上；子分类的 parent 必须存在
func (s *CategoryService) Create(ctx context.Context, category *model.Category) error {
	if category.Name == "" {
		return fmt.Errorf("%w: 分类名称不能为空", ErrInvalid)
	}
	if category.Slug == "" {
		category.Slug = utils.Slugify(category.Name)
	}

	if category.ParentID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *category.ParentID); err != nil {
			return fmt.Errorf("%w: 父分类不存在", ErrInvalid)
		}
		if len(category.SpecificationFields) > 0 {
			return fmt.Errorf("%w: 规格字段只能定义在根分类上", ErrInvalid)
		}
	}
	if err := model.ValidateFieldDefs(category.SpecificationFields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return s.categoryRepo.Create(ctx, category)
}

// Update 更新分类并失效有效规格缓存
func (s *CategoryService) Update(ctx context.Context, category *model.Category) error {
	existing, err := s.categoryRepo.GetByID(ctx, category.ID)
	if err != nil {
		return err
	}

	if category.ParentID != nil {
		if *category.ParentID == category.ID {
			return fmt.Errorf("%w: 分类不能作为自己的父级", ErrInvalid)
		}
		if _, err := s.categoryRepo.GetByID(ctx, *category.ParentID); err != nil {
			return fmt.Errorf("%w: 父分类不存在", ErrInvalid)
		}
		if len(category.SpecificationFields) > 0 {
			return fmt.Errorf("%w: 规格字段只能定义在根分类上", ErrInvalid)
		}
	}
	if err := model.ValidateFieldDefs(category.SpecificationFields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if category.Slug == "" {
		category.Slug = existing.Slug
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return err
	}
	s.invalidateFieldCache(ctx, category.ID)
	return nil
}

// Delete 删除分类，有子分类或商品时拒绝
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	children, err := s.categoryRepo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("%w: 该分类下还有 %d 个子分类", ErrConflict, children)
	}
	products, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if products > 0 {
		return fmt.Errorf("%w: 该分类下还有 %d 个商品", ErrConflict, products)
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateFieldCache(ctx, id)
	return nil
}

// GetByID 查询分类
func (s *CategoryService) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

// ListAll 查询全部分类
func (s *CategoryService) ListAll(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.ListAll(ctx)
}

// ListChildren 查询子分类，没有子分类返回空列表而非错误
func (s *CategoryService) ListChildren(ctx context.Context, parentID int64) ([]model.Category, error) {
	return s.categoryRepo.ListByParent(ctx, parentID)
}

// ==================== 根分类解析与规格继承 ====================

// GetRoot 沿 parent_id 链向上解析根分类
// 对任意长度的父链都返回唯一的 parent_id 为空的祖先
func (s *CategoryService) GetRoot(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ResolveRoot(category, func(parentID int64) (*model.Category, error) {
		return s.categoryRepo.GetByID(ctx, parentID)
	})
}

// ResolveRoot 纯函数形式的根解析，resolver 注入父分类查找
func ResolveRoot(category *model.Category, resolve func(int64) (*model.Category, error)) (*model.Category, error) {
	current := category
	for depth := 0; current.ParentID != nil; depth++ {
		if depth >= maxParentDepth {
			return nil, fmt.Errorf("分类 %d 的父链过深或成环", category.ID)
		}
		parent, err := resolve(*current.ParentID)
		if err != nil {
			return nil, err
		}
		current = parent
	}
	return current, nil
}

// EffectiveFieldsOf 计算分类的有效规格字段：自身非空用自身，否则用根分类的
// 根分类字段为空时返回空列表，不是错误；根字段不会与自身字段合并
func EffectiveFieldsOf(category *model.Category, resolve func(int64) (*model.Category, error)) ([]model.SpecificationField, error) {
	if len(category.SpecificationFields) > 0 {
		return model.SortFields(category.SpecificationFields), nil
	}
	if category.ParentID == nil {
		return []model.SpecificationField{}, nil
	}
	root, err := ResolveRoot(category, resolve)
	if err != nil {
		return nil, err
	}
	return model.SortFields(root.SpecificationFields), nil
}

// EffectiveFields 查询分类的有效规格字段，带 redis 读穿缓存
func (s *CategoryService) EffectiveFields(ctx context.Context, id int64) ([]model.SpecificationField, error) {
	key := fieldCacheKey(id)

	var cached []model.SpecificationField
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fields, err := EffectiveFieldsOf(category, func(parentID int64) (*model.Category, error) {
		return s.categoryRepo.GetByID(ctx, parentID)
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, key, fields)
	return fields, nil
}

func fieldCacheKey(id int64) string {
	return fmt.Sprintf("category:fields:%d", id)
}

func (s *CategoryService) invalidateFieldCache(ctx context.Context, id int64) {
	// 任意深度的后代都继承根分类字段，整棵子树的缓存一并失效
	ids, err := s.SubtreeIDs(ctx, id)
	if err != nil {
		ids = []int64{id}
	}
	keys := make([]string, 0, len(ids))
	for _, cid := range ids {
		keys = append(keys, fieldCacheKey(cid))
	}
	s.cache.Delete(ctx, keys...)
}

// ==================== 管理端列表补全 ====================

// CategoryEnriched 管理端列表行，补充根分类与有效字段数
type CategoryEnriched struct {
	model.Category
	RootID              int64  `json:"rootId"`
	RootName            string `json:"rootName"`
	EffectiveFieldCount int    `json:"effectiveFieldCount"`
}

// ListEnriched 列出全部分类，并发补全每行的根分类信息
// 按下标写回，最终顺序与 ListAll 一致
func (s *CategoryService) ListEnriched(ctx context.Context) ([]CategoryEnriched, error) {
	categories, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	enriched := make([]CategoryEnriched, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i := range categories {
		i := i
		g.Go(func() error {
			cat := categories[i]
			root, err := s.GetRoot(gctx, cat.ID)
			if err != nil {
				return err
			}
			fields, err := EffectiveFieldsOf(&cat, func(parentID int64) (*model.Category, error) {
				return s.categoryRepo.GetByID(gctx, parentID)
			})
			if err != nil {
				return err
			}
			enriched[i] = CategoryEnriched{
				Category:            cat,
				RootID:              root.ID,
				RootName:            root.Name,
				EffectiveFieldCount: len(fields),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enriched, nil
}

// SubtreeIDs 分类自身及其全部后代的 ID 集合（品牌按分类过滤、门店列表用）
func (s *CategoryService) SubtreeIDs(ctx context.Context, id int64) ([]int64, error) {
	all, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	childrenOf := make(map[int64][]int64, len(all))
	for _, c := range all {
		if c.ParentID != nil {
			childrenOf[*c.ParentID] = append(childrenOf[*c.ParentID], c.ID)
		}
	}

	ids := []int64{id}
	for i := 0; i < len(ids); i++ {
		ids = append(ids, childrenOf[ids[i]]...)
	}
	return ids, nil
}
