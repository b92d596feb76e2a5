package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"techmart/internal/model"
	"techmart/internal/repository"
)

// ==================== 测试辅助 ====================

type productTestEnv struct {
	db          *gorm.DB
	productSvc  *ProductService
	productRepo repository.ProductRepository
	category    *model.Category
	brand       *model.Brand
}

func setupProductTestEnv(t *testing.T) *productTestEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Category{}, &model.Brand{},
		&model.Product{}, &model.ProductImage{},
	); err != nil {
		t.Fatalf("迁移表结构失败: %v", err)
	}

	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	cache := NewCache("", "", 0, 0)
	categorySvc := NewCategoryService(categoryRepo, productRepo, cache)

	storage, err := NewStorageService(&StorageConfig{
		Provider: "local",
		LocalDir: t.TempDir(),
		LocalURL: "http://localhost:8080/uploads",
		BasePath: "techmart",
	})
	if err != nil {
		t.Fatalf("初始化本地存储失败: %v", err)
	}

	productSvc := NewProductService(productRepo, brandRepo, categorySvc, storage, cache)

	category := &model.Category{
		Name: "Điện thoại", Slug: "dien-thoai",
		SpecificationFields: []model.SpecificationField{
			{Key: "ram", Type: model.FieldTypeString, SortOrder: 1},
			{Key: "battery", Type: model.FieldTypeNumber, SortOrder: 2},
			{Key: "5g", Type: model.FieldTypeBoolean, SortOrder: 3},
			{Key: "colors", Type: model.FieldTypeList, SortOrder: 4},
		},
	}
	brand := &model.Brand{Name: "Apple", Slug: "apple"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("创建测试分类失败: %v", err)
	}
	if err := db.Create(brand).Error; err != nil {
		t.Fatalf("创建测试品牌失败: %v", err)
	}

	return &productTestEnv{
		db: db, productSvc: productSvc, productRepo: productRepo,
		category: category, brand: brand,
	}
}

func (e *productTestEnv) newProduct(sku string) *model.Product {
	return &model.Product{
		Name: "iPhone 17", SKU: sku,
		Price: 999, QuantityInStock: 10, IsActive: true,
		CategoryID: e.category.ID, BrandID: e.brand.ID,
	}
}

// ==================== 规格值收敛 ====================

func TestCreateCoercesAndPrunesSpecifications(t *testing.T) {
	env := setupProductTestEnv(t)
	ctx := context.Background()

	product := env.newProduct("IP17-256")
	err := env.productSvc.Create(ctx, product, map[string]interface{}{
		"ram":     "8GB",
		"battery": "4500", // 数字字符串转数值
		"5g":      false,  // 布尔 false 保留
		"colors":  []interface{}{" Đen ", "", "Trắng"},
	})
	if err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}

	specs := product.Specifications
	if specs["ram"] != "8GB" {
		t.Errorf("ram 应为 8GB, 实际 %v", specs["ram"])
	}
	if specs["battery"] != float64(4500) {
		t.Errorf("battery 应收敛为数值 4500, 实际 %v (%T)", specs["battery"], specs["battery"])
	}
	if specs["5g"] != false {
		t.Errorf("布尔 false 应保留, 实际 %v", specs["5g"])
	}
	colors, ok := specs["colors"].([]string)
	if !ok || len(colors) != 2 || colors[0] != "Đen" || colors[1] != "Trắng" {
		t.Errorf("列表应裁剪空元素并去除首尾空白, 实际 %v", specs["colors"])
	}
}

func TestCreatePrunesEmptyValues(t *testing.T) {
	env := setupProductTestEnv(t)
	ctx := context.Background()

	product := env.newProduct("IP17-512")
	err := env.productSvc.Create(ctx, product, map[string]interface{}{
		"ram":    "   ",
		"colors": []interface{}{},
	})
	if err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
	if len(product.Specifications) != 0 {
		t.Errorf("空值应在入库前裁剪, 实际 %v", product.Specifications)
	}
}

func TestCreateRejectsUnknownSpecKey(t *testing.T) {
	env := setupProductTestEnv(t)
	err := env.productSvc.Create(context.Background(), env.newProduct("IP17-1T"),
		map[string]interface{}{"weight": "200g"})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("未定义的规格键应返回 ErrInvalid, 实际 %v", err)
	}
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	env := setupProductTestEnv(t)
	ctx := context.Background()

	if err := env.productSvc.Create(ctx, env.newProduct("IP17-DUP"), nil); err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
	err := env.productSvc.Create(ctx, env.newProduct("IP17-DUP"), nil)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("SKU 重复应返回 ErrConflict, 实际 %v", err)
	}
}

// ==================== 主图约束 ====================

func assertSingleMainImage(t *testing.T, env *productTestEnv, productID int64, wantMainID int64) {
	t.Helper()
	images, err := env.productRepo.GetImagesByProductID(context.Background(), productID)
	if err != nil {
		t.Fatalf("查询商品图片失败: %v", err)
	}
	mains := 0
	var mainID int64
	for _, img := range images {
		if img.IsMain {
			mains++
			mainID = img.ID
		}
	}
	if mains != 1 {
		t.Fatalf("商品应有且只有一张主图, 实际 %d 张", mains)
	}
	if wantMainID > 0 && mainID != wantMainID {
		t.Errorf("主图应为 %d, 实际 %d", wantMainID, mainID)
	}
}

func TestImageLifecycleKeepsSingleMain(t *testing.T) {
	env := setupProductTestEnv(t)
	ctx := context.Background()

	product := env.newProduct("IP17-IMG")
	if err := env.productSvc.Create(ctx, product, nil); err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}

	// 第一张自动成为主图
	img1, err := env.productSvc.UploadImage(ctx, product.ID, []byte("png-1"), "a.png", "image/png", "")
	if err != nil {
		t.Fatalf("上传图片失败: %v", err)
	}
	if !img1.IsMain {
		t.Error("第一张图片应自动设为主图")
	}

	img2, err := env.productSvc.UploadImage(ctx, product.ID, []byte("png-2"), "b.png", "image/png", "")
	if err != nil {
		t.Fatalf("上传图片失败: %v", err)
	}
	img3, err := env.productSvc.UploadImage(ctx, product.ID, []byte("png-3"), "c.png", "image/png", "")
	if err != nil {
		t.Fatalf("上传图片失败: %v", err)
	}
	assertSingleMainImage(t, env, product.ID, img1.ID)

	// 切换主图后仍然只有一张
	if err := env.productSvc.SetMainImage(ctx, product.ID, img2.ID); err != nil {
		t.Fatalf("设置主图失败: %v", err)
	}
	assertSingleMainImage(t, env, product.ID, img2.ID)

	// 删除主图自动提升 sort_order 最小的幸存图
	if err := env.productSvc.DeleteImage(ctx, product.ID, img2.ID); err != nil {
		t.Fatalf("删除主图失败: %v", err)
	}
	assertSingleMainImage(t, env, product.ID, img1.ID)

	// 删除非主图不影响主图
	if err := env.productSvc.DeleteImage(ctx, product.ID, img3.ID); err != nil {
		t.Fatalf("删除图片失败: %v", err)
	}
	assertSingleMainImage(t, env, product.ID, img1.ID)
}

// ==================== 管理端列表 ====================

func TestAdminListFiltersAndPaginates(t *testing.T) {
	env := setupProductTestEnv(t)
	ctx := context.Background()

	skus := []string{"A-1", "A-2", "A-3"}
	for i, sku := range skus {
		p := env.newProduct(sku)
		p.Name = "Máy " + sku
		p.Price = float64(100 * (i + 1))
		if i == 2 {
			p.Discount = 20
		}
		if err := env.productSvc.Create(ctx, p, nil); err != nil {
			t.Fatalf("创建商品失败: %v", err)
		}
	}

	hasDiscount := true
	result, err := env.productSvc.AdminList(ctx, AdminProductQuery{HasDiscount: &hasDiscount})
	if err != nil {
		t.Fatalf("管理端列表失败: %v", err)
	}
	if result.Total != 1 || result.Items[0].SKU != "A-3" {
		t.Errorf("折扣过滤应命中 A-3, 实际 %+v", result.Items)
	}

	min := 150.0
	result, err = env.productSvc.AdminList(ctx, AdminProductQuery{
		PriceMin: &min, SortKey: "price_asc", Page: 1, PageSize: 1,
	})
	if err != nil {
		t.Fatalf("管理端列表失败: %v", err)
	}
	if result.Total != 2 || result.TotalPages != 2 {
		t.Errorf("价格过滤应命中 2 条/2 页, 实际 %d/%d", result.Total, result.TotalPages)
	}
	if len(result.Items) != 1 || result.Items[0].SKU != "A-2" {
		t.Errorf("按价格升序第一页应为 A-2, 实际 %+v", result.Items)
	}
}

// ==================== 规格值联想 ====================

func TestSpecSuggestionsDeduplicatesAcrossSubtree(t *testing.T) {
	env := setupProductTestEnv(t)
	ctx := context.Background()

	child := &model.Category{Name: "Smartphone", Slug: "smartphone", ParentID: &env.category.ID}
	if err := env.db.Create(child).Error; err != nil {
		t.Fatalf("创建子分类失败: %v", err)
	}

	p1 := env.newProduct("SG-1")
	if err := env.productSvc.Create(ctx, p1, map[string]interface{}{"ram": "8GB"}); err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
	p2 := env.newProduct("SG-2")
	p2.CategoryID = child.ID
	if err := env.productSvc.Create(ctx, p2, map[string]interface{}{"ram": "8GB"}); err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
	p3 := env.newProduct("SG-3")
	p3.CategoryID = child.ID
	if err := env.productSvc.Create(ctx, p3, map[string]interface{}{"ram": "12GB"}); err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}

	values, err := env.productSvc.SpecSuggestions(ctx, env.category.ID, "ram")
	if err != nil {
		t.Fatalf("查询规格联想失败: %v", err)
	}
	if len(values) != 2 {
		t.Errorf("子树内去重后应有 2 个取值, 实际 %v", values)
	}
}
