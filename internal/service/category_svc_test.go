package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"techmart/internal/model"
	"techmart/internal/repository"
)

// ==================== 测试辅助 ====================

func setupCategoryTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func newCategoryTestService(db *gorm.DB) *CategoryService {
	return NewCategoryService(
		repository.NewCategoryRepository(db),
		repository.NewProductRepository(db),
		NewCache("", "", 0, 0),
	)
}

func mustCreateCategory(t *testing.T, svc *CategoryService, c *model.Category) *model.Category {
	t.Helper()
	if err := svc.Create(context.Background(), c); err != nil {
		t.Fatalf("创建分类 %s 失败: %v", c.Name, err)
	}
	return c
}

// memoryFieldCache 进程内字段缓存，验证失效逻辑用
type memoryFieldCache struct {
	data map[string][]byte
}

func newMemoryFieldCache() *memoryFieldCache {
	return &memoryFieldCache{data: make(map[string][]byte)}
}

func (c *memoryFieldCache) GetJSON(_ context.Context, key string, dest interface{}) bool {
	raw, ok := c.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *memoryFieldCache) SetJSON(_ context.Context, key string, val interface{}) {
	raw, err := json.Marshal(val)
	if err == nil {
		c.data[key] = raw
	}
}

func (c *memoryFieldCache) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		delete(c.data, key)
	}
}

func phoneFields() []model.SpecificationField {
	return []model.SpecificationField{
		{Key: "ram", LabelVi: "RAM", LabelEn: "RAM", Type: model.FieldTypeString, SortOrder: 2},
		{Key: "screen", LabelVi: "Màn hình", LabelEn: "Screen", Type: model.FieldTypeString, SortOrder: 1},
		{Key: "battery", LabelVi: "Pin", LabelEn: "Battery", Type: model.FieldTypeNumber, SortOrder: 3},
	}
}

// ==================== 根分类解析 ====================

func TestGetRootResolvesParentChain(t *testing.T) {
	db := setupCategoryTestDB(t)
	svc := newCategoryTestService(db)
	ctx := context.Background()

	root := mustCreateCategory(t, svc, &model.Category{Name: "Điện thoại", SpecificationFields: phoneFields()})
	child := mustCreateCategory(t, svc, &model.Category{Name: "Smartphone", ParentID: &root.ID})
	grandchild := mustCreateCategory(t, svc, &model.Category{Name: "Gaming Phone", ParentID: &child.ID})

	got, err := svc.GetRoot(ctx, grandchild.ID)
	if err != nil {
		t.Fatalf("解析根分类失败: %v", err)
	}
	if got.ID != root.ID {
		t.Errorf("三级链的根应为 %d, 实际 %d", root.ID, got.ID)
	}

	// 根分类的根是它自己
	got, err = svc.GetRoot(ctx, root.ID)
	if err != nil {
		t.Fatalf("解析根分类失败: %v", err)
	}
	if got.ID != root.ID {
		t.Errorf("根分类的根应为自身 %d, 实际 %d", root.ID, got.ID)
	}
}

func TestResolveRootDetectsCycle(t *testing.T) {
	// 脏数据形成环时应报错而不是死循环
	a := &model.Category{BaseModel: model.BaseModel{ID: 1}}
	b := &model.Category{BaseModel: model.BaseModel{ID: 2}}
	a.ParentID = &b.ID
	b.ParentID = &a.ID

	byID := map[int64]*model.Category{1: a, 2: b}
	_, err := ResolveRoot(a, func(id int64) (*model.Category, error) {
		return byID[id], nil
	})
	if err == nil {
		t.Fatal("父链成环应返回错误")
	}
}

// ==================== 规格字段继承 ====================

func TestEffectiveFieldsInheritFromRoot(t *testing.T) {
	db := setupCategoryTestDB(t)
	svc := newCategoryTestService(db)
	ctx := context.Background()

	root := mustCreateCategory(t, svc, &model.Category{Name: "Điện thoại", SpecificationFields: phoneFields()})
	child := mustCreateCategory(t, svc, &model.Category{Name: "Smartphone", ParentID: &root.ID})
	grandchild := mustCreateCategory(t, svc, &model.Category{Name: "Gaming Phone", ParentID: &child.ID})

	for _, id := range []int64{child.ID, grandchild.ID} {
		fields, err := svc.EffectiveFields(ctx, id)
		if err != nil {
			t.Fatalf("查询有效规格字段失败: %v", err)
		}
		if len(fields) != 3 {
			t.Fatalf("分类 %d 应继承根分类的 3 个字段, 实际 %d", id, len(fields))
		}
		// 按 SortOrder 升序: screen, ram, battery
		if fields[0].Key != "screen" || fields[1].Key != "ram" || fields[2].Key != "battery" {
			t.Errorf("字段应按 sortOrder 排序, 实际 %s/%s/%s", fields[0].Key, fields[1].Key, fields[2].Key)
		}
	}
}

func TestEffectiveFieldsOwnDefinitionWins(t *testing.T) {
	// 自身定义非空时用自身，不与根分类合并
	rootID := int64(1)
	root := &model.Category{
		BaseModel:           model.BaseModel{ID: rootID},
		SpecificationFields: phoneFields(),
	}
	own := &model.Category{
		BaseModel: model.BaseModel{ID: 2},
		ParentID:  &rootID,
		SpecificationFields: []model.SpecificationField{
			{Key: "color", Type: model.FieldTypeString, SortOrder: 1},
		},
	}

	fields, err := EffectiveFieldsOf(own, func(id int64) (*model.Category, error) {
		return root, nil
	})
	if err != nil {
		t.Fatalf("计算有效字段失败: %v", err)
	}
	if len(fields) != 1 || fields[0].Key != "color" {
		t.Errorf("自身定义应优先且不合并根字段, 实际 %v", fields)
	}
}

func TestEffectiveFieldsEmptyRootIsNotError(t *testing.T) {
	db := setupCategoryTestDB(t)
	svc := newCategoryTestService(db)
	ctx := context.Background()

	root := mustCreateCategory(t, svc, &model.Category{Name: "Phụ kiện"})
	child := mustCreateCategory(t, svc, &model.Category{Name: "Cáp sạc", ParentID: &root.ID})

	fields, err := svc.EffectiveFields(ctx, child.ID)
	if err != nil {
		t.Fatalf("根分类无字段定义不应报错: %v", err)
	}
	if len(fields) != 0 {
		t.Errorf("应返回空列表, 实际 %v", fields)
	}
}

func TestRootFieldUpdateInvalidatesDescendantCache(t *testing.T) {
	db := setupCategoryTestDB(t)
	cache := newMemoryFieldCache()
	svc := NewCategoryService(
		repository.NewCategoryRepository(db),
		repository.NewProductRepository(db),
		cache,
	)
	ctx := context.Background()

	root := mustCreateCategory(t, svc, &model.Category{Name: "Điện thoại", SpecificationFields: phoneFields()})
	child := mustCreateCategory(t, svc, &model.Category{Name: "Smartphone", ParentID: &root.ID})
	grandchild := mustCreateCategory(t, svc, &model.Category{Name: "Gaming Phone", ParentID: &child.ID})

	// 预热孙分类缓存
	fields, err := svc.EffectiveFields(ctx, grandchild.ID)
	if err != nil {
		t.Fatalf("查询有效规格字段失败: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("孙分类应继承 3 个字段, 实际 %d", len(fields))
	}

	// 根分类改模板后，隔一层的孙分类不能再读到旧缓存
	updated, err := svc.GetByID(ctx, root.ID)
	if err != nil {
		t.Fatalf("查询根分类失败: %v", err)
	}
	updated.SpecificationFields = []model.SpecificationField{
		{Key: "chip", LabelVi: "Chip", LabelEn: "Chipset", Type: model.FieldTypeString, SortOrder: 1},
	}
	if err := svc.Update(ctx, updated); err != nil {
		t.Fatalf("更新根分类失败: %v", err)
	}

	fields, err = svc.EffectiveFields(ctx, grandchild.ID)
	if err != nil {
		t.Fatalf("查询有效规格字段失败: %v", err)
	}
	if len(fields) != 1 || fields[0].Key != "chip" {
		t.Errorf("孙分类应读到新模板 [chip], 实际 %v", fields)
	}
}

// ==================== CRUD 规则 ====================

func TestCreateRejectsSpecFieldsOnChild(t *testing.T) {
	db := setupCategoryTestDB(t)
	svc := newCategoryTestService(db)
	ctx := context.Background()

	root := mustCreateCategory(t, svc, &model.Category{Name: "Laptop"})
	err := svc.Create(ctx, &model.Category{
		Name:                "Ultrabook",
		ParentID:            &root.ID,
		SpecificationFields: phoneFields(),
	})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("子分类携带规格字段应返回 ErrInvalid, 实际 %v", err)
	}
}

func TestUpdateRejectsSelfParent(t *testing.T) {
	db := setupCategoryTestDB(t)
	svc := newCategoryTestService(db)
	ctx := context.Background()

	cat := mustCreateCategory(t, svc, &model.Category{Name: "Tablet"})
	cat.ParentID = &cat.ID
	err := svc.Update(ctx, cat)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("自引用父级应返回 ErrInvalid, 实际 %v", err)
	}
}

func TestDeleteRejectsNonEmptyCategory(t *testing.T) {
	db := setupCategoryTestDB(t)
	svc := newCategoryTestService(db)
	ctx := context.Background()

	root := mustCreateCategory(t, svc, &model.Category{Name: "Âm thanh"})
	mustCreateCategory(t, svc, &model.Category{Name: "Tai nghe", ParentID: &root.ID})

	if err := svc.Delete(ctx, root.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("有子分类时删除应返回 ErrConflict, 实际 %v", err)
	}
}

func TestSubtreeIDsCoversAllDescendants(t *testing.T) {
	db := setupCategoryTestDB(t)
	svc := newCategoryTestService(db)
	ctx := context.Background()

	root := mustCreateCategory(t, svc, &model.Category{Name: "Gia dụng"})
	c1 := mustCreateCategory(t, svc, &model.Category{Name: "Bếp", ParentID: &root.ID})
	c2 := mustCreateCategory(t, svc, &model.Category{Name: "Dọn dẹp", ParentID: &root.ID})
	c11 := mustCreateCategory(t, svc, &model.Category{Name: "Nồi chiên", ParentID: &c1.ID})

	ids, err := svc.SubtreeIDs(ctx, root.ID)
	if err != nil {
		t.Fatalf("查询子树失败: %v", err)
	}
	want := map[int64]bool{root.ID: true, c1.ID: true, c2.ID: true, c11.ID: true}
	if len(ids) != len(want) {
		t.Fatalf("子树应含 %d 个分类, 实际 %d", len(want), len(ids))
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("子树出现意外分类 %d", id)
		}
	}
}
