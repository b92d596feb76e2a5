package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"techmart/internal/model"
	"techmart/internal/repository"
)

func setupStatsTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Category{}, &model.Brand{},
		&model.Product{}, &model.ProductImage{},
		&model.Order{}, &model.OrderItem{}, &model.OrderStatusHistory{},
		&model.User{}, &model.StatsSnapshot{},
	); err != nil {
		t.Fatalf("迁移表结构失败: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, number string, amount float64, payment model.PaymentStatus, createdAt time.Time) {
	t.Helper()
	order := &model.Order{
		OrderNumber: number, UserID: 1,
		TotalAmount: amount,
		Status:      model.OrderStatusDelivered, PaymentStatus: payment,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("创建订单失败: %v", err)
	}
	if err := db.Model(order).Update("created_at", createdAt).Error; err != nil {
		t.Fatalf("回填下单时间失败: %v", err)
	}
}

func TestComputeRevenueAggregatesByMonth(t *testing.T) {
	db := setupStatsTestDB(t)
	svc := NewStatsService(repository.NewStatsRepository(db), 5)
	ctx := context.Background()

	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	seedOrder(t, db, "ORD-1", 100, model.PaymentStatusPaid, jan)
	seedOrder(t, db, "ORD-2", 250, model.PaymentStatusPaid, jan)
	seedOrder(t, db, "ORD-3", 400, model.PaymentStatusPaid, feb)
	// 未支付订单不计入营收
	seedOrder(t, db, "ORD-4", 999, model.PaymentStatusPending, feb)

	stats, err := svc.ComputeRevenue(ctx)
	if err != nil {
		t.Fatalf("计算营收失败: %v", err)
	}
	if stats.TotalRevenue != 750 {
		t.Errorf("总营收应为 750, 实际 %v", stats.TotalRevenue)
	}
	if stats.PaidOrders != 3 {
		t.Errorf("已支付订单数应为 3, 实际 %d", stats.PaidOrders)
	}
	if stats.RevenueByMonth["2026-01"] != 350 || stats.RevenueByMonth["2026-02"] != 400 {
		t.Errorf("按月营收错误: %v", stats.RevenueByMonth)
	}
}

func TestComputeProductsCountsStockBuckets(t *testing.T) {
	db := setupStatsTestDB(t)
	svc := NewStatsService(repository.NewStatsRepository(db), 5)
	ctx := context.Background()

	products := []model.Product{
		{Name: "P1", SKU: "P1", Price: 10, QuantityInStock: 0, QuantitySold: 7, IsActive: true, CategoryID: 1, BrandID: 1},
		{Name: "P2", SKU: "P2", Price: 10, QuantityInStock: 3, IsActive: true, IsFeatured: true, CategoryID: 1, BrandID: 1},
		{Name: "P3", SKU: "P3", Price: 10, QuantityInStock: 50, IsActive: false, CategoryID: 1, BrandID: 1},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("创建商品失败: %v", err)
		}
	}

	stats, err := svc.ComputeProducts(ctx)
	if err != nil {
		t.Fatalf("计算商品统计失败: %v", err)
	}
	if stats.Total != 3 || stats.Active != 2 || stats.Featured != 1 {
		t.Errorf("总量统计错误: %+v", stats)
	}
	if stats.OutOfStock != 1 || stats.LowStock != 1 {
		t.Errorf("库存分桶错误: 断货 %d 低库存 %d", stats.OutOfStock, stats.LowStock)
	}
	if stats.TotalSold != 7 || stats.TotalInShop != 53 {
		t.Errorf("数量汇总错误: 已售 %d 在库 %d", stats.TotalSold, stats.TotalInShop)
	}
}

func TestRefreshSnapshotsAndReadBack(t *testing.T) {
	db := setupStatsTestDB(t)
	statsRepo := repository.NewStatsRepository(db)
	svc := NewStatsService(statsRepo, 5)
	ctx := context.Background()

	seedOrder(t, db, "ORD-S1", 120, model.PaymentStatusPaid, time.Now())

	if err := svc.RefreshSnapshots(ctx); err != nil {
		t.Fatalf("刷新快照失败: %v", err)
	}
	snapshot, err := statsRepo.GetSnapshot(ctx, "revenue")
	if err != nil {
		t.Fatalf("快照应已写入: %v", err)
	}
	if len(snapshot.Payload) == 0 {
		t.Fatal("快照内容为空")
	}

	// 读取走快照：即使后续再落一单，重算前结果不变
	seedOrder(t, db, "ORD-S2", 999, model.PaymentStatusPaid, time.Now())
	stats, err := svc.Revenue(ctx)
	if err != nil {
		t.Fatalf("读取营收失败: %v", err)
	}
	if stats.TotalRevenue != 120 {
		t.Errorf("快照读取应返回刷新时的 120, 实际 %v", stats.TotalRevenue)
	}

	// 重算后看到新订单
	if err := svc.RefreshSnapshots(ctx); err != nil {
		t.Fatalf("刷新快照失败: %v", err)
	}
	stats, err = svc.Revenue(ctx)
	if err != nil {
		t.Fatalf("读取营收失败: %v", err)
	}
	if stats.TotalRevenue != 1119 {
		t.Errorf("重算后总营收应为 1119, 实际 %v", stats.TotalRevenue)
	}
}
