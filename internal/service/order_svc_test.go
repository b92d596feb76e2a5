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

func setupOrderTestDB(t *testing.T) *gorm.DB {
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
		&model.User{},
	); err != nil {
		t.Fatalf("迁移表结构失败: %v", err)
	}
	return db
}

type orderTestEnv struct {
	db          *gorm.DB
	orderSvc    *OrderService
	productRepo repository.ProductRepository
	user        *model.User
	product     *model.Product
}

func setupOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()
	db := setupOrderTestDB(t)

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	// publisher/notifier 未配置时均为安全空操作
	orderSvc := NewOrderService(orderRepo, productRepo, nil, nil)

	user := &model.User{
		Name: "Nguyễn Văn A", Email: "a@example.com",
		Role: model.RoleUser, IsEnabled: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}

	category := &model.Category{Name: "Điện thoại", Slug: "dien-thoai"}
	brand := &model.Brand{Name: "Samsung", Slug: "samsung"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("创建测试分类失败: %v", err)
	}
	if err := db.Create(brand).Error; err != nil {
		t.Fatalf("创建测试品牌失败: %v", err)
	}

	product := &model.Product{
		Name: "Galaxy S25", SKU: "SS-S25", Slug: "galaxy-s25",
		Price: 1000, Discount: 10, QuantityInStock: 10,
		IsActive: true, CategoryID: category.ID, BrandID: brand.ID,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("创建测试商品失败: %v", err)
	}

	return &orderTestEnv{
		db: db, orderSvc: orderSvc, productRepo: productRepo,
		user: user, product: product,
	}
}

func (e *orderTestEnv) createOrder(t *testing.T, quantity int) *model.Order {
	t.Helper()
	order, err := e.orderSvc.Create(context.Background(), e.user,
		map[string]interface{}{"city": "Hà Nội", "street": "Phố Huế 1"},
		"COD",
		[]OrderItemInput{{ProductID: e.product.ID, Quantity: quantity}},
	)
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}
	return order
}

// advance 沿合法路径推进订单状态
func (e *orderTestEnv) advance(t *testing.T, orderID int64, statuses ...model.OrderStatus) *model.Order {
	t.Helper()
	var order *model.Order
	var err error
	for _, to := range statuses {
		order, err = e.orderSvc.UpdateStatus(context.Background(), orderID, to, "", e.user.ID)
		if err != nil {
			t.Fatalf("迁移到 %s 失败: %v", to, err)
		}
	}
	return order
}

// ==================== 下单 ====================

func TestCreateOrderSnapshotsAndDeductsStock(t *testing.T) {
	env := setupOrderTestEnv(t)
	order := env.createOrder(t, 3)

	if order.Status != model.OrderStatusPending {
		t.Errorf("新订单状态应为 PENDING, 实际 %s", order.Status)
	}
	// COD 走 COD_PENDING
	if order.PaymentStatus != model.PaymentStatusCODPending {
		t.Errorf("COD 订单支付状态应为 COD_PENDING, 实际 %s", order.PaymentStatus)
	}
	// 折后价 900 * 3
	if order.TotalAmount != 2700 {
		t.Errorf("订单金额应按折后价计算为 2700, 实际 %v", order.TotalAmount)
	}
	if len(order.Items) != 1 || order.Items[0].ProductName != "Galaxy S25" {
		t.Errorf("订单行应快照商品名, 实际 %+v", order.Items)
	}

	product, err := env.productRepo.GetByID(context.Background(), env.product.ID)
	if err != nil {
		t.Fatalf("查询商品失败: %v", err)
	}
	if product.QuantityInStock != 7 || product.QuantitySold != 3 {
		t.Errorf("库存应扣减为 7/已售 3, 实际 %d/%d", product.QuantityInStock, product.QuantitySold)
	}
}

func TestCreateOrderAggregatesDuplicateProductLines(t *testing.T) {
	env := setupOrderTestEnv(t)
	ctx := context.Background()

	// 同一商品拆成两行，合计 12 > 库存 10，整单拒绝
	_, err := env.orderSvc.Create(ctx, env.user,
		map[string]interface{}{"city": "Hà Nội"}, "CARD",
		[]OrderItemInput{
			{ProductID: env.product.ID, Quantity: 6},
			{ProductID: env.product.ID, Quantity: 6},
		},
	)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("同商品多行合计超库存应返回 ErrConflict, 实际 %v", err)
	}
	product, err := env.productRepo.GetByID(ctx, env.product.ID)
	if err != nil {
		t.Fatalf("查询商品失败: %v", err)
	}
	if product.QuantityInStock != 10 || product.QuantitySold != 0 {
		t.Errorf("拒单后库存不应变动, 实际 %d/%d", product.QuantityInStock, product.QuantitySold)
	}

	// 合计 8 ≤ 10 时正常成单，扣减按合计一次完成
	order, err := env.orderSvc.Create(ctx, env.user,
		map[string]interface{}{"city": "Hà Nội"}, "CARD",
		[]OrderItemInput{
			{ProductID: env.product.ID, Quantity: 4},
			{ProductID: env.product.ID, Quantity: 4},
		},
	)
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}
	if len(order.Items) != 2 || order.TotalAmount != 7200 {
		t.Errorf("订单应保留两行且按折后价合计 7200, 实际 %d 行 / %v", len(order.Items), order.TotalAmount)
	}
	product, err = env.productRepo.GetByID(ctx, env.product.ID)
	if err != nil {
		t.Fatalf("查询商品失败: %v", err)
	}
	if product.QuantityInStock != 2 || product.QuantitySold != 8 {
		t.Errorf("库存应扣减为 2/已售 8, 实际 %d/%d", product.QuantityInStock, product.QuantitySold)
	}
}

func TestDeductStockGuardsAgainstOversell(t *testing.T) {
	env := setupOrderTestEnv(t)
	ctx := context.Background()

	if err := env.productRepo.DeductStock(ctx, env.product.ID, 7); err != nil {
		t.Fatalf("扣减失败: %v", err)
	}
	// 余量 3，再扣 7 必须整体拒绝而不是扣成负数
	if err := env.productRepo.DeductStock(ctx, env.product.ID, 7); !errors.Is(err, repository.ErrInsufficientStock) {
		t.Errorf("余量不足应返回 ErrInsufficientStock, 实际 %v", err)
	}
	product, err := env.productRepo.GetByID(ctx, env.product.ID)
	if err != nil {
		t.Fatalf("查询商品失败: %v", err)
	}
	if product.QuantityInStock != 3 || product.QuantitySold != 7 {
		t.Errorf("库存应停在 3/已售 7, 实际 %d/%d", product.QuantityInStock, product.QuantitySold)
	}
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	env := setupOrderTestEnv(t)
	_, err := env.orderSvc.Create(context.Background(), env.user,
		map[string]interface{}{"city": "Hà Nội"}, "CARD",
		[]OrderItemInput{{ProductID: env.product.ID, Quantity: 99}},
	)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("库存不足应返回 ErrConflict, 实际 %v", err)
	}
}

// ==================== 状态机 ====================

func TestStatusOptionsForDeliveredOrder(t *testing.T) {
	env := setupOrderTestEnv(t)
	order := env.createOrder(t, 1)
	env.advance(t, order.ID,
		model.OrderStatusConfirmed, model.OrderStatusProcessing,
		model.OrderStatusShipping, model.OrderStatusDelivered)

	options, err := env.orderSvc.StatusOptions(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("查询状态选项失败: %v", err)
	}
	// DELIVERED 之后既不能取消也不能回退，只能整单退货
	if len(options) != 1 || options[0] != model.OrderStatusFullyReturned {
		t.Errorf("DELIVERED 的可迁移集合应为 [FULLY_RETURNED], 实际 %v", options)
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	env := setupOrderTestEnv(t)
	order := env.createOrder(t, 1)

	// PENDING 不能直接跳到 DELIVERED
	_, err := env.orderSvc.UpdateStatus(context.Background(), order.ID,
		model.OrderStatusDelivered, "", env.user.ID)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("非法迁移应返回 ErrConflict, 实际 %v", err)
	}

	// 终态不可再迁移
	env.advance(t, order.ID, model.OrderStatusCanceled)
	_, err = env.orderSvc.UpdateStatus(context.Background(), order.ID,
		model.OrderStatusConfirmed, "", env.user.ID)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("CANCELED 是终态, 迁移应返回 ErrConflict, 实际 %v", err)
	}
}

func TestUpdateStatusAppendsHistoryAndFollowsItems(t *testing.T) {
	env := setupOrderTestEnv(t)
	order := env.createOrder(t, 2)

	updated := env.advance(t, order.ID, model.OrderStatusConfirmed, model.OrderStatusProcessing)

	if len(updated.StatusHistory) != 2 {
		t.Fatalf("应追加 2 条状态历史, 实际 %d", len(updated.StatusHistory))
	}
	first := updated.StatusHistory[0]
	if first.FromStatus != model.OrderStatusPending || first.ToStatus != model.OrderStatusConfirmed {
		t.Errorf("首条历史应为 PENDING→CONFIRMED, 实际 %s→%s", first.FromStatus, first.ToStatus)
	}
	for _, item := range updated.Items {
		if item.Status != model.ItemStatusProcessing {
			t.Errorf("订单行应跟随整单状态为 PROCESSING, 实际 %s", item.Status)
		}
	}
}

func TestCancelRestoresStock(t *testing.T) {
	env := setupOrderTestEnv(t)
	order := env.createOrder(t, 4)

	env.advance(t, order.ID, model.OrderStatusCanceled)

	product, err := env.productRepo.GetByID(context.Background(), env.product.ID)
	if err != nil {
		t.Fatalf("查询商品失败: %v", err)
	}
	if product.QuantityInStock != 10 || product.QuantitySold != 0 {
		t.Errorf("取消后库存应回补为 10/已售 0, 实际 %d/%d", product.QuantityInStock, product.QuantitySold)
	}
}

// ==================== 支付状态 ====================

func TestPaymentStatusRefundOnlyFromPaid(t *testing.T) {
	env := setupOrderTestEnv(t)
	order := env.createOrder(t, 1)

	// COD_PENDING 不能直接退款
	_, err := env.orderSvc.UpdatePaymentStatus(context.Background(), order.ID, model.PaymentStatusRefunded)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("未支付订单退款应返回 ErrConflict, 实际 %v", err)
	}

	if _, err := env.orderSvc.UpdatePaymentStatus(context.Background(), order.ID, model.PaymentStatusPaid); err != nil {
		t.Fatalf("标记已支付失败: %v", err)
	}
	updated, err := env.orderSvc.UpdatePaymentStatus(context.Background(), order.ID, model.PaymentStatusRefunded)
	if err != nil {
		t.Fatalf("已支付订单退款失败: %v", err)
	}
	if updated.PaymentStatus != model.PaymentStatusRefunded {
		t.Errorf("支付状态应为 REFUNDED, 实际 %s", updated.PaymentStatus)
	}
}

// ==================== 退货 ====================

func TestReturnItemsDerivesOrderStatus(t *testing.T) {
	env := setupOrderTestEnv(t)

	// 两个商品行便于验证部分退货
	product2 := &model.Product{
		Name: "Galaxy Buds", SKU: "SS-BUDS", Slug: "galaxy-buds",
		Price: 100, QuantityInStock: 5, IsActive: true,
		CategoryID: env.product.CategoryID, BrandID: env.product.BrandID,
	}
	if err := env.db.Create(product2).Error; err != nil {
		t.Fatalf("创建测试商品失败: %v", err)
	}

	order, err := env.orderSvc.Create(context.Background(), env.user,
		map[string]interface{}{"city": "Hà Nội"}, "CARD",
		[]OrderItemInput{
			{ProductID: env.product.ID, Quantity: 1},
			{ProductID: product2.ID, Quantity: 2},
		},
	)
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}

	// 未送达不允许退货
	_, err = env.orderSvc.ReturnItems(context.Background(), order.ID,
		[]int64{order.Items[0].ID}, "", env.user.ID)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("未送达订单退货应返回 ErrConflict, 实际 %v", err)
	}

	env.advance(t, order.ID,
		model.OrderStatusConfirmed, model.OrderStatusProcessing,
		model.OrderStatusShipping, model.OrderStatusDelivered)

	// 退第一行 → PARTIALLY_RETURNED
	updated, err := env.orderSvc.ReturnItems(context.Background(), order.ID,
		[]int64{order.Items[0].ID}, "khách đổi ý", env.user.ID)
	if err != nil {
		t.Fatalf("部分退货失败: %v", err)
	}
	if updated.Status != model.OrderStatusPartiallyReturned {
		t.Errorf("部分退货后订单应为 PARTIALLY_RETURNED, 实际 %s", updated.Status)
	}

	// 退第二行 → FULLY_RETURNED，库存回补
	updated, err = env.orderSvc.ReturnItems(context.Background(), order.ID,
		[]int64{order.Items[1].ID}, "", env.user.ID)
	if err != nil {
		t.Fatalf("退货失败: %v", err)
	}
	if updated.Status != model.OrderStatusFullyReturned {
		t.Errorf("全部退货后订单应为 FULLY_RETURNED, 实际 %s", updated.Status)
	}

	p2, err := env.productRepo.GetByID(context.Background(), product2.ID)
	if err != nil {
		t.Fatalf("查询商品失败: %v", err)
	}
	if p2.QuantityInStock != 5 {
		t.Errorf("退货后库存应回补为 5, 实际 %d", p2.QuantityInStock)
	}
}

func TestReturnItemsRejectsForeignItem(t *testing.T) {
	env := setupOrderTestEnv(t)
	order := env.createOrder(t, 1)
	env.advance(t, order.ID,
		model.OrderStatusConfirmed, model.OrderStatusProcessing,
		model.OrderStatusShipping, model.OrderStatusDelivered)

	_, err := env.orderSvc.ReturnItems(context.Background(), order.ID,
		[]int64{order.Items[0].ID, 99999}, "", env.user.ID)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("不属于订单的行应返回 ErrInvalid, 实际 %v", err)
	}
}
