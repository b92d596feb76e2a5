package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"techmart/internal/config"
	"techmart/internal/controller"
	"techmart/internal/middleware"
	"techmart/internal/model"
	"techmart/internal/repository"
	"techmart/internal/router"
	"techmart/internal/service"
	"techmart/internal/task"
	"techmart/pkg/database"
	"techmart/pkg/logger"
)

func main() {
	// 1. 加载配置与日志
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(cfg, db)
	defer deps.Close()

	// 4. 启动定时任务
	initTasks(deps)

	// 5. 初始化路由
	gin.SetMode(ginMode(cfg.Server.Mode))
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLog())

	uploadsDir := ""
	if cfg.Storage.Provider == "local" {
		uploadsDir = cfg.Storage.LocalDir
	}
	router.InitRoutes(r, deps.Controllers, uploadsDir)

	// 6. 启动服务
	startServer(r, cfg, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	Tasks       *task.TaskManager

	publisher *service.OrderEventPublisher
}

// Repositories 仓库集合
type Repositories struct {
	Category repository.CategoryRepository
	Brand    repository.BrandRepository
	Product  repository.ProductRepository
	Order    repository.OrderRepository
	User     repository.UserRepository
	Stats    repository.StatsRepository
}

// Services 服务集合
type Services struct {
	Auth     *service.AuthService
	User     *service.UserService
	Category *service.CategoryService
	Brand    *service.BrandService
	Product  *service.ProductService
	Order    *service.OrderService
	Stats    *service.StatsService
	Storage  *service.StorageService
	Notifier *service.WebhookNotifier
}

// Close 释放外部连接
func (d *Dependencies) Close() {
	if d.publisher != nil {
		d.publisher.Close()
	}
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库并迁移表结构
func initDatabase(cfg *config.Config) *gorm.DB {
	db, err := database.InitDB(cfg.Database.DSN,
		// 目录
		&model.Category{}, &model.Brand{},
		&model.Product{}, &model.ProductImage{},
		// 订单
		&model.Order{}, &model.OrderItem{}, &model.OrderStatusHistory{},
		// 账号
		&model.User{},
		// 报表
		&model.StatsSnapshot{},
	)
	if err != nil {
		logger.L.Fatal("数据库初始化失败", zap.Error(err))
	}
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Category: repository.NewCategoryRepository(db),
		Brand:    repository.NewBrandRepository(db),
		Product:  repository.NewProductRepository(db),
		Order:    repository.NewOrderRepository(db),
		User:     repository.NewUserRepository(db),
		Stats:    repository.NewStatsRepository(db),
	}

	// -------- 基础设施 --------
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:      cfg.JWT.SecretKey,
		AccessTokenTTL: cfg.JWT.AccessTokenTTL,
		Issuer:         cfg.JWT.Issuer,
	})

	cache := service.NewCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)

	publisher, err := service.NewOrderEventPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		logger.L.Fatal("消息队列初始化失败", zap.Error(err))
	}

	notifier := service.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout)

	storageSvc, err := service.NewStorageService(&service.StorageConfig{
		Provider:  cfg.Storage.Provider,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		CDNDomain: cfg.Storage.CDNDomain,
		BasePath:  cfg.Storage.BasePath,
		LocalDir:  cfg.Storage.LocalDir,
		LocalURL:  cfg.Storage.LocalURL,
	})
	if err != nil {
		logger.L.Fatal("存储初始化失败", zap.Error(err))
	}

	// -------- 业务服务 --------
	services := &Services{Storage: storageSvc, Notifier: notifier}
	services.Category = service.NewCategoryService(repos.Category, repos.Product, cache)
	services.Brand = service.NewBrandService(repos.Brand, repos.Product, services.Category)
	services.Product = service.NewProductService(repos.Product, repos.Brand, services.Category, storageSvc, cache)
	services.Order = service.NewOrderService(repos.Order, repos.Product, publisher, notifier)
	services.Auth = service.NewAuthService(repos.User)
	services.User = service.NewUserService(repos.User)
	services.Stats = service.NewStatsService(repos.Stats, cfg.Webhook.LowStockThreshold)

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth:     controller.NewAuthController(services.Auth, services.User),
		Category: controller.NewCategoryController(services.Category),
		Brand:    controller.NewBrandController(services.Brand),
		Product:  controller.NewProductController(services.Product),
		Order:    controller.NewOrderController(services.Order, services.User),
		User:     controller.NewUserController(services.User),
		Stats:    controller.NewStatsController(services.Stats),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		publisher:   publisher,
	}
}

// initTasks 启动定时任务
func initTasks(deps *Dependencies) {
	deps.Tasks = task.NewTaskManager(&task.TaskManagerDeps{
		StatsService: deps.Services.Stats,
		Notifier:     deps.Services.Notifier,
	}, task.DefaultConfig())
	deps.Tasks.Start()
}

// startServer 启动服务
func startServer(r *gin.Engine, cfg *config.Config, deps *Dependencies) {
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		logger.L.Info("服务启动", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L.Info("正在关闭服务...")
	if deps.Tasks != nil {
		deps.Tasks.Stop()
	}

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L.Fatal("服务强制关闭", zap.Error(err))
	}

	logger.L.Info("服务已退出")
}

func ginMode(mode string) string {
	if mode == "release" {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}
