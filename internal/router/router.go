package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"techmart/internal/controller"
	"techmart/internal/middleware"
	"techmart/internal/model"
)

// Controllers 路由需要的全部控制器
type Controllers struct {
	Auth     *controller.AuthController
	Category *controller.CategoryController
	Brand    *controller.BrandController
	Product  *controller.ProductController
	Order    *controller.OrderController
	User     *controller.UserController
	Stats    *controller.StatsController
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctl *Controllers, uploadsDir string) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. 本地存储模式下的静态图片
	if uploadsDir != "" {
		r.Static("/uploads", uploadsDir)
	}

	// 3. API 路由组
	api := r.Group("/api")
	{
		// auth 鉴权组
		auth := api.Group("/auth")
		{
			auth.POST("/login", ctl.Auth.Login)
			auth.POST("/register", ctl.Auth.Register)
			auth.GET("/me", middleware.AuthRequired(), ctl.Auth.Me)
			auth.PUT("/me", middleware.AuthRequired(), ctl.Auth.UpdateProfile)
		}

		// 门店公开接口
		categories := api.Group("/categories")
		{
			categories.GET("", ctl.Category.List)
			categories.GET("/:id", ctl.Category.Get)
			categories.GET("/:id/root", ctl.Category.GetRoot)
			categories.GET("/:id/specification-fields", ctl.Category.EffectiveFields)
			categories.GET("/parent/:id", ctl.Category.ListChildren)
		}
		brands := api.Group("/brands")
		{
			brands.GET("", ctl.Brand.List)
			brands.GET("/category/:id", ctl.Brand.ListByCategory)
		}
		products := api.Group("/products")
		{
			products.GET("", ctl.Product.StorefrontList)
			products.GET("/:id", ctl.Product.Get)
		}

		// 订单（登录用户）
		orders := api.Group("/orders", middleware.AuthRequired())
		{
			orders.POST("", ctl.Order.Create)
			orders.GET("/my", ctl.Order.MyOrders)
			orders.GET("/:id", ctl.Order.Get)
		}

		// 管理端
		admin := api.Group("/admin", middleware.AuthRequired())
		{
			// 目录维护：商品员
			catalog := admin.Group("", middleware.RequireRoles(model.RoleProductStaff))
			{
				catalog.POST("/categories", ctl.Category.Create)
				catalog.PUT("/categories/:id", ctl.Category.Update)
				catalog.DELETE("/categories/:id", ctl.Category.Delete)

				catalog.POST("/brands", ctl.Brand.Create)
				catalog.PUT("/brands/:id", ctl.Brand.Update)
				catalog.DELETE("/brands/:id", ctl.Brand.Delete)

				catalog.GET("/products", ctl.Product.AdminList)
				catalog.GET("/products/all", ctl.Product.ListAll)
				catalog.GET("/products/spec-suggestions", ctl.Product.SpecSuggestions)
				catalog.POST("/products", ctl.Product.Create)
				catalog.PUT("/products/:id", ctl.Product.Update)
				catalog.DELETE("/products/:id", ctl.Product.Delete)
				catalog.POST("/products/:id/images", ctl.Product.UploadImage)
				catalog.PUT("/products/:id/images/main", ctl.Product.SetMainImage)
				catalog.DELETE("/products/:id/images/:imageId", ctl.Product.DeleteImage)
			}

			// 订单处理：订单员
			orderAdmin := admin.Group("/orders", middleware.RequireRoles(model.RoleOrderStaff))
			{
				orderAdmin.GET("", ctl.Order.AdminList)
				orderAdmin.GET("/:id/status-options", ctl.Order.StatusOptions)
				orderAdmin.PUT("/:id/status", ctl.Order.UpdateStatus)
				orderAdmin.PUT("/:id/payment-status", ctl.Order.UpdatePaymentStatus)
				orderAdmin.POST("/:id/returns", ctl.Order.ReturnItems)
			}

			// 账号管理与报表：仅经理
			manager := admin.Group("", middleware.RequireRoles(model.RoleManager))
			{
				manager.GET("/users", ctl.User.List)
				manager.GET("/users/:id", ctl.User.Get)
				manager.PUT("/users/:id/status", ctl.User.UpdateStatus)
				manager.PUT("/users/:id/role", ctl.User.UpdateRole)

				manager.GET("/statistics/revenue", ctl.Stats.Revenue)
				manager.GET("/statistics/products", ctl.Stats.Products)
				manager.GET("/statistics/users", ctl.Stats.Users)
				manager.GET("/statistics/orders", ctl.Stats.Orders)
			}
		}
	}
}
