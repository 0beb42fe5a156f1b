package router

import (
	"time"

	"tillpos/internal/config"
	"tillpos/internal/handler"
	"tillpos/internal/infra"
	"tillpos/internal/middleware"
	"tillpos/internal/repository"
	"tillpos/internal/service"
	"tillpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, notifier *infra.SaleNotifier, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	registerRepo := repository.NewRegisterRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, rdb)
	registerSvc := service.NewRegisterService(registerRepo)
	commissionSvc := service.NewCommissionService(commissionRepo)
	checkoutSvc := service.NewCheckoutService(
		saleRepo, registerRepo, productRepo, customerRepo, userRepo,
		commissionRepo, registerSvc, dispatcher, cfg.StoreName,
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	registersH := handler.NewRegistersHandler(registerSvc)
	salesH := handler.NewSalesHandler(checkoutSvc)
	commissionsH := handler.NewCommissionsHandler(commissionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, notifier))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required, terminals poll it between sales
	r.GET("/v1/price/:code", productsH.PriceByCode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cashier, supervisor, admin — declared per-endpoint
		v1.POST("/sales", middleware.RequireRole("cashier", "supervisor", "admin"), salesH.Settle)
		v1.GET("/sales", middleware.RequireRole("cashier", "supervisor", "admin"), salesH.List)
		v1.GET("/sales/:id", middleware.RequireRole("cashier", "supervisor", "admin"), salesH.Get)
		v1.DELETE("/sales/:id", middleware.RequireRole("supervisor", "admin"), salesH.Cancel)

		reg := v1.Group("/registers")
		{
			reg.POST("/open", middleware.RequireRole("cashier", "supervisor", "admin"), registersH.Open)
			reg.POST("/close", middleware.RequireRole("cashier", "supervisor", "admin"), registersH.Close)
			reg.POST("/movements", middleware.RequireRole("cashier", "supervisor", "admin"), registersH.RecordMovement)
			reg.GET("/active", middleware.RequireRole("cashier", "supervisor", "admin"), registersH.Active)
			reg.GET("/:id/report", middleware.RequireRole("cashier", "supervisor", "admin"), registersH.Report)
			reg.GET("/history", middleware.RequireRole("supervisor", "admin"), registersH.History)
		}

		comm := v1.Group("/commissions", middleware.RequireRole("supervisor", "admin"))
		{
			comm.GET("", commissionsH.List)
			comm.POST("/:id/pay", commissionsH.Pay)
			comm.POST("/pay-batch", commissionsH.PayBatch)
		}

		// Catalog is read-only here; maintenance lives in the back office
		v1.GET("/products", middleware.RequireRole("cashier", "supervisor", "admin"), productsH.List)

		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
