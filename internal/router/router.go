package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"retailpos/internal/config"
	"retailpos/internal/handler"
	"retailpos/internal/infra"
	"retailpos/internal/middleware"
	"retailpos/internal/repository"
	"retailpos/internal/service"
	"retailpos/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
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

	// ── Infrastructure ───────────────────────────────────────────────────────
	pdfRenderer := infra.NewInvoiceRenderer(cfg.PDFStoragePath)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	registerRepo := repository.NewRegisterRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	auditSvc := service.NewAuditService(auditRepo, dispatcher)
	authSvc := service.NewAuthService(userRepo, auditSvc, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.JWTRefreshHours)
	userSvc := service.NewUserService(userRepo)
	sessionSvc := service.NewSessionService(sessionRepo, registerRepo, auditSvc)
	registerSvc := service.NewRegisterService(registerRepo, sessionSvc)
	stockSvc := service.NewStockService(productRepo, auditSvc)
	customerSvc := service.NewCustomerService(customerRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, orderRepo, customerRepo, auditSvc, pdfRenderer, dispatcher, cfg.InvoicePrefix, cfg.InvoiceDueDays)
	orderSvc := service.NewOrderService(orderRepo, sessionRepo, productRepo, sessionSvc, customerSvc, invoiceSvc, auditSvc, cfg.TaxRatePct, cfg.OrderPrefix)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	registerH := handler.NewRegisterHandler(registerSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	productH := handler.NewProductHandler(stockSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	customerH := handler.NewCustomerHandler(customerSvc)
	auditH := handler.NewAuditHandler(auditSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Shop checkout (public storefront)
	shop := r.Group("/v1/shop")
	{
		shop.POST("/orders", orderH.CreateShop)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	staff := middleware.RequireRole("cashier", "supervisor", "admin")
	senior := middleware.RequireRole("supervisor", "admin")
	v1 := r.Group("/v1", jwtMW)
	{
		regs := v1.Group("/registers")
		{
			regs.GET("", staff, registerH.List)
			regs.GET("/:id", staff, registerH.Get)
			regs.POST("", middleware.RequireRole("admin"), registerH.Create)
			regs.PATCH("/:id", middleware.RequireRole("admin"), registerH.Update)
			regs.DELETE("/:id", middleware.RequireRole("admin"), registerH.Delete)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", staff, sessionH.Open)
			sessions.GET("", senior, sessionH.List)
			sessions.GET("/daily-summary", senior, sessionH.DailySummary)
			sessions.GET("/:id", staff, sessionH.Get)
			sessions.GET("/:id/summary", staff, sessionH.Summary)
			sessions.POST("/:id/close", staff, sessionH.Close)
			sessions.POST("/:id/suspend", staff, sessionH.Suspend)
			sessions.POST("/:id/resume", staff, sessionH.Resume)
			sessions.POST("/:id/cash-in", staff, sessionH.CashIn)
			sessions.POST("/:id/cash-out", senior, sessionH.CashOut)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("/pos", staff, orderH.CreatePos)
			orders.GET("", staff, orderH.List)
			orders.GET("/:id", staff, orderH.Get)
		}

		invoices := v1.Group("/invoices")
		{
			invoices.POST("/from-order/:orderId", staff, invoiceH.GenerateFromOrder)
			invoices.GET("/by-order/:orderId", staff, invoiceH.GetByOrder)
			invoices.GET("", staff, invoiceH.List)
			invoices.GET("/stats", senior, invoiceH.Stats)
			invoices.POST("/check-overdue", senior, invoiceH.CheckOverdue)
			invoices.GET("/:id", staff, invoiceH.Get)
			invoices.GET("/:id/pdf", staff, invoiceH.DownloadPDF)
			invoices.POST("/:id/send", staff, invoiceH.Send)
			invoices.PATCH("/:id/status", senior, invoiceH.UpdateStatus)
		}

		products := v1.Group("/products")
		{
			products.GET("/:id", staff, productH.Get)
			products.POST("/:id/stock", senior, productH.AdjustStock)
			products.POST("/variants/:id/stock", senior, productH.AdjustVariantStock)
		}

		customers := v1.Group("/customers")
		{
			customers.POST("/find-or-create", staff, customerH.FindOrCreate)
			customers.GET("/:id", staff, customerH.Get)
			customers.POST("/:id/loyalty", senior, customerH.AdjustLoyalty)
		}

		v1.GET("/audit", senior, auditH.List)

		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", userH.Create)
			users.GET("", userH.List)
			users.GET("/:id", userH.Get)
			users.PUT("/:id", userH.Update)
			users.DELETE("/:id", userH.Deactivate)
			users.PATCH("/:id/reactivate", userH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
