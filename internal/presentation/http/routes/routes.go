package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/fiscal-pos/internal/config"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/handler"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/middleware"
	"github.com/sangkips/fiscal-pos/pkg/logger"
	"github.com/sangkips/fiscal-pos/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Catalog *handler.CatalogHandler
	Session *handler.SessionHandler
	Order   *handler.OrderHandler
	Ledger  *handler.LedgerHandler
	Fiscal  *handler.FiscalHandler
	Printer *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Managers        middleware.ManagerVerifier
	Log             *logger.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "ok",
			"service":  deps.Cfg.App.Name,
			"terminal": deps.Cfg.POS.TerminalID,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFrom(&deps.Cfg.RateLimit))
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/auth/me", h.Auth.Me)

	registerUserRoutes(protected, h)
	registerCatalogRoutes(protected, h)
	registerSessionRoutes(protected, h, deps)
	registerOrderRoutes(protected, h, deps)
	registerLedgerRoutes(protected, h, deps)
	registerFiscalRoutes(protected, h, deps)
	registerPrinterRoutes(protected, h)
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	users := protected.Group("/users")
	users.Use(middleware.RequireRole(entity.RoleAdmin))
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.GET("/:id", h.User.Get)
		users.PATCH("/:id/active", h.User.SetActive)
	}
}

func registerCatalogRoutes(protected *gin.RouterGroup, h *Handlers) {
	catalog := protected.Group("/catalog")
	{
		catalog.GET("/items", h.Catalog.ListItems)
		catalog.GET("/items/:id", h.Catalog.GetItem)
		catalog.GET("/promos", h.Catalog.ListPromos)

		manage := catalog.Group("")
		manage.Use(middleware.RequirePermission(entity.PermissionManageItems))
		manage.POST("/items", h.Catalog.CreateItem)
		manage.PUT("/items/:id", h.Catalog.UpdateItem)
		manage.PUT("/promos", h.Catalog.SavePromo)
	}
}

func registerSessionRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	sessions := protected.Group("/sessions")
	sessions.Use(middleware.RequirePermission(entity.PermissionSell))
	{
		sessions.POST("", h.Session.Open)
		sessions.GET("/:id", h.Session.Get)
		sessions.POST("/:id/close", h.Session.Close)

		sessions.POST("/:id/entries", h.Session.AddEntry)
		sessions.PATCH("/:id/entries/:entryNo", h.Session.EditEntry)
		sessions.POST("/:id/entries/:entryNo/void", middleware.ManagerOverride(deps.Managers), h.Session.VoidEntry)
		sessions.PUT("/:id/order-type", h.Session.SetOrderType)

		discounts := sessions.Group("/:id/discounts")
		discounts.Use(middleware.RequirePermission(entity.PermissionDiscount))
		discounts.POST("/senior", h.Session.ApplySenior)
		discounts.POST("/promo", h.Session.ApplyPromo)
		discounts.POST("/coupon", h.Session.ApplyCoupon)
		discounts.POST("/other", h.Session.ApplyOther)
		discounts.DELETE("", h.Session.ClearDiscount)

		sessions.PUT("/:id/tender/cash", h.Session.SetCash)
		sessions.POST("/:id/tender/payments", h.Session.AddPayment)
		sessions.POST("/:id/tender/exact", h.Session.ExactAmount)
		sessions.DELETE("/:id/tender", h.Session.ClearTender)

		// A retried finalize replays the first response instead of
		// allocating a second invoice number
		sessions.POST("/:id/finalize", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			TTL:  deps.Cfg.POS.IdempotencyTTL,
			Log:  deps.Log,
		}), h.Session.Finalize)
	}
}

func registerOrderRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	orders := protected.Group("/orders")
	orders.Use(middleware.RequirePermission(entity.PermissionSell))
	{
		orders.GET("", h.Order.List)
		orders.GET("/invoice/:invoiceNo", h.Order.GetByInvoice)
		orders.GET("/:id", h.Order.Get)
		orders.GET("/:id/ledger", h.Order.Ledger)

		compensate := orders.Group("")
		compensate.Use(middleware.ManagerOverride(deps.Managers))
		compensate.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			TTL:  deps.Cfg.POS.IdempotencyTTL,
			Log:  deps.Log,
		}))
		compensate.POST("/:id/void", h.Order.Void)
		compensate.POST("/:id/refund", h.Order.Refund)
	}
}

func registerLedgerRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	ledger := protected.Group("/ledger")
	ledger.Use(middleware.RequirePermission(entity.PermissionSell))
	{
		ledger.GET("", h.Ledger.List)
		ledger.POST("/:id/unpost", middleware.ManagerOverride(deps.Managers), h.Ledger.Unpost)
	}
}

func registerFiscalRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	fiscal := protected.Group("/fiscal")
	{
		fiscal.GET("/status", middleware.RequirePermission(entity.PermissionXReading), h.Fiscal.Status)
		fiscal.POST("/x-reading", middleware.RequirePermission(entity.PermissionXReading), h.Fiscal.XReading)

		// Manager-approved operations: a manager's own token or a
		// cashier's token with override headers
		approved := fiscal.Group("")
		approved.Use(middleware.ManagerOverride(deps.Managers))
		approved.POST("/z-reading", h.Fiscal.ZReading)
		approved.POST("/withdrawals", h.Fiscal.RecordWithdrawal)

		fiscal.GET("/z-readings", middleware.RequirePermission(entity.PermissionZReading), h.Fiscal.ListZReadings)
		fiscal.GET("/z-readings/:id", middleware.RequirePermission(entity.PermissionZReading), h.Fiscal.GetZReading)

		fiscal.POST("/reset", middleware.RequirePermission(entity.PermissionResetCounter), h.Fiscal.ResetCounter)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printer := protected.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/receipt", middleware.RequirePermission(entity.PermissionSell), h.Printer.PrintReceipt)
		printer.POST("/z-readings/:id", middleware.RequirePermission(entity.PermissionZReading), h.Printer.ReprintZReading)
	}
}
