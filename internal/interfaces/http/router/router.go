package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stockflows/backend/internal/domain/identity"
	"github.com/stockflows/backend/internal/infrastructure/auth"
	"github.com/stockflows/backend/internal/infrastructure/config"
	"github.com/stockflows/backend/internal/infrastructure/logger"
	"github.com/stockflows/backend/internal/interfaces/http/handler"
	"github.com/stockflows/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers collects the route handlers the router mounts
type Handlers struct {
	System        *handler.SystemHandler
	Auth          *handler.AuthHandler
	Org           *handler.OrgHandler
	User          *handler.UserHandler
	Category      *handler.CategoryHandler
	Product       *handler.ProductHandler
	Supplier      *handler.SupplierHandler
	Customer      *handler.CustomerHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	SalesOrder    *handler.SalesOrderHandler
	Return        *handler.ReturnHandler
	Inventory     *handler.InventoryHandler
	Report        *handler.ReportHandler
	Document      *handler.DocumentHandler
}

// Config holds the router's cross-cutting dependencies
type Config struct {
	JWTService *auth.JWTService
	Revoker    auth.TokenRevoker
	CookieName string
	Logger     *zap.Logger
	HTTP       *config.HTTPConfig
}

// New builds the gin engine with all routes mounted under /api/v1
func New(cfg Config, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)

	if cfg.HTTP != nil {
		if len(cfg.HTTP.TrustedProxies) > 0 {
			if err := r.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
				log.Warn("Failed to set trusted proxies", zap.Error(err))
			}
		}
		if len(cfg.HTTP.CORSAllowOrigins) > 0 {
			corsConfig := cors.Config{
				AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
				AllowMethods:     cfg.HTTP.CORSAllowMethods,
				AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
				ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			}
			r.Use(cors.New(corsConfig))
		}
		if cfg.HTTP.MaxBodySize > 0 {
			r.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
		}
	}

	v1 := r.Group("/api/v1")
	v1.GET("/health", h.System.Health)

	session := middleware.SessionAuth(middleware.SessionAuthConfig{
		JWTService: cfg.JWTService,
		Revoker:    cfg.Revoker,
		CookieName: cfg.CookieName,
		Logger:     log,
	})
	scoped := middleware.ResolveContext()

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", session, h.Auth.Logout)
		authGroup.GET("/me", session, h.Auth.Me)
		authGroup.POST("/switch-org", session, h.Auth.SwitchOrg)
		authGroup.POST("/switch-branch", session, h.Auth.SwitchBranch)
	}

	api := v1.Group("", session, scoped)

	orgs := api.Group("/orgs", middleware.RequirePermission(identity.PermOrgManage))
	{
		orgs.POST("", h.Org.CreateOrg)
		orgs.GET("", h.Org.ListOrgs)
		orgs.GET("/:id", h.Org.GetOrg)
		orgs.PUT("/:id", h.Org.UpdateOrg)
		orgs.POST("/:id/suspend", h.Org.SuspendOrg)
		orgs.POST("/:id/activate", h.Org.ActivateOrg)
	}

	branches := api.Group("/branches", middleware.RequirePermission(identity.PermBranchManage))
	{
		branches.POST("", h.Org.CreateBranch)
		branches.GET("", h.Org.ListBranches)
		branches.GET("/:id", h.Org.GetBranch)
		branches.PUT("/:id", h.Org.UpdateBranch)
		branches.DELETE("/:id", h.Org.DeactivateBranch)
	}

	users := api.Group("/users", middleware.RequirePermission(identity.PermUserManage))
	{
		users.POST("", h.User.Create)
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id", h.User.Update)
		users.POST("/:id/reset-password", h.User.ResetPassword)
		users.POST("/:id/activate", h.User.Activate)
		users.DELETE("/:id", h.User.Deactivate)
	}

	categories := api.Group("/categories")
	{
		read := middleware.RequirePermission(identity.PermCatalogRead)
		write := middleware.RequirePermission(identity.PermCatalogWrite)
		categories.GET("", read, h.Category.List)
		categories.GET("/tree", read, h.Category.Tree)
		categories.GET("/:id", read, h.Category.Get)
		categories.POST("", write, h.Category.Create)
		categories.PUT("/:id", write, h.Category.Update)
		categories.POST("/:id/move", write, h.Category.Move)
		categories.POST("/reorder", write, h.Category.Reorder)
		categories.DELETE("/:id", write, h.Category.Delete)
	}

	products := api.Group("/products")
	{
		read := middleware.RequirePermission(identity.PermCatalogRead)
		write := middleware.RequirePermission(identity.PermCatalogWrite)
		products.GET("", read, h.Product.List)
		products.GET("/:id", read, h.Product.Get)
		products.POST("", write, h.Product.Create)
		products.PUT("/:id", write, h.Product.Update)
		products.POST("/:id/discontinue", write, h.Product.Discontinue)
		products.DELETE("/:id", write, h.Product.Delete)
	}

	suppliers := api.Group("/suppliers", middleware.RequirePermission(identity.PermPurchaseWrite))
	{
		suppliers.POST("", h.Supplier.Create)
		suppliers.GET("", h.Supplier.List)
		suppliers.GET("/:id", h.Supplier.Get)
		suppliers.PUT("/:id", h.Supplier.Update)
		suppliers.DELETE("/:id", h.Supplier.Deactivate)
	}

	customers := api.Group("/customers", middleware.RequirePermission(identity.PermOrderWrite))
	{
		customers.POST("", h.Customer.Create)
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Deactivate)
	}

	purchaseOrders := api.Group("/purchase-orders")
	{
		read := middleware.RequirePermission(identity.PermPurchaseRead)
		write := middleware.RequirePermission(identity.PermPurchaseWrite)
		receive := middleware.RequirePermission(identity.PermPurchaseReceive)
		purchaseOrders.GET("", read, h.PurchaseOrder.List)
		purchaseOrders.GET("/:id", read, h.PurchaseOrder.Get)
		purchaseOrders.POST("", write, h.PurchaseOrder.Create)
		purchaseOrders.PUT("/:id", write, h.PurchaseOrder.Update)
		purchaseOrders.POST("/:id/submit", write, h.PurchaseOrder.Submit)
		purchaseOrders.POST("/:id/receive", receive, h.PurchaseOrder.Receive)
		purchaseOrders.POST("/:id/payment", write, h.PurchaseOrder.Payment)
		purchaseOrders.POST("/:id/cancel", write, h.PurchaseOrder.Cancel)
		purchaseOrders.DELETE("/:id", write, h.PurchaseOrder.Delete)
	}

	orders := api.Group("/orders")
	{
		read := middleware.RequirePermission(identity.PermOrderRead)
		write := middleware.RequirePermission(identity.PermOrderWrite)
		orders.GET("", read, h.SalesOrder.List)
		orders.GET("/:id", read, h.SalesOrder.Get)
		orders.POST("", write, h.SalesOrder.Create)
		orders.POST("/:id/ship", write, h.SalesOrder.Ship)
		orders.POST("/:id/complete", write, h.SalesOrder.Complete)
		orders.POST("/:id/cancel", write, h.SalesOrder.Cancel)
	}

	returns := api.Group("/returns")
	{
		read := middleware.RequirePermission(identity.PermReturnRead)
		write := middleware.RequirePermission(identity.PermReturnWrite)
		approve := middleware.RequirePermission(identity.PermReturnApprove)
		returns.GET("", read, h.Return.List)
		returns.GET("/:id", read, h.Return.Get)
		returns.POST("", write, h.Return.Create)
		returns.POST("/:id/approve", approve, h.Return.Approve)
		returns.POST("/:id/reject", approve, h.Return.Reject)
		returns.POST("/:id/receive", write, h.Return.Receive)
		returns.POST("/:id/ship", write, h.Return.Ship)
		returns.POST("/:id/complete", write, h.Return.Complete)
		returns.POST("/:id/cancel", write, h.Return.Cancel)
	}

	inventoryGroup := api.Group("/inventory")
	{
		read := middleware.RequirePermission(identity.PermInventoryRead)
		adjust := middleware.RequirePermission(identity.PermInventoryAdjust)
		inventoryGroup.GET("/levels", read, h.Inventory.Levels)
		inventoryGroup.GET("/movements", read, h.Inventory.Movements)
		inventoryGroup.GET("/low-stock", read, h.Inventory.LowStock)
		inventoryGroup.POST("/adjust", adjust, h.Inventory.Adjust)
		inventoryGroup.POST("/min-stock", adjust, h.Inventory.SetMinStock)
	}

	reports := api.Group("/reports", middleware.RequirePermission(identity.PermReportRead))
	{
		reports.GET("/sales", h.Report.Sales)
		reports.GET("/inventory", h.Report.Inventory)
		reports.GET("/low-stock", h.Report.LowStock)
	}

	documents := api.Group("/documents", middleware.RequirePermission(identity.PermDocumentRead))
	{
		documents.GET("/invoices/:orderID", h.Document.Invoice)
		documents.GET("/receipts/:orderID", h.Document.Receipt)
	}

	return r
}
