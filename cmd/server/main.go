package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/stockflows/backend/internal/application/catalog"
	documentapp "github.com/stockflows/backend/internal/application/document"
	identityapp "github.com/stockflows/backend/internal/application/identity"
	inventoryapp "github.com/stockflows/backend/internal/application/inventory"
	partnerapp "github.com/stockflows/backend/internal/application/partner"
	reportapp "github.com/stockflows/backend/internal/application/report"
	tradeapp "github.com/stockflows/backend/internal/application/trade"
	"github.com/stockflows/backend/internal/infrastructure/auth"
	"github.com/stockflows/backend/internal/infrastructure/cache"
	"github.com/stockflows/backend/internal/infrastructure/config"
	"github.com/stockflows/backend/internal/infrastructure/event"
	"github.com/stockflows/backend/internal/infrastructure/logger"
	"github.com/stockflows/backend/internal/infrastructure/persistence"
	"github.com/stockflows/backend/internal/interfaces/http/handler"
	"github.com/stockflows/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is stamped at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Stockflows backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Redis is optional. Without it the service runs with in-memory token
	// revocation, no stock level cache and unserialized return creation,
	// which is only safe for a single instance.
	var (
		revoker    auth.TokenRevoker
		levelCache inventoryapp.LevelCache
		locker     tradeapp.SourceLocker
	)
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-process state", zap.Error(err))
		revoker = auth.NewInMemoryTokenRevoker()
	} else {
		defer func() {
			_ = redisClient.Close()
		}()
		revoker = auth.NewRedisTokenRevoker(redisClient)
		levelCache = cache.NewStockCache(redisClient, cache.WithStockLogger(log))
		locker = cache.NewReturnLocker(redisClient, cfg.Lock)
		log.Info("Redis connected")
	}

	// Repositories
	orgRepo := persistence.NewGormOrgRepository(db.DB)
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	stockLevelRepo := persistence.NewGormStockLevelRepository(db.DB)
	stockMovementRepo := persistence.NewGormStockMovementRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	salesOrderRepo := persistence.NewGormSalesOrderRepository(db.DB)
	returnRepo := persistence.NewGormReturnRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	salesReportRepo := persistence.NewGormSalesReportRepository(db.DB)
	inventoryReportRepo := persistence.NewGormInventoryReportRepository(db.DB)

	eventBus := event.NewInMemoryEventBus(log)
	jwtService := auth.NewJWTService(cfg.JWT)

	// Application services
	authService := identityapp.NewAuthService(userRepo, orgRepo, branchRepo, jwtService, revoker, log)
	userService := identityapp.NewUserService(userRepo, branchRepo, revoker, cfg.JWT.TokenExpiration, log)
	orgService := identityapp.NewOrgService(orgRepo, branchRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, eventBus, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, eventBus, log)
	supplierService := partnerapp.NewSupplierService(supplierRepo, log)
	customerService := partnerapp.NewCustomerService(customerRepo, log)
	inventoryService := inventoryapp.NewInventoryService(stockLevelRepo, stockMovementRepo, levelCache, log)
	purchaseOrderService := tradeapp.NewPurchaseOrderService(purchaseOrderRepo, supplierRepo, productRepo, eventBus, log)
	salesOrderService := tradeapp.NewSalesOrderService(salesOrderRepo, customerRepo, productRepo, stockLevelRepo, eventBus, log)
	returnService := tradeapp.NewReturnService(returnRepo, purchaseOrderRepo, salesOrderRepo, locker, eventBus, log)
	reportService := reportapp.NewReportService(salesReportRepo, inventoryReportRepo, log)
	documentService := documentapp.NewDocumentService(documentRepo, salesOrderRepo, purchaseOrderRepo, "", log)

	// Stock side effects of trade lifecycle events run through the bus so
	// order workflows never touch inventory tables directly.
	eventBus.Subscribe(tradeapp.NewPurchaseOrderReceivedHandler(inventoryService, log))
	eventBus.Subscribe(tradeapp.NewSalesOrderShippedHandler(inventoryService, log))
	eventBus.Subscribe(tradeapp.NewReturnCompletedHandler(inventoryService, log))

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(router.Config{
		JWTService: jwtService,
		Revoker:    revoker,
		CookieName: cfg.Cookie.Name,
		Logger:     log,
		HTTP:       &cfg.HTTP,
	}, router.Handlers{
		System:        handler.NewSystemHandler(version),
		Auth:          handler.NewAuthHandler(authService, cfg.Cookie),
		Org:           handler.NewOrgHandler(orgService),
		User:          handler.NewUserHandler(userService),
		Category:      handler.NewCategoryHandler(categoryService),
		Product:       handler.NewProductHandler(productService),
		Supplier:      handler.NewSupplierHandler(supplierService),
		Customer:      handler.NewCustomerHandler(customerService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(purchaseOrderService),
		SalesOrder:    handler.NewSalesOrderHandler(salesOrderService),
		Return:        handler.NewReturnHandler(returnService),
		Inventory:     handler.NewInventoryHandler(inventoryService),
		Report:        handler.NewReportHandler(reportService),
		Document:      handler.NewDocumentHandler(documentService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
