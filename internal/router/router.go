package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"pricecast/internal/config"
	"pricecast/internal/forecast"
	"pricecast/internal/handler"
	"pricecast/internal/infra"
	"pricecast/internal/middleware"
	"pricecast/internal/mlstore"
	"pricecast/internal/repository"
	"pricecast/internal/service"
	"pricecast/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine plus the
// worker handlers the pool consumes.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, scraperCB *infra.ScraperBreaker) (*gin.Engine, worker.Handlers) {
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
	scraperClient := infra.NewScraperClient(cfg.ScraperSidecarURL)
	mailer := infra.NewMailer(cfg)
	calendar := forecast.NewHolidayCalendar(cfg.HolidayCountry)

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	priceRepo := repository.NewPriceObservationRepository(db)
	salesRepo := repository.NewSalesObservationRepository(db)
	artifactRepo := repository.NewModelArtifactRepository(db)

	store := mlstore.New(cfg.ModelStoragePath, artifactRepo)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	productSvc := service.NewProductService(productRepo)
	supplierSvc := service.NewSupplierService(supplierRepo)
	historySvc := service.NewHistoryService(priceRepo, salesRepo)
	ingestionSvc := service.NewIngestionService(productRepo, priceRepo, salesRepo)
	forecastSvc := service.NewForecastService(
		productRepo, historySvc, store, rdb, calendar,
		cfg.HistoryLookbackDays,
		time.Duration(cfg.ForecastCacheTTLMin)*time.Minute,
	)
	trainingSvc := service.NewTrainingService(productRepo, historySvc, store, calendar, cfg.TrainingLookbackDays)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productsH := handler.NewProductsHandler(productSvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	historyH := handler.NewHistoryHandler(ingestionSvc, dispatcher)
	forecastsH := handler.NewForecastsHandler(forecastSvc, productSvc, dispatcher, cfg.ReportStoragePath)
	modelsH := handler.NewModelsHandler(store)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb, scraperCB))

	v1 := r.Group("/v1")
	{
		products := v1.Group("/products")
		{
			products.POST("", productsH.Create)
			products.GET("", productsH.List)
			products.GET("/:id", productsH.GetByID)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
			products.PATCH("/:id/reactivate", productsH.Reactivate)
		}
		v1.GET("/products/sku/:sku", productsH.GetBySKU)

		suppliers := v1.Group("/suppliers")
		{
			suppliers.POST("", suppliersH.Create)
			suppliers.GET("", suppliersH.List)
			suppliers.GET("/:id", suppliersH.GetByID)
			suppliers.PUT("/:id", suppliersH.Update)
			suppliers.DELETE("/:id", suppliersH.Deactivate)
		}

		v1.POST("/observations/prices", historyH.RecordPrice)
		v1.POST("/observations/sales", historyH.RecordSale)
		v1.GET("/history/:sku/prices", historyH.ListPrices)
		v1.POST("/scrape", historyH.TriggerScrape)

		v1.GET("/forecasts/:sku", forecastsH.Predict)
		v1.GET("/forecasts/:sku/report", forecastsH.Report)
		v1.POST("/forecasts/:sku/train", forecastsH.Train)

		models := v1.Group("/models")
		{
			models.GET("", modelsH.List)
			models.GET("/:sku", modelsH.Get)
			models.DELETE("/:sku", modelsH.Delete)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// ── Worker handlers ──────────────────────────────────────────────────────
	handlers := worker.Handlers{
		Training: worker.NewTrainingWorker(trainingSvc, rdb),
		Scrape:   worker.NewScrapeWorker(scraperClient, scraperCB, ingestionSvc, productRepo, dispatcher, cfg.AlertEmail),
		Email:    worker.NewEmailWorker(mailer),
	}

	return r, handlers
}
