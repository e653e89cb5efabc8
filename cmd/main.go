package main

import (
	"inventory-service/internal/handler"
	mid "inventory-service/internal/middleware"
	"inventory-service/pkg/config"
	"inventory-service/pkg/database"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (reads .env if present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting inventory-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Company API routes
	companyAPI := e.Group("/api/companies", mid.AuthMiddleware)
	companyAPI.POST("", handler.CreateCompany)
	companyAPI.GET("/:id", handler.GetCompany)

	// Storage API routes
	storageAPI := e.Group("/api/storages", mid.AuthMiddleware)
	storageAPI.GET("", handler.ListStorages)
	storageAPI.POST("", handler.CreateStorage)
	storageAPI.GET("/:id", handler.GetStorage)
	storageAPI.PUT("/:id", handler.UpdateStorage)
	storageAPI.DELETE("/:id", handler.DeleteStorage)

	// Supplier API routes
	supplierAPI := e.Group("/api/suppliers", mid.AuthMiddleware)
	supplierAPI.GET("", handler.ListSuppliers)
	supplierAPI.POST("", handler.CreateSupplier)
	supplierAPI.GET("/:id", handler.GetSupplier)
	supplierAPI.PUT("/:id", handler.UpdateSupplier)
	supplierAPI.DELETE("/:id", handler.DeleteSupplier)

	// Product API routes
	productAPI := e.Group("/api/products", mid.AuthMiddleware)
	productAPI.GET("", handler.ListProducts)
	productAPI.POST("", handler.CreateProduct)
	productAPI.GET("/:id", handler.GetProduct)
	productAPI.PUT("/:id", handler.UpdateProduct)
	productAPI.DELETE("/:id", handler.DeleteProduct)

	// Supply API routes (inbound ledger)
	supplyAPI := e.Group("/api/supplies", mid.AuthMiddleware)
	supplyAPI.GET("", handler.ListSupplies)
	supplyAPI.POST("", handler.CreateSupply)
	supplyAPI.GET("/:id", handler.GetSupply)

	// Sale API routes (outbound ledger)
	saleAPI := e.Group("/api/sales", mid.AuthMiddleware)
	saleAPI.GET("", handler.ListSales)
	saleAPI.POST("", handler.CreateSale)
	saleAPI.GET("/:id", handler.GetSale)
	saleAPI.DELETE("/:id", handler.DeleteSale)

	// Analytics API routes (read-only aggregation)
	analyticsAPI := e.Group("/api/analytics", mid.AuthMiddleware)
	analyticsAPI.GET("/summary", handler.GetSummary)
	analyticsAPI.GET("/timeseries", handler.GetTimeSeries)
	analyticsAPI.GET("/reports", handler.ListSalesReports)
	analyticsAPI.POST("/reports", handler.BuildSalesReport)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
