package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"zonelan-service/internal/cache"
	"zonelan-service/internal/config"
	"zonelan-service/internal/database"
	"zonelan-service/internal/handlers"
	"zonelan-service/internal/middleware"
	"zonelan-service/internal/repository"
	"zonelan-service/internal/routes"
	"zonelan-service/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Configuración
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Logger estructurado
	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	// PostgreSQL
	postgresDB, err := database.NewPostgresDB(
		cfg.Database.URL,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
		logger,
	)
	if err != nil {
		logger.Fatal("❌ Error conectando a PostgreSQL", zap.Error(err))
	}
	defer postgresDB.Close()

	// Migraciones
	if cfg.Database.RunMigrations {
		if err := postgresDB.RunMigrations(logger); err != nil {
			logger.Fatal("❌ Error aplicando migraciones", zap.Error(err))
		}
	}

	// Redis
	redisDB, err := database.NewRedisDB(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("❌ Error conectando a Redis", zap.Error(err))
	}
	defer redisDB.Close()

	// Cache de materiales (L1 memoria + L2 Redis)
	materialCache := cache.NewMaterialCache(redisDB.Client, 500, 5*time.Minute, logger)

	// Repositorio y servicios
	store := repository.NewStore(postgresDB.DB)

	ledgerService := services.NewLedgerService(store, materialCache, logger)
	materialService := services.NewMaterialService(store, materialCache, logger)
	storageService := services.NewStorageService(store, logger)
	reportService := services.NewReportService(store, logger)
	contractService := services.NewContractService(store, logger)
	ticketService := services.NewTicketService(store, logger)
	customerService := services.NewCustomerService(store, logger)
	monitoringService := services.NewMonitoringService(logger, cfg, redisDB.Client, postgresDB.DB, materialCache)

	// Handlers
	h := routes.Handlers{
		Material:   handlers.NewMaterialHandler(materialService, ledgerService, logger),
		Storage:    handlers.NewStorageHandler(storageService, ledgerService, logger),
		Report:     handlers.NewReportHandler(reportService, logger),
		Contract:   handlers.NewContractHandler(contractService, logger),
		Ticket:     handlers.NewTicketHandler(ticketService, logger),
		Customer:   handlers.NewCustomerHandler(customerService, logger),
		Monitoring: handlers.NewMonitoringHandler(monitoringService, logger),
	}
	healthChecker := middleware.NewHealthChecker(postgresDB, redisDB, logger)

	// Router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(h.Monitoring.RecordRequestMiddleware())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORS.AllowedOrigins) == 1 && cfg.CORS.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-User-ID", "X-Request-ID")
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, h, healthChecker)

	// Servidor HTTP con apagado ordenado
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		middleware.ServerInfo(cfg.Server.Port, logger)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("❌ Error en el servidor HTTP", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("ℹ️ Señal de apagado recibida")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Error en el apagado del servidor", zap.Error(err))
	}
	logger.Info("✅ Apagado ordenado completado")
}

// newLogger construye el logger zap según el nivel configurado
func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
