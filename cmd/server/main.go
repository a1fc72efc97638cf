package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "canteen/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"canteen/internal/auth"
	"canteen/internal/cache"
	"canteen/internal/config"
	"canteen/internal/db"
	"canteen/internal/handler"
	"canteen/internal/logger"
	"canteen/internal/repository"
	"canteen/internal/router"
	"canteen/internal/service"
)

// @title School Canteen API
// @version 1.0
// @description Canteen ordering with prepaid balances, subscriptions, top-up approvals and kitchen purchasing.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Log

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("database init", zap.Error(err))
	}

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			log.Fatal("reset database", zap.Error(err))
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("migrate database", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Warn("redis unavailable, continuing without cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	cancelPing()

	store := repository.NewStore(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	ledgerService := service.NewLedgerService(store)
	authService := service.NewAuthService(store, jwtService, tokenStore)
	userService := service.NewUserService(store, cacheClient)
	allergenService := service.NewAllergenService(store)
	dishService := service.NewDishService(store, cacheClient)
	orderService := service.NewOrderService(store, ledgerService, cacheClient)
	purchaseService := service.NewPurchaseRequestService(store)
	topupService := service.NewTopupService(store, ledgerService, cacheClient)
	reviewService := service.NewReviewService(store)
	statisticsService := service.NewStatisticsService(store)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, jwtService.Secret(), tokenStore, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		User:       handler.NewUserHandler(userService, ledgerService),
		Dish:       handler.NewDishHandler(dishService, allergenService),
		Order:      handler.NewOrderHandler(orderService),
		Request:    handler.NewRequestHandler(purchaseService, topupService),
		Review:     handler.NewReviewHandler(reviewService),
		Statistics: handler.NewStatisticsHandler(statisticsService),
	})

	log.Info("Swagger documentation available", zap.String("url", swaggerURL(cfg.SwaggerHost, cfg.ServerPort)))

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info("server starting", zap.String("addr", addr), zap.String("db_driver", cfg.DBDriver))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("server start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

// swaggerURL builds the docs URL. The host may already carry a scheme.
func swaggerURL(host, port string) string {
	if host == "" {
		host = "localhost:" + port
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimSuffix(host, "/") + "/swagger/index.html"
}
