package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mikiasgoitom/likes/internal/app"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	handlerHttp "github.com/mikiasgoitom/likes/internal/handler/http"
	"github.com/mikiasgoitom/likes/internal/infrastructure/config"
	"github.com/mikiasgoitom/likes/internal/infrastructure/jwt"
	"github.com/mikiasgoitom/likes/internal/infrastructure/logger"
	"github.com/mikiasgoitom/likes/internal/infrastructure/metrics"
	"github.com/mikiasgoitom/likes/internal/infrastructure/validator"
	"github.com/mikiasgoitom/likes/internal/usecase"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}
	appLogger := logger.New(cfg.LogLevel, os.Stderr)
	appMetrics := metrics.New()

	ctx := context.Background()
	res, err := app.Open(ctx, cfg, appLogger, appMetrics)
	if err != nil {
		appLogger.Fatalf("Failed to open backends: %v", err)
	}
	defer res.Close(context.Background())

	// Register custom validators
	validator.RegisterCustomValidators()

	// Dependency Injection: Services
	jwtService := jwt.NewJWTService(jwt.NewJWTManager(cfg.JWTSecret))
	appValidator := validator.NewValidator()

	// Dependency Injection: Usecases
	resolver := usecase.NewEntityTypeResolver(res.Store.EntityTypes(), res.Cache, appLogger)
	likeUsecase := usecase.NewLikeUsecase(res.Store, res.Cache, resolver, appLogger, cfg)

	// Optional background reconciliation of drifted counters
	if cfg.RecountSchedule != "" {
		recountUsecase := usecase.NewRecountUsecase(res.Store, res.Cache, appLogger)
		scheduler, err := app.ScheduleRecount(ctx, cfg.RecountSchedule, recountUsecase, appLogger, func(drifts []entity.CounterDrift) {
			appMetrics.ObserveDrift(len(drifts))
		})
		if err != nil {
			appLogger.Fatalf("Failed to schedule recount: %v", err)
		}
		defer scheduler.Stop()
	}

	// Setup API routes
	router := gin.Default()
	appRouter := handlerHttp.NewRouter(likeUsecase, jwtService, appValidator, appLogger, appMetrics, cfg.AllowedOrigins())
	appRouter.SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		appLogger.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Errorf("Failed to start server: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Infof("received %s, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("server shutdown error: %v", err)
	}
	appLogger.Infof("server stopped")
}
