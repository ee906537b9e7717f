package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geoclash/internal/adaptive"
	"geoclash/internal/cache"
	"geoclash/internal/config"
	"geoclash/internal/database"
	"geoclash/internal/handlers"
	"geoclash/internal/logging"
	"geoclash/internal/models"
	"geoclash/internal/repository"
	"geoclash/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()
	logger.Info("database connection established", "type", cfg.DatabaseType)

	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", "error", err)
	}
	logger.Info("migrations completed")

	sessionCache, err := buildCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize session cache", "error", err)
	}

	// Repositories
	countryRepo := repository.NewCountryRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	authSessionRepo := repository.NewAuthSessionRepository(db)

	// Services
	authService := service.NewAuthService(authSessionRepo, cfg.SessionSecret)
	sessionStore := service.NewSessionStore(sessionCache, cfg.SessionTTL)

	flagStore := service.NewFlagStore(countryRepo)
	if err := flagStore.Reload(ctx); err != nil {
		logger.Fatal("failed to load flag store", "error", err)
	}
	logger.Info("flag store loaded", "flags", flagStore.Len())

	registry, err := service.NewRegistry(
		service.NewFlagGame(models.GameModeCountryFlagTraining, countryRepo, scoreRepo, cfg.PackSize,
			adaptiveCountryOpts(cfg)...),
		service.NewFlagGame(models.GameModeCountryFlagChallenge, countryRepo, scoreRepo, cfg.PackSize,
			adaptiveCountryOpts(cfg)...),
		service.NewCapitalGame(models.GameModeCapitalTraining, countryRepo, scoreRepo, cfg.PackSize,
			adaptiveCountryOpts(cfg)...),
		service.NewCapitalGame(models.GameModeCapitalChallenge, countryRepo, scoreRepo, cfg.PackSize,
			adaptiveCountryOpts(cfg)...),
		service.NewDepartmentGame(models.GameModeDepartmentTraining, departmentRepo, scoreRepo, cfg.PackSize,
			adaptiveDepartmentOpts(cfg)...),
		service.NewDepartmentGame(models.GameModeDepartmentChallenge, departmentRepo, scoreRepo, cfg.PackSize,
			adaptiveDepartmentOpts(cfg)...),
	)
	if err != nil {
		logger.Fatal("failed to build game registry", "error", err)
	}

	gameService := service.NewGameService(registry, sessionStore, authService, statsRepo, logger)

	// Handlers
	gameHandler := handlers.NewGameHandler(gameService, logger)
	statsHandler := handlers.NewStatsHandler(statsRepo, authService, logger)
	flagHandler := handlers.NewFlagHandler(flagStore, logger)
	middleware := handlers.NewMiddleware(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/game/accept", gameHandler.Accept)
	mux.HandleFunc("GET /api/game/questions", gameHandler.Questions)
	mux.HandleFunc("POST /api/game/answer", gameHandler.Answer)
	mux.HandleFunc("GET /api/game/answers", gameHandler.CorrectAnswers)
	mux.HandleFunc("POST /api/game/quit", gameHandler.Quit)
	mux.HandleFunc("GET /api/stats/best-streak", statsHandler.BestStreak)
	mux.HandleFunc("GET /api/flags/{iso2}", flagHandler.Get)
	mux.HandleFunc("POST /api/flags/reload", flagHandler.Reload)

	handler := middleware.Recover(middleware.Log(mux))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// adaptiveCountryOpts builds the scheduler options for country modes.
func adaptiveCountryOpts(cfg *config.Config) []adaptive.Option[models.Country] {
	return []adaptive.Option[models.Country]{
		adaptive.WithCooldown[models.Country](cfg.Cooldown),
	}
}

// adaptiveDepartmentOpts builds the scheduler options for department modes.
func adaptiveDepartmentOpts(cfg *config.Config) []adaptive.Option[models.Department] {
	return []adaptive.Option[models.Department]{
		adaptive.WithCooldown[models.Department](cfg.Cooldown),
	}
}

// buildCache connects to redis when configured, otherwise serves sessions
// from process memory.
func buildCache(ctx context.Context, cfg *config.Config, logger *logging.Logger) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		logger.Info("using in-process session cache")
		return cache.NewMemory(cfg.SessionTTL), nil
	}
	redis, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to redis", "addr", cfg.RedisAddr)
	return redis, nil
}
