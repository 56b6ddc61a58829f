package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/splatseries/bracket-system/brackets"
	"github.com/splatseries/bracket-system/config"
	"github.com/splatseries/bracket-system/db"
	"github.com/splatseries/bracket-system/handlers"
	"github.com/splatseries/bracket-system/repositories"
	api "github.com/splatseries/bracket-system/routes"
	"github.com/splatseries/bracket-system/services"
	"github.com/splatseries/bracket-system/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	wsHub := brackets.NewHub()
	go wsHub.Run()
	defer wsHub.Close()
	logger.Info("WebSocket Hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	resultRepo := repositories.NewPostgresGameResultRepository(dbConn)
	pickBanRepo := repositories.NewPostgresPickBanRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	mapPoolRepo := repositories.NewPostgresMapPoolRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn, mapPoolRepo, rosterRepo)
	logger.Info("repositories initialized")

	transactor := services.NewSQLTransactor(dbConn)
	progression := brackets.NewProgression(matchRepo, resultRepo)

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey)
	scoreService := services.NewScoreService(
		transactor,
		tournamentRepo,
		matchRepo,
		resultRepo,
		pickBanRepo,
		roundRepo,
		mapPoolRepo,
		rosterRepo,
		teamRepo,
		progression,
		wsHub,
		logger,
	)
	castService := services.NewCastService(transactor, tournamentRepo, matchRepo, wsHub, logger)
	matchViewService := services.NewMatchViewService(
		tournamentRepo,
		matchRepo,
		resultRepo,
		pickBanRepo,
		roundRepo,
		mapPoolRepo,
		teamRepo,
	)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService)
	matchHandler := handlers.NewMatchHandler(matchViewService, scoreService, castService, cloudflareUploader)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, []byte(cfg.JWTSecretKey), authHandler, matchHandler, webSocketHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
