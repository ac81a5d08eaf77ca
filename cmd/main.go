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

	"github.com/Dosada05/esport-arena/config"
	"github.com/Dosada05/esport-arena/db"
	_ "github.com/Dosada05/esport-arena/docs"
	"github.com/Dosada05/esport-arena/handlers"
	"github.com/Dosada05/esport-arena/realtime"
	"github.com/Dosada05/esport-arena/repositories"
	api "github.com/Dosada05/esport-arena/routes"
	"github.com/Dosada05/esport-arena/services"
	"github.com/Dosada05/esport-arena/storage"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 15 * time.Second

// @title eSport Arena API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("db_driver", cfg.DBDriver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DBDriver, cfg.DatabaseURL, 5*time.Second)
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
	if err := db.Migrate(dbConn); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database connection established")

	// Загрузчик логотипов (Cloudflare R2), без настроек загрузки отключены
	uploader := storage.NewDisabledUploader()
	if cfg.UploadsEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
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
	} else {
		logger.Warn("R2 is not configured, logo uploads are disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run(ctx)

	// Инициализация репозиториев
	userRepo := repositories.NewUserRepository(dbConn)
	teamRepo := repositories.NewTeamRepository(dbConn)
	tournamentRepo := repositories.NewTournamentRepository(dbConn)
	phaseRepo := repositories.NewPhaseRepository(dbConn)
	participantRepo := repositories.NewParticipantRepository(dbConn)
	matchRepo := repositories.NewMatchRepository(dbConn)
	chatRepo := repositories.NewChatRepository(dbConn)
	vetoRepo := repositories.NewVetoRepository(dbConn)

	// Инициализация сервисов
	tokens := services.NewTokenIssuer(cfg.JWTSecretKey)
	locks := services.NewKeyedMutex()

	authService := services.NewAuthService(userRepo, tokens)
	userService := services.NewUserService(userRepo, uploader)
	teamService := services.NewTeamService(teamRepo, userRepo, uploader)
	tournamentService := services.NewTournamentService(dbConn, tournamentRepo, phaseRepo, participantRepo, matchRepo, uploader, wsHub, locks, logger)
	phaseService := services.NewPhaseService(phaseRepo, tournamentRepo)
	participantService := services.NewParticipantService(dbConn, participantRepo, tournamentRepo, teamRepo, matchRepo, phaseRepo, locks, wsHub, logger)
	matchService := services.NewMatchService(dbConn, matchRepo, tournamentRepo, participantRepo, phaseRepo, locks, wsHub, logger)
	chatService := services.NewChatService(chatRepo, matchRepo, userRepo, uploader, wsHub, cfg.ChatPageSize)
	vetoService := services.NewVetoService(vetoRepo, matchRepo, tournamentRepo, participantRepo, teamRepo, wsHub)
	logger.Info("services initialized")

	// Планировщик: переводит турниры из регистрации в check-in, когда наступает check_in_opens_at
	go runScheduler(ctx, logger, tournamentService, cfg.SchedulerInterval)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:        handlers.NewAuthHandler(authService, userService),
		User:        handlers.NewUserHandler(userService),
		Team:        handlers.NewTeamHandler(teamService),
		Tournament:  handlers.NewTournamentHandler(tournamentService),
		Phase:       handlers.NewPhaseHandler(phaseService),
		Participant: handlers.NewParticipantHandler(participantService),
		Admin:       handlers.NewAdminHandler(participantService, matchService),
		Match:       handlers.NewMatchHandler(matchService),
		Chat:        handlers.NewChatHandler(chatService),
		Veto:        handlers.NewVetoHandler(vetoService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub),
	}, tokens, cfg.CORSAllowedOrigins)

	// Настройка и запуск HTTP-сервера
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

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}

func runScheduler(ctx context.Context, logger *slog.Logger, ts services.TournamentService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("tournament status scheduler started", slog.Duration("interval", interval))

	run := func() {
		n, err := ts.AutoUpdateStatuses(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("scheduler: status update failed", slog.Any("error", err))
			return
		}
		if n > 0 {
			logger.Info("scheduler: tournaments updated", slog.Int("count", n))
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			logger.Info("tournament status scheduler stopped")
			return
		case <-ticker.C:
			run()
		}
	}
}
