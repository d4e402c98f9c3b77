package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"vitalsin/internal/config"
	"vitalsin/internal/db"
	"vitalsin/internal/handlers"
	"vitalsin/internal/health"
	mw "vitalsin/internal/middleware"
	"vitalsin/internal/score"
	"vitalsin/internal/services"
	"vitalsin/internal/store"
)

func main() {
	_ = godotenv.Load()

	bootLog := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(bootLog)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("err", err))
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		slog.Error("could not build logger", slog.Any("err", err))
		os.Exit(1)
	}
	defer logger.Sync()

	dbConn, err := sqlx.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	dbConn.SetMaxOpenConns(10)
	dbConn.SetConnMaxLifetime(2 * time.Hour)
	if err = dbConn.Ping(); err != nil {
		slog.Error("failed to ping db", slog.Any("err", err))
		os.Exit(1)
	}
	if err := db.RunMigrations(dbConn); err != nil {
		slog.Error("failed migrations", slog.Any("err", err))
		os.Exit(1)
	}

	encSvc, err := services.NewEncryptionService([]byte(cfg.EncryptionKey))
	if err != nil {
		slog.Error("invalid ENCRYPTION_KEY", slog.Any("err", err))
		os.Exit(1)
	}

	// Stores
	checkIns := store.NewCheckIns(dbConn, encSvc)
	metrics := store.NewMetrics(dbConn)
	scores := store.NewScores(dbConn, encSvc)
	settings := store.NewSettings(dbConn)
	tokens := store.NewTokens(dbConn)
	samples := store.NewSamples(dbConn)

	// Health source adapters and the per-call selector
	oauthConf := &oauth2.Config{
		ClientID:     cfg.Fitness.ClientID,
		ClientSecret: cfg.Fitness.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: cfg.Fitness.TokenURL},
	}
	synthetic := health.NewSyntheticAdapter()
	fitness := health.NewFitnessAdapter(cfg.Fitness.BaseURL, oauthConf, tokens, logger)
	device := health.NewDeviceAdapter(samples, settings, logger)
	selector := health.NewSelector(synthetic, fitness, device)
	reconciler := health.NewReconciler(selector, metrics, metrics, settings, settings, logger)

	// Score engine: remote first, local heuristic fallback
	remote := score.NewRemoteClient(cfg.Remote.BaseURL)
	engine := score.NewEngine(remote, checkIns, scores, cfg.Remote.Timeout, cfg.Remote.RegenerateTimeout, logger)

	authHandler := handlers.NewAuthHandler(dbConn, []byte(cfg.JWTSecret))
	checkInHandler := handlers.NewCheckInHandler(checkIns)
	healthHandler := handlers.NewHealthHandler(reconciler, selector, metrics, samples, settings)
	fitnessHandler := handlers.NewFitnessHandler(tokens)
	scoreHandler := handlers.NewScoreHandler(engine, scores)
	settingsHandler := handlers.NewSettingsHandler(settings)
	dashboardHandler := handlers.NewDashboardHandler(dbConn)
	authMW := mw.NewAuthMiddleware([]byte(cfg.JWTSecret))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.ZapRequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)

			pr.Post("/checkins", checkInHandler.Upsert)
			pr.Get("/checkins", checkInHandler.List)
			pr.Delete("/checkins", checkInHandler.Delete)

			pr.Get("/settings", settingsHandler.Get)
			pr.Put("/settings", settingsHandler.Update)

			pr.Post("/health/samples", healthHandler.IngestSamples)
			pr.Post("/health/sync", healthHandler.SyncNow)
			pr.Post("/health/sync/range", healthHandler.SyncRange)
			pr.Get("/health/metrics", healthHandler.ListMetrics)
			pr.Get("/health/status", healthHandler.Status)

			pr.Post("/fitness/token", fitnessHandler.SaveToken)
			pr.Delete("/fitness/token", fitnessHandler.Disconnect)

			pr.Get("/score/today", scoreHandler.GetToday)
			pr.Post("/score/regenerate", scoreHandler.Regenerate)
			pr.Post("/score/feedback", scoreHandler.Feedback)

			pr.Get("/dashboard", dashboardHandler.Get)
		})
	})

	// Nightly sweep: single-day sync for every user, after midnight data has
	// settled.
	c := cron.New()
	if _, err := c.AddFunc(cfg.SyncCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		reconciler.SweepYesterday(ctx)
	}); err != nil {
		slog.Error("could not schedule sync sweep", slog.Any("err", err))
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		slog.Info("server starting", slog.String("addr", ":"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.Any("err", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	slog.Info("server stopped")
}
