package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"visitlog/internal/auth"
	"visitlog/internal/config"
	"visitlog/internal/db"
	"visitlog/internal/geo"
	"visitlog/internal/logs"
	"visitlog/internal/maintenance"
	"visitlog/internal/observability"
)

type Runtime struct {
	Handler http.Handler
	Close   func() error
}

// Build wires the whole application from configuration: storage,
// migrations, the auth core, feature handlers and the middleware
// chain. It is the only composition path; cmd/api runs whatever this
// returns.
func Build(cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	database, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	database.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	database.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := db.RunMigrations(database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	codec, err := auth.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	userRepo := auth.NewRepository(database)
	authService := auth.NewService(userRepo, codec, cfg.AccessTokenTTL)
	authHandler := auth.NewHandler(authService)
	loginLimiter := auth.NewLoginRateLimiter(cfg.LoginRateLimitMax, cfg.LoginRateLimitWindow)

	if err := userRepo.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("seed admin user: %w", err)
	}

	logRepo := logs.NewRepository(database)
	logHandler := logs.NewHandler(logRepo)

	geoClient, err := geo.NewClient(cfg.GeoAPIBaseURL, cfg.GeoAPIToken)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("init geo client: %w", err)
	}
	geoRepo := geo.NewRepository(database)
	geoHandler := geo.NewHandler(geoClient, geoRepo)

	cleanupHandler := maintenance.NewCleanupHandler(
		logRepo, geoRepo, logger,
		cfg.CronSecret, cfg.LogRetention, cfg.CleanupBatchSize,
	)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(authService, h)
	}
	protectedActive := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(authService, auth.RequireActive(authService, h))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /login", loginLimiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("GET /health", healthHandler(database))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /logs/{domain}", logHandler.List)
	mux.Handle("POST /logs/{domain}", protected(logHandler.Create))
	mux.Handle("DELETE /logs/{domain}/{id}", protectedActive(logHandler.Delete))
	mux.Handle("DELETE /logs/{domain}", protectedActive(logHandler.DeleteAll))

	mux.Handle("GET /geo", protected(geoHandler.List))
	mux.Handle("POST /geo/{ip}", protectedActive(geoHandler.Record))

	mux.HandleFunc("GET /internal/maintenance/cleanup", cleanupHandler.Handle)
	mux.HandleFunc("POST /internal/maintenance/cleanup", cleanupHandler.Handle)

	handler := observability.RecoverMiddleware(logger,
		observability.RequestLoggingMiddleware(logger, mux))

	return &Runtime{
		Handler: handler,
		Close: func() error {
			observability.FlushSentry()
			return database.Close()
		},
	}, nil
}

func healthHandler(database *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]any{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}
		if err := database.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body = map[string]any{"status": "degraded", "time": time.Now().UTC().Format(time.RFC3339)}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
