package main

import (
	"net/http"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"visitlog/internal/app"
	"visitlog/internal/config"
	"visitlog/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// No logger yet; config failures go straight to stderr.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		App:    "visitlog",
		Env:    cfg.AppEnv,
	})
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := observability.InitSentry(cfg.SentryDSN, cfg.AppEnv); err != nil {
		logger.Error("init_sentry_failed", zap.Error(err))
	}
	defer observability.FlushSentry()

	runtime, err := app.Build(cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", zap.Error(err))
		os.Exit(1)
	}
	defer func() { _ = runtime.Close() }()

	addr := ":" + cfg.Port
	logger.Info("server_start", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, runtime.Handler); err != nil {
		logger.Error("server_failed", zap.Error(err))
		os.Exit(1)
	}
}
