package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mingjing/mingjing/pkg/config"
	"github.com/mingjing/mingjing/pkg/db"
	"github.com/mingjing/mingjing/pkg/utils"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	// Initialize logging system
	utils.InitLogger()
	logger := utils.GetLogger()

	if _, err := config.EnsureDefaultConfig(); err != nil {
		logger.Warn("Failed to write default config", "error", err)
	}

	cfg, configPath, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Info("Config loaded", "path", configPath, "provider", cfg.AIProvider(), "model", cfg.AIModel())

	if cfg.JWTSecret() == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	gdb, err := db.Open(cfg.DBDriver(), cfg.DBDSN())
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		os.Exit(1)
	}

	server, err := NewServer(cfg, gdb)
	if err != nil {
		logger.Error("Failed to build server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Shutting down")
}
