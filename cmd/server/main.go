package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/bharatheritage/tryon/internal/api"
	"github.com/bharatheritage/tryon/internal/catalog"
	"github.com/bharatheritage/tryon/internal/config"
	"github.com/bharatheritage/tryon/internal/imagen"
	"github.com/bharatheritage/tryon/internal/tryon"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	// Load samples at startup (best-effort)
	samples, ok, err := catalog.LoadFromDataDir(cfg.DataDir)
	if err != nil {
		logger.Warn("failed to load sample catalog, using built-in samples", "dir", cfg.DataDir, "error", err)
		samples = catalog.Default()
	} else if !ok {
		logger.Info("no sample catalog found, using built-in samples", "dir", cfg.DataDir)
	}

	service := imagen.NewService(context.Background(), cfg, logger)
	_, demoMode := service.(tryon.Unavailable)
	generator := tryon.New(
		tryon.WithService(service),
		tryon.WithPlacement(cfg.ImagePlacement()),
		tryon.WithTimeout(cfg.AI.Timeout),
		tryon.WithLogger(logger),
	)

	srv := api.NewServer(api.Options{
		Generator:      generator,
		Samples:        samples,
		PublicURL:      cfg.PublicURL,
		AIEnabled:      !demoMode,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	})

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	api.RegisterRoutes(r, srv)

	logger.Info("starting server", "url", "http://localhost:"+cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
