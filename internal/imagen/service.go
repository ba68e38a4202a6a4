package imagen

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/bharatheritage/tryon/internal/config"
	"github.com/bharatheritage/tryon/internal/tryon"
)

// NewService builds the ImageService described by cfg. When no backend is
// configured, or the client cannot be created, it logs why and returns
// tryon.Unavailable so generation still works in demo mode.
func NewService(ctx context.Context, cfg *config.Config, logger *slog.Logger) tryon.ImageService {
	if !cfg.AIEnabled() {
		logger.Info("no Google Cloud project or API key configured, running in demo mode")
		return tryon.Unavailable{}
	}

	var options []Option
	if cfg.VertexEnabled() {
		options = append(options, WithVertex(cfg.Google.CloudProject, cfg.Google.CloudLocation))
	}
	if cfg.Google.APIKey != "" {
		options = append(options, WithAPIKey(cfg.Google.APIKey))
	}

	client, err := New(ctx, cfg.Model, options...)
	if err != nil {
		logger.Warn("AI image generation disabled, running in demo mode", "error", err)
		return tryon.Unavailable{}
	}
	logger.Info("AI image generation enabled", "model", client.Model(), "vertex", cfg.VertexEnabled())

	var limiter *rate.Limiter
	if cfg.AI.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.AI.RateLimit), max(cfg.AI.RateBurst, 1))
	}
	return tryon.RateLimited(client, limiter)
}
