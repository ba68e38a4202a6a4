package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	imagepkg "github.com/bharatheritage/tryon/internal/image"
)

// PlaceholderProject is the project id shipped in the sample .env; it means
// "not configured".
const PlaceholderProject = "your-project-id"

type Config struct {
	Port           string `envconfig:"PORT" default:"8080"`
	PublicURL      string `envconfig:"PUBLIC_URL" default:"http://localhost:8080"`
	DataDir        string `envconfig:"DATA_DIR" default:"data"`
	LogLevel       string `envconfig:"LOGGING_LEVEL" default:"INFO"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"20971520"`
	Model          string `envconfig:"TRYON_MODEL" default:"imagen-3.0-generate-002"`

	Google    Google
	AI        AI
	Placement Placement
}

// Google holds the credentials of the optional image-generation backend.
type Google struct {
	APIKey        string `envconfig:"API_KEY"`
	CloudProject  string `envconfig:"CLOUD_PROJECT" default:"your-project-id"`
	CloudLocation string `envconfig:"CLOUD_LOCATION" default:"us-central1"`
}

type AI struct {
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"60s"`
	RateLimit float64       `envconfig:"RATE_LIMIT" default:"0"`
	RateBurst int           `envconfig:"RATE_BURST" default:"1"`
}

// Placement mirrors imagepkg.Placement so the heuristic constants can be
// tuned per deployment.
type Placement struct {
	ScaleDivisor     int     `envconfig:"SCALE_DIVISOR" default:"3"`
	VerticalFraction float64 `envconfig:"VERTICAL_FRACTION" default:"0.25"`
	BaseOpacity      float64 `envconfig:"BASE_OPACITY" default:"0.8"`
	OpacityStep      float64 `envconfig:"OPACITY_STEP" default:"0.1"`
	ShiftX           int     `envconfig:"SHIFT_X" default:"10"`
	ShiftY           int     `envconfig:"SHIFT_Y" default:"5"`
}

// Load reads the given .env files (".env" when none are given, skipped if
// missing) and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	p := c.Placement
	if p.ScaleDivisor <= 0 {
		return fmt.Errorf("PLACEMENT_SCALE_DIVISOR must be positive, got %d", p.ScaleDivisor)
	}
	if p.VerticalFraction < 0 || p.VerticalFraction > 1 {
		return fmt.Errorf("PLACEMENT_VERTICAL_FRACTION must be within [0,1], got %v", p.VerticalFraction)
	}
	if p.BaseOpacity < 0 || p.BaseOpacity > 1 {
		return fmt.Errorf("PLACEMENT_BASE_OPACITY must be within [0,1], got %v", p.BaseOpacity)
	}
	if p.OpacityStep < 0 {
		return fmt.Errorf("PLACEMENT_OPACITY_STEP must not be negative, got %v", p.OpacityStep)
	}
	if c.AI.RateLimit < 0 {
		return fmt.Errorf("AI_RATE_LIMIT must not be negative, got %v", c.AI.RateLimit)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// VertexEnabled reports whether a real Google Cloud project is configured.
func (c *Config) VertexEnabled() bool {
	return c.Google.CloudProject != "" && c.Google.CloudProject != PlaceholderProject
}

// AIEnabled reports whether any image-generation backend can be built.
func (c *Config) AIEnabled() bool {
	return c.VertexEnabled() || c.Google.APIKey != ""
}

func (c *Config) ImagePlacement() imagepkg.Placement {
	return imagepkg.Placement{
		ScaleDivisor:     c.Placement.ScaleDivisor,
		VerticalFraction: c.Placement.VerticalFraction,
		BaseOpacity:      c.Placement.BaseOpacity,
		OpacityStep:      c.Placement.OpacityStep,
		ShiftX:           c.Placement.ShiftX,
		ShiftY:           c.Placement.ShiftY,
	}
}

// SlogLevel maps Python-style level names (DEBUG, INFO, WARNING, ERROR,
// CRITICAL) onto slog levels. Unknown names fall back to INFO.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(strings.TrimSpace(c.LogLevel)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "CRITICAL", "FATAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
