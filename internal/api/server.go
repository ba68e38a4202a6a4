package api

import (
	"context"
	"image"
	"log/slog"

	"github.com/bharatheritage/tryon/internal/catalog"
	imagepkg "github.com/bharatheritage/tryon/internal/image"
	"github.com/bharatheritage/tryon/internal/tryon"
)

const (
	Title       = "Bharat Heritage - Virtual Try-On"
	Description = "Experience traditional Indian attire with AI-powered virtual try-on. Upload your photo and a garment " +
		"such as a saree, lehenga, kurta or sherwani to see how it looks on you."

	DefaultMaxUploadBytes = 20 << 20
)

// Downloader fetches and decodes a remote image.
type Downloader func(ctx context.Context, url string) (image.Image, error)

type Options struct {
	Generator      *tryon.Generator
	Samples        []catalog.Sample
	PublicURL      string
	AIEnabled      bool
	MaxUploadBytes int64
	Download       Downloader
	Logger         *slog.Logger
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	generator *tryon.Generator
	samples   []catalog.Sample
	publicURL string
	aiEnabled bool
	maxUpload int64
	download  Downloader
	logger    *slog.Logger
}

func NewServer(opts Options) *Server {
	s := &Server{
		generator: opts.Generator,
		samples:   opts.Samples,
		publicURL: opts.PublicURL,
		aiEnabled: opts.AIEnabled,
		maxUpload: opts.MaxUploadBytes,
		download:  opts.Download,
		logger:    opts.Logger,
	}
	if s.generator == nil {
		s.generator = tryon.New()
	}
	if s.samples == nil {
		s.samples = catalog.Default()
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadBytes
	}
	if s.download == nil {
		s.download = imagepkg.DownloadImage
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}
