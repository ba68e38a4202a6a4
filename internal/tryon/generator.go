package tryon

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	imagepkg "github.com/bharatheritage/tryon/internal/image"
)

const (
	MinQualitySteps     = 1
	MaxQualitySteps     = 150
	DefaultQualitySteps = 32

	MinImageCount     = 1
	MaxImageCount     = 4
	DefaultImageCount = 1
)

const demoModeWarning = "Demo mode: Creating composite image. For AI-powered try-on, configure Google Cloud Vertex AI."

type Source string

const (
	SourceAI        Source = "ai"
	SourceComposite Source = "composite"
)

// Request is one try-on generation. QualitySteps and ImageCount are expected
// to be clamped by the caller (see ClampQualitySteps, ClampImageCount).
type Request struct {
	PersonImage  image.Image
	GarmentImage image.Image
	QualitySteps int
	ImageCount   int
}

// Validate checks that both images are present.
func (r Request) Validate() error {
	if r.PersonImage == nil {
		return missingPerson()
	}
	if r.GarmentImage == nil {
		return missingGarment()
	}
	return nil
}

type Result struct {
	Images   []image.Image
	Source   Source
	Warnings []string
}

func ClampQualitySteps(n int) int {
	return min(max(n, MinQualitySteps), MaxQualitySteps)
}

func ClampImageCount(n int) int {
	return min(max(n, MinImageCount), MaxImageCount)
}

// Prompt builds the text sent to the image-generation service.
func Prompt(qualitySteps int) string {
	return fmt.Sprintf("A person wearing traditional Indian clothing, high quality, realistic, %d steps", qualitySteps)
}

// Generator produces try-on images, preferring the configured ImageService
// and falling back to the local compositor on any service failure.
// A Generator holds no per-request state and is safe for concurrent use.
type Generator struct {
	service   ImageService
	placement imagepkg.Placement
	timeout   time.Duration
	logger    *slog.Logger
}

type Option func(*Generator)

func WithService(s ImageService) Option {
	return func(g *Generator) {
		if s != nil {
			g.service = s
		}
	}
}

func WithPlacement(p imagepkg.Placement) Option {
	return func(g *Generator) {
		g.placement = p
	}
}

// WithTimeout bounds each call to the ImageService. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		g.timeout = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

func New(options ...Option) *Generator {
	g := &Generator{
		service:   Unavailable{},
		placement: imagepkg.DefaultPlacement(),
		logger:    slog.Default(),
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// Generate validates req and returns its images. A service failure is never
// returned: it becomes a warning on a composite result.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	images, err := g.generateAI(ctx, req)
	if err == nil {
		g.logger.InfoContext(ctx, "generated try-on images", "source", SourceAI, "count", len(images))
		return &Result{
			Images: images,
			Source: SourceAI,
		}, nil
	}

	var warning string
	if errors.Is(err, ErrServiceUnavailable) {
		warning = demoModeWarning
		g.logger.DebugContext(ctx, "image service unavailable, compositing locally")
	} else {
		warning = fmt.Sprintf("AI generation failed: %v. Showing demo composite instead.", err)
		g.logger.WarnContext(ctx, "image generation failed, compositing locally", "error", err)
	}

	return &Result{
		Images:   g.Composite(req),
		Source:   SourceComposite,
		Warnings: []string{warning},
	}, nil
}

// Composite runs the local compositor for req.ImageCount variants. It does
// not validate req.
func (g *Generator) Composite(req Request) []image.Image {
	variants := imagepkg.CompositeVariants(req.PersonImage, req.GarmentImage, g.placement, req.ImageCount)
	out := make([]image.Image, len(variants))
	for i, v := range variants {
		out[i] = v
	}
	return out
}

func (g *Generator) generateAI(ctx context.Context, req Request) ([]image.Image, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	payloads, err := g.service.GenerateImages(ctx, Prompt(req.QualitySteps), req.ImageCount)
	if err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, ErrNoImages
	}

	images := make([]image.Image, 0, len(payloads))
	for i, p := range payloads {
		img, err := imagepkg.DecodeBytes(p.Data)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		images = append(images, img)
	}
	return images, nil
}
