package tryon

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Payload is one encoded image returned by an ImageService.
type Payload struct {
	Data     []byte
	MIMEType string
}

// ImageService generates count images from a text prompt.
type ImageService interface {
	GenerateImages(ctx context.Context, prompt string, count int) ([]Payload, error)
}

var _ ImageService = Unavailable{}

// Unavailable is the ImageService used when no backend is configured. It
// fails immediately so callers fall back to the local compositor.
type Unavailable struct{}

func (Unavailable) GenerateImages(context.Context, string, int) ([]Payload, error) {
	return nil, ErrServiceUnavailable
}

type limitedService struct {
	limiter *rate.Limiter
	service ImageService
}

// RateLimited wraps s so every call first waits for a token from l. A nil
// limiter returns s unchanged.
func RateLimited(s ImageService, l *rate.Limiter) ImageService {
	if l == nil {
		return s
	}
	return &limitedService{
		limiter: l,
		service: s,
	}
}

func (s *limitedService) GenerateImages(ctx context.Context, prompt string, count int) ([]Payload, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return s.service.GenerateImages(ctx, prompt, count)
}
