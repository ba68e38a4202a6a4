package imagen

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/bharatheritage/tryon/internal/tryon"
)

const DefaultModel = "imagen-3.0-generate-002"

var _ tryon.ImageService = (*Client)(nil)

// models is the part of genai.Models used here.
type models interface {
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Client generates images with an Imagen model through the genai SDK.
type Client struct {
	model  string
	models models
}

func New(ctx context.Context, model string, options ...Option) (*Client, error) {
	cfg := new(Config)
	for _, option := range options {
		option(cfg)
	}

	clientConfig, err := cfg.clientConfig()
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("imagen: creating genai client: %w", err)
	}

	return newClient(model, client.Models), nil
}

func newClient(model string, m models) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		model:  model,
		models: m,
	}
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) GenerateImages(ctx context.Context, prompt string, count int) ([]tryon.Payload, error) {
	config := &genai.GenerateImagesConfig{
		NumberOfImages:   int32(count), //nolint:gosec
		IncludeRAIReason: true,
	}

	resp, err := c.models.GenerateImages(ctx, c.model, prompt, config)
	if err != nil {
		return nil, fmt.Errorf("imagen %s: %w", c.model, err)
	}

	return parseResponse(resp)
}

func parseResponse(resp *genai.GenerateImagesResponse) ([]tryon.Payload, error) {
	if resp == nil {
		return nil, tryon.ErrNoImages
	}

	var filtered string
	var payloads []tryon.Payload

	for _, generated := range resp.GeneratedImages {
		if generated == nil {
			continue
		}

		if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			if generated.RAIFilteredReason != "" {
				filtered = generated.RAIFilteredReason
			}
			continue
		}

		mimeType := generated.Image.MIMEType
		if mimeType == "" {
			mimeType = http.DetectContentType(generated.Image.ImageBytes)
		}

		payloads = append(payloads, tryon.Payload{
			Data:     generated.Image.ImageBytes,
			MIMEType: mimeType,
		})
	}

	if len(payloads) == 0 {
		if filtered != "" {
			return nil, fmt.Errorf("%w: filtered (%s)", tryon.ErrNoImages, filtered)
		}
		return nil, tryon.ErrNoImages
	}

	return payloads, nil
}
