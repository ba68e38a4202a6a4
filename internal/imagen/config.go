package imagen

import (
	"errors"
	"net/http"

	"google.golang.org/genai"
)

// ErrNotConfigured means neither a Vertex AI project nor an API key was set.
var ErrNotConfigured = errors.New("imagen: no Google Cloud project or API key configured")

type Config struct {
	apiKey   string
	project  string
	location string

	client *http.Client
}

type Option func(*Config)

func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.apiKey = key
	}
}

// WithVertex selects the Vertex AI backend. It takes precedence over an API
// key.
func WithVertex(project, location string) Option {
	return func(c *Config) {
		c.project = project
		c.location = location
	}
}

func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.client = client
	}
}

func (c *Config) clientConfig() (*genai.ClientConfig, error) {
	if c.project != "" {
		return &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  c.project,
			Location: c.location,

			HTTPClient: c.client,
		}, nil
	}

	if c.apiKey != "" {
		return &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  c.apiKey,

			HTTPClient: c.client,
		}, nil
	}

	return nil, ErrNotConfigured
}
