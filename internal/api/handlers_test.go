package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bharatheritage/tryon/internal/catalog"
	"github.com/bharatheritage/tryon/internal/tryon"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, solid(w, h, color.NRGBA{R: 0x80, A: 0xff})))
	return buf.Bytes()
}

type form struct {
	files  map[string][]byte
	fields map[string]string
}

func (f form) request(t *testing.T) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	for name, data := range f.files {
		w, err := mw.CreateFormFile(name, name+".png")
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	for k, v := range f.fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tryon", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Generator == nil {
		opts.Generator = tryon.New(tryon.WithLogger(opts.Logger))
	}
	r := gin.New()
	RegisterRoutes(r, NewServer(opts))
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeTryOn(t *testing.T, w *httptest.ResponseRecorder) tryOnResponse {
	t.Helper()
	var out tryOnResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	r := newTestRouter(Options{AIEnabled: true})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","ai_enabled":true}`, w.Body.String())
}

func TestStatus(t *testing.T) {
	r := newTestRouter(Options{})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, Title, out["title"])
	assert.Equal(t, false, out["ai_enabled"])
	assert.Contains(t, out["notice"], "fallback mode")
}

func TestTryOn_Composite(t *testing.T) {
	r := newTestRouter(Options{})
	req := form{
		files: map[string][]byte{
			"person":  pngBytes(t, 90, 120),
			"garment": pngBytes(t, 30, 30),
		},
		fields: map[string]string{"image_count": "2", "quality_steps": "50"},
	}.request(t)

	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decodeTryOn(t, w)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, tryon.SourceComposite, out.Source)
	require.Len(t, out.Warnings, 1)
	require.Len(t, out.Images, 2)
	for _, img := range out.Images {
		assert.Equal(t, "image/png", img.ContentType)
		b, err := base64.StdEncoding.DecodeString(img.Data)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(bytes.NewReader(b))
		require.NoError(t, err)
		assert.Equal(t, 90, cfg.Width)
		assert.Equal(t, 120, cfg.Height)
	}
}

func TestTryOn_ClampsSliders(t *testing.T) {
	var gotCount int
	var gotPrompt string
	svc := serviceFunc(func(_ context.Context, prompt string, count int) ([]tryon.Payload, error) {
		gotPrompt, gotCount = prompt, count
		return nil, errors.New("offline")
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := newTestRouter(Options{Generator: tryon.New(tryon.WithService(svc), tryon.WithLogger(logger))})

	req := form{
		files: map[string][]byte{
			"person":  pngBytes(t, 60, 60),
			"garment": pngBytes(t, 20, 20),
		},
		fields: map[string]string{"image_count": "9", "quality_steps": "500"},
	}.request(t)

	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decodeTryOn(t, w)
	assert.Len(t, out.Images, tryon.MaxImageCount)
	assert.Equal(t, tryon.MaxImageCount, gotCount)
	assert.Contains(t, gotPrompt, "150 steps")
	assert.Contains(t, out.Warnings[0], "offline")
}

func TestTryOn_Defaults(t *testing.T) {
	r := newTestRouter(Options{})
	req := form{files: map[string][]byte{
		"person":  pngBytes(t, 60, 60),
		"garment": pngBytes(t, 20, 20),
	}}.request(t)

	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeTryOn(t, w).Images, tryon.DefaultImageCount)
}

func TestTryOn_MissingInput(t *testing.T) {
	r := newTestRouter(Options{})

	tests := []struct {
		name  string
		req   *http.Request
		field string
	}{
		{
			name:  "no person",
			req:   form{files: map[string][]byte{"garment": pngBytes(t, 10, 10)}}.request(t),
			field: "person",
		},
		{
			name:  "no garment",
			req:   form{files: map[string][]byte{"person": pngBytes(t, 10, 10)}}.request(t),
			field: "garment",
		},
		{
			name:  "not multipart",
			req:   httptest.NewRequest(http.MethodPost, "/api/tryon", strings.NewReader("{}")),
			field: "person",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(r, tc.req)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var out map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
			assert.Equal(t, tc.field, out["field"])
			assert.NotEmpty(t, out["title"])
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestTryOn_InvalidImage(t *testing.T) {
	r := newTestRouter(Options{})
	req := form{files: map[string][]byte{
		"person":  []byte("not an image"),
		"garment": pngBytes(t, 10, 10),
	}}.request(t)

	w := serve(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "person")
}

func TestTryOn_TooLarge(t *testing.T) {
	r := newTestRouter(Options{MaxUploadBytes: 512})
	req := form{files: map[string][]byte{
		"person":  bytes.Repeat([]byte{1}, 4096),
		"garment": pngBytes(t, 10, 10),
	}}.request(t)

	w := serve(r, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestTryOn_GarmentSample(t *testing.T) {
	samples := []catalog.Sample{{ID: "saree-01", Name: "Saree", Category: "saree", ImageURL: "https://example.com/saree.jpg"}}

	t.Run("downloads the sample", func(t *testing.T) {
		var gotURL string
		r := newTestRouter(Options{
			Samples: samples,
			Download: func(_ context.Context, url string) (image.Image, error) {
				gotURL = url
				return solid(20, 40, color.NRGBA{G: 0xff, A: 0xff}), nil
			},
		})
		req := form{
			files:  map[string][]byte{"person": pngBytes(t, 60, 90)},
			fields: map[string]string{"garment_sample": "saree-01"},
		}.request(t)

		w := serve(r, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "https://example.com/saree.jpg", gotURL)
		assert.Len(t, decodeTryOn(t, w).Images, 1)
	})

	t.Run("unknown sample", func(t *testing.T) {
		r := newTestRouter(Options{Samples: samples})
		req := form{
			files:  map[string][]byte{"person": pngBytes(t, 60, 90)},
			fields: map[string]string{"garment_sample": "missing"},
		}.request(t)

		w := serve(r, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("download failure", func(t *testing.T) {
		r := newTestRouter(Options{
			Samples: samples,
			Download: func(context.Context, string) (image.Image, error) {
				return nil, errors.New("connection refused")
			},
		})
		req := form{
			files:  map[string][]byte{"person": pngBytes(t, 60, 90)},
			fields: map[string]string{"garment_sample": "saree-01"},
		}.request(t)

		w := serve(r, req)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "connection refused")
	})
}

func TestSamples(t *testing.T) {
	r := newTestRouter(Options{})

	t.Run("list", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/api/samples", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var out struct {
			Count   int              `json:"count"`
			Samples []catalog.Sample `json:"samples"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Equal(t, 3, out.Count)
	})

	t.Run("by category", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/api/samples?category=saree,kurta", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":2`)
	})

	t.Run("filter body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/samples/filter", strings.NewReader(`{"categories":["lehenga"]}`))
		req.Header.Set("Content-Type", "application/json")
		w := serve(r, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":1`)
		assert.Contains(t, w.Body.String(), "lehenga-01")
	})

	t.Run("bad filter body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/samples/filter", strings.NewReader(`{`))
		w := serve(r, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestQR(t *testing.T) {
	r := newTestRouter(Options{PublicURL: "http://localhost:8080"})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/qr?size=128", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	cfg, err := png.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Width)
}

type serviceFunc func(ctx context.Context, prompt string, count int) ([]tryon.Payload, error)

func (f serviceFunc) GenerateImages(ctx context.Context, prompt string, count int) ([]tryon.Payload, error) {
	return f(ctx, prompt, count)
}
