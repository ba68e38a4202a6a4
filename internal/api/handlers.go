package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bharatheritage/tryon/internal/catalog"
	imagepkg "github.com/bharatheritage/tryon/internal/image"
	"github.com/bharatheritage/tryon/internal/tryon"
)

type tryOnImage struct {
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

type tryOnResponse struct {
	ID       string       `json:"id"`
	Source   tryon.Source `json:"source"`
	Warnings []string     `json:"warnings"`
	Images   []tryOnImage `json:"images"`
}

// requestError carries the status a handler should answer with.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "ai_enabled": s.aiEnabled})
}

func (s *Server) status(c *gin.Context) {
	notice := "Google Cloud Vertex AI is configured and ready for virtual try-on generation."
	if !s.aiEnabled {
		notice = "This demo runs in fallback mode. Configure GOOGLE_CLOUD_PROJECT or GOOGLE_API_KEY for AI-powered virtual try-on."
	}
	c.JSON(http.StatusOK, gin.H{
		"title":       Title,
		"description": Description,
		"ai_enabled":  s.aiEnabled,
		"notice":      notice,
		"limits": gin.H{
			"quality_steps": gin.H{"min": tryon.MinQualitySteps, "max": tryon.MaxQualitySteps, "default": tryon.DefaultQualitySteps},
			"image_count":   gin.H{"min": tryon.MinImageCount, "max": tryon.MaxImageCount, "default": tryon.DefaultImageCount},
		},
	})
}

// tryOnHandler accepts a multipart form with a "person" file, a "garment"
// file or "garment_sample" catalog id, and the optional "quality_steps" and
// "image_count" sliders.
func (s *Server) tryOnHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	person, err := s.formImage(c, "person")
	if err != nil {
		s.abort(c, err)
		return
	}
	garment, err := s.garmentImage(c)
	if err != nil {
		s.abort(c, err)
		return
	}

	req := tryon.Request{
		PersonImage:  person,
		GarmentImage: garment,
		QualitySteps: tryon.ClampQualitySteps(formInt(c, "quality_steps", tryon.DefaultQualitySteps)),
		ImageCount:   tryon.ClampImageCount(formInt(c, "image_count", tryon.DefaultImageCount)),
	}

	res, err := s.generator.Generate(c.Request.Context(), req)
	if err != nil {
		var missing *tryon.MissingInputError
		if errors.As(err, &missing) {
			c.JSON(http.StatusBadRequest, gin.H{"error": missing.Message, "title": missing.Title, "field": missing.Field})
			return
		}
		s.logger.Error("try-on generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "title": "Generation Error"})
		return
	}

	out := tryOnResponse{
		ID:       uuid.NewString(),
		Source:   res.Source,
		Warnings: res.Warnings,
		Images:   make([]tryOnImage, 0, len(res.Images)),
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	for _, img := range res.Images {
		b, err := imagepkg.EncodePNG(img)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out.Images = append(out.Images, tryOnImage{
			ContentType: "image/png",
			Data:        base64.StdEncoding.EncodeToString(b),
		})
	}
	s.logger.Info("try-on served", "id", out.ID, "source", out.Source, "images", len(out.Images))
	c.JSON(http.StatusOK, out)
}

func (s *Server) abort(c *gin.Context, err error) {
	status := http.StatusBadRequest
	var re *requestError
	if errors.As(err, &re) {
		status = re.status
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	if status >= http.StatusInternalServerError {
		s.logger.Warn("try-on request failed", "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// formImage decodes the uploaded file name. A missing file yields a nil
// image so the generator reports it.
func (s *Server) formImage(c *gin.Context, name string) (image.Image, error) {
	fh, err := c.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := imagepkg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return img, nil
}

func (s *Server) garmentImage(c *gin.Context) (image.Image, error) {
	img, err := s.formImage(c, "garment")
	if err != nil || img != nil {
		return img, err
	}

	id := strings.TrimSpace(c.PostForm("garment_sample"))
	if id == "" {
		return nil, nil
	}
	sample, ok := catalog.Find(s.samples, id)
	if !ok {
		return nil, &requestError{status: http.StatusNotFound, err: fmt.Errorf("unknown garment sample %q", id)}
	}
	img, err = s.download(c.Request.Context(), sample.ImageURL)
	if err != nil {
		return nil, &requestError{status: http.StatusBadGateway, err: fmt.Errorf("fetching garment sample %q: %w", id, err)}
	}
	return img, nil
}

func formInt(c *gin.Context, key string, def int) int {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (s *Server) samplesHandler(c *gin.Context) {
	var categories []string
	for _, v := range c.QueryArray("category") {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				categories = append(categories, p)
			}
		}
	}
	out := catalog.Filter(s.samples, catalog.FilterOptions{
		Categories: categories,
		FreeWords:  c.Query("q"),
	})
	c.JSON(http.StatusOK, gin.H{"count": len(out), "samples": out})
}

func (s *Server) filterHandler(c *gin.Context) {
	var opt catalog.FilterOptions
	if err := c.BindJSON(&opt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out := catalog.Filter(s.samples, opt)
	c.JSON(http.StatusOK, gin.H{"count": len(out), "samples": out})
}

// qrHandler returns a PNG QR code for the "text" query param, defaulting to
// the public URL of this service.
func (s *Server) qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		text = s.publicURL
	}
	size := imagepkg.DefaultQRSize
	if v, err := strconv.Atoi(c.Query("size")); err == nil {
		size = v
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}
