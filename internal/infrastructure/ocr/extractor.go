package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/rdzcn/weight-tracker/internal/config"
	"github.com/rdzcn/weight-tracker/internal/domain"
)

// Extractor returns the best-guess decimal number recognized in an image
// of a scale display.
type Extractor interface {
	ExtractWeight(ctx context.Context, image []byte) (float64, error)
}

// Client talks to an external OCR service. The service receives the raw
// image bytes via POST and responds with the recognized text as plain
// text; number extraction happens here, not in the service.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		endpoint:   cfg.OCREndpoint,
		apiKey:     cfg.OCRAPIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) ExtractWeight(ctx context.Context, image []byte) (float64, error) {
	if c.endpoint == "" {
		return 0, fmt.Errorf("OCR endpoint not configured: %w", domain.ErrExtractionFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(image))
	if err != nil {
		return 0, fmt.Errorf("build OCR request: %w", err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(image))
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("OCR request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("OCR service returned status %d", resp.StatusCode)
	}

	text, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("read OCR response: %w", err)
	}

	return ParseWeight(string(text))
}

// numberRe matches the first decimal number in recognized text,
// assuming the weight reads in kg or lbs.
var numberRe = regexp.MustCompile(`\d+\.?\d*`)

// ParseWeight extracts the first decimal number from recognized text.
func ParseWeight(text string) (float64, error) {
	m := numberRe.FindString(text)
	if m == "" {
		return 0, fmt.Errorf("no number in recognized text: %w", domain.ErrExtractionFailed)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", m, domain.ErrExtractionFailed)
	}
	return v, nil
}
