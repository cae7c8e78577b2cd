// Package genai is a small client for a Gemini-style image generation API.
// It covers the two calls the scene needs: text-to-image and image edit.
// Either call fails with ErrGeneration or ErrEdit when the service returns
// no image, so callers can handle every failure on one path.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors. Every failure of Generate wraps ErrGeneration and every
// failure of Edit wraps ErrEdit.
var (
	ErrGeneration = errors.New("genai: image generation failed")
	ErrEdit       = errors.New("genai: image edit failed")
)

// DefaultEndpoint is the public API base URL.
const DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// DefaultModel supports the 1K/2K/4K output sizes.
const DefaultModel = "gemini-3-pro-image-preview"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 64 << 20

// Size is the requested output resolution.
type Size string

const (
	Size1K Size = "1K"
	Size2K Size = "2K"
	Size4K Size = "4K"
)

// Sizes lists the valid sizes in ascending order.
var Sizes = []Size{Size1K, Size2K, Size4K}

// ParseSize validates s.
func ParseSize(s string) (Size, error) {
	for _, v := range Sizes {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("genai: unknown size %q", s)
}

// Next returns the following size, wrapping from 4K to 1K.
func (s Size) Next() Size {
	for i, v := range Sizes {
		if v == s {
			return Sizes[(i+1)%len(Sizes)]
		}
	}
	return Size1K
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("genai: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("genai: HTTP %d: %s", e.StatusCode, e.Message)
}

// Client calls the image API. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client (default: 90s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoint sets the API base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = strings.TrimRight(endpoint, "/") }
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client authenticated with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		endpoint:   DefaultEndpoint,
		model:      DefaultModel,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Generate renders an image from a text prompt and returns the encoded
// image bytes.
func (c *Client) Generate(ctx context.Context, prompt string, size Size) ([]byte, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &imageConfig{ImageSize: string(size)},
		},
	}
	data, err := c.call(ctx, "generate", req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return data, nil
}

// Edit applies a text instruction to src and returns the encoded result.
// mime is the type of src, e.g. "image/png".
func (c *Client) Edit(ctx context.Context, src []byte, mime, prompt string) ([]byte, error) {
	if len(src) == 0 {
		return nil, fmt.Errorf("%w: empty source image", ErrEdit)
	}
	if mime == "" {
		mime = http.DetectContentType(src)
	}
	req := generateRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &inlineData{MIMEType: mime, Data: base64.StdEncoding.EncodeToString(src)}},
			{Text: prompt},
		}}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"IMAGE"}},
	}
	data, err := c.call(ctx, "edit", req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEdit, err)
	}
	return data, nil
}

// call posts req and extracts the first inline image from the response.
func (c *Client) call(ctx context.Context, op string, req generateRequest) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)
	httpReq.Header.Set("X-Request-Id", requestID)

	log := c.logger.With("op", op, "request_id", requestID, "model", c.model)
	start := time.Now()
	log.Debug("genai request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Warn("genai request failed", "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env errorEnvelope
		if json.Unmarshal(raw, &env) == nil && env.Error != nil {
			apiErr.Message = env.Error.Message
		}
		log.Warn("genai request rejected", "status", resp.StatusCode, "err", apiErr)
		return nil, apiErr
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	img, err := out.firstImage()
	if err != nil {
		return nil, err
	}
	log.Debug("genai request done", "bytes", len(img), "elapsed", time.Since(start))
	return img, nil
}
