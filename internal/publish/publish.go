// Package publish uploads captures to the third-party image host.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cristianadrielbraun/kioskgallery/internal/logging"
)

// DefaultEndpoint is the imgbb upload API.
const DefaultEndpoint = "https://api.imgbb.com/1/upload"

const maxResponseBytes = 1 << 20

// Publisher uploads a local file and returns its public URL.
type Publisher interface {
	Publish(ctx context.Context, path string) (string, error)
}

// Func adapts a function to Publisher.
type Func func(ctx context.Context, path string) (string, error)

// Publish calls f.
func (f Func) Publish(ctx context.Context, path string) (string, error) { return f(ctx, path) }

// Error is returned for every failed upload. Err holds the detail for logs; the
// message shown to clients stays generic.
type Error struct {
	Status int
	Err    error
}

func (e *Error) Error() string {
	return "failed to upload image to the image host"
}

func (e *Error) Unwrap() error { return e.Err }

// Detail describes the underlying cause.
func (e *Error) Detail() string {
	if e.Err == nil {
		return e.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("status %d: %v", e.Status, e.Err)
	}
	return e.Err.Error()
}

// HostClient performs a single multipart upload per call. It never retries.
type HostClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *slog.Logger
}

// Option customizes a HostClient.
type Option func(*HostClient)

// WithHTTPClient overrides the HTTP client used for uploads.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HostClient) {
		if client != nil {
			c.http = client
		}
	}
}

// WithEndpoint overrides the upload URL.
func WithEndpoint(endpoint string) Option {
	return func(c *HostClient) {
		if strings.TrimSpace(endpoint) != "" {
			c.endpoint = strings.TrimSpace(endpoint)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *HostClient) {
		c.logger = logging.OrNop(logger)
	}
}

// NewHostClient constructs an uploader authenticated by a static API key.
func NewHostClient(apiKey string, opts ...Option) *HostClient {
	c := &HostClient{
		endpoint: DefaultEndpoint,
		apiKey:   strings.TrimSpace(apiKey),
		http:     &http.Client{},
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type hostResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
}

// Publish uploads the file at path and returns the hosted image URL.
func (c *HostClient) Publish(ctx context.Context, path string) (string, error) {
	if c.apiKey == "" {
		return "", &Error{Err: errors.New("missing api key")}
	}

	file, err := os.Open(path)
	if err != nil {
		return "", &Error{Err: fmt.Errorf("open capture: %w", err)}
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("key", c.apiKey); err != nil {
		return "", &Error{Err: fmt.Errorf("write key field: %w", err)}
	}
	part, err := writer.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return "", &Error{Err: fmt.Errorf("create image field: %w", err)}
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", &Error{Err: fmt.Errorf("copy capture: %w", err)}
	}
	if err := writer.Close(); err != nil {
		return "", &Error{Err: fmt.Errorf("close multipart writer: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", &Error{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &Error{Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &Error{Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{Status: resp.StatusCode, Err: fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(payload)))}
	}

	var parsed hostResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", &Error{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !parsed.Success || strings.TrimSpace(parsed.Data.URL) == "" {
		return "", &Error{Status: resp.StatusCode, Err: errors.New("response did not include an image URL")}
	}

	c.logger.Info("capture published", "file", filepath.Base(path), "url", parsed.Data.URL, "elapsed", time.Since(start))
	return parsed.Data.URL, nil
}
