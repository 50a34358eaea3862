package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dskvich/snarky-facts/pkg/domain"
)

const (
	DefaultBaseURL   = "https://api-inference.huggingface.co/models"
	maxErrorBodySize = 512
)

type client struct {
	token   string
	baseURL string
	hc      *http.Client
}

type Option func(*client)

func WithBaseURL(url string) Option {
	return func(c *client) { c.baseURL = strings.TrimRight(url, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.hc = hc }
}

func NewClient(token string, opts ...Option) (*client, error) {
	if token == "" {
		return nil, errors.New("token cannot be empty")
	}

	c := &client{
		token:   token,
		baseURL: DefaultBaseURL,
		hc:      &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateImage runs a text-to-image model and returns the raw image bytes.
// A successful status carrying anything other than image data is treated as malformed.
func (c *client) GenerateImage(ctx context.Context, prompt string, model string) ([]byte, error) {
	reqBody, err := json.Marshal(inferenceRequest{Inputs: prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+model, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%w: %d, response: %s", domain.ErrUnexpectedStatus, resp.StatusCode, string(respBody))
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading image data: %w", domain.ErrTransport, err)
	}

	if contentType := http.DetectContentType(imageData); !strings.HasPrefix(contentType, "image/") {
		snippet := imageData[:min(len(imageData), maxErrorBodySize)]
		return nil, fmt.Errorf("%w: expected image data, got %s: %s", domain.ErrMalformedResponse, contentType, snippet)
	}

	return imageData, nil
}
