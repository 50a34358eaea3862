package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dskvich/snarky-facts/pkg/domain"
)

const (
	DefaultBaseURL         = "https://api.replicate.com/v1"
	defaultPollingTimeout  = 60 * time.Second
	defaultPollingInterval = 1 * time.Second
	maxErrorBodySize       = 512
)

type client struct {
	token           string
	baseURL         string
	pollingTimeout  time.Duration
	pollingInterval time.Duration
	hc              *http.Client
}

type Option func(*client)

func WithBaseURL(url string) Option {
	return func(c *client) { c.baseURL = strings.TrimRight(url, "/") }
}

func WithPolling(interval, timeout time.Duration) Option {
	return func(c *client) {
		c.pollingInterval = interval
		c.pollingTimeout = timeout
	}
}

func NewClient(token string, opts ...Option) (*client, error) {
	if token == "" {
		return nil, errors.New("token cannot be empty")
	}

	c := &client{
		token:           token,
		baseURL:         DefaultBaseURL,
		pollingTimeout:  defaultPollingTimeout,
		pollingInterval: defaultPollingInterval,
		hc:              &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) GenerateImage(ctx context.Context, prompt string, model string) ([]byte, error) {
	replicateModel, ok := ModelToReplicateModel[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedModel, model)
	}

	predictionURL := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, replicateModel)

	reqBody, err := json.Marshal(createPredictionRequest{
		Input: fluxInput{
			Prompt:       prompt,
			AspectRatio:  DefaultAspectRatio,
			OutputFormat: DefaultOutputFormat,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, predictionURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait")

	respBody, err := c.doRequest(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction: %w", err)
	}

	var p prediction
	if err := json.Unmarshal(respBody, &p); err != nil {
		return nil, fmt.Errorf("%w: parsing prediction: %w", domain.ErrMalformedResponse, err)
	}

	if !p.terminal() {
		p, err = c.pollPrediction(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to poll prediction: %w", err)
		}
	}

	if p.Status != predictionStatusSucceeded {
		return nil, fmt.Errorf("%w: prediction %s: %s", domain.ErrMalformedResponse, p.Status, p.Error)
	}

	imageURL, err := p.outputURL()
	if err != nil {
		return nil, err
	}

	imageData, err := c.downloadImage(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}

	return imageData, nil
}

func (c *client) doRequest(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.do(req)
}

func (c *client) do(req *http.Request) ([]byte, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%w: %d, response: %s", domain.ErrUnexpectedStatus, resp.StatusCode, string(respBody))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", domain.ErrTransport, err)
	}

	return respBody, nil
}

func (c *client) pollPrediction(ctx context.Context, predictionID string) (prediction, error) {
	var p prediction

	timeoutCtx, cancel := context.WithTimeout(ctx, c.pollingTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeoutCtx.Done():
			return p, fmt.Errorf("%w: polling timed out", domain.ErrTransport)
		case <-ticker.C:
			req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, c.baseURL+"/predictions/"+predictionID, nil)
			if err != nil {
				return p, fmt.Errorf("failed to create HTTP request: %w", err)
			}

			respBody, err := c.doRequest(req)
			if err != nil {
				return p, fmt.Errorf("failed to get prediction: %w", err)
			}

			if err := json.Unmarshal(respBody, &p); err != nil {
				return p, fmt.Errorf("%w: parsing prediction: %w", domain.ErrMalformedResponse, err)
			}

			if p.terminal() {
				return p, nil
			}
		}
	}
}

// downloadImage fetches the delivery URL; it is public, so no token is sent.
func (c *client) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	imageData, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if contentType := http.DetectContentType(imageData); !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: expected image data, got %s", domain.ErrMalformedResponse, contentType)
	}

	return imageData, nil
}
