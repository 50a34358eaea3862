package openai

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

// DefaultURL points at DeepSeek, which speaks the OpenAI chat completions protocol.
const DefaultURL = "https://api.deepseek.com/v1/chat/completions"

const maxErrorBodySize = 512

type client struct {
	token       string
	url         string
	model       string
	temperature float64
	hc          *http.Client
}

type Option func(*client)

func WithURL(url string) Option {
	return func(c *client) { c.url = url }
}

func WithModel(model string) Option {
	return func(c *client) { c.model = model }
}

func WithTemperature(t float64) Option {
	return func(c *client) { c.temperature = t }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.hc = hc }
}

func NewClient(token string, opts ...Option) (*client, error) {
	if token == "" {
		return nil, errors.New("token cannot be empty")
	}

	c := &client{
		token:       token,
		url:         DefaultURL,
		model:       domain.DefaultTextModel,
		temperature: domain.DefaultTemperature,
		hc:          &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateTrivia asks for one fresh trivia statement.
func (c *client) GenerateTrivia(ctx context.Context) (string, error) {
	return c.CreateChatCompletion(ctx, domain.TriviaInstruction)
}

// CreateChatCompletion sends prompt as a single user message and returns the
// trimmed content of the first choice.
func (c *client) CreateChatCompletion(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(chatCompletionRequest{
		Model: c.model,
		Messages: []chatCompletionMessage{
			{Role: chatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.doRequest(req)
	if err != nil {
		return "", err
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("%w: parsing chat completion: %w", domain.ErrMalformedResponse, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", domain.ErrMalformedResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrMalformedResponse)
	}

	return content, nil
}

func (c *client) doRequest(req *http.Request) ([]byte, error) {
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

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", domain.ErrTransport, err)
	}

	return respBody, nil
}
