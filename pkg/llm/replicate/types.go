package replicate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dskvich/snarky-facts/pkg/domain"
)

type prediction struct {
	ID          string          `json:"id"`
	Error       string          `json:"error"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt time.Time       `json:"completed_at,omitempty"`
	Output      json.RawMessage `json:"output"`
}

// outputURL accepts both output shapes Replicate uses: a single URL or a list of URLs.
func (p prediction) outputURL() (string, error) {
	if len(p.Output) == 0 || string(p.Output) == "null" {
		return "", fmt.Errorf("%w: no output returned", domain.ErrMalformedResponse)
	}

	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil && single != "" {
		return single, nil
	}

	var many []string
	if err := json.Unmarshal(p.Output, &many); err == nil && len(many) > 0 && many[0] != "" {
		return many[0], nil
	}

	return "", fmt.Errorf("%w: unexpected output %s", domain.ErrMalformedResponse, string(p.Output))
}

type createPredictionRequest struct {
	Input fluxInput `json:"input"`
}

type fluxInput struct {
	Prompt       string `json:"prompt"`
	AspectRatio  string `json:"aspect_ratio"`
	OutputFormat string `json:"output_format"`
}

const (
	predictionStatusSucceeded = "succeeded"
	predictionStatusFailed    = "failed"
	predictionStatusCanceled  = "canceled"
)

func (p prediction) terminal() bool {
	return p.Status == predictionStatusSucceeded ||
		p.Status == predictionStatusFailed ||
		p.Status == predictionStatusCanceled
}
