package llm

import (
	"context"
	"fmt"
	"slices"

	"github.com/dskvich/snarky-facts/pkg/domain"
	"github.com/samber/lo"
)

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, model string) ([]byte, error)
}

// MultiProviderImageClient routes each request to the provider serving the model.
type MultiProviderImageClient struct {
	providers map[string]ImageGenerator
}

func NewMultiProviderImageClient(providers map[string]ImageGenerator) *MultiProviderImageClient {
	return &MultiProviderImageClient{
		providers: providers,
	}
}

func (c *MultiProviderImageClient) GenerateImage(ctx context.Context, prompt string, model string) ([]byte, error) {
	provider, ok := c.providers[model]
	if !ok {
		return nil, fmt.Errorf("%w: no provider found for model %s", domain.ErrUnsupportedModel, model)
	}

	return provider.GenerateImage(ctx, prompt, model)
}

// Models lists the routable models in a stable order.
func (c *MultiProviderImageClient) Models() []string {
	models := lo.Keys(c.providers)
	slices.Sort(models)
	return models
}

func (c *MultiProviderImageClient) Supports(model string) bool {
	return lo.HasKey(c.providers, model)
}
