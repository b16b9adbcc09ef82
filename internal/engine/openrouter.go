package engine

import (
	"context"

	"github.com/kalambet/intake/internal/proxy"
)

// OpenRouterEngine adapts proxy.Client to the Engine interface.
type OpenRouterEngine struct {
	client *proxy.Client
}

// NewOpenRouterEngine creates an engine calling OpenRouter with apiKey.
// An empty baseURL selects the public endpoint.
func NewOpenRouterEngine(apiKey, baseURL string) *OpenRouterEngine {
	return &OpenRouterEngine{client: proxy.NewClientWithBaseURL(apiKey, baseURL)}
}

func (e *OpenRouterEngine) Generate(ctx context.Context, model, prompt string) (string, error) {
	return e.client.Complete(ctx, model, prompt)
}

// IsRunning reports whether the model list can be fetched with the
// configured credentials.
func (e *OpenRouterEngine) IsRunning(ctx context.Context) bool {
	_, err := e.client.ListModels(ctx)
	return err == nil
}

func (e *OpenRouterEngine) HasModel(ctx context.Context, name string) bool {
	models, err := e.client.ListModels(ctx)
	if err != nil {
		return false
	}
	for _, m := range models {
		if m.ID == name {
			return true
		}
	}
	return false
}
