package engine

import "fmt"

// DetectConfig holds parameters for backend selection.
type DetectConfig struct {
	Backend           string
	OllamaBaseURL     string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
}

// Detect returns the engine named by cfg.Backend. An empty backend selects
// OpenRouter. Choosing OpenRouter without an API key yields a nil Engine and
// a nil error: the classifier then runs without a generator.
func Detect(cfg DetectConfig) (Engine, error) {
	switch cfg.Backend {
	case "", BackendOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			return nil, nil
		}
		return NewOpenRouterEngine(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL), nil
	case BackendOllama:
		return NewOllamaEngine(cfg.OllamaBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.Backend)
	}
}
