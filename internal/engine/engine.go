package engine

import "context"

// Engine abstracts a text-generation backend (local Ollama or OpenRouter).
// The intent classifier reaches it only through Generator.
type Engine interface {
	// Generate sends prompt to model and returns the raw completion text.
	Generate(ctx context.Context, model, prompt string) (string, error)

	// IsRunning reports whether the backend is reachable.
	IsRunning(ctx context.Context) bool

	// HasModel reports whether the given model name is available.
	HasModel(ctx context.Context, name string) bool
}

// Puller is implemented by engines that can download models on demand.
type Puller interface {
	PullModel(ctx context.Context, name string, onProgress func(PullProgress)) error
}
