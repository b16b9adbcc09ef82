package engine

import "context"

// PromptGenerator is the prompt-in/text-out view of an Engine pinned to a
// single model. It matches the generator the intent classifier consumes.
type PromptGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type modelGenerator struct {
	eng   Engine
	model string
}

// Generator binds eng to model. It returns a nil PromptGenerator when eng is
// nil so callers can treat a missing backend as an absent generator.
func Generator(eng Engine, model string) PromptGenerator {
	if eng == nil {
		return nil
	}
	return &modelGenerator{eng: eng, model: model}
}

func (g *modelGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.eng.Generate(ctx, g.model, prompt)
}
