package engine

import (
	"context"
	"fmt"
	"io"
)

// EnsureReady checks that the Engine is reachable and model is available.
// Engines implementing Puller download a missing model with progress output
// written to w; for other engines a missing model is an error.
func EnsureReady(ctx context.Context, e Engine, model string, w io.Writer) error {
	if e == nil {
		return fmt.Errorf("no classifier backend configured")
	}
	if !e.IsRunning(ctx) {
		return fmt.Errorf("classifier backend is not reachable; please ensure it is started and credentials are set")
	}

	if e.HasModel(ctx, model) {
		fmt.Fprintf(w, "model %s: ready\n", model)
		return nil
	}

	p, ok := e.(Puller)
	if !ok {
		return fmt.Errorf("model %s is not available on this backend", model)
	}

	fmt.Fprintf(w, "model %s: pulling...\n", model)
	err := p.PullModel(ctx, model, func(p PullProgress) {
		if p.Total > 0 {
			pct := float64(p.Completed) / float64(p.Total) * 100
			fmt.Fprintf(w, "  %s %.0f%%\n", p.Status, pct)
		} else {
			fmt.Fprintf(w, "  %s\n", p.Status)
		}
	})
	if err != nil {
		return fmt.Errorf("pulling model %s: %w", model, err)
	}
	fmt.Fprintf(w, "model %s: ready\n", model)
	return nil
}
