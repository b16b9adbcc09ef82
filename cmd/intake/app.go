package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kalambet/intake/internal/config"
	"github.com/kalambet/intake/internal/engine"
	"github.com/kalambet/intake/internal/intent"
	"github.com/kalambet/intake/internal/pipeline"
	"github.com/kalambet/intake/internal/storage"
)

// loadConfig is swapped out by tests.
var loadConfig = config.Load

// app holds everything a command needs to run the pipeline.
type app struct {
	cfg       config.Config
	engine    engine.Engine
	store     *storage.Store
	processor *pipeline.Processor
}

// openApp loads configuration, sets up logging, and wires the classifier,
// store and processor. The caller closes the returned app.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	setupLogging(cfg)

	eng, err := engine.Detect(engine.DetectConfig{
		Backend:           cfg.Classifier.Backend,
		OllamaBaseURL:     cfg.Ollama.BaseURL,
		OpenRouterAPIKey:  cfg.Proxy.OpenRouterAPIKey,
		OpenRouterBaseURL: cfg.Proxy.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("detecting classifier backend: %w", err)
	}
	if eng == nil {
		slog.Warn("no classifier backend available, intents will be Other", "backend", cfg.Classifier.Backend)
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	gateway := intent.NewGateway(engine.Generator(eng, cfg.ClassifierModel()))
	return &app{
		cfg:       cfg,
		engine:    eng,
		store:     store,
		processor: pipeline.NewProcessor(store, gateway, nil),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
	}
}

func setupLogging(cfg config.Config) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()})))
}
