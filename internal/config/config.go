package config

import (
	"fmt"
	"log/slog"
	"strings"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Classifier ClassifierConfig
	Ollama     OllamaConfig
	Proxy      ProxyConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

// ClassifierConfig selects the text-generation backend used for intent
// classification: "openrouter" or "ollama".
type ClassifierConfig struct {
	Backend string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type ProxyConfig struct {
	BaseURL          string
	Model            string
	OpenRouterAPIKey string
}

type LogConfig struct {
	Level string
}

// SlogLevel maps Level to a slog.Level. Unknown values mean info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ClassifierModel returns the model name for the configured backend.
func (c Config) ClassifierModel() string {
	if c.Classifier.Backend == "ollama" {
		return c.Ollama.Model
	}
	return c.Proxy.Model
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Classifier: ClassifierConfig{
			Backend: "openrouter",
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "phi3.5",
		},
		Proxy: ProxyConfig{
			BaseURL: "https://openrouter.ai/api/v1",
			Model:   "google/gemini-flash-1.5",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file at
// $XDG_CONFIG_HOME/intake/config.json, then applies INTAKE_* environment
// variables on top.
//
// The OpenRouter API key is read only from INTAKE_OPENROUTER_API_KEY. It is
// optional: without it intent classification degrades to "Other".
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.Classifier.Backend {
	case "openrouter", "ollama":
	default:
		return fmt.Errorf("invalid classifier.backend %q: want openrouter or ollama", cfg.Classifier.Backend)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", cfg.Server.Port)
	}
	if strings.TrimSpace(cfg.Storage.DataDir) == "" {
		return fmt.Errorf("storage.data_dir must not be empty")
	}
	return nil
}
