// Package file provides TOML-backed application configuration.
// Missing files yield defaults; environment variables override
// secrets so API keys stay out of the config file.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Provider selects which backend serves embeddings and generation.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	ShutdownTimeout int    `toml:"shutdown_timeout_secs"`
}

// StorageConfig configures the SQLite store and index snapshots.
type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

// GeminiConfig configures the Gemini backend. The API key is read
// from GOOGLE_API_KEY or GEMINI_API_KEY, never from the file.
type GeminiConfig struct {
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	Dimensions     int    `toml:"dimensions"`
}

// OllamaConfig configures the local Ollama backend.
type OllamaConfig struct {
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	Dimensions     int    `toml:"dimensions"`
}

// ChunkingConfig configures the ingestion window arithmetic.
type ChunkingConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// ChatConfig configures the query pipeline.
type ChatConfig struct {
	TopK                 int     `toml:"top_k"`
	WindowExchanges      int     `toml:"window_exchanges"`
	MaxReasks            int     `toml:"max_reasks"`
	TransportRetries     int     `toml:"transport_retries"`
	Temperature          float64 `toml:"temperature"`
	MaxWords             int     `toml:"max_words"`
	AttemptTimeoutSecs   int     `toml:"attempt_timeout_secs"`
	RequireKnowledgeBase bool    `toml:"require_knowledge_base"`
}

// Config is the root application configuration.
type Config struct {
	Provider string         `toml:"provider"`
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Gemini   GeminiConfig   `toml:"gemini"`
	Ollama   OllamaConfig   `toml:"ollama"`
	Chunking ChunkingConfig `toml:"chunking"`
	Chat     ChatConfig     `toml:"chat"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider: ProviderGemini,
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: 10,
		},
		Gemini: GeminiConfig{
			Model:          "gemini-2.5-flash",
			EmbeddingModel: "text-embedding-004",
			Dimensions:     768,
		},
		Ollama: OllamaConfig{
			BaseURL:        "http://localhost:11434",
			Model:          "llama3.2",
			EmbeddingModel: "nomic-embed-text",
			Dimensions:     768,
		},
		Chunking: ChunkingConfig{
			Size:    1000,
			Overlap: 200,
		},
		Chat: ChatConfig{
			TopK:             4,
			WindowExchanges:  5,
			MaxReasks:        2,
			TransportRetries: 2,
			Temperature:      0.7,
			MaxWords:         300,
		},
	}
}

// Load reads the config from path. A missing file returns defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./chatbot.toml first, then the user config path.
// If neither exists, defaults are written to the user path and
// returned.
func LoadDefault() (*Config, string, error) {
	cwdPath := "chatbot.toml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}

	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}

	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// APIKey resolves the Gemini API key from the environment.
// GOOGLE_API_KEY wins over GEMINI_API_KEY.
func APIKey() string {
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GEMINI_API_KEY")
}

// AttemptTimeout returns the per-attempt model call timeout.
func (c *ChatConfig) AttemptTimeout() time.Duration {
	if c.AttemptTimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.AttemptTimeoutSecs) * time.Second
}

// ShutdownTimeout returns the graceful shutdown window.
func (c *ServerConfig) ShutdownWindow() time.Duration {
	if c.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownTimeout) * time.Second
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chatbot-demo", "chatbot.toml"), nil
}

// applyDefaults backfills zero values left by a partial config file.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Provider == "" {
		cfg.Provider = def.Provider
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = def.Gemini.Model
	}
	if cfg.Gemini.EmbeddingModel == "" {
		cfg.Gemini.EmbeddingModel = def.Gemini.EmbeddingModel
	}
	if cfg.Gemini.Dimensions <= 0 {
		cfg.Gemini.Dimensions = def.Gemini.Dimensions
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = def.Ollama.BaseURL
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = def.Ollama.Model
	}
	if cfg.Ollama.EmbeddingModel == "" {
		cfg.Ollama.EmbeddingModel = def.Ollama.EmbeddingModel
	}
	if cfg.Ollama.Dimensions <= 0 {
		cfg.Ollama.Dimensions = def.Ollama.Dimensions
	}
	if cfg.Chunking.Size <= 0 {
		cfg.Chunking.Size = def.Chunking.Size
	}
	if cfg.Chunking.Overlap < 0 {
		cfg.Chunking.Overlap = def.Chunking.Overlap
	}
	if cfg.Chat.TopK <= 0 {
		cfg.Chat.TopK = def.Chat.TopK
	}
	if cfg.Chat.WindowExchanges <= 0 {
		cfg.Chat.WindowExchanges = def.Chat.WindowExchanges
	}
	if cfg.Chat.MaxReasks <= 0 {
		cfg.Chat.MaxReasks = def.Chat.MaxReasks
	}
	// zero means default; negative disables transport retries
	if cfg.Chat.TransportRetries == 0 {
		cfg.Chat.TransportRetries = def.Chat.TransportRetries
	}
	if cfg.Chat.Temperature <= 0 {
		cfg.Chat.Temperature = def.Chat.Temperature
	}
	if cfg.Chat.MaxWords <= 0 {
		cfg.Chat.MaxWords = def.Chat.MaxWords
	}
}
