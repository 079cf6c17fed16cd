package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/adapters/driven/config/file"
	geminiembed "github.com/Ghostdevc/chatbot-demo-gemini/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/Ghostdevc/chatbot-demo-gemini/internal/adapters/driven/embedding/ollama"
	geminillm "github.com/Ghostdevc/chatbot-demo-gemini/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/Ghostdevc/chatbot-demo-gemini/internal/adapters/driven/llm/ollama"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/adapters/driven/storage/sqlite"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/adapters/driven/vectorindex/flat"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/adapters/driving/httpapi"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/chunker"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/services"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/extractors"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/extractors/markdown"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/extractors/plaintext"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the chatbot HTTP API.

The server exposes persona management, document ingestion and the
query pipeline. Configuration comes from the config file; the Gemini
API key is read from GOOGLE_API_KEY or GEMINI_API_KEY.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	if cfgPath != "" {
		logger.Info("Using config %s", cfgPath)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	dataDir, err := resolveDataDir(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	indexes, err := flat.NewProvider(filepath.Join(dataDir, "indexes"))
	if err != nil {
		return fmt.Errorf("opening vector indexes: %w", err)
	}

	embedder, llm, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}

	registry := extractors.NewRegistry(plaintext.New(), markdown.New())
	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)

	personaSvc := services.NewPersonaService(store.PersonaStore(), indexes)
	ingestSvc := services.NewIngestionService(
		store.PersonaStore(),
		store.ChunkStore(),
		registry,
		embedder,
		indexes,
		splitter,
	)
	assembler := services.NewPromptAssembler(store.ChunkStore(), embedder, indexes, cfg.Chat.TopK)
	engine := services.NewGenerationEngine(llm, services.EngineConfig{
		MaxReasks:        cfg.Chat.MaxReasks,
		Temperature:      cfg.Chat.Temperature,
		AttemptTimeout:   cfg.Chat.AttemptTimeout(),
		TransportRetries: cfg.Chat.TransportRetries,
		MaxWords:         cfg.Chat.MaxWords,
	})
	chatSvc := services.NewChatService(
		store.PersonaStore(),
		store.MessageStore(),
		indexes,
		assembler,
		engine,
		services.ChatConfig{
			WindowExchanges:      cfg.Chat.WindowExchanges,
			RequireKnowledgeBase: cfg.Chat.RequireKnowledgeBase,
		},
	)

	server := httpapi.NewServer(personaSvc, ingestSvc, chatSvc, cfg.Server.Addr, cfg.Server.ShutdownWindow())
	logger.Info("Listening on %s (provider: %s)", cfg.Server.Addr, cfg.Provider)
	return server.Start(ctx)
}

func loadConfig() (*file.Config, string, error) {
	if configPath != "" {
		cfg, err := file.Load(configPath)
		return cfg, configPath, err
	}
	return file.LoadDefault()
}

func resolveDataDir(cfg *file.Config) (string, error) {
	if cfg.Storage.DataDir != "" {
		return cfg.Storage.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving data directory: %w", err)
	}
	return filepath.Join(home, ".chatbot-demo", "data"), nil
}

func buildProvider(ctx context.Context, cfg *file.Config) (driven.EmbeddingService, driven.LLMService, error) {
	switch cfg.Provider {
	case file.ProviderGemini:
		key := file.APIKey()
		if key == "" {
			return nil, nil, errors.New("GOOGLE_API_KEY or GEMINI_API_KEY must be set for the gemini provider")
		}
		embedder, err := geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:     key,
			Model:      cfg.Gemini.EmbeddingModel,
			Dimensions: cfg.Gemini.Dimensions,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("creating gemini embedder: %w", err)
		}
		llm, err := geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey: key,
			Model:  cfg.Gemini.Model,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("creating gemini llm: %w", err)
		}
		return embedder, llm, nil

	case file.ProviderOllama:
		embedder := ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.Ollama.BaseURL,
			Model:      cfg.Ollama.EmbeddingModel,
			Dimensions: cfg.Ollama.Dimensions,
		})
		llm := ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.Model,
		})
		return embedder, llm, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider %q (want %s or %s)", cfg.Provider, file.ProviderGemini, file.ProviderOllama)
	}
}
