// Package cli wires the cobra command tree for the chatbot daemon.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "chatbotd",
	Short: "Multi-persona RAG chatbot service",
	Long: `chatbotd serves persona-scoped retrieval-augmented chatbots over HTTP.

Each persona carries its own knowledge base: uploaded documents are
chunked, embedded and indexed per persona, and queries are answered
with guarded, structured generation.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: ./chatbot.toml, then ~/.chatbot-demo/chatbot.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
