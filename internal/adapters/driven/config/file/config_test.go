package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, 1000, cfg.Chunking.Size)
	assert.Equal(t, 200, cfg.Chunking.Overlap)
	assert.Equal(t, 4, cfg.Chat.TopK)
	assert.Equal(t, 2, cfg.Chat.TransportRetries)
	assert.InDelta(t, 0.7, cfg.Chat.Temperature, 0.001)
	assert.False(t, cfg.Chat.RequireKnowledgeBase)
}

func TestLoad_PartialFileBackfillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatbot.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider = "ollama"

[chat]
require_knowledge_base = true
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.True(t, cfg.Chat.RequireKnowledgeBase)
	// untouched sections keep defaults
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Chat.WindowExchanges)
	assert.Equal(t, 2, cfg.Chat.TransportRetries)
}

func TestLoad_NegativeTransportRetriesKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatbot.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[chat]
transport_retries = -1
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.Chat.TransportRetries)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatbot.toml")
	require.NoError(t, os.WriteFile(path, []byte("provider = [unclosed"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "chatbot.toml")

	cfg := Default()
	cfg.Provider = ProviderOllama
	cfg.Chunking.Size = 500
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, loaded.Provider)
	assert.Equal(t, 500, loaded.Chunking.Size)
}

func TestAPIKey_Precedence(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	assert.Equal(t, "google-key", APIKey())

	t.Setenv("GOOGLE_API_KEY", "")
	assert.Equal(t, "gemini-key", APIKey())
}
