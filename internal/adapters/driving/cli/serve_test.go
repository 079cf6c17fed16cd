package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/adapters/driven/config/file"
)

func TestBuildProviderUnknown(t *testing.T) {
	cfg := file.Default()
	cfg.Provider = "watson"

	_, _, err := buildProvider(context.Background(), cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "watson")
}

func TestBuildProviderGeminiRequiresKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	cfg := file.Default()

	_, _, err := buildProvider(context.Background(), cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestBuildProviderOllama(t *testing.T) {
	cfg := file.Default()
	cfg.Provider = file.ProviderOllama

	embedder, llm, err := buildProvider(context.Background(), cfg)

	require.NoError(t, err)
	assert.NotNil(t, embedder)
	assert.NotNil(t, llm)
}

func TestResolveDataDirFromConfig(t *testing.T) {
	cfg := file.Default()
	cfg.Storage.DataDir = filepath.Join(t.TempDir(), "data")

	dir, err := resolveDataDir(cfg)

	require.NoError(t, err)
	assert.Equal(t, cfg.Storage.DataDir, dir)
}

func TestResolveDataDirDefaultsToHome(t *testing.T) {
	cfg := file.Default()

	dir, err := resolveDataDir(cfg)

	require.NoError(t, err)
	assert.Contains(t, dir, ".chatbot-demo")
}
