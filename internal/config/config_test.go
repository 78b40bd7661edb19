package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "docs", cfg.Qdrant.Collection)
	assert.Equal(t, 1536, cfg.Backend.Dimension)
	assert.Equal(t, "GITHUB_ACCESS_TOKEN", cfg.Github.TokenEnv)
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "github:\n  owner: shuttle-hq\n  repo: shuttle-docs\nqdrant:\n  url: http://localhost:6333\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "shuttle-hq", cfg.Github.Owner)
	assert.Equal(t, "http://localhost:6333", cfg.Qdrant.URL)
	assert.Equal(t, "text-embedding-3-small", cfg.Backend.EmbedModel)
	assert.Equal(t, 15, cfg.Qdrant.TimeoutSecs)
}

func TestGithubToken(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	t.Setenv("GITHUB_ACCESS_TOKEN", "")
	_, err = cfg.GithubToken()
	assert.Error(t, err)

	t.Setenv("GITHUB_ACCESS_TOKEN", "ghp_test")
	token, err := cfg.GithubToken()
	require.NoError(t, err)
	assert.Equal(t, "ghp_test", token)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a mapping"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
