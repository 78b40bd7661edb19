package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// GithubConfig identifies the documentation repository. The access
// token itself is never stored in the file; TokenEnv names the
// environment variable holding it.
type GithubConfig struct {
	Owner    string `yaml:"owner"`
	Repo     string `yaml:"repo"`
	TokenEnv string `yaml:"token_env"`
}

// QdrantConfig contains connection details for the Qdrant vector store.
// An empty URL selects the in-memory index instead.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// BackendConfig configures the embedding/generation backend. BaseURL
// may point at any OpenAI-compatible endpoint, including a local model
// server.
type BackendConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	EmbedModel string `yaml:"embed_model"`
	ChatModel  string `yaml:"chat_model"`
	Dimension  int    `yaml:"dimension"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server        ServerConfig  `yaml:"server"`
	Github        GithubConfig  `yaml:"github"`
	Qdrant        QdrantConfig  `yaml:"qdrant"`
	Backend       BackendConfig `yaml:"backend"`
	EmbedRatePerS float64       `yaml:"embed_rate_per_s"`
}

// Load reads a config from the given path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// GithubToken resolves the repository access token from the
// environment. The token is required: without it no documentation can
// be fetched.
func (c *AppConfig) GithubToken() (string, error) {
	token := os.Getenv(c.Github.TokenEnv)
	if token == "" {
		return "", fmt.Errorf("missing GitHub token in env %s", c.Github.TokenEnv)
	}
	return token, nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = "static"
	}
	if cfg.Github.TokenEnv == "" {
		cfg.Github.TokenEnv = "GITHUB_ACCESS_TOKEN"
	}
	if cfg.Qdrant.APIKeyEnv == "" {
		cfg.Qdrant.APIKeyEnv = "QDRANT_API_KEY"
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "docs"
	}
	if cfg.Qdrant.TimeoutSecs == 0 {
		cfg.Qdrant.TimeoutSecs = 15
	}
	if cfg.Backend.APIKeyEnv == "" {
		cfg.Backend.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Backend.EmbedModel == "" {
		cfg.Backend.EmbedModel = "text-embedding-3-small"
	}
	if cfg.Backend.ChatModel == "" {
		cfg.Backend.ChatModel = "gpt-4o-mini"
	}
	if cfg.Backend.Dimension == 0 {
		cfg.Backend.Dimension = 1536
	}
	if cfg.EmbedRatePerS == 0 {
		cfg.EmbedRatePerS = 5
	}
}
