// Package config provides configuration loading and structs for the joshu server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Retrieval modes for the ask pipeline.
const (
	RetrievalSemantic = "semantic"
	RetrievalKeyword  = "keyword"
	RetrievalNone     = "none"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Ask        AskConfig        `yaml:"ask"`
	Links      LinksConfig      `yaml:"links"`
	Scrape     ScrapeConfig     `yaml:"scrape"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
}

// StoreConfig holds the embedding store location.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingConfig holds the external embedding service settings plus the
// chunking and caching knobs of the embed pipeline. Secrets never appear in
// the file; APIKeyEnv names the environment variable carrying the token.
type EmbeddingConfig struct {
	BaseURL      string `yaml:"base_url"`
	APIKeyEnv    string `yaml:"api_key_env"`
	Model        string `yaml:"model"`
	Dimensions   int    `yaml:"dimensions"`
	TimeoutSecs  int    `yaml:"timeout_secs"`
	BatchSize    int    `yaml:"batch_size"`
	CacheSize    int    `yaml:"cache_size"`
	CachePath    string `yaml:"cache_path"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
}

// CompletionConfig holds the external chat completion service settings.
type CompletionConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// AskConfig holds the answer pipeline settings.
type AskConfig struct {
	Retrieval     string `yaml:"retrieval"`
	TopK          int    `yaml:"top_k"`
	ContextLimit  int    `yaml:"context_limit"`
	Multimodal    bool   `yaml:"multimodal"`
	FetchLinks    *bool  `yaml:"fetch_links"`
	FetchMaxBytes int64  `yaml:"fetch_max_bytes"`
}

// FetchLinksOrDefault returns whether request links are fetched for context;
// defaults to true when unset.
func (a *AskConfig) FetchLinksOrDefault() bool {
	if a.FetchLinks != nil {
		return *a.FetchLinks
	}
	return true
}

// LinksConfig holds citation URL bases and the static links returned when
// retrieval is disabled.
type LinksConfig struct {
	ForumBaseURL  string        `yaml:"forum_base_url"`
	CourseBaseURL string        `yaml:"course_base_url"`
	DefaultURL    string        `yaml:"default_url"`
	Defaults      []DefaultLink `yaml:"defaults"`
}

// DefaultLink is one static citation link.
type DefaultLink struct {
	URL  string `yaml:"url"`
	Text string `yaml:"text"`
}

// ScrapeConfig holds discourse and course collection settings.
type ScrapeConfig struct {
	BaseURL    string `yaml:"base_url"`
	Category   int    `yaml:"category"`
	From       string `yaml:"from"`
	To         string `yaml:"to"`
	CookieEnv  string `yaml:"cookie_env"`
	DelaySecs  int    `yaml:"delay_secs"`
	PostsDir   string `yaml:"posts_dir"`
	CourseRepo string `yaml:"course_repo"`
	CourseDir  string `yaml:"course_dir"`
}

// WatchConfig holds course repo watch settings.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, applies defaults, and
// expands paths. Returns an error if the file cannot be read or parsed, or
// if ask.retrieval names an unknown mode.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	switch cfg.Ask.Retrieval {
	case RetrievalSemantic, RetrievalKeyword, RetrievalNone:
	default:
		return nil, fmt.Errorf("invalid ask.retrieval mode %q (want semantic, keyword, or none)", cfg.Ask.Retrieval)
	}

	configDir := filepath.Dir(path)
	cfg.Store.Path = expandPath(cfg.Store.Path, configDir)
	cfg.Embedding.CachePath = expandPath(cfg.Embedding.CachePath, configDir)
	cfg.Scrape.PostsDir = expandPath(cfg.Scrape.PostsDir, configDir)
	cfg.Scrape.CourseRepo = expandPath(cfg.Scrape.CourseRepo, configDir)
	cfg.Scrape.CourseDir = expandPath(cfg.Scrape.CourseDir, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
