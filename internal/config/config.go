package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type FusionPrompts struct {
	GenreFusion string `toml:"genre_fusion"`
	ArtistBlend string `toml:"artist_blend"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type LastFMConfig struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RatePerSecond  float64 `toml:"rate_per_second"`
}

type FusionConfig struct {
	MaxDepth        int `toml:"max_depth"`
	MaxLLMAttempts  int `toml:"max_llm_attempts"`
	SimilarLimit    int `toml:"similar_limit"`
	CacheSize       int `toml:"cache_size"`
	CacheTTLMinutes int `toml:"cache_ttl_minutes"`
	Parallelism     int `toml:"parallelism"`
}

type RateLimitConfig struct {
	GeneralPerMinute int `toml:"general_per_minute"`
	CombinePerMinute int `toml:"combine_per_minute"`
}

type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Memgraph  MemgraphConfig  `toml:"memgraph"`
	LastFM    LastFMConfig    `toml:"lastfm"`
	Fusion    FusionConfig    `toml:"fusion"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
	Prompts   FusionPrompts   `toml:"prompts"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Fusion.MaxDepth == 0 {
		c.Fusion.MaxDepth = 3
	}
	if c.Fusion.MaxLLMAttempts == 0 {
		c.Fusion.MaxLLMAttempts = 3
	}
	if c.Fusion.SimilarLimit == 0 {
		c.Fusion.SimilarLimit = 20
	}
	if c.Fusion.CacheSize == 0 {
		c.Fusion.CacheSize = 4096
	}
	if c.Fusion.CacheTTLMinutes == 0 {
		c.Fusion.CacheTTLMinutes = 60
	}
	if c.Fusion.Parallelism == 0 {
		c.Fusion.Parallelism = 8
	}
	if c.LastFM.BaseURL == "" {
		c.LastFM.BaseURL = "https://ws.audioscrobbler.com/2.0/"
	}
	if c.LastFM.TimeoutSeconds == 0 {
		c.LastFM.TimeoutSeconds = 10
	}
	if c.LastFM.RatePerSecond == 0 {
		c.LastFM.RatePerSecond = 5
	}
	if c.RateLimit.GeneralPerMinute == 0 {
		c.RateLimit.GeneralPerMinute = 100
	}
	if c.RateLimit.CombinePerMinute == 0 {
		c.RateLimit.CombinePerMinute = 20
	}
}
