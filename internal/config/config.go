package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Config is the top-level configuration structure.
type Config struct {
	Server        ServerConfig    `json:"server"`
	Database      DatabaseConfig  `json:"database"`
	Embedding     EmbeddingConfig `json:"embedding"`
	Memory        MemoryConfig    `json:"memory"`
	MigrationsDir string          `json:"migrations_dir"`
}

type ServerConfig struct {
	Port     int    `json:"port"`
	LogLevel string `json:"log_level"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `json:"postgres"`
	Redis    RedisConfig    `json:"redis"`
	Qdrant   QdrantConfig   `json:"qdrant"`
}

type PostgresConfig struct {
	DSN string `json:"dsn"`
}

// RedisConfig enables caching and event streaming when URL is set.
type RedisConfig struct {
	URL string `json:"url"`
}

type EmbeddingConfig struct {
	Provider  string `json:"provider"`
	Endpoint  string `json:"endpoint"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	Dimension int    `json:"dimension"`
}

// QdrantConfig leaves the vector index unconfigured when Host is empty.
type QdrantConfig struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Collection string `json:"collection"`
}

type MemoryConfig struct {
	DefaultTopK          int    `json:"default_top_k"`
	MetadataContentLimit int    `json:"metadata_content_limit"`
	EventsStream         string `json:"events_stream"`
}

// Default returns the configuration used for unset fields.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 3300, LogLevel: "info"},
		Database: DatabaseConfig{
			Qdrant: QdrantConfig{Port: 6334, Collection: "memories"},
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			Dimension: 1536,
		},
		Memory: MemoryConfig{
			DefaultTopK:          10,
			MetadataContentLimit: 1000,
			EventsStream:         "nuka:memory:events",
		},
		MigrationsDir: "migrations",
	}
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON config file over Default and substitutes environment
// variable references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes JSON config bytes over Default.
func Parse(data []byte) (*Config, error) {
	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		name := parts[1]
		defaultVal := parts[2]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return defaultVal
	})

	cfg := Default()
	if err := json.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Memory.DefaultTopK <= 0 {
		return fmt.Errorf("config: memory.default_top_k must be positive")
	}
	if c.Memory.MetadataContentLimit <= 0 {
		return fmt.Errorf("config: memory.metadata_content_limit must be positive")
	}
	if c.Embedding.Dimension < 0 {
		return fmt.Errorf("config: embedding.dimension must not be negative")
	}
	if c.Database.Qdrant.Host != "" && c.Database.Qdrant.Port <= 0 {
		return fmt.Errorf("config: database.qdrant.port is required with a host")
	}
	return nil
}
